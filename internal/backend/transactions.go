package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/erazemk/zaloga/internal/model"
)

// SupplyMovement is the body of supply check-in and check-out.
type SupplyMovement struct {
	SupplyID int64   `json:"supplyId"`
	Quantity float64 `json:"quantity"`
	Notes    string  `json:"notes"`
}

// EquipmentCheckIn is the body of equipment check-in.
type EquipmentCheckIn struct {
	EquipmentID int64   `json:"equipmentId"`
	HoursUsed   float64 `json:"hoursUsed"`
	Description string  `json:"description"`
}

// EquipmentCheckOut is the body of equipment check-out.
type EquipmentCheckOut struct {
	EquipmentID     int64   `json:"equipmentId"`
	TotalHoursInput float64 `json:"totalHoursInput"`
	Note            string  `json:"note"`
}

type supplyTransactionsResponse struct {
	SupplyTransactions []model.SupplyTransaction `json:"supplyTransactions"`
}

type equipmentTransactionsResponse struct {
	EquipmentTransactions []model.EquipmentTransaction `json:"equipmentTransactions"`
}

func monthQuery(month, year int) url.Values {
	return url.Values{
		"month": {strconv.Itoa(month)},
		"year":  {strconv.Itoa(year)},
	}
}

// CheckInSupply records supplies arriving.
func (c *Client) CheckInSupply(ctx context.Context, token string, m SupplyMovement) (string, error) {
	env, err := c.do(ctx, call{method: http.MethodPost, route: "/supplyTransactions/checkInSupply", path: "/supplyTransactions/checkInSupply", token: token, body: m}, nil)
	if err != nil {
		return "", err
	}
	return env.Message, nil
}

// CheckOutSupply records supplies leaving.
func (c *Client) CheckOutSupply(ctx context.Context, token string, m SupplyMovement) (string, error) {
	env, err := c.do(ctx, call{method: http.MethodPost, route: "/supplyTransactions/checkOutSupply", path: "/supplyTransactions/checkOutSupply", token: token, body: m}, nil)
	if err != nil {
		return "", err
	}
	return env.Message, nil
}

// ListSupplyTransactions returns all supply transactions, optionally only
// those matching filter (a transaction type).
func (c *Client) ListSupplyTransactions(ctx context.Context, token, filter string) ([]model.SupplyTransaction, error) {
	var resp supplyTransactionsResponse
	var q url.Values
	if filter != "" {
		q = url.Values{"filter": {filter}}
	}
	if _, err := c.do(ctx, call{method: http.MethodGet, route: "/supplyTransactions/all", path: "/supplyTransactions/all", query: q, token: token}, &resp); err != nil {
		return nil, err
	}
	return resp.SupplyTransactions, nil
}

// SupplyTransactionsByMonth returns the supply transactions of one month.
func (c *Client) SupplyTransactionsByMonth(ctx context.Context, token string, month, year int) ([]model.SupplyTransaction, error) {
	var resp supplyTransactionsResponse
	q := monthQuery(month, year)
	if _, err := c.do(ctx, call{method: http.MethodGet, route: "/supplyTransactions/by-month-year", path: "/supplyTransactions/by-month-year", query: q, token: token}, &resp); err != nil {
		return nil, err
	}
	return resp.SupplyTransactions, nil
}

// GetSupplyTransaction returns one supply transaction.
func (c *Client) GetSupplyTransaction(ctx context.Context, token string, id int64) (*model.SupplyTransaction, error) {
	var resp struct {
		SupplyTransaction *model.SupplyTransaction `json:"supplyTransaction"`
	}
	if _, err := c.do(ctx, call{method: http.MethodGet, route: "/supplyTransactions/{id}", path: idPath("/supplyTransactions/", id), token: token}, &resp); err != nil {
		return nil, err
	}
	if resp.SupplyTransaction == nil {
		return nil, &APIError{StatusCode: http.StatusNotFound, Message: "supply transaction not found"}
	}
	return resp.SupplyTransaction, nil
}

// CheckInEquipment returns equipment and logs its hours.
func (c *Client) CheckInEquipment(ctx context.Context, token string, in EquipmentCheckIn) (string, error) {
	env, err := c.do(ctx, call{method: http.MethodPost, route: "/equipmentTransactions/checkInEquipment", path: "/equipmentTransactions/checkInEquipment", token: token, body: in}, nil)
	if err != nil {
		return "", err
	}
	return env.Message, nil
}

// CheckOutEquipment hands out equipment.
func (c *Client) CheckOutEquipment(ctx context.Context, token string, out EquipmentCheckOut) (string, error) {
	env, err := c.do(ctx, call{method: http.MethodPost, route: "/equipmentTransactions/checkOutEquipment", path: "/equipmentTransactions/checkOutEquipment", token: token, body: out}, nil)
	if err != nil {
		return "", err
	}
	return env.Message, nil
}

// ListEquipmentTransactions returns all equipment transactions, optionally
// only those matching filter.
func (c *Client) ListEquipmentTransactions(ctx context.Context, token, filter string) ([]model.EquipmentTransaction, error) {
	var resp equipmentTransactionsResponse
	var q url.Values
	if filter != "" {
		q = url.Values{"equipmentTransactionFilter": {filter}}
	}
	if _, err := c.do(ctx, call{method: http.MethodGet, route: "/equipmentTransactions/all", path: "/equipmentTransactions/all", query: q, token: token}, &resp); err != nil {
		return nil, err
	}
	return resp.EquipmentTransactions, nil
}

// EquipmentTransactionsByMonth returns the equipment transactions of one
// month.
func (c *Client) EquipmentTransactionsByMonth(ctx context.Context, token string, month, year int) ([]model.EquipmentTransaction, error) {
	var resp equipmentTransactionsResponse
	q := monthQuery(month, year)
	if _, err := c.do(ctx, call{method: http.MethodGet, route: "/equipmentTransactions/by-month-year", path: "/equipmentTransactions/by-month-year", query: q, token: token}, &resp); err != nil {
		return nil, err
	}
	return resp.EquipmentTransactions, nil
}

// GetEquipmentTransaction returns one equipment transaction.
func (c *Client) GetEquipmentTransaction(ctx context.Context, token string, id int64) (*model.EquipmentTransaction, error) {
	var resp struct {
		EquipmentTransaction *model.EquipmentTransaction `json:"equipmentTransaction"`
	}
	if _, err := c.do(ctx, call{method: http.MethodGet, route: "/equipmentTransactions/{id}", path: idPath("/equipmentTransactions/", id), token: token}, &resp); err != nil {
		return nil, err
	}
	if resp.EquipmentTransaction == nil {
		return nil, &APIError{StatusCode: http.StatusNotFound, Message: "equipment transaction not found"}
	}
	return resp.EquipmentTransaction, nil
}

// Source selects which transaction history a series is built from.
type Source string

// Sources.
const (
	SourceSupply    Source = "supply"
	SourceEquipment Source = "equipment"
)

// ParseSource returns the source named by s. An empty s selects supplies.
func ParseSource(s string) (Source, error) {
	switch Source(s) {
	case "", SourceSupply:
		return SourceSupply, nil
	case SourceEquipment:
		return SourceEquipment, nil
	}
	return "", fmt.Errorf("unknown source %q", s)
}

// MonthRecords fetches one month of the source's transactions projected for
// aggregation.
func (c *Client) MonthRecords(ctx context.Context, token string, source Source, month, year int) ([]model.TransactionRecord, error) {
	switch source {
	case SourceEquipment:
		txs, err := c.EquipmentTransactionsByMonth(ctx, token, month, year)
		if err != nil {
			return nil, err
		}
		return model.EquipmentRecords(txs), nil
	default:
		txs, err := c.SupplyTransactionsByMonth(ctx, token, month, year)
		if err != nil {
			return nil, err
		}
		return model.SupplyRecords(txs), nil
	}
}
