package backend

import (
	"context"
	"net/http"
	"net/url"

	"github.com/erazemk/zaloga/internal/model"
)

// SupplyInput is the body of supply create and update calls.
type SupplyInput struct {
	Name        string  `json:"name"`
	SKU         string  `json:"sku"`
	Quantity    float64 `json:"quantity"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
}

type suppliesResponse struct {
	Supplies []model.Supply `json:"supplies"`
}

// ListSupplies returns every supply.
func (c *Client) ListSupplies(ctx context.Context, token string) ([]model.Supply, error) {
	var resp suppliesResponse
	if _, err := c.do(ctx, call{method: http.MethodGet, route: "/supplies/all", path: "/supplies/all", token: token}, &resp); err != nil {
		return nil, err
	}
	return resp.Supplies, nil
}

// SearchSupplies returns supplies matching the search value.
func (c *Client) SearchSupplies(ctx context.Context, token, value string) ([]model.Supply, error) {
	var resp suppliesResponse
	q := url.Values{"searchValue": {value}}
	if _, err := c.do(ctx, call{method: http.MethodGet, route: "/supplies/search", path: "/supplies/search", query: q, token: token}, &resp); err != nil {
		return nil, err
	}
	return resp.Supplies, nil
}

// GetSupply returns one supply.
func (c *Client) GetSupply(ctx context.Context, token string, id int64) (*model.Supply, error) {
	var resp struct {
		Supply *model.Supply `json:"supply"`
	}
	if _, err := c.do(ctx, call{method: http.MethodGet, route: "/supplies/{id}", path: idPath("/supplies/", id), token: token}, &resp); err != nil {
		return nil, err
	}
	if resp.Supply == nil {
		return nil, &APIError{StatusCode: http.StatusNotFound, Message: "supply not found"}
	}
	return resp.Supply, nil
}

// CreateSupply adds a supply.
func (c *Client) CreateSupply(ctx context.Context, token string, in SupplyInput) (string, error) {
	env, err := c.do(ctx, call{method: http.MethodPost, route: "/supplies/add", path: "/supplies/add", token: token, body: in}, nil)
	if err != nil {
		return "", err
	}
	return env.Message, nil
}

// UpdateSupply changes a supply.
func (c *Client) UpdateSupply(ctx context.Context, token string, id int64, in SupplyInput) (string, error) {
	env, err := c.do(ctx, call{method: http.MethodPut, route: "/supplies/update/{id}", path: idPath("/supplies/update/", id), token: token, body: in}, nil)
	if err != nil {
		return "", err
	}
	return env.Message, nil
}

// DeleteSupply removes a supply.
func (c *Client) DeleteSupply(ctx context.Context, token string, id int64) (string, error) {
	env, err := c.do(ctx, call{method: http.MethodDelete, route: "/supplies/delete/{id}", path: idPath("/supplies/delete/", id), token: token}, nil)
	if err != nil {
		return "", err
	}
	return env.Message, nil
}
