package backend

import (
	"context"
	"net/http"
	"net/url"

	"github.com/erazemk/zaloga/internal/model"
)

// EquipmentInput is the body of equipment create and update calls.
type EquipmentInput struct {
	Name         string `json:"name"`
	SerialNumber string `json:"serialNumber"`
	Status       string `json:"status"`
	Location     string `json:"location"`
	Description  string `json:"description"`
}

// ListEquipment returns all equipment, optionally only with the given
// status.
func (c *Client) ListEquipment(ctx context.Context, token, status string) ([]model.Equipment, error) {
	var resp struct {
		Equipments []model.Equipment `json:"equipments"`
	}
	var q url.Values
	if status != "" {
		q = url.Values{"equipmentStatus": {status}}
	}
	if _, err := c.do(ctx, call{method: http.MethodGet, route: "/equipment/all", path: "/equipment/all", query: q, token: token}, &resp); err != nil {
		return nil, err
	}
	return resp.Equipments, nil
}

// GetEquipment returns one piece of equipment.
func (c *Client) GetEquipment(ctx context.Context, token string, id int64) (*model.Equipment, error) {
	var resp struct {
		Equipment *model.Equipment `json:"equipment"`
	}
	if _, err := c.do(ctx, call{method: http.MethodGet, route: "/equipment/{id}", path: idPath("/equipment/", id), token: token}, &resp); err != nil {
		return nil, err
	}
	if resp.Equipment == nil {
		return nil, &APIError{StatusCode: http.StatusNotFound, Message: "equipment not found"}
	}
	return resp.Equipment, nil
}

// CreateEquipment adds equipment.
func (c *Client) CreateEquipment(ctx context.Context, token string, in EquipmentInput) (string, error) {
	env, err := c.do(ctx, call{method: http.MethodPost, route: "/equipment/add", path: "/equipment/add", token: token, body: in}, nil)
	if err != nil {
		return "", err
	}
	return env.Message, nil
}

// UpdateEquipment changes equipment.
func (c *Client) UpdateEquipment(ctx context.Context, token string, id int64, in EquipmentInput) (string, error) {
	env, err := c.do(ctx, call{method: http.MethodPut, route: "/equipment/update/{id}", path: idPath("/equipment/update/", id), token: token, body: in}, nil)
	if err != nil {
		return "", err
	}
	return env.Message, nil
}

// DeleteEquipment removes equipment.
func (c *Client) DeleteEquipment(ctx context.Context, token string, id int64) (string, error) {
	env, err := c.do(ctx, call{method: http.MethodDelete, route: "/equipment/delete/{id}", path: idPath("/equipment/delete/", id), token: token}, nil)
	if err != nil {
		return "", err
	}
	return env.Message, nil
}
