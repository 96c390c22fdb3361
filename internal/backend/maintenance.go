package backend

import (
	"context"
	"net/http"

	"github.com/erazemk/zaloga/internal/model"
)

// MaintenanceStart is the body of POST /maintenance/start.
type MaintenanceStart struct {
	EquipmentID int64  `json:"equipmentId"`
	Description string `json:"description"`
}

// MaintenanceEnd is the body of POST /maintenance/end.
type MaintenanceEnd struct {
	EquipmentID          int64  `json:"equipmentId"`
	MaintenancePerformed string `json:"maintenancePerformed"`
	Note                 string `json:"note"`
}

type maintenanceResponse struct {
	MaintenanceRecords []model.MaintenanceRecord `json:"maintenanceRecords"`
}

// StartMaintenance puts equipment into maintenance.
func (c *Client) StartMaintenance(ctx context.Context, token string, in MaintenanceStart) (string, error) {
	env, err := c.do(ctx, call{method: http.MethodPost, route: "/maintenance/start", path: "/maintenance/start", token: token, body: in}, nil)
	if err != nil {
		return "", err
	}
	return env.Message, nil
}

// EndMaintenance completes maintenance of equipment.
func (c *Client) EndMaintenance(ctx context.Context, token string, in MaintenanceEnd) (string, error) {
	env, err := c.do(ctx, call{method: http.MethodPost, route: "/maintenance/end", path: "/maintenance/end", token: token, body: in}, nil)
	if err != nil {
		return "", err
	}
	return env.Message, nil
}

// ListMaintenanceRecords returns every maintenance record.
func (c *Client) ListMaintenanceRecords(ctx context.Context, token string) ([]model.MaintenanceRecord, error) {
	var resp maintenanceResponse
	if _, err := c.do(ctx, call{method: http.MethodGet, route: "/maintenance/all", path: "/maintenance/all", token: token}, &resp); err != nil {
		return nil, err
	}
	return resp.MaintenanceRecords, nil
}

// MaintenanceRecordsByEquipment returns the maintenance history of one
// piece of equipment.
func (c *Client) MaintenanceRecordsByEquipment(ctx context.Context, token string, equipmentID int64) ([]model.MaintenanceRecord, error) {
	var resp maintenanceResponse
	if _, err := c.do(ctx, call{method: http.MethodGet, route: "/maintenance/equipment/{id}", path: idPath("/maintenance/equipment/", equipmentID), token: token}, &resp); err != nil {
		return nil, err
	}
	return resp.MaintenanceRecords, nil
}
