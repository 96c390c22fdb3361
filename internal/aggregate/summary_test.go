package aggregate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/zaloga/internal/model"
)

func TestLowStock(t *testing.T) {
	supplies := []model.Supply{
		{ID: 1, Name: "Gloves", CurrentStock: 5, ReorderLevel: 10, MaximumQuantity: 100},
		{ID: 2, Name: "Masks", CurrentStock: 50, ReorderLevel: 10, MaximumQuantity: 100},
		{ID: 3, Name: "Tape", CurrentStock: 10, ReorderLevel: 10, MaximumQuantity: 40},
	}

	low := LowStock(supplies)
	require.Len(t, low, 2)
	assert.Equal(t, "Gloves", low[0].Name)
	assert.Equal(t, "Tape", low[1].Name)
	assert.Equal(t, 25.0, low[1].StockPercent())
}

func TestCountEquipment(t *testing.T) {
	c := CountEquipment([]model.Equipment{
		{Status: model.EquipmentAvailable},
		{Status: model.EquipmentAvailable},
		{Status: model.EquipmentMaintenance},
		{Status: model.EquipmentInUse},
		{Status: ""},
	})
	assert.Equal(t, EquipmentCounts{Total: 5, Available: 2, InUse: 1, Maintenance: 1}, c)
}

func TestMaintenanceAlerts(t *testing.T) {
	equipment := []model.Equipment{
		// Due in 15h of a 100h interval: inside the 20% window.
		{ID: 1, Name: "Drill", TotalHours: 85, LastMaintenanceHours: 0, MaintenanceIntervalHours: 100},
		// Due in 50h: outside the window.
		{ID: 2, Name: "Saw", TotalHours: 50, LastMaintenanceHours: 0, MaintenanceIntervalHours: 100},
		// 10h past due.
		{ID: 3, Name: "Lift", TotalHours: 210, LastMaintenanceHours: 100, MaintenanceIntervalHours: 100},
		// No hours recorded.
		{ID: 4, Name: "New", TotalHours: 0, MaintenanceIntervalHours: 100},
		// No interval.
		{ID: 5, Name: "Ladder", TotalHours: 300},
	}

	alerts := MaintenanceAlerts(equipment)
	require.Len(t, alerts, 2)

	assert.Equal(t, "Lift", alerts[0].Equipment.Name)
	assert.True(t, alerts[0].Overdue)
	assert.Equal(t, 200.0, alerts[0].NextDue)
	assert.Equal(t, -10.0, alerts[0].HoursUntilDue)

	assert.Equal(t, "Drill", alerts[1].Equipment.Name)
	assert.False(t, alerts[1].Overdue)
	assert.Equal(t, 15.0, alerts[1].HoursUntilDue)
}

func TestMaintenanceAlertAtDuePointIsOverdue(t *testing.T) {
	alerts := MaintenanceAlerts([]model.Equipment{
		{Name: "Pump", TotalHours: 100, MaintenanceIntervalHours: 100},
	})
	require.Len(t, alerts, 1)
	assert.True(t, alerts[0].Overdue)
}
