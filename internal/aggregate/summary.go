package aggregate

import (
	"sort"

	"github.com/erazemk/zaloga/internal/model"
)

// alertWindow is the fraction of the maintenance interval before the due
// point at which equipment starts showing up as an alert.
const alertWindow = 0.2

// LowStock returns the supplies at or below their reorder level, in input
// order.
func LowStock(supplies []model.Supply) []model.Supply {
	var out []model.Supply
	for _, s := range supplies {
		if s.LowStock() {
			out = append(out, s)
		}
	}
	return out
}

// EquipmentCounts summarizes equipment by status.
type EquipmentCounts struct {
	Total       int
	Available   int
	InUse       int
	Maintenance int
}

// CountEquipment counts equipment by status.
func CountEquipment(equipment []model.Equipment) EquipmentCounts {
	c := EquipmentCounts{Total: len(equipment)}
	for _, e := range equipment {
		switch e.Status {
		case model.EquipmentAvailable:
			c.Available++
		case model.EquipmentInUse:
			c.InUse++
		case model.EquipmentMaintenance:
			c.Maintenance++
		}
	}
	return c
}

// MaintenanceAlert is equipment approaching or past its service point.
type MaintenanceAlert struct {
	Equipment     model.Equipment
	NextDue       float64
	HoursUntilDue float64
	Overdue       bool
}

// MaintenanceAlerts returns equipment within the alert window of its next
// service, most urgent first. Equipment without recorded hours or without
// a maintenance interval is skipped.
func MaintenanceAlerts(equipment []model.Equipment) []MaintenanceAlert {
	var out []MaintenanceAlert
	for _, e := range equipment {
		if e.TotalHours == 0 || e.MaintenanceIntervalHours == 0 {
			continue
		}
		nextDue := e.LastMaintenanceHours + e.MaintenanceIntervalHours
		until := nextDue - e.TotalHours
		if until > e.MaintenanceIntervalHours*alertWindow {
			continue
		}
		out = append(out, MaintenanceAlert{
			Equipment:     e,
			NextDue:       nextDue,
			HoursUntilDue: until,
			Overdue:       until <= 0,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].HoursUntilDue < out[j].HoursUntilDue
	})
	return out
}
