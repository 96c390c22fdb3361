package model

// Equipment is a reusable asset tracked by hours of use.
type Equipment struct {
	ID                       int64   `json:"equipmentId,omitempty"`
	Name                     string  `json:"name"`
	SerialNumber             string  `json:"serialNumber,omitempty"`
	Description              string  `json:"description,omitempty"`
	Location                 string  `json:"location,omitempty"`
	Status                   string  `json:"equipmentStatus,omitempty"`
	TotalHours               float64 `json:"totalHours"`
	LastMaintenanceHours     float64 `json:"lastMaintenanceHours"`
	MaintenanceIntervalHours float64 `json:"maintenanceIntervalHours"`
	NextMaintenanceDueHours  float64 `json:"nextMaintenanceDueHours,omitempty"`
	MaintenanceDue           bool    `json:"maintenanceDue,omitempty"`
	LastCheckedOutBy         string  `json:"lastCheckedOutBy,omitempty"`
	LastCheckOutTime         string  `json:"lastCheckOutTime,omitempty"`
}

// Equipment statuses.
const (
	EquipmentAvailable   = "AVAILABLE"
	EquipmentInUse       = "IN_USE"
	EquipmentMaintenance = "MAINTENANCE"
)

// EquipmentStatuses lists the statuses in display order.
var EquipmentStatuses = []string{EquipmentAvailable, EquipmentInUse, EquipmentMaintenance}

// ValidEquipmentStatus reports whether s is a known equipment status.
func ValidEquipmentStatus(s string) bool {
	for _, v := range EquipmentStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// MaintenanceRecord is one maintenance cycle of a piece of equipment.
type MaintenanceRecord struct {
	ID                      int64      `json:"maintenanceRecordId"`
	MaintenancePerformed    string     `json:"maintenancePerformed,omitempty"`
	Description             string     `json:"description,omitempty"`
	Note                    string     `json:"note,omitempty"`
	TotalHoursAtMaintenance float64    `json:"totalHoursAtMaintenance"`
	PerformedAt             string     `json:"performedAt,omitempty"`
	Equipment               *Equipment `json:"equipment,omitempty"`
}
