package models

// Soft-constraint warning types. Warnings inform, they never reject.
const (
	WarningTeacherOverload  = "TeacherOverload"
	WarningMissingEquipment = "MissingEquipment"
)

// ConstraintWarning is a structured soft-constraint violation report.
type ConstraintWarning struct {
	Type             string   `json:"type"`
	TeacherID        string   `json:"teacher_id,omitempty"`
	Hours            float64  `json:"hours,omitempty"`
	MaxHours         int      `json:"max_hours,omitempty"`
	RoomID           string   `json:"room_id,omitempty"`
	RoomName         string   `json:"room_name,omitempty"`
	MissingEquipment []string `json:"missing_equipment,omitempty"`
}
