package dto

import "github.com/noah-isme/sma-timetable-api/internal/models"

// Simulation change actions.
const (
	ChangeActionAdd    = "add"
	ChangeActionUpdate = "update"
	ChangeActionDelete = "delete"
)

// SlotPatch is the allow-listed set of fields an update edit may touch.
// Unknown JSON fields are rejected at the handler boundary rather than
// silently merged.
type SlotPatch struct {
	Day             *string  `json:"day,omitempty"`
	StartTime       *string  `json:"startTime,omitempty"`
	EndTime         *string  `json:"endTime,omitempty"`
	CourseID        *string  `json:"courseId,omitempty"`
	TeacherID       *string  `json:"teacherId,omitempty"`
	RoomID          *string  `json:"roomId,omitempty"`
	ClassID         *string  `json:"classId,omitempty"`
	SessionType     *string  `json:"sessionType,omitempty"`
	EquipmentNeeded []string `json:"equipmentNeeded,omitempty"`
}

// SimulationChange is one ordered edit in a what-if batch. Update and
// delete address a slot either by its stable id or by position in the
// evolving working array; positional indexes must account for the effect
// of every earlier edit in the same batch.
type SimulationChange struct {
	Action    string        `json:"action" validate:"required,oneof=add update delete"`
	SlotID    string        `json:"slotId,omitempty"`
	SlotIndex *int          `json:"slotIndex,omitempty"`
	NewData   *SlotProposal `json:"newData,omitempty"`
	Patch     *SlotPatch    `json:"patch,omitempty"`
}

// SimulateTimetableRequest applies hypothetical edits to a committed
// timetable without persisting anything.
type SimulateTimetableRequest struct {
	TimetableID string             `json:"timetableId" validate:"required"`
	Changes     []SimulationChange `json:"changes"`
}

// SimulationResult reports the outcome of a single edit.
type SimulationResult struct {
	Action  string              `json:"action"`
	Success bool                `json:"success"`
	Slot    *models.TimeSlot    `json:"slot,omitempty"`
	OldSlot *models.TimeSlot    `json:"oldSlot,omitempty"`
	Clash   *models.ClashReport `json:"clash,omitempty"`
	Error   string              `json:"error,omitempty"`
}

// TeacherImpact compares scheduled hours before and after the simulation.
// PercentChange is null when the teacher had no hours in the baseline.
type TeacherImpact struct {
	TeacherID      string   `json:"teacherId"`
	OriginalHours  float64  `json:"originalHours"`
	SimulatedHours float64  `json:"simulatedHours"`
	Change         float64  `json:"change"`
	PercentChange  *float64 `json:"percentChange"`
}

// RoomUtilization mirrors TeacherImpact keyed by room.
type RoomUtilization struct {
	RoomID         string   `json:"roomId"`
	OriginalHours  float64  `json:"originalHours"`
	SimulatedHours float64  `json:"simulatedHours"`
	Change         float64  `json:"change"`
	PercentChange  *float64 `json:"percentChange"`
}

// ImpactReport aggregates before/after deltas for the simulation.
type ImpactReport struct {
	TeacherImpact   []TeacherImpact   `json:"teacherImpact"`
	RoomUtilization []RoomUtilization `json:"roomUtilization"`
}

// SimulateTimetableResponse returns the working copy, per-edit results and
// the impact delta. The baseline timetable is never modified.
type SimulateTimetableResponse struct {
	SimulatedTimetable *models.Timetable  `json:"simulatedTimetable"`
	Results            []SimulationResult `json:"results"`
	Impact             ImpactReport       `json:"impact"`
}
