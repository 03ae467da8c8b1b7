package service

import (
	"github.com/noah-isme/sma-timetable-api/internal/models"
)

// DefaultMaxTeacherHours is the weekly workload ceiling applied when the
// caller supplies none.
const DefaultMaxTeacherHours = 20

// ConstraintChecker evaluates soft constraints. It is pure and never
// rejects: violations surface as structured warnings only.
type ConstraintChecker struct{}

// NewConstraintChecker constructs a checker.
func NewConstraintChecker() *ConstraintChecker {
	return &ConstraintChecker{}
}

// Check evaluates the whole slot set: one TeacherOverload warning per
// teacher above the ceiling (teachers in first-appearance order), then one
// MissingEquipment warning per under-equipped slot in slot order.
func (c *ConstraintChecker) Check(slots []models.TimeSlot, maxTeacherHours int, rooms map[string]models.Room) []models.ConstraintWarning {
	if maxTeacherHours <= 0 {
		maxTeacherHours = DefaultMaxTeacherHours
	}

	warnings := make([]models.ConstraintWarning, 0)

	seen := make(map[string]bool)
	for _, slot := range slots {
		if slot.TeacherID == nil || seen[*slot.TeacherID] {
			continue
		}
		seen[*slot.TeacherID] = true
		if w, ok := teacherOverload(slots, *slot.TeacherID, maxTeacherHours); ok {
			warnings = append(warnings, w)
		}
	}

	for _, slot := range slots {
		if w, ok := missingEquipment(slot, rooms); ok {
			warnings = append(warnings, w)
		}
	}

	return warnings
}

// CheckSlot evaluates only the constraints involving one slot. The composer
// calls this after each acceptance so a violation is reported once, when
// the slot that introduces it lands.
func (c *ConstraintChecker) CheckSlot(slots []models.TimeSlot, slot models.TimeSlot, maxTeacherHours int, rooms map[string]models.Room) []models.ConstraintWarning {
	if maxTeacherHours <= 0 {
		maxTeacherHours = DefaultMaxTeacherHours
	}

	warnings := make([]models.ConstraintWarning, 0)
	if slot.TeacherID != nil {
		if w, ok := teacherOverload(slots, *slot.TeacherID, maxTeacherHours); ok {
			warnings = append(warnings, w)
		}
	}
	if w, ok := missingEquipment(slot, rooms); ok {
		warnings = append(warnings, w)
	}
	return warnings
}

func teacherOverload(slots []models.TimeSlot, teacherID string, maxTeacherHours int) (models.ConstraintWarning, bool) {
	var hours float64
	for _, slot := range slots {
		if slot.TeacherID != nil && *slot.TeacherID == teacherID {
			hours += slot.DurationHours()
		}
	}
	if hours <= float64(maxTeacherHours) {
		return models.ConstraintWarning{}, false
	}
	return models.ConstraintWarning{
		Type:      models.WarningTeacherOverload,
		TeacherID: teacherID,
		Hours:     hours,
		MaxHours:  maxTeacherHours,
	}, true
}

func missingEquipment(slot models.TimeSlot, rooms map[string]models.Room) (models.ConstraintWarning, bool) {
	if len(slot.EquipmentNeeded) == 0 || slot.RoomID == nil {
		return models.ConstraintWarning{}, false
	}
	room, ok := rooms[*slot.RoomID]
	if !ok {
		// Room directory could not resolve the reference; existence is not
		// validated by this engine.
		return models.ConstraintWarning{}, false
	}

	available := make(map[string]bool, len(room.Equipment))
	for _, item := range room.Equipment {
		available[item] = true
	}

	var missing []string
	for _, item := range slot.EquipmentNeeded {
		if !available[item] {
			missing = append(missing, item)
		}
	}
	if len(missing) == 0 {
		return models.ConstraintWarning{}, false
	}
	return models.ConstraintWarning{
		Type:             models.WarningMissingEquipment,
		RoomID:           room.ID,
		RoomName:         room.Name,
		MissingEquipment: missing,
	}, true
}
