package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-timetable-api/internal/models"
)

func teachingSlot(id, day, start, end, teacher string) models.TimeSlot {
	return slot(id, day, start, end, strPtr(teacher), nil, nil)
}

func TestConstraintCheckerTeacherOverload(t *testing.T) {
	checker := NewConstraintChecker()

	// Five five-hour blocks push one teacher to 25 hours against a 20 hour
	// ceiling. Exactly one warning must surface.
	slots := []models.TimeSlot{
		teachingSlot("s1", "MONDAY", "08:00", "13:00", "t-1"),
		teachingSlot("s2", "TUESDAY", "08:00", "13:00", "t-1"),
		teachingSlot("s3", "WEDNESDAY", "08:00", "13:00", "t-1"),
		teachingSlot("s4", "THURSDAY", "08:00", "13:00", "t-1"),
		teachingSlot("s5", "FRIDAY", "08:00", "13:00", "t-1"),
	}

	warnings := checker.Check(slots, 20, nil)

	require.Len(t, warnings, 1)
	assert.Equal(t, models.WarningTeacherOverload, warnings[0].Type)
	assert.Equal(t, "t-1", warnings[0].TeacherID)
	assert.InDelta(t, 25.0, warnings[0].Hours, 0.001)
	assert.Equal(t, 20, warnings[0].MaxHours)
}

func TestConstraintCheckerExactCeilingIsNotOverload(t *testing.T) {
	checker := NewConstraintChecker()

	slots := []models.TimeSlot{
		teachingSlot("s1", "MONDAY", "08:00", "18:00", "t-1"),
		teachingSlot("s2", "TUESDAY", "08:00", "18:00", "t-1"),
	}

	warnings := checker.Check(slots, 20, nil)
	assert.Empty(t, warnings)
}

func TestConstraintCheckerDefaultCeiling(t *testing.T) {
	checker := NewConstraintChecker()

	slots := []models.TimeSlot{
		teachingSlot("s1", "MONDAY", "08:00", "19:00", "t-1"),
		teachingSlot("s2", "TUESDAY", "08:00", "19:00", "t-1"),
	}

	// 22 hours against the implicit 20 hour default.
	warnings := checker.Check(slots, 0, nil)
	require.Len(t, warnings, 1)
	assert.Equal(t, DefaultMaxTeacherHours, warnings[0].MaxHours)
}

func TestConstraintCheckerMissingEquipment(t *testing.T) {
	checker := NewConstraintChecker()

	rooms := map[string]models.Room{
		"r-1": {ID: "r-1", Name: "Lab A", Equipment: []string{"projector"}},
	}
	labSlot := slot("s1", "MONDAY", "09:00", "11:00", nil, strPtr("r-1"), nil)
	labSlot.EquipmentNeeded = []string{"projector", "microscope", "fume hood"}

	warnings := checker.Check([]models.TimeSlot{labSlot}, 20, rooms)

	require.Len(t, warnings, 1)
	assert.Equal(t, models.WarningMissingEquipment, warnings[0].Type)
	assert.Equal(t, "r-1", warnings[0].RoomID)
	assert.Equal(t, "Lab A", warnings[0].RoomName)
	assert.Equal(t, []string{"microscope", "fume hood"}, warnings[0].MissingEquipment)
}

func TestConstraintCheckerEquipmentSatisfied(t *testing.T) {
	checker := NewConstraintChecker()

	rooms := map[string]models.Room{
		"r-1": {ID: "r-1", Name: "Lab A", Equipment: []string{"projector", "microscope"}},
	}
	labSlot := slot("s1", "MONDAY", "09:00", "11:00", nil, strPtr("r-1"), nil)
	labSlot.EquipmentNeeded = []string{"projector"}

	warnings := checker.Check([]models.TimeSlot{labSlot}, 20, rooms)
	assert.Empty(t, warnings)
}

func TestConstraintCheckerUnknownRoomSkipsEquipmentCheck(t *testing.T) {
	checker := NewConstraintChecker()

	labSlot := slot("s1", "MONDAY", "09:00", "11:00", nil, strPtr("r-404"), nil)
	labSlot.EquipmentNeeded = []string{"projector"}

	warnings := checker.Check([]models.TimeSlot{labSlot}, 20, map[string]models.Room{})
	assert.Empty(t, warnings)
}

func TestConstraintCheckerCheckSlotScopesToOneSlot(t *testing.T) {
	checker := NewConstraintChecker()

	slots := []models.TimeSlot{
		teachingSlot("s1", "MONDAY", "08:00", "13:00", "t-1"),
		teachingSlot("s2", "TUESDAY", "08:00", "13:00", "t-2"),
	}

	// Only t-1 is evaluated even though t-2 also appears in the schedule.
	warnings := checker.CheckSlot(slots, slots[0], 4, nil)
	require.Len(t, warnings, 1)
	assert.Equal(t, "t-1", warnings[0].TeacherID)
}
