package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-timetable-api/internal/models"
)

func strPtr(v string) *string {
	return &v
}

func slot(id, day, start, end string, teacher, room, class *string) models.TimeSlot {
	return models.TimeSlot{
		ID:        id,
		DayOfWeek: day,
		StartTime: start,
		EndTime:   end,
		TeacherID: teacher,
		RoomID:    room,
		ClassID:   class,
	}
}

func TestPairwiseClashDetectorTeacherOverlap(t *testing.T) {
	detector := NewPairwiseClashDetector()

	report := detector.Detect([]models.TimeSlot{
		slot("s1", "MONDAY", "09:00", "10:00", strPtr("t-1"), strPtr("r-1"), nil),
		slot("s2", "MONDAY", "09:30", "10:30", strPtr("t-1"), strPtr("r-2"), nil),
	})

	require.True(t, report.HasClash)
	assert.Equal(t, models.ClashTypeTeacher, report.Type)
	assert.Equal(t, "t-1", report.SharedID)
	assert.Equal(t, []string{"s1", "s2"}, report.OffendingIDs)
	require.Len(t, report.Slots, 2)
}

func TestPairwiseClashDetectorPriorityOrdering(t *testing.T) {
	detector := NewPairwiseClashDetector()

	// The pair shares teacher, room and class at once. Teacher wins.
	report := detector.Detect([]models.TimeSlot{
		slot("s1", "TUESDAY", "08:00", "09:00", strPtr("t-1"), strPtr("r-1"), strPtr("c-1")),
		slot("s2", "TUESDAY", "08:30", "09:30", strPtr("t-1"), strPtr("r-1"), strPtr("c-1")),
	})

	require.True(t, report.HasClash)
	assert.Equal(t, models.ClashTypeTeacher, report.Type)

	// Same room but different teachers. Room wins over class.
	report = detector.Detect([]models.TimeSlot{
		slot("s1", "TUESDAY", "08:00", "09:00", strPtr("t-1"), strPtr("r-1"), strPtr("c-1")),
		slot("s2", "TUESDAY", "08:30", "09:30", strPtr("t-2"), strPtr("r-1"), strPtr("c-1")),
	})

	require.True(t, report.HasClash)
	assert.Equal(t, models.ClashTypeRoom, report.Type)
}

func TestPairwiseClashDetectorFirstPairWins(t *testing.T) {
	detector := NewPairwiseClashDetector()

	slots := []models.TimeSlot{
		slot("s1", "MONDAY", "09:00", "10:00", strPtr("t-1"), nil, nil),
		slot("s2", "MONDAY", "09:00", "10:00", strPtr("t-2"), nil, nil),
		slot("s3", "MONDAY", "09:30", "10:30", strPtr("t-1"), nil, nil),
		slot("s4", "MONDAY", "09:30", "10:30", strPtr("t-2"), nil, nil),
	}

	first := detector.Detect(slots)
	require.True(t, first.HasClash)
	assert.Equal(t, []string{"s1", "s3"}, first.OffendingIDs)

	// Identical input always reports the identical clash.
	second := detector.Detect(slots)
	assert.Equal(t, first, second)
}

func TestPairwiseClashDetectorNoSharedIdentity(t *testing.T) {
	detector := NewPairwiseClashDetector()

	report := detector.Detect([]models.TimeSlot{
		slot("s1", "MONDAY", "09:00", "10:00", strPtr("t-1"), strPtr("r-1"), strPtr("c-1")),
		slot("s2", "MONDAY", "09:00", "10:00", strPtr("t-2"), strPtr("r-2"), strPtr("c-2")),
	})

	assert.False(t, report.HasClash)
}

func TestPairwiseClashDetectorBoundaryTouchDoesNotOverlap(t *testing.T) {
	detector := NewPairwiseClashDetector()

	report := detector.Detect([]models.TimeSlot{
		slot("s1", "FRIDAY", "09:00", "10:00", strPtr("t-1"), nil, nil),
		slot("s2", "FRIDAY", "10:00", "11:00", strPtr("t-1"), nil, nil),
	})

	assert.False(t, report.HasClash)
}

func TestPairwiseClashDetectorDifferentDays(t *testing.T) {
	detector := NewPairwiseClashDetector()

	report := detector.Detect([]models.TimeSlot{
		slot("s1", "MONDAY", "09:00", "10:00", strPtr("t-1"), nil, nil),
		slot("s2", "TUESDAY", "09:00", "10:00", strPtr("t-1"), nil, nil),
	})

	assert.False(t, report.HasClash)
}

func TestPairwiseClashDetectorCaseInsensitiveDay(t *testing.T) {
	detector := NewPairwiseClashDetector()

	report := detector.Detect([]models.TimeSlot{
		slot("s1", "Monday", "09:00", "10:00", nil, strPtr("r-1"), nil),
		slot("s2", "MONDAY", "09:30", "10:30", nil, strPtr("r-1"), nil),
	})

	require.True(t, report.HasClash)
	assert.Equal(t, models.ClashTypeRoom, report.Type)
}

func TestPairwiseClashDetectorMalformedClockNeverOverlaps(t *testing.T) {
	detector := NewPairwiseClashDetector()

	report := detector.Detect([]models.TimeSlot{
		slot("s1", "MONDAY", "not-a-clock", "10:00", strPtr("t-1"), nil, nil),
		slot("s2", "MONDAY", "09:00", "10:00", strPtr("t-1"), nil, nil),
	})

	assert.False(t, report.HasClash)
}
