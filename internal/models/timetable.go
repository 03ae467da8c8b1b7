package models

import (
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx/types"
	"github.com/lib/pq"
)

// SessionType classifies the kind of session a slot hosts.
type SessionType string

const (
	SessionTypeLecture  SessionType = "LECTURE"
	SessionTypeLab      SessionType = "LAB"
	SessionTypeTutorial SessionType = "TUTORIAL"
	SessionTypeExam     SessionType = "EXAM"
	SessionTypeOther    SessionType = "OTHER"
)

// Weekdays enumerates accepted day-of-week values in calendar order.
var Weekdays = []string{"MONDAY", "TUESDAY", "WEDNESDAY", "THURSDAY", "FRIDAY", "SATURDAY", "SUNDAY"}

// ValidDay reports whether name is a recognised day-of-week value.
func ValidDay(name string) bool {
	upper := strings.ToUpper(strings.TrimSpace(name))
	for _, day := range Weekdays {
		if day == upper {
			return true
		}
	}
	return false
}

// TimeSlot is one scheduled occurrence inside a timetable. Reference fields
// are optional; a slot with no teacher/room/class is simply unassigned.
type TimeSlot struct {
	ID              string         `db:"id" json:"id"`
	TimetableID     string         `db:"timetable_id" json:"timetable_id,omitempty"`
	DayOfWeek       string         `db:"day_of_week" json:"day_of_week"`
	StartTime       string         `db:"start_time" json:"start_time"`
	EndTime         string         `db:"end_time" json:"end_time"`
	CourseID        *string        `db:"course_id" json:"course_id,omitempty"`
	TeacherID       *string        `db:"teacher_id" json:"teacher_id,omitempty"`
	RoomID          *string        `db:"room_id" json:"room_id,omitempty"`
	ClassID         *string        `db:"class_id" json:"class_id,omitempty"`
	SessionType     SessionType    `db:"session_type" json:"session_type,omitempty"`
	EquipmentNeeded pq.StringArray `db:"equipment_needed" json:"equipment_needed,omitempty"`
	Position        int            `db:"position" json:"-"`
	CreatedAt       time.Time      `db:"created_at" json:"created_at,omitempty"`
}

// Clone returns an independent copy of the slot, including pointer fields
// and the equipment slice, so mutations on the copy never reach the source.
func (s TimeSlot) Clone() TimeSlot {
	clone := s
	clone.CourseID = cloneStringPtr(s.CourseID)
	clone.TeacherID = cloneStringPtr(s.TeacherID)
	clone.RoomID = cloneStringPtr(s.RoomID)
	clone.ClassID = cloneStringPtr(s.ClassID)
	if s.EquipmentNeeded != nil {
		clone.EquipmentNeeded = append(pq.StringArray{}, s.EquipmentNeeded...)
	}
	return clone
}

// DurationHours returns the scheduled hours covered by the slot, or zero
// when either clock value is malformed.
func (s TimeSlot) DurationHours() float64 {
	start, okStart := MinuteOfDay(s.StartTime)
	end, okEnd := MinuteOfDay(s.EndTime)
	if !okStart || !okEnd || end <= start {
		return 0
	}
	return float64(end-start) / 60.0
}

// MinuteOfDay parses an HH:MM wall-clock value into minutes since midnight.
func MinuteOfDay(clock string) (int, bool) {
	parts := strings.SplitN(strings.TrimSpace(clock), ":", 2)
	if len(parts) != 2 {
		return 0, false
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, false
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, false
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, false
	}
	return hour*60 + minute, true
}

// Timetable is an ordered, versioned slot collection scoped to a term and
// optionally a class. Once committed it is only replaced, never mutated.
type Timetable struct {
	ID             string         `db:"id" json:"id"`
	TermID         string         `db:"term_id" json:"term_id"`
	ClassID        *string        `db:"class_id" json:"class_id,omitempty"`
	Version        int            `db:"version" json:"version"`
	IsActive       bool           `db:"is_active" json:"is_active"`
	CreatedBy      string         `db:"created_by" json:"created_by,omitempty"`
	LastModifiedBy string         `db:"last_modified_by" json:"last_modified_by,omitempty"`
	Meta           types.JSONText `db:"meta" json:"meta,omitempty"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at" json:"updated_at"`
	TimeSlots      []TimeSlot     `db:"-" json:"time_slots"`
}

// TimetableFilter describes query params for listing timetables.
type TimetableFilter struct {
	TermID   string
	ClassID  *string
	Active   *bool
	Page     int
	PageSize int
}

// CloneSlots returns an independent deep copy of the timetable slot list.
func CloneSlots(slots []TimeSlot) []TimeSlot {
	copied := make([]TimeSlot, len(slots))
	for i, slot := range slots {
		copied[i] = slot.Clone()
	}
	return copied
}

func cloneStringPtr(v *string) *string {
	if v == nil {
		return nil
	}
	value := *v
	return &value
}
