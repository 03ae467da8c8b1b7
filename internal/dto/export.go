package dto

import "time"

// CalendarEvent is one weekly-recurring event rendered from a committed slot.
type CalendarEvent struct {
	UID         string  `json:"uid"`
	Title       string  `json:"title"`
	Day         string  `json:"day"`
	StartTime   string  `json:"startTime"`
	EndTime     string  `json:"endTime"`
	Location    string  `json:"location,omitempty"`
	SessionType string  `json:"sessionType,omitempty"`
	CourseID    *string `json:"courseId,omitempty"`
	TeacherID   *string `json:"teacherId,omitempty"`
	ClassID     *string `json:"classId,omitempty"`
	Recurrence  string  `json:"recurrence"`
}

// CalendarFeed is the read-only calendar rendition of a committed timetable.
type CalendarFeed struct {
	TimetableID string          `json:"timetableId"`
	Name        string          `json:"name"`
	Version     int             `json:"version"`
	Events      []CalendarEvent `json:"events"`
	GeneratedAt time.Time       `json:"generatedAt"`
}
