package service

import (
	"strings"

	"github.com/noah-isme/sma-timetable-api/internal/models"
)

// ClashDetector finds hard conflicts in a slot set. The pairwise scan is
// adequate at realistic term sizes; keeping it behind an interface lets a
// sweep-line implementation replace it without touching the composer or
// simulator contracts.
type ClashDetector interface {
	Detect(slots []models.TimeSlot) models.ClashReport
}

// clashClassifier extracts one shared-identity dimension from a slot.
type clashClassifier struct {
	clashType string
	identity  func(models.TimeSlot) *string
}

// Classifier order is the tie-break priority: teacher beats room beats
// class. Callers depend on this ordering for reproducible results.
var clashClassifiers = []clashClassifier{
	{models.ClashTypeTeacher, func(s models.TimeSlot) *string { return s.TeacherID }},
	{models.ClashTypeRoom, func(s models.TimeSlot) *string { return s.RoomID }},
	{models.ClashTypeClass, func(s models.TimeSlot) *string { return s.ClassID }},
}

// PairwiseClashDetector scans unordered slot pairs (i<j) in insertion order
// and returns on the first clash found. The scan order is a contract, not
// an optimization: identical input must always report the same clash.
type PairwiseClashDetector struct{}

// NewPairwiseClashDetector constructs the default detector.
func NewPairwiseClashDetector() *PairwiseClashDetector {
	return &PairwiseClashDetector{}
}

// Detect reports the first clashing pair in the slot set, if any.
func (d *PairwiseClashDetector) Detect(slots []models.TimeSlot) models.ClashReport {
	for i := 0; i < len(slots); i++ {
		for j := i + 1; j < len(slots); j++ {
			a := slots[i]
			b := slots[j]
			if !strings.EqualFold(a.DayOfWeek, b.DayOfWeek) {
				continue
			}
			if !windowsOverlap(a, b) {
				continue
			}
			for _, classifier := range clashClassifiers {
				idA := classifier.identity(a)
				idB := classifier.identity(b)
				if idA == nil || idB == nil || *idA != *idB {
					continue
				}
				return models.ClashReport{
					HasClash:     true,
					Type:         classifier.clashType,
					SharedID:     *idA,
					OffendingIDs: []string{a.ID, b.ID},
					Slots:        []models.TimeSlot{a.Clone(), b.Clone()},
				}
			}
		}
	}
	return models.ClashReport{}
}

// windowsOverlap checks half-open [start, end) windows in minutes-of-day.
// Malformed clock values are a caller-side validation concern; slots that
// fail to parse never overlap anything.
func windowsOverlap(a, b models.TimeSlot) bool {
	aStart, ok := models.MinuteOfDay(a.StartTime)
	if !ok {
		return false
	}
	aEnd, ok := models.MinuteOfDay(a.EndTime)
	if !ok {
		return false
	}
	bStart, ok := models.MinuteOfDay(b.StartTime)
	if !ok {
		return false
	}
	bEnd, ok := models.MinuteOfDay(b.EndTime)
	if !ok {
		return false
	}
	return !(aEnd <= bStart || bEnd <= aStart)
}
