package dto

import "github.com/noah-isme/sma-timetable-api/internal/models"

// ComposeConstraints carries caller-supplied composition constraints.
// PreferredRooms and AvoidDays are informational only; they are recorded in
// the committed timetable metadata and never reject a proposal.
type ComposeConstraints struct {
	MaxTeacherHours int      `json:"maxTeacherHours" validate:"omitempty,min=1"`
	PreferredRooms  []string `json:"preferredRooms"`
	AvoidDays       []string `json:"avoidDays"`
}

// SlotProposal is one candidate slot in a composition batch. Batch order
// encodes priority: an earlier accepted slot is never evicted for a later one.
type SlotProposal struct {
	Day             string   `json:"day"`
	StartTime       string   `json:"startTime"`
	EndTime         string   `json:"endTime"`
	CourseID        *string  `json:"courseId,omitempty"`
	TeacherID       *string  `json:"teacherId,omitempty"`
	RoomID          *string  `json:"roomId,omitempty"`
	ClassID         *string  `json:"classId,omitempty"`
	SessionType     string   `json:"sessionType,omitempty"`
	EquipmentNeeded []string `json:"equipmentNeeded,omitempty"`
}

// ComposeTimetableRequest folds a proposal batch into a committed timetable.
type ComposeTimetableRequest struct {
	TermID      string             `json:"termId" validate:"required"`
	ClassID     *string            `json:"classId,omitempty"`
	RequestedBy string             `json:"requestedBy"`
	Constraints ComposeConstraints `json:"constraints"`
	Proposals   []SlotProposal     `json:"proposals"`
}

// RejectedProposal pairs a proposal with the clash that rejected it.
type RejectedProposal struct {
	Proposal SlotProposal       `json:"proposal"`
	Clash    models.ClashReport `json:"clash"`
}

// InvalidProposal records a malformed proposal that was skipped without
// counting as a clash.
type InvalidProposal struct {
	Index    int          `json:"index"`
	Proposal SlotProposal `json:"proposal"`
	Reason   string       `json:"reason"`
}

// ComposeTimetableResponse reports the committed timetable and the full
// accepted/rejected partition of the batch.
type ComposeTimetableResponse struct {
	Timetable         *models.Timetable          `json:"timetable"`
	Clashes           []RejectedProposal         `json:"clashes"`
	Warnings          []models.ConstraintWarning `json:"warnings"`
	Invalid           []InvalidProposal          `json:"invalid,omitempty"`
	AcceptedProposals int                        `json:"acceptedProposals"`
	RejectedProposals int                        `json:"rejectedProposals"`
}
