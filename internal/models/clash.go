package models

// Clash classes in their fixed tie-break priority order. The ordering is
// part of the contract: TEACHER beats ROOM beats CLASS when a pair shares
// more than one identity.
const (
	ClashTypeTeacher = "TEACHER"
	ClashTypeRoom    = "ROOM"
	ClashTypeClass   = "CLASS"
)

// ClashReport is the detector verdict for a slot set. When HasClash is set
// it describes the first clashing pair found in slot-insertion order.
type ClashReport struct {
	HasClash     bool       `json:"has_clash"`
	Type         string     `json:"type,omitempty"`
	SharedID     string     `json:"shared_id,omitempty"`
	OffendingIDs []string   `json:"offending_ids,omitempty"`
	Slots        []TimeSlot `json:"slots,omitempty"`
}
