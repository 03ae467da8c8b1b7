package models

import (
	"time"

	"github.com/lib/pq"
)

// Room is a read-only collaborator used for equipment sufficiency checks.
type Room struct {
	ID        string         `db:"id" json:"id"`
	Name      string         `db:"name" json:"name"`
	Building  string         `db:"building" json:"building"`
	Capacity  int            `db:"capacity" json:"capacity"`
	Equipment pq.StringArray `db:"equipment" json:"equipment"`
	Active    bool           `db:"active" json:"active"`
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt time.Time      `db:"updated_at" json:"updated_at"`
}
