package models

import "time"

// PairRecord is one assignment event: which serial a tag was paired with,
// when, and by whom. Records are append-only except for the idempotent
// re-upload of an identical pair, which refreshes AssignedAt in place.
type PairRecord struct {
	ID         string
	AssetTag   string
	Serial     string
	AssignedBy string
	AssignedAt time.Time
}
