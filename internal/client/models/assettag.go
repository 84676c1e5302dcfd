package models

import "time"

// TagStatus mirrors the authority's view of an asset tag.
type TagStatus string

const (
	TagStatusUnused TagStatus = "unused"
	TagStatusUsed   TagStatus = "used"
)

// AssetTag is one row of the local asset-tag cache. UpdatedAt carries the
// authority's timestamp and feeds the incremental-sync watermark; rows
// registered locally and not yet confirmed by the authority keep a zero
// UpdatedAt so they never advance the watermark.
type AssetTag struct {
	Tag        string
	Status     TagStatus
	LastSerial string
	UpdatedAt  time.Time
}

// Confirmed reports whether the row came from the authority rather than a
// local "add unknown tag" confirmation.
func (t *AssetTag) Confirmed() bool {
	return !t.UpdatedAt.IsZero()
}
