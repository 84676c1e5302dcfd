// Package models defines the client-side entities persisted in the local
// store: scanned pairs, queued upload batches, the asset-tag cache, and the
// auth token slot.
package models

import "time"

// PairStatus tracks a scan event through reconciliation.
type PairStatus string

const (
	PairStatusPending  PairStatus = "pending"
	PairStatusUploaded PairStatus = "uploaded"
	PairStatusError    PairStatus = "error"
)

// Pair is one (asset_tag, serial) scan event awaiting or having completed
// reconciliation with the authority. (asset_tag, serial) uniqueness is not
// enforced locally; re-scans create new pending rows and the remote merge
// deduplicates.
type Pair struct {
	ID        string
	AssetTag  string
	Serial    string
	ScannedAt time.Time
	Status    PairStatus
}
