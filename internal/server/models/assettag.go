package models

import "time"

// AssetTag is the authoritative record of one inventory tag. UpdatedAt moves
// on every state change and drives the clients' incremental cache refresh.
type AssetTag struct {
	Tag        string
	Status     string
	LastSerial string
	UpdatedAt  time.Time
}
