// Package wire defines the JSON wire contract between the client and the
// authority server. Both sides marshal through these types so the contract
// lives in exactly one place.
package wire

import "time"

// Batch item outcome statuses. The response array of a batch upload has the
// same length and order as the request; clients align outcomes positionally.
const (
	StatusOkInserted          = "ok_inserted"
	StatusOkOverwriteSamePair = "ok_overwrite_same_pair"
	StatusMissingAssetTag     = "missing_asset_tag"
	StatusAssetTagInUse       = "asset_tag_in_use"
)

// Asset tag statuses as carried on the wire and in both stores.
const (
	TagStatusUnused = "unused"
	TagStatusUsed   = "used"
)

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse carries the bearer token and its lifetime in seconds.
type LoginResponse struct {
	Token     string `json:"token"`
	Username  string `json:"username"`
	ExpiresIn int64  `json:"expires_in"`
}

// RegisterRequest is the body of POST /auth/register.
type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RegisterResponse confirms the created operator account.
type RegisterResponse struct {
	Username string `json:"username"`
}

// AssetTagRecord is one element of the GET /asset-tags response.
type AssetTagRecord struct {
	Tag        string    `json:"tag"`
	Status     string    `json:"status"`
	LastSerial string    `json:"last_serial,omitempty"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// RegisterTagRequest is the body of POST /asset-tags. Registration is
// idempotent: an already-known tag is a no-op success.
type RegisterTagRequest struct {
	Tag string `json:"tag" binding:"required"`
}

// BatchItem is one element of the POST /pairs/batch request array.
type BatchItem struct {
	AssetTag  string    `json:"asset_tag"`
	Serial    string    `json:"serial"`
	ScannedAt time.Time `json:"scanned_at"`
}

// BatchItemResult is one element of the POST /pairs/batch response array,
// positionally aligned with the request.
type BatchItemResult struct {
	Status   string `json:"status"`
	AssetTag string `json:"asset_tag"`
	Serial   string `json:"serial"`
	Message  string `json:"message,omitempty"`
}

// HistoryEntry is one assignment event in a tag's pair history.
type HistoryEntry struct {
	Serial     string    `json:"serial"`
	AssignedAt time.Time `json:"assigned_at"`
	AssignedBy string    `json:"assigned_by"`
}

// SearchResult is the GET /pairs/search response: the tag's current state
// plus its full history, most recent first.
type SearchResult struct {
	AssetTag string         `json:"asset_tag"`
	Serial   string         `json:"serial,omitempty"`
	Status   string         `json:"status"`
	History  []HistoryEntry `json:"history"`
}

// Replace lookup keys.
const (
	SearchByAssetTag = "asset_tag"
	SearchBySerial   = "serial"
)

// ReplaceRequest is the body of PUT /pairs/replace. At least one of
// NewAssetTag/NewSerial must be set; absent fields inherit from the
// located record.
type ReplaceRequest struct {
	SearchBy    string `json:"searchBy" binding:"required,oneof=asset_tag serial"`
	Value       string `json:"value" binding:"required"`
	NewAssetTag string `json:"new_asset_tag,omitempty"`
	NewSerial   string `json:"new_serial,omitempty"`
}

// ReplaceResponse is the PUT /pairs/replace answer.
type ReplaceResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
