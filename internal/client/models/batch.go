package models

import "time"

// BatchStatus tracks an upload batch through its lifecycle. A batch is never
// rolled back; a failed batch is retried whole on the next online edge.
type BatchStatus string

const (
	BatchStatusPending   BatchStatus = "pending"
	BatchStatusUploading BatchStatus = "uploading"
	BatchStatusDone      BatchStatus = "done"
	BatchStatusError     BatchStatus = "error"
)

// BatchItem is an immutable snapshot of a pair taken at submission time.
// Items keep their position so upload outcomes can be applied back
// positionally.
type BatchItem struct {
	PairID    string
	AssetTag  string
	Serial    string
	ScannedAt time.Time
}

// UploadBatch is one atomic submission unit queued while offline.
type UploadBatch struct {
	ID           string
	Status       BatchStatus
	CreatedAt    time.Time
	ErrorMessage string
	Items        []BatchItem
}
