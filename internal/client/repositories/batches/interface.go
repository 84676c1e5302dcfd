package batches

import (
	"context"

	"assettrack/internal/client/models"
)

// Repository describes storage operations for queued upload batches and
// their ordered item snapshots.
type Repository interface {
	// Create stores a batch together with its items. Item order is the
	// upload order and is preserved across reads.
	Create(ctx context.Context, batch *models.UploadBatch) error

	// GetReplayable lists batches eligible for upload, oldest first, items
	// included. That is every unfinished batch (status pending, uploading,
	// or error): an uploading batch only survives a restart when the
	// process died mid-upload, and the server merge is idempotent, so
	// replaying it whole is safe.
	GetReplayable(ctx context.Context) ([]models.UploadBatch, error)

	// GetByID returns a single batch with its items.
	GetByID(ctx context.Context, id string) (*models.UploadBatch, error)

	// SetStatus moves a batch to the given status. The error message is
	// stored verbatim and cleared again on non-error transitions.
	SetStatus(ctx context.Context, id string, status models.BatchStatus, errorMessage string) error

	// GetQueuedPairIDs returns the ids of pairs snapshotted into batches
	// that have not finished yet (status pending, uploading, or error).
	GetQueuedPairIDs(ctx context.Context) (map[string]struct{}, error)

	// Clear removes all batches and items (logout / local-data wipe).
	Clear(ctx context.Context) error
}
