package pairs

import (
	"context"

	"assettrack/internal/client/models"
)

// Repository describes storage operations for locally scanned pairs.
// Implementations are backed by the local sqlite database.
type Repository interface {
	// Insert stores a new pair row. Duplicate (asset_tag, serial) values are
	// allowed; the remote merge is the deduplicating authority.
	Insert(ctx context.Context, pair *models.Pair) error

	// UpdateStatus moves a pair to the given status.
	UpdateStatus(ctx context.Context, id string, status models.PairStatus) error

	// DeletePending removes a pair that has not been uploaded yet. Deleting
	// a pair in any other status returns common.ErrNotFound.
	DeletePending(ctx context.Context, id string) error

	// GetByID returns a single pair.
	GetByID(ctx context.Context, id string) (*models.Pair, error)

	// GetByStatus lists pairs in the given status, oldest scan first.
	GetByStatus(ctx context.Context, status models.PairStatus) ([]models.Pair, error)

	// GetAll lists every pair, oldest scan first.
	GetAll(ctx context.Context) ([]models.Pair, error)

	// Clear removes all pairs (logout / local-data wipe).
	Clear(ctx context.Context) error
}
