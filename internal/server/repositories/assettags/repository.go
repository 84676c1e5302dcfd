package assettags

import (
	"context"
	"time"

	"assettrack/internal/server/models"
)

type Repository interface {
	// Get returns a tag or common.ErrNotFound.
	Get(ctx context.Context, tag string) (*models.AssetTag, error)

	// GetForUpdate locks the tag row for the duration of the enclosing
	// transaction. Used by the merge to serialize per-tag decisions.
	GetForUpdate(ctx context.Context, tag string) (*models.AssetTag, error)

	// Create registers a tag as unused. Idempotent: an existing tag is
	// left untouched and reported as created=false.
	Create(ctx context.Context, tag string) (created bool, err error)

	// SetUsed marks a tag used by the given serial and bumps updated_at.
	SetUsed(ctx context.Context, tag, serial string) error

	// ListSince returns tags changed strictly after since, oldest change
	// first. A zero since returns everything.
	ListSince(ctx context.Context, since time.Time) ([]models.AssetTag, error)
}
