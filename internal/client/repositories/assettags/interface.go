package assettags

import (
	"context"
	"time"

	"assettrack/internal/client/models"
)

// Repository describes the local asset-tag cache: a read-mostly projection
// of the authority's tag table, refreshed incrementally by watermark.
type Repository interface {
	// Get returns a cached tag or common.ErrNotFound.
	Get(ctx context.Context, tag string) (*models.AssetTag, error)

	// Upsert inserts or overwrites a cache row with an authority record.
	Upsert(ctx context.Context, tag *models.AssetTag) error

	// MarkUsed flips a cached tag to used with the given serial without
	// touching updated_at, so the watermark stays authority-sourced.
	MarkUsed(ctx context.Context, tag, serial string) error

	// RegisterLocal inserts a tag as unused with a zero updated_at. Used by
	// the unknown-tag confirmation flow; the row is replaced by the
	// authority's version on the next cache refresh.
	RegisterLocal(ctx context.Context, tag string) error

	// GetUnconfirmed lists locally registered tags the authority has not
	// confirmed yet (zero updated_at).
	GetUnconfirmed(ctx context.Context) ([]string, error)

	// MaxUpdatedAt returns the incremental-sync watermark: the greatest
	// authority updated_at seen locally, or the zero time for an empty cache.
	MaxUpdatedAt(ctx context.Context) (time.Time, error)
}
