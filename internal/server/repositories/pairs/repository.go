package pairs

import (
	"context"

	"assettrack/internal/server/models"
)

type Repository interface {
	// Upsert records an assignment keyed by (asset_tag, serial). A replayed
	// identical pair refreshes assigned_at/assigned_by in place; inserted
	// reports whether a new row was created.
	Upsert(ctx context.Context, rec *models.PairRecord) (inserted bool, err error)

	// LatestByTag returns the most recent assignment for a tag, or
	// common.ErrNotFound.
	LatestByTag(ctx context.Context, tag string) (*models.PairRecord, error)

	// LatestBySerial returns the most recent assignment holding a serial,
	// or common.ErrNotFound.
	LatestBySerial(ctx context.Context, serial string) (*models.PairRecord, error)

	// HistoryByTag lists every assignment of a tag, most recent first.
	HistoryByTag(ctx context.Context, tag string) ([]models.PairRecord, error)
}
