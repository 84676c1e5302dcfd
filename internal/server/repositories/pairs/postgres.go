package pairs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"assettrack/internal/common"
	"assettrack/internal/dbx"
	"assettrack/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Upsert relies on the UNIQUE (asset_tag, serial) constraint. The xmax
// system column is zero only for freshly inserted rows, which distinguishes
// an insert from a conflict-update in one round trip.
func (r *PostgresRepository) Upsert(ctx context.Context, rec *models.PairRecord) (bool, error) {
	query :=
		`INSERT INTO pairs (asset_tag, serial, assigned_by, assigned_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (asset_tag, serial) DO UPDATE
		 SET assigned_by = EXCLUDED.assigned_by, assigned_at = EXCLUDED.assigned_at
		 RETURNING id, (xmax = 0)
		 `

	var inserted bool
	err := r.db.QueryRowContext(ctx, query,
		rec.AssetTag, rec.Serial, rec.AssignedBy, rec.AssignedAt).Scan(&rec.ID, &inserted)

	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}

	return inserted, nil
}

func (r *PostgresRepository) latest(ctx context.Context, column, value string) (*models.PairRecord, error) {
	query := fmt.Sprintf(
		`SELECT id, asset_tag, serial, assigned_by, assigned_at FROM pairs
		 WHERE %s = $1
		 ORDER BY assigned_at DESC
		 LIMIT 1
		 `, column)

	rec := &models.PairRecord{}
	err := r.db.QueryRowContext(ctx, query, value).
		Scan(&rec.ID, &rec.AssetTag, &rec.Serial, &rec.AssignedBy, &rec.AssignedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return rec, nil
}

func (r *PostgresRepository) LatestByTag(ctx context.Context, tag string) (*models.PairRecord, error) {
	return r.latest(ctx, "asset_tag", tag)
}

func (r *PostgresRepository) LatestBySerial(ctx context.Context, serial string) (*models.PairRecord, error) {
	return r.latest(ctx, "serial", serial)
}

func (r *PostgresRepository) HistoryByTag(ctx context.Context, tag string) ([]models.PairRecord, error) {
	query :=
		`SELECT id, asset_tag, serial, assigned_by, assigned_at FROM pairs
		 WHERE asset_tag = $1
		 ORDER BY assigned_at DESC
		 `

	rows, err := r.db.QueryContext(ctx, query, tag)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []models.PairRecord
	for rows.Next() {
		var rec models.PairRecord
		if err := rows.Scan(&rec.ID, &rec.AssetTag, &rec.Serial, &rec.AssignedBy, &rec.AssignedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}
