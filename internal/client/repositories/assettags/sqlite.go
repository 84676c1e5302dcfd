// Package assettags provides the sqlite-backed local cache of the
// authority's asset-tag table.
package assettags

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"assettrack/internal/client/models"
	"assettrack/internal/common"
	"assettrack/internal/dbx"
)

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository returns a new SQLiteRepository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Get(ctx context.Context, tag string) (*models.AssetTag, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT tag, status, last_serial, updated_at FROM asset_tags WHERE tag = ?`, tag)

	t := &models.AssetTag{}
	var lastSerial sql.NullString
	if err := row.Scan(&t.Tag, &t.Status, &lastSerial, &t.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("query row scan failed: %w", err)
	}
	t.LastSerial = lastSerial.String
	return t, nil
}

// Upsert overwrites the whole row; authority records always win over local
// provisional state.
func (r *SQLiteRepository) Upsert(ctx context.Context, t *models.AssetTag) error {
	query := `INSERT INTO asset_tags (tag, status, last_serial, updated_at)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(tag) DO UPDATE SET status = excluded.status,
				last_serial = excluded.last_serial,
				updated_at = excluded.updated_at`
	_, err := r.db.ExecContext(ctx, query, t.Tag, t.Status, nullable(t.LastSerial), t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert asset tag: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) MarkUsed(ctx context.Context, tag, serial string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE asset_tags SET status = ?, last_serial = ? WHERE tag = ?`,
		models.TagStatusUsed, serial, tag)
	if err != nil {
		return fmt.Errorf("failed to mark asset tag used: %w", err)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if ra == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) RegisterLocal(ctx context.Context, tag string) error {
	// ON CONFLICT DO NOTHING keeps confirmation idempotent
	query := `INSERT INTO asset_tags (tag, status, last_serial, updated_at)
			VALUES (?, ?, NULL, ?) ON CONFLICT(tag) DO NOTHING`
	_, err := r.db.ExecContext(ctx, query, tag, models.TagStatusUnused, time.Time{})
	if err != nil {
		return fmt.Errorf("failed to register asset tag: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetUnconfirmed(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT tag FROM asset_tags WHERE updated_at = ? ORDER BY tag`, time.Time{})
	if err != nil {
		return nil, fmt.Errorf("failed to select unconfirmed tags: %w", err)
	}
	defer rows.Close()

	var result []string
	for rows.Next() {
		var tag string
		if err := rows.Scan(&tag); err != nil {
			return nil, err
		}
		result = append(result, tag)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) MaxUpdatedAt(ctx context.Context) (time.Time, error) {
	var max sql.NullTime
	err := r.db.QueryRowContext(ctx, `SELECT MAX(updated_at) FROM asset_tags`).Scan(&max)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to query watermark: %w", err)
	}
	if !max.Valid {
		return time.Time{}, nil
	}
	return max.Time, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
