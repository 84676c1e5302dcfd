package assettags

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

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

func (r *PostgresRepository) get(ctx context.Context, tag, suffix string) (*models.AssetTag, error) {
	query :=
		`SELECT tag, status, last_serial, updated_at FROM asset_tags
		 WHERE tag = $1` + suffix

	t := &models.AssetTag{}
	var lastSerial sql.NullString
	err := r.db.QueryRowContext(ctx, query, tag).Scan(&t.Tag, &t.Status, &lastSerial, &t.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	t.LastSerial = lastSerial.String

	return t, nil
}

func (r *PostgresRepository) Get(ctx context.Context, tag string) (*models.AssetTag, error) {
	return r.get(ctx, tag, "")
}

func (r *PostgresRepository) GetForUpdate(ctx context.Context, tag string) (*models.AssetTag, error) {
	return r.get(ctx, tag, " FOR UPDATE")
}

func (r *PostgresRepository) Create(ctx context.Context, tag string) (bool, error) {
	query :=
		`INSERT INTO asset_tags (tag, status, updated_at)
		 VALUES ($1, $2, now())
		 ON CONFLICT (tag) DO NOTHING
		 `

	res, err := r.db.ExecContext(ctx, query, tag, "unused")
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}

	ra, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return ra > 0, nil
}

func (r *PostgresRepository) SetUsed(ctx context.Context, tag, serial string) error {
	query :=
		`UPDATE asset_tags
		 SET status = 'used', last_serial = $2, updated_at = now()
		 WHERE tag = $1
		 `

	res, err := r.db.ExecContext(ctx, query, tag, serial)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	ra, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if ra == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) ListSince(ctx context.Context, since time.Time) ([]models.AssetTag, error) {
	query :=
		`SELECT tag, status, last_serial, updated_at FROM asset_tags
		 WHERE updated_at > $1
		 ORDER BY updated_at
		 `

	rows, err := r.db.QueryContext(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []models.AssetTag
	for rows.Next() {
		var t models.AssetTag
		var lastSerial sql.NullString
		if err := rows.Scan(&t.Tag, &t.Status, &lastSerial, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		t.LastSerial = lastSerial.String
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}
