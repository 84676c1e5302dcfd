// Package pairs provides the sqlite-backed repository for locally scanned
// pairs awaiting reconciliation.
package pairs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

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

func (r *SQLiteRepository) Insert(ctx context.Context, p *models.Pair) error {
	query := `INSERT INTO pairs (id, asset_tag, serial, scanned_at, status) VALUES (?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query, p.ID, p.AssetTag, p.Serial, p.ScannedAt, p.Status)
	if err != nil {
		return fmt.Errorf("failed to insert pair: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) UpdateStatus(ctx context.Context, id string, status models.PairStatus) error {
	res, err := r.db.ExecContext(ctx, `UPDATE pairs SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return fmt.Errorf("failed to update pair status: %w", err)
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

// DeletePending removes a pair only while it is still pending; once queued
// into an uploading batch the row survives until the batch settles.
func (r *SQLiteRepository) DeletePending(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM pairs WHERE id = ? AND status = ?`, id, models.PairStatusPending)
	if err != nil {
		return fmt.Errorf("failed to delete pair: %w", err)
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

func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.Pair, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, asset_tag, serial, scanned_at, status FROM pairs WHERE id = ?`, id)

	p := &models.Pair{}
	if err := row.Scan(&p.ID, &p.AssetTag, &p.Serial, &p.ScannedAt, &p.Status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("query row scan failed: %w", err)
	}
	return p, nil
}

func (r *SQLiteRepository) GetByStatus(ctx context.Context, status models.PairStatus) ([]models.Pair, error) {
	query := `SELECT id, asset_tag, serial, scanned_at, status FROM pairs WHERE status = ? ORDER BY scanned_at`
	return r.selectPairs(ctx, query, status)
}

func (r *SQLiteRepository) GetAll(ctx context.Context) ([]models.Pair, error) {
	query := `SELECT id, asset_tag, serial, scanned_at, status FROM pairs ORDER BY scanned_at`
	return r.selectPairs(ctx, query)
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM pairs`); err != nil {
		return fmt.Errorf("failed to clear pairs: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) selectPairs(ctx context.Context, query string, args ...any) ([]models.Pair, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select pairs: %w", err)
	}
	defer rows.Close()

	var result []models.Pair
	for rows.Next() {
		var p models.Pair
		if err := rows.Scan(&p.ID, &p.AssetTag, &p.Serial, &p.ScannedAt, &p.Status); err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
