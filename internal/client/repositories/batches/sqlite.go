// Package batches provides the sqlite-backed repository for the offline
// upload queue.
package batches

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

func (r *SQLiteRepository) Create(ctx context.Context, b *models.UploadBatch) error {
	query := `INSERT INTO upload_batches (id, status, created_at, error_message) VALUES (?, ?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, query, b.ID, b.Status, b.CreatedAt, b.ErrorMessage); err != nil {
		return fmt.Errorf("failed to insert batch: %w", err)
	}

	itemQuery := `INSERT INTO upload_batch_items (batch_id, position, pair_id, asset_tag, serial, scanned_at)
			VALUES (?, ?, ?, ?, ?, ?)`
	for i, item := range b.Items {
		if _, err := r.db.ExecContext(ctx, itemQuery, b.ID, i, item.PairID, item.AssetTag, item.Serial, item.ScannedAt); err != nil {
			return fmt.Errorf("failed to insert batch item %d: %w", i, err)
		}
	}
	return nil
}

func (r *SQLiteRepository) GetReplayable(ctx context.Context) ([]models.UploadBatch, error) {
	// uploading batches are replayable too: a crash between the durable
	// status write and the server response leaves them stranded, and the
	// remote merge is an idempotent upsert so a replay is safe
	query := `SELECT id, status, created_at, error_message FROM upload_batches
		WHERE status IN (?, ?, ?) ORDER BY created_at`
	rows, err := r.db.QueryContext(ctx, query,
		models.BatchStatusPending, models.BatchStatusUploading, models.BatchStatusError)
	if err != nil {
		return nil, fmt.Errorf("failed to select batches: %w", err)
	}
	defer rows.Close()

	var result []models.UploadBatch
	for rows.Next() {
		var b models.UploadBatch
		if err := rows.Scan(&b.ID, &b.Status, &b.CreatedAt, &b.ErrorMessage); err != nil {
			return nil, err
		}
		result = append(result, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range result {
		items, err := r.selectItems(ctx, result[i].ID)
		if err != nil {
			return nil, err
		}
		result[i].Items = items
	}
	return result, nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.UploadBatch, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, status, created_at, error_message FROM upload_batches WHERE id = ?`, id)

	b := &models.UploadBatch{}
	if err := row.Scan(&b.ID, &b.Status, &b.CreatedAt, &b.ErrorMessage); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("query row scan failed: %w", err)
	}

	items, err := r.selectItems(ctx, id)
	if err != nil {
		return nil, err
	}
	b.Items = items
	return b, nil
}

func (r *SQLiteRepository) SetStatus(ctx context.Context, id string, status models.BatchStatus, errorMessage string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE upload_batches SET status = ?, error_message = ? WHERE id = ?`, status, errorMessage, id)
	if err != nil {
		return fmt.Errorf("failed to update batch status: %w", err)
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

func (r *SQLiteRepository) GetQueuedPairIDs(ctx context.Context) (map[string]struct{}, error) {
	query := `SELECT i.pair_id FROM upload_batch_items i
		JOIN upload_batches b ON b.id = i.batch_id
		WHERE b.status IN (?, ?, ?)`
	rows, err := r.db.QueryContext(ctx, query,
		models.BatchStatusPending, models.BatchStatusUploading, models.BatchStatusError)
	if err != nil {
		return nil, fmt.Errorf("failed to select queued pair ids: %w", err)
	}
	defer rows.Close()

	result := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		result[id] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM upload_batch_items`); err != nil {
		return fmt.Errorf("failed to clear batch items: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, `DELETE FROM upload_batches`); err != nil {
		return fmt.Errorf("failed to clear batches: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) selectItems(ctx context.Context, batchID string) ([]models.BatchItem, error) {
	query := `SELECT pair_id, asset_tag, serial, scanned_at FROM upload_batch_items
		WHERE batch_id = ? ORDER BY position`
	rows, err := r.db.QueryContext(ctx, query, batchID)
	if err != nil {
		return nil, fmt.Errorf("failed to select batch items: %w", err)
	}
	defer rows.Close()

	var items []models.BatchItem
	for rows.Next() {
		var item models.BatchItem
		if err := rows.Scan(&item.PairID, &item.AssetTag, &item.Serial, &item.ScannedAt); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
