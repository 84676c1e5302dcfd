// Package authtokens provides the sqlite-backed singleton auth-token slot.
package authtokens

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"assettrack/internal/client/models"
	"assettrack/internal/common"
	"assettrack/internal/dbx"
)

// the slot's fixed primary key; the schema CHECK constraint enforces it
const singletonID = 1

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository returns a new SQLiteRepository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Get(ctx context.Context) (*models.AuthToken, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT token, username, expires_at FROM auth_tokens WHERE id = ?`, singletonID)

	t := &models.AuthToken{}
	if err := row.Scan(&t.Token, &t.Username, &t.ExpiresAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("query row scan failed: %w", err)
	}
	return t, nil
}

func (r *SQLiteRepository) Save(ctx context.Context, t *models.AuthToken) error {
	query := `INSERT INTO auth_tokens (id, token, username, expires_at)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET token = excluded.token,
				username = excluded.username,
				expires_at = excluded.expires_at`
	_, err := r.db.ExecContext(ctx, query, singletonID, t.Token, t.Username, t.ExpiresAt)
	if err != nil {
		return fmt.Errorf("failed to save auth token: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Delete(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM auth_tokens WHERE id = ?`, singletonID); err != nil {
		return fmt.Errorf("failed to delete auth token: %w", err)
	}
	return nil
}
