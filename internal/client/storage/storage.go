// Package storage opens the client's local sqlite database, applies the
// embedded schema migrations, and bundles the four repositories backed by it.
package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"

	"assettrack/internal/client/migrations"
	"assettrack/internal/client/repositories/assettags"
	"assettrack/internal/client/repositories/authtokens"
	"assettrack/internal/client/repositories/batches"
	"assettrack/internal/client/repositories/pairs"

	_ "modernc.org/sqlite"
)

// Repositories bundles the local collections of the client store.
type Repositories struct {
	Pairs      pairs.Repository
	Batches    batches.Repository
	AssetTags  assettags.Repository
	AuthTokens authtokens.Repository
	DB         *sql.DB
}

// RunMigrations applies the embedded sqlite migrations.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	return goose.UpContext(ctx, db, ".")
}

// Open opens (creating if needed) the local database at dsn and returns the
// repository bundle.
func Open(ctx context.Context, dsn string) (*Repositories, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	if err := RunMigrations(ctx, db); err != nil {
		return nil, err
	}

	return &Repositories{
		Pairs:      pairs.NewSQLiteRepository(db),
		Batches:    batches.NewSQLiteRepository(db),
		AssetTags:  assettags.NewSQLiteRepository(db),
		AuthTokens: authtokens.NewSQLiteRepository(db),
		DB:         db,
	}, nil
}

// Close closes the underlying database.
func (r *Repositories) Close() error {
	return r.DB.Close()
}
