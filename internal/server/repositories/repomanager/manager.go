package repomanager

import (
	"context"
	"database/sql"

	"assettrack/internal/dbx"
	"assettrack/internal/server/repositories/assettags"
	"assettrack/internal/server/repositories/pairs"
	"assettrack/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	AssetTags(db dbx.DBTX) assettags.Repository
	Pairs(db dbx.DBTX) pairs.Repository
}
