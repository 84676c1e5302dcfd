// Package api contains the stateless remote client for the authority
// server: one operation per remote capability, bearer-token attachment,
// and 401-driven session invalidation.
package api

import (
	"context"
	"time"

	"assettrack/internal/client/models"
	"assettrack/internal/wire"
)

// Client is the remote authority client used by the services layer.
//
// Contract:
//   - Every authenticated call attaches the current bearer token.
//   - A 401 from any authenticated call invalidates the local session
//     (via the registered handler) and returns common.ErrAuthRequired;
//     callers must not retry automatically.
//   - Any other non-2xx response or transport fault is a
//     *common.RemoteError.
type Client interface {
	// Login authenticates and returns the minted session token.
	Login(ctx context.Context, username, password string) (*models.AuthToken, error)

	// AssetTags lists tags changed strictly after since; a zero since
	// requests the full set.
	AssetTags(ctx context.Context, since time.Time) ([]wire.AssetTagRecord, error)

	// RegisterTag registers an unknown tag as unused. Idempotent.
	RegisterTag(ctx context.Context, tag string) error

	// UploadBatch submits one batch. The result slice is guaranteed to have
	// the same length and order as items.
	UploadBatch(ctx context.Context, items []wire.BatchItem) ([]wire.BatchItemResult, error)

	// Search returns a tag's current state and full history, most recent
	// first. No match is common.ErrNotFound.
	Search(ctx context.Context, assetTag, serial string) (*wire.SearchResult, error)

	// Replace records a replacement assignment, preserving history.
	Replace(ctx context.Context, req wire.ReplaceRequest) (*wire.ReplaceResponse, error)

	// Ping checks authority liveness. Unauthenticated.
	Ping(ctx context.Context) error

	// SetToken installs the bearer token for subsequent authenticated calls
	// (session restore at startup; cleared on logout).
	SetToken(token string)

	// SetUnauthorizedHandler registers the callback fired when an
	// authenticated call is rejected with a 401.
	SetUnauthorizedHandler(fn func(ctx context.Context))

	Close() error
}
