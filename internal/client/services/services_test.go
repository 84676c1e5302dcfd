package services

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"assettrack/internal/client/models"
	"assettrack/internal/client/repositories/assettags"
	"assettrack/internal/client/repositories/authtokens"
	"assettrack/internal/client/repositories/batches"
	"assettrack/internal/client/repositories/pairs"
	"assettrack/internal/logging"
	"assettrack/internal/wire"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE pairs (
  id TEXT PRIMARY KEY,
  asset_tag TEXT NOT NULL,
  serial TEXT NOT NULL,
  scanned_at TIMESTAMP NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending'
);
CREATE TABLE upload_batches (
  id TEXT PRIMARY KEY,
  status TEXT NOT NULL DEFAULT 'pending',
  created_at TIMESTAMP NOT NULL,
  error_message TEXT NOT NULL DEFAULT ''
);
CREATE TABLE upload_batch_items (
  batch_id TEXT NOT NULL REFERENCES upload_batches(id) ON DELETE CASCADE,
  position INTEGER NOT NULL,
  pair_id TEXT NOT NULL,
  asset_tag TEXT NOT NULL,
  serial TEXT NOT NULL,
  scanned_at TIMESTAMP NOT NULL,
  PRIMARY KEY (batch_id, position)
);
CREATE TABLE asset_tags (
  tag TEXT PRIMARY KEY,
  status TEXT NOT NULL DEFAULT 'unused',
  last_serial TEXT,
  updated_at TIMESTAMP NOT NULL
);
CREATE TABLE auth_tokens (
  id INTEGER PRIMARY KEY CHECK (id = 1),
  token TEXT NOT NULL,
  username TEXT NOT NULL,
  expires_at TIMESTAMP NOT NULL
);
`

type testRepos struct {
	pairs   pairs.Repository
	batches batches.Repository
	tags    assettags.Repository
	tokens  authtokens.Repository
}

func setupRepos(t *testing.T) *testRepos {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(schema)
	require.NoError(t, err)

	return &testRepos{
		pairs:   pairs.NewSQLiteRepository(db),
		batches: batches.NewSQLiteRepository(db),
		tags:    assettags.NewSQLiteRepository(db),
		tokens:  authtokens.NewSQLiteRepository(db),
	}
}

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func seedTag(t *testing.T, r *testRepos, tag, status, lastSerial string, updatedAt time.Time) {
	t.Helper()
	require.NoError(t, r.tags.Upsert(context.Background(), &models.AssetTag{
		Tag:        tag,
		Status:     models.TagStatus(status),
		LastSerial: lastSerial,
		UpdatedAt:  updatedAt,
	}))
}

// fakeClient is a scripted api.Client. Unset function fields make the
// corresponding call fail the test.
type fakeClient struct {
	t *testing.T

	loginFn       func(ctx context.Context, username, password string) (*models.AuthToken, error)
	assetTagsFn   func(ctx context.Context, since time.Time) ([]wire.AssetTagRecord, error)
	registerTagFn func(ctx context.Context, tag string) error
	uploadFn      func(ctx context.Context, items []wire.BatchItem) ([]wire.BatchItemResult, error)

	onUnauthorized func(ctx context.Context)
	token          string
	uploads        [][]wire.BatchItem
	registered     []string
	sinceValues    []time.Time
}

func newFakeClient(t *testing.T) *fakeClient {
	return &fakeClient{t: t}
}

func (f *fakeClient) Login(ctx context.Context, username, password string) (*models.AuthToken, error) {
	if f.loginFn == nil {
		f.t.Fatal("unexpected Login call")
	}
	return f.loginFn(ctx, username, password)
}

func (f *fakeClient) AssetTags(ctx context.Context, since time.Time) ([]wire.AssetTagRecord, error) {
	f.sinceValues = append(f.sinceValues, since)
	if f.assetTagsFn == nil {
		return nil, nil
	}
	return f.assetTagsFn(ctx, since)
}

func (f *fakeClient) RegisterTag(ctx context.Context, tag string) error {
	f.registered = append(f.registered, tag)
	if f.registerTagFn == nil {
		return nil
	}
	return f.registerTagFn(ctx, tag)
}

func (f *fakeClient) UploadBatch(ctx context.Context, items []wire.BatchItem) ([]wire.BatchItemResult, error) {
	f.uploads = append(f.uploads, items)
	if f.uploadFn == nil {
		f.t.Fatal("unexpected UploadBatch call")
	}
	return f.uploadFn(ctx, items)
}

func (f *fakeClient) Search(ctx context.Context, assetTag, serial string) (*wire.SearchResult, error) {
	f.t.Fatal("unexpected Search call")
	return nil, nil
}

func (f *fakeClient) Replace(ctx context.Context, req wire.ReplaceRequest) (*wire.ReplaceResponse, error) {
	f.t.Fatal("unexpected Replace call")
	return nil, nil
}

func (f *fakeClient) Ping(ctx context.Context) error { return nil }

func (f *fakeClient) Probe(ctx context.Context) error { return f.Ping(ctx) }

func (f *fakeClient) SetToken(token string) { f.token = token }

func (f *fakeClient) SetUnauthorizedHandler(fn func(ctx context.Context)) { f.onUnauthorized = fn }

func (f *fakeClient) Close() error { return nil }
