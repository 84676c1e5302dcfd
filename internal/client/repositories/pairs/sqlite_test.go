package pairs

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"assettrack/internal/client/models"
	"assettrack/internal/common"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE pairs (
  id TEXT PRIMARY KEY,
  asset_tag TEXT NOT NULL,
  serial TEXT NOT NULL,
  scanned_at TIMESTAMP NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending'
);
`)
	require.NoError(t, err)

	return db
}

func newPair(id, tag, serial string, scannedAt time.Time) *models.Pair {
	return &models.Pair{ID: id, AssetTag: tag, Serial: serial, ScannedAt: scannedAt, Status: models.PairStatusPending}
}

func TestInsert_AllowsDuplicatePairs(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	now := time.Now().UTC()
	require.NoError(t, r.Insert(ctx, newPair("p1", "AT001", "SN1", now)))
	// re-scan of the same pair creates a second pending row
	require.NoError(t, r.Insert(ctx, newPair("p2", "AT001", "SN1", now.Add(time.Second))))

	all, err := r.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestUpdateStatus(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.Insert(ctx, newPair("p1", "AT001", "SN1", time.Now().UTC())))

	require.NoError(t, r.UpdateStatus(ctx, "p1", models.PairStatusUploaded))

	p, err := r.GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, models.PairStatusUploaded, p.Status)

	err = r.UpdateStatus(ctx, "missing", models.PairStatusError)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestDeletePending_OnlyWhilePending(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.Insert(ctx, newPair("p1", "AT001", "SN1", time.Now().UTC())))
	require.NoError(t, r.DeletePending(ctx, "p1"))

	_, err := r.GetByID(ctx, "p1")
	assert.ErrorIs(t, err, common.ErrNotFound)

	require.NoError(t, r.Insert(ctx, newPair("p2", "AT002", "SN2", time.Now().UTC())))
	require.NoError(t, r.UpdateStatus(ctx, "p2", models.PairStatusUploaded))

	err = r.DeletePending(ctx, "p2")
	assert.ErrorIs(t, err, common.ErrNotFound, "uploaded pair must not be deletable")
}

func TestGetByStatus_OrderedByScanTime(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, r.Insert(ctx, newPair("late", "AT002", "SN2", base.Add(time.Hour))))
	require.NoError(t, r.Insert(ctx, newPair("early", "AT001", "SN1", base)))
	require.NoError(t, r.Insert(ctx, newPair("done", "AT003", "SN3", base)))
	require.NoError(t, r.UpdateStatus(ctx, "done", models.PairStatusUploaded))

	pending, err := r.GetByStatus(ctx, models.PairStatusPending)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, "early", pending[0].ID)
	assert.Equal(t, "late", pending[1].ID)
}

func TestClear(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.Insert(ctx, newPair("p1", "AT001", "SN1", time.Now().UTC())))
	require.NoError(t, r.Clear(ctx))

	all, err := r.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}
