package assettags

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
CREATE TABLE asset_tags (
  tag TEXT PRIMARY KEY,
  status TEXT NOT NULL DEFAULT 'unused',
  last_serial TEXT,
  updated_at TIMESTAMP NOT NULL
);
`)
	require.NoError(t, err)

	return db
}

func TestUpsertAndGet(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	updated := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, r.Upsert(ctx, &models.AssetTag{
		Tag: "AT001", Status: models.TagStatusUnused, UpdatedAt: updated,
	}))

	got, err := r.Get(ctx, "AT001")
	require.NoError(t, err)
	assert.Equal(t, models.TagStatusUnused, got.Status)
	assert.Empty(t, got.LastSerial)
	assert.True(t, got.Confirmed())

	// authority overwrite wins
	require.NoError(t, r.Upsert(ctx, &models.AssetTag{
		Tag: "AT001", Status: models.TagStatusUsed, LastSerial: "SN1", UpdatedAt: updated.Add(time.Hour),
	}))

	got, err = r.Get(ctx, "AT001")
	require.NoError(t, err)
	assert.Equal(t, models.TagStatusUsed, got.Status)
	assert.Equal(t, "SN1", got.LastSerial)

	_, err = r.Get(ctx, "AT999")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestMarkUsed_DoesNotTouchWatermark(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	updated := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, r.Upsert(ctx, &models.AssetTag{
		Tag: "AT001", Status: models.TagStatusUnused, UpdatedAt: updated,
	}))

	require.NoError(t, r.MarkUsed(ctx, "AT001", "SN1"))

	got, err := r.Get(ctx, "AT001")
	require.NoError(t, err)
	assert.Equal(t, models.TagStatusUsed, got.Status)
	assert.Equal(t, "SN1", got.LastSerial)

	wm, err := r.MaxUpdatedAt(ctx)
	require.NoError(t, err)
	assert.True(t, wm.Equal(updated), "MarkUsed must not advance the watermark")

	assert.ErrorIs(t, r.MarkUsed(ctx, "AT999", "SN1"), common.ErrNotFound)
}

func TestRegisterLocal_UnconfirmedUntilRefreshed(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.RegisterLocal(ctx, "AT999"))
	// confirming twice is a no-op
	require.NoError(t, r.RegisterLocal(ctx, "AT999"))

	got, err := r.Get(ctx, "AT999")
	require.NoError(t, err)
	assert.Equal(t, models.TagStatusUnused, got.Status)
	assert.False(t, got.Confirmed())

	unconfirmed, err := r.GetUnconfirmed(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"AT999"}, unconfirmed)

	// refresh replaces the provisional row with the authority's version
	updated := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, r.Upsert(ctx, &models.AssetTag{
		Tag: "AT999", Status: models.TagStatusUnused, UpdatedAt: updated,
	}))

	unconfirmed, err = r.GetUnconfirmed(ctx)
	require.NoError(t, err)
	assert.Empty(t, unconfirmed)
}

func TestMaxUpdatedAt(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	wm, err := r.MaxUpdatedAt(ctx)
	require.NoError(t, err)
	assert.True(t, wm.IsZero(), "empty cache has a zero watermark")

	t0 := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, r.Upsert(ctx, &models.AssetTag{Tag: "AT001", Status: models.TagStatusUnused, UpdatedAt: t0}))
	require.NoError(t, r.Upsert(ctx, &models.AssetTag{Tag: "AT002", Status: models.TagStatusUnused, UpdatedAt: t0.Add(time.Hour)}))
	// locally registered tags never advance the watermark
	require.NoError(t, r.RegisterLocal(ctx, "AT999"))

	wm, err = r.MaxUpdatedAt(ctx)
	require.NoError(t, err)
	assert.True(t, wm.Equal(t0.Add(time.Hour)))
}
