package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"assettrack/internal/client/models"
	"assettrack/internal/common"
	"assettrack/internal/wire"
)

func TestAdmit_UnusedTag(t *testing.T) {
	r := setupRepos(t)
	svc := NewPairService(r.pairs, r.tags)
	ctx := context.Background()

	seedTag(t, r, "AT001", wire.TagStatusUnused, "", time.Now().UTC())

	pair, err := svc.Admit(ctx, "AT001", "SN1")
	require.NoError(t, err)

	assert.NotEmpty(t, pair.ID)
	assert.Equal(t, models.PairStatusPending, pair.Status)

	stored, err := r.pairs.GetByID(ctx, pair.ID)
	require.NoError(t, err)
	assert.Equal(t, "AT001", stored.AssetTag)
	assert.Equal(t, "SN1", stored.Serial)
}

func TestAdmit_EmptyCodes(t *testing.T) {
	r := setupRepos(t)
	svc := NewPairService(r.pairs, r.tags)
	ctx := context.Background()

	_, err := svc.Admit(ctx, "", "SN1")
	assert.ErrorIs(t, err, common.ErrValidation)

	_, err = svc.Admit(ctx, "AT001", "")
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestAdmit_UnknownTag(t *testing.T) {
	r := setupRepos(t)
	svc := NewPairService(r.pairs, r.tags)
	ctx := context.Background()

	_, err := svc.Admit(ctx, "AT-MISSING", "SN1")
	require.ErrorIs(t, err, common.ErrUnknownTag)

	// nothing was persisted
	all, err := r.pairs.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestAdmit_ConflictNamesExistingSerial(t *testing.T) {
	r := setupRepos(t)
	svc := NewPairService(r.pairs, r.tags)
	ctx := context.Background()

	seedTag(t, r, "AT001", wire.TagStatusUsed, "SN1", time.Now().UTC())

	_, err := svc.Admit(ctx, "AT001", "SN2")
	require.Error(t, err)

	var conflict *common.ConflictError
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, "AT001", conflict.Tag)
	assert.Equal(t, "SN1", conflict.ExistingSerial)
}

func TestAdmit_SamePairRescanIsAllowed(t *testing.T) {
	r := setupRepos(t)
	svc := NewPairService(r.pairs, r.tags)
	ctx := context.Background()

	seedTag(t, r, "AT001", wire.TagStatusUsed, "SN1", time.Now().UTC())

	// re-pairing with the identical serial is not a conflict; the remote
	// merge reports ok_overwrite_same_pair for it
	pair, err := svc.Admit(ctx, "AT001", "SN1")
	require.NoError(t, err)
	assert.Equal(t, models.PairStatusPending, pair.Status)
}

func TestConfirmTag_ThenAdmitSucceeds(t *testing.T) {
	r := setupRepos(t)
	svc := NewPairService(r.pairs, r.tags)
	ctx := context.Background()

	_, err := svc.Admit(ctx, "AT-NEW", "SN1")
	require.ErrorIs(t, err, common.ErrUnknownTag)

	require.NoError(t, svc.ConfirmTag(ctx, "AT-NEW"))

	pair, err := svc.Admit(ctx, "AT-NEW", "SN1")
	require.NoError(t, err)
	assert.Equal(t, models.PairStatusPending, pair.Status)

	// the provisional row is unconfirmed until the authority echoes it back
	unconfirmed, err := r.tags.GetUnconfirmed(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"AT-NEW"}, unconfirmed)
}

func TestConfirmTag_Idempotent(t *testing.T) {
	r := setupRepos(t)
	svc := NewPairService(r.pairs, r.tags)
	ctx := context.Background()

	require.NoError(t, svc.ConfirmTag(ctx, "AT-NEW"))
	require.NoError(t, svc.ConfirmTag(ctx, "AT-NEW"))

	unconfirmed, err := r.tags.GetUnconfirmed(ctx)
	require.NoError(t, err)
	assert.Len(t, unconfirmed, 1)
}

func TestDelete_OnlyPendingPairs(t *testing.T) {
	r := setupRepos(t)
	svc := NewPairService(r.pairs, r.tags)
	ctx := context.Background()

	seedTag(t, r, "AT001", wire.TagStatusUnused, "", time.Now().UTC())

	pair, err := svc.Admit(ctx, "AT001", "SN1")
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, pair.ID))

	uploaded, err := svc.Admit(ctx, "AT001", "SN1")
	require.NoError(t, err)
	require.NoError(t, r.pairs.UpdateStatus(ctx, uploaded.ID, models.PairStatusUploaded))

	err = svc.Delete(ctx, uploaded.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)
}
