// Package services contains application services for the field client:
// pair admission and lifecycle, synchronization with the authority, and
// session management.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"assettrack/internal/client/models"
	"assettrack/internal/client/repositories/assettags"
	"assettrack/internal/client/repositories/pairs"
	"assettrack/internal/common"
)

// PairService validates new scan pairs against the cached asset-tag state
// and manages per-pair status transitions.
//
// Admission contract:
//   - both codes required non-empty (ErrValidation);
//   - unknown tag: ErrUnknownTag, an explicit confirmation via ConfirmTag
//     is required before admission can succeed;
//   - tag already used with a different serial: *ConflictError naming the
//     existing serial; reassignment goes through the replace workflow.
//
// The check runs against the local cache only; the authority re-checks at
// merge time since the cache may be stale.
type PairService struct {
	pairs pairs.Repository
	tags  assettags.Repository
}

// NewPairService constructs a PairService over the local repositories.
func NewPairService(pairRepo pairs.Repository, tagRepo assettags.Repository) *PairService {
	return &PairService{pairs: pairRepo, tags: tagRepo}
}

// Admit validates a scanned (assetTag, serial) pair and persists it as a new
// pending Pair. Re-scans of an identical pair are admitted as duplicates;
// the remote merge deduplicates.
func (s *PairService) Admit(ctx context.Context, assetTag, serial string) (*models.Pair, error) {
	if assetTag == "" || serial == "" {
		return nil, fmt.Errorf("%w: asset tag and serial are both required", common.ErrValidation)
	}

	tag, err := s.tags.Get(ctx, assetTag)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", common.ErrUnknownTag, assetTag)
		}
		return nil, storageErr(err)
	}

	if tag.Status == models.TagStatusUsed && tag.LastSerial != "" && tag.LastSerial != serial {
		return nil, &common.ConflictError{Tag: assetTag, ExistingSerial: tag.LastSerial}
	}

	pair := &models.Pair{
		ID:        uuid.NewString(),
		AssetTag:  assetTag,
		Serial:    serial,
		ScannedAt: time.Now().UTC(),
		Status:    models.PairStatusPending,
	}
	if err := s.pairs.Insert(ctx, pair); err != nil {
		return nil, storageErr(err)
	}
	return pair, nil
}

// ConfirmTag registers an unknown tag locally as unused, modelling the
// explicit "add unknown tag" confirmation. The registration is pushed to
// the authority on the next sync and replaced by its authoritative row on
// the next cache refresh.
func (s *PairService) ConfirmTag(ctx context.Context, tag string) error {
	if tag == "" {
		return fmt.Errorf("%w: asset tag is required", common.ErrValidation)
	}
	if err := s.tags.RegisterLocal(ctx, tag); err != nil {
		return storageErr(err)
	}
	return nil
}

// Delete removes a still-pending pair. Pairs that have been uploaded or
// failed remotely are part of the reconciliation record and stay.
func (s *PairService) Delete(ctx context.Context, id string) error {
	err := s.pairs.DeletePending(ctx, id)
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return storageErr(err)
	}
	return err
}

// List returns every local pair, oldest scan first.
func (s *PairService) List(ctx context.Context) ([]models.Pair, error) {
	result, err := s.pairs.GetAll(ctx)
	if err != nil {
		return nil, storageErr(err)
	}
	return result, nil
}

func storageErr(err error) error {
	return fmt.Errorf("%w: %v", common.ErrStorage, err)
}
