package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"assettrack/internal/common"
	"assettrack/internal/dbx"
	"assettrack/internal/server/models"
	"assettrack/internal/server/repositories/repomanager"
	"assettrack/internal/wire"
)

// MergeService applies uploaded pair batches to the authoritative store and
// serves tag registration, incremental tag listing, search, and replace.
//
// Merge contract:
//   - keyed by (asset_tag, serial): replaying a batch is harmless;
//   - a tag already used by a DIFFERENT serial is refused per item
//     (asset_tag_in_use), the rest of the batch proceeds;
//   - unknown tags are refused per item (missing_asset_tag), never
//     auto-created: a tag enters the system through explicit registration;
//   - the response array is positionally aligned with the request.
type MergeService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

// NewMergeService constructs a MergeService over the given database.
func NewMergeService(db *sql.DB, m repomanager.RepositoryManager) *MergeService {
	return &MergeService{db: db, repomanager: m}
}

// MergeBatch merges one uploaded batch. Items are validated up front; any
// malformed item rejects the whole batch with ErrValidation so the client
// does not end up with a partially applied malformed upload.
func (s *MergeService) MergeBatch(ctx context.Context, items []wire.BatchItem, assignedBy string) ([]wire.BatchItemResult, error) {
	for _, item := range items {
		if item.AssetTag == "" || item.Serial == "" {
			return nil, fmt.Errorf("%w: asset_tag and serial are required", common.ErrValidation)
		}
	}

	results := make([]wire.BatchItemResult, len(items))
	for i, item := range items {
		res, err := s.mergeItem(ctx, item, assignedBy)
		if err != nil {
			return nil, err
		}
		results[i] = res
	}
	return results, nil
}

// mergeItem decides one item inside its own transaction. The tag row is
// locked so concurrent batches cannot both claim a tag for different
// serials.
func (s *MergeService) mergeItem(ctx context.Context, item wire.BatchItem, assignedBy string) (wire.BatchItemResult, error) {
	result := wire.BatchItemResult{AssetTag: item.AssetTag, Serial: item.Serial}

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		tags := s.repomanager.AssetTags(tx)

		tag, err := tags.GetForUpdate(ctx, item.AssetTag)
		if err != nil {
			if errors.Is(err, common.ErrNotFound) {
				result.Status = wire.StatusMissingAssetTag
				result.Message = fmt.Sprintf("asset tag %s is not registered", item.AssetTag)
				return nil
			}
			return err
		}

		if tag.Status == wire.TagStatusUsed && tag.LastSerial != "" && tag.LastSerial != item.Serial {
			result.Status = wire.StatusAssetTagInUse
			result.Message = fmt.Sprintf("asset tag %s already paired with %s", item.AssetTag, tag.LastSerial)
			return nil
		}

		assignedAt := item.ScannedAt
		if assignedAt.IsZero() {
			assignedAt = time.Now().UTC()
		}
		rec := &models.PairRecord{
			AssetTag:   item.AssetTag,
			Serial:     item.Serial,
			AssignedBy: assignedBy,
			AssignedAt: assignedAt,
		}

		inserted, err := s.repomanager.Pairs(tx).Upsert(ctx, rec)
		if err != nil {
			return err
		}
		if err := tags.SetUsed(ctx, item.AssetTag, item.Serial); err != nil {
			return err
		}

		if inserted {
			result.Status = wire.StatusOkInserted
		} else {
			result.Status = wire.StatusOkOverwriteSamePair
		}
		return nil
	})
	if err != nil {
		return wire.BatchItemResult{}, fmt.Errorf("merge failed for %s/%s: %w", item.AssetTag, item.Serial, err)
	}

	return result, nil
}

// RegisterTag adds a tag to the registry as unused. Registering an existing
// tag is a no-op success.
func (s *MergeService) RegisterTag(ctx context.Context, tag string) error {
	if tag == "" {
		return fmt.Errorf("%w: tag is required", common.ErrValidation)
	}

	_, err := s.repomanager.AssetTags(s.db).Create(ctx, tag)
	return err
}

// ListTagsSince returns tags changed strictly after since, oldest change
// first, for the clients' incremental cache refresh.
func (s *MergeService) ListTagsSince(ctx context.Context, since time.Time) ([]models.AssetTag, error) {
	return s.repomanager.AssetTags(s.db).ListSince(ctx, since)
}

// Search resolves a pairing by asset tag or serial and returns the tag's
// current state with its full assignment history, most recent first.
// A lookup that matches nothing is common.ErrNotFound.
func (s *MergeService) Search(ctx context.Context, assetTag, serial string) (*wire.SearchResult, error) {
	if assetTag == "" && serial == "" {
		return nil, fmt.Errorf("%w: asset_tag or serial is required", common.ErrValidation)
	}

	pairsRepo := s.repomanager.Pairs(s.db)

	if assetTag == "" {
		rec, err := pairsRepo.LatestBySerial(ctx, serial)
		if err != nil {
			return nil, err
		}
		assetTag = rec.AssetTag
	}

	tag, err := s.repomanager.AssetTags(s.db).Get(ctx, assetTag)
	if err != nil {
		return nil, err
	}

	history, err := pairsRepo.HistoryByTag(ctx, assetTag)
	if err != nil {
		return nil, err
	}

	result := &wire.SearchResult{
		AssetTag: tag.Tag,
		Serial:   tag.LastSerial,
		Status:   tag.Status,
		History:  make([]wire.HistoryEntry, 0, len(history)),
	}
	for _, rec := range history {
		result.History = append(result.History, wire.HistoryEntry{
			Serial:     rec.Serial,
			AssignedAt: rec.AssignedAt,
			AssignedBy: rec.AssignedBy,
		})
	}
	return result, nil
}

// Replace reassigns an existing pairing. The record is located by asset tag
// or serial; absent new values inherit from the located record, so a
// replacement can swap just the tag, just the serial, or both. History is
// preserved: a replacement to a new (asset_tag, serial) combination lands
// as a new assignment row. Reinstating a combination the tag held before
// refreshes that row's assigned_at/assigned_by instead of duplicating it;
// history holds one row per distinct pairing with its latest assignment.
func (s *MergeService) Replace(ctx context.Context, req wire.ReplaceRequest, assignedBy string) (*wire.ReplaceResponse, error) {
	if req.Value == "" {
		return nil, fmt.Errorf("%w: value is required", common.ErrValidation)
	}
	if req.NewAssetTag == "" && req.NewSerial == "" {
		return nil, fmt.Errorf("%w: new_asset_tag or new_serial is required", common.ErrValidation)
	}

	pairsRepo := s.repomanager.Pairs(s.db)

	var current *models.PairRecord
	var err error
	switch req.SearchBy {
	case wire.SearchByAssetTag:
		current, err = pairsRepo.LatestByTag(ctx, req.Value)
	case wire.SearchBySerial:
		current, err = pairsRepo.LatestBySerial(ctx, req.Value)
	default:
		return nil, fmt.Errorf("%w: searchBy must be asset_tag or serial", common.ErrValidation)
	}
	if err != nil {
		return nil, err
	}

	newTag := req.NewAssetTag
	if newTag == "" {
		newTag = current.AssetTag
	}
	newSerial := req.NewSerial
	if newSerial == "" {
		newSerial = current.Serial
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		tags := s.repomanager.AssetTags(tx)

		if _, err := tags.GetForUpdate(ctx, newTag); err != nil {
			if errors.Is(err, common.ErrNotFound) {
				return fmt.Errorf("%w: %s", common.ErrUnknownTag, newTag)
			}
			return err
		}

		rec := &models.PairRecord{
			AssetTag:   newTag,
			Serial:     newSerial,
			AssignedBy: assignedBy,
			AssignedAt: time.Now().UTC(),
		}
		if _, err := s.repomanager.Pairs(tx).Upsert(ctx, rec); err != nil {
			return err
		}
		return tags.SetUsed(ctx, newTag, newSerial)
	})
	if err != nil {
		return nil, err
	}

	return &wire.ReplaceResponse{
		Success: true,
		Message: fmt.Sprintf("replaced %s/%s with %s/%s", current.AssetTag, current.Serial, newTag, newSerial),
	}, nil
}
