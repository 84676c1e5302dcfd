package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"assettrack/internal/client/api"
	"assettrack/internal/client/models"
	"assettrack/internal/client/repositories/assettags"
	"assettrack/internal/client/repositories/batches"
	"assettrack/internal/client/repositories/pairs"
	"assettrack/internal/common"
	"assettrack/internal/logging"
	"assettrack/internal/netx"
	"assettrack/internal/wire"
)

// SyncService is the sync coordinator. It queues upload batches while
// offline, drains them oldest-first on every offline→online edge, and keeps
// the asset-tag cache fresh through watermark-based incremental refreshes.
//
// Retries are driven purely by connectivity transitions; there is no
// internal retry timer. Replaying a batch is safe because the remote merge
// is an upsert keyed by (asset_tag, serial).
type SyncService struct {
	api     api.Client
	pairs   pairs.Repository
	batches batches.Repository
	tags    assettags.Repository
	monitor *netx.Monitor
	log     logging.Logger

	// serializes Submit/Drain/Refresh; a second online edge while a drain
	// is running waits instead of double-uploading
	mu sync.Mutex
}

// NewSyncService constructs the coordinator and subscribes it to the
// connectivity monitor.
func NewSyncService(client api.Client, pairRepo pairs.Repository, batchRepo batches.Repository, tagRepo assettags.Repository, monitor *netx.Monitor, log logging.Logger) *SyncService {
	s := &SyncService{
		api:     client,
		pairs:   pairRepo,
		batches: batchRepo,
		tags:    tagRepo,
		monitor: monitor,
		log:     log,
	}
	monitor.Subscribe(s.handleConnectivity)
	return s
}

func (s *SyncService) handleConnectivity(ctx context.Context, state netx.State) {
	if state != netx.StateOnline {
		s.log.Info(ctx, "connectivity lost, uploads queue locally")
		return
	}

	s.log.Info(ctx, "connectivity restored, draining upload queue")
	if err := s.Drain(ctx); err != nil {
		s.log.Error(ctx, "queue drain interrupted", "error", err)
		return
	}
	if err := s.Refresh(ctx); err != nil {
		s.log.Error(ctx, "asset tag cache refresh failed", "error", err)
	}
}

// Submit snapshots every pending pair that is not already queued into a new
// UploadBatch. When currently online the batch is uploaded immediately;
// offline it stays queued for the next online edge. Returns nil when there
// is nothing to submit.
func (s *SyncService) Submit(ctx context.Context) (*models.UploadBatch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pending, err := s.pairs.GetByStatus(ctx, models.PairStatusPending)
	if err != nil {
		return nil, storageErr(err)
	}
	queued, err := s.batches.GetQueuedPairIDs(ctx)
	if err != nil {
		return nil, storageErr(err)
	}

	var items []models.BatchItem
	for _, p := range pending {
		if _, ok := queued[p.ID]; ok {
			continue
		}
		items = append(items, models.BatchItem{
			PairID:    p.ID,
			AssetTag:  p.AssetTag,
			Serial:    p.Serial,
			ScannedAt: p.ScannedAt,
		})
	}
	if len(items) == 0 {
		return nil, nil
	}

	batch := &models.UploadBatch{
		ID:        uuid.NewString(),
		Status:    models.BatchStatusPending,
		CreatedAt: time.Now().UTC(),
		Items:     items,
	}
	if err := s.batches.Create(ctx, batch); err != nil {
		return nil, storageErr(err)
	}

	if s.monitor.State() == netx.StateOnline {
		if err := s.uploadBatch(ctx, batch); err != nil {
			// already recorded on the batch; it replays on the next edge
			s.log.Warn(ctx, "immediate upload failed, batch queued", "batch", batch.ID, "error", err)
		}
	}

	// report current status
	return s.batches.GetByID(ctx, batch.ID)
}

// Drain replays every unfinished batch (pending, uploading, or error),
// oldest first. An uploading batch here means the process died mid-upload;
// the merge endpoint is idempotent, so it is retried whole.
// Each batch's outcome is independent; a remote fault on one batch does not
// stop the others. ErrAuthRequired aborts the drain since every further
// call would fail the same way.
func (s *SyncService) Drain(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.registerUnconfirmedTags(ctx); err != nil {
		return err
	}

	replayable, err := s.batches.GetReplayable(ctx)
	if err != nil {
		return storageErr(err)
	}

	for i := range replayable {
		if err := s.uploadBatch(ctx, &replayable[i]); err != nil {
			if errors.Is(err, common.ErrAuthRequired) {
				return err
			}
			// remote fault: recorded on the batch, carry on with the rest
		}
	}
	return nil
}

// registerUnconfirmedTags pushes locally confirmed unknown tags to the
// authority before batch upload, so their pairs do not bounce with
// missing_asset_tag. Failures are non-fatal; the merge outcome reports the
// miss and the batch replays later.
func (s *SyncService) registerUnconfirmedTags(ctx context.Context) error {
	unconfirmed, err := s.tags.GetUnconfirmed(ctx)
	if err != nil {
		return storageErr(err)
	}

	for _, tag := range unconfirmed {
		if err := s.api.RegisterTag(ctx, tag); err != nil {
			if errors.Is(err, common.ErrAuthRequired) {
				return err
			}
			s.log.Warn(ctx, "failed to register tag with authority", "tag", tag, "error", err)
		}
	}
	return nil
}

func (s *SyncService) uploadBatch(ctx context.Context, b *models.UploadBatch) error {
	if err := s.batches.SetStatus(ctx, b.ID, models.BatchStatusUploading, ""); err != nil {
		return storageErr(err)
	}

	items := make([]wire.BatchItem, len(b.Items))
	for i, item := range b.Items {
		items[i] = wire.BatchItem{AssetTag: item.AssetTag, Serial: item.Serial, ScannedAt: item.ScannedAt}
	}

	results, err := s.api.UploadBatch(ctx, items)
	if err != nil {
		// no response arrived; item statuses are untouched and the whole
		// batch replays on the next online edge
		if stErr := s.batches.SetStatus(ctx, b.ID, models.BatchStatusError, err.Error()); stErr != nil {
			s.log.Error(ctx, "failed to record batch failure", "batch", b.ID, "error", stErr)
		}
		return err
	}

	var failures []string
	for i, res := range results {
		item := b.Items[i]
		switch res.Status {
		case wire.StatusOkInserted, wire.StatusOkOverwriteSamePair:
			s.applyPairStatus(ctx, item.PairID, models.PairStatusUploaded)
			if err := s.tags.MarkUsed(ctx, item.AssetTag, item.Serial); err != nil && !errors.Is(err, common.ErrNotFound) {
				s.log.Error(ctx, "failed to update asset tag cache", "tag", item.AssetTag, "error", err)
			}
		default:
			// missing_asset_tag, asset_tag_in_use, or anything unrecognized
			s.applyPairStatus(ctx, item.PairID, models.PairStatusError)
			reason := res.Status
			if res.Message != "" {
				reason = res.Message
			}
			failures = append(failures, fmt.Sprintf("%s/%s: %s", item.AssetTag, item.Serial, reason))
		}
	}

	if len(failures) > 0 {
		msg := strings.Join(failures, "; ")
		if err := s.batches.SetStatus(ctx, b.ID, models.BatchStatusError, msg); err != nil {
			return storageErr(err)
		}
		s.log.Warn(ctx, "batch finished with item failures", "batch", b.ID, "failures", len(failures))
		return nil
	}

	if err := s.batches.SetStatus(ctx, b.ID, models.BatchStatusDone, ""); err != nil {
		return storageErr(err)
	}
	return nil
}

// applyPairStatus applies an item outcome to the local pair. The pair may
// have been deleted while the batch was queued; that is not an error.
func (s *SyncService) applyPairStatus(ctx context.Context, pairID string, status models.PairStatus) {
	if err := s.pairs.UpdateStatus(ctx, pairID, status); err != nil && !errors.Is(err, common.ErrNotFound) {
		s.log.Error(ctx, "failed to update pair status", "pair", pairID, "error", err)
	}
}

// Refresh pulls asset tags changed strictly after the local watermark and
// upserts them into the cache. Monotonic and convergent: with no newer
// remote records the refresh is a no-op.
func (s *SyncService) Refresh(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	watermark, err := s.tags.MaxUpdatedAt(ctx)
	if err != nil {
		return storageErr(err)
	}

	records, err := s.api.AssetTags(ctx, watermark)
	if err != nil {
		return err
	}

	for _, rec := range records {
		tag := &models.AssetTag{
			Tag:        rec.Tag,
			Status:     models.TagStatus(rec.Status),
			LastSerial: rec.LastSerial,
			UpdatedAt:  rec.UpdatedAt,
		}
		if err := s.tags.Upsert(ctx, tag); err != nil {
			return storageErr(err)
		}
	}

	s.log.Debug(ctx, "asset tag cache refreshed", "records", len(records), "watermark", watermark)
	return nil
}
