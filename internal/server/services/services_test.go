package services

import (
	"context"
	"database/sql"
	"sort"
	"strconv"
	"time"

	"assettrack/internal/common"
	"assettrack/internal/dbx"
	"assettrack/internal/server/models"
	"assettrack/internal/server/repositories/assettags"
	"assettrack/internal/server/repositories/pairs"
	"assettrack/internal/server/repositories/users"
)

// fakeRepoManager vends in-memory repositories. The DBTX handles are
// ignored; transactional behavior is covered by the sqlmock Begin/Commit
// expectations in the tests.
type fakeRepoManager struct {
	users *fakeUsers
	tags  *fakeTags
	pairs *fakePairs
}

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{
		users: &fakeUsers{byName: map[string]*models.User{}},
		tags:  &fakeTags{byTag: map[string]*models.AssetTag{}},
		pairs: &fakePairs{},
	}
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }

func (m *fakeRepoManager) Users(dbx.DBTX) users.Repository { return m.users }

func (m *fakeRepoManager) AssetTags(dbx.DBTX) assettags.Repository { return m.tags }

func (m *fakeRepoManager) Pairs(dbx.DBTX) pairs.Repository { return m.pairs }

type fakeUsers struct {
	byName map[string]*models.User
	nextID int
}

func (f *fakeUsers) Create(_ context.Context, user *models.User) (*models.User, error) {
	f.nextID++
	user.ID = "u-" + strconv.Itoa(f.nextID)
	f.byName[user.Username] = user
	return user, nil
}

func (f *fakeUsers) GetByUsername(_ context.Context, username string) (*models.User, error) {
	u, ok := f.byName[username]
	if !ok {
		return nil, common.ErrNotFound
	}
	return u, nil
}

type fakeTags struct {
	byTag map[string]*models.AssetTag
}

func (f *fakeTags) Get(_ context.Context, tag string) (*models.AssetTag, error) {
	t, ok := f.byTag[tag]
	if !ok {
		return nil, common.ErrNotFound
	}
	copy := *t
	return &copy, nil
}

func (f *fakeTags) GetForUpdate(ctx context.Context, tag string) (*models.AssetTag, error) {
	return f.Get(ctx, tag)
}

func (f *fakeTags) Create(_ context.Context, tag string) (bool, error) {
	if _, ok := f.byTag[tag]; ok {
		return false, nil
	}
	f.byTag[tag] = &models.AssetTag{Tag: tag, Status: "unused", UpdatedAt: time.Now().UTC()}
	return true, nil
}

func (f *fakeTags) SetUsed(_ context.Context, tag, serial string) error {
	t, ok := f.byTag[tag]
	if !ok {
		return common.ErrNotFound
	}
	t.Status = "used"
	t.LastSerial = serial
	t.UpdatedAt = time.Now().UTC()
	return nil
}

func (f *fakeTags) ListSince(_ context.Context, since time.Time) ([]models.AssetTag, error) {
	var result []models.AssetTag
	for _, t := range f.byTag {
		if t.UpdatedAt.After(since) {
			result = append(result, *t)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].UpdatedAt.Before(result[j].UpdatedAt) })
	return result, nil
}

type fakePairs struct {
	records []models.PairRecord
	nextID  int
}

func (f *fakePairs) Upsert(_ context.Context, rec *models.PairRecord) (bool, error) {
	for i := range f.records {
		if f.records[i].AssetTag == rec.AssetTag && f.records[i].Serial == rec.Serial {
			f.records[i].AssignedBy = rec.AssignedBy
			f.records[i].AssignedAt = rec.AssignedAt
			rec.ID = f.records[i].ID
			return false, nil
		}
	}
	f.nextID++
	rec.ID = "pr-" + strconv.Itoa(f.nextID)
	f.records = append(f.records, *rec)
	return true, nil
}

func (f *fakePairs) LatestByTag(_ context.Context, tag string) (*models.PairRecord, error) {
	return f.latest(func(r models.PairRecord) bool { return r.AssetTag == tag })
}

func (f *fakePairs) LatestBySerial(_ context.Context, serial string) (*models.PairRecord, error) {
	return f.latest(func(r models.PairRecord) bool { return r.Serial == serial })
}

func (f *fakePairs) latest(match func(models.PairRecord) bool) (*models.PairRecord, error) {
	var best *models.PairRecord
	for i := range f.records {
		r := f.records[i]
		if !match(r) {
			continue
		}
		if best == nil || r.AssignedAt.After(best.AssignedAt) {
			best = &f.records[i]
		}
	}
	if best == nil {
		return nil, common.ErrNotFound
	}
	copy := *best
	return &copy, nil
}

func (f *fakePairs) HistoryByTag(_ context.Context, tag string) ([]models.PairRecord, error) {
	var result []models.PairRecord
	for _, r := range f.records {
		if r.AssetTag == tag {
			result = append(result, r)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].AssignedAt.After(result[j].AssignedAt) })
	return result, nil
}
