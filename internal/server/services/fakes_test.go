package services

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/docvault/internal/common"
	"github.com/dmitrijs2005/docvault/internal/dbx"
	"github.com/dmitrijs2005/docvault/internal/logging"
	"github.com/dmitrijs2005/docvault/internal/schema"
	"github.com/dmitrijs2005/docvault/internal/server/config"
	"github.com/dmitrijs2005/docvault/internal/server/models"
	"github.com/dmitrijs2005/docvault/internal/server/repositories/devices"
	"github.com/dmitrijs2005/docvault/internal/server/repositories/documents"
	"github.com/dmitrijs2005/docvault/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/docvault/internal/server/repositories/usage"
)

const testUser = "6f1c2d2e-0b7a-4a8e-9d55-3f1f0b3b2a11"

// -------- test fakes --------

type fakeDocsRepo struct {
	documents.Repository

	exists     bool
	existsErr  error
	front      string
	back       string
	pathsErr   error
	fullErr    error
	minimalErr error
	deleteErr  error

	full     []models.Document
	minimal  []models.Document
	inserts  []bool
	deleted  []int32
	unified  []models.Document
	viewErr  error
	details  map[string][]models.Document
	detailID []int32
}

func (f *fakeDocsRepo) Exists(ctx context.Context, userID string, appID int32) (bool, error) {
	return f.exists, f.existsErr
}

func (f *fakeDocsRepo) MediaPaths(ctx context.Context, userID string, appID int32) (string, string, error) {
	if f.pathsErr != nil {
		return "", "", f.pathsErr
	}
	return f.front, f.back, nil
}

func (f *fakeDocsRepo) WriteFull(ctx context.Context, doc models.Document, insert bool) error {
	if f.fullErr != nil {
		return f.fullErr
	}
	f.full = append(f.full, doc)
	f.inserts = append(f.inserts, insert)
	return nil
}

func (f *fakeDocsRepo) WriteMinimal(ctx context.Context, doc models.Document, insert bool) error {
	if f.minimalErr != nil {
		return f.minimalErr
	}
	f.minimal = append(f.minimal, doc)
	f.inserts = append(f.inserts, insert)
	return nil
}

func (f *fakeDocsRepo) Delete(ctx context.Context, userID string, appID int32) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, appID)
	return nil
}

func (f *fakeDocsRepo) ListUnified(ctx context.Context, userID string) ([]models.Document, error) {
	return f.unified, f.viewErr
}

func (f *fakeDocsRepo) ListDetails(ctx context.Context, userID string, table schema.SubTable, appIDs []int32) ([]models.Document, error) {
	f.detailID = appIDs
	return f.details[table.Name], nil
}

type fakeUsageRepo struct {
	usage.Repository

	cached      int64
	cachedOK    bool
	cachedErr   error
	saved       []int64
	saveErr     error
	invalidated int

	quota     int64
	quotaOK   bool
	quotaErr  error
	premium   bool
	addons    int64
	tierCalls int
}

func (f *fakeUsageRepo) CachedUsage(ctx context.Context, userID string) (int64, bool, error) {
	return f.cached, f.cachedOK, f.cachedErr
}

func (f *fakeUsageRepo) SaveUsage(ctx context.Context, userID string, used int64) error {
	f.saved = append(f.saved, used)
	return f.saveErr
}

func (f *fakeUsageRepo) InvalidateUsage(ctx context.Context, userID string) error {
	f.invalidated++
	return nil
}

func (f *fakeUsageRepo) EffectiveQuota(ctx context.Context, userID string) (int64, bool, error) {
	return f.quota, f.quotaOK, f.quotaErr
}

func (f *fakeUsageRepo) IsPremium(ctx context.Context, userID string) (bool, error) {
	f.tierCalls++
	return f.premium, nil
}

func (f *fakeUsageRepo) AddonBytes(ctx context.Context, userID string) (int64, error) {
	return f.addons, nil
}

type fakeDevicesRepo struct {
	devices.Repository

	known    map[string]bool
	upserted []models.Device
	locked   int
}

func (f *fakeDevicesRepo) LockUser(ctx context.Context, userID string) error {
	f.locked++
	return nil
}

func (f *fakeDevicesRepo) Exists(ctx context.Context, userID, deviceID string) (bool, error) {
	return f.known[deviceID], nil
}

func (f *fakeDevicesRepo) Count(ctx context.Context, userID string) (int, error) {
	return len(f.known), nil
}

func (f *fakeDevicesRepo) Upsert(ctx context.Context, d models.Device) error {
	f.upserted = append(f.upserted, d)
	return nil
}

type fakeRepoManager struct {
	repomanager.RepositoryManager
	docs    *fakeDocsRepo
	usage   *fakeUsageRepo
	devices *fakeDevicesRepo
}

func (m *fakeRepoManager) Documents(db dbx.DBTX) documents.Repository { return m.docs }
func (m *fakeRepoManager) Usage(db dbx.DBTX) usage.Repository         { return m.usage }
func (m *fakeRepoManager) Devices(db dbx.DBTX) devices.Repository     { return m.devices }

type fakeStorage struct {
	mu        sync.Mutex
	size      int64
	sizeErr   error
	scans     int
	deleted   []string
	deleteErr error
	putKeys   []string
	putErr    error
	getErr    error
}

func (f *fakeStorage) PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error) {
	if f.getErr != nil {
		return "", f.getErr
	}
	return "https://s3.test/" + key + "?ttl=" + ttl.String(), nil
}

func (f *fakeStorage) PresignPut(ctx context.Context, key, contentType string, ttl time.Duration) (string, error) {
	if f.putErr != nil {
		return "", f.putErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.putKeys = append(f.putKeys, key)
	return "https://s3.test/put/" + key, nil
}

func (f *fakeStorage) PrefixSize(ctx context.Context, prefix string) (int64, error) {
	f.scans++
	return f.size, f.sizeErr
}

func (f *fakeStorage) Delete(ctx context.Context, key string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, key)
	return nil
}

// -------- fixture --------

type fixture struct {
	db      *sql.DB
	mock    sqlmock.Sqlmock
	rm      *fakeRepoManager
	storage *fakeStorage
	cfg     *config.Config

	usage   *UsageService
	docs    *DocumentService
	media   *MediaService
	devices *DeviceService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	cfg := &config.Config{
		FreeBaseQuota:    common.GiB,
		PremiumBaseQuota: 5 * common.GiB,
		MaxDevices:       2,
		SignedURLTTL:     time.Hour,
	}
	rm := &fakeRepoManager{
		docs:    &fakeDocsRepo{},
		usage:   &fakeUsageRepo{},
		devices: &fakeDevicesRepo{known: map[string]bool{}},
	}
	st := &fakeStorage{}
	log := logging.Nop()

	us := NewUsageService(db, rm, st, cfg, log)
	return &fixture{
		db: db, mock: mock, rm: rm, storage: st, cfg: cfg,
		usage:   us,
		docs:    NewDocumentService(db, rm, us, st, log),
		media:   NewMediaService(db, rm, us, st, cfg, log),
		devices: NewDeviceService(db, rm, cfg, log),
	}
}
