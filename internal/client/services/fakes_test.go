package services

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/docvault/internal/client/client"
	"github.com/dmitrijs2005/docvault/internal/client/models"
)

const testUser = "6f1c2d2e-0b7a-4a8e-9d55-3f1f0b3b2a11"

// fakeGateway embeds the interface so unexpected calls panic.
type fakeGateway struct {
	client.Gateway

	mu sync.Mutex

	UpsertFn func(rec models.DocumentRecord) (client.UpsertResult, error)
	Upserts  []models.DocumentRecord

	RemoveErr error
	Removed   []int32

	Remote   []models.DocumentRecord
	FetchErr error

	UsageSnap models.QuotaSnapshot
	UsageErr  error

	Devices   []string
	DeviceErr error

	Calls int
}

func (f *fakeGateway) Upsert(ctx context.Context, rec models.DocumentRecord, userID string, opts ...client.UpsertOption) (client.UpsertResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls++
	f.Upserts = append(f.Upserts, rec)
	if cfg := client.NewUpsertConfig(opts...); cfg.BeforeCommit != nil {
		cfg.BeforeCommit()
	}
	if f.UpsertFn != nil {
		return f.UpsertFn(rec)
	}
	id, err := rec.JoinKey()
	if err != nil {
		return client.UpsertResult{}, err
	}
	return client.UpsertResult{AppID: id, MediaComplete: true}, nil
}

func (f *fakeGateway) Remove(ctx context.Context, appID int32, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls++
	f.Removed = append(f.Removed, appID)
	return f.RemoveErr
}

func (f *fakeGateway) FetchAll(ctx context.Context, userID string) ([]models.DocumentRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls++
	return f.Remote, f.FetchErr
}

func (f *fakeGateway) ResolveMedia(ctx context.Context, userID string, recs []models.DocumentRecord) []models.DocumentRecord {
	return recs
}

func (f *fakeGateway) Usage(ctx context.Context, userID string) (models.QuotaSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls++
	return f.UsageSnap, f.UsageErr
}

func (f *fakeGateway) RegisterDevice(ctx context.Context, userID, deviceID, platform string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls++
	f.Devices = append(f.Devices, deviceID)
	return f.DeviceErr
}
