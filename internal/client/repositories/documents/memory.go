package documents

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/dmitrijs2005/docvault/internal/client/models"
	"github.com/dmitrijs2005/docvault/internal/common"
)

// MemoryRepository is a Repository kept in process memory. Construct one per
// process and inject it; it holds no package-level state.
type MemoryRepository struct {
	mu     sync.Mutex
	nextID int64
	items  map[int64]models.DocumentRecord
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{items: make(map[int64]models.DocumentRecord)}
}

func (r *MemoryRepository) Init(ctx context.Context) error {
	return nil
}

func (r *MemoryRepository) List(ctx context.Context) ([]models.DocumentRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := r.snapshot(func(models.DocumentRecord) bool { return true })
	sort.Slice(out, func(i, j int) bool {
		if out[i].UpdatedAt != out[j].UpdatedAt {
			return out[i].UpdatedAt > out[j].UpdatedAt
		}
		return out[i].LocalID > out[j].LocalID
	})
	return out, nil
}

func (r *MemoryRepository) ListPending(ctx context.Context) ([]models.DocumentRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := r.snapshot(func(d models.DocumentRecord) bool { return !d.Synced })
	sort.Slice(out, func(i, j int) bool {
		if out[i].UpdatedAt != out[j].UpdatedAt {
			return out[i].UpdatedAt < out[j].UpdatedAt
		}
		return out[i].LocalID < out[j].LocalID
	})
	return out, nil
}

func (r *MemoryRepository) Count(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items), nil
}

func (r *MemoryRepository) Get(ctx context.Context, localID int64) (models.DocumentRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.items[localID]
	if !ok {
		return models.DocumentRecord{}, common.ErrNotFound
	}
	return rec, nil
}

func (r *MemoryRepository) Insert(ctx context.Context, rec models.DocumentRecord) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	rec.LocalID = r.nextID
	rec.UpdatedAt = nowMillis()
	rec.FrontURL, rec.BackURL = "", ""
	r.items[rec.LocalID] = rec
	return rec.LocalID, nil
}

func (r *MemoryRepository) Update(ctx context.Context, localID int64, patch models.DocumentPatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.items[localID]
	if !ok {
		return fmt.Errorf("document %d: %w", localID, common.ErrNotFound)
	}
	patch.Apply(&rec)
	rec.Synced = false
	rec.UpdatedAt = nextStamp(rec.UpdatedAt)
	r.items[localID] = rec
	return nil
}

func (r *MemoryRepository) ToggleFavorite(ctx context.Context, localID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.items[localID]
	if !ok {
		return fmt.Errorf("document %d: %w", localID, common.ErrNotFound)
	}
	rec.Favorite = !rec.Favorite
	rec.Synced = false
	rec.UpdatedAt = nextStamp(rec.UpdatedAt)
	r.items[localID] = rec
	return nil
}

func (r *MemoryRepository) Delete(ctx context.Context, localID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[localID]; !ok {
		return fmt.Errorf("document %d: %w", localID, common.ErrNotFound)
	}
	delete(r.items, localID)
	return nil
}

func (r *MemoryRepository) MarkSynced(ctx context.Context, localID int64, m SyncMark) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.items[localID]
	if !ok {
		return fmt.Errorf("document %d: %w", localID, common.ErrNotFound)
	}
	if m.AppID > 0 {
		rec.AppID = m.AppID
	}
	if rec.UpdatedAt == m.SeenUpdatedAt {
		if m.FrontMediaRef != "" {
			rec.FrontMediaRef = m.FrontMediaRef
		}
		if m.BackMediaRef != "" {
			rec.BackMediaRef = m.BackMediaRef
		}
		if m.Complete {
			rec.Synced = true
		}
	}
	r.items[localID] = rec
	return nil
}

func (r *MemoryRepository) snapshot(keep func(models.DocumentRecord) bool) []models.DocumentRecord {
	out := make([]models.DocumentRecord, 0, len(r.items))
	for _, rec := range r.items {
		if keep(rec) {
			out = append(out, rec)
		}
	}
	return out
}
