package documents

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/dmitrijs2005/docvault/internal/client/models"
	"github.com/dmitrijs2005/docvault/internal/common"
	"github.com/dmitrijs2005/docvault/internal/schema"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

// fakeClock drives nowMillis; each call advances by step.
func fakeClock(t *testing.T, start, step int64) {
	t.Helper()
	var cur atomic.Int64
	cur.Store(start - step)
	orig := nowMillis
	nowMillis = func() int64 { return cur.Add(step) }
	t.Cleanup(func() { nowMillis = orig })
}

func newSQLite(t *testing.T) Repository {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	repo := NewSQLiteRepository(db)
	require.NoError(t, repo.Init(context.Background()))
	return repo
}

func newMemory(t *testing.T) Repository {
	t.Helper()
	return NewMemoryRepository()
}

var implementations = map[string]func(t *testing.T) Repository{
	"sqlite": newSQLite,
	"memory": newMemory,
}

func forEachRepo(t *testing.T, fn func(t *testing.T, repo Repository)) {
	for name, factory := range implementations {
		t.Run(name, func(t *testing.T) {
			fn(t, factory(t))
		})
	}
}

var ignoreURLs = cmpopts.IgnoreFields(models.DocumentRecord{}, "FrontURL", "BackURL")

func TestInsertGetAndList(t *testing.T) {
	forEachRepo(t, func(t *testing.T, repo Repository) {
		fakeClock(t, 1000, 10)
		ctx := context.Background()

		rg := models.DocumentRecord{Name: "RG", Number: "12.345.678-9", Type: schema.TypeRG, IssuingState: "SP"}
		card := models.DocumentRecord{Name: "Nubank", Type: schema.TypeCard, Bank: "Nubank", CVC: "123", Favorite: true}

		id1, err := repo.Insert(ctx, rg)
		require.NoError(t, err)
		id2, err := repo.Insert(ctx, card)
		require.NoError(t, err)
		require.NotEqual(t, id1, id2)

		got, err := repo.Get(ctx, id1)
		require.NoError(t, err)
		want := rg
		want.LocalID = id1
		want.UpdatedAt = 1000
		if diff := cmp.Diff(want, got, ignoreURLs); diff != "" {
			t.Fatalf("record mismatch (-want +got):\n%s", diff)
		}

		list, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, id2, list[0].LocalID, "newest first")
		assert.Equal(t, id1, list[1].LocalID)
		assert.True(t, list[0].Favorite)

		n, err := repo.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, n)
	})
}

func TestEmptyRecordKeepsEmptyStrings(t *testing.T) {
	forEachRepo(t, func(t *testing.T, repo Repository) {
		ctx := context.Background()
		id, err := repo.Insert(ctx, models.DocumentRecord{})
		require.NoError(t, err)

		got, err := repo.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "", got.FrontMediaRef)
		assert.Equal(t, "", got.BackMediaRef)
		assert.Equal(t, schema.DocType(""), got.Type)
		assert.False(t, got.Synced)
	})
}

func TestUpdate_RestampsAndClearsSynced(t *testing.T) {
	forEachRepo(t, func(t *testing.T, repo Repository) {
		fakeClock(t, 1000, 10)
		ctx := context.Background()

		older, err := repo.Insert(ctx, models.DocumentRecord{Name: "older", Synced: true, AppID: 5})
		require.NoError(t, err)
		_, err = repo.Insert(ctx, models.DocumentRecord{Name: "newer"})
		require.NoError(t, err)

		// favorite-only toggle must still move the record to the top
		fav := true
		require.NoError(t, repo.Update(ctx, older, models.DocumentPatch{Favorite: &fav}))

		list, err := repo.List(ctx)
		require.NoError(t, err)
		require.Equal(t, older, list[0].LocalID)
		assert.True(t, list[0].Favorite)
		assert.False(t, list[0].Synced, "local edit flips synced back")
		assert.Equal(t, int32(5), list[0].AppID)
		assert.Equal(t, "older", list[0].Name, "untouched fields survive")

		// an empty patch still bumps updated_at
		before := list[0].UpdatedAt
		require.NoError(t, repo.Update(ctx, older, models.DocumentPatch{}))
		got, err := repo.Get(ctx, older)
		require.NoError(t, err)
		assert.Greater(t, got.UpdatedAt, before)
	})
}

func TestUpdate_MetadataAndStrictlyIncreasingStamp(t *testing.T) {
	forEachRepo(t, func(t *testing.T, repo Repository) {
		fakeClock(t, 5000, 0) // frozen clock
		ctx := context.Background()

		id, err := repo.Insert(ctx, models.DocumentRecord{Name: "CNH", Type: schema.TypeCNH})
		require.NoError(t, err)

		name := "CNH B"
		require.NoError(t, repo.Update(ctx, id, models.DocumentPatch{
			Name:     &name,
			Metadata: map[string]string{schema.ColExpiryDate: "2031-05-01"},
		}))
		require.NoError(t, repo.Update(ctx, id, models.DocumentPatch{}))

		got, err := repo.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "CNH B", got.Name)
		assert.Equal(t, "2031-05-01", got.ExpiryDate)
		assert.Equal(t, int64(5002), got.UpdatedAt)
	})
}

func TestUpdateDeleteGet_NotFound(t *testing.T) {
	forEachRepo(t, func(t *testing.T, repo Repository) {
		ctx := context.Background()

		require.ErrorIs(t, repo.Update(ctx, 42, models.DocumentPatch{}), common.ErrNotFound)
		require.ErrorIs(t, repo.Delete(ctx, 42), common.ErrNotFound)
		require.ErrorIs(t, repo.MarkSynced(ctx, 42, SyncMark{}), common.ErrNotFound)
		_, err := repo.Get(ctx, 42)
		require.ErrorIs(t, err, common.ErrNotFound)
	})
}

func TestDelete(t *testing.T) {
	forEachRepo(t, func(t *testing.T, repo Repository) {
		ctx := context.Background()
		id, err := repo.Insert(ctx, models.DocumentRecord{Name: "x"})
		require.NoError(t, err)

		require.NoError(t, repo.Delete(ctx, id))
		n, err := repo.Count(ctx)
		require.NoError(t, err)
		assert.Zero(t, n)
	})
}

func TestListPendingAndMarkSynced(t *testing.T) {
	forEachRepo(t, func(t *testing.T, repo Repository) {
		fakeClock(t, 1000, 10)
		ctx := context.Background()

		pending, err := repo.Insert(ctx, models.DocumentRecord{Name: "pending", FrontMediaRef: "/tmp/front.jpg"})
		require.NoError(t, err)
		_, err = repo.Insert(ctx, models.DocumentRecord{Name: "synced", Synced: true, AppID: 9})
		require.NoError(t, err)

		list, err := repo.ListPending(ctx)
		require.NoError(t, err)
		require.Len(t, list, 1)
		snap := list[0]
		require.Equal(t, pending, snap.LocalID)

		require.NoError(t, repo.MarkSynced(ctx, pending, SyncMark{
			AppID: 77, SeenUpdatedAt: snap.UpdatedAt, FrontMediaRef: "users/u/77/front.jpg", Complete: true,
		}))

		got, err := repo.Get(ctx, pending)
		require.NoError(t, err)
		assert.True(t, got.Synced)
		assert.Equal(t, int32(77), got.AppID)
		assert.Equal(t, "users/u/77/front.jpg", got.FrontMediaRef)
		assert.Equal(t, snap.UpdatedAt, got.UpdatedAt, "marking synced is not an edit")

		list, err = repo.ListPending(ctx)
		require.NoError(t, err)
		assert.Empty(t, list)
	})
}

func TestMarkSynced_RacingEditStaysPending(t *testing.T) {
	forEachRepo(t, func(t *testing.T, repo Repository) {
		fakeClock(t, 1000, 10)
		ctx := context.Background()

		id, err := repo.Insert(ctx, models.DocumentRecord{Name: "v1", FrontMediaRef: "/tmp/f.jpg"})
		require.NoError(t, err)
		snap, err := repo.Get(ctx, id)
		require.NoError(t, err)

		// user edits while the push is in flight
		name := "v2"
		require.NoError(t, repo.Update(ctx, id, models.DocumentPatch{Name: &name}))

		require.NoError(t, repo.MarkSynced(ctx, id, SyncMark{
			AppID: 77, SeenUpdatedAt: snap.UpdatedAt, FrontMediaRef: "users/u/77/front.jpg", Complete: true,
		}))

		got, err := repo.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "v2", got.Name)
		assert.False(t, got.Synced, "edit after snapshot must be pushed again")
		assert.Equal(t, int32(77), got.AppID, "app id is learned regardless")
		assert.Equal(t, "/tmp/f.jpg", got.FrontMediaRef)
	})
}

func TestMarkSynced_IncompleteKeepsPending(t *testing.T) {
	forEachRepo(t, func(t *testing.T, repo Repository) {
		ctx := context.Background()
		id, err := repo.Insert(ctx, models.DocumentRecord{Name: "no photo yet", BackMediaRef: "/tmp/b.jpg"})
		require.NoError(t, err)
		snap, err := repo.Get(ctx, id)
		require.NoError(t, err)

		require.NoError(t, repo.MarkSynced(ctx, id, SyncMark{AppID: 3, SeenUpdatedAt: snap.UpdatedAt}))

		got, err := repo.Get(ctx, id)
		require.NoError(t, err)
		assert.False(t, got.Synced)
		assert.Equal(t, int32(3), got.AppID)
		assert.Equal(t, "/tmp/b.jpg", got.BackMediaRef)
	})
}

func TestSQLiteInit_IsIdempotent(t *testing.T) {
	repo := newSQLite(t)
	require.NoError(t, repo.Init(context.Background()))
}

func TestToggleFavorite_ConcurrentTogglesAllCount(t *testing.T) {
	forEachRepo(t, func(t *testing.T, repo Repository) {
		ctx := context.Background()
		id, err := repo.Insert(ctx, models.DocumentRecord{Name: "CNH", Synced: true})
		require.NoError(t, err)
		before, err := repo.Get(ctx, id)
		require.NoError(t, err)

		const toggles = 10
		var wg sync.WaitGroup
		errs := make(chan error, toggles)
		for range toggles {
			wg.Add(1)
			go func() {
				defer wg.Done()
				errs <- repo.ToggleFavorite(ctx, id)
			}()
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			require.NoError(t, err)
		}

		got, err := repo.Get(ctx, id)
		require.NoError(t, err)
		assert.False(t, got.Favorite, "an even number of toggles restores the flag")
		assert.False(t, got.Synced)
		assert.Greater(t, got.UpdatedAt, before.UpdatedAt)

		require.NoError(t, repo.ToggleFavorite(ctx, id))
		got, err = repo.Get(ctx, id)
		require.NoError(t, err)
		assert.True(t, got.Favorite)
	})
}

func TestToggleFavorite_NotFound(t *testing.T) {
	forEachRepo(t, func(t *testing.T, repo Repository) {
		err := repo.ToggleFavorite(context.Background(), 404)
		assert.ErrorIs(t, err, common.ErrNotFound)
	})
}
