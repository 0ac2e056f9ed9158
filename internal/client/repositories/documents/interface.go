package documents

import (
	"context"

	"github.com/dmitrijs2005/docvault/internal/client/models"
)

// Repository is the local document store.
type Repository interface {
	// Init prepares the schema. Idempotent.
	Init(ctx context.Context) error

	// List returns every record, most recently updated first.
	List(ctx context.Context) ([]models.DocumentRecord, error)

	Count(ctx context.Context) (int, error)

	// Get returns common.ErrNotFound when localID does not exist.
	Get(ctx context.Context, localID int64) (models.DocumentRecord, error)

	// Insert stores rec, stamps updated_at and returns the new local id.
	Insert(ctx context.Context, rec models.DocumentRecord) (int64, error)

	// Update applies patch, re-stamps updated_at and clears the synced flag,
	// even when patch changes nothing.
	Update(ctx context.Context, localID int64, patch models.DocumentPatch) error

	// ToggleFavorite flips the favorite flag atomically and, like Update,
	// re-stamps updated_at and clears the synced flag.
	ToggleFavorite(ctx context.Context, localID int64) error

	Delete(ctx context.Context, localID int64) error

	// ListPending returns records with synced=false.
	ListPending(ctx context.Context) ([]models.DocumentRecord, error)

	// MarkSynced records the outcome of a successful push.
	MarkSynced(ctx context.Context, localID int64, mark SyncMark) error
}

// SyncMark describes a successful push of the snapshot taken at SeenUpdatedAt.
type SyncMark struct {
	// AppID is stored whenever it is positive.
	AppID int32

	// SeenUpdatedAt is the updated_at of the pushed snapshot. Media refs and
	// the synced flag are only written while the row still has this value.
	SeenUpdatedAt int64

	// FrontMediaRef and BackMediaRef replace the local refs with remote keys
	// when non-empty.
	FrontMediaRef string
	BackMediaRef  string

	// Complete is false when part of the push (a media upload) failed; the
	// record then stays pending.
	Complete bool
}
