package documents

import (
	"context"

	"github.com/dmitrijs2005/docvault/internal/schema"
	"github.com/dmitrijs2005/docvault/internal/server/models"
)

// Writer persists a document in one of two shapes. WriteFull stores every
// column including the type sub-table; WriteMinimal stores only the base
// columns understood by every schema version. Both return
// common.ErrSchemaMismatch when the database rejects the statement shape.
type Writer interface {
	WriteFull(ctx context.Context, doc models.Document, insert bool) error
	WriteMinimal(ctx context.Context, doc models.Document, insert bool) error
}

type Repository interface {
	Writer
	Exists(ctx context.Context, userID string, appID int32) (bool, error)
	MediaPaths(ctx context.Context, userID string, appID int32) (front, back string, err error)
	Delete(ctx context.Context, userID string, appID int32) error

	// ListUnified reads the documents_unified view. It returns
	// common.ErrViewUnavailable when the view does not exist.
	ListUnified(ctx context.Context, userID string) ([]models.Document, error)
	ListBase(ctx context.Context, userID string) ([]models.Document, error)
	ListDetails(ctx context.Context, userID string, table schema.SubTable, appIDs []int32) ([]models.Document, error)
}
