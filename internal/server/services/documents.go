package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/docvault/internal/api"
	"github.com/dmitrijs2005/docvault/internal/common"
	"github.com/dmitrijs2005/docvault/internal/dbx"
	"github.com/dmitrijs2005/docvault/internal/identity"
	"github.com/dmitrijs2005/docvault/internal/logging"
	"github.com/dmitrijs2005/docvault/internal/schema"
	"github.com/dmitrijs2005/docvault/internal/server/models"
	"github.com/dmitrijs2005/docvault/internal/server/repositories/documents"
	"github.com/dmitrijs2005/docvault/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/docvault/internal/server/storage"
)

// DocumentService handles document writes, deletes and reads.
type DocumentService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	usage       *UsageService
	storage     storage.ObjectStorage
	logger      logging.Logger
}

func NewDocumentService(db *sql.DB, repomanager repomanager.RepositoryManager, usage *UsageService,
	st storage.ObjectStorage, logger logging.Logger) *DocumentService {
	return &DocumentService{
		db:          db,
		repomanager: repomanager,
		usage:       usage,
		storage:     st,
		logger:      logger,
	}
}

// appIDOf normalizes the id a client sent, whatever its JSON type.
func appIDOf(id any) (int32, error) {
	if id == nil {
		return 0, common.ErrInvalidIdentity
	}
	if s, ok := id.(string); ok && s == "" {
		return 0, common.ErrInvalidIdentity
	}
	return identity.Normalize(id), nil
}

// Sync stores the document described by p and returns its app id.
//
// New media is quota-checked first. The full writer runs in its own
// transaction; when the schema rejects it, the minimal writer runs in a
// fresh one.
func (s *DocumentService) Sync(ctx context.Context, p api.SyncPayload) (int32, error) {
	if !identity.IsValidUserID(p.UserID) {
		return 0, common.ErrInvalidUserID
	}
	appID, err := appIDOf(p.ID)
	if err != nil {
		return 0, err
	}

	doc := models.DocumentFromPayload(p, p.UserID, appID)
	for _, key := range []string{doc.FrontPath, doc.BackPath} {
		if key != "" && !storage.OwnedBy(p.UserID, key) {
			return 0, fmt.Errorf("%w: media key %q outside user prefix", common.ErrInvalidRequest, key)
		}
	}

	repo := s.repomanager.Documents(s.db)
	exists, err := repo.Exists(ctx, p.UserID, appID)
	if err != nil {
		return 0, err
	}

	mediaChanged := doc.HasMedia()
	if exists {
		front, back, err := repo.MediaPaths(ctx, p.UserID, appID)
		if err != nil && !errors.Is(err, common.ErrNotFound) {
			return 0, err
		}
		mediaChanged = front != doc.FrontPath || back != doc.BackPath
	}

	if mediaChanged && doc.HasMedia() {
		if err := s.usage.CheckCanStore(ctx, p.UserID, 0); err != nil {
			return 0, err
		}
	}

	err = s.write(ctx, func(w documents.Writer) error { return w.WriteFull(ctx, doc, !exists) })
	if errors.Is(err, common.ErrSchemaMismatch) {
		s.logger.Warn(ctx, "full write rejected by schema, retrying minimal",
			"user_id", p.UserID, "app_id", appID, "error", err)
		err = s.write(ctx, func(w documents.Writer) error { return w.WriteMinimal(ctx, doc, !exists) })
		if err == nil {
			syncWritesTotal.WithLabelValues("minimal").Inc()
		}
	} else if err == nil {
		syncWritesTotal.WithLabelValues("full").Inc()
	}
	if err != nil {
		return 0, fmt.Errorf("sync document %d: %w", appID, err)
	}

	if mediaChanged {
		s.usage.Invalidate(ctx, p.UserID)
	}
	return appID, nil
}

func (s *DocumentService) write(ctx context.Context, fn func(w documents.Writer) error) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return fn(s.repomanager.Documents(tx))
	})
}

// Delete removes the document and, best effort, its media objects.
func (s *DocumentService) Delete(ctx context.Context, userID string, id any) error {
	if !identity.IsValidUserID(userID) {
		return common.ErrInvalidUserID
	}
	appID, err := appIDOf(id)
	if err != nil {
		return err
	}

	repo := s.repomanager.Documents(s.db)
	front, back, err := repo.MediaPaths(ctx, userID, appID)
	if err != nil {
		return err
	}
	if err := repo.Delete(ctx, userID, appID); err != nil {
		return err
	}

	removed := false
	for _, key := range []string{front, back} {
		if key == "" || !storage.OwnedBy(userID, key) {
			continue
		}
		if err := s.storage.Delete(ctx, key); err != nil {
			s.logger.Warn(ctx, "media cleanup failed", "user_id", userID, "key", key, "error", err)
			continue
		}
		removed = true
	}
	if removed {
		s.usage.Invalidate(ctx, userID)
	}
	return nil
}

// ListUnified returns common.ErrViewUnavailable when the view is missing.
func (s *DocumentService) ListUnified(ctx context.Context, userID string) ([]models.Document, error) {
	if !identity.IsValidUserID(userID) {
		return nil, common.ErrInvalidUserID
	}
	return s.repomanager.Documents(s.db).ListUnified(ctx, userID)
}

func (s *DocumentService) ListBase(ctx context.Context, userID string) ([]models.Document, error) {
	if !identity.IsValidUserID(userID) {
		return nil, common.ErrInvalidUserID
	}
	return s.repomanager.Documents(s.db).ListBase(ctx, userID)
}

// ListDetails reads one sub-table. Unknown table names yield common.ErrNotFound.
func (s *DocumentService) ListDetails(ctx context.Context, userID, table string, appIDs []int32) ([]models.Document, error) {
	if !identity.IsValidUserID(userID) {
		return nil, common.ErrInvalidUserID
	}
	st, ok := schema.SubTableByName(table)
	if !ok {
		return nil, common.ErrNotFound
	}
	return s.repomanager.Documents(s.db).ListDetails(ctx, userID, st, appIDs)
}
