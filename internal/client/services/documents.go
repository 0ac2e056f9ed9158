package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/docvault/internal/client/client"
	"github.com/dmitrijs2005/docvault/internal/client/models"
	"github.com/dmitrijs2005/docvault/internal/client/repositories/documents"
	"github.com/dmitrijs2005/docvault/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/docvault/internal/common"
	"github.com/dmitrijs2005/docvault/internal/identity"
	"github.com/dmitrijs2005/docvault/internal/logging"
	"github.com/dmitrijs2005/docvault/internal/timex"
	"golang.org/x/sync/errgroup"
)

// DocumentService builds the document list shown to the user.
type DocumentService struct {
	docs    documents.Repository
	meta    metadata.Repository
	gateway client.Gateway
	sync    *SyncClient
	userID  string
	log     logging.Logger
}

func NewDocumentService(docs documents.Repository, meta metadata.Repository, gateway client.Gateway, sync *SyncClient, userID string, log logging.Logger) *DocumentService {
	if log == nil {
		log = logging.Nop()
	}
	return &DocumentService{docs: docs, meta: meta, gateway: gateway, sync: sync, userID: userID, log: log}
}

// LoadResult is the reconciled list plus whether the remote side was
// reachable.
type LoadResult struct {
	Documents []models.DocumentRecord
	Remote    bool
}

// Load pushes pending records, then reads local and remote sets in parallel
// and reconciles them. A remote failure degrades to the local list; a local
// failure is returned.
func (s *DocumentService) Load(ctx context.Context) (LoadResult, error) {
	if s.sync != nil {
		if _, err := s.sync.SweepPending(ctx); err != nil {
			if !errors.Is(err, common.ErrQuotaExceeded) {
				return LoadResult{}, err
			}
			s.log.Warn(ctx, "some documents were not synced", "error", err)
		}
	}

	var local, remote []models.DocumentRecord
	remoteOK := false

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		local, err = s.docs.List(gctx)
		if err != nil {
			return fmt.Errorf("list local documents: %w", err)
		}
		return nil
	})
	if identity.IsValidUserID(s.userID) {
		g.Go(func() error {
			recs, err := s.gateway.FetchAll(gctx, s.userID)
			if err != nil {
				s.log.Warn(gctx, "remote documents unavailable, showing local copy", "error", err)
				return nil
			}
			remote, remoteOK = recs, true
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return LoadResult{}, err
	}

	merged := Reconcile(local, remote)
	merged = s.gateway.ResolveMedia(ctx, s.userID, merged)

	if remoteOK && s.meta != nil {
		if err := metadata.SetLastLoadAt(ctx, s.meta, timex.NowMillis()); err != nil {
			s.log.Warn(ctx, "failed to store last load time", "error", err)
		}
	}

	return LoadResult{Documents: merged, Remote: remoteOK}, nil
}
