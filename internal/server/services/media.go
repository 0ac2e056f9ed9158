package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/dmitrijs2005/docvault/internal/api"
	"github.com/dmitrijs2005/docvault/internal/common"
	"github.com/dmitrijs2005/docvault/internal/identity"
	"github.com/dmitrijs2005/docvault/internal/logging"
	sc "github.com/dmitrijs2005/docvault/internal/server/config"
	"github.com/dmitrijs2005/docvault/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/docvault/internal/server/storage"
)

const (
	uploadURLTTL = 15 * time.Minute
	// maxSignedURLTTL is the longest expiry S3 accepts for SigV4 URLs.
	maxSignedURLTTL = 7 * 24 * time.Hour
)

// MediaService hands out presigned URLs for document media.
type MediaService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	usage       *UsageService
	storage     storage.ObjectStorage
	config      *sc.Config
	logger      logging.Logger
}

func NewMediaService(db *sql.DB, repomanager repomanager.RepositoryManager, usage *UsageService,
	st storage.ObjectStorage, config *sc.Config, logger logging.Logger) *MediaService {
	return &MediaService{
		db:          db,
		repomanager: repomanager,
		usage:       usage,
		storage:     st,
		config:      config,
		logger:      logger,
	}
}

func (s *MediaService) ttl(requested time.Duration) time.Duration {
	if requested <= 0 {
		requested = s.config.SignedURLTTL
	}
	return min(requested, maxSignedURLTTL)
}

// SignedURLs returns URLs for every listed document that exists. Documents
// that are missing or whose signing fails are left out.
func (s *MediaService) SignedURLs(ctx context.Context, userID string, appIDs []int32, ttl time.Duration) (map[int32]api.MediaURLs, error) {
	if !identity.IsValidUserID(userID) {
		return nil, common.ErrInvalidUserID
	}

	out := make(map[int32]api.MediaURLs, len(appIDs))
	for _, appID := range appIDs {
		if _, done := out[appID]; done {
			continue
		}
		urls, err := s.signedURL(ctx, userID, appID, s.ttl(ttl))
		if err != nil {
			if !errors.Is(err, common.ErrNotFound) {
				s.logger.Warn(ctx, "sign media failed", "user_id", userID, "app_id", appID, "error", err)
			}
			continue
		}
		out[appID] = urls
	}
	return out, nil
}

// SignedURL signs the media of one document, or returns common.ErrNotFound.
func (s *MediaService) SignedURL(ctx context.Context, userID string, appID int32, ttl time.Duration) (api.MediaURLs, error) {
	if !identity.IsValidUserID(userID) {
		return api.MediaURLs{}, common.ErrInvalidUserID
	}
	return s.signedURL(ctx, userID, appID, s.ttl(ttl))
}

func (s *MediaService) signedURL(ctx context.Context, userID string, appID int32, ttl time.Duration) (api.MediaURLs, error) {
	front, back, err := s.repomanager.Documents(s.db).MediaPaths(ctx, userID, appID)
	if err != nil {
		return api.MediaURLs{}, err
	}

	var urls api.MediaURLs
	if urls.FrontSignedURL, err = s.sign(ctx, userID, front, ttl); err != nil {
		return api.MediaURLs{}, err
	}
	if urls.BackSignedURL, err = s.sign(ctx, userID, back, ttl); err != nil {
		return api.MediaURLs{}, err
	}
	return urls, nil
}

func (s *MediaService) sign(ctx context.Context, userID, key string, ttl time.Duration) (string, error) {
	if key == "" || !storage.OwnedBy(userID, key) {
		return "", nil
	}
	return s.storage.PresignGet(ctx, key, ttl)
}

// UploadURL reserves a fresh object key and returns a presigned PUT for it.
func (s *MediaService) UploadURL(ctx context.Context, req api.UploadURLRequest) (api.UploadURLResponse, error) {
	if !identity.IsValidUserID(req.UserID) {
		return api.UploadURLResponse{}, common.ErrInvalidUserID
	}
	if req.AppID <= 0 || (req.Side != api.SideFront && req.Side != api.SideBack) || req.Size < 0 {
		return api.UploadURLResponse{}, common.ErrInvalidRequest
	}

	if err := s.usage.CheckCanStore(ctx, req.UserID, req.Size); err != nil {
		return api.UploadURLResponse{}, err
	}

	key := storage.MediaKey(req.UserID, req.AppID, req.Side)
	url, err := s.storage.PresignPut(ctx, key, req.ContentType, uploadURLTTL)
	if err != nil {
		return api.UploadURLResponse{}, err
	}
	return api.UploadURLResponse{Path: key, URL: url}, nil
}
