package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/docvault/internal/common"
	"github.com/dmitrijs2005/docvault/internal/identity"
	"github.com/dmitrijs2005/docvault/internal/logging"
	sc "github.com/dmitrijs2005/docvault/internal/server/config"
	"github.com/dmitrijs2005/docvault/internal/server/models"
	"github.com/dmitrijs2005/docvault/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/docvault/internal/server/storage"
)

// UsageService computes storage usage and the effective quota of a user.
type UsageService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	storage     storage.ObjectStorage
	config      *sc.Config
	logger      logging.Logger
}

func NewUsageService(db *sql.DB, repomanager repomanager.RepositoryManager, st storage.ObjectStorage,
	config *sc.Config, logger logging.Logger) *UsageService {
	return &UsageService{
		db:          db,
		repomanager: repomanager,
		storage:     st,
		config:      config,
		logger:      logger,
	}
}

// GetUsage returns used and effective quota bytes.
//
// Used bytes come from the storage_usage cache; a missing or zero entry is
// recomputed by listing the user's prefix and written back. The quota comes
// from the user_effective_quota view, falling back to the configured tier
// plus active add-ons when the view has no row or does not exist.
func (s *UsageService) GetUsage(ctx context.Context, userID string) (models.Usage, error) {
	if !identity.IsValidUserID(userID) {
		return models.Usage{}, common.ErrInvalidUserID
	}

	used, err := s.usedBytes(ctx, userID)
	if err != nil {
		return models.Usage{}, err
	}
	quota, err := s.effectiveQuota(ctx, userID)
	if err != nil {
		return models.Usage{}, err
	}

	return models.Usage{UsedBytes: max(used, 0), EffectiveQuotaBytes: max(quota, 0)}, nil
}

func (s *UsageService) usedBytes(ctx context.Context, userID string) (int64, error) {
	repo := s.repomanager.Usage(s.db)

	used, ok, err := repo.CachedUsage(ctx, userID)
	if err != nil {
		s.logger.Warn(ctx, "usage cache read failed", "user_id", userID, "error", err)
	}
	if err == nil && ok && used > 0 {
		return used, nil
	}

	used, err = s.storage.PrefixSize(ctx, storage.UserPrefix(userID))
	if err != nil {
		return 0, fmt.Errorf("compute usage: %w", err)
	}
	usageScansTotal.Inc()

	if err := repo.SaveUsage(ctx, userID, used); err != nil {
		s.logger.Warn(ctx, "usage cache write failed", "user_id", userID, "error", err)
	}
	return used, nil
}

func (s *UsageService) effectiveQuota(ctx context.Context, userID string) (int64, error) {
	repo := s.repomanager.Usage(s.db)

	quota, ok, err := repo.EffectiveQuota(ctx, userID)
	switch {
	case err == nil && ok:
		return quota, nil
	case err != nil && !errors.Is(err, common.ErrViewUnavailable):
		return 0, fmt.Errorf("effective quota: %w", err)
	}

	premium, err := repo.IsPremium(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("premium status: %w", err)
	}
	addons, err := repo.AddonBytes(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("addons: %w", err)
	}

	base := s.config.FreeBaseQuota
	if premium {
		base = s.config.PremiumBaseQuota
	}
	return base + addons, nil
}

// CheckCanStore returns common.ErrQuotaExceeded when storing extra more
// bytes would go over the effective quota.
func (s *UsageService) CheckCanStore(ctx context.Context, userID string, extra int64) error {
	u, err := s.GetUsage(ctx, userID)
	if err != nil {
		return err
	}
	if u.UsedBytes+max(extra, 0) > u.EffectiveQuotaBytes {
		quotaRejectionsTotal.Inc()
		return common.ErrQuotaExceeded
	}
	return nil
}

// Invalidate drops the cached usage. Failures are only logged.
func (s *UsageService) Invalidate(ctx context.Context, userID string) {
	if err := s.repomanager.Usage(s.db).InvalidateUsage(ctx, userID); err != nil {
		s.logger.Warn(ctx, "usage cache invalidation failed", "user_id", userID, "error", err)
	}
}
