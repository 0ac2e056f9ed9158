package services

import (
	"context"

	"github.com/dmitrijs2005/docvault/internal/client/client"
	"github.com/dmitrijs2005/docvault/internal/client/models"
	"github.com/dmitrijs2005/docvault/internal/common"
	"github.com/dmitrijs2005/docvault/internal/identity"
	"github.com/dmitrijs2005/docvault/internal/logging"
)

const (
	DefaultFreeBaseQuota   = common.GiB
	DefaultDangerThreshold = common.GiB
)

type QuotaService struct {
	gateway         client.Gateway
	userID          string
	freeBaseQuota   int64
	dangerThreshold int64
	log             logging.Logger
}

func NewQuotaService(gateway client.Gateway, userID string, freeBaseQuota, dangerThreshold int64, log logging.Logger) *QuotaService {
	if freeBaseQuota <= 0 {
		freeBaseQuota = DefaultFreeBaseQuota
	}
	if dangerThreshold <= 0 {
		dangerThreshold = DefaultDangerThreshold
	}
	if log == nil {
		log = logging.Nop()
	}
	return &QuotaService{
		gateway:         gateway,
		userID:          userID,
		freeBaseQuota:   freeBaseQuota,
		dangerThreshold: dangerThreshold,
		log:             log,
	}
}

// Usage returns the account's storage snapshot. Accounts that cannot reach
// the backend get the free tier with nothing used.
func (s *QuotaService) Usage(ctx context.Context) (models.QuotaSnapshot, error) {
	if !identity.IsValidUserID(s.userID) {
		return models.QuotaSnapshot{EffectiveQuotaBytes: s.freeBaseQuota}, nil
	}

	snap, err := s.gateway.Usage(ctx, s.userID)
	if err != nil {
		return models.QuotaSnapshot{}, err
	}
	if snap.EffectiveQuotaBytes <= 0 {
		snap.EffectiveQuotaBytes = s.freeBaseQuota
	}
	return snap, nil
}

func (s *QuotaService) Severity(snap models.QuotaSnapshot) models.Severity {
	return snap.Severity(s.dangerThreshold)
}

// CanCreate returns common.ErrQuotaExceeded when nothing is left. An
// unreachable backend does not block creation.
func (s *QuotaService) CanCreate(ctx context.Context) error {
	snap, err := s.Usage(ctx)
	if err != nil {
		s.log.Warn(ctx, "usage unavailable, allowing create", "error", err)
		return nil
	}
	if snap.Remaining() == 0 {
		return common.ErrQuotaExceeded
	}
	return nil
}
