package services

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/docvault/internal/common"
	"github.com/dmitrijs2005/docvault/internal/dbx"
	"github.com/dmitrijs2005/docvault/internal/identity"
	"github.com/dmitrijs2005/docvault/internal/logging"
	sc "github.com/dmitrijs2005/docvault/internal/server/config"
	"github.com/dmitrijs2005/docvault/internal/server/models"
	"github.com/dmitrijs2005/docvault/internal/server/repositories/repomanager"
)

// DeviceService enforces the per-user device limit.
type DeviceService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	config      *sc.Config
	logger      logging.Logger
}

func NewDeviceService(db *sql.DB, repomanager repomanager.RepositoryManager, config *sc.Config, logger logging.Logger) *DeviceService {
	return &DeviceService{db: db, repomanager: repomanager, config: config, logger: logger}
}

// Register records the device. Known devices are refreshed; new ones are
// refused with common.ErrDeviceLimitReached once the user has MaxDevices.
func (s *DeviceService) Register(ctx context.Context, userID, deviceID, platform string) error {
	if !identity.IsValidUserID(userID) {
		return common.ErrInvalidUserID
	}
	if deviceID == "" {
		return common.ErrInvalidRequest
	}

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Devices(tx)

		if err := repo.LockUser(ctx, userID); err != nil {
			return err
		}

		known, err := repo.Exists(ctx, userID, deviceID)
		if err != nil {
			return err
		}
		if !known {
			n, err := repo.Count(ctx, userID)
			if err != nil {
				return err
			}
			if n >= s.config.MaxDevices {
				devicesRejectedTotal.Inc()
				s.logger.Info(ctx, "device limit reached", "user_id", userID, "devices", n)
				return common.ErrDeviceLimitReached
			}
		}

		return repo.Upsert(ctx, models.Device{UserID: userID, DeviceID: deviceID, Platform: platform})
	})
}
