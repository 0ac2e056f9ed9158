package devices

import (
	"context"

	"github.com/dmitrijs2005/docvault/internal/server/models"
)

type Repository interface {
	// LockUser serializes device registration for one user until the
	// surrounding transaction ends.
	LockUser(ctx context.Context, userID string) error
	Exists(ctx context.Context, userID, deviceID string) (bool, error)
	Count(ctx context.Context, userID string) (int, error)
	Upsert(ctx context.Context, d models.Device) error
}
