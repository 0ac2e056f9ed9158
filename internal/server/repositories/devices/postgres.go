// Package devices provides the PostgreSQL repository for registered client
// devices.
package devices

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/docvault/internal/dbx"
	"github.com/dmitrijs2005/docvault/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) LockUser(ctx context.Context, userID string) error {
	if _, err := r.db.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, userID); err != nil {
		return fmt.Errorf("lock devices: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Exists(ctx context.Context, userID, deviceID string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM devices WHERE user_id = $1 AND device_id = $2)`,
		userID, deviceID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return exists, nil
}

func (r *PostgresRepository) Count(ctx context.Context, userID string) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM devices WHERE user_id = $1`, userID).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

// Upsert registers the device or refreshes its platform and last_seen.
func (r *PostgresRepository) Upsert(ctx context.Context, d models.Device) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO devices (user_id, device_id, platform, last_seen)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (user_id, device_id) DO UPDATE SET platform = EXCLUDED.platform, last_seen = now()`,
		d.UserID, d.DeviceID, d.Platform)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
