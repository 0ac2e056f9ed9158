// Package usage provides the PostgreSQL repository for the storage usage
// cache and the quota tables (premium, addons, user_effective_quota).
package usage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/docvault/internal/common"
	"github.com/dmitrijs2005/docvault/internal/dbx"
	"github.com/dmitrijs2005/docvault/internal/server/repositories/pgerr"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) CachedUsage(ctx context.Context, userID string) (int64, bool, error) {
	var used int64
	err := r.db.QueryRowContext(ctx,
		`SELECT used_bytes FROM storage_usage WHERE user_id = $1`, userID).Scan(&used)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("db error: %w", err)
	}
	return used, true, nil
}

func (r *PostgresRepository) SaveUsage(ctx context.Context, userID string, used int64) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO storage_usage (user_id, used_bytes, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (user_id) DO UPDATE SET used_bytes = EXCLUDED.used_bytes, updated_at = now()`,
		userID, used)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// InvalidateUsage drops the cached value so the next read recomputes it.
func (r *PostgresRepository) InvalidateUsage(ctx context.Context, userID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM storage_usage WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) EffectiveQuota(ctx context.Context, userID string) (int64, bool, error) {
	var quota int64
	err := r.db.QueryRowContext(ctx,
		`SELECT effective_quota_bytes FROM user_effective_quota WHERE user_id = $1`, userID).Scan(&quota)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return 0, false, nil
		case pgerr.IsUndefinedTable(err):
			return 0, false, common.ErrViewUnavailable
		}
		return 0, false, fmt.Errorf("db error: %w", err)
	}
	return quota, true, nil
}

func (r *PostgresRepository) IsPremium(ctx context.Context, userID string) (bool, error) {
	var premium bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM premium
			WHERE user_id = $1 AND active AND (expires_at IS NULL OR expires_at > now())
		)`, userID).Scan(&premium)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return premium, nil
}

// AddonBytes sums the active, unexpired add-ons of the user.
func (r *PostgresRepository) AddonBytes(ctx context.Context, userID string) (int64, error) {
	var total int64
	err := r.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(bytes), 0) FROM addons
		WHERE user_id = $1 AND active AND (expires_at IS NULL OR expires_at > now())`, userID).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return total, nil
}
