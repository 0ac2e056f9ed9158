package usage

import "context"

type Repository interface {
	// CachedUsage returns the cached byte count; ok is false when no row exists.
	CachedUsage(ctx context.Context, userID string) (used int64, ok bool, err error)
	SaveUsage(ctx context.Context, userID string, used int64) error
	InvalidateUsage(ctx context.Context, userID string) error

	// EffectiveQuota reads user_effective_quota. ok is false when the user
	// has no row; common.ErrViewUnavailable means the view is missing.
	EffectiveQuota(ctx context.Context, userID string) (quota int64, ok bool, err error)
	IsPremium(ctx context.Context, userID string) (bool, error)
	AddonBytes(ctx context.Context, userID string) (int64, error)
}
