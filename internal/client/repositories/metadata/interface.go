// Package metadata stores small client-side settings in the local database:
// the device id used for registration and bookkeeping about loads.
package metadata

import (
	"context"
)

// Well-known keys.
const (
	KeyDeviceID   = "device_id"
	KeyLastLoadAt = "last_load_at"
	KeyUserID     = "user_id"
)

// Repository is a string key/value store. Get returns ("", false, nil) for
// missing keys.
type Repository interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) (map[string]string, error)
}
