// Package common defines shared constants and sentinel errors used across
// client and server layers of docvault. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrInternal     = errors.New("internal error")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")

	// Identity errors.
	ErrInvalidIdentity = errors.New("document has no usable identity")
	ErrInvalidUserID   = errors.New("invalid user id")

	// Sync and storage errors.
	ErrQuotaExceeded      = errors.New("storage quota exceeded")
	ErrSchemaMismatch     = errors.New("schema mismatch")
	ErrViewUnavailable    = errors.New("unified view unavailable")
	ErrDeviceLimitReached = errors.New("device limit reached")
	ErrInvalidRequest     = errors.New("invalid request")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
