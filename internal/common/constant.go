// Package common contains shared constants and sentinel errors used across
// docvault components.
package common

// AuthorizationHeaderName carries the bearer access token on outbound requests.
const AuthorizationHeaderName = "Authorization"

// AnonymousUserID marks a local-only account. Sync is skipped for it.
const AnonymousUserID = "anonymous"

// MaxAppID is the upper bound of a normalized document id (2^31 - 1).
const MaxAppID = 2147483647

const (
	KiB int64 = 1 << 10
	MiB int64 = 1 << 20
	GiB int64 = 1 << 30
)
