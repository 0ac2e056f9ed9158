// Package client contains the client-side building blocks that talk to the
// docvault backend and bootstrap local persistence.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic contract (see the Gateway interface) for the
//     backend: FetchAll, Upsert, Remove, ResolveMedia, Usage and
//     RegisterDevice.
//  2. A concrete HTTP+JSON implementation (see HTTPGateway). It bounds every
//     call with a timeout, retries 429/5xx with backoff, and decodes error
//     bodies into *APIError values that match the sentinel errors in
//     internal/common.
//  3. Local persistence bootstrap (InitDatabase), wiring an SQLite
//     database and applying the embedded goose migrations.
//
// # Read path
//
// FetchAll prefers the unified view. When the view is missing or empty it
// reads the base table and hydrates type-specific fields with one request
// per distinct sub-table, never one per document.
//
// # Anonymous mode
//
// Every call made with a user id that is not a UUID (including
// "anonymous") returns success without touching the network.
//
// See Also
//
//   - Interface:  Gateway
//   - HTTP impl:  HTTPGateway
//   - DB helpers: InitDatabase
//   - Errors:     APIError, ErrUnavailable
package client
