// Package services holds the client-side document engine: reconciliation of
// local and remote document sets, the sync state machine that pushes local
// mutations, and quota reporting.
package services
