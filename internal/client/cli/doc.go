// Package cli provides the interactive docvault command-line client.
//
// It wires configuration, the local SQLite store, the HTTP gateway and the
// document services, then runs a REPL. Every mutation is written locally
// first; the gateway push happens right after and, if it fails, on the next
// list or sync.
//
// Commands:
//   - list                          reconcile local and remote, print a table
//   - add <type> <name> [number] [front] [back]
//   - edit <localId> field=value...
//   - fav <localId>
//   - delete <localId>
//   - sync                          push pending documents
//   - usage                         storage used and quota
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
