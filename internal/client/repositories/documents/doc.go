// Package documents provides the client-side persistence layer for
// documents: the local store that is the source of truth while offline.
//
// # Implementations
//
//   - SQLiteRepository persists to SQLite (modernc.org/sqlite) through
//     dbx.DBTX; Init applies the embedded goose migrations.
//   - MemoryRepository keeps records in process memory for platforms
//     without a writable disk and for tests.
//
// # Concurrency
//
// Every mutation is one statement (or one critical section for the memory
// store). There is no read-modify-write across calls, so a sync sweep and a
// user edit can run at the same time without losing either write.
// MarkSynced only flips the synced flag when updated_at still equals the
// value that was pushed.
//
// Typical Usage
//
//	repo := documents.NewSQLiteRepository(db)
//	_ = repo.Init(ctx)
//	id, _ := repo.Insert(ctx, rec)
//	_ = repo.Update(ctx, id, patch)
//	list, _ := repo.List(ctx)
package documents
