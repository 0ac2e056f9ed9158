package client

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/docvault/internal/client/migrations"
	"github.com/dmitrijs2005/docvault/internal/client/repositories/documents"
	"github.com/dmitrijs2005/docvault/internal/client/repositories/metadata"
	_ "modernc.org/sqlite"
)

type Repositories struct {
	Documents documents.Repository
	Metadata  metadata.Repository
}

// InitDatabase opens the local SQLite store at dsn and migrates it. The
// caller owns the returned *sql.DB.
func InitDatabase(ctx context.Context, dsn string) (*sql.DB, *Repositories, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("open local store: %w", err)
	}
	// single writer keeps in-memory DSNs on one connection
	db.SetMaxOpenConns(1)

	if err := migrations.Up(ctx, db); err != nil {
		_ = db.Close()
		return nil, nil, err
	}

	repos := &Repositories{
		Documents: documents.NewSQLiteRepository(db),
		Metadata:  metadata.NewSQLiteRepository(db),
	}
	return db, repos, nil
}
