// Package documents provides the PostgreSQL repository for synced documents
// and their per-type detail tables.
package documents

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/docvault/internal/common"
	"github.com/dmitrijs2005/docvault/internal/dbx"
	"github.com/dmitrijs2005/docvault/internal/schema"
	"github.com/dmitrijs2005/docvault/internal/server/models"
	"github.com/dmitrijs2005/docvault/internal/server/repositories/pgerr"
)

const baseColumns = "user_id, app_id, name, number, type, category, front_path, back_path, favorite, updated_at"

// PostgresRepository implements Repository over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func classify(op string, err error) error {
	if pgerr.IsSchemaDrift(err) {
		return fmt.Errorf("%s: %w: %v", op, common.ErrSchemaMismatch, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func favoriteArg(f *bool) sql.NullBool {
	if f == nil {
		return sql.NullBool{}
	}
	return sql.NullBool{Bool: *f, Valid: true}
}

// Exists reports whether the user already has a row with appID.
func (r *PostgresRepository) Exists(ctx context.Context, userID string, appID int32) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM documents WHERE user_id = $1 AND app_id = $2)`,
		userID, appID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return exists, nil
}

// WriteFull inserts or updates the base row and upserts the sub-table row
// of the document's type.
func (r *PostgresRepository) WriteFull(ctx context.Context, doc models.Document, insert bool) error {
	var err error
	if insert {
		_, err = r.db.ExecContext(ctx, `
			INSERT INTO documents (`+baseColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, COALESCE($9, FALSE), $10)`,
			doc.UserID, doc.AppID, doc.Name, doc.Number, doc.Type, doc.Category,
			doc.FrontPath, doc.BackPath, favoriteArg(doc.Favorite), doc.UpdatedAt)
	} else {
		_, err = r.db.ExecContext(ctx, `
			UPDATE documents SET
				name = $3, number = $4, type = $5, category = $6,
				front_path = $7, back_path = $8, favorite = COALESCE($9, favorite), updated_at = $10
			WHERE user_id = $1 AND app_id = $2`,
			doc.UserID, doc.AppID, doc.Name, doc.Number, doc.Type, doc.Category,
			doc.FrontPath, doc.BackPath, favoriteArg(doc.Favorite), doc.UpdatedAt)
	}
	if err != nil {
		return classify("write document", err)
	}

	table, ok := schema.SubTableFor(doc.DocType())
	if !ok {
		return nil
	}
	return r.writeDetails(ctx, table, doc)
}

func (r *PostgresRepository) writeDetails(ctx context.Context, table schema.SubTable, doc models.Document) error {
	cols := table.Columns
	sets := make([]string, len(cols))
	args := make([]any, 0, len(cols)+2)
	args = append(args, doc.UserID, doc.AppID)
	for i, col := range cols {
		sets[i] = col + " = EXCLUDED." + col
		args = append(args, doc.Details[col])
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (user_id, app_id, %s)
		VALUES (%s)
		ON CONFLICT (user_id, app_id) DO UPDATE SET %s`,
		table.Name, strings.Join(cols, ", "), dbx.DollarList(1, len(cols)+2), strings.Join(sets, ", "))

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return classify("write "+table.Name, err)
	}
	return nil
}

// WriteMinimal stores name, number, media paths and updated_at only.
func (r *PostgresRepository) WriteMinimal(ctx context.Context, doc models.Document, insert bool) error {
	var err error
	if insert {
		_, err = r.db.ExecContext(ctx, `
			INSERT INTO documents (user_id, app_id, name, number, front_path, back_path, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			doc.UserID, doc.AppID, doc.Name, doc.Number, doc.FrontPath, doc.BackPath, doc.UpdatedAt)
	} else {
		_, err = r.db.ExecContext(ctx, `
			UPDATE documents SET name = $3, number = $4, front_path = $5, back_path = $6, updated_at = $7
			WHERE user_id = $1 AND app_id = $2`,
			doc.UserID, doc.AppID, doc.Name, doc.Number, doc.FrontPath, doc.BackPath, doc.UpdatedAt)
	}
	if err != nil {
		return classify("write minimal document", err)
	}
	return nil
}

// MediaPaths returns the stored object keys, or common.ErrNotFound.
func (r *PostgresRepository) MediaPaths(ctx context.Context, userID string, appID int32) (string, string, error) {
	var front, back string
	err := r.db.QueryRowContext(ctx,
		`SELECT front_path, back_path FROM documents WHERE user_id = $1 AND app_id = $2`,
		userID, appID).Scan(&front, &back)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", "", common.ErrNotFound
		}
		return "", "", fmt.Errorf("db error: %w", err)
	}
	return front, back, nil
}

// Delete removes the base row; detail rows go with it through ON DELETE CASCADE.
func (r *PostgresRepository) Delete(ctx context.Context, userID string, appID int32) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM documents WHERE user_id = $1 AND app_id = $2`, userID, appID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) ListUnified(ctx context.Context, userID string) ([]models.Document, error) {
	query := `SELECT ` + baseColumns + `, ` + strings.Join(schema.MetadataColumns, ", ") + `
		FROM documents_unified WHERE user_id = $1 ORDER BY app_id`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		if pgerr.IsUndefinedTable(err) {
			return nil, common.ErrViewUnavailable
		}
		return nil, fmt.Errorf("failed to select unified documents: %w", err)
	}
	defer rows.Close()

	var result []models.Document
	for rows.Next() {
		doc, dest := scanTarget(len(schema.MetadataColumns))
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		doc.setDetails(schema.MetadataColumns)
		result = append(result, doc.Document)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) ListBase(ctx context.Context, userID string) ([]models.Document, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+baseColumns+` FROM documents WHERE user_id = $1 ORDER BY app_id`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to select documents: %w", err)
	}
	defer rows.Close()

	var result []models.Document
	for rows.Next() {
		doc, dest := scanTarget(0)
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		result = append(result, doc.Document)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// ListDetails reads table rows for the given app ids. The returned
// documents carry UserID, AppID and Details only.
func (r *PostgresRepository) ListDetails(ctx context.Context, userID string, table schema.SubTable, appIDs []int32) ([]models.Document, error) {
	if len(appIDs) == 0 {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT app_id, %s FROM %s WHERE user_id = $1 AND app_id IN (%s) ORDER BY app_id`,
		strings.Join(table.Columns, ", "), table.Name, dbx.DollarList(2, len(appIDs)))

	args := append([]any{userID}, dbx.Args(appIDs)...)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify("select "+table.Name, err)
	}
	defer rows.Close()

	var result []models.Document
	for rows.Next() {
		doc := models.Document{UserID: userID, Details: make(map[string]string, len(table.Columns))}
		values := make([]string, len(table.Columns))
		dest := make([]any, 0, len(values)+1)
		dest = append(dest, &doc.AppID)
		for i := range values {
			dest = append(dest, &values[i])
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		for i, col := range table.Columns {
			doc.Details[col] = values[i]
		}
		result = append(result, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

type scanned struct {
	models.Document
	favorite bool
	meta     []string
}

func (s *scanned) setDetails(cols []string) {
	s.Details = make(map[string]string, len(cols))
	for i, col := range cols {
		if s.meta[i] != "" {
			s.Details[col] = s.meta[i]
		}
	}
}

// scanTarget returns a holder and the Scan destinations for baseColumns
// followed by nMeta metadata columns.
func scanTarget(nMeta int) (*scanned, []any) {
	s := &scanned{meta: make([]string, nMeta)}
	s.Favorite = &s.favorite
	dest := []any{
		&s.UserID, &s.AppID, &s.Name, &s.Number, &s.Type, &s.Category,
		&s.FrontPath, &s.BackPath, &s.favorite, &s.UpdatedAt,
	}
	for i := range s.meta {
		dest = append(dest, &s.meta[i])
	}
	return s, dest
}
