package documents

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/docvault/internal/client/migrations"
	"github.com/dmitrijs2005/docvault/internal/client/models"
	"github.com/dmitrijs2005/docvault/internal/common"
	"github.com/dmitrijs2005/docvault/internal/dbx"
	"github.com/dmitrijs2005/docvault/internal/schema"
)

const selectColumns = `local_id, app_id, name, number, type, category,
	front_media_ref, back_media_ref,
	issue_date, expiry_date, issuing_state, issuing_city, issuing_authority,
	elector_zone, elector_section, card_subtype, card_brand, bank, cvc,
	favorite, synced, updated_at`

// SQLiteRepository implements Repository on top of a local SQLite database.
type SQLiteRepository struct {
	conn *sql.DB
	db   dbx.DBTX
}

// NewSQLiteRepository returns a repository bound to conn.
func NewSQLiteRepository(conn *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{conn: conn, db: conn}
}

func (r *SQLiteRepository) Init(ctx context.Context) error {
	return migrations.Up(ctx, r.conn)
}

func (r *SQLiteRepository) List(ctx context.Context) ([]models.DocumentRecord, error) {
	return r.query(ctx, `SELECT `+selectColumns+` FROM documents ORDER BY updated_at DESC, local_id DESC`)
}

func (r *SQLiteRepository) ListPending(ctx context.Context) ([]models.DocumentRecord, error) {
	return r.query(ctx, `SELECT `+selectColumns+` FROM documents WHERE synced = 0 ORDER BY updated_at ASC, local_id ASC`)
}

func (r *SQLiteRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count documents: %w", err)
	}
	return n, nil
}

func (r *SQLiteRepository) Get(ctx context.Context, localID int64) (models.DocumentRecord, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM documents WHERE local_id = ?`, localID)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.DocumentRecord{}, common.ErrNotFound
	}
	if err != nil {
		return models.DocumentRecord{}, fmt.Errorf("failed to get document %d: %w", localID, err)
	}
	return rec, nil
}

func (r *SQLiteRepository) Insert(ctx context.Context, rec models.DocumentRecord) (int64, error) {
	query := `INSERT INTO documents (app_id, name, number, type, category,
			front_media_ref, back_media_ref,
			issue_date, expiry_date, issuing_state, issuing_city, issuing_authority,
			elector_zone, elector_section, card_subtype, card_brand, bank, cvc,
			favorite, synced, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	res, err := r.db.ExecContext(ctx, query,
		rec.AppID, rec.Name, rec.Number, string(rec.Type), string(rec.Category),
		rec.FrontMediaRef, rec.BackMediaRef,
		rec.IssueDate, rec.ExpiryDate, rec.IssuingState, rec.IssuingCity, rec.IssuingAuthority,
		rec.ElectorZone, rec.ElectorSection, rec.CardSubtype, rec.CardBrand, rec.Bank, rec.CVC,
		rec.Favorite, rec.Synced, nowMillis())
	if err != nil {
		return 0, fmt.Errorf("failed to insert document: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get inserted id: %w", err)
	}
	return id, nil
}

// Update is a single COALESCE statement: NULL parameters keep the column.
func (r *SQLiteRepository) Update(ctx context.Context, localID int64, p models.DocumentPatch) error {
	query := `UPDATE documents SET
			name = COALESCE(?, name),
			number = COALESCE(?, number),
			type = COALESCE(?, type),
			category = COALESCE(?, category),
			front_media_ref = COALESCE(?, front_media_ref),
			back_media_ref = COALESCE(?, back_media_ref),
			favorite = COALESCE(?, favorite),
			issue_date = COALESCE(?, issue_date),
			expiry_date = COALESCE(?, expiry_date),
			issuing_state = COALESCE(?, issuing_state),
			issuing_city = COALESCE(?, issuing_city),
			issuing_authority = COALESCE(?, issuing_authority),
			elector_zone = COALESCE(?, elector_zone),
			elector_section = COALESCE(?, elector_section),
			card_subtype = COALESCE(?, card_subtype),
			card_brand = COALESCE(?, card_brand),
			bank = COALESCE(?, bank),
			cvc = COALESCE(?, cvc),
			synced = 0,
			updated_at = MAX(?, updated_at + 1)
		WHERE local_id = ?`

	var typ, cat any
	if p.Type != nil {
		typ = string(*p.Type)
	}
	if p.Category != nil {
		cat = string(*p.Category)
	}
	var fav any
	if p.Favorite != nil {
		fav = *p.Favorite
	}

	args := []any{
		nullable(p.Name), nullable(p.Number), typ, cat,
		nullable(p.FrontMediaRef), nullable(p.BackMediaRef), fav,
	}
	for _, col := range []string{
		schema.ColIssueDate, schema.ColExpiryDate, schema.ColIssuingState, schema.ColIssuingCity,
		schema.ColIssuingAuthority, schema.ColElectorZone, schema.ColElectorSection,
		schema.ColCardSubtype, schema.ColCardBrand, schema.ColBank, schema.ColCVC,
	} {
		if v, ok := p.Metadata[col]; ok {
			args = append(args, v)
		} else {
			args = append(args, nil)
		}
	}
	args = append(args, nowMillis(), localID)

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update document %d: %w", localID, err)
	}
	return expectOneRow(res, localID)
}

func (r *SQLiteRepository) ToggleFavorite(ctx context.Context, localID int64) error {
	query := `UPDATE documents SET
			favorite = CASE WHEN favorite THEN 0 ELSE 1 END,
			synced = 0,
			updated_at = MAX(?, updated_at + 1)
		WHERE local_id = ?`

	res, err := r.db.ExecContext(ctx, query, nowMillis(), localID)
	if err != nil {
		return fmt.Errorf("failed to toggle favorite on document %d: %w", localID, err)
	}
	return expectOneRow(res, localID)
}

func (r *SQLiteRepository) Delete(ctx context.Context, localID int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM documents WHERE local_id = ?`, localID)
	if err != nil {
		return fmt.Errorf("failed to delete document %d: %w", localID, err)
	}
	return expectOneRow(res, localID)
}

// MarkSynced evaluates every CASE against the pre-update row, so the
// updated_at guard sees the value that existed before this statement.
func (r *SQLiteRepository) MarkSynced(ctx context.Context, localID int64, m SyncMark) error {
	query := `UPDATE documents SET
			app_id = CASE WHEN ?1 > 0 THEN ?1 ELSE app_id END,
			front_media_ref = CASE WHEN updated_at = ?2 AND ?3 <> '' THEN ?3 ELSE front_media_ref END,
			back_media_ref = CASE WHEN updated_at = ?2 AND ?4 <> '' THEN ?4 ELSE back_media_ref END,
			synced = CASE WHEN updated_at = ?2 AND ?5 THEN 1 ELSE synced END
		WHERE local_id = ?6`

	res, err := r.db.ExecContext(ctx, query, m.AppID, m.SeenUpdatedAt, m.FrontMediaRef, m.BackMediaRef, m.Complete, localID)
	if err != nil {
		return fmt.Errorf("failed to mark document %d synced: %w", localID, err)
	}
	return expectOneRow(res, localID)
}

func (r *SQLiteRepository) query(ctx context.Context, query string, args ...any) ([]models.DocumentRecord, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select documents: %w", err)
	}
	defer rows.Close()

	result := make([]models.DocumentRecord, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		result = append(result, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate documents: %w", err)
	}
	return result, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner) (models.DocumentRecord, error) {
	var rec models.DocumentRecord
	var typ, cat string
	err := s.Scan(&rec.LocalID, &rec.AppID, &rec.Name, &rec.Number, &typ, &cat,
		&rec.FrontMediaRef, &rec.BackMediaRef,
		&rec.IssueDate, &rec.ExpiryDate, &rec.IssuingState, &rec.IssuingCity, &rec.IssuingAuthority,
		&rec.ElectorZone, &rec.ElectorSection, &rec.CardSubtype, &rec.CardBrand, &rec.Bank, &rec.CVC,
		&rec.Favorite, &rec.Synced, &rec.UpdatedAt)
	rec.Type = schema.DocType(typ)
	rec.Category = schema.Category(cat)
	return rec, err
}

func nullable(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

func expectOneRow(res sql.Result, localID int64) error {
	ra, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if ra == 0 {
		return fmt.Errorf("document %d: %w", localID, common.ErrNotFound)
	}
	return nil
}
