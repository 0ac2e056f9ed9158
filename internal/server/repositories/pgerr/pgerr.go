// Package pgerr classifies PostgreSQL errors returned through pgx.
package pgerr

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// SQLSTATE codes the repositories react to.
const (
	UndefinedColumn  = "42703"
	UndefinedTable   = "42P01"
	DatatypeMismatch = "42804"
)

// Code returns the SQLSTATE of err, or "" when err is not a *pgconn.PgError.
func Code(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// IsSchemaDrift reports whether err means the database schema is older or
// different from what the statement expects.
func IsSchemaDrift(err error) bool {
	switch Code(err) {
	case UndefinedColumn, UndefinedTable, DatatypeMismatch:
		return true
	}
	return false
}

// IsUndefinedTable reports a missing table or view.
func IsUndefinedTable(err error) bool {
	return Code(err) == UndefinedTable
}
