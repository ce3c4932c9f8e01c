// Package repository holds the SQL data access for the box office. Each
// repo wraps a *sql.DB; methods ending in Tx run inside a transaction
// owned by the caller, which must commit or roll back. Queries use only
// "?" placeholders and portable SQL so the same code serves SQLite and
// MySQL.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/iliyamo/theatre-booking/internal/model"
)

// mysqlDuplicateEntry is MySQL's ER_DUP_ENTRY.
const mysqlDuplicateEntry = 1062

// isUniqueViolation reports whether err comes from a UNIQUE constraint
// in either supported driver.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number == mysqlDuplicateEntry
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// notFound maps sql.ErrNoRows to model.ErrNotFound, naming what was
// looked up.
func notFound(err error, what string, id any) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s %v: %w", what, id, model.ErrNotFound)
	}
	return err
}

// formatTS renders t in the stored timestamp form (UTC).
func formatTS(t time.Time) string {
	return t.UTC().Format(model.TimestampLayout)
}

// parseTS parses a stored timestamp. MySQL may append fractional
// seconds, so only the first 19 characters are considered.
func parseTS(s string) time.Time {
	if len(s) > len(model.TimestampLayout) {
		s = s[:len(model.TimestampLayout)]
	}
	t, err := time.Parse(model.TimestampLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}

// placeholders returns "?, ?, ?" for n arguments.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func uint64Args(ids []uint64) []any {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}

func nullableID(id *uint64) any {
	if id == nil {
		return nil
	}
	return *id
}

func idFromNull(n sql.NullInt64) *uint64 {
	if !n.Valid {
		return nil
	}
	v := uint64(n.Int64)
	return &v
}

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}
