package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/theatre-booking/internal/model"
)

// LogRepo appends to and reads the system audit log. Entries are never
// updated or deleted.
type LogRepo struct{ db *sql.DB }

func NewLogRepo(db *sql.DB) *LogRepo { return &LogRepo{db: db} }

// Append writes e outside any transaction.
func (r *LogRepo) Append(ctx context.Context, e *model.LogEntry) error {
	return r.append(ctx, r.db, e)
}

// AppendTx writes e as part of tx, so the entry commits or rolls back
// with the action it records.
func (r *LogRepo) AppendTx(ctx context.Context, tx *sql.Tx, e *model.LogEntry) error {
	return r.append(ctx, tx, e)
}

func (r *LogRepo) append(ctx context.Context, q queryer, e *model.LogEntry) error {
	res, err := q.ExecContext(ctx, "INSERT INTO system_logs (action, details, user_id, created_at) VALUES (?, ?, ?, ?)",
		e.Action, e.Details, nullableID(e.UserID), formatTS(e.CreatedAt))
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	e.ID = uint64(id)
	return nil
}

// ListBetween returns entries with from <= created_at < to, newest
// first, with the acting username resolved. Bounds are stored-format
// timestamps.
func (r *LogRepo) ListBetween(ctx context.Context, from, to string) ([]model.LogEntryDetail, error) {
	const q = `SELECT l.id, l.action, l.details, l.user_id, l.created_at, u.username
	           FROM system_logs l
	           LEFT JOIN users u ON u.id = l.user_id
	           WHERE l.created_at >= ? AND l.created_at < ?
	           ORDER BY l.created_at DESC, l.id DESC`
	rows, err := r.db.QueryContext(ctx, q, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.LogEntryDetail, 0)
	for rows.Next() {
		var (
			d        model.LogEntryDetail
			uid      sql.NullInt64
			created  string
			username sql.NullString
		)
		if err := rows.Scan(&d.ID, &d.Action, &d.Details, &uid, &created, &username); err != nil {
			return nil, err
		}
		d.UserID = idFromNull(uid)
		d.CreatedAt = parseTS(created)
		d.Username = model.SystemActor
		if username.Valid {
			d.Username = username.String
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// Count returns the number of entries, optionally only those with the
// given action.
func (r *LogRepo) Count(ctx context.Context, action string) (int, error) {
	var n int
	var err error
	if action == "" {
		err = r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM system_logs").Scan(&n)
	} else {
		err = r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM system_logs WHERE action = ?", action).Scan(&n)
	}
	return n, err
}
