package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/iliyamo/theatre-booking/internal/model"
)

// ShowRepo manages persistence for shows.
type ShowRepo struct {
	db *sql.DB
}

func NewShowRepo(db *sql.DB) *ShowRepo { return &ShowRepo{db: db} }

const showColumns = `id, title, description, poster, duration, created_at`

func scanShow(row interface{ Scan(...any) error }) (*model.Show, error) {
	var (
		s       model.Show
		poster  sql.NullString
		created string
	)
	if err := row.Scan(&s.ID, &s.Title, &s.Description, &poster, &s.DurationMin, &created); err != nil {
		return nil, err
	}
	if poster.Valid && poster.String != "" {
		p := poster.String
		s.Poster = &p
	}
	s.CreatedAt = parseTS(created)
	return &s, nil
}

func nullablePoster(p *string) any {
	if p == nil || *p == "" {
		return nil
	}
	return *p
}

// CreateTx inserts s and fills in its ID.
func (r *ShowRepo) CreateTx(ctx context.Context, tx *sql.Tx, s *model.Show) error {
	const q = `INSERT INTO shows (title, description, poster, duration, created_at) VALUES (?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q, s.Title, s.Description, nullablePoster(s.Poster), s.DurationMin, formatTS(s.CreatedAt))
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	return nil
}

// GetByID fetches one show.
func (r *ShowRepo) GetByID(ctx context.Context, id uint64) (*model.Show, error) {
	return r.get(ctx, r.db, id)
}

// GetByIDTx fetches one show inside tx.
func (r *ShowRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Show, error) {
	return r.get(ctx, tx, id)
}

func (r *ShowRepo) get(ctx context.Context, q queryer, id uint64) (*model.Show, error) {
	s, err := scanShow(q.QueryRowContext(ctx, "SELECT "+showColumns+" FROM shows WHERE id = ?", id))
	if err != nil {
		return nil, notFound(err, "show", id)
	}
	return s, nil
}

// List returns every show ordered by title.
func (r *ShowRepo) List(ctx context.Context) ([]model.Show, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+showColumns+" FROM shows ORDER BY title, id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Show, 0)
	for rows.Next() {
		s, err := scanShow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

// ListWithCounts returns every show, newest first, with the number of
// showtimes scheduled for it.
func (r *ShowRepo) ListWithCounts(ctx context.Context) ([]model.ShowSummary, error) {
	const q = `SELECT s.id, s.title, s.description, s.poster, s.duration, s.created_at, COUNT(st.id)
	           FROM shows s
	           LEFT JOIN show_times st ON st.show_id = s.id
	           GROUP BY s.id, s.title, s.description, s.poster, s.duration, s.created_at
	           ORDER BY s.created_at DESC, s.id DESC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.ShowSummary, 0)
	for rows.Next() {
		var (
			sum     model.ShowSummary
			poster  sql.NullString
			created string
		)
		if err := rows.Scan(&sum.Show.ID, &sum.Show.Title, &sum.Show.Description, &poster,
			&sum.Show.DurationMin, &created, &sum.ShowTimeCount); err != nil {
			return nil, err
		}
		if poster.Valid && poster.String != "" {
			p := poster.String
			sum.Show.Poster = &p
		}
		sum.Show.CreatedAt = parseTS(created)
		out = append(out, sum)
	}
	return out, rows.Err()
}

// UpdateTx overwrites the editable fields of an existing show. Missing
// shows yield model.ErrNotFound. Existence is checked with a SELECT
// because MySQL reports zero affected rows for a no-op update.
func (r *ShowRepo) UpdateTx(ctx context.Context, tx *sql.Tx, s *model.Show) error {
	if _, err := r.get(ctx, tx, s.ID); err != nil {
		return err
	}
	const q = `UPDATE shows SET title = ?, description = ?, poster = ?, duration = ? WHERE id = ?`
	_, err := tx.ExecContext(ctx, q, s.Title, s.Description, nullablePoster(s.Poster), s.DurationMin, s.ID)
	return err
}

// DeleteResult counts what a cascading show delete removed.
type DeleteResult struct {
	ShowTimes  int
	Bookings   int
	OrderItems int64
}

// DeleteCascadeTx removes a show together with its showtimes, their
// bookings and the bookings' order items, children first. Identifier
// lists are bound as placeholders.
func (r *ShowRepo) DeleteCascadeTx(ctx context.Context, tx *sql.Tx, id uint64) (DeleteResult, error) {
	var res DeleteResult
	if _, err := r.get(ctx, tx, id); err != nil {
		return res, err
	}

	showTimeIDs, err := collectIDs(ctx, tx, "SELECT id FROM show_times WHERE show_id = ?", id)
	if err != nil {
		return res, fmt.Errorf("list showtimes: %w", err)
	}
	res.ShowTimes = len(showTimeIDs)

	if len(showTimeIDs) > 0 {
		bookingIDs, err := collectIDs(ctx, tx,
			"SELECT id FROM bookings WHERE show_time_id IN ("+placeholders(len(showTimeIDs))+")",
			uint64Args(showTimeIDs)...)
		if err != nil {
			return res, fmt.Errorf("list bookings: %w", err)
		}
		res.Bookings = len(bookingIDs)

		if len(bookingIDs) > 0 {
			in := placeholders(len(bookingIDs))
			r1, err := tx.ExecContext(ctx, "DELETE FROM order_items WHERE booking_id IN ("+in+")", uint64Args(bookingIDs)...)
			if err != nil {
				return res, fmt.Errorf("delete order items: %w", err)
			}
			res.OrderItems, _ = r1.RowsAffected()
			if _, err := tx.ExecContext(ctx, "DELETE FROM bookings WHERE id IN ("+in+")", uint64Args(bookingIDs)...); err != nil {
				return res, fmt.Errorf("delete bookings: %w", err)
			}
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM show_times WHERE show_id = ?", id); err != nil {
			return res, fmt.Errorf("delete showtimes: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM shows WHERE id = ?", id); err != nil {
		return res, fmt.Errorf("delete show: %w", err)
	}
	return res, nil
}

// collectIDs reads a single id column fully before returning so the
// connection is free for the statements that follow.
func collectIDs(ctx context.Context, q queryer, query string, args ...any) ([]uint64, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []uint64
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
