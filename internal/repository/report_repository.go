package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/theatre-booking/internal/model"
)

// ReportRepo runs the aggregate queries behind the sales report. All
// ranges are half-open on created_at: from <= created_at < to.
type ReportRepo struct{ db *sql.DB }

func NewReportRepo(db *sql.DB) *ReportRepo { return &ReportRepo{db: db} }

// Totals sums revenue, bookings and tickets in the range.
func (r *ReportRepo) Totals(ctx context.Context, from, to string) (model.SalesTotals, error) {
	var (
		t       model.SalesTotals
		cents   sql.NullInt64
		tickets sql.NullInt64
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*), SUM(total_cents), SUM(seat_count) FROM bookings WHERE created_at >= ? AND created_at < ?`,
		from, to).Scan(&t.Bookings, &cents, &tickets)
	if err != nil {
		return t, err
	}
	t.Revenue = model.FromCents(cents.Int64)
	t.Tickets = int(tickets.Int64)
	return t, nil
}

// ByShow groups the range by show, highest revenue first.
func (r *ReportRepo) ByShow(ctx context.Context, from, to string) ([]model.ShowSales, error) {
	const q = `SELECT s.title, COUNT(b.id), SUM(b.seat_count), SUM(b.total_cents) AS revenue
	           FROM bookings b
	           JOIN show_times st ON st.id = b.show_time_id
	           JOIN shows s ON s.id = st.show_id
	           WHERE b.created_at >= ? AND b.created_at < ?
	           GROUP BY s.id, s.title
	           ORDER BY revenue DESC, s.title`
	rows, err := r.db.QueryContext(ctx, q, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.ShowSales, 0)
	for rows.Next() {
		var (
			s              model.ShowSales
			tickets, cents int64
		)
		if err := rows.Scan(&s.Title, &s.Bookings, &tickets, &cents); err != nil {
			return nil, err
		}
		s.Tickets = int(tickets)
		s.Revenue = model.FromCents(cents)
		out = append(out, s)
	}
	return out, rows.Err()
}

// ByDate groups the range by calendar day, newest first. The day is
// the first ten characters of the stored timestamp.
func (r *ReportRepo) ByDate(ctx context.Context, from, to string) ([]model.DailySales, error) {
	const q = `SELECT SUBSTR(created_at, 1, 10) AS day, COUNT(*), SUM(seat_count), SUM(total_cents)
	           FROM bookings
	           WHERE created_at >= ? AND created_at < ?
	           GROUP BY SUBSTR(created_at, 1, 10)
	           ORDER BY day DESC`
	rows, err := r.db.QueryContext(ctx, q, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.DailySales, 0)
	for rows.Next() {
		var (
			d              model.DailySales
			tickets, cents int64
		)
		if err := rows.Scan(&d.Date, &d.Bookings, &tickets, &cents); err != nil {
			return nil, err
		}
		d.Tickets = int(tickets)
		d.Revenue = model.FromCents(cents)
		out = append(out, d)
	}
	return out, rows.Err()
}
