package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/iliyamo/theatre-booking/internal/model"
)

// BookingRepo provides persistence for bookings. Seats are stored as a
// JSON array next to a seat_count column so reports can count tickets
// without decoding JSON in SQL.
type BookingRepo struct {
	db *sql.DB
}

func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// CreateTx inserts b within the caller's transaction and fills in the
// generated ID.
func (r *BookingRepo) CreateTx(ctx context.Context, tx *sql.Tx, b *model.Booking) error {
	seats, err := json.Marshal(b.Seats)
	if err != nil {
		return fmt.Errorf("encode seats: %w", err)
	}
	if b.Status == "" {
		b.Status = model.BookingConfirmed
	}
	const q = `INSERT INTO bookings (user_id, show_time_id, seats, seat_count, total_cents, status, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q, b.UserID, b.ShowTimeID, string(seats), len(b.Seats),
		model.ToCents(b.TotalPrice), b.Status, formatTS(b.CreatedAt))
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	return nil
}

// ListByUser returns a user's bookings, newest first, joined with the
// show title and performance slot.
func (r *BookingRepo) ListByUser(ctx context.Context, userID uint64) ([]model.BookingDetail, error) {
	const q = `SELECT b.id, b.user_id, b.show_time_id, b.seats, b.total_cents, b.status, b.created_at,
	                  s.title, st.show_date, st.start_time
	           FROM bookings b
	           JOIN show_times st ON st.id = b.show_time_id
	           JOIN shows s ON s.id = st.show_id
	           WHERE b.user_id = ?
	           ORDER BY b.created_at DESC, b.id DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.BookingDetail, 0)
	for rows.Next() {
		var (
			d       model.BookingDetail
			seats   string
			cents   int64
			created string
		)
		if err := rows.Scan(&d.ID, &d.UserID, &d.ShowTimeID, &seats, &cents, &d.Status, &created,
			&d.ShowTitle, &d.ShowDate, &d.StartTime); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(seats), &d.Seats); err != nil {
			return nil, fmt.Errorf("booking %d: decode seats: %w", d.ID, err)
		}
		d.TotalPrice = model.FromCents(cents)
		d.CreatedAt = parseTS(created)
		out = append(out, d)
	}
	return out, rows.Err()
}

// Count returns the number of bookings, optionally restricted to one
// showtime when showTimeID is non-zero.
func (r *BookingRepo) Count(ctx context.Context, showTimeID uint64) (int, error) {
	var n int
	var err error
	if showTimeID == 0 {
		err = r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM bookings").Scan(&n)
	} else {
		err = r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM bookings WHERE show_time_id = ?", showTimeID).Scan(&n)
	}
	return n, err
}
