package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/theatre-booking/internal/model"
)

// OrderItemRepo stores concession lines attached to bookings.
type OrderItemRepo struct{ db *sql.DB }

func NewOrderItemRepo(db *sql.DB) *OrderItemRepo { return &OrderItemRepo{db: db} }

// CreateBulkTx inserts every item and fills in its ID. Rows go in one
// at a time because LastInsertId of a multi-row insert means different
// things in SQLite and MySQL. An empty slice is a no-op.
func (r *OrderItemRepo) CreateBulkTx(ctx context.Context, tx *sql.Tx, items []model.OrderItem) error {
	for i := range items {
		res, err := tx.ExecContext(ctx, "INSERT INTO order_items (booking_id, product_id, quantity) VALUES (?, ?, ?)",
			nullableID(items[i].BookingID), items[i].ProductID, items[i].Quantity)
		if err != nil {
			return err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		items[i].ID = uint64(id)
	}
	return nil
}

// ListByBooking returns the order items of one booking.
func (r *OrderItemRepo) ListByBooking(ctx context.Context, bookingID uint64) ([]model.OrderItem, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, booking_id, product_id, quantity FROM order_items WHERE booking_id = ? ORDER BY id", bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.OrderItem, 0)
	for rows.Next() {
		var (
			it  model.OrderItem
			bid sql.NullInt64
		)
		if err := rows.Scan(&it.ID, &bid, &it.ProductID, &it.Quantity); err != nil {
			return nil, err
		}
		it.BookingID = idFromNull(bid)
		out = append(out, it)
	}
	return out, rows.Err()
}

// Count returns the total number of order items.
func (r *OrderItemRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM order_items").Scan(&n)
	return n, err
}
