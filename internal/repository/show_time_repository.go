package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/iliyamo/theatre-booking/internal/model"
)

// ShowTimeRepo manages scheduled performances and their seating maps.
type ShowTimeRepo struct {
	db *sql.DB
}

func NewShowTimeRepo(db *sql.DB) *ShowTimeRepo { return &ShowTimeRepo{db: db} }

const showTimeColumns = `id, show_id, show_date, start_time, price_cents, seating_map, created_at`

func scanShowTime(row interface{ Scan(...any) error }) (*model.ShowTime, error) {
	var (
		st      model.ShowTime
		cents   int64
		rawMap  string
		created string
	)
	if err := row.Scan(&st.ID, &st.ShowID, &st.ShowDate, &st.StartTime, &cents, &rawMap, &created); err != nil {
		return nil, err
	}
	m, err := model.ParseSeatingMap(rawMap)
	if err != nil {
		return nil, fmt.Errorf("showtime %d: %w", st.ID, err)
	}
	st.Price = model.FromCents(cents)
	st.SeatingMap = m
	st.CreatedAt = parseTS(created)
	return &st, nil
}

// CreateTx inserts st together with its seating map and fills in the ID.
func (r *ShowTimeRepo) CreateTx(ctx context.Context, tx *sql.Tx, st *model.ShowTime) error {
	raw, err := st.SeatingMap.Encode()
	if err != nil {
		return err
	}
	const q = `INSERT INTO show_times (show_id, show_date, start_time, price_cents, seating_map, created_at) VALUES (?, ?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q, st.ShowID, st.ShowDate, st.StartTime, model.ToCents(st.Price), raw, formatTS(st.CreatedAt))
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	st.ID = uint64(id)
	return nil
}

// SlotTakenTx reports whether the show already has a performance at the
// given date and start time.
func (r *ShowTimeRepo) SlotTakenTx(ctx context.Context, tx *sql.Tx, showID uint64, date, start string) (bool, error) {
	var n int
	err := tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM show_times WHERE show_id = ? AND show_date = ? AND start_time = ?",
		showID, date, start).Scan(&n)
	return n > 0, err
}

// GetByID fetches one showtime with its current seating map.
func (r *ShowTimeRepo) GetByID(ctx context.Context, id uint64) (*model.ShowTime, error) {
	st, err := scanShowTime(r.db.QueryRowContext(ctx, "SELECT "+showTimeColumns+" FROM show_times WHERE id = ?", id))
	if err != nil {
		return nil, notFound(err, "showtime", id)
	}
	return st, nil
}

// ListAll returns every showtime ordered by date and start time.
func (r *ShowTimeRepo) ListAll(ctx context.Context) ([]model.ShowTime, error) {
	return r.list(ctx, "SELECT "+showTimeColumns+" FROM show_times ORDER BY show_date, start_time, id")
}

// ListByShow returns the showtimes of one show ordered by date and time.
func (r *ShowTimeRepo) ListByShow(ctx context.Context, showID uint64) ([]model.ShowTime, error) {
	return r.list(ctx, "SELECT "+showTimeColumns+" FROM show_times WHERE show_id = ? ORDER BY show_date, start_time, id", showID)
}

func (r *ShowTimeRepo) list(ctx context.Context, q string, args ...any) ([]model.ShowTime, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.ShowTime, 0)
	for rows.Next() {
		st, err := scanShowTime(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *st)
	}
	return out, rows.Err()
}

// GetSeatingMapTx re-reads the seating map inside tx. Checkout calls it
// after inserting the booking so the seat guard sees committed state.
func (r *ShowTimeRepo) GetSeatingMapTx(ctx context.Context, tx *sql.Tx, id uint64) (model.SeatingMap, error) {
	var raw string
	if err := tx.QueryRowContext(ctx, "SELECT seating_map FROM show_times WHERE id = ?", id).Scan(&raw); err != nil {
		return nil, notFound(err, "showtime", id)
	}
	return model.ParseSeatingMap(raw)
}

// SaveSeatingMapTx writes the seating map back.
func (r *ShowTimeRepo) SaveSeatingMapTx(ctx context.Context, tx *sql.Tx, id uint64, m model.SeatingMap) error {
	raw, err := m.Encode()
	if err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, "UPDATE show_times SET seating_map = ? WHERE id = ?", raw, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("showtime %d: %w", id, model.ErrNotFound)
	}
	return nil
}
