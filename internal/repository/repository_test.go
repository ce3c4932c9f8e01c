package repository_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/theatre-booking/internal/database/dbtest"
	"github.com/iliyamo/theatre-booking/internal/model"
	"github.com/iliyamo/theatre-booking/internal/repository"
)

var seedDay = time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

func inTx(t *testing.T, db *sql.DB, fn func(tx *sql.Tx) error) {
	t.Helper()
	tx, err := db.BeginTx(context.Background(), nil)
	require.NoError(t, err)
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		require.NoError(t, err)
	}
	require.NoError(t, tx.Commit())
}

func book(t *testing.T, db *sql.DB, userID uint64, st model.ShowTime, at time.Time, codes ...string) model.Booking {
	t.Helper()
	seats := make([]model.Seat, len(codes))
	for i, c := range codes {
		s, err := model.ParseSeatCode(c)
		require.NoError(t, err)
		seats[i] = s
	}
	b := model.Booking{
		UserID:     userID,
		ShowTimeID: st.ID,
		Seats:      seats,
		TotalPrice: st.Price.Mul(decimal.NewFromInt(int64(len(seats)))),
		CreatedAt:  at,
	}
	inTx(t, db, func(tx *sql.Tx) error { return repository.NewBookingRepo(db).CreateTx(context.Background(), tx, &b) })
	return b
}

func adminID(t *testing.T, db *sql.DB) uint64 {
	t.Helper()
	u, err := repository.NewUserRepo(db).GetByUsername(context.Background(), "admin")
	require.NoError(t, err)
	return u.ID
}

func TestUserRepoDuplicateIdentity(t *testing.T) {
	ctx := context.Background()
	db := dbtest.Seeded(t, seedDay)
	users := repository.NewUserRepo(db)

	tx, err := db.BeginTx(ctx, nil)
	require.NoError(t, err)
	defer tx.Rollback()

	taken, err := users.IdentityTakenTx(ctx, tx, "someone", "admin@theatre.com")
	require.NoError(t, err)
	assert.True(t, taken)

	err = users.CreateTx(ctx, tx, &model.User{Username: "admin", Email: "other@example.com", PasswordHash: "x", Role: model.RoleCustomer})
	assert.ErrorIs(t, err, model.ErrDuplicateIdentity)
}

func TestUserRepoNotFound(t *testing.T) {
	db := dbtest.Seeded(t, seedDay)
	_, err := repository.NewUserRepo(db).GetByUsername(context.Background(), "ghost")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestShowTimeRepoSeatingMap(t *testing.T) {
	ctx := context.Background()
	db := dbtest.Seeded(t, seedDay)
	repo := repository.NewShowTimeRepo(db)

	times, err := repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, times, 6)
	for i := 1; i < len(times); i++ {
		prev, cur := times[i-1], times[i]
		assert.LessOrEqual(t, prev.ShowDate+prev.StartTime, cur.ShowDate+cur.StartTime)
	}

	st := times[0]
	grid, err := st.SeatingMap.Reserve([]model.Seat{model.NewSeat(1, 1)})
	require.NoError(t, err)
	inTx(t, db, func(tx *sql.Tx) error { return repo.SaveSeatingMapTx(ctx, tx, st.ID, grid) })

	got, err := repo.GetByID(ctx, st.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SeatReserved, got.SeatingMap.State(1, 1))
	assert.Equal(t, model.DefaultRows, got.SeatingMap.Rows())
	assert.Equal(t, model.DefaultCols, got.SeatingMap.Cols())

	tx, err := db.BeginTx(ctx, nil)
	require.NoError(t, err)
	defer tx.Rollback()
	assert.ErrorIs(t, repo.SaveSeatingMapTx(ctx, tx, 9999, grid), model.ErrNotFound)
}

func TestShowTimeRepoSlotTaken(t *testing.T) {
	ctx := context.Background()
	db := dbtest.Seeded(t, seedDay)
	repo := repository.NewShowTimeRepo(db)
	st := mustFirstShowTime(t, db)

	tx, err := db.BeginTx(ctx, nil)
	require.NoError(t, err)
	defer tx.Rollback()

	taken, err := repo.SlotTakenTx(ctx, tx, st.ShowID, st.ShowDate, st.StartTime)
	require.NoError(t, err)
	assert.True(t, taken)

	taken, err = repo.SlotTakenTx(ctx, tx, st.ShowID, st.ShowDate, "23:59")
	require.NoError(t, err)
	assert.False(t, taken)
}

func mustFirstShowTime(t *testing.T, db *sql.DB) model.ShowTime {
	t.Helper()
	times, err := repository.NewShowTimeRepo(db).ListAll(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, times)
	return times[0]
}

func TestShowRepoDeleteCascade(t *testing.T) {
	ctx := context.Background()
	db := dbtest.Seeded(t, seedDay)
	shows := repository.NewShowRepo(db)
	st := mustFirstShowTime(t, db)
	uid := adminID(t, db)

	b := book(t, db, uid, st, seedDay, "A1", "A2")
	products, err := repository.NewProductRepo(db).List(ctx)
	require.NoError(t, err)
	inTx(t, db, func(tx *sql.Tx) error {
		return repository.NewOrderItemRepo(db).CreateBulkTx(ctx, tx, []model.OrderItem{
			{BookingID: &b.ID, ProductID: products[0].ID, Quantity: 2},
			{BookingID: &b.ID, ProductID: products[1].ID, Quantity: 1},
		})
	})

	var res repository.DeleteResult
	inTx(t, db, func(tx *sql.Tx) error {
		var err error
		res, err = shows.DeleteCascadeTx(ctx, tx, st.ShowID)
		return err
	})
	assert.Equal(t, 2, res.ShowTimes)
	assert.Equal(t, 1, res.Bookings)
	assert.EqualValues(t, 2, res.OrderItems)

	_, err = shows.GetByID(ctx, st.ShowID)
	assert.ErrorIs(t, err, model.ErrNotFound)
	left, err := repository.NewShowTimeRepo(db).ListByShow(ctx, st.ShowID)
	require.NoError(t, err)
	assert.Empty(t, left)
	n, err := repository.NewOrderItemRepo(db).Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	remaining, err := shows.List(ctx)
	require.NoError(t, err)
	assert.Len(t, remaining, 2)

	tx, err := db.BeginTx(ctx, nil)
	require.NoError(t, err)
	defer tx.Rollback()
	_, err = shows.DeleteCascadeTx(ctx, tx, st.ShowID)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestShowRepoListWithCounts(t *testing.T) {
	db := dbtest.Seeded(t, seedDay)
	list, err := repository.NewShowRepo(db).ListWithCounts(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 3)
	total := 0
	for _, s := range list {
		total += s.ShowTimeCount
	}
	assert.Equal(t, 6, total)
}

func TestBookingRepoListByUser(t *testing.T) {
	ctx := context.Background()
	db := dbtest.Seeded(t, seedDay)
	st := mustFirstShowTime(t, db)
	uid := adminID(t, db)

	book(t, db, uid, st, seedDay, "A1")
	second := book(t, db, uid, st, seedDay.Add(time.Hour), "B1", "B2")

	list, err := repository.NewBookingRepo(db).ListByUser(ctx, uid)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID, "newest first")
	assert.Equal(t, "The Phantom Menace", list[0].ShowTitle)
	assert.Equal(t, []string{"B1", "B2"}, model.SeatCodes(list[0].Seats))
	assert.True(t, list[0].TotalPrice.Equal(decimal.RequireFromString("25.98")))

	none, err := repository.NewBookingRepo(db).ListByUser(ctx, uid+100)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestReportRepoInclusiveRange(t *testing.T) {
	ctx := context.Background()
	db := dbtest.Seeded(t, seedDay)
	times, err := repository.NewShowTimeRepo(db).ListAll(ctx)
	require.NoError(t, err)
	uid := adminID(t, db)

	phantom := times[0]
	var detective model.ShowTime
	for _, st := range times {
		if st.ShowID != phantom.ShowID && st.Price.Equal(decimal.RequireFromString("14.99")) {
			detective = st
		}
	}
	require.NotZero(t, detective.ID)

	book(t, db, uid, phantom, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), "A1")
	book(t, db, uid, phantom, time.Date(2024, 1, 5, 23, 59, 0, 0, time.UTC), "A2", "A3")
	book(t, db, uid, detective, time.Date(2024, 1, 3, 12, 0, 0, 0, time.UTC), "C1", "C2", "C3")
	book(t, db, uid, detective, time.Date(2024, 1, 6, 0, 0, 0, 0, time.UTC), "D1")

	reports := repository.NewReportRepo(db)
	from, to := "2024-01-01 00:00:00", "2024-01-06 00:00:00"

	totals, err := reports.Totals(ctx, from, to)
	require.NoError(t, err)
	assert.Equal(t, 3, totals.Bookings)
	assert.Equal(t, 6, totals.Tickets)
	want := phantom.Price.Mul(decimal.NewFromInt(3)).Add(detective.Price.Mul(decimal.NewFromInt(3)))
	assert.True(t, want.Equal(totals.Revenue), "got %s want %s", totals.Revenue, want)

	byShow, err := reports.ByShow(ctx, from, to)
	require.NoError(t, err)
	require.Len(t, byShow, 2)
	assert.True(t, byShow[0].Revenue.GreaterThanOrEqual(byShow[1].Revenue))
	assert.Equal(t, 3, byShow[0].Tickets)

	byDate, err := reports.ByDate(ctx, from, to)
	require.NoError(t, err)
	require.Len(t, byDate, 3)
	assert.Equal(t, []string{"2024-01-05", "2024-01-03", "2024-01-01"},
		[]string{byDate[0].Date, byDate[1].Date, byDate[2].Date})
	assert.Equal(t, 2, byDate[0].Tickets)

	empty, err := reports.Totals(ctx, "2023-01-01 00:00:00", "2023-01-02 00:00:00")
	require.NoError(t, err)
	assert.Zero(t, empty.Bookings)
	assert.True(t, empty.Revenue.IsZero())
}

func TestLogRepoListBetween(t *testing.T) {
	ctx := context.Background()
	db := dbtest.Seeded(t, seedDay)
	logs := repository.NewLogRepo(db)
	uid := adminID(t, db)

	require.NoError(t, logs.Append(ctx, &model.LogEntry{
		Action: model.ActionUserLogin, Details: "User admin logged in", UserID: &uid, CreatedAt: seedDay.Add(time.Hour),
	}))
	require.NoError(t, logs.Append(ctx, &model.LogEntry{
		Action: model.ActionUserLogout, Details: "late", UserID: &uid, CreatedAt: seedDay.AddDate(0, 0, 1),
	}))

	list, err := logs.ListBetween(ctx, "2024-01-01 00:00:00", "2024-01-02 00:00:00")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, model.ActionUserLogin, list[0].Action)
	assert.Equal(t, "admin", list[0].Username)
	assert.Equal(t, model.ActionSystemInit, list[1].Action)
	assert.Equal(t, model.SystemActor, list[1].Username)
	assert.Nil(t, list[1].UserID)

	n, err := logs.Count(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestProductRepo(t *testing.T) {
	ctx := context.Background()
	db := dbtest.Seeded(t, seedDay)
	repo := repository.NewProductRepo(db)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 10)
	assert.Equal(t, model.ProductDrink, list[0].Type)
	assert.Equal(t, model.ProductSnack, list[len(list)-1].Type)

	p, err := repo.GetByID(ctx, list[0].ID)
	require.NoError(t, err)
	assert.Equal(t, list[0].Name, p.Name)

	_, err = repo.GetByID(ctx, 9999)
	assert.ErrorIs(t, err, model.ErrNotFound)
}
