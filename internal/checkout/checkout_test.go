package checkout

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/theatre-booking/internal/cart"
	"github.com/iliyamo/theatre-booking/internal/database/dbtest"
	"github.com/iliyamo/theatre-booking/internal/document"
	"github.com/iliyamo/theatre-booking/internal/model"
	"github.com/iliyamo/theatre-booking/internal/queue"
	"github.com/iliyamo/theatre-booking/internal/repository"
)

var testNow = time.Date(2024, 1, 5, 18, 0, 0, 0, time.UTC)

type fixture struct {
	db        *sql.DB
	user      *model.SessionUser
	showTimes []model.ShowTime
	products  []model.Product
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()
	db := dbtest.Seeded(t, testNow)

	tx, err := db.BeginTx(ctx, nil)
	require.NoError(t, err)
	u := &model.User{Username: "ana", Email: "ana@example.com", PasswordHash: "x", Role: model.RoleCustomer, CreatedAt: testNow}
	require.NoError(t, repository.NewUserRepo(db).CreateTx(ctx, tx, u))
	require.NoError(t, tx.Commit())
	su := u.Session()

	times, err := repository.NewShowTimeRepo(db).ListAll(ctx)
	require.NoError(t, err)
	products, err := repository.NewProductRepo(db).List(ctx)
	require.NoError(t, err)
	return fixture{db: db, user: &su, showTimes: times, products: products}
}

func (f fixture) line(t *testing.T, st model.ShowTime, codes ...string) cart.ShowtimeLine {
	t.Helper()
	seats := make([]model.Seat, len(codes))
	for i, c := range codes {
		s, err := model.ParseSeatCode(c)
		require.NoError(t, err)
		seats[i] = s
	}
	return cart.ShowtimeLine{
		ShowTimeID:   st.ID,
		ShowID:       st.ShowID,
		ShowTitle:    "Show",
		ShowDate:     st.ShowDate,
		StartTime:    st.StartTime,
		Seats:        seats,
		PricePerSeat: st.Price,
	}
}

func (f fixture) seating(t *testing.T, id uint64) model.SeatingMap {
	t.Helper()
	st, err := repository.NewShowTimeRepo(f.db).GetByID(context.Background(), id)
	require.NoError(t, err)
	return st.SeatingMap
}

func (f fixture) bookings(t *testing.T) int {
	t.Helper()
	n, err := repository.NewBookingRepo(f.db).Count(context.Background(), 0)
	require.NoError(t, err)
	return n
}

func (f fixture) count(t *testing.T, table string) int {
	t.Helper()
	var n int
	require.NoError(t, f.db.QueryRow("SELECT COUNT(*) FROM "+table).Scan(&n))
	return n
}

func fixedClock(d *Deps) {
	d.Now = func() time.Time { return testNow }
	d.NewReference = func() string { return "ref-test" }
}

func defaultDeps(db *sql.DB) Deps {
	d := Deps{
		DB:         db,
		Bookings:   repository.NewBookingRepo(db),
		Seating:    repository.NewShowTimeRepo(db),
		OrderItems: repository.NewOrderItemRepo(db),
		Audit:      repository.NewLogRepo(db),
	}
	fixedClock(&d)
	return d
}

func TestCheckoutPreconditions(t *testing.T) {
	f := newFixture(t)
	svc := New(defaultDeps(f.db))

	_, err := svc.Checkout(context.Background(), nil, cart.New())
	assert.ErrorIs(t, err, model.ErrAuthenticationRequired)

	_, err = svc.Checkout(context.Background(), f.user, cart.New())
	assert.ErrorIs(t, err, model.ErrEmptyCart)

	c := cart.New()
	require.NoError(t, c.AddProduct(cart.ProductLine{ProductID: f.products[0].ID, Price: f.products[0].Price, Quantity: 1}))
	_, err = svc.Checkout(context.Background(), f.user, c)
	assert.ErrorIs(t, err, model.ErrEmptyCart, "concessions alone do not make a booking")
}

func TestCheckoutCommitsEverything(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	dir := t.TempDir()
	journal := queue.NewJournal(filepath.Join(dir, "booking.log"), 4)

	d := defaultDeps(f.db)
	d.Journal = journal
	d.Documents = document.NewTextGenerator("")
	d.Exporter = document.NewExporter(filepath.Join(dir, "tickets"))
	svc := New(d)

	st1, st2 := f.showTimes[0], f.showTimes[3]
	popcorn := f.products[0]
	c := cart.New()
	require.NoError(t, c.AddShowtimeSelection(f.line(t, st1, "A1", "A2")))
	require.NoError(t, c.AddShowtimeSelection(f.line(t, st2, "H10")))
	require.NoError(t, c.AddProduct(cart.ProductLine{ProductID: popcorn.ID, Name: popcorn.Name, Price: popcorn.Price, Quantity: 2}))
	wantTotal := c.TotalPrice()

	res, err := svc.Checkout(ctx, f.user, c)
	require.NoError(t, err)
	require.NoError(t, journal.Close())

	assert.Equal(t, "ref-test", res.Reference)
	require.Len(t, res.Bookings, 2)
	assert.True(t, wantTotal.Equal(res.Total))
	assert.True(t, res.Bookings[0].TotalPrice.Equal(st1.Price.Mul(decimal.NewFromInt(2))))
	assert.True(t, res.Bookings[1].TotalPrice.Equal(st2.Price))
	assert.True(t, c.IsEmpty(), "cart is cleared after commit")

	grid := f.seating(t, st1.ID)
	assert.Equal(t, model.SeatReserved, grid.State(0, 0))
	assert.Equal(t, model.SeatReserved, grid.State(0, 1))
	assert.Equal(t, model.SeatAvailable, grid.State(0, 2))
	assert.Equal(t, model.SeatReserved, f.seating(t, st2.ID).State(7, 9))

	for _, b := range res.Bookings {
		items, err := repository.NewOrderItemRepo(f.db).ListByBooking(ctx, b.ID)
		require.NoError(t, err)
		require.Len(t, items, 1, "concessions attach to every booking")
		assert.Equal(t, 2, items[0].Quantity)
	}

	n, err := repository.NewLogRepo(f.db).Count(ctx, model.ActionBookingCreated)
	require.NoError(t, err)
	assert.Equal(t, 1, n, "one audit entry per checkout")

	require.Len(t, res.Tickets, 2, "every booking gets a ticket")
	require.Len(t, res.TicketPaths, 2)
	ticket, err := os.ReadFile(res.TicketPaths[1])
	require.NoError(t, err)
	assert.Contains(t, string(ticket), "H10")
	assert.Contains(t, string(ticket), "$"+st2.Price.StringFixed(2))

	journalText, err := os.ReadFile(journal.Path())
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(string(journalText), "Booking confirmed"))
	assert.Contains(t, string(journalText), "seats=[A1,A2]")
}

func TestCheckoutRejectsTakenSeat(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := New(defaultDeps(f.db))
	st := f.showTimes[0]

	first := cart.New()
	require.NoError(t, first.AddShowtimeSelection(f.line(t, st, "C3")))
	_, err := svc.Checkout(ctx, f.user, first)
	require.NoError(t, err)

	second := cart.New()
	require.NoError(t, second.AddShowtimeSelection(f.line(t, f.showTimes[1], "A1")))
	require.NoError(t, second.AddShowtimeSelection(f.line(t, st, "C2", "C3")))
	_, err = svc.Checkout(ctx, f.user, second)
	require.ErrorIs(t, err, model.ErrSeatAlreadyReserved)
	assert.Contains(t, err.Error(), "C3")

	assert.Equal(t, 1, f.bookings(t), "the whole second checkout rolls back")
	assert.Equal(t, model.SeatAvailable, f.seating(t, f.showTimes[1].ID).State(0, 0))
	assert.Equal(t, model.SeatAvailable, f.seating(t, st.ID).State(2, 1))
	assert.Len(t, second.Items(), 2, "cart is preserved for retry")
}

func TestCheckoutRejectsAisle(t *testing.T) {
	f := newFixture(t)
	svc := New(defaultDeps(f.db))

	c := cart.New()
	require.NoError(t, c.AddShowtimeSelection(f.line(t, f.showTimes[0], "A5")))
	_, err := svc.Checkout(context.Background(), f.user, c)
	assert.ErrorIs(t, err, model.ErrSeatNotBookable)
	assert.Zero(t, f.bookings(t))
}

func TestCheckoutUnknownShowtime(t *testing.T) {
	f := newFixture(t)
	svc := New(defaultDeps(f.db))

	c := cart.New()
	line := f.line(t, f.showTimes[0], "A1")
	line.ShowTimeID = 9999
	require.NoError(t, c.AddShowtimeSelection(line))
	_, err := svc.Checkout(context.Background(), f.user, c)
	assert.Error(t, err)
	assert.Zero(t, f.bookings(t))
}

type failingSeating struct {
	SeatingStore
	failOn uint64
}

var errInjected = errors.New("injected write failure")

func (s failingSeating) SaveSeatingMapTx(ctx context.Context, tx *sql.Tx, id uint64, m model.SeatingMap) error {
	if id == s.failOn {
		return errInjected
	}
	return s.SeatingStore.SaveSeatingMapTx(ctx, tx, id, m)
}

type failingAudit struct{}

func (failingAudit) AppendTx(context.Context, *sql.Tx, *model.LogEntry) error { return errInjected }

func TestCheckoutIsAtomic(t *testing.T) {
	ctx := context.Background()

	t.Run("grid write fails on second line", func(t *testing.T) {
		f := newFixture(t)
		d := defaultDeps(f.db)
		d.Seating = failingSeating{SeatingStore: repository.NewShowTimeRepo(f.db), failOn: f.showTimes[1].ID}
		svc := New(d)

		c := cart.New()
		require.NoError(t, c.AddShowtimeSelection(f.line(t, f.showTimes[0], "A1", "A2")))
		require.NoError(t, c.AddShowtimeSelection(f.line(t, f.showTimes[1], "B1")))
		require.NoError(t, c.AddProduct(cart.ProductLine{ProductID: f.products[0].ID, Price: f.products[0].Price, Quantity: 1}))

		_, err := svc.Checkout(ctx, f.user, c)
		require.ErrorIs(t, err, errInjected)

		assert.Zero(t, f.bookings(t))
		assert.Zero(t, f.count(t, "order_items"))
		assert.Equal(t, model.DefaultSeatingMap(), f.seating(t, f.showTimes[0].ID))
		assert.Equal(t, model.DefaultSeatingMap(), f.seating(t, f.showTimes[1].ID))
		assert.False(t, c.IsEmpty())
	})

	t.Run("audit write fails", func(t *testing.T) {
		f := newFixture(t)
		d := defaultDeps(f.db)
		d.Audit = failingAudit{}
		svc := New(d)

		c := cart.New()
		require.NoError(t, c.AddShowtimeSelection(f.line(t, f.showTimes[0], "A1")))
		_, err := svc.Checkout(ctx, f.user, c)
		require.ErrorIs(t, err, errInjected)
		assert.Zero(t, f.bookings(t))
		assert.Equal(t, model.DefaultSeatingMap(), f.seating(t, f.showTimes[0].ID))
	})
}

type brokenSaver struct{}

func (brokenSaver) Save(document.Document) (string, error) { return "", errInjected }

func TestPostCommitFailuresKeepBookings(t *testing.T) {
	f := newFixture(t)
	journal := queue.NewJournal(filepath.Join(t.TempDir(), "booking.log"), 1)
	require.NoError(t, journal.Close())

	d := defaultDeps(f.db)
	d.Journal = journal
	d.Documents = document.NewTextGenerator("")
	d.Exporter = brokenSaver{}
	svc := New(d)

	c := cart.New()
	require.NoError(t, c.AddShowtimeSelection(f.line(t, f.showTimes[0], "D4")))
	res, err := svc.Checkout(context.Background(), f.user, c)
	require.NoError(t, err)
	assert.Len(t, res.Tickets, 1)
	assert.Empty(t, res.TicketPaths)
	assert.Equal(t, 1, f.bookings(t))
}
