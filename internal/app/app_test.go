package app

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/theatre-booking/internal/cart"
	"github.com/iliyamo/theatre-booking/internal/config"
	"github.com/iliyamo/theatre-booking/internal/model"
	"github.com/iliyamo/theatre-booking/internal/service"
	"github.com/iliyamo/theatre-booking/internal/session"
)

func fixedNow() time.Time { return time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC) }

func newTestApp(t *testing.T) *App {
	t.Helper()
	a, err := New(context.Background(), config.Testing(t.TempDir()), Options{Store: session.NewMemoryStore(), Now: fixedNow})
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func TestNewSeedsAndWires(t *testing.T) {
	a := newTestApp(t)
	require.True(t, a.Available())
	require.NoError(t, a.RequireStorage())

	listing, err := a.Catalog.ListShows(context.Background(), service.AllDates)
	require.NoError(t, err)
	assert.Len(t, listing.Shows, 3)
	assert.Nil(t, a.CurrentUser())
}

func TestDefaultSessionStoreIsFile(t *testing.T) {
	ctx := context.Background()
	cfg := config.Testing(t.TempDir())
	a, err := New(ctx, cfg, Options{Now: fixedNow})
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	_, err = a.Session.Login(ctx, "admin", "admin123")
	require.NoError(t, err)
	assert.FileExists(t, cfg.SessionFile)
}

func TestEndToEndBooking(t *testing.T) {
	ctx := context.Background()
	a := newTestApp(t)

	_, err := a.CheckoutCart(ctx)
	assert.ErrorIs(t, err, model.ErrAuthenticationRequired)

	_, err = a.Session.Register(ctx, session.RegisterInput{Username: "ana", Password: "pw", Email: "ana@example.com"})
	require.NoError(t, err)

	_, err = a.CheckoutCart(ctx)
	assert.ErrorIs(t, err, model.ErrEmptyCart)

	listing, err := a.Catalog.ListShows(ctx, "2024-01-01")
	require.NoError(t, err)
	st := listing.Shows[0].ShowTimes[0]
	require.NoError(t, a.Cart.AddShowtimeSelection(cart.ShowtimeLine{
		ShowTimeID:   st.ID,
		ShowID:       st.ShowID,
		ShowTitle:    listing.Shows[0].Show.Title,
		ShowDate:     st.ShowDate,
		StartTime:    st.StartTime,
		Seats:        []model.Seat{model.NewSeat(3, 3)},
		PricePerSeat: st.Price,
	}))

	res, err := a.CheckoutCart(ctx)
	require.NoError(t, err)
	require.Len(t, res.Bookings, 1)
	require.Len(t, res.TicketPaths, 1)
	assert.True(t, a.Cart.IsEmpty())

	bookings, err := a.Catalog.ListUserBookings(ctx, a.CurrentUser().ID)
	require.NoError(t, err)
	require.Len(t, bookings, 1)
	assert.Equal(t, []string{"D4"}, model.SeatCodes(bookings[0].Seats))

	require.NoError(t, a.Close())
	a.Journal, a.DB = nil, nil
	journal, err := os.ReadFile(a.Config.JournalFile)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(journal), "seats=[D4]"))
}

func TestDegradedWhenStorageUnavailable(t *testing.T) {
	cfg := config.Testing(t.TempDir())
	cfg.DBDriver = config.DriverMySQL
	cfg.DBHost = "127.0.0.1"
	cfg.DBPort = "1"

	a, err := New(context.Background(), cfg, Options{Store: session.NewMemoryStore()})
	require.NoError(t, err)
	defer a.Close()

	assert.False(t, a.Available())
	assert.ErrorIs(t, a.RequireStorage(), model.ErrStorageUnavailable)
	assert.Nil(t, a.CurrentUser())
	assert.NotNil(t, a.Cart)

	_, err = a.CheckoutCart(context.Background())
	assert.ErrorIs(t, err, model.ErrStorageUnavailable)
}
