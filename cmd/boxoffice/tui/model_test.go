package tui

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/theatre-booking/internal/app"
	"github.com/iliyamo/theatre-booking/internal/config"
	"github.com/iliyamo/theatre-booking/internal/model"
	"github.com/iliyamo/theatre-booking/internal/service"
	"github.com/iliyamo/theatre-booking/internal/session"
)

func testApp(t *testing.T) *app.App {
	t.Helper()
	now := func() time.Time { return time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC) }
	a, err := app.New(context.Background(), config.Testing(t.TempDir()), app.Options{Store: session.NewMemoryStore(), Now: now})
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func send(t *testing.T, m Model, msgs ...tea.Msg) Model {
	t.Helper()
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		m = next.(Model)
	}
	return m
}

func firstShowTime(t *testing.T, a *app.App) *model.ShowTimeDetail {
	t.Helper()
	listing, err := a.Catalog.ListShows(context.Background(), service.AllDates)
	require.NoError(t, err)
	d, err := a.Catalog.GetShowTime(context.Background(), listing.Shows[0].ShowTimes[0].ID)
	require.NoError(t, err)
	return d
}

func TestPickSeatsIntoCart(t *testing.T) {
	a := testApp(t)
	m := New(a)
	d := firstShowTime(t, a)

	m = send(t, m, showTimeLoadedMsg{detail: d})
	require.Equal(t, ModeSeats, m.mode)

	m = send(t, m, key(" "), key("right"), key(" "), key("enter"))
	assert.Equal(t, ModeShows, m.mode)
	line, ok := a.Cart.Item(d.ShowTime.ID)
	require.True(t, ok)
	assert.Equal(t, []string{"A1", "A2"}, model.SeatCodes(line.Seats))
	assert.Contains(t, m.status, "Added 2 seat(s)")

	// Reopening keeps the earlier pick and enter replaces the line.
	m = send(t, m, showTimeLoadedMsg{detail: d}, key(" "), key("enter"))
	line, _ = a.Cart.Item(d.ShowTime.ID)
	assert.Equal(t, []string{"A2"}, model.SeatCodes(line.Seats))
}

func TestAisleSelectionShowsError(t *testing.T) {
	a := testApp(t)
	d := firstShowTime(t, a)
	m := send(t, New(a), showTimeLoadedMsg{detail: d})
	for i := 0; i < 4; i++ {
		m = send(t, m, key("right"))
	}
	m = send(t, m, key(" "))
	assert.True(t, m.statusErr)
	assert.Equal(t, "A selected seat cannot be booked.", m.status)
	assert.Empty(t, m.picker.Selected())
}

func TestCheckoutNeedsLogin(t *testing.T) {
	a := testApp(t)
	m := New(a)
	m = send(t, m, key("tab"), key("tab"))
	require.Equal(t, ModeCart, m.mode)

	m = send(t, m, key("c"))
	assert.True(t, m.statusErr)
	assert.Contains(t, m.status, "log in")
}

func TestLoginFlow(t *testing.T) {
	a := testApp(t)
	m := send(t, New(a), key("l"))
	require.Equal(t, ModeLogin, m.mode)

	next, cmd := m.Update(key("enter"))
	m = next.(Model)
	require.NotNil(t, cmd)
	msg := cmd()
	require.IsType(t, errorMsg{}, msg)
	m = send(t, m, msg)
	assert.Equal(t, "Invalid username or password.", m.status)

	m = send(t, m, key("esc"))
	assert.Equal(t, ModeShows, m.mode)

	_, err := a.Session.Login(context.Background(), "admin", "admin123")
	require.NoError(t, err)
	m = send(t, m, loginDoneMsg{user: a.CurrentUser()})
	assert.Contains(t, m.View(), "admin")
}

func TestCheckoutResultUpdatesStatus(t *testing.T) {
	a := testApp(t)
	_, err := a.Session.Login(context.Background(), "admin", "admin123")
	require.NoError(t, err)
	d := firstShowTime(t, a)

	m := send(t, New(a), showTimeLoadedMsg{detail: d}, key(" "), key("enter"), key("tab"), key("tab"))
	require.Equal(t, ModeCart, m.mode)

	next, cmd := m.Update(key("c"))
	m = next.(Model)
	require.NotNil(t, cmd)
	m = send(t, m, cmd())
	assert.False(t, m.statusErr, m.status)
	assert.Contains(t, m.status, "Booked!")
	assert.True(t, a.Cart.IsEmpty())
}

func TestDegradedModel(t *testing.T) {
	cfg := config.Testing(t.TempDir())
	cfg.DBDriver = config.DriverMySQL
	cfg.DBHost = "127.0.0.1"
	cfg.DBPort = "1"
	a, err := app.New(context.Background(), cfg, app.Options{Store: session.NewMemoryStore()})
	require.NoError(t, err)

	m := New(a)
	assert.Nil(t, m.Init())
	assert.Contains(t, m.View(), "unavailable")

	m = send(t, m, key("enter"), key("l"))
	assert.Equal(t, ModeShows, m.mode)
	assert.True(t, m.statusErr)
}
