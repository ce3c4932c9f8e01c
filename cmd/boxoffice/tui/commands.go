package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/iliyamo/theatre-booking/internal/app"
	"github.com/iliyamo/theatre-booking/internal/checkout"
	"github.com/iliyamo/theatre-booking/internal/model"
	"github.com/iliyamo/theatre-booking/internal/service"
	"github.com/iliyamo/theatre-booking/internal/session"
)

// Messages
type showsLoadedMsg struct{ listing service.ShowListing }

type productsLoadedMsg struct{ products []model.Product }

type bookingsLoadedMsg struct{ bookings []model.BookingDetail }

type showTimeLoadedMsg struct{ detail *model.ShowTimeDetail }

type checkoutDoneMsg struct{ res *checkout.Result }

type loginDoneMsg struct{ user *model.SessionUser }

type logoutDoneMsg struct{ err error }

type errorMsg struct {
	op  string
	err error
}

// Commands
func loadShowsCmd(a *app.App, date string) tea.Cmd {
	return func() tea.Msg {
		listing, err := a.Catalog.ListShows(context.Background(), date)
		if err != nil {
			return errorMsg{op: "load shows", err: err}
		}
		return showsLoadedMsg{listing: listing}
	}
}

func loadProductsCmd(a *app.App) tea.Cmd {
	return func() tea.Msg {
		products, err := a.Catalog.ListProducts(context.Background())
		if err != nil {
			return errorMsg{op: "load products", err: err}
		}
		return productsLoadedMsg{products: products}
	}
}

func loadBookingsCmd(a *app.App) tea.Cmd {
	return func() tea.Msg {
		u := a.CurrentUser()
		if u == nil {
			return bookingsLoadedMsg{}
		}
		list, err := a.Catalog.ListUserBookings(context.Background(), u.ID)
		if err != nil {
			return errorMsg{op: "load bookings", err: err}
		}
		return bookingsLoadedMsg{bookings: list}
	}
}

func loadShowTimeCmd(a *app.App, id uint64) tea.Cmd {
	return func() tea.Msg {
		d, err := a.Catalog.GetShowTime(context.Background(), id)
		if err != nil {
			return errorMsg{op: "load seats", err: err}
		}
		return showTimeLoadedMsg{detail: d}
	}
}

func checkoutCmd(a *app.App) tea.Cmd {
	return func() tea.Msg {
		res, err := a.CheckoutCart(context.Background())
		if err != nil {
			return errorMsg{op: "checkout", err: err}
		}
		return checkoutDoneMsg{res: res}
	}
}

func loginCmd(a *app.App, username, password string) tea.Cmd {
	return func() tea.Msg {
		u, err := a.Session.Login(context.Background(), username, password)
		if err != nil {
			return errorMsg{op: "login", err: err}
		}
		return loginDoneMsg{user: u}
	}
}

func registerCmd(a *app.App, in session.RegisterInput) tea.Cmd {
	return func() tea.Msg {
		u, err := a.Session.Register(context.Background(), in)
		if err != nil {
			return errorMsg{op: "register", err: err}
		}
		return loginDoneMsg{user: u}
	}
}

func logoutCmd(a *app.App) tea.Cmd {
	return func() tea.Msg {
		return logoutDoneMsg{err: a.Session.Logout(context.Background())}
	}
}
