// Package tui is the interactive box office: browse performances, pick
// seats, add concessions and check out.
package tui

import (
	"fmt"
	"log"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/iliyamo/theatre-booking/cmd/boxoffice/output"
	"github.com/iliyamo/theatre-booking/internal/app"
	"github.com/iliyamo/theatre-booking/internal/cart"
	"github.com/iliyamo/theatre-booking/internal/model"
	"github.com/iliyamo/theatre-booking/internal/service"
	"github.com/iliyamo/theatre-booking/internal/session"
)

// Mode is the screen currently shown.
type Mode int

const (
	ModeShows Mode = iota
	ModeSeats
	ModeProducts
	ModeCart
	ModeBookings
	ModeLogin
)

var tabs = []struct {
	mode Mode
	name string
}{
	{ModeShows, "Shows"},
	{ModeProducts, "Snacks & Drinks"},
	{ModeCart, "Cart"},
	{ModeBookings, "My Bookings"},
}

// Model is the root bubbletea model.
type Model struct {
	app  *app.App
	mode Mode
	back Mode

	shows    list.Model
	products list.Model
	cart     list.Model
	bookings list.Model

	picker     *SeatPicker
	pickerShow *model.ShowTimeDetail
	login      loginForm

	dates   []string
	dateIdx int // -1 shows every date

	status    string
	statusErr bool
	busy      bool

	width  int
	height int
}

// New builds the model for a, which may be running without storage.
func New(a *app.App) Model {
	m := Model{
		app:      a,
		mode:     ModeShows,
		shows:    newList("Performances"),
		products: newList("Snacks & Drinks"),
		cart:     newList("Your Cart"),
		bookings: newList("My Bookings"),
		dateIdx:  -1,
	}
	if !a.Available() {
		m.setError("The booking database is unavailable. Browsing and booking are disabled.")
	} else if u := a.CurrentUser(); u != nil {
		m.setInfo("Welcome back, " + u.Username)
	}
	return m
}

// Run starts the program on the alternate screen and blocks until the
// user quits.
func Run(a *app.App) error {
	_, err := tea.NewProgram(New(a), tea.WithAltScreen()).Run()
	return err
}

func (m Model) Init() tea.Cmd {
	if !m.app.Available() {
		return nil
	}
	return tea.Batch(loadShowsCmd(m.app, service.AllDates), loadProductsCmd(m.app), loadBookingsCmd(m.app))
}

func (m *Model) setInfo(s string)  { m.status, m.statusErr = s, false }
func (m *Model) setError(s string) { m.status, m.statusErr = s, true }

func (m *Model) fail(op string, err error) {
	log.Printf("tui: %s: %v", op, err)
	m.setError(output.Describe(err))
}

func (m Model) dateFilter() string {
	if m.dateIdx < 0 || m.dateIdx >= len(m.dates) {
		return service.AllDates
	}
	return m.dates[m.dateIdx]
}

func (m *Model) refreshCart() tea.Cmd {
	return m.cart.SetItems(cartItems(m.app.Cart))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		for _, l := range []*list.Model{&m.shows, &m.products, &m.cart, &m.bookings} {
			l.SetSize(msg.Width-4, msg.Height-8)
		}
		return m, nil

	case showsLoadedMsg:
		m.dates = msg.listing.Dates
		var items []list.Item
		for _, sh := range msg.listing.Shows {
			for _, st := range sh.ShowTimes {
				items = append(items, showTimeItem{show: sh.Show, st: st})
			}
		}
		return m, m.shows.SetItems(items)

	case productsLoadedMsg:
		items := make([]list.Item, len(msg.products))
		for i, p := range msg.products {
			items[i] = productItem{p: p}
		}
		return m, m.products.SetItems(items)

	case bookingsLoadedMsg:
		items := make([]list.Item, len(msg.bookings))
		for i, b := range msg.bookings {
			items[i] = bookingItem{b: b}
		}
		return m, m.bookings.SetItems(items)

	case showTimeLoadedMsg:
		var pre []model.Seat
		if line, ok := m.app.Cart.Item(msg.detail.ShowTime.ID); ok {
			pre = line.Seats
		}
		m.picker = NewSeatPicker(msg.detail.ShowTime.SeatingMap, pre)
		m.pickerShow = msg.detail
		m.back, m.mode = m.mode, ModeSeats
		return m, nil

	case checkoutDoneMsg:
		m.busy = false
		res := msg.res
		text := fmt.Sprintf("Booked! Reference %s, total %s.", res.Reference, model.FormatPrice(res.Total))
		if n := len(res.TicketPaths); n > 0 {
			text += fmt.Sprintf(" %d ticket(s) saved to %s.", n, m.app.Exporter.Dir)
		}
		m.setInfo(text)
		return m, tea.Batch(m.refreshCart(), loadShowsCmd(m.app, m.dateFilter()), loadBookingsCmd(m.app))

	case loginDoneMsg:
		m.mode = m.back
		m.setInfo("Logged in as " + msg.user.Username)
		return m, loadBookingsCmd(m.app)

	case logoutDoneMsg:
		if msg.err != nil {
			log.Printf("tui: logout: %v", msg.err)
		}
		m.setInfo("Logged out")
		return m, m.bookings.SetItems(nil)

	case errorMsg:
		m.busy = false
		m.fail(msg.op, msg.err)
		if msg.op == "checkout" && m.app.Available() {
			// The grid may have changed under us.
			return m, loadShowsCmd(m.app, m.dateFilter())
		}
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.mode {
		case ModeLogin:
			return m.updateLogin(msg)
		case ModeSeats:
			return m.updateSeats(msg)
		}
		if cmd, handled := m.updateGlobal(msg); handled {
			return m, cmd
		}
		switch m.mode {
		case ModeShows:
			if cmd, handled := m.updateShows(msg); handled {
				return m, cmd
			}
		case ModeProducts:
			if cmd, handled := m.updateProducts(msg); handled {
				return m, cmd
			}
		case ModeCart:
			if cmd, handled := m.updateCart(msg); handled {
				return m, cmd
			}
		case ModeBookings:
			if msg.String() == "r" && m.app.Available() {
				return m, loadBookingsCmd(m.app)
			}
		}
	}

	var cmd tea.Cmd
	switch m.mode {
	case ModeShows:
		m.shows, cmd = m.shows.Update(msg)
	case ModeProducts:
		m.products, cmd = m.products.Update(msg)
	case ModeCart:
		m.cart, cmd = m.cart.Update(msg)
	case ModeBookings:
		m.bookings, cmd = m.bookings.Update(msg)
	case ModeLogin:
		cmd = m.login.update(msg)
	}
	return m, cmd
}

// updateGlobal handles the keys shared by every tab.
func (m *Model) updateGlobal(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch msg.String() {
	case "q":
		return tea.Quit, true
	case "tab", "shift+tab":
		step := 1
		if msg.String() == "shift+tab" {
			step = len(tabs) - 1
		}
		cur := 0
		for i, t := range tabs {
			if t.mode == m.mode {
				cur = i
			}
		}
		m.mode = tabs[(cur+step)%len(tabs)].mode
		if m.mode == ModeCart {
			return m.refreshCart(), true
		}
		return nil, true
	case "l":
		if !m.app.Available() {
			m.setError(output.Describe(m.app.RequireStorage()))
			return nil, true
		}
		if m.app.CurrentUser() != nil {
			return logoutCmd(m.app), true
		}
		m.login = newLoginForm(false)
		m.back, m.mode = m.mode, ModeLogin
		return textinput.Blink, true
	}
	return nil, false
}

func (m *Model) updateShows(msg tea.KeyMsg) (tea.Cmd, bool) {
	if !m.app.Available() {
		return nil, false
	}
	switch msg.String() {
	case "enter", " ":
		it, ok := m.shows.SelectedItem().(showTimeItem)
		if !ok {
			return nil, true
		}
		return loadShowTimeCmd(m.app, it.st.ID), true
	case "d":
		if len(m.dates) == 0 {
			return nil, true
		}
		m.dateIdx++
		if m.dateIdx >= len(m.dates) {
			m.dateIdx = -1
		}
		m.setInfo("Showing " + m.dateLabel())
		return loadShowsCmd(m.app, m.dateFilter()), true
	case "r":
		return loadShowsCmd(m.app, m.dateFilter()), true
	}
	return nil, false
}

func (m Model) dateLabel() string {
	if f := m.dateFilter(); f != service.AllDates {
		return f
	}
	return "all dates"
}

func (m Model) updateSeats(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "q":
		m.mode = m.back
		m.picker, m.pickerShow = nil, nil
	case "up", "k":
		m.picker.Move(-1, 0)
	case "down", "j":
		m.picker.Move(1, 0)
	case "left", "h":
		m.picker.Move(0, -1)
	case "right", "l":
		m.picker.Move(0, 1)
	case " ", "x":
		if err := m.picker.Toggle(); err != nil {
			m.fail("select seat", err)
		} else {
			m.setInfo("")
		}
	case "enter":
		return m.addSelection()
	}
	return m, nil
}

// addSelection puts the picked seats in the cart, replacing any earlier
// pick for the same performance. An empty pick removes the line.
func (m Model) addSelection() (tea.Model, tea.Cmd) {
	d := m.pickerShow
	seats := m.picker.Selected()
	if len(seats) == 0 {
		m.app.Cart.RemoveShowtimeSelection(d.ShowTime.ID)
		m.setInfo("Removed " + d.Show.Title + " from the cart")
	} else {
		err := m.app.Cart.AddShowtimeSelection(cart.ShowtimeLine{
			ShowTimeID:   d.ShowTime.ID,
			ShowID:       d.Show.ID,
			ShowTitle:    d.Show.Title,
			ShowDate:     d.ShowTime.ShowDate,
			StartTime:    d.ShowTime.StartTime,
			Seats:        seats,
			PricePerSeat: d.ShowTime.Price,
		})
		if err != nil {
			m.fail("add to cart", err)
			return m, nil
		}
		m.setInfo(fmt.Sprintf("Added %d seat(s) for %s: %s", len(seats), d.Show.Title, strings.Join(model.SeatCodes(seats), ", ")))
	}
	m.mode = m.back
	m.picker, m.pickerShow = nil, nil
	return m, m.refreshCart()
}

func (m *Model) updateProducts(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch msg.String() {
	case "enter", " ", "+":
		it, ok := m.products.SelectedItem().(productItem)
		if !ok {
			return nil, true
		}
		err := m.app.Cart.AddProduct(cart.ProductLine{ProductID: it.p.ID, Name: it.p.Name, Price: it.p.Price, Quantity: 1})
		if err != nil {
			m.fail("add product", err)
			return nil, true
		}
		m.setInfo("Added " + it.p.Name)
		return m.refreshCart(), true
	}
	return nil, false
}

func (m *Model) updateCart(msg tea.KeyMsg) (tea.Cmd, bool) {
	it, _ := m.cart.SelectedItem().(cartItem)
	switch msg.String() {
	case "+", "=":
		if it.product != nil {
			m.app.Cart.SetProductQuantity(it.product.ProductID, it.product.Quantity+1)
		}
		return m.refreshCart(), true
	case "-":
		if it.product != nil {
			m.app.Cart.SetProductQuantity(it.product.ProductID, it.product.Quantity-1)
		}
		return m.refreshCart(), true
	case "x", "delete", "backspace":
		switch {
		case it.showTime != nil:
			m.app.Cart.RemoveShowtimeSelection(it.showTime.ShowTimeID)
		case it.product != nil:
			m.app.Cart.RemoveProduct(it.product.ProductID)
		}
		return m.refreshCart(), true
	case "c":
		if m.busy {
			return nil, true
		}
		if m.app.CurrentUser() == nil {
			m.setError("Please log in to check out (press l).")
			return nil, true
		}
		m.busy = true
		m.setInfo("Booking…")
		return checkoutCmd(m.app), true
	}
	return nil, false
}

func (m Model) updateLogin(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = m.back
		return m, nil
	case "ctrl+r":
		m.login = newLoginForm(!m.login.register)
		return m, nil
	case "tab", "down":
		m.login.next()
		return m, nil
	case "enter":
		if m.login.register {
			return m, registerCmd(m.app, session.RegisterInput{
				Username: m.login.value(fieldUsername),
				Password: m.login.password(),
				Email:    m.login.value(fieldEmail),
			})
		}
		return m, loginCmd(m.app, m.login.value(fieldUsername), m.login.password())
	}
	return m, m.login.update(msg)
}

func (m Model) View() string {
	var body string
	switch m.mode {
	case ModeShows:
		body = m.shows.View()
	case ModeProducts:
		body = m.products.View()
	case ModeCart:
		body = m.cart.View() + "\n" + titleStyle.Render("Total "+model.FormatPrice(m.app.Cart.TotalPrice()))
	case ModeBookings:
		if m.app.CurrentUser() == nil {
			body = mutedStyle.Render("Log in to see your bookings (press l).")
		} else {
			body = m.bookings.View()
		}
	case ModeSeats:
		d := m.pickerShow
		head := titleStyle.Render(fmt.Sprintf("%s  %s %s  %s per seat",
			d.Show.Title, d.ShowTime.ShowDate, d.ShowTime.StartTime, model.FormatPrice(d.ShowTime.Price)))
		body = lipgloss.JoinVertical(lipgloss.Left, head, "", m.picker.View())
	case ModeLogin:
		body = lipgloss.Place(m.width, max(m.height-6, 0), lipgloss.Center, lipgloss.Center, m.login.view())
	}
	return lipgloss.JoinVertical(lipgloss.Left, m.header(), body, m.statusLine(), m.help())
}

func (m Model) header() string {
	var parts []string
	for _, t := range tabs {
		style := inactiveTabStyle
		if t.mode == m.mode || (m.mode == ModeSeats && t.mode == ModeShows) {
			style = activeTabStyle
		}
		name := t.name
		if t.mode == ModeCart && m.app.Cart.ItemCount() > 0 {
			name = fmt.Sprintf("%s (%d)", name, m.app.Cart.ItemCount())
		}
		parts = append(parts, style.Render(name))
	}
	who := mutedStyle.Render("not logged in")
	if u := m.app.CurrentUser(); u != nil {
		who = infoStyle.Render(u.Username)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, append(parts, "  ", who)...) + "\n"
}

func (m Model) statusLine() string {
	if m.status == "" {
		return ""
	}
	if m.statusErr {
		return errorStyle.Render(m.status)
	}
	return successStyle.Render(m.status)
}

func (m Model) help() string {
	switch m.mode {
	case ModeShows:
		return helpLine("enter", "pick seats", "d", "date: "+m.dateLabel(), "tab", "next tab", "l", "login/logout", "q", "quit")
	case ModeSeats:
		return helpLine("arrows", "move", "space", "select", "enter", "add to cart", "esc", "back")
	case ModeProducts:
		return helpLine("enter", "add one", "tab", "next tab", "q", "quit")
	case ModeCart:
		return helpLine("+/-", "quantity", "x", "remove", "c", "checkout", "tab", "next tab", "q", "quit")
	case ModeBookings:
		return helpLine("r", "refresh", "tab", "next tab", "q", "quit")
	}
	return ""
}
