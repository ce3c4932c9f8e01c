package document

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/muesli/termenv"
)

// DefaultVenue is printed at the top of every ticket.
const DefaultVenue = "Cineverse Theatre"

// TextGenerator renders plain-text documents. Styles go through an
// ASCII-profile renderer, so output never carries terminal escape codes
// regardless of where the process runs.
type TextGenerator struct {
	Venue string
	Now   func() time.Time
}

// NewTextGenerator returns a generator for the given venue name.
func NewTextGenerator(venue string) *TextGenerator {
	if venue == "" {
		venue = DefaultVenue
	}
	return &TextGenerator{Venue: venue, Now: time.Now}
}

func (g *TextGenerator) renderer() *lipgloss.Renderer {
	r := lipgloss.NewRenderer(&bytes.Buffer{})
	r.SetColorProfile(termenv.Ascii)
	return r
}

func (g *TextGenerator) stamp() string {
	now := time.Now
	if g.Now != nil {
		now = g.Now
	}
	return now().UTC().Format("2006-01-02 15:04:05") + " UTC"
}

// Ticket renders one booking as a boxed ticket.
func (g *TextGenerator) Ticket(r TicketRecord) (Document, error) {
	if r.BookingID == 0 {
		return Document{}, fmt.Errorf("ticket: missing booking id")
	}
	re := g.renderer()
	title := re.NewStyle().Bold(true).Align(lipgloss.Center).Width(44)
	label := re.NewStyle().Width(12)

	row := func(k, v string) string {
		return lipgloss.JoinHorizontal(lipgloss.Top, label.Render(k), v)
	}
	body := lipgloss.JoinVertical(lipgloss.Left,
		title.Render(g.Venue),
		title.Render("ADMIT "+strconv.Itoa(len(r.Seats))),
		"",
		row("Booking", fmt.Sprintf("#%d", r.BookingID)),
		row("Show", r.ShowTitle),
		row("Date", r.ShowDate),
		row("Time", r.StartTime),
		row("Seats", strings.Join(r.Seats, ", ")),
		row("Customer", r.CustomerName),
		row("Total", "$"+r.TotalPrice.StringFixed(2)),
		"",
		re.NewStyle().Faint(true).Render("Issued "+g.stamp()),
	)
	box := re.NewStyle().Border(lipgloss.DoubleBorder()).Padding(1, 2)
	return Document{
		Name: fmt.Sprintf("ticket-%d.txt", r.BookingID),
		Body: []byte(box.Render(body) + "\n"),
	}, nil
}

// SalesReport renders totals followed by per-show and per-day tables.
func (g *TextGenerator) SalesReport(r SalesReportRecord) (Document, error) {
	re := g.renderer()
	h := re.NewStyle().Bold(true)

	var b strings.Builder
	b.WriteString(h.Render(g.Venue+" Sales Report") + "\n")
	fmt.Fprintf(&b, "Period: %s to %s\n", r.StartDate, r.EndDate)
	fmt.Fprintf(&b, "Generated: %s\n\n", g.stamp())
	fmt.Fprintf(&b, "Total sales:    $%s\n", r.TotalSales.StringFixed(2))
	fmt.Fprintf(&b, "Total bookings: %d\n", r.TotalBookings)
	fmt.Fprintf(&b, "Total tickets:  %d\n\n", r.TotalTickets)

	b.WriteString(h.Render("Sales by show") + "\n")
	shows := g.table(re, "Show", "Tickets", "Revenue")
	for _, s := range r.Shows {
		shows.Row(s.Title, strconv.Itoa(s.Tickets), "$"+s.Revenue.StringFixed(2))
	}
	b.WriteString(shows.Render() + "\n\n")

	if len(r.Days) > 0 {
		b.WriteString(h.Render("Sales by date") + "\n")
		days := g.table(re, "Date", "Bookings", "Revenue")
		for _, d := range r.Days {
			days.Row(d.Date, strconv.Itoa(d.Bookings), "$"+d.Revenue.StringFixed(2))
		}
		b.WriteString(days.Render() + "\n")
	}

	return Document{
		Name: fmt.Sprintf("sales-report-%s-to-%s.txt", r.StartDate, r.EndDate),
		Body: []byte(b.String()),
	}, nil
}

// LogExport renders audit entries newest first, as given.
func (g *TextGenerator) LogExport(r LogExportRecord) (Document, error) {
	re := g.renderer()
	var b strings.Builder
	b.WriteString(re.NewStyle().Bold(true).Render(g.Venue+" System Logs") + "\n")
	fmt.Fprintf(&b, "Period: %s to %s\n", r.StartDate, r.EndDate)
	fmt.Fprintf(&b, "Entries: %d\n\n", len(r.Entries))

	t := g.table(re, "ID", "Timestamp", "User", "Action", "Details")
	for _, e := range r.Entries {
		t.Row(strconv.FormatUint(e.ID, 10), e.Timestamp, e.Username, e.Action, e.Details)
	}
	b.WriteString(t.Render() + "\n")

	return Document{
		Name: fmt.Sprintf("system-logs-%s-to-%s.txt", r.StartDate, r.EndDate),
		Body: []byte(b.String()),
	}, nil
}

func (g *TextGenerator) table(re *lipgloss.Renderer, headers ...string) *table.Table {
	cell := re.NewStyle().Padding(0, 1)
	head := cell.Bold(true)
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(re.NewStyle()).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return head
			}
			return cell
		})
}
