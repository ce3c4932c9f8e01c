// Package document turns tickets, sales reports and audit logs into
// printable documents and saves them to disk.
package document

import "github.com/shopspring/decimal"

// TicketRecord is the printable proof of one booking.
type TicketRecord struct {
	BookingID    uint64
	ShowTitle    string
	ShowDate     string
	StartTime    string
	Seats        []string
	CustomerName string
	TotalPrice   decimal.Decimal
}

// ShowLine is one row of the per-show section of a sales report.
type ShowLine struct {
	Title   string
	Tickets int
	Revenue decimal.Decimal
}

// DayLine is one row of the per-day section of a sales report.
type DayLine struct {
	Date     string
	Bookings int
	Revenue  decimal.Decimal
}

// SalesReportRecord summarises sales over an inclusive date range.
type SalesReportRecord struct {
	StartDate     string
	EndDate       string
	TotalSales    decimal.Decimal
	TotalBookings int
	TotalTickets  int
	Shows         []ShowLine
	Days          []DayLine
}

// LogLine is one exported audit entry.
type LogLine struct {
	ID        uint64
	Action    string
	Details   string
	Username  string
	Timestamp string
}

// LogExportRecord is an export of the audit log for a date range.
type LogExportRecord struct {
	StartDate string
	EndDate   string
	Entries   []LogLine
}

// Document is a rendered file ready to be saved or shown.
type Document struct {
	Name string
	Body []byte
}

// Generator renders records into documents.
type Generator interface {
	Ticket(TicketRecord) (Document, error)
	SalesReport(SalesReportRecord) (Document, error)
	LogExport(LogExportRecord) (Document, error)
}
