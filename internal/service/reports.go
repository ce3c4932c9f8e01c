package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/iliyamo/theatre-booking/internal/document"
	"github.com/iliyamo/theatre-booking/internal/model"
	"github.com/iliyamo/theatre-booking/internal/repository"
)

// ReportService builds sales reports and audit log extracts over
// inclusive calendar date ranges.
type ReportService struct {
	reports *repository.ReportRepo
	logs    *repository.LogRepo
}

func NewReportService(db *sql.DB) *ReportService {
	return &ReportService{
		reports: repository.NewReportRepo(db),
		logs:    repository.NewLogRepo(db),
	}
}

// dayBounds turns the inclusive range [start, end] into the half-open
// timestamp range [start 00:00:00, end+1 00:00:00).
func dayBounds(start, end string) (string, string, error) {
	s, err := time.Parse(model.DateLayout, start)
	if err != nil {
		return "", "", model.Invalid("start_date", "must be YYYY-MM-DD")
	}
	e, err := time.Parse(model.DateLayout, end)
	if err != nil {
		return "", "", model.Invalid("end_date", "must be YYYY-MM-DD")
	}
	if e.Before(s) {
		return "", "", model.Invalid("end_date", "must not be before start_date")
	}
	return s.Format(model.TimestampLayout), e.AddDate(0, 0, 1).Format(model.TimestampLayout), nil
}

// Sales reports revenue, bookings and tickets sold between start and
// end inclusive, broken down by show (highest revenue first) and by day
// (latest first).
func (r *ReportService) Sales(ctx context.Context, start, end string) (*model.SalesReport, error) {
	from, to, err := dayBounds(start, end)
	if err != nil {
		return nil, err
	}
	totals, err := r.reports.Totals(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("sales totals: %w", err)
	}
	byShow, err := r.reports.ByShow(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("sales by show: %w", err)
	}
	byDate, err := r.reports.ByDate(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("sales by date: %w", err)
	}
	return &model.SalesReport{StartDate: start, EndDate: end, Totals: totals, ByShow: byShow, ByDate: byDate}, nil
}

// Logs returns audit entries between start and end inclusive, newest
// first.
func (r *ReportService) Logs(ctx context.Context, start, end string) ([]model.LogEntryDetail, error) {
	from, to, err := dayBounds(start, end)
	if err != nil {
		return nil, err
	}
	entries, err := r.logs.ListBetween(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("list logs: %w", err)
	}
	return entries, nil
}

// SalesRecord converts a report for the document generator.
func SalesRecord(rep *model.SalesReport) document.SalesReportRecord {
	rec := document.SalesReportRecord{
		StartDate:     rep.StartDate,
		EndDate:       rep.EndDate,
		TotalSales:    rep.Totals.Revenue,
		TotalBookings: rep.Totals.Bookings,
		TotalTickets:  rep.Totals.Tickets,
		Shows:         make([]document.ShowLine, len(rep.ByShow)),
		Days:          make([]document.DayLine, len(rep.ByDate)),
	}
	for i, s := range rep.ByShow {
		rec.Shows[i] = document.ShowLine{Title: s.Title, Tickets: s.Tickets, Revenue: s.Revenue}
	}
	for i, d := range rep.ByDate {
		rec.Days[i] = document.DayLine{Date: d.Date, Bookings: d.Bookings, Revenue: d.Revenue}
	}
	return rec
}

// LogRecord converts audit entries for the document generator.
func LogRecord(start, end string, entries []model.LogEntryDetail) document.LogExportRecord {
	rec := document.LogExportRecord{StartDate: start, EndDate: end, Entries: make([]document.LogLine, len(entries))}
	for i, e := range entries {
		rec.Entries[i] = document.LogLine{
			ID:        e.ID,
			Action:    e.Action,
			Details:   e.Details,
			Username:  e.Username,
			Timestamp: e.CreatedAt.UTC().Format(model.TimestampLayout),
		}
	}
	return rec
}
