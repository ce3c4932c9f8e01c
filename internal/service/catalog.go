// Package service holds the read-side catalogue and reporting queries
// and the administrative show management used by the CLI and TUI.
package service

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	"github.com/iliyamo/theatre-booking/internal/model"
	"github.com/iliyamo/theatre-booking/internal/repository"
)

// AllDates disables the date filter of ListShows.
const AllDates = "all"

// ShowListing is what the browse screen shows: every show with its
// performances plus the distinct performance dates, ascending.
type ShowListing struct {
	Shows []model.ShowWithTimes
	Dates []string
}

// CatalogService answers customer-facing read queries.
type CatalogService struct {
	shows     *repository.ShowRepo
	showTimes *repository.ShowTimeRepo
	products  *repository.ProductRepo
	bookings  *repository.BookingRepo
}

func NewCatalogService(db *sql.DB) *CatalogService {
	return &CatalogService{
		shows:     repository.NewShowRepo(db),
		showTimes: repository.NewShowTimeRepo(db),
		products:  repository.NewProductRepo(db),
		bookings:  repository.NewBookingRepo(db),
	}
}

// ListShows returns shows ordered by title with their showtimes
// ordered by date and start time. With a date other than AllDates (or
// empty) only that day's showtimes are kept and shows without one are
// dropped. Dates always lists every scheduled day.
func (s *CatalogService) ListShows(ctx context.Context, date string) (ShowListing, error) {
	if date != "" && date != AllDates {
		if _, err := time.Parse(model.DateLayout, date); err != nil {
			return ShowListing{}, model.Invalid("date", "must be YYYY-MM-DD")
		}
	}
	shows, err := s.shows.List(ctx)
	if err != nil {
		return ShowListing{}, fmt.Errorf("list shows: %w", err)
	}
	times, err := s.showTimes.ListAll(ctx)
	if err != nil {
		return ShowListing{}, fmt.Errorf("list showtimes: %w", err)
	}

	byShow := make(map[uint64][]model.ShowTime, len(shows))
	seen := make(map[string]struct{})
	dates := make([]string, 0)
	for _, st := range times {
		if _, ok := seen[st.ShowDate]; !ok {
			seen[st.ShowDate] = struct{}{}
			dates = append(dates, st.ShowDate)
		}
		if date != "" && date != AllDates && st.ShowDate != date {
			continue
		}
		byShow[st.ShowID] = append(byShow[st.ShowID], st)
	}
	sort.Strings(dates)

	out := ShowListing{Shows: make([]model.ShowWithTimes, 0, len(shows)), Dates: dates}
	for _, sh := range shows {
		sts := byShow[sh.ID]
		if len(sts) == 0 && date != "" && date != AllDates {
			continue
		}
		if sts == nil {
			sts = []model.ShowTime{}
		}
		out.Shows = append(out.Shows, model.ShowWithTimes{Show: sh, ShowTimes: sts})
	}
	return out, nil
}

// GetShowTime loads one performance with its show and current seating
// map.
func (s *CatalogService) GetShowTime(ctx context.Context, id uint64) (*model.ShowTimeDetail, error) {
	st, err := s.showTimes.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	sh, err := s.shows.GetByID(ctx, st.ShowID)
	if err != nil {
		return nil, err
	}
	return &model.ShowTimeDetail{Show: *sh, ShowTime: *st}, nil
}

func (s *CatalogService) ListProducts(ctx context.Context) ([]model.Product, error) {
	return s.products.List(ctx)
}

// ListUserBookings returns the user's bookings, newest first.
func (s *CatalogService) ListUserBookings(ctx context.Context, userID uint64) ([]model.BookingDetail, error) {
	return s.bookings.ListByUser(ctx, userID)
}

func (s *CatalogService) GetProduct(ctx context.Context, id uint64) (*model.Product, error) {
	return s.products.GetByID(ctx, id)
}
