package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Show is a production that can be scheduled any number of times.
// DurationMin must be positive. Poster is an optional image path.
type Show struct {
	ID          uint64    // shows.id
	Title       string    // shows.title
	Description string    // shows.description
	Poster      *string   // shows.poster (nullable)
	DurationMin int       // shows.duration
	CreatedAt   time.Time // shows.created_at
}

// ShowTime is one scheduled performance of a show. ShowDate uses the
// YYYY-MM-DD form and StartTime the HH:MM form, both as plain text so
// that ordering by string matches ordering by time. The seating map is
// created together with the showtime and keeps its dimensions for life.
type ShowTime struct {
	ID         uint64          // show_times.id
	ShowID     uint64          // show_times.show_id
	ShowDate   string          // show_times.show_date
	StartTime  string          // show_times.start_time
	Price      decimal.Decimal // show_times.price_cents
	SeatingMap SeatingMap      // show_times.seating_map
	CreatedAt  time.Time       // show_times.created_at
}

// ShowWithTimes groups a show with its scheduled performances, ordered
// by date and then start time.
type ShowWithTimes struct {
	Show      Show
	ShowTimes []ShowTime
}

// ShowSummary is a show together with the number of performances
// scheduled for it. It backs the administrative show list.
type ShowSummary struct {
	Show          Show
	ShowTimeCount int
}

// ShowTimeDetail joins a showtime with the show it belongs to.
type ShowTimeDetail struct {
	Show     Show
	ShowTime ShowTime
}

// DateLayout and TimeLayout are the layouts of ShowDate and StartTime.
const (
	DateLayout      = "2006-01-02"
	TimeLayout      = "15:04"
	TimestampLayout = "2006-01-02 15:04:05"
)
