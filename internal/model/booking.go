package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Booking statuses. Checkout only ever writes confirmed bookings.
const (
	BookingConfirmed = "confirmed"
)

// Booking records seats bought for one showtime. TotalPrice is the
// snapshot of seats x price at the moment of checkout and does not
// follow later price edits.
type Booking struct {
	ID         uint64          // bookings.id
	UserID     uint64          // bookings.user_id
	ShowTimeID uint64          // bookings.show_time_id
	Seats      []Seat          // bookings.seats (JSON)
	TotalPrice decimal.Decimal // bookings.total_cents
	Status     string          // bookings.status
	CreatedAt  time.Time       // bookings.created_at
}

// SeatCount is the number of tickets in the booking.
func (b *Booking) SeatCount() int { return len(b.Seats) }

// BookingDetail is a booking joined with the show and performance it
// is for. It backs the customer's booking history.
type BookingDetail struct {
	Booking
	ShowTitle string
	ShowDate  string
	StartTime string
}

// OrderItem attaches a quantity of a product to a booking. BookingID is
// nullable in storage; checkout always sets it.
type OrderItem struct {
	ID        uint64  // order_items.id
	BookingID *uint64 // order_items.booking_id (nullable)
	ProductID uint64  // order_items.product_id
	Quantity  int     // order_items.quantity
}

// SalesTotals aggregates bookings over a date range.
type SalesTotals struct {
	Revenue  decimal.Decimal
	Bookings int
	Tickets  int
}

// ShowSales is the revenue attributed to one show.
type ShowSales struct {
	Title    string
	Bookings int
	Tickets  int
	Revenue  decimal.Decimal
}

// DailySales is the revenue of one calendar day (YYYY-MM-DD).
type DailySales struct {
	Date     string
	Bookings int
	Tickets  int
	Revenue  decimal.Decimal
}

// SalesReport is the full report for an inclusive date range.
type SalesReport struct {
	StartDate string
	EndDate   string
	Totals    SalesTotals
	ByShow    []ShowSales
	ByDate    []DailySales
}
