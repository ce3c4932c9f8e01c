// Package queue carries booking-confirmed events from checkout to the
// booking journal through an in-process buffered queue.
package queue

// BookingConfirmedEvent is published once per booking after the
// checkout transaction commits. It holds everything the journal line
// needs so the consumer never queries the store.
type BookingConfirmedEvent struct {
	BookingID   uint64   `json:"booking_id"`
	Reference   string   `json:"reference"`
	UserID      uint64   `json:"user_id"`
	Username    string   `json:"username"`
	ShowTimeID  uint64   `json:"show_time_id"`
	ShowTitle   string   `json:"show_title"`
	ShowDate    string   `json:"show_date"`
	StartTime   string   `json:"start_time"`
	SeatLabels  []string `json:"seats"`
	Total       string   `json:"total"`
	ConfirmedAt string   `json:"confirmed_at"`
}
