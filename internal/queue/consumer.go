package queue

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
)

// consume drains events until the channel is closed, appending one line
// per event to the journal file. A failed write is logged and the event
// dropped; the booking it describes is already committed.
func (j *Journal) consume() {
	defer close(j.done)
	for ev := range j.events {
		if err := appendLine(j.path, ev); err != nil {
			log.Printf("booking-journal: write failed: %v", err)
		}
	}
}

func appendLine(path string, ev BookingConfirmedEvent) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(FormatLine(ev)); err != nil {
		return fmt.Errorf("write journal: %w", err)
	}
	return nil
}

// FormatLine renders ev as a single journal line ending in a newline.
func FormatLine(ev BookingConfirmedEvent) string {
	seats := "[]"
	if len(ev.SeatLabels) > 0 {
		seats = fmt.Sprintf("[%s]", strings.Join(ev.SeatLabels, ","))
	}
	return fmt.Sprintf("[%s] Booking confirmed | booking_id=%d | ref=%s | user_id=%d | user=%q | show=%q | date=%s | time=%s | total=%s | seats=%s\n",
		ev.ConfirmedAt, ev.BookingID, ev.Reference, ev.UserID, ev.Username, ev.ShowTitle, ev.ShowDate, ev.StartTime, ev.Total, seats)
}
