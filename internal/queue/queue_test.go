package queue

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleEvent(id uint64) BookingConfirmedEvent {
	return BookingConfirmedEvent{
		BookingID:   id,
		Reference:   "ref-1",
		UserID:      2,
		Username:    "ana",
		ShowTimeID:  3,
		ShowTitle:   "Love in Paris",
		ShowDate:    "2024-01-05",
		StartTime:   "16:30",
		SeatLabels:  []string{"A1", "A2"},
		Total:       "25.98",
		ConfirmedAt: "2024-01-05 10:00:00",
	}
}

func TestFormatLine(t *testing.T) {
	got := FormatLine(sampleEvent(9))
	want := `[2024-01-05 10:00:00] Booking confirmed | booking_id=9 | ref=ref-1 | user_id=2 | user="ana" | show="Love in Paris" | date=2024-01-05 | time=16:30 | total=25.98 | seats=[A1,A2]` + "\n"
	assert.Equal(t, want, got)

	ev := sampleEvent(1)
	ev.SeatLabels = nil
	assert.Contains(t, FormatLine(ev), "seats=[]")
}

func TestJournalWritesInOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "booking.log")
	j := NewJournal(path, 2)

	for i := 1; i <= 10; i++ {
		require.NoError(t, j.Publish(context.Background(), sampleEvent(uint64(i))))
	}
	require.NoError(t, j.Close())

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	require.Len(t, lines, 10)
	for i, l := range lines {
		assert.Contains(t, l, fmt.Sprintf("booking_id=%d ", i+1))
	}
}

func TestPublishAfterClose(t *testing.T) {
	j := NewJournal(filepath.Join(t.TempDir(), "booking.log"), 1)
	require.NoError(t, j.Close())
	require.NoError(t, j.Close())
	assert.ErrorIs(t, j.Publish(context.Background(), sampleEvent(1)), ErrClosed)
}
