package queue

import (
	"context"
	"errors"
	"sync"
)

// ErrClosed is returned by Publish after Close.
var ErrClosed = errors.New("booking journal closed")

// Journal is an append-only log of confirmed bookings. Publish enqueues
// an event; a single consumer goroutine writes events in order.
type Journal struct {
	path   string
	events chan BookingConfirmedEvent
	done   chan struct{}

	mu     sync.RWMutex
	closed bool
}

// NewJournal starts a journal writing to path with room for buffer
// pending events.
func NewJournal(path string, buffer int) *Journal {
	if buffer <= 0 {
		buffer = 64
	}
	j := &Journal{
		path:   path,
		events: make(chan BookingConfirmedEvent, buffer),
		done:   make(chan struct{}),
	}
	go j.consume()
	return j
}

// Path is the journal file.
func (j *Journal) Path() string { return j.path }

// Publish enqueues ev. It blocks only while the buffer is full, and
// gives up when ctx is done.
func (j *Journal) Publish(ctx context.Context, ev BookingConfirmedEvent) error {
	j.mu.RLock()
	defer j.mu.RUnlock()
	if j.closed {
		return ErrClosed
	}
	select {
	case j.events <- ev:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting events and waits until every queued event has
// been written.
func (j *Journal) Close() error {
	j.mu.Lock()
	if !j.closed {
		j.closed = true
		close(j.events)
	}
	j.mu.Unlock()
	<-j.done
	return nil
}
