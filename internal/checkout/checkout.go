// Package checkout converts a cart into persisted bookings. Every
// booking, seat reservation, order item and the audit entry of one
// checkout commit together or not at all.
package checkout

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/iliyamo/theatre-booking/internal/cart"
	"github.com/iliyamo/theatre-booking/internal/document"
	"github.com/iliyamo/theatre-booking/internal/model"
	"github.com/iliyamo/theatre-booking/internal/queue"
)

// BookingStore inserts bookings.
type BookingStore interface {
	CreateTx(ctx context.Context, tx *sql.Tx, b *model.Booking) error
}

// SeatingStore reads and writes showtime seating maps.
type SeatingStore interface {
	GetSeatingMapTx(ctx context.Context, tx *sql.Tx, showTimeID uint64) (model.SeatingMap, error)
	SaveSeatingMapTx(ctx context.Context, tx *sql.Tx, showTimeID uint64, m model.SeatingMap) error
}

// OrderItemStore inserts concession lines.
type OrderItemStore interface {
	CreateBulkTx(ctx context.Context, tx *sql.Tx, items []model.OrderItem) error
}

// AuditLog appends to the system log.
type AuditLog interface {
	AppendTx(ctx context.Context, tx *sql.Tx, e *model.LogEntry) error
}

// Publisher receives one event per committed booking.
type Publisher interface {
	Publish(ctx context.Context, ev queue.BookingConfirmedEvent) error
}

// Saver persists rendered documents.
type Saver interface {
	Save(doc document.Document) (string, error)
}

// Deps wires a Service. DB, Bookings, Seating, OrderItems and Audit are
// required; the rest are optional post-commit collaborators.
type Deps struct {
	DB         *sql.DB
	Bookings   BookingStore
	Seating    SeatingStore
	OrderItems OrderItemStore
	Audit      AuditLog

	Journal   Publisher
	Documents document.Generator
	Exporter  Saver

	Now          func() time.Time
	NewReference func() string
}

// Service runs checkouts.
type Service struct {
	d Deps
}

// New returns a Service using d, defaulting the clock and reference
// generator.
func New(d Deps) *Service {
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.NewReference == nil {
		d.NewReference = uuid.NewString
	}
	return &Service{d: d}
}

// Result describes a committed checkout. Total is what the cart came
// to; each booking's TotalPrice covers its seats only.
type Result struct {
	Reference   string
	Bookings    []model.Booking
	Total       decimal.Decimal
	Tickets     []document.Document
	TicketPaths []string
}

// Checkout books every showtime line in c for user. Each line becomes
// one booking; every concession line is attached to each booking. A
// seat that is no longer available fails the whole checkout with
// model.ErrSeatAlreadyReserved or model.ErrSeatNotBookable. On any
// failure nothing is persisted and the cart is left as it was; on
// success the cart is cleared.
func (s *Service) Checkout(ctx context.Context, user *model.SessionUser, c *cart.Cart) (*Result, error) {
	if user == nil {
		return nil, model.ErrAuthenticationRequired
	}
	items := c.Items()
	if len(items) == 0 {
		return nil, model.ErrEmptyCart
	}
	products := c.Products()
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Subtotal())
	}
	for _, p := range products {
		total = total.Add(p.Subtotal())
	}

	now := s.d.Now().UTC()
	ref := s.d.NewReference()

	bookings, err := s.commit(ctx, user, items, products, now, ref)
	if err != nil {
		log.Printf("checkout: ref=%s user=%d failed: %v", ref, user.ID, err)
		return nil, err
	}

	c.Clear()

	res := &Result{Reference: ref, Bookings: bookings, Total: total}
	s.afterCommit(ctx, user, items, bookings, ref, now, res)
	return res, nil
}

func (s *Service) commit(ctx context.Context, user *model.SessionUser, items []cart.ShowtimeLine,
	products []cart.ProductLine, now time.Time, ref string) ([]model.Booking, error) {
	tx, err := s.d.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("checkout: begin: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	bookings := make([]model.Booking, 0, len(items))
	for _, it := range items {
		b := model.Booking{
			UserID:     user.ID,
			ShowTimeID: it.ShowTimeID,
			Seats:      it.Seats,
			TotalPrice: it.Subtotal(),
			Status:     model.BookingConfirmed,
			CreatedAt:  now,
		}
		if err := s.d.Bookings.CreateTx(ctx, tx, &b); err != nil {
			return nil, fmt.Errorf("checkout: create booking: %w", err)
		}

		grid, err := s.d.Seating.GetSeatingMapTx(ctx, tx, it.ShowTimeID)
		if err != nil {
			return nil, fmt.Errorf("checkout: load seating: %w", err)
		}
		updated, err := grid.Reserve(it.Seats)
		if err != nil {
			return nil, fmt.Errorf("checkout: showtime %d: %w", it.ShowTimeID, err)
		}
		if err := s.d.Seating.SaveSeatingMapTx(ctx, tx, it.ShowTimeID, updated); err != nil {
			return nil, fmt.Errorf("checkout: save seating: %w", err)
		}

		if len(products) > 0 {
			lines := make([]model.OrderItem, len(products))
			for i, p := range products {
				id := b.ID
				lines[i] = model.OrderItem{BookingID: &id, ProductID: p.ProductID, Quantity: p.Quantity}
			}
			if err := s.d.OrderItems.CreateBulkTx(ctx, tx, lines); err != nil {
				return nil, fmt.Errorf("checkout: order items: %w", err)
			}
		}
		bookings = append(bookings, b)
	}

	ids := make([]string, len(bookings))
	for i, b := range bookings {
		ids[i] = strconv.FormatUint(b.ID, 10)
	}
	uid := user.ID
	entry := &model.LogEntry{
		Action:    model.ActionBookingCreated,
		Details:   fmt.Sprintf("User %s created booking(s): %s (ref %s)", user.Username, strings.Join(ids, ", "), ref),
		UserID:    &uid,
		CreatedAt: now,
	}
	if err := s.d.Audit.AppendTx(ctx, tx, entry); err != nil {
		return nil, fmt.Errorf("checkout: audit: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("checkout: commit: %w", err)
	}
	committed = true
	return bookings, nil
}

// afterCommit publishes journal events and renders one ticket per
// booking. Failures here are logged only: the bookings are committed.
func (s *Service) afterCommit(ctx context.Context, user *model.SessionUser, items []cart.ShowtimeLine,
	bookings []model.Booking, ref string, now time.Time, res *Result) {
	for i, b := range bookings {
		it := items[i]
		codes := model.SeatCodes(b.Seats)

		if s.d.Journal != nil {
			ev := queue.BookingConfirmedEvent{
				BookingID:   b.ID,
				Reference:   ref,
				UserID:      user.ID,
				Username:    user.Username,
				ShowTimeID:  b.ShowTimeID,
				ShowTitle:   it.ShowTitle,
				ShowDate:    it.ShowDate,
				StartTime:   it.StartTime,
				SeatLabels:  codes,
				Total:       b.TotalPrice.StringFixed(2),
				ConfirmedAt: now.Format(model.TimestampLayout),
			}
			if err := s.d.Journal.Publish(ctx, ev); err != nil {
				log.Printf("checkout: journal booking %d: %v", b.ID, err)
			}
		}

		if s.d.Documents == nil {
			continue
		}
		doc, err := s.d.Documents.Ticket(document.TicketRecord{
			BookingID:    b.ID,
			ShowTitle:    it.ShowTitle,
			ShowDate:     it.ShowDate,
			StartTime:    it.StartTime,
			Seats:        codes,
			CustomerName: user.Username,
			TotalPrice:   b.TotalPrice,
		})
		if err != nil {
			log.Printf("checkout: ticket for booking %d: %v", b.ID, err)
			continue
		}
		res.Tickets = append(res.Tickets, doc)
		if s.d.Exporter == nil {
			continue
		}
		path, err := s.d.Exporter.Save(doc)
		if err != nil {
			log.Printf("checkout: save ticket for booking %d: %v", b.ID, err)
			continue
		}
		res.TicketPaths = append(res.TicketPaths, path)
	}
}
