package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/theatre-booking/internal/model"
	"github.com/iliyamo/theatre-booking/internal/repository"
	"github.com/iliyamo/theatre-booking/internal/utils"
)

// SeedOptions controls the bootstrap data.
type SeedOptions struct {
	AdminPassword string
	BcryptCost    int
	// Now anchors created_at values and the "today" of the seeded
	// showtimes. Zero means time.Now.
	Now time.Time
}

type seedShow struct {
	title, description, poster string
	duration                   int
}

var seedShows = []seedShow{
	{"The Phantom Menace", "An epic space saga about a young hero's journey to save the galaxy.", "/images/phantom_menace.jpg", 136},
	{"Love in Paris", "A romantic comedy about finding love in the city of lights.", "/images/love_paris.jpg", 118},
	{"The Last Detective", "A gripping mystery thriller with unexpected twists.", "/images/last_detective.jpg", 142},
}

type seedProduct struct {
	name  string
	typ   model.ProductType
	price string
}

var seedProducts = []seedProduct{
	{"Large Popcorn", model.ProductSnack, "8.99"},
	{"Medium Popcorn", model.ProductSnack, "6.99"},
	{"Small Popcorn", model.ProductSnack, "4.99"},
	{"Large Soda", model.ProductDrink, "5.99"},
	{"Medium Soda", model.ProductDrink, "4.99"},
	{"Small Soda", model.ProductDrink, "3.99"},
	{"Chocolate Bar", model.ProductSnack, "3.99"},
	{"Nachos", model.ProductSnack, "7.99"},
	{"Hot Dog", model.ProductSnack, "6.99"},
	{"Water Bottle", model.ProductDrink, "2.99"},
}

// seedSlot schedules show (index into seedShows) dayOffset days from
// today.
type seedSlot struct {
	show      int
	dayOffset int
	start     string
	price     string
}

var seedSlots = []seedSlot{
	{0, 0, "14:00", "12.99"},
	{0, 0, "19:30", "14.99"},
	{1, 0, "16:30", "12.99"},
	{1, 1, "18:00", "14.99"},
	{2, 1, "20:30", "14.99"},
	{2, 2, "15:00", "12.99"},
}

// Seed loads the bootstrap catalogue into an empty store: one admin
// account, three shows, ten products and six showtimes with fresh
// seating maps. It runs only when no admin account exists, so calling
// it again is a no-op. It reports whether anything was written.
func Seed(ctx context.Context, db *sql.DB, opts SeedOptions) (bool, error) {
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC()

	users := repository.NewUserRepo(db)
	shows := repository.NewShowRepo(db)
	showTimes := repository.NewShowTimeRepo(db)
	products := repository.NewProductRepo(db)
	logs := repository.NewLogRepo(db)

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	admins, err := users.CountAdminsTx(ctx, tx)
	if err != nil {
		return false, fmt.Errorf("count admins: %w", err)
	}
	if admins > 0 {
		return false, nil
	}

	hash, err := utils.HashPassword(opts.AdminPassword, opts.BcryptCost)
	if err != nil {
		return false, fmt.Errorf("hash admin password: %w", err)
	}

	admin := &model.User{
		Username:     "admin",
		Email:        "admin@theatre.com",
		PasswordHash: hash,
		Role:         model.RoleAdmin,
		CreatedAt:    now,
	}
	if err := users.CreateTx(ctx, tx, admin); err != nil {
		return false, fmt.Errorf("create admin: %w", err)
	}

	showIDs := make([]uint64, len(seedShows))
	for i, s := range seedShows {
		poster := s.poster
		sh := &model.Show{Title: s.title, Description: s.description, Poster: &poster, DurationMin: s.duration, CreatedAt: now}
		if err := shows.CreateTx(ctx, tx, sh); err != nil {
			return false, fmt.Errorf("create show %q: %w", s.title, err)
		}
		showIDs[i] = sh.ID
	}

	for _, p := range seedProducts {
		prod := &model.Product{Name: p.name, Type: p.typ, Price: decimal.RequireFromString(p.price)}
		if err := products.CreateTx(ctx, tx, prod); err != nil {
			return false, fmt.Errorf("create product %q: %w", p.name, err)
		}
	}

	for _, sl := range seedSlots {
		st := &model.ShowTime{
			ShowID:     showIDs[sl.show],
			ShowDate:   now.AddDate(0, 0, sl.dayOffset).Format(model.DateLayout),
			StartTime:  sl.start,
			Price:      decimal.RequireFromString(sl.price),
			SeatingMap: model.DefaultSeatingMap(),
			CreatedAt:  now,
		}
		if err := showTimes.CreateTx(ctx, tx, st); err != nil {
			return false, fmt.Errorf("create showtime: %w", err)
		}
	}

	entry := &model.LogEntry{
		Action:    model.ActionSystemInit,
		Details:   "Database created with initial data",
		CreatedAt: now,
	}
	if err := logs.AppendTx(ctx, tx, entry); err != nil {
		return false, fmt.Errorf("log seed: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, err
	}
	committed = true
	log.Printf("database: seeded %d shows, %d products, %d showtimes", len(seedShows), len(seedProducts), len(seedSlots))
	return true, nil
}
