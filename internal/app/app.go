// Package app wires configuration, storage and services into the single
// object the CLI and TUI work against.
package app

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"time"

	"github.com/iliyamo/theatre-booking/internal/cart"
	"github.com/iliyamo/theatre-booking/internal/checkout"
	"github.com/iliyamo/theatre-booking/internal/config"
	"github.com/iliyamo/theatre-booking/internal/database"
	"github.com/iliyamo/theatre-booking/internal/document"
	"github.com/iliyamo/theatre-booking/internal/model"
	"github.com/iliyamo/theatre-booking/internal/queue"
	"github.com/iliyamo/theatre-booking/internal/repository"
	"github.com/iliyamo/theatre-booking/internal/service"
	"github.com/iliyamo/theatre-booking/internal/session"
)

const journalBuffer = 64

// App is the running box office. When storage could not be opened DB
// and every storage-backed service are nil and StorageErr says why; the
// UI keeps working with empty lists.
type App struct {
	Config config.Config
	DB     *sql.DB

	Session  *session.Service
	Cart     *cart.Cart
	Catalog  *service.CatalogService
	Admin    *service.AdminService
	Reports  *service.ReportService
	Checkout *checkout.Service

	Journal   *queue.Journal
	Documents document.Generator
	Exporter  *document.Exporter

	StorageErr error
	Now        func() time.Time
}

// Options tweaks New. Store overrides the session cache, which
// otherwise lives in cfg.SessionFile.
type Options struct {
	Store session.Store
	Now   func() time.Time
}

// New opens storage, seeds an empty store and builds every service.
// A storage failure is not returned: the App comes back degraded with
// StorageErr set. Only a broken session cache path is fatal.
func New(ctx context.Context, cfg config.Config, opts Options) (*App, error) {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	a := &App{
		Config:    cfg,
		Cart:      cart.New(),
		Documents: document.NewTextGenerator(document.DefaultVenue),
		Exporter:  document.NewExporter(cfg.ExportDir),
		Now:       now,
	}

	db, err := database.Open(ctx, cfg)
	if err != nil {
		log.Printf("app: storage unavailable: %v", err)
		a.StorageErr = err
		return a, nil
	}
	seeded, err := database.Seed(ctx, db, database.SeedOptions{
		AdminPassword: cfg.SeedAdminPassword,
		BcryptCost:    cfg.BcryptCost,
		Now:           now(),
	})
	if err != nil {
		_ = db.Close()
		log.Printf("app: seed failed: %v", err)
		a.StorageErr = errors.Join(model.ErrStorageUnavailable, err)
		return a, nil
	}
	if seeded {
		log.Printf("app: initialised new store")
	}
	a.DB = db

	store := opts.Store
	if store == nil {
		store = session.NewFileStore(cfg.SessionFile)
	}

	a.Session = session.NewService(db, store, session.Options{
		Secret:     cfg.SessionSecret,
		TTL:        cfg.SessionTTL,
		BcryptCost: cfg.BcryptCost,
		Now:        now,
	})
	a.Catalog = service.NewCatalogService(db)
	a.Admin = service.NewAdminService(db, now)
	a.Reports = service.NewReportService(db)
	a.Journal = queue.NewJournal(cfg.JournalFile, journalBuffer)
	a.Checkout = checkout.New(checkout.Deps{
		DB:         db,
		Bookings:   repository.NewBookingRepo(db),
		Seating:    repository.NewShowTimeRepo(db),
		OrderItems: repository.NewOrderItemRepo(db),
		Audit:      repository.NewLogRepo(db),
		Journal:    a.Journal,
		Documents:  a.Documents,
		Exporter:   a.Exporter,
		Now:        now,
	})
	return a, nil
}

// Available reports whether storage is up.
func (a *App) Available() bool { return a.DB != nil }

// RequireStorage returns StorageErr when running degraded.
func (a *App) RequireStorage() error {
	if a.Available() {
		return nil
	}
	if a.StorageErr != nil {
		return a.StorageErr
	}
	return model.ErrStorageUnavailable
}

// CurrentUser is the logged-in user, or nil.
func (a *App) CurrentUser() *model.SessionUser {
	if a.Session == nil {
		return nil
	}
	return a.Session.Current()
}

// CheckoutCart books the shared cart for the current user.
func (a *App) CheckoutCart(ctx context.Context) (*checkout.Result, error) {
	if err := a.RequireStorage(); err != nil {
		return nil, err
	}
	return a.Checkout.Checkout(ctx, a.CurrentUser(), a.Cart)
}

// Close drains the journal and closes storage.
func (a *App) Close() error {
	var errs []error
	if a.Journal != nil {
		errs = append(errs, a.Journal.Close())
	}
	if a.DB != nil {
		errs = append(errs, a.DB.Close())
	}
	return errors.Join(errs...)
}
