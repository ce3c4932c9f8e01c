package service

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/theatre-booking/internal/model"
	"github.com/iliyamo/theatre-booking/internal/repository"
	"github.com/iliyamo/theatre-booking/internal/utils"
)

// AdminService manages the show catalogue. Every call takes the acting
// user and refuses anyone who is not an admin. Each write commits
// together with exactly one audit entry.
type AdminService struct {
	db        *sql.DB
	shows     *repository.ShowRepo
	showTimes *repository.ShowTimeRepo
	logs      *repository.LogRepo
	now       func() time.Time
}

func NewAdminService(db *sql.DB, now func() time.Time) *AdminService {
	if now == nil {
		now = time.Now
	}
	return &AdminService{
		db:        db,
		shows:     repository.NewShowRepo(db),
		showTimes: repository.NewShowTimeRepo(db),
		logs:      repository.NewLogRepo(db),
		now:       now,
	}
}

func requireAdmin(actor *model.SessionUser) error {
	if actor == nil {
		return model.ErrAuthenticationRequired
	}
	if actor.Role != model.RoleAdmin {
		return model.ErrForbidden
	}
	return nil
}

// ShowInput is the editable part of a show.
type ShowInput struct {
	Title       string `json:"title" validate:"required,max=255"`
	Description string `json:"description" validate:"required"`
	Poster      string `json:"poster" validate:"max=255"`
	DurationMin int    `json:"duration" validate:"gt=0"`
}

func (in *ShowInput) normalize() {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Poster = strings.TrimSpace(in.Poster)
}

func (in ShowInput) poster() *string {
	if in.Poster == "" {
		return nil
	}
	p := in.Poster
	return &p
}

// ShowTimeInput schedules a performance. Date is YYYY-MM-DD and
// StartTime HH:MM.
type ShowTimeInput struct {
	ShowID    uint64          `json:"show_id" validate:"required"`
	Date      string          `json:"date" validate:"required,datetime=2006-01-02"`
	StartTime string          `json:"time" validate:"required,datetime=15:04"`
	Price     decimal.Decimal `json:"price" validate:"-"`
}

// ListShows returns every show with its number of performances, newest
// show first.
func (s *AdminService) ListShows(ctx context.Context, actor *model.SessionUser) ([]model.ShowSummary, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	return s.shows.ListWithCounts(ctx)
}

// inTx runs fn in a transaction and appends the entry fn returns before
// committing.
func (s *AdminService) inTx(ctx context.Context, op string, actor *model.SessionUser, fn func(tx *sql.Tx) (*model.LogEntry, error)) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin: %w", op, err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	entry, err := fn(tx)
	if err != nil {
		return err
	}
	uid := actor.ID
	entry.UserID = &uid
	entry.CreatedAt = s.now()
	if err := s.logs.AppendTx(ctx, tx, entry); err != nil {
		return fmt.Errorf("%s: audit: %w", op, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit: %w", op, err)
	}
	committed = true
	return nil
}

// CreateShow adds a show to the catalogue.
func (s *AdminService) CreateShow(ctx context.Context, actor *model.SessionUser, in ShowInput) (*model.Show, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	in.normalize()
	if err := utils.Validate(in); err != nil {
		return nil, err
	}
	show := &model.Show{
		Title:       in.Title,
		Description: in.Description,
		Poster:      in.poster(),
		DurationMin: in.DurationMin,
		CreatedAt:   s.now(),
	}
	err := s.inTx(ctx, "create show", actor, func(tx *sql.Tx) (*model.LogEntry, error) {
		if err := s.shows.CreateTx(ctx, tx, show); err != nil {
			return nil, fmt.Errorf("create show: %w", err)
		}
		return &model.LogEntry{
			Action:  model.ActionShowAdded,
			Details: fmt.Sprintf("Admin %s added show: %s", actor.Username, show.Title),
		}, nil
	})
	if err != nil {
		return nil, err
	}
	return show, nil
}

// UpdateShow overwrites the editable fields of show id.
func (s *AdminService) UpdateShow(ctx context.Context, actor *model.SessionUser, id uint64, in ShowInput) (*model.Show, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	in.normalize()
	if err := utils.Validate(in); err != nil {
		return nil, err
	}
	var show *model.Show
	err := s.inTx(ctx, "update show", actor, func(tx *sql.Tx) (*model.LogEntry, error) {
		cur, err := s.shows.GetByIDTx(ctx, tx, id)
		if err != nil {
			return nil, err
		}
		cur.Title = in.Title
		cur.Description = in.Description
		cur.Poster = in.poster()
		cur.DurationMin = in.DurationMin
		if err := s.shows.UpdateTx(ctx, tx, cur); err != nil {
			return nil, fmt.Errorf("update show: %w", err)
		}
		show = cur
		return &model.LogEntry{
			Action:  model.ActionShowUpdated,
			Details: fmt.Sprintf("Admin %s updated show #%d: %s", actor.Username, cur.ID, cur.Title),
		}, nil
	})
	if err != nil {
		return nil, err
	}
	return show, nil
}

// DeleteShow removes a show with its performances, their bookings and
// the bookings' order items.
func (s *AdminService) DeleteShow(ctx context.Context, actor *model.SessionUser, id uint64) (repository.DeleteResult, error) {
	var res repository.DeleteResult
	if err := requireAdmin(actor); err != nil {
		return res, err
	}
	err := s.inTx(ctx, "delete show", actor, func(tx *sql.Tx) (*model.LogEntry, error) {
		cur, err := s.shows.GetByIDTx(ctx, tx, id)
		if err != nil {
			return nil, err
		}
		res, err = s.shows.DeleteCascadeTx(ctx, tx, id)
		if err != nil {
			return nil, fmt.Errorf("delete show: %w", err)
		}
		return &model.LogEntry{
			Action: model.ActionShowDeleted,
			Details: fmt.Sprintf("Admin %s deleted show: %s (%d show times, %d bookings)",
				actor.Username, cur.Title, res.ShowTimes, res.Bookings),
		}, nil
	})
	return res, err
}

// AddShowTime schedules a performance with the default seating grid.
// A performance of the same show at the same date and time yields
// model.ErrConflict.
func (s *AdminService) AddShowTime(ctx context.Context, actor *model.SessionUser, in ShowTimeInput) (*model.ShowTime, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	in.Date = strings.TrimSpace(in.Date)
	in.StartTime = strings.TrimSpace(in.StartTime)
	if err := utils.Validate(in); err != nil {
		return nil, err
	}
	if !in.Price.IsPositive() {
		return nil, model.Invalid("price", "must be greater than 0")
	}

	st := &model.ShowTime{
		ShowID:     in.ShowID,
		ShowDate:   in.Date,
		StartTime:  in.StartTime,
		Price:      in.Price.Round(2),
		SeatingMap: model.DefaultSeatingMap(),
		CreatedAt:  s.now(),
	}
	err := s.inTx(ctx, "add show time", actor, func(tx *sql.Tx) (*model.LogEntry, error) {
		show, err := s.shows.GetByIDTx(ctx, tx, in.ShowID)
		if err != nil {
			return nil, err
		}
		taken, err := s.showTimes.SlotTakenTx(ctx, tx, in.ShowID, in.Date, in.StartTime)
		if err != nil {
			return nil, fmt.Errorf("add show time: %w", err)
		}
		if taken {
			return nil, fmt.Errorf("%s at %s %s: %w", show.Title, in.Date, in.StartTime, model.ErrConflict)
		}
		if err := s.showTimes.CreateTx(ctx, tx, st); err != nil {
			return nil, fmt.Errorf("add show time: %w", err)
		}
		return &model.LogEntry{
			Action: model.ActionShowTimeAdded,
			Details: fmt.Sprintf("Admin %s added show time for %s: %s %s at %s",
				actor.Username, show.Title, in.Date, in.StartTime, model.FormatPrice(st.Price)),
		}, nil
	})
	if err != nil {
		return nil, err
	}
	return st, nil
}
