// Package session tracks the logged-in user. The identity is cached in
// a Store as a signed token so it survives restarts; a cached value
// that fails verification is treated as no session at all.
package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/iliyamo/theatre-booking/internal/model"
	"github.com/iliyamo/theatre-booking/internal/repository"
	"github.com/iliyamo/theatre-booking/internal/utils"
)

// CurrentUserKey is the cache key holding the session token.
const CurrentUserKey = "currentUser"

// Options configures a Service.
type Options struct {
	Secret     string
	TTL        time.Duration
	BcryptCost int
	Now        func() time.Time
}

// Service implements login, registration and logout.
type Service struct {
	db    *sql.DB
	users *repository.UserRepo
	logs  *repository.LogRepo
	store Store
	opts  Options

	mu      sync.RWMutex
	current *model.SessionUser
}

// NewService builds a Service and restores any cached session.
func NewService(db *sql.DB, store Store, opts Options) *Service {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	s := &Service{
		db:    db,
		users: repository.NewUserRepo(db),
		logs:  repository.NewLogRepo(db),
		store: store,
		opts:  opts,
	}
	s.restore()
	return s
}

func (s *Service) restore() {
	raw, ok, err := s.store.Get(CurrentUserKey)
	if err != nil {
		log.Printf("session: read cache: %v", err)
		s.discard()
		return
	}
	if !ok || raw == "" {
		return
	}
	u, err := utils.ParseSessionToken(s.opts.Secret, raw, s.opts.Now())
	if err != nil {
		log.Printf("session: discarding cached session: %v", err)
		s.discard()
		return
	}
	s.current = &u
}

func (s *Service) discard() {
	if err := s.store.Delete(CurrentUserKey); err != nil {
		log.Printf("session: clear cache: %v", err)
	}
}

// Current returns the logged-in user, or nil.
func (s *Service) Current() *model.SessionUser {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil
	}
	u := *s.current
	return &u
}

// IsAuthenticated reports whether a user is logged in.
func (s *Service) IsAuthenticated() bool { return s.Current() != nil }

// IsAdmin reports whether the logged-in user is an admin.
func (s *Service) IsAdmin() bool {
	u := s.Current()
	return u != nil && u.Role == model.RoleAdmin
}

// Login checks the credentials, records the login and makes the user
// current. Any mismatch yields model.ErrInvalidCredentials without
// saying which field was wrong.
func (s *Service) Login(ctx context.Context, username, password string) (*model.SessionUser, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, model.ErrInvalidCredentials
	}
	u, err := s.users.GetByUsername(ctx, username)
	if errors.Is(err, model.ErrNotFound) {
		utils.BurnPasswordCheck(password, s.opts.BcryptCost)
		return nil, model.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	if !utils.VerifyPassword(u.PasswordHash, password) {
		return nil, model.ErrInvalidCredentials
	}

	entry := &model.LogEntry{
		Action:    model.ActionUserLogin,
		Details:   fmt.Sprintf("User %s logged in", u.Username),
		UserID:    &u.ID,
		CreatedAt: s.opts.Now(),
	}
	if err := s.logs.Append(ctx, entry); err != nil {
		return nil, fmt.Errorf("login: audit: %w", err)
	}

	su := u.Session()
	s.establish(su)
	return &su, nil
}

// RegisterInput is the sign-up form.
type RegisterInput struct {
	Username string `json:"username" validate:"required,max=64"`
	Password string `json:"password" validate:"required"`
	Email    string `json:"email" validate:"required,email,max=255"`
}

// Register creates a customer account and logs it in. A username or
// email already in use yields model.ErrDuplicateIdentity.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*model.SessionUser, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := utils.Validate(in); err != nil {
		return nil, err
	}

	hash, err := utils.HashPassword(in.Password, s.opts.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("register: hash password: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	taken, err := s.users.IdentityTakenTx(ctx, tx, in.Username, in.Email)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	if taken {
		return nil, model.ErrDuplicateIdentity
	}

	now := s.opts.Now()
	u := &model.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         model.RoleCustomer,
		CreatedAt:    now,
	}
	if err := s.users.CreateTx(ctx, tx, u); err != nil {
		if errors.Is(err, model.ErrDuplicateIdentity) {
			return nil, err
		}
		return nil, fmt.Errorf("register: %w", err)
	}
	entry := &model.LogEntry{
		Action:    model.ActionUserRegister,
		Details:   fmt.Sprintf("New user registered: %s", u.Username),
		UserID:    &u.ID,
		CreatedAt: now,
	}
	if err := s.logs.AppendTx(ctx, tx, entry); err != nil {
		return nil, fmt.Errorf("register: audit: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	committed = true

	su := u.Session()
	s.establish(su)
	return &su, nil
}

// Logout records the logout and clears the session. It is a no-op when
// nobody is logged in. The session is cleared even if the audit write
// fails; that failure is still returned.
func (s *Service) Logout(ctx context.Context) error {
	s.mu.Lock()
	u := s.current
	s.current = nil
	s.mu.Unlock()
	if u == nil {
		return nil
	}
	s.discard()

	id := u.ID
	entry := &model.LogEntry{
		Action:    model.ActionUserLogout,
		Details:   fmt.Sprintf("User %s logged out", u.Username),
		UserID:    &id,
		CreatedAt: s.opts.Now(),
	}
	if err := s.logs.Append(ctx, entry); err != nil {
		return fmt.Errorf("logout: audit: %w", err)
	}
	return nil
}

// establish makes u current and caches it. A cache write failure only
// costs persistence across restarts, so it is logged, not returned.
func (s *Service) establish(u model.SessionUser) {
	s.mu.Lock()
	s.current = &u
	s.mu.Unlock()

	tok, err := utils.NewSessionToken(s.opts.Secret, u, s.opts.TTL, s.opts.Now())
	if err != nil {
		log.Printf("session: sign token: %v", err)
		return
	}
	if err := s.store.Set(CurrentUserKey, tok); err != nil {
		log.Printf("session: write cache: %v", err)
	}
}
