package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/iliyamo/theatre-booking/internal/model"
)

// UserRepo manages persistence for accounts.
type UserRepo struct{ db *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{db: db} }

const userColumns = `id, username, email, password_hash, role, created_at`

func scanUser(row interface{ Scan(...any) error }) (*model.User, error) {
	var (
		u       model.User
		role    string
		created string
	)
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &role, &created); err != nil {
		return nil, err
	}
	u.Role = model.Role(role)
	u.CreatedAt = parseTS(created)
	return &u, nil
}

// CreateTx inserts u and fills in its ID. Email is stored lower-cased.
// A clash on username or email yields model.ErrDuplicateIdentity.
func (r *UserRepo) CreateTx(ctx context.Context, tx *sql.Tx, u *model.User) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	res, err := tx.ExecContext(ctx,
		"INSERT INTO users (username, password_hash, email, role, created_at) VALUES (?,?,?,?,?)",
		u.Username, u.PasswordHash, u.Email, string(u.Role), formatTS(u.CreatedAt))
	if err != nil {
		if isUniqueViolation(err) {
			return model.ErrDuplicateIdentity
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	u.ID = uint64(id)
	return nil
}

// GetByUsername fetches a user by exact username.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE username = ? LIMIT 1", username))
	if err != nil {
		return nil, notFound(err, "user", username)
	}
	return u, nil
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (*model.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id = ? LIMIT 1", id))
	if err != nil {
		return nil, notFound(err, "user", id)
	}
	return u, nil
}

// IdentityTakenTx reports whether the username or the email is already
// used by some account. One query covers both.
func (r *UserRepo) IdentityTakenTx(ctx context.Context, tx *sql.Tx, username, email string) (bool, error) {
	var n int
	err := tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM users WHERE username = ? OR email = ?",
		username, strings.ToLower(strings.TrimSpace(email))).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check identity: %w", err)
	}
	return n > 0, nil
}

// CountAdminsTx counts admin accounts. Bootstrap seeding runs only when
// this is zero.
func (r *UserRepo) CountAdminsTx(ctx context.Context, tx *sql.Tx) (int, error) {
	var n int
	err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM users WHERE role = ?", string(model.RoleAdmin)).Scan(&n)
	return n, err
}

// Count returns the number of accounts.
func (r *UserRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&n)
	return n, err
}
