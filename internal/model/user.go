package model

import "time"

// Role is the fixed permission level of an account. It is chosen when
// the account is created and never changes afterwards.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleCustomer Role = "customer"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool { return r == RoleAdmin || r == RoleCustomer }

// User represents an account as stored in the `users` table. Username
// and Email are both unique. PasswordHash holds a bcrypt hash and is
// never handed to the UI layer.
type User struct {
	ID           uint64    // users.id
	Username     string    // users.username
	Email        string    // users.email
	PasswordHash string    // users.password_hash
	Role         Role      // users.role
	CreatedAt    time.Time // users.created_at
}

// IsAdmin reports whether the user carries the admin role.
func (u *User) IsAdmin() bool { return u != nil && u.Role == RoleAdmin }

// SessionUser is the identity kept in the local session cache. It is a
// User without the credential material.
type SessionUser struct {
	ID       uint64 `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     Role   `json:"role"`
}

// Session strips the password hash from u.
func (u *User) Session() SessionUser {
	return SessionUser{ID: u.ID, Username: u.Username, Email: u.Email, Role: u.Role}
}
