package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/iliyamo/theatre-booking/internal/model"
)

// ErrInvalidSessionToken covers every way a cached session token can be
// unusable: bad signature, expired, malformed or missing claims.
var ErrInvalidSessionToken = errors.New("invalid session token")

// SessionClaims is the payload of a cached session token.
type SessionClaims struct {
	UserID   uint64     `json:"id"`
	Username string     `json:"username"`
	Email    string     `json:"email"`
	Role     model.Role `json:"role"`
	jwt.RegisteredClaims
}

// NewSessionToken builds and signs an HS256 JWT for u that expires ttl
// after now.
func NewSessionToken(secret string, u model.SessionUser, ttl time.Duration, now time.Time) (string, error) {
	claims := SessionClaims{
		UserID:   u.ID,
		Username: u.Username,
		Email:    u.Email,
		Role:     u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprint(u.ID),
			IssuedAt:  jwt.NewNumericDate(now.UTC()),
			ExpiresAt: jwt.NewNumericDate(now.UTC().Add(ttl)),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(secret))
}

// ParseSessionToken verifies raw and returns the identity it carries.
// now is the reference time for the expiry check.
func ParseSessionToken(secret, raw string, now time.Time) (model.SessionUser, error) {
	var claims SessionClaims
	_, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		return []byte(secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	if err != nil {
		return model.SessionUser{}, fmt.Errorf("%w: %v", ErrInvalidSessionToken, err)
	}
	if claims.UserID == 0 || claims.Username == "" || !claims.Role.Valid() {
		return model.SessionUser{}, fmt.Errorf("%w: incomplete claims", ErrInvalidSessionToken)
	}
	return model.SessionUser{
		ID:       claims.UserID,
		Username: claims.Username,
		Email:    claims.Email,
		Role:     claims.Role,
	}, nil
}
