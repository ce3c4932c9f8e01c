package model

import (
	"errors"
	"fmt"
)

// Sentinel errors shared by every layer. Callers classify failures with
// errors.Is; the UI turns them into user-facing messages.
var (
	// ErrAuthenticationRequired is returned when an operation needs a
	// logged-in user and there is none.
	ErrAuthenticationRequired = errors.New("authentication required")

	// ErrInvalidCredentials deliberately does not say whether the
	// username or the password was wrong.
	ErrInvalidCredentials = errors.New("invalid username or password")

	ErrDuplicateIdentity = errors.New("username or email already exists")
	ErrEmptyCart         = errors.New("cart is empty")

	// ErrStorageUnavailable wraps any failure to open or reach the store.
	ErrStorageUnavailable = errors.New("storage unavailable")

	ErrNotFound            = errors.New("not found")
	ErrSeatAlreadyReserved = errors.New("seat already reserved")
	ErrSeatNotBookable     = errors.New("seat is not bookable")
	ErrForbidden           = errors.New("forbidden")
	ErrConflict            = errors.New("conflict")
)

// ValidationError reports malformed input. Field names the offending
// input; Reason is safe to show to the user.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "invalid input: " + e.Reason
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Invalid is shorthand for a *ValidationError.
func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// IsValidation reports whether err wraps a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
