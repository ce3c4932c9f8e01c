package output

import (
	"errors"

	"github.com/iliyamo/theatre-booking/internal/model"
)

// Describe turns an error into a message fit for the user. Unknown
// failures get a generic message; the detail belongs in the log.
func Describe(err error) string {
	var verr *model.ValidationError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &verr):
		return verr.Error()
	case errors.Is(err, model.ErrAuthenticationRequired):
		return "Please log in first."
	case errors.Is(err, model.ErrInvalidCredentials):
		return "Invalid username or password."
	case errors.Is(err, model.ErrDuplicateIdentity):
		return "That username or email is already registered."
	case errors.Is(err, model.ErrEmptyCart):
		return "Your cart has no tickets."
	case errors.Is(err, model.ErrSeatAlreadyReserved):
		return "A selected seat has just been booked by someone else. Please pick again."
	case errors.Is(err, model.ErrSeatNotBookable):
		return "A selected seat cannot be booked."
	case errors.Is(err, model.ErrForbidden):
		return "Admin access required."
	case errors.Is(err, model.ErrConflict):
		return "That show time is already scheduled."
	case errors.Is(err, model.ErrNotFound):
		return "Not found."
	case errors.Is(err, model.ErrStorageUnavailable):
		return "The booking database is unavailable."
	}
	return "Something went wrong. Please try again."
}
