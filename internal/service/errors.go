package service

import (
	"errors"

	"github.com/iliyamo/spacelink/internal/model"
)

// Error kinds returned by BookingService.  Match them with errors.Is; the
// concrete value is always an *Error carrying a user-facing message.
var (
	ErrValidation             = errors.New("validation error")
	ErrProfileIncomplete      = errors.New("profile incomplete")
	ErrPropertyUnavailable    = errors.New("property unavailable")
	ErrUnsupportedBookingType = errors.New("unsupported booking type")
	ErrDateConflict           = errors.New("date conflict")
	ErrForbidden              = errors.New("forbidden")
	ErrInvalidTransition      = errors.New("invalid transition")
	ErrTooLateToCancel        = errors.New("too late to cancel")
	ErrNotFound               = errors.New("not found")
)

// ProfileRedirect is the client route users are sent to when their
// profile is missing details required for booking.
const ProfileRedirect = "/profile"

// Error is a rejected booking operation.  Kind is one of the Err* values
// above; Redirect and Allowed are only set for ErrProfileIncomplete and
// ErrInvalidTransition respectively.
type Error struct {
	Kind     error
	Message  string
	Redirect string
	Allowed  []model.BookingStatus
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

func newError(kind error, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}
