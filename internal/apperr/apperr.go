package apperr

import (
	"errors"
	"fmt"
)

// Error kinds shared by services and the HTTP layer. Handlers translate
// these to status codes; everything else is a 500.
var (
	ErrNotFound   = errors.New("not found")
	ErrForbidden  = errors.New("forbidden")
	ErrUnassigned = errors.New("no teacher assigned")
	ErrBadRequest = errors.New("bad request")
	ErrConflict   = errors.New("conflict")
)

// NotFound wraps ErrNotFound with a message.
func NotFound(format string, args ...any) error {
	return wrap(ErrNotFound, format, args...)
}

// Forbidden wraps ErrForbidden with a message.
func Forbidden(format string, args ...any) error {
	return wrap(ErrForbidden, format, args...)
}

// Unassigned wraps ErrUnassigned with a message.
func Unassigned(format string, args ...any) error {
	return wrap(ErrUnassigned, format, args...)
}

// BadRequest wraps ErrBadRequest with a message.
func BadRequest(format string, args ...any) error {
	return wrap(ErrBadRequest, format, args...)
}

// Conflict wraps ErrConflict with a message.
func Conflict(format string, args ...any) error {
	return wrap(ErrConflict, format, args...)
}

func wrap(kind error, format string, args ...any) error {
	return fmt.Errorf("%w: %s", kind, fmt.Sprintf(format, args...))
}

// Message strips the kind prefix so HTTP responses carry only the
// human-readable part.
func Message(err error) string {
	for _, kind := range []error{ErrNotFound, ErrForbidden, ErrUnassigned, ErrBadRequest, ErrConflict} {
		if errors.Is(err, kind) {
			msg := err.Error()
			prefix := kind.Error() + ": "
			if len(msg) > len(prefix) && msg[:len(prefix)] == prefix {
				return msg[len(prefix):]
			}
			return msg
		}
	}
	return err.Error()
}
