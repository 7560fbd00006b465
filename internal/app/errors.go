package app

import (
	"errors"
	"fmt"
	"time"

	"careportal/internal/domain"
)

// ValidationError reports a rejected input field. Handlers map it to 400.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}

// IsValidation reports whether err carries a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// authFirst returns the first of errs that reports expired credentials, or
// fallback when none does. Concurrent fetches use it so a session problem is
// never hidden behind another failure.
func authFirst(fallback error, errs ...error) error {
	for _, e := range errs {
		if errors.Is(e, domain.ErrAuthExpired) {
			return e
		}
	}
	return fallback
}

// Clock returns the current time. A nil Clock reads the wall clock.
type Clock func() time.Time

func (c Clock) now() time.Time {
	if c == nil {
		return time.Now()
	}
	return c()
}
