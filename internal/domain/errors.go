package domain

import "errors"

var (
	// ErrNotFound indicates the requested record does not exist for the user.
	ErrNotFound = errors.New("not found")
	// ErrAuthExpired indicates the backend rejected the session's credentials.
	// Callers should drop the session and ask the user to log in again.
	ErrAuthExpired = errors.New("authentication expired, please log in again")
)

// ErrBackendUnavailable indicates the data backend failed or could not be
// reached. Handlers answer 502.
var ErrBackendUnavailable = errors.New("backend unavailable")
