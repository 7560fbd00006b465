// Package domain contains the core business entities, the pure progress
// derivations and the ports the adapters implement.
package domain

import (
	"context"
	"time"
)

// User represents an authenticated user in the system.
type User struct {
	ID           string
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

// Session represents an active user session. BackendToken is the credential
// the data backend expects for this user; local backends leave it empty.
type Session struct {
	Token        string
	UserID       string
	BackendToken string
	UserAgent    string
	IP           string
	ExpiresAt    time.Time
	CreatedAt    time.Time
}

// UserRepository defines the port for user persistence operations.
type UserRepository interface {
	GetByUsername(ctx context.Context, username string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	Create(ctx context.Context, username, passwordHash string) (*User, error)
	// Ensure returns the user with id, creating it without a password when
	// missing.
	Ensure(ctx context.Context, id, username string) (*User, error)
	Count(ctx context.Context) (int, error)
}

// NewSession holds the fields needed to persist a session.
type NewSession struct {
	UserID       string
	Token        string
	BackendToken string
	UserAgent    string
	IP           string
	ExpiresAt    time.Time
}

// SessionRepository defines the port for session persistence operations.
type SessionRepository interface {
	Create(ctx context.Context, s NewSession) error
	GetByToken(ctx context.Context, token string) (*Session, error)
	Delete(ctx context.Context, token string) error
	DeleteExpired(ctx context.Context) (int64, error)
}
