// Package app holds the application services and business logic.
package app

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"careportal/internal/domain"

	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidCredentials indicates that the provided username or password was incorrect.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrSessionNotFound indicates that the requested session does not exist.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionExpired indicates that the session has expired.
	ErrSessionExpired = errors.New("session expired")
	// ErrUserNotFound indicates that the user does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrUsersExist is returned by CreateInitialUser once setup has run.
	ErrUsersExist = errors.New("users already exist")
)

// DefaultSessionTTL is used when NewAuthService is given a zero TTL.
const DefaultSessionTTL = 24 * time.Hour

// UpstreamAuthenticator verifies credentials against the data backend and
// returns the token that backend expects on later requests.
type UpstreamAuthenticator interface {
	Authenticate(ctx context.Context, username, password string) (backendToken string, err error)
}

// AuthService handles authentication and session management.
type AuthService struct {
	users    domain.UserRepository
	sessions domain.SessionRepository
	upstream UpstreamAuthenticator
	ttl      time.Duration
	clock    Clock
}

// NewAuthService creates a new authentication service.
func NewAuthService(users domain.UserRepository, sessions domain.SessionRepository, ttl time.Duration) *AuthService {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &AuthService{
		users:    users,
		sessions: sessions,
		ttl:      ttl,
	}
}

// WithUpstream makes Login check passwords against the data backend instead
// of the local bcrypt hashes. Local users are provisioned on first login.
func (s *AuthService) WithUpstream(u UpstreamAuthenticator) *AuthService {
	s.upstream = u
	return s
}

// WithClock overrides the time source used for session expiry.
func (s *AuthService) WithClock(c Clock) *AuthService {
	s.clock = c
	return s
}

// TTL is the lifetime of new sessions.
func (s *AuthService) TTL() time.Duration { return s.ttl }

// Login authenticates a user and creates a session.
func (s *AuthService) Login(ctx context.Context, username, password, userAgent, ip string) (string, error) {
	if s.upstream != nil {
		return s.loginUpstream(ctx, username, password, userAgent, ip)
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil || user == nil {
		return "", ErrInvalidCredentials
	}

	if user.PasswordHash == "" {
		return "", ErrInvalidCredentials
	}
	if err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	return s.startSession(ctx, user.ID, "", userAgent, ip)
}

func (s *AuthService) loginUpstream(ctx context.Context, username, password, userAgent, ip string) (string, error) {
	backendToken, err := s.upstream.Authenticate(ctx, username, password)
	if err != nil {
		if errors.Is(err, domain.ErrAuthExpired) {
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("upstream login: %w", err)
	}
	user, err := s.provision(ctx, username)
	if err != nil {
		return "", err
	}
	return s.startSession(ctx, user.ID, backendToken, userAgent, ip)
}

// Logout invalidates a session.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	return s.sessions.Delete(ctx, token)
}

// ValidateSession checks if a session token is valid and matches the user agent.
func (s *AuthService) ValidateSession(ctx context.Context, token, userAgent string) (*domain.User, *domain.Session, error) {
	session, err := s.sessions.GetByToken(ctx, token)
	if err != nil || session == nil {
		return nil, nil, ErrSessionNotFound
	}

	if s.clock.now().After(session.ExpiresAt) {
		_ = s.sessions.Delete(ctx, token)
		return nil, nil, ErrSessionExpired
	}

	if session.UserAgent != userAgent {
		_ = s.sessions.Delete(ctx, token)
		return nil, nil, ErrSessionExpired
	}

	user, err := s.users.GetByID(ctx, session.UserID)
	if err != nil {
		return nil, nil, ErrUserNotFound
	}

	return user, session, nil
}

// CreateInitialUser creates the first user if no users exist.
func (s *AuthService) CreateInitialUser(ctx context.Context, username, password string) error {
	count, err := s.users.Count(ctx)
	if err != nil {
		return err
	}

	if count > 0 {
		return ErrUsersExist
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	_, err = s.users.Create(ctx, username, string(hash))
	return err
}

// EnsureLocalUser makes sure the account every request acts as when
// authentication is disabled exists, so records can reference it.
func (s *AuthService) EnsureLocalUser(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.users.Ensure(ctx, id, id)
	if err != nil {
		return nil, fmt.Errorf("ensure local user %q: %w", id, err)
	}
	return user, nil
}

// NeedsSetup reports whether no user exists yet.
func (s *AuthService) NeedsSetup(ctx context.Context) (bool, error) {
	count, err := s.users.Count(ctx)
	if err != nil {
		return false, err
	}
	return count == 0, nil
}

// ValidateForwardAuth resolves the user named by a trusted proxy's
// Remote-User header, provisioning it on first sight.
func (s *AuthService) ValidateForwardAuth(ctx context.Context, remoteUser string) (*domain.User, error) {
	if remoteUser == "" {
		return nil, errors.New("no remote user header")
	}
	return s.provision(ctx, remoteUser)
}

// LoginWithUser creates a session for an already authenticated user (e.g. via SSO).
func (s *AuthService) LoginWithUser(ctx context.Context, username, userAgent, ip string) (string, error) {
	user, err := s.provision(ctx, username)
	if err != nil {
		return "", err
	}
	return s.startSession(ctx, user.ID, "", userAgent, ip)
}

// PurgeExpiredSessions deletes every expired session and returns how many
// were removed.
func (s *AuthService) PurgeExpiredSessions(ctx context.Context) (int64, error) {
	return s.sessions.DeleteExpired(ctx)
}

// provision returns the named user, creating it without a password when
// missing. A concurrent create is resolved by reading again.
func (s *AuthService) provision(ctx context.Context, username string) (*domain.User, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err == nil && user != nil {
		return user, nil
	}
	user, err = s.users.Create(ctx, username, "")
	if err != nil {
		user, err = s.users.GetByUsername(ctx, username)
		if err != nil {
			return nil, fmt.Errorf("provision user %q: %w", username, err)
		}
	}
	return user, nil
}

func (s *AuthService) startSession(ctx context.Context, userID, backendToken, userAgent, ip string) (string, error) {
	token, err := generateToken()
	if err != nil {
		return "", err
	}

	err = s.sessions.Create(ctx, domain.NewSession{
		UserID:       userID,
		Token:        token,
		BackendToken: backendToken,
		UserAgent:    userAgent,
		IP:           ip,
		ExpiresAt:    s.clock.now().Add(s.ttl),
	})
	if err != nil {
		return "", err
	}

	return token, nil
}

func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// ConstantTimeCompare performs a constant-time comparison of two strings.
func ConstantTimeCompare(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
