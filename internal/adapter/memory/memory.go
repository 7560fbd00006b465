// Package memory implements an in-memory repository for development and testing.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"careportal/internal/domain"

	"github.com/google/uuid"
)

// DB implements an in-memory database storage.
type DB struct {
	mu          sync.Mutex
	users       []*domain.User
	sessions    map[string]*domain.Session
	entries     map[string][]domain.WeightEntry
	shipments   map[string][]domain.Shipment
	medications map[string][]domain.Medication
	profiles    map[string]domain.Profile

	now func() time.Time
}

// New creates a new in-memory database.
func New() *DB {
	return &DB{
		sessions:    make(map[string]*domain.Session),
		entries:     make(map[string][]domain.WeightEntry),
		shipments:   make(map[string][]domain.Shipment),
		medications: make(map[string][]domain.Medication),
		profiles:    make(map[string]domain.Profile),
		now:         time.Now,
	}
}

// Ensure interfaces are met.
var _ domain.UserRepository = (*DB)(nil)
var _ domain.Backend = (*DB)(nil)
var _ domain.SessionRepository = (*SessionRepo)(nil)

func newID() string { return uuid.NewString() }

// --- UserRepository ---

// GetByUsername retrieves a user by username.
func (db *DB) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

// GetByID retrieves a user by ID.
func (db *DB) GetByID(ctx context.Context, id string) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

// Create creates a new user.
func (db *DB) Create(ctx context.Context, username, passwordHash string) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if u.Username == username {
			return nil, errors.New("user already exists")
		}
	}

	u := &domain.User{
		ID:           newID(),
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    db.now().UTC(),
	}
	db.users = append(db.users, u)
	cp := *u
	return &cp, nil
}

// Ensure returns the user with id, creating it without a password when
// missing.
func (db *DB) Ensure(ctx context.Context, id, username string) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
		if u.Username == username {
			return nil, fmt.Errorf("username %q belongs to user %s", username, u.ID)
		}
	}

	u := &domain.User{ID: id, Username: username, CreatedAt: db.now().UTC()}
	db.users = append(db.users, u)
	cp := *u
	return &cp, nil
}

// Count returns the total number of users.
func (db *DB) Count(ctx context.Context) (int, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	return len(db.users), nil
}

// --- SessionRepository ---

// SessionRepo implements session persistence.
type SessionRepo struct {
	db *DB
}

// NewSessionRepo creates a new session repository.
func (db *DB) NewSessionRepo() *SessionRepo {
	return &SessionRepo{db: db}
}

// Create creates a new session.
func (r *SessionRepo) Create(ctx context.Context, s domain.NewSession) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	r.db.sessions[s.Token] = &domain.Session{
		Token:        s.Token,
		UserID:       s.UserID,
		BackendToken: s.BackendToken,
		UserAgent:    s.UserAgent,
		IP:           s.IP,
		ExpiresAt:    s.ExpiresAt,
		CreatedAt:    r.db.now().UTC(),
	}
	return nil
}

// GetByToken retrieves a session by token.
func (r *SessionRepo) GetByToken(ctx context.Context, token string) (*domain.Session, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	s, ok := r.db.sessions[token]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

// Delete deletes a session.
func (r *SessionRepo) Delete(ctx context.Context, token string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	delete(r.db.sessions, token)
	return nil
}

// DeleteExpired deletes all expired sessions.
func (r *SessionRepo) DeleteExpired(ctx context.Context) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	now := r.db.now()
	var n int64
	for k, v := range r.db.sessions {
		if now.After(v.ExpiresAt) {
			delete(r.db.sessions, k)
			n++
		}
	}
	return n, nil
}

// --- Backend ---

// WeightEntries opens the weight series of the session's user.
func (db *DB) WeightEntries(sess *domain.Session) domain.WeightEntryStore {
	return &entryStore{db: db, userID: sess.UserID}
}

// Shipments opens the shipments of the session's user.
func (db *DB) Shipments(sess *domain.Session) domain.ShipmentStore {
	return &shipmentStore{db: db, userID: sess.UserID}
}

// Medications opens the medications of the session's user.
func (db *DB) Medications(sess *domain.Session) domain.MedicationStore {
	return &medicationStore{db: db, userID: sess.UserID}
}

// Profiles opens the profile of the session's user.
func (db *DB) Profiles(sess *domain.Session) domain.ProfileStore {
	return &profileStore{db: db, userID: sess.UserID}
}
