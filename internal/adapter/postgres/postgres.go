// Package postgres implements the domain repositories using PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"careportal/internal/domain"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
)

// DB wraps a *sql.DB and implements domain repository interfaces.
type DB struct {
	sql *sql.DB
}

var _ domain.UserRepository = (*DB)(nil)
var _ domain.Backend = (*DB)(nil)
var _ domain.SessionRepository = (*SessionRepo)(nil)

// Open connects to PostgreSQL, pings, and runs migrations.
func Open(connStr string) (*DB, error) {
	s, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}
	s.SetMaxOpenConns(10)
	s.SetMaxIdleConns(5)
	s.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.PingContext(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}

	d := &DB{sql: s}
	if err := d.migrate(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}
	return d, nil
}

// Close closes the underlying database connection.
func (d *DB) Close() error {
	return d.sql.Close()
}

// Ping checks the connection; used by the health endpoint.
func (d *DB) Ping(ctx context.Context) error {
	return d.sql.PingContext(ctx)
}

var schema = []string{
	"CREATE TABLE IF NOT EXISTS users (id TEXT PRIMARY KEY, username TEXT UNIQUE NOT NULL, password_hash TEXT NOT NULL, created_at TIMESTAMPTZ NOT NULL);",
	`CREATE TABLE IF NOT EXISTS sessions (token TEXT PRIMARY KEY, user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		backend_token TEXT NOT NULL DEFAULT '', user_agent TEXT NOT NULL DEFAULT '', ip TEXT NOT NULL DEFAULT '',
		expires_at TIMESTAMPTZ NOT NULL, created_at TIMESTAMPTZ NOT NULL);`,
	"CREATE INDEX IF NOT EXISTS idx_sessions_expires_at ON sessions(expires_at);",
	`CREATE TABLE IF NOT EXISTS weight_entries (id TEXT PRIMARY KEY, user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		weight DOUBLE PRECISION NOT NULL CHECK (weight > 0), entry_date DATE NOT NULL, notes TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL);`,
	"CREATE INDEX IF NOT EXISTS idx_weight_entries_user_date ON weight_entries(user_id, entry_date);",
	`CREATE TABLE IF NOT EXISTS medications (id TEXT PRIMARY KEY, user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		name TEXT NOT NULL, dosage TEXT NOT NULL, frequency TEXT NOT NULL, start_date DATE, end_date DATE);`,
	"CREATE INDEX IF NOT EXISTS idx_medications_user_id ON medications(user_id);",
	`CREATE TABLE IF NOT EXISTS shipments (id TEXT PRIMARY KEY, user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		medication_id TEXT REFERENCES medications(id) ON DELETE SET NULL,
		status TEXT NOT NULL CHECK (status IN ('pending','shipped','delivered','delayed','cancelled')),
		order_date DATE, shipped_date DATE, expected_delivery_date DATE, tracking_number TEXT NOT NULL DEFAULT '',
		quantity INTEGER NOT NULL, items JSONB NOT NULL DEFAULT '[]', address JSONB NOT NULL DEFAULT '{}');`,
	"CREATE INDEX IF NOT EXISTS idx_shipments_user_id ON shipments(user_id);",
	`CREATE TABLE IF NOT EXISTS profiles (user_id TEXT PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
		email TEXT NOT NULL DEFAULT '', first_name TEXT NOT NULL DEFAULT '', last_name TEXT NOT NULL DEFAULT '',
		date_of_birth DATE, phone TEXT NOT NULL DEFAULT '', enrollment_date DATE);`,
}

func (d *DB) migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := d.sql.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

func newID() string { return uuid.NewString() }

// notFound maps sql.ErrNoRows to domain.ErrNotFound.
func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	return err
}

// affected returns domain.ErrNotFound when an exec touched no row.
func affected(res sql.Result, err error) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// WeightEntries opens the weight series of the session's user.
func (d *DB) WeightEntries(sess *domain.Session) domain.WeightEntryStore {
	return &entryStore{db: d, userID: sess.UserID}
}

// Shipments opens the shipments of the session's user.
func (d *DB) Shipments(sess *domain.Session) domain.ShipmentStore {
	return &shipmentStore{db: d, userID: sess.UserID}
}

// Medications opens the medications of the session's user.
func (d *DB) Medications(sess *domain.Session) domain.MedicationStore {
	return &medicationStore{db: d, userID: sess.UserID}
}

// Profiles opens the profile of the session's user.
func (d *DB) Profiles(sess *domain.Session) domain.ProfileStore {
	return &profileStore{db: d, userID: sess.UserID}
}
