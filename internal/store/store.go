package store

import (
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// currentSchemaVersion is written to PRAGMA user_version after migrations.
const currentSchemaVersion = 1

// Clock supplies creation timestamps for runs.
type Clock interface {
	Now() time.Time
}

// IDGenerator supplies run IDs.
type IDGenerator interface {
	NewID() string
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// uuidV7 generates time-ordered UUIDs.
type uuidV7 struct{}

func (uuidV7) NewID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// Option configures a Store.
type Option func(*Store)

// WithClock replaces the wall clock used for CreatedAt.
func WithClock(c Clock) Option {
	return func(s *Store) { s.clock = c }
}

// WithIDGenerator replaces the UUIDv7 generator used for run IDs.
func WithIDGenerator(g IDGenerator) Option {
	return func(s *Store) { s.ids = g }
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.log = l }
}

// Store is a SQLite-backed run history.
//
// Thread-safe: Can be called concurrently. All access goes through a single
// connection.
type Store struct {
	db    *sql.DB
	clock Clock
	ids   IDGenerator
	log   *slog.Logger
}

// Open opens or creates the database at path, applies pragmas and brings the
// schema up to date.
func Open(path string, opts ...Option) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// A single connection keeps pragmas consistent and serializes writes.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, err
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	s := &Store{db: db, clock: systemClock{}, ids: uuidV7{}, log: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	s.log.Debug("opened run store", "path", path)
	return s, nil
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("failed to set %q: %w", p, err)
		}
	}
	return nil
}

// runMigrations upgrades databases written by older versions. Fresh
// databases already match the embedded schema.
func runMigrations(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("read user_version: %w", err)
	}
	if version >= currentSchemaVersion {
		return nil
	}

	if version < 1 {
		if err := migrateToV1(db); err != nil {
			return err
		}
	}

	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}
	return nil
}

// migrateToV1 adds the fingerprint index for databases created before it
// was part of the schema.
func migrateToV1(db *sql.DB) error {
	_, err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_runs_fingerprint ON runs(fingerprint)`)
	if err != nil {
		return fmt.Errorf("migrate to v1: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB exposes the underlying handle for ad-hoc inspection.
func (s *Store) DB() *sql.DB {
	return s.db
}

// pragma reads a pragma value as text.
func (s *Store) pragma(name string) (string, error) {
	var value string
	if err := s.db.QueryRow("PRAGMA " + name).Scan(&value); err != nil {
		return "", fmt.Errorf("failed to query %s: %w", name, err)
	}
	return value, nil
}
