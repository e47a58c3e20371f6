// Package store persists site content in SQLite and announces every change
// to a Publisher so live pages can refresh.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// ErrNotFound is returned when a document does not exist.
var ErrNotFound = errors.New("document not found")

const schema = `
CREATE TABLE IF NOT EXISTS notices (
	id         TEXT PRIMARY KEY,
	content    TEXT NOT NULL,
	active     INTEGER NOT NULL DEFAULT 1,
	priority   TEXT NOT NULL DEFAULT 'normal',
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS poojas (
	id                        TEXT PRIMARY KEY,
	title                     TEXT NOT NULL,
	date                      TEXT NOT NULL,
	time                      TEXT NOT NULL DEFAULT '',
	sponsor                   TEXT NOT NULL DEFAULT '',
	sponsor2                  TEXT NOT NULL DEFAULT '',
	sponsor_current_address   TEXT NOT NULL DEFAULT '',
	sponsor_permanent_address TEXT NOT NULL DEFAULT '',
	description               TEXT NOT NULL DEFAULT '',
	annadhanam_details        TEXT NOT NULL DEFAULT '',
	tamil_month_date          TEXT NOT NULL DEFAULT '',
	created_at                INTEGER NOT NULL,
	updated_at                INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS poojas_date ON poojas(date);
CREATE TABLE IF NOT EXISTS committee (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	role       TEXT NOT NULL,
	location   TEXT NOT NULL DEFAULT '',
	phone      TEXT NOT NULL DEFAULT '',
	created_at INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS gallery (
	id         TEXT PRIMARY KEY,
	url        TEXT NOT NULL,
	type       TEXT NOT NULL,
	name       TEXT NOT NULL DEFAULT '',
	full_path  TEXT NOT NULL DEFAULT '',
	created_at INTEGER NOT NULL
);
`

// Store is the SQLite-backed document store.
type Store struct {
	db        *sql.DB
	logger    *zap.Logger
	publisher Publisher
	now       func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithPublisher sets the receiver of change events.
func WithPublisher(p Publisher) Option {
	return func(s *Store) { s.publisher = p }
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// Open opens (creating if needed) the database at path and applies the schema.
func Open(path string, logger *zap.Logger, opts ...Option) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("sqlite open: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite schema: %w", err)
	}

	s := &Store{db: db, logger: logger, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}

	logger.Info("opened document store",
		zap.String("op", "store.Open"),
		zap.String("path", path),
	)
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) publish(collection, op, id string) {
	if s.publisher == nil {
		return
	}
	s.publisher.Publish(Change{Collection: collection, Op: op, ID: id, At: s.now().UTC()})
}

func newID() string {
	return uuid.NewString()
}

func toUnix(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixNano()
}

func fromUnix(n int64) time.Time {
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(0, n).UTC()
}

// affected maps a zero-row update or delete onto ErrNotFound.
func affected(res sql.Result, err error, what, id string) error {
	if err != nil {
		return fmt.Errorf("%s %s: %w", what, id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s %s: %w", what, id, err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", what, id, ErrNotFound)
	}
	return nil
}
