// Package storage is the relational backend behind the resource gateways.
// SQLite serves the local single-user setup, PostgreSQL the hosted server.
// Every query is scoped to the caller carried by the context.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/nikbrunner/marks/internal/gateway"
	"github.com/nikbrunner/marks/internal/logger"
	"github.com/nikbrunner/marks/internal/model"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Options selects and locates the database.
type Options struct {
	Driver string
	Path   string // SQLite database file
	URL    string // PostgreSQL connection URL
	Logger logger.Logger
}

// DB owns the connection pool and hands out gateways backed by it.
type DB struct {
	db     *sql.DB
	driver string
	path   string
	log    logger.Logger

	mu    sync.Mutex
	last  time.Time
	clock func() time.Time
}

// Open connects to the configured database and applies pending migrations.
func Open(opts Options) (*DB, error) {
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}

	var (
		db  *sql.DB
		err error
	)
	switch opts.Driver {
	case DriverSQLite, "":
		opts.Driver = DriverSQLite
		db, err = openSQLite(opts.Path)
	case DriverPostgres:
		db, err = openPostgres(opts.URL)
	default:
		return nil, fmt.Errorf("unknown database driver %q", opts.Driver)
	}
	if err != nil {
		return nil, err
	}

	return &DB{
		db:     db,
		driver: opts.Driver,
		path:   opts.Path,
		log:    log.With(logger.String("component", "storage")),
		clock:  time.Now,
	}, nil
}

// Path returns the SQLite database file, or "" for PostgreSQL.
func (s *DB) Path() string {
	return s.path
}

// Close closes the database connection.
func (s *DB) Close() error {
	return s.db.Close()
}

// Gateway returns the resource gateways backed by s.
func (s *DB) Gateway() gateway.Gateway {
	return gateway.Gateway{
		Bookmarks:   &bookmarkRepository{s},
		Collections: &collectionRepository{s},
		Tags:        &tagRepository{s},
	}
}

// Ping checks that the database is reachable.
func (s *DB) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// DefaultSQLitePath returns the default database path: ~/.config/marks/marks.db
func DefaultSQLitePath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".config", "marks", "marks.db"), nil
}

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// rebind rewrites ? placeholders for drivers that number them.
func (s *DB) rebind(query string) string {
	if s.driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// withTx runs fn in a transaction, committing only when fn succeeds.
func (s *DB) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// now returns a strictly increasing UTC timestamp so creation order is
// total even for writes within the same clock tick.
func (s *DB) now() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.clock().UTC()
	if !t.After(s.last) {
		t = s.last.Add(time.Microsecond)
	}
	s.last = t
	return t
}

// fail passes taxonomy errors through and turns anything else into a
// logged server error.
func (s *DB) fail(op string, err error) error {
	var me *model.Error
	if errors.As(err, &me) {
		return err
	}
	s.log.Error("storage operation failed", logger.String("op", op), logger.Error(err))
	return model.NewServerError(fmt.Errorf("%s: %w", op, err))
}

// Timestamps are stored as fixed-width UTC text so lexical order is
// chronological in both dialects.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(timeLayout, s)
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return formatTime(*t)
}

func scanNullTime(ns sql.NullString) (*time.Time, error) {
	if !ns.Valid {
		return nil, nil
	}
	t, err := parseTime(ns.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
