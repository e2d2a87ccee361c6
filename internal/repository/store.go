package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/digkill/TGUpdateStore/internal/database"
)

// Executor is the part of *sql.DB and *sql.Tx the store needs.
type Executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store is the storage context every upsert and query runs against. All rows
// it writes or reads belong to one bot partition. It keeps no state besides
// the executor handle and is safe for concurrent use when the executor is.
type Store struct {
	db      Executor
	dialect database.Dialect
	tables  database.Tables
	botID   int64
	now     func() time.Time
}

type Option func(*Store)

// WithClock overrides the time source used for created_at/updated_at stamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

func NewStore(db Executor, dialect database.Dialect, tables database.Tables, botID int64, opts ...Option) *Store {
	if sqlDB, ok := db.(*sql.DB); ok && sqlDB == nil {
		db = nil
	}
	s := &Store{
		db:      db,
		dialect: dialect,
		tables:  tables,
		botID:   botID,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// WithExecutor returns a copy of the store bound to exec, typically a *sql.Tx
// owned by a caller that wants a whole chain to commit or roll back together.
func (s *Store) WithExecutor(exec Executor) *Store {
	cp := *s
	cp.db = exec
	if tx, ok := exec.(*sql.Tx); ok && tx == nil {
		cp.db = nil
	}
	return &cp
}

func (s *Store) BotID() int64 {
	return s.botID
}

func (s *Store) Tables() database.Tables {
	return s.tables
}

// Connected reports whether the store has an executor.
func (s *Store) Connected() bool {
	return s != nil && s.db != nil
}

func (s *Store) checkConnected() error {
	if !s.Connected() {
		return ErrNotConnected
	}
	return nil
}

func (s *Store) timestamp() string {
	return database.FormatTime(s.now())
}

func (s *Store) orNow(t time.Time) time.Time {
	if t.IsZero() {
		return s.now()
	}
	return t
}

// row collects column/value pairs so that statement text and bind order can
// never drift apart.
type row struct {
	cols []string
	args []any
}

func (r *row) set(col string, v any) {
	r.cols = append(r.cols, col)
	r.args = append(r.args, v)
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullInt64(v int64) any {
	if v == 0 {
		return nil
	}
	return v
}
