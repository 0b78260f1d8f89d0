package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"
)

// PlaceholderFunc generates parameter placeholders for different SQL dialects.
type PlaceholderFunc func(n int) string

// Store provides shared database functionality for the job, operation, usage
// and role-limit DAOs. It is constructed once and passed explicitly; there is
// no ambient connection state.
type Store struct {
	db     *sql.DB
	driver string
	ph     PlaceholderFunc
	logger *slog.Logger
	now    func() time.Time
}

// New wraps an open connection for the given driver ("postgres" or
// "sqlite3").
func New(db *sql.DB, driverName string, logger *slog.Logger) *Store {
	var ph PlaceholderFunc
	switch driverName {
	case "postgres":
		ph = func(n int) string { return fmt.Sprintf("$%d", n) }
	default:
		ph = func(n int) string { return "?" }
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		db:     db,
		driver: driverName,
		ph:     ph,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// DB returns the underlying connection.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// placeholders returns a comma-separated list of n placeholders starting at
// position start.
func (s *Store) placeholders(start, n int) string {
	out := ""
	for i := 0; i < n; i++ {
		if i > 0 {
			out += ", "
		}
		out += s.ph(start + i)
	}
	return out
}

// withTx runs fn inside a transaction, rolling back on error.
func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			s.logger.Error("rollback failed", "error", rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
