package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// Store persists run history in SQLite.
type Store struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

func ensureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code()&0xff == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}

func (s *Store) execWithRetry(ctx context.Context, query string, args ...any) (sql.Result, error) {
	ctx = ensureContext(ctx)
	var (
		res     sql.Result
		execErr error
	)
	if err := retryOnBusy(ctx, func() error {
		res, execErr = s.db.ExecContext(ctx, query, args...)
		return execErr
	}); err != nil {
		return nil, err
	}
	return res, nil
}

// Open initializes or connects to the journal database at path.
func Open(path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("journal path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create journal dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	// Pragmas are per connection; a single connection keeps them in force.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}
	store := &Store{db: db, path: path, now: time.Now}
	if err := store.applyMigrations(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Close releases the database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// timeLayout is fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	t, err := time.Parse(timeLayout, value)
	if err != nil {
		return time.Time{}
	}
	return t
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
