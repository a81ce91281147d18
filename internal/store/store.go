package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"

	"gndmatch/internal/config"
	"gndmatch/internal/logging"
)

// Store manages the record database backed by SQLite.
type Store struct {
	db     *sql.DB
	path   string
	lock   *flock.Flock
	logger *slog.Logger
}

// Options controls how Open treats a missing database.
type Options struct {
	// CreateSchema creates the database and its schema when absent. Commands
	// that only read existing records leave it false so a missing database is
	// reported instead of silently created empty.
	CreateSchema bool
	Logger       *slog.Logger
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

// Open acquires the run lock and connects to the record database configured
// in cfg.Store. Failures are reported as ErrStoreUnavailable, or ErrLocked when
// another run holds the database.
func Open(ctx context.Context, cfg *config.Config, opts Options) (*Store, error) {
	ctx = ensureContext(ctx)
	if cfg == nil {
		return nil, fmt.Errorf("%w: configuration is required", ErrStoreUnavailable)
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logging.NewComponentLogger(logger, "store")

	dbPath := cfg.Store.Path
	if !opts.CreateSchema {
		if _, err := os.Stat(dbPath); err != nil {
			return nil, fmt.Errorf("%w: database %s: %w", ErrStoreUnavailable, dbPath, err)
		}
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("%w: ensure directories: %w", ErrStoreUnavailable, err)
	}

	lock := flock.New(dbPath + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("%w: acquire lock: %w", ErrStoreUnavailable, err)
	}
	if !locked {
		return nil, fmt.Errorf("%w: %s", ErrLocked, lock.Path())
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("%w: open sqlite db: %w", ErrStoreUnavailable, err)
	}
	// Pragmas are per connection; a single connection keeps them in force and
	// serialises every statement of the run.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	store := &Store{db: db, path: dbPath, lock: lock, logger: logger}

	for _, pragma := range pragmas(cfg.Store.CacheSize) {
		if err := retryOnBusy(ctx, func() error {
			_, execErr := db.ExecContext(ctx, pragma)
			return execErr
		}); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("%w: apply pragma %q: %w", ErrStoreUnavailable, pragma, err)
		}
	}

	if err := store.initSchema(ctx, opts.CreateSchema); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	logger.Debug("record store opened", logging.String("path", dbPath))
	return store, nil
}

func pragmas(cacheSize int) []string {
	// locking_mode must precede journal_mode so WAL runs without shared memory.
	return []string{
		"PRAGMA locking_mode = EXCLUSIVE",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = OFF",
		"PRAGMA temp_store = MEMORY",
		fmt.Sprintf("PRAGMA cache_size = %d", cacheSize),
		"PRAGMA foreign_keys = ON",
	}
}

// Path returns the database file location.
func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// Close closes the database connection and releases the run lock.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	err := s.db.Close()
	if s.lock != nil {
		if unlockErr := s.lock.Unlock(); unlockErr != nil && err == nil {
			err = unlockErr
		}
	}
	s.db = nil
	return err
}

// withTx runs fn inside a transaction, committing on success.
func (s *Store) withTx(ctx context.Context, fn func(*sql.Tx) error) error {
	ctx = ensureContext(ctx)
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
