package queue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"subsplice/internal/config"
)

// Store persists job history in SQLite. A Store is safe for concurrent use;
// separate processes sharing the file rely on WAL mode and the busy retry.
type Store struct {
	db   *sql.DB
	path string
}

// busy retry schedule for writes that race another process.
const (
	sqliteBusyCode = 5
	busyAttempts   = 5
	busyBaseDelay  = 10 * time.Millisecond
	busyMaxDelay   = 200 * time.Millisecond
)

var connectionPragmas = []string{
	"journal_mode(WAL)",
	"foreign_keys(ON)",
	"busy_timeout(5000)",
}

func ensureContext(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}

func isSQLiteBusy(err error) bool {
	var coded interface{ Code() int }
	if errors.As(err, &coded) {
		return coded.Code()&0xff == sqliteBusyCode
	}
	return err != nil && strings.Contains(err.Error(), "database is locked")
}

// execWithRetry runs a write, backing off while another connection holds
// the write lock past busy_timeout.
func (s *Store) execWithRetry(ctx context.Context, query string, args ...any) (sql.Result, error) {
	ctx = ensureContext(ctx)
	delay := busyBaseDelay
	for attempt := 1; ; attempt++ {
		res, err := s.db.ExecContext(ctx, query, args...)
		if err == nil || !isSQLiteBusy(err) || attempt == busyAttempts {
			return res, err
		}
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
		delay = min(delay*2, busyMaxDelay)
	}
}

// Open initializes or connects to the jobs database under log_dir.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	return OpenPath(cfg.JobsDBPath())
}

// OpenPath opens the database at dbPath, creating the schema when missing.
// Pragmas travel in the DSN so every pooled connection gets them.
func OpenPath(dbPath string) (*Store, error) {
	query := url.Values{}
	for _, p := range connectionPragmas {
		query.Add("_pragma", p)
	}
	db, err := sql.Open("sqlite", "file:"+dbPath+"?"+query.Encode())
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("open sqlite db %s: %w", dbPath, err)
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
