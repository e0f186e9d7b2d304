// Package sqlite implements the tracker's persistence, full-text search,
// NDJSON interchange, and conflict-record storage on top of a single
// SQLite file, using the pure-Go ncruces/go-sqlite3 driver (no cgo).
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"

	sqlite3 "github.com/ncruces/go-sqlite3"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
	"github.com/tetratelabs/wazero"

	"github.com/opensrc/tracker/internal/tracker"
)

// Store wraps a SQLite database connection and implements the
// engine's persistence, search, export/import, and conflict operations.
type Store struct {
	db     *sql.DB
	path   string
	closed atomic.Bool
}

func setupWASMCache() {
	var cache wazero.CompilationCache
	if dir, err := os.UserCacheDir(); err == nil {
		dir = filepath.Join(dir, "tracker", "wasm")
		if c, err := wazero.NewCompilationCacheWithDir(dir); err == nil {
			cache = c
		}
	}
	if cache == nil {
		cache = wazero.NewCompilationCache()
	}
	sqlite3.RuntimeConfig = wazero.NewRuntimeConfig().WithCompilationCache(cache)
}

func init() {
	setupWASMCache()
}

// Open opens (creating if absent) the SQLite database at path, applies
// pragmas for WAL durability and foreign-key enforcement, and runs
// migrations. path must be a plain filesystem path; the engine is
// single-user and single-connection, so in-memory/shared-cache modes are
// not exposed here.
func Open(ctx context.Context, path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, tracker.NewError(tracker.KindIO, "Open", fmt.Errorf("create db dir: %w", err))
	}

	connStr := "file:" + path +
		"?_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)&_pragma=busy_timeout(5000)&_time_format=sqlite"

	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, tracker.NewError(tracker.KindIO, "Open", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, tracker.NewError(tracker.KindIO, "Open", err)
	}

	s := &Store{db: db, path: path}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate(ctx context.Context) error {
	var current int
	row := s.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_version`)
	if err := row.Scan(&current); err != nil {
		// schema_version may not exist yet on a brand-new database.
		current = 0
	}
	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		if _, err := s.db.ExecContext(ctx, m.sql); err != nil {
			return tracker.NewError(tracker.KindIntegrity, "migrate", fmt.Errorf("version %d: %w", m.version, err))
		}
	}
	return nil
}

// Close releases the underlying *sql.DB. Safe to call more than once.
func (s *Store) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	return s.db.Close()
}

// Path returns the filesystem path the store was opened with.
func (s *Store) Path() string { return s.path }

// conn acquires a dedicated connection for callers that need to run raw
// BEGIN IMMEDIATE transactions on a single connection, mirroring the
// teacher's pattern for serializing ID-generation races.
func (s *Store) conn(ctx context.Context) (*sql.Conn, error) {
	c, err := s.db.Conn(ctx)
	if err != nil {
		return nil, tracker.NewError(tracker.KindIO, "conn", err)
	}
	return c, nil
}
