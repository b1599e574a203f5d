// Package db provides the SQLite connection used by the default row-store
// and master-store implementations (internal/rowstore, internal/masterstore)
// and by the LLMCache (internal/llmconsensus).
//
// sqlite-vec is registered globally so a future embedding-similarity NER
// boost (SPEC_FULL §3) can use vec0 without a second connection path.
package db

import (
	"database/sql"
	"os"
	"path/filepath"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/sbvh/collegematch/internal/matcherr"
)

func init() {
	sqlite_vec.Auto()
}

const (
	// JournalMode enables concurrent reads during writes.
	JournalMode = "WAL"

	// BusyTimeoutMS sets how long to wait for locks before SQLITE_BUSY.
	BusyTimeoutMS = 5000
)

// Open opens a SQLite database at path with the settings the matching core
// relies on: WAL journaling, foreign keys on, a busy timeout so concurrent
// workers (spec.md §5) don't immediately fail on lock contention.
func Open(path string, log *zap.SugaredLogger) (*sql.DB, error) {
	if log != nil {
		log.Debugw("opening database", "path", path)
	}

	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, matcherr.Wrapf(err, "create database directory: %s", dir)
		}
	}

	conn, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, matcherr.Wrapf(err, "open database at %s", path)
	}

	if _, err := conn.Exec("PRAGMA journal_mode = " + JournalMode); err != nil {
		conn.Close()
		return nil, matcherr.Wrapf(err, "enable %s journal mode for %s", JournalMode, path)
	}
	if _, err := conn.Exec("PRAGMA foreign_keys = ON"); err != nil {
		conn.Close()
		return nil, matcherr.Wrapf(err, "enable foreign keys for %s", path)
	}
	if _, err := conn.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		conn.Close()
		return nil, matcherr.Wrapf(err, "set busy timeout for %s", path)
	}

	if log != nil {
		log.Infow("database opened", "path", path)
	}
	return conn, nil
}
