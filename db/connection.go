// Package db opens the SQLite run ledger and applies its embedded schema
// migrations.
package db

import (
	"database/sql"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/teranos/corrfill/errors"
	"github.com/teranos/corrfill/logger"
	"github.com/teranos/corrfill/sym"
)

// SQLiteBusyTimeoutMS is how long a writer waits on a locked database.
// Concurrent batch fills all record into the same ledger.
const SQLiteBusyTimeoutMS = 5000

// Open opens a SQLite database at the specified path with WAL, foreign keys
// and a busy timeout. The parent directory is created if missing.
// If log is provided, logs database operations; otherwise operates silently.
func Open(path string, log *zap.SugaredLogger) (*sql.DB, error) {
	if log != nil {
		log.Debugw("Opening database", logger.FieldFile, path, logger.FieldSymbol, sym.DB)
	}
	if dir := filepath.Dir(path); dir != "." && path != ":memory:" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, errors.Wrapf(err, "failed to create database directory %s", dir)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open database")
	}

	for _, pragma := range []struct{ stmt, what string }{
		// WAL lets the history command read while a batch is writing
		{"PRAGMA journal_mode = WAL", "enable WAL mode"},
		{"PRAGMA foreign_keys = ON", "enable foreign keys"},
		{"PRAGMA busy_timeout = 5000", "set busy timeout"},
	} {
		if _, err := db.Exec(pragma.stmt); err != nil {
			db.Close()
			return nil, errors.Wrapf(err, "failed to %s", pragma.what)
		}
	}

	if log != nil {
		log.Infow("Database opened successfully",
			logger.FieldFile, path,
			logger.FieldSymbol, sym.DB,
			"wal_mode", true,
			"foreign_keys", true,
		)
	}

	return db, nil
}

// OpenWithMigrations opens the database and brings its schema up to date.
func OpenWithMigrations(path string, log *zap.SugaredLogger) (*sql.DB, error) {
	db, err := Open(path, log)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	if err := Migrate(db, log); err != nil {
		db.Close()
		return nil, errors.WithHint(
			errors.Wrapf(err, "migrate %s", path),
			"the ledger can be deleted safely; it only holds run history",
		)
	}
	return db, nil
}
