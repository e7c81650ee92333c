// Package sqlite provides a SQLite-backed implementation of the storage.Store interface.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	sqlitedriver "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/mmynk/creditledger/internal/storage"
)

// Ensure SQLiteStore implements storage.Store
var _ storage.Store = (*SQLiteStore)(nil)

// SQLiteStore implements storage.Store using SQLite.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// New creates a new SQLiteStore with the given database path.
// It creates the parent directories and runs migrations automatically.
func New(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// Pragmas go in the DSN so every pooled connection gets them.
	dsn := dbPath + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteStore{db: db, now: time.Now}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) unixNow() int64 {
	return s.now().Unix()
}

// sqliteCode returns the extended result code of a driver error, or 0.
func sqliteCode(err error) int {
	var serr *sqlitedriver.Error
	if errors.As(err, &serr) {
		return serr.Code()
	}
	return 0
}

// constraintFailed reports whether err is the given constraint violation.
// It accepts the primary SQLITE_CONSTRAINT code too, matching on the message,
// in case extended result codes are not reported.
func constraintFailed(err error, extended int, message string) bool {
	switch sqliteCode(err) {
	case extended:
		return true
	case sqlite3.SQLITE_CONSTRAINT:
		return strings.Contains(err.Error(), message)
	}
	return false
}

func isUniqueViolation(err error) bool {
	return constraintFailed(err, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY, "UNIQUE constraint failed") ||
		constraintFailed(err, sqlite3.SQLITE_CONSTRAINT_UNIQUE, "UNIQUE constraint failed")
}

func isForeignKeyViolation(err error) bool {
	return constraintFailed(err, sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY, "FOREIGN KEY constraint failed")
}

func isCheckViolation(err error) bool {
	return constraintFailed(err, sqlite3.SQLITE_CONSTRAINT_CHECK, "CHECK constraint failed")
}
