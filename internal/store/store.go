// Package store wraps the single-file SQLite database holding the item-name
// table and its metadata table.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a primary-key fetch or metadata lookup matches
// no row.
var ErrNotFound = errors.New("store: row not found")

// MetaKeyNumRows is the metadata key under which the cached row count of the
// data table is persisted.
const MetaKeyNumRows = "num_rows"

// Store is an exclusively-owned handle to one SQLite database file.
// It is not safe for concurrent use.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens (or creates) the database file at path and ensures the metadata
// table exists.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("store: %s: %w", pragma, err)
		}
	}

	if _, err := db.Exec("CREATE TABLE IF NOT EXISTS metadata (key TEXT PRIMARY KEY, value TEXT)"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: create metadata table: %w", err)
	}

	return &Store{db: db, path: path}, nil
}

// Remove deletes the database file at path along with its WAL sidecar files.
// Missing files are not an error.
func Remove(path string) error {
	for _, p := range []string{path, path + "-wal", path + "-shm"} {
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("store: remove %s: %w", p, err)
		}
	}
	return nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// Path returns the database file path this store was opened with.
func (s *Store) Path() string { return s.path }

// CreateTable creates the data table with an auto-assigned integer primary
// key and one text column. Keys are contiguous from 1 in insertion order.
func (s *Store) CreateTable(ctx context.Context, table, column string) error {
	q := fmt.Sprintf("CREATE TABLE %s (id INTEGER PRIMARY KEY, %s TEXT)",
		quoteIdent(table), quoteIdent(column))
	if _, err := s.db.ExecContext(ctx, q); err != nil {
		return fmt.Errorf("store: create table %s: %w", table, err)
	}
	return nil
}

// Append inserts values as new rows at the end of the data table, all within
// a single transaction.
func (s *Store) Append(ctx context.Context, table, column string, values []string) error {
	if len(values) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin append: %w", err)
	}
	defer tx.Rollback()

	q := fmt.Sprintf("INSERT INTO %s (%s) VALUES (?)", quoteIdent(table), quoteIdent(column))
	stmt, err := tx.PrepareContext(ctx, q)
	if err != nil {
		return fmt.Errorf("store: prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, v := range values {
		if _, err := stmt.ExecContext(ctx, v); err != nil {
			return fmt.Errorf("store: insert into %s: %w", table, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: commit append: %w", err)
	}
	return nil
}

// Count runs a full COUNT(*) over the data table.
func (s *Store) Count(ctx context.Context, table string) (int64, error) {
	var n int64
	q := fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteIdent(table))
	if err := s.db.QueryRowContext(ctx, q).Scan(&n); err != nil {
		return 0, fmt.Errorf("store: count %s: %w", table, err)
	}
	return n, nil
}

// Get fetches the text value of the single row with the given primary key.
// Returns ErrNotFound if no such row exists or its value is NULL.
func (s *Store) Get(ctx context.Context, table, column string, id int64) (string, error) {
	q := fmt.Sprintf("SELECT %s FROM %s WHERE id = ?", quoteIdent(column), quoteIdent(table))
	var v sql.NullString
	err := s.db.QueryRowContext(ctx, q, id).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("store: get %s[%d]: %w", table, id, err)
	}
	if !v.Valid {
		return "", ErrNotFound
	}
	return v.String, nil
}

// GetMeta reads a metadata value. Returns ErrNotFound if the key is absent.
func (s *Store) GetMeta(ctx context.Context, key string) (string, error) {
	var v string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM metadata WHERE key = ?", key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("store: get metadata %q: %w", key, err)
	}
	return v, nil
}

// PutMeta writes a metadata value, replacing any previous value for the key.
func (s *Store) PutMeta(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, "INSERT OR REPLACE INTO metadata (key, value) VALUES (?, ?)", key, value)
	if err != nil {
		return fmt.Errorf("store: put metadata %q: %w", key, err)
	}
	return nil
}

// DeleteMeta removes a metadata entry. Deleting an absent key is not an error.
func (s *Store) DeleteMeta(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM metadata WHERE key = ?", key); err != nil {
		return fmt.Errorf("store: delete metadata %q: %w", key, err)
	}
	return nil
}

// quoteIdent quotes a SQL identifier. Table and column names come from
// configuration, not from the data path, but they still must not break the
// statement when they contain reserved words or quotes.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
