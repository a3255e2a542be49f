package snapshot

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mattn/go-sqlite3"
)

const sqliteSchema = `CREATE TABLE IF NOT EXISTS records (
	position INTEGER PRIMARY KEY,
	id TEXT NOT NULL UNIQUE,
	body TEXT NOT NULL
)`

// SQLite stores a collection in a SQLite database, one row per record.
// Each save replaces every row inside one transaction.
type SQLite[T any] struct {
	path string
	key  func(T) string
}

// NewSQLite returns a SQLite snapshot at path.
func NewSQLite[T any](path string, key func(T) string) *SQLite[T] {
	return &SQLite[T]{path: path, key: key}
}

// Path returns the database file path.
func (s *SQLite[T]) Path() string {
	return s.path
}

func (s *SQLite[T]) open() (*sql.DB, error) {
	db, err := sql.Open("sqlite3", s.path+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, classifySQLiteError("create schema", err)
	}
	return db, nil
}

// Read returns all records in position order.
func (s *SQLite[T]) Read() ([]T, error) {
	if _, err := os.Stat(s.path); errors.Is(err, os.ErrNotExist) {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("stat database: %w", err)
	}

	db, err := s.open()
	if err != nil {
		return nil, err
	}
	defer db.Close()

	rows, err := db.Query(`SELECT id, body FROM records ORDER BY position`)
	if err != nil {
		return nil, classifySQLiteError("query records", err)
	}
	defer rows.Close()

	var items []T
	for rows.Next() {
		var id, body string
		if err := rows.Scan(&id, &body); err != nil {
			return nil, classifySQLiteError("scan record", err)
		}
		var item T
		if err := json.Unmarshal([]byte(body), &item); err != nil {
			return nil, fmt.Errorf("%w: record %s: %v", ErrCorrupt, id, err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, classifySQLiteError("read records", err)
	}
	return items, nil
}

// Write replaces all stored records with items.
func (s *SQLite[T]) Write(items []T) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}

	db, err := s.open()
	if err != nil {
		return err
	}
	defer db.Close()

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM records`); err != nil {
		return fmt.Errorf("clear records: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO records (position, id, body) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, item := range items {
		body, err := json.Marshal(item)
		if err != nil {
			return fmt.Errorf("encode item %d: %w", i, err)
		}
		if _, err := stmt.Exec(i, s.key(item), string(body)); err != nil {
			return fmt.Errorf("insert item %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Quarantine renames the database to <path>.corrupt-<nanos>.
func (s *SQLite[T]) Quarantine() (string, error) {
	target := fmt.Sprintf("%s.corrupt-%d", s.path, time.Now().UnixNano())
	if err := os.Rename(s.path, target); err != nil {
		return "", fmt.Errorf("quarantine database: %w", err)
	}
	return target, nil
}

func classifySQLiteError(action string, err error) error {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		if sqliteErr.Code == sqlite3.ErrNotADB || sqliteErr.Code == sqlite3.ErrCorrupt {
			return fmt.Errorf("%w: %s: %v", ErrCorrupt, action, err)
		}
	}
	return fmt.Errorf("%s: %w", action, err)
}
