package audit

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteSink persists the audit trail in a local SQLite file, separate from
// the primary database so the trail survives a bank-database restore.
type SQLiteSink struct {
	db *sql.DB
}

// OpenSQLiteSink opens (and if needed creates) the trail database at path.
func OpenSQLiteSink(path string) (*SQLiteSink, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit database: %w", err)
	}
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS audit_entries (
			seq           INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp     TEXT NOT NULL,
			actor         TEXT NOT NULL,
			action        TEXT NOT NULL,
			detail        TEXT NOT NULL,
			previous_hash TEXT NOT NULL,
			hash          TEXT NOT NULL UNIQUE
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create audit table: %w", err)
	}
	return &SQLiteSink{db: db}, nil
}

func (s *SQLiteSink) SaveEntry(e *Entry) error {
	_, err := s.db.Exec(`
		INSERT INTO audit_entries (timestamp, actor, action, detail, previous_hash, hash)
		VALUES (?, ?, ?, ?, ?, ?)
	`, e.Timestamp, e.Actor, e.Action, e.Detail, e.PreviousHash, e.Hash)
	if err != nil {
		return fmt.Errorf("failed to save audit entry: %w", err)
	}
	return nil
}

// Entries returns the stored trail in append order, for verification.
func (s *SQLiteSink) Entries() ([]*Entry, error) {
	rows, err := s.db.Query(`
		SELECT timestamp, actor, action, detail, previous_hash, hash
		FROM audit_entries ORDER BY seq
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit entries: %w", err)
	}
	defer rows.Close()

	var out []*Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Timestamp, &e.Actor, &e.Action, &e.Detail, &e.PreviousHash, &e.Hash); err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}

func (s *SQLiteSink) Close() error {
	return s.db.Close()
}
