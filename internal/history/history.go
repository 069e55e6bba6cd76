// Package history keeps the statements entered in the REPL in a SQLite
// database so they can be recalled in later sessions.
package history

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/sadopc/sqlhint/internal/config"
)

const createTableSQL = `CREATE TABLE IF NOT EXISTS statements (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	text       TEXT NOT NULL,
	dialect    TEXT,
	source     TEXT,
	entered_at DATETIME DEFAULT CURRENT_TIMESTAMP
)`

// Entry is one entered statement.
type Entry struct {
	ID      int64
	Text    string
	Dialect string
	// Source names the schema the statement was completed against.
	Source    string
	EnteredAt time.Time
}

// History is a SQLite-backed statement log.
type History struct {
	db *sql.DB
}

// Open opens (or creates) the history database at path. ":memory:" gives a
// history that lives as long as the History.
func Open(path string) (*History, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, fmt.Errorf("history: create dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("history: open db: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(createTableSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("history: create table: %w", err)
	}

	return &History{db: db}, nil
}

// OpenDefault opens the history database at ConfigDir()/history.db.
func OpenDefault() (*History, error) {
	dir, err := config.ConfigDir()
	if err != nil {
		return nil, fmt.Errorf("history: %w", err)
	}
	return Open(filepath.Join(dir, "history.db"))
}

// Add records a statement. Blank statements and repeats of the latest one
// are skipped. A zero EnteredAt means now.
func (h *History) Add(entry Entry) error {
	text := strings.TrimSpace(entry.Text)
	if text == "" {
		return nil
	}

	var last string
	err := h.db.QueryRow(`SELECT text FROM statements ORDER BY id DESC LIMIT 1`).Scan(&last)
	switch {
	case err == nil && last == text:
		return nil
	case err != nil && !errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("history add: %w", err)
	}

	at := entry.EnteredAt
	if at.IsZero() {
		at = time.Now()
	}
	_, err = h.db.Exec(
		`INSERT INTO statements (text, dialect, source, entered_at) VALUES (?, ?, ?, ?)`,
		text, entry.Dialect, entry.Source, at,
	)
	if err != nil {
		return fmt.Errorf("history add: %w", err)
	}
	return nil
}

// Recent returns up to limit statements, most recent first.
func (h *History) Recent(limit int) ([]Entry, error) {
	rows, err := h.db.Query(
		`SELECT id, text, dialect, source, entered_at
		 FROM statements
		 ORDER BY id DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("history recent: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

// Search returns up to limit statements containing substr, ignoring case,
// most recent first.
func (h *History) Search(substr string, limit int) ([]Entry, error) {
	rows, err := h.db.Query(
		`SELECT id, text, dialect, source, entered_at
		 FROM statements
		 WHERE text LIKE ? ESCAPE '\'
		 ORDER BY id DESC
		 LIMIT ?`,
		"%"+escapeLike(substr)+"%", limit,
	)
	if err != nil {
		return nil, fmt.Errorf("history search: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

// Clear deletes every statement.
func (h *History) Clear() error {
	if _, err := h.db.Exec(`DELETE FROM statements`); err != nil {
		return fmt.Errorf("history clear: %w", err)
	}
	return nil
}

// Close closes the underlying database connection.
func (h *History) Close() error {
	return h.db.Close()
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func scanEntries(rows *sql.Rows) ([]Entry, error) {
	var entries []Entry
	for rows.Next() {
		var (
			e               Entry
			dialect, source sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.Text, &dialect, &source, &e.EnteredAt); err != nil {
			return nil, fmt.Errorf("history scan: %w", err)
		}
		e.Dialect = dialect.String
		e.Source = source.String
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history rows: %w", err)
	}
	return entries, nil
}
