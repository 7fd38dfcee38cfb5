// Package history keeps the extension's list of generated applications in a
// small SQLite key-value table.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Key is the entry under which the history list is stored.
const Key = "application_history"

type Entry struct {
	ID      string    `json:"id"`
	Title   string    `json:"title"`
	Company string    `json:"company"`
	Date    time.Time `json:"date"`
	PDFURL  string    `json:"pdf_url,omitempty"`
}

type Store struct {
	db *sql.DB
	mu sync.Mutex
}

func Open(path string) (*Store, error) {
	// modernc sqlite takes pragmas in the DSN
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open history store: %w", err)
	}
	db.SetMaxOpenConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to open history store: %w", err)
	}

	if _, err := db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS kv (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL
);`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create history table: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Load returns the history, newest first. It is empty when nothing was saved.
func (s *Store) Load(ctx context.Context) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked(ctx)
}

// Add stamps e with a new id and the current time and puts it at the front.
func (s *Store) Add(ctx context.Context, e Entry) (Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.loadLocked(ctx)
	if err != nil {
		return Entry{}, err
	}

	e.ID = uuid.NewString()
	e.Date = time.Now().UTC()
	entries = append([]Entry{e}, entries...)

	raw, err := json.Marshal(entries)
	if err != nil {
		return Entry{}, fmt.Errorf("failed to encode history: %w", err)
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO kv (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		Key, string(raw),
	); err != nil {
		return Entry{}, fmt.Errorf("failed to save history: %w", err)
	}
	return e, nil
}

func (s *Store) loadLocked(ctx context.Context) ([]Entry, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, Key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return []Entry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}

	var entries []Entry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil, fmt.Errorf("failed to decode history: %w", err)
	}
	if entries == nil {
		entries = []Entry{}
	}
	return entries, nil
}
