// Package store persists the last frame every applet pushed, so the panel
// can come back up showing what it showed before a server restart.
package store

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// Frame kinds persisted per applet slot.
const (
	KindGrid = "grid"
	KindBar  = "bar"
)

// Frame is one persisted buffer push.
type Frame struct {
	AppNum    uint8
	Kind      string
	Payload   []byte
	UpdatedAt time.Time
}

// Store is a SQLite-backed frame archive keyed by (app_num, kind). Writes
// overwrite; only the most recent push per slot and kind is kept.
type Store struct {
	mu sync.Mutex
	db *sql.DB
}

// Open creates or opens the database at path and ensures the schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}

	const schema = `
		CREATE TABLE IF NOT EXISTS frames (
			app_num    INTEGER NOT NULL,
			kind       TEXT NOT NULL,
			payload    BLOB NOT NULL,
			updated_at INTEGER NOT NULL,
			PRIMARY KEY (app_num, kind)
		)`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: create schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Save upserts the frame for (app, kind).
func (s *Store) Save(app uint8, kind string, payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	const q = `
		INSERT INTO frames (app_num, kind, payload, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (app_num, kind) DO UPDATE SET
			payload = excluded.payload,
			updated_at = excluded.updated_at`
	if _, err := s.db.Exec(q, app, kind, payload, time.Now().Unix()); err != nil {
		return fmt.Errorf("store: save frame %d/%s: %w", app, kind, err)
	}
	return nil
}

// Load returns the stored payload for (app, kind), reporting presence.
func (s *Store) Load(app uint8, kind string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var payload []byte
	err := s.db.QueryRow(
		`SELECT payload FROM frames WHERE app_num = ? AND kind = ?`, app, kind,
	).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("store: load frame %d/%s: %w", app, kind, err)
	}
	return payload, true, nil
}

// LoadAll returns every persisted frame, newest update times included.
func (s *Store) LoadAll() ([]Frame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(
		`SELECT app_num, kind, payload, updated_at FROM frames ORDER BY app_num, kind`)
	if err != nil {
		return nil, fmt.Errorf("store: load frames: %w", err)
	}
	defer rows.Close()

	var frames []Frame
	for rows.Next() {
		var f Frame
		var ts int64
		if err := rows.Scan(&f.AppNum, &f.Kind, &f.Payload, &ts); err != nil {
			return nil, fmt.Errorf("store: scan frame: %w", err)
		}
		f.UpdatedAt = time.Unix(ts, 0)
		frames = append(frames, f)
	}
	return frames, rows.Err()
}

// Clear drops all persisted frames.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.db.Exec(`DELETE FROM frames`); err != nil {
		return fmt.Errorf("store: clear: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}
