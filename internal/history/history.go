// Package history persists sessions and their per-image outcomes to a
// sqlite database. Filesystem moves are irreversible, so the journal is the
// durable record of what moved where; the `textsort history` command reads
// it back.
package history

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/mhaussmann/textsort/internal/session"
)

// Store wraps the sqlite session journal.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the journal at path and bootstraps the
// schema. Use ":memory:" for an ephemeral store.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		started_at TEXT NOT NULL,
		finished_at TEXT,
		input_dir TEXT NOT NULL,
		output_dir TEXT,
		threshold INTEGER NOT NULL,
		state TEXT NOT NULL,
		processed INTEGER NOT NULL DEFAULT 0,
		contains_text INTEGER NOT NULL DEFAULT 0,
		no_text INTEGER NOT NULL DEFAULT 0,
		errors INTEGER NOT NULL DEFAULT 0
	);
	CREATE TABLE IF NOT EXISTS images (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id INTEGER NOT NULL REFERENCES sessions(id),
		path TEXT NOT NULL,
		classification TEXT NOT NULL,
		char_count INTEGER NOT NULL DEFAULT 0,
		moved_to TEXT,
		duplicate INTEGER NOT NULL DEFAULT 0,
		error TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_images_session ON images(session_id);`

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create history schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// BeginSession inserts a new running session row and returns its id.
func (s *Store) BeginSession(inputDir, outputDir string, threshold int) (int64, error) {
	res, err := s.db.Exec(
		`INSERT INTO sessions (started_at, input_dir, output_dir, threshold, state)
		 VALUES (?, ?, ?, ?, ?)`,
		time.Now().Format(time.RFC3339), inputDir, outputDir, threshold, session.Running.String(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to record session start: %w", err)
	}
	return res.LastInsertId()
}

// RecordImage journals one finished image record.
func (s *Store) RecordImage(sessionID int64, rec session.ImageRecord) error {
	_, err := s.db.Exec(
		`INSERT INTO images (session_id, path, classification, char_count, moved_to, duplicate, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		sessionID, rec.Path, rec.Classification.String(), rec.CharCount,
		rec.MovedTo, rec.Duplicate, rec.Err,
	)
	if err != nil {
		return fmt.Errorf("failed to record image outcome: %w", err)
	}
	return nil
}

// FinishSession stamps the session row with its terminal state and counts.
func (s *Store) FinishSession(sessionID int64, state session.State, p session.Progress) error {
	_, err := s.db.Exec(
		`UPDATE sessions
		 SET finished_at = ?, state = ?, processed = ?, contains_text = ?, no_text = ?, errors = ?
		 WHERE id = ?`,
		time.Now().Format(time.RFC3339), state.String(),
		p.Processed, p.ContainsText, p.NoText, p.Errors, sessionID,
	)
	if err != nil {
		return fmt.Errorf("failed to record session end: %w", err)
	}
	return nil
}

// SessionRow is one journaled session.
type SessionRow struct {
	ID           int64
	StartedAt    string
	FinishedAt   string
	InputDir     string
	OutputDir    string
	Threshold    int
	State        string
	Processed    int
	ContainsText int
	NoText       int
	Errors       int
}

// Sessions returns the most recent sessions, newest first.
func (s *Store) Sessions(limit int) ([]SessionRow, error) {
	rows, err := s.db.Query(
		`SELECT id, started_at, COALESCE(finished_at, ''), input_dir, COALESCE(output_dir, ''),
		        threshold, state, processed, contains_text, no_text, errors
		 FROM sessions ORDER BY id DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	var out []SessionRow
	for rows.Next() {
		var r SessionRow
		if err := rows.Scan(&r.ID, &r.StartedAt, &r.FinishedAt, &r.InputDir, &r.OutputDir,
			&r.Threshold, &r.State, &r.Processed, &r.ContainsText, &r.NoText, &r.Errors); err != nil {
			return nil, fmt.Errorf("failed to scan session row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// ImageRow is one journaled image outcome.
type ImageRow struct {
	Path           string
	Classification string
	CharCount      int
	MovedTo        string
	Duplicate      bool
	Error          string
}

// Images returns the image outcomes of one session in insertion order.
func (s *Store) Images(sessionID int64) ([]ImageRow, error) {
	rows, err := s.db.Query(
		`SELECT path, classification, char_count, COALESCE(moved_to, ''), duplicate, COALESCE(error, '')
		 FROM images WHERE session_id = ? ORDER BY id`, sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query images: %w", err)
	}
	defer rows.Close()

	var out []ImageRow
	for rows.Next() {
		var r ImageRow
		if err := rows.Scan(&r.Path, &r.Classification, &r.CharCount, &r.MovedTo, &r.Duplicate, &r.Error); err != nil {
			return nil, fmt.Errorf("failed to scan image row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
