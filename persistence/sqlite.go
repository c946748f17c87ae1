package persistence

import (
	"context"
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore persists history in a SQLite database so entries survive across
// sessions.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens/creates the database at dbPath.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}
	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS history (
		id TEXT PRIMARY KEY,
		timestamp TIMESTAMP NOT NULL,
		instruction TEXT NOT NULL,
		prompt TEXT,
		mode TEXT,
		model TEXT,
		os TEXT,
		language TEXT,
		code TEXT,
		version INTEGER,
		exit_code INTEGER,
		stdout TEXT,
		stderr TEXT,
		duration_ms INTEGER
	);
	CREATE INDEX IF NOT EXISTS idx_history_timestamp ON history(timestamp);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Append inserts one turn.
func (s *SQLiteStore) Append(ctx context.Context, entry Entry) error {
	stampEntry(&entry)
	query := `
	INSERT INTO history (
		id, timestamp, instruction, prompt, mode, model, os, language,
		code, version, exit_code, stdout, stderr, duration_ms
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		exit_code=excluded.exit_code,
		stdout=excluded.stdout,
		stderr=excluded.stderr,
		duration_ms=excluded.duration_ms
	`
	_, err := s.db.ExecContext(ctx, query,
		entry.ID,
		entry.Timestamp,
		entry.Instruction,
		entry.Prompt,
		entry.Mode,
		entry.Model,
		entry.OS,
		entry.Language,
		entry.Code,
		entry.Version,
		entry.ExitCode,
		entry.Stdout,
		entry.Stderr,
		entry.DurationMS,
	)
	return err
}

// History returns the most recent entries, oldest first. A non-positive limit
// returns everything.
func (s *SQLiteStore) History(ctx context.Context, limit int) ([]Entry, error) {
	query := `SELECT id, timestamp, instruction, prompt, mode, model, os, language,
		code, version, exit_code, stdout, stderr, duration_ms
		FROM history ORDER BY timestamp DESC, id DESC`
	var rows *sql.Rows
	var err error
	if limit > 0 {
		rows, err = s.db.QueryContext(ctx, query+" LIMIT ?", limit)
	} else {
		rows, err = s.db.QueryContext(ctx, query)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	entries, err := scanEntries(rows)
	if err != nil {
		return nil, err
	}
	// Reverse the DESC page so callers always read oldest first.
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	return entries, nil
}

// Clear removes every recorded turn.
func (s *SQLiteStore) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM history`)
	return err
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func scanEntries(rows *sql.Rows) ([]Entry, error) {
	entries := make([]Entry, 0)
	for rows.Next() {
		var entry Entry
		err := rows.Scan(
			&entry.ID,
			&entry.Timestamp,
			&entry.Instruction,
			&entry.Prompt,
			&entry.Mode,
			&entry.Model,
			&entry.OS,
			&entry.Language,
			&entry.Code,
			&entry.Version,
			&entry.ExitCode,
			&entry.Stdout,
			&entry.Stderr,
			&entry.DurationMS,
		)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
