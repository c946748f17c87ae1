package persistence

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Entry is one completed turn: the instruction, the artifact it produced, and
// how execution went. Entries round-trip instruction text, code body plus
// language, and exit status.
type Entry struct {
	ID          string    `json:"id"`
	Timestamp   time.Time `json:"timestamp"`
	Instruction string    `json:"instruction"`
	Prompt      string    `json:"prompt,omitempty"`
	Mode        string    `json:"mode"`
	Model       string    `json:"model"`
	OS          string    `json:"os,omitempty"`
	Language    string    `json:"language"`
	Code        string    `json:"code"`
	Version     int       `json:"version,omitempty"`
	ExitCode    int       `json:"exit_code"`
	Stdout      string    `json:"stdout,omitempty"`
	Stderr      string    `json:"stderr,omitempty"`
	DurationMS  int64     `json:"duration_ms,omitempty"`
}

// HistoryStore is a durable append sink for completed turns.
type HistoryStore interface {
	Append(ctx context.Context, entry Entry) error
	History(ctx context.Context, limit int) ([]Entry, error)
	Clear(ctx context.Context) error
	Close() error
}

// MemoryStore keeps history in process memory. Useful for tests and for
// running without a writable config directory.
type MemoryStore struct {
	mu      sync.RWMutex
	entries []Entry
}

// NewMemoryStore builds an empty in-memory history.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Append records one turn. Re-appending an existing ID folds the execution
// outcome into the earlier record, mirroring the SQLite upsert.
func (s *MemoryStore) Append(ctx context.Context, entry Entry) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	stampEntry(&entry)
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.entries {
		if s.entries[i].ID == entry.ID {
			s.entries[i].ExitCode = entry.ExitCode
			s.entries[i].Stdout = entry.Stdout
			s.entries[i].Stderr = entry.Stderr
			s.entries[i].DurationMS = entry.DurationMS
			return nil
		}
	}
	s.entries = append(s.entries, entry)
	return nil
}

// History returns the most recent entries, oldest first. A non-positive limit
// returns everything.
func (s *MemoryStore) History(ctx context.Context, limit int) ([]Entry, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	entries := s.entries
	if limit > 0 && len(entries) > limit {
		entries = entries[len(entries)-limit:]
	}
	out := make([]Entry, len(entries))
	copy(out, entries)
	return out, nil
}

// Clear drops all recorded turns.
func (s *MemoryStore) Clear(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = nil
	return nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error { return nil }

func stampEntry(entry *Entry) {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}
}
