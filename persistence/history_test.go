package persistence

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleEntry(instruction string, exit int) Entry {
	return Entry{
		Instruction: instruction,
		Mode:        "code",
		Model:       "gpt-3.5-turbo",
		Language:    "python",
		Code:        "print(1+1)",
		Version:     1,
		ExitCode:    exit,
		Stdout:      "2\n",
	}
}

func TestMemoryStoreAppendAndHistory(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, sampleEntry("first", 0)))
	require.NoError(t, store.Append(ctx, sampleEntry("second", 1)))

	entries, err := store.History(ctx, 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "first", entries[0].Instruction)
	assert.Equal(t, "second", entries[1].Instruction)
	assert.NotEmpty(t, entries[0].ID)
	assert.False(t, entries[0].Timestamp.IsZero())

	entries, err = store.History(ctx, 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "second", entries[0].Instruction)

	require.NoError(t, store.Clear(ctx))
	entries, err = store.History(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestMemoryStoreHonorsContext(t *testing.T) {
	store := NewMemoryStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, store.Append(ctx, sampleEntry("x", 0)), context.Canceled)
	_, err := store.History(ctx, 0)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	store, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	entry := sampleEntry("sum two numbers", 0)
	entry.Stderr = ""
	require.NoError(t, store.Append(ctx, entry))
	require.NoError(t, store.Append(ctx, sampleEntry("divide by zero", 1)))

	entries, err := store.History(ctx, 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "sum two numbers", entries[0].Instruction)
	assert.Equal(t, "print(1+1)", entries[0].Code)
	assert.Equal(t, "python", entries[0].Language)
	assert.Equal(t, 0, entries[0].ExitCode)
	assert.Equal(t, 1, entries[1].ExitCode)
}

func TestSQLiteStoreSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	ctx := context.Background()

	store, err := NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Append(ctx, sampleEntry("persisted", 0)))
	require.NoError(t, store.Close())

	reopened, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer reopened.Close()

	entries, err := reopened.History(ctx, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "persisted", entries[0].Instruction)
}

func TestSQLiteStoreLimit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	store, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	for i, name := range []string{"a", "b", "c"} {
		entry := sampleEntry(name, 0)
		entry.Timestamp = base.Add(time.Duration(i) * time.Second)
		require.NoError(t, store.Append(ctx, entry))
	}

	entries, err := store.History(ctx, 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "b", entries[0].Instruction)
	assert.Equal(t, "c", entries[1].Instruction)
}

func TestTranscriptLogWritesNDJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "transcript.ndjson")
	transcript, err := NewTranscriptLog(path)
	require.NoError(t, err)

	transcript.Emit(TranscriptEvent{Type: TranscriptGeneration, Message: "generated 42 bytes"})
	transcript.Emit(TranscriptEvent{Type: TranscriptExecution, Metadata: map[string]interface{}{"exit_code": 0}})
	require.NoError(t, transcript.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var events []TranscriptEvent
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var event TranscriptEvent
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &event))
		events = append(events, event)
	}
	require.NoError(t, scanner.Err())
	require.Len(t, events, 2)
	assert.Equal(t, TranscriptGeneration, events[0].Type)
	assert.False(t, events[0].Timestamp.IsZero())
	assert.Equal(t, TranscriptExecution, events[1].Type)
}

func TestMemoryStoreFoldsExecutionByID(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	entry := sampleEntry("pending", 0)
	entry.ID = "turn-1"
	entry.Stdout = ""
	require.NoError(t, store.Append(ctx, entry))

	entry.ExitCode = 2
	entry.Stderr = "boom"
	require.NoError(t, store.Append(ctx, entry))

	entries, err := store.History(ctx, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 2, entries[0].ExitCode)
	assert.Equal(t, "boom", entries[0].Stderr)
}
