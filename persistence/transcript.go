package persistence

import (
	"encoding/json"
	"os"
	"sync"
	"time"
)

// TranscriptEventType categorizes transcript records.
type TranscriptEventType string

const (
	TranscriptGeneration TranscriptEventType = "generation"
	TranscriptExecution  TranscriptEventType = "execution"
	TranscriptInstall    TranscriptEventType = "install"
	TranscriptCommand    TranscriptEventType = "command"
	TranscriptError      TranscriptEventType = "error"
)

// TranscriptEvent is one structured record in the session transcript.
type TranscriptEvent struct {
	Type      TranscriptEventType    `json:"type"`
	Message   string                 `json:"message,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// TranscriptLog writes events as newline-delimited JSON to a file so external
// tools can tail the stream in real time.
type TranscriptLog struct {
	path string
	file *os.File
	enc  *json.Encoder
	mu   sync.Mutex
}

// NewTranscriptLog opens (or creates) the transcript file.
func NewTranscriptLog(path string) (*TranscriptLog, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	return &TranscriptLog{
		path: path,
		file: f,
		enc:  json.NewEncoder(f),
	}, nil
}

// Emit writes the JSON record.
func (t *TranscriptLog) Emit(event TranscriptEvent) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.enc == nil {
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	_ = t.enc.Encode(event)
}

// Close releases the file handle.
func (t *TranscriptLog) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.file != nil {
		return t.file.Close()
	}
	return nil
}
