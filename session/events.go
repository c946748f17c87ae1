package session

import "time"

// EventType enumerates turn lifecycle signals the console renders live.
type EventType string

const (
	EventGenerationStart EventType = "generation_start"
	EventGenerationDone  EventType = "generation_done"
	EventExtraction      EventType = "extraction"
	EventInstallStart    EventType = "install_start"
	EventInstallDone     EventType = "install_done"
	EventExecutionStart  EventType = "execution_start"
	EventExecutionDone   EventType = "execution_done"
	EventNotice          EventType = "notice"
	EventTurnError       EventType = "turn_error"
)

// Event describes one turn lifecycle step or warning.
type Event struct {
	Type      EventType
	Timestamp time.Time
	Message   string
	Err       error
	Metadata  map[string]any
}
