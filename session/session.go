package session

import (
	"runtime"
	"strings"

	"github.com/lexcodex/incant/extract"
	"github.com/lexcodex/incant/llm"
)

// State names the controller's position in the turn state machine.
type State string

const (
	StateIdle                 State = "idle"
	StateAwaitingGeneration   State = "awaiting_generation"
	StateAwaitingConfirmation State = "awaiting_confirmation"
	StateExecuting            State = "executing"
	StateDispatchingCommand   State = "dispatching_command"
)

// Session is the process-scoped mutable state of one interactive session:
// current mode, model, language, and the most recent artifact (the target of
// /save, /edit, and /execute). History lives behind the persistence store,
// not here.
type Session struct {
	Mode     llm.Mode
	Model    string
	Language string
	OS       string

	state      State
	artifact   *extract.Artifact
	lastStderr string
}

// NewSession builds an idle session from the startup defaults.
func NewSession(mode llm.Mode, model, language string) *Session {
	if model == "" {
		model = "gpt-3.5-turbo"
	}
	if language == "" {
		language = "python"
	}
	if mode == "" {
		mode = llm.ModeCode
	}
	return &Session{
		Mode:     mode,
		Model:    model,
		Language: strings.ToLower(language),
		OS:       HostOS(),
		state:    StateIdle,
	}
}

// State reports the current state-machine position.
func (s *Session) State() State { return s.state }

// Artifact returns the most recent artifact, if any.
func (s *Session) Artifact() (extract.Artifact, bool) {
	if s.artifact == nil {
		return extract.Artifact{}, false
	}
	return *s.artifact, true
}

// languageFor resolves the artifact language for the session's mode: script
// mode is pinned to the platform's native scripting language.
func (s *Session) languageFor() string {
	if s.Mode == llm.ModeScript {
		return llm.ScriptLanguageFor(s.OS)
	}
	return s.Language
}

// HostOS reports the platform under its user-facing name.
func HostOS() string {
	switch runtime.GOOS {
	case "darwin":
		return "MacOS"
	case "windows":
		return "Windows"
	case "linux":
		return "Linux"
	default:
		return "Other"
	}
}
