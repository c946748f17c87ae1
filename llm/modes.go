package llm

import "strings"

// Mode enumerates the kinds of artifact a generation turn can request.
type Mode string

const (
	ModeCode    Mode = "code"
	ModeScript  Mode = "script"
	ModeCommand Mode = "command"
	ModeVision  Mode = "vision"
	ModeChat    Mode = "chat"

	defaultMode = ModeCode
)

// Executable reports whether artifacts produced in this mode are meant to run.
func (m Mode) Executable() bool {
	switch m {
	case ModeCode, ModeScript, ModeCommand:
		return true
	default:
		return false
	}
}

// ModeProfile bundles the system framing and sampling defaults for a mode so
// every transport builds requests the same way.
type ModeProfile struct {
	Name        Mode
	Title       string
	System      string
	Temperature float64
}

// ParseMode normalizes user input into a known mode.
func ParseMode(raw string) (Mode, bool) {
	switch Mode(strings.ToLower(strings.TrimSpace(raw))) {
	case ModeCode:
		return ModeCode, true
	case ModeScript:
		return ModeScript, true
	case ModeCommand:
		return ModeCommand, true
	case ModeVision:
		return ModeVision, true
	case ModeChat:
		return ModeChat, true
	default:
		return defaultMode, false
	}
}

func defaultModeProfiles() map[Mode]ModeProfile {
	return map[Mode]ModeProfile{
		ModeCode: {
			Name:        ModeCode,
			Title:       "Code Mode",
			System:      "You are a code generation assistant. Generate clean, well-formatted, working code for the given task and respond only with the code.",
			Temperature: 0.1,
		},
		ModeScript: {
			Name:        ModeScript,
			Title:       "Script Mode",
			System:      "Please generate a well-written script that is precise, easy to understand, and compatible with the current operating system.",
			Temperature: 0.1,
		},
		ModeCommand: {
			Name:        ModeCommand,
			Title:       "Command Mode",
			System:      "Please generate a single line command that is precise, easy to understand, and compatible with the current operating system.",
			Temperature: 0.1,
		},
		ModeVision: {
			Name:        ModeVision,
			Title:       "Vision Mode",
			System:      "You are a top tier image captioner and image analyzer. Please generate a well-written description of the image that is precise and easy to understand.",
			Temperature: 0.2,
		},
		ModeChat: {
			Name:        ModeChat,
			Title:       "Chat Mode",
			System:      "You are a helpful assistant. Answer clearly and concisely.",
			Temperature: 0.3,
		},
	}
}

// ProfileForMode returns the baked-in profile, falling back to code mode.
func ProfileForMode(mode Mode) ModeProfile {
	profiles := defaultModeProfiles()
	if profile, ok := profiles[mode]; ok {
		return profile
	}
	return profiles[defaultMode]
}

// ScriptLanguageFor maps a platform name onto its native scripting language.
func ScriptLanguageFor(osName string) string {
	switch strings.ToLower(osName) {
	case "macos", "darwin":
		return "applescript"
	case "windows":
		return "powershell"
	default:
		return "bash"
	}
}

// scriptTypeFor is the human name used in script-mode prompt framing.
func scriptTypeFor(osName string) string {
	switch strings.ToLower(osName) {
	case "macos", "darwin":
		return "Apple script"
	case "windows":
		return "Powershell script"
	case "linux":
		return "Bash Shell script"
	default:
		return "script"
	}
}
