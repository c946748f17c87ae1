package llm

import (
	"fmt"
	"strings"
)

// BuildMessages assembles the three-message chat framing shared by every
// transport: mode-specific system text, a fixed assistant line requesting
// fenced output, then the composed user task.
func BuildMessages(req Request) []Message {
	profile := ProfileForMode(req.Mode)
	messages := []Message{
		{Role: "system", Content: profile.System},
	}
	if req.Mode.Executable() {
		messages = append(messages, Message{
			Role:    "assistant",
			Content: "Please generate code wrapped inside triple backticks known as codeblock.",
		})
	}
	user := Message{Role: "user", Content: ComposeTask(req)}
	if req.Mode == ModeVision {
		user.Images = req.Images
	}
	messages = append(messages, user)
	return messages
}

// ComposeTask interpolates the instruction with mode, language, and host OS,
// then appends any addenda lines.
func ComposeTask(req Request) string {
	task := strings.TrimSpace(req.Instruction)
	var base string
	switch req.Mode {
	case ModeScript:
		base = fmt.Sprintf("Generate %s for this prompt and make this script easy to read and understand for this task '%s for Operating System is %s'.", scriptTypeFor(req.OS), task, req.OS)
	case ModeCommand:
		base = fmt.Sprintf("Generate the single terminal command for this task '%s for Operating System is %s'.", task, req.OS)
	case ModeVision:
		base = fmt.Sprintf("Give accurate and detailed information about the image provided and be very detailed about the image '%s'.", task)
	case ModeChat:
		base = task
	default:
		base = fmt.Sprintf("Generate the code in %s language for this task '%s for Operating System: %s'.", req.Language, task, req.OS)
	}
	for _, line := range req.Addenda {
		base += "\n" + line
	}
	return base
}

// SamplingFor merges the profile's request parameters with the mode default
// temperature when the profile leaves it unset.
func SamplingFor(req Request) (temperature float64, maxTokens int) {
	temperature = req.Config.Temperature
	if temperature == 0 {
		temperature = ProfileForMode(req.Mode).Temperature
	}
	maxTokens = req.Config.MaxTokens
	if maxTokens == 0 {
		maxTokens = 2048
	}
	return temperature, maxTokens
}
