package llm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildMessagesExecutableFraming(t *testing.T) {
	req := Request{Instruction: "sort a list", Mode: ModeCode, Language: "python", OS: "linux"}

	messages := BuildMessages(req)
	require.Len(t, messages, 3)
	assert.Equal(t, "system", messages[0].Role)
	assert.Equal(t, "assistant", messages[1].Role)
	assert.Contains(t, messages[1].Content, "triple backticks")
	assert.Equal(t, "user", messages[2].Role)
	assert.Contains(t, messages[2].Content, "python")
	assert.Contains(t, messages[2].Content, "sort a list")
}

func TestBuildMessagesChatSkipsCodeFraming(t *testing.T) {
	messages := BuildMessages(Request{Instruction: "what is a goroutine?", Mode: ModeChat})
	require.Len(t, messages, 2)
	assert.Equal(t, "system", messages[0].Role)
	assert.Equal(t, "user", messages[1].Role)
	assert.Equal(t, "what is a goroutine?", messages[1].Content)
}

func TestBuildMessagesVisionAttachesImages(t *testing.T) {
	req := Request{
		Instruction: "what is in this photo",
		Mode:        ModeVision,
		Images:      []string{"https://example.com/cat.png"},
	}
	messages := BuildMessages(req)
	require.Len(t, messages, 2)
	assert.Equal(t, req.Images, messages[1].Images)
}

func TestComposeTaskScriptUsesPlatformScriptType(t *testing.T) {
	task := ComposeTask(Request{Instruction: "backup my files", Mode: ModeScript, OS: "macos"})
	assert.Contains(t, task, "Apple script")
	assert.Contains(t, task, "Operating System is macos")

	task = ComposeTask(Request{Instruction: "backup my files", Mode: ModeScript, OS: "windows"})
	assert.Contains(t, task, "Powershell script")

	task = ComposeTask(Request{Instruction: "backup my files", Mode: ModeScript, OS: "linux"})
	assert.Contains(t, task, "Bash Shell script")
}

func TestComposeTaskCommand(t *testing.T) {
	task := ComposeTask(Request{Instruction: "free disk space", Mode: ModeCommand, OS: "linux"})
	assert.Equal(t, "Generate the single terminal command for this task 'free disk space for Operating System is linux'.", task)
}

func TestSamplingForPrefersProfileValues(t *testing.T) {
	cfg := BackendConfig{Temperature: 0.9, MaxTokens: 128}
	temperature, maxTokens := SamplingFor(Request{Mode: ModeCode, Config: cfg})
	assert.Equal(t, 0.9, temperature)
	assert.Equal(t, 128, maxTokens)

	temperature, maxTokens = SamplingFor(Request{Mode: ModeVision})
	assert.Equal(t, 0.2, temperature)
	assert.Equal(t, 2048, maxTokens)
}

func TestComposeTaskAppendsAddenda(t *testing.T) {
	task := ComposeTask(Request{
		Instruction: "plot sales by month",
		Mode:        ModeCode,
		Language:    "python",
		OS:          "Linux",
		Addenda: []string{
			"using Python use Matplotlib save the graph in file called 'graph.png'",
		},
	})
	assert.Contains(t, task, "'plot sales by month for Operating System: Linux'.")
	assert.True(t, strings.HasSuffix(task, "save the graph in file called 'graph.png'"))
}
