package execute

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexcodex/incant/extract"
	"github.com/lexcodex/incant/llm"
)

type stubRunner struct {
	stdout string
	stderr string
	err    error
	check  func(req CommandRequest)
	got    CommandRequest
}

func (s *stubRunner) Run(ctx context.Context, req CommandRequest) (string, string, error) {
	s.got = req
	if s.check != nil {
		s.check(req)
	}
	return s.stdout, s.stderr, s.err
}

func commandArtifact(body string) extract.Artifact {
	return extract.Artifact{Body: body, Mode: llm.ModeCommand, Version: 1}
}

func codeArtifact(language, body string) extract.Artifact {
	return extract.Artifact{Language: language, Body: body, Mode: llm.ModeCode, Version: 1}
}

func tempArtifacts(t *testing.T) []string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(os.TempDir(), "incant-*"))
	require.NoError(t, err)
	return matches
}

func TestExecuteCommandModeSkipsTransientFile(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("posix shell expected")
	}
	stub := &stubRunner{stdout: "hi\n"}
	engine := NewEngine(stub, time.Second, "")

	result, err := engine.Execute(context.Background(), commandArtifact("echo hi"))
	require.NoError(t, err)
	assert.Equal(t, "hi\n", result.Stdout)
	assert.Equal(t, []string{"/bin/sh", "-c", "echo hi"}, stub.got.Args)
}

func TestExecuteWritesTransientFileAndRemovesIt(t *testing.T) {
	var seenFile string
	stub := &stubRunner{
		check: func(req CommandRequest) {
			seenFile = req.Args[len(req.Args)-1]
			data, err := os.ReadFile(seenFile)
			assert.NoError(t, err)
			assert.Equal(t, "print(1+1)", string(data))
		},
	}
	engine := NewEngine(stub, time.Second, "")

	_, err := engine.Execute(context.Background(), codeArtifact("python", "print(1+1)"))
	require.NoError(t, err)
	require.NotEmpty(t, seenFile)
	assert.True(t, strings.HasSuffix(seenFile, ".py"))
	_, statErr := os.Stat(seenFile)
	assert.True(t, os.IsNotExist(statErr), "transient file should be removed")
}

func TestExecuteTimeoutRemovesTransientFile(t *testing.T) {
	stub := &stubRunner{err: context.DeadlineExceeded}
	engine := NewEngine(stub, 50*time.Millisecond, "")

	before := tempArtifacts(t)
	result, err := engine.Execute(context.Background(), codeArtifact("python", "while True: pass"))
	assert.ErrorIs(t, err, ErrTimeout)
	assert.Equal(t, -1, result.ExitCode)
	assert.Equal(t, before, tempArtifacts(t))
}

func TestExecuteUnsupportedLanguage(t *testing.T) {
	engine := NewEngine(&stubRunner{}, time.Second, "")

	_, err := engine.Execute(context.Background(), codeArtifact("cobol", "DISPLAY 'HI'."))
	assert.ErrorIs(t, err, ErrUnsupportedLanguage)
}

func TestExecuteEmptyArtifact(t *testing.T) {
	engine := NewEngine(&stubRunner{}, time.Second, "")

	_, err := engine.Execute(context.Background(), codeArtifact("python", "   "))
	assert.Error(t, err)
}

func TestHostRunnerCapturesStreamsAndStatus(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("posix shell expected")
	}
	engine := NewEngine(HostCommandRunner{}, 5*time.Second, "")

	result, err := engine.Execute(context.Background(), commandArtifact("echo out; echo err >&2; exit 3"))
	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 3, exitErr.Code)
	assert.Equal(t, 3, result.ExitCode)
	assert.Equal(t, "out\n", result.Stdout)
	assert.Equal(t, "err\n", result.Stderr)
}

func TestHostRunnerTimeoutKillsProcess(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("posix shell expected")
	}
	engine := NewEngine(HostCommandRunner{}, 100*time.Millisecond, "")

	started := time.Now()
	_, err := engine.Execute(context.Background(), commandArtifact("sleep 5"))
	assert.ErrorIs(t, err, ErrTimeout)
	assert.Less(t, time.Since(started), 3*time.Second)
}

func TestHostRunnerCommandSuccess(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("posix shell expected")
	}
	engine := NewEngine(HostCommandRunner{}, 5*time.Second, "")

	result, err := engine.Execute(context.Background(), commandArtifact("echo hi"))
	require.NoError(t, err)
	assert.Equal(t, "hi\n", result.Stdout)
	assert.Equal(t, 0, result.ExitCode)
	assert.Greater(t, result.Duration, time.Duration(0))
}

func TestFileExtension(t *testing.T) {
	assert.Equal(t, "py", FileExtension("python"))
	assert.Equal(t, "js", FileExtension("javascript"))
	assert.Equal(t, "sh", FileExtension("bash"))
	assert.Equal(t, "txt", FileExtension("brainfuck"))
}

func TestHostRunnerRequiresArgs(t *testing.T) {
	_, _, err := HostCommandRunner{}.Run(context.Background(), CommandRequest{})
	assert.Error(t, err)
	assert.False(t, errors.Is(err, ErrTimeout))
}
