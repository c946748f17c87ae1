package execute

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/lexcodex/incant/extract"
	"github.com/lexcodex/incant/llm"
)

// ErrTimeout means the subprocess exceeded the configured wall-clock limit and
// was killed.
var ErrTimeout = errors.New("execution timed out")

// ErrUnsupportedLanguage means no runner is registered for the artifact's
// language.
var ErrUnsupportedLanguage = errors.New("unsupported language")

// ExitError reports a subprocess that ran to completion with a non-zero
// status. Stderr is attached rather than swallowed.
type ExitError struct {
	Code   int
	Stderr string
}

func (e *ExitError) Error() string {
	detail := strings.TrimSpace(e.Stderr)
	if detail == "" {
		return fmt.Sprintf("exit status %d", e.Code)
	}
	return fmt.Sprintf("exit status %d: %s", e.Code, detail)
}

// Result is the outcome of one execution attempt.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Duration time.Duration
}

// interpreter describes how to launch one language: the binary invocation
// around a transient source file, and the extension that file carries.
type interpreter struct {
	args func(file string) []string
	ext  string
}

func interpreters() map[string]interpreter {
	return map[string]interpreter{
		"python": {
			args: func(file string) []string { return []string{"python3", file} },
			ext:  ".py",
		},
		"javascript": {
			args: func(file string) []string { return []string{"node", file} },
			ext:  ".js",
		},
		"bash": {
			args: func(file string) []string { return []string{"bash", file} },
			ext:  ".sh",
		},
		"sh": {
			args: func(file string) []string { return []string{"sh", file} },
			ext:  ".sh",
		},
		"powershell": {
			args: func(file string) []string { return []string{"powershell", "-ExecutionPolicy", "Bypass", "-File", file} },
			ext:  ".ps1",
		},
		"applescript": {
			args: func(file string) []string { return []string{"osascript", file} },
			ext:  ".scpt",
		},
	}
}

// FileExtension returns the transient-file suffix for a language, defaulting
// to .txt for languages executed without a registered interpreter.
func FileExtension(language string) string {
	if spec, ok := interpreters()[strings.ToLower(language)]; ok {
		return strings.TrimPrefix(spec.ext, ".")
	}
	return "txt"
}

// Engine runs artifacts as child processes and reports captured output.
type Engine struct {
	runner  CommandRunner
	timeout time.Duration
	workdir string
}

// NewEngine builds an engine around a runner. A zero timeout disables the
// wall-clock limit.
func NewEngine(runner CommandRunner, timeout time.Duration, workdir string) *Engine {
	if runner == nil {
		runner = HostCommandRunner{}
	}
	return &Engine{runner: runner, timeout: timeout, workdir: workdir}
}

// Execute runs one artifact. Command-mode artifacts go straight to the shell;
// code and script artifacts are written to a transient file that is removed on
// every exit path. The result carries captured output even when err is set.
func (e *Engine) Execute(ctx context.Context, artifact extract.Artifact) (Result, error) {
	if artifact.Empty() {
		return Result{}, fmt.Errorf("nothing to execute")
	}
	if artifact.Mode == llm.ModeCommand {
		return e.run(ctx, shellArgs(artifact.Body), "")
	}

	spec, ok := interpreters()[strings.ToLower(artifact.Language)]
	if !ok {
		return Result{}, fmt.Errorf("%w: %s", ErrUnsupportedLanguage, artifact.Language)
	}
	file, err := os.CreateTemp("", "incant-*"+spec.ext)
	if err != nil {
		return Result{}, fmt.Errorf("create transient file: %w", err)
	}
	defer os.Remove(file.Name())
	if _, err := file.WriteString(artifact.Body); err != nil {
		file.Close()
		return Result{}, fmt.Errorf("write transient file: %w", err)
	}
	if err := file.Close(); err != nil {
		return Result{}, fmt.Errorf("write transient file: %w", err)
	}
	return e.run(ctx, spec.args(file.Name()), "")
}

func (e *Engine) run(ctx context.Context, args []string, input string) (Result, error) {
	started := time.Now()
	stdout, stderr, err := e.runner.Run(ctx, CommandRequest{
		Workdir: e.workdir,
		Args:    args,
		Input:   input,
		Timeout: e.timeout,
	})
	result := Result{
		Stdout:   stdout,
		Stderr:   stderr,
		Duration: time.Since(started),
	}
	if err == nil {
		return result, nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		result.ExitCode = -1
		return result, fmt.Errorf("%w after %s", ErrTimeout, e.timeout)
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		result.ExitCode = exitErr.ExitCode()
		return result, &ExitError{Code: result.ExitCode, Stderr: stderr}
	}
	return result, fmt.Errorf("launch %s: %w", args[0], err)
}

// shellArgs wraps a single command line in the host shell.
func shellArgs(command string) []string {
	if runtime.GOOS == "windows" {
		return []string{"powershell", "-Command", command}
	}
	return []string{"/bin/sh", "-c", command}
}
