package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/lexcodex/incant/deps"
	"github.com/lexcodex/incant/execute"
	"github.com/lexcodex/incant/extract"
	"github.com/lexcodex/incant/llm"
	"github.com/lexcodex/incant/persistence"
)

// ErrHistorySink marks a history write failure. The console treats it as
// fatal; everything else keeps the session alive.
var ErrHistorySink = errors.New("history sink unusable")

// resourceFiles are rendering targets the model is told to produce. They are
// removed before each generation turn and opened after execution.
var resourceFiles = []string{"graph.png", "chart.png", "table.md"}

// Options tune controller behavior outside the session state itself.
type Options struct {
	AutoExecute    bool
	SaveCode       bool
	OpenResources  bool
	Debug          bool
	OutputDir      string
	Workdir        string
	TranscriptPath string
	Version        string
	InstallWait    time.Duration
	HistoryLimit   int
}

// Config wires a controller's collaborators. Zero-value fields get working
// defaults so tests can construct partial controllers.
type Config struct {
	Session     *Session
	Registry    *llm.Registry
	Credentials llm.Credentials
	AdapterFor  func(llm.BackendConfig) llm.Adapter
	Engine      *execute.Engine
	Resolver    *deps.Resolver
	Runner      execute.CommandRunner
	History     persistence.HistoryStore
	Transcript  *persistence.TranscriptLog
	Events      chan<- Event
	Options     Options
}

// Turn is what one controller step produced for the console to render.
type Turn struct {
	State       State
	Message     string
	Artifact    *extract.Artifact
	Result      *execute.Result
	ExecErr     error
	SavedPath   string
	NeedsEdit   bool
	ClearScreen bool
	Exit        bool
}

// Controller drives the interactive loop: it owns the state machine, hands
// instructions to the backend adapter, extracts artifacts, resolves
// dependencies, executes, and appends history. One instruction is fully
// processed before the next is accepted.
type Controller struct {
	session    *Session
	registry   *llm.Registry
	creds      llm.Credentials
	adapterFor func(llm.BackendConfig) llm.Adapter
	engine     *execute.Engine
	resolver   *deps.Resolver
	runner     execute.CommandRunner
	history    persistence.HistoryStore
	transcript *persistence.TranscriptLog
	logOn      bool
	events     chan<- Event
	opts       Options

	installed map[string]deps.Set
	pendingID string
}

// NewController assembles a controller around the given collaborators.
func NewController(cfg Config) *Controller {
	opts := cfg.Options
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = 10
	}
	if opts.InstallWait == 0 {
		opts.InstallWait = 10 * time.Second
	}
	session := cfg.Session
	if session == nil {
		session = NewSession(llm.ModeCode, "", "")
	}
	runner := cfg.Runner
	if runner == nil {
		runner = execute.HostCommandRunner{}
	}
	engine := cfg.Engine
	if engine == nil {
		engine = execute.NewEngine(runner, time.Minute, opts.Workdir)
	}
	resolver := cfg.Resolver
	if resolver == nil {
		resolver = deps.NewResolver(runner, 0)
	}
	history := cfg.History
	if history == nil {
		history = persistence.NewMemoryStore()
	}
	creds := cfg.Credentials
	adapterFor := cfg.AdapterFor
	if adapterFor == nil {
		adapterFor = func(backend llm.BackendConfig) llm.Adapter {
			return llm.NewAdapter(backend, creds, opts.Debug)
		}
	}
	return &Controller{
		session:    session,
		registry:   cfg.Registry,
		creds:      creds,
		adapterFor: adapterFor,
		engine:     engine,
		resolver:   resolver,
		runner:     runner,
		history:    history,
		transcript: cfg.Transcript,
		logOn:      cfg.Transcript != nil,
		events:     cfg.Events,
		opts:       opts,
		installed:  map[string]deps.Set{},
	}
}

// Session exposes the mutable session state for display.
func (c *Controller) Session() *Session { return c.session }

// State reports the state machine's current position.
func (c *Controller) State() State { return c.session.state }

// Submit processes one line of user input. Slash commands dispatch against
// session state; anything else becomes a generation turn. Failures come back
// as the error after the state machine has been reset to idle.
func (c *Controller) Submit(ctx context.Context, line string) (*Turn, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return &Turn{State: c.session.state}, nil
	}
	var turn *Turn
	var err error
	if cmd, ok := ParseCommand(line); ok {
		turn, err = c.dispatch(ctx, cmd)
	} else {
		c.session.state = StateAwaitingGeneration
		turn, err = c.generateTurn(ctx, line)
	}
	if err != nil {
		c.failTurn(err)
		return nil, err
	}
	return turn, nil
}

// Confirm runs the artifact pending confirmation.
func (c *Controller) Confirm(ctx context.Context) (*Turn, error) {
	if c.session.state != StateAwaitingConfirmation || c.session.artifact == nil {
		return nil, fmt.Errorf("nothing awaiting confirmation")
	}
	turn, err := c.executeArtifact(ctx, *c.session.artifact, "")
	if err != nil {
		c.failTurn(err)
		return nil, err
	}
	return turn, nil
}

// Discard drops the pending artifact without running it. The artifact stays
// reachable for /save and /execute.
func (c *Controller) Discard() *Turn {
	if c.session.state == StateAwaitingConfirmation {
		c.session.state = StateIdle
		c.pendingID = ""
	}
	return &Turn{State: c.session.state, Message: "discarded"}
}

// ApplyEdit replaces the body of the current artifact, producing a new
// version. The prior version stays in history untouched.
func (c *Controller) ApplyEdit(ctx context.Context, body string) (*Turn, error) {
	if c.session.artifact == nil {
		return nil, fmt.Errorf("no code to edit yet")
	}
	if strings.TrimSpace(body) == "" {
		return nil, fmt.Errorf("edit produced an empty body")
	}
	edited := c.session.artifact.WithBody(body)
	c.session.artifact = &edited

	entry := persistence.Entry{
		ID:          uuid.NewString(),
		Instruction: "/edit",
		Mode:        string(edited.Mode),
		Model:       c.session.Model,
		OS:          c.session.OS,
		Language:    edited.Language,
		Code:        edited.Body,
		Version:     edited.Version,
	}
	c.pendingID = entry.ID
	if err := c.history.Append(ctx, entry); err != nil {
		err = fmt.Errorf("%w: %v", ErrHistorySink, err)
		c.failTurn(err)
		return nil, err
	}
	return &Turn{State: c.session.state, Artifact: &edited}, nil
}

func (c *Controller) dispatch(ctx context.Context, cmd Command) (*Turn, error) {
	prev := c.session.state
	c.session.state = StateDispatchingCommand
	c.logTranscript(persistence.TranscriptCommand, cmd.Name, nil)

	turn, err := c.runCommand(ctx, cmd, prev)
	if err != nil {
		return nil, err
	}
	if turn.State == "" {
		turn.State = prev
	}
	c.session.state = turn.State
	return turn, nil
}

func (c *Controller) runCommand(ctx context.Context, cmd Command, prev State) (*Turn, error) {
	switch cmd.Kind {
	case CmdExit:
		return &Turn{Exit: true, State: StateIdle}, nil

	case CmdHelp:
		return &Turn{Message: helpText}, nil

	case CmdVersion:
		return &Turn{Message: "incant v" + c.opts.Version}, nil

	case CmdClear:
		if strings.EqualFold(cmd.Args, "history") {
			if err := c.history.Clear(ctx); err != nil {
				return nil, fmt.Errorf("clear history: %w", err)
			}
			return &Turn{Message: "history cleared"}, nil
		}
		return &Turn{ClearScreen: true}, nil

	case CmdMode:
		mode, ok := llm.ParseMode(cmd.Args)
		if !ok {
			return nil, fmt.Errorf("unknown mode %q (code, script, command, vision, chat)", cmd.Args)
		}
		c.session.Mode = mode
		return &Turn{Message: "mode set to " + string(mode)}, nil

	case CmdModel:
		if cmd.Args == "" {
			return &Turn{Message: "current model: " + c.session.Model}, nil
		}
		c.session.Model = cmd.Args
		backend, _ := c.lookup(c.session.Model)
		message := "model set to " + c.session.Model
		if err := c.creds.Missing(backend.Provider); err != nil {
			c.emit(Event{Type: EventNotice, Message: err.Error()})
			message += " (" + err.Error() + ")"
		}
		return &Turn{Message: message}, nil

	case CmdLanguage:
		if cmd.Args == "" {
			return &Turn{Message: "current language: " + c.session.Language}, nil
		}
		c.session.Language = strings.ToLower(cmd.Args)
		return &Turn{Message: "language set to " + c.session.Language}, nil

	case CmdInstall:
		if cmd.Args == "" {
			return nil, fmt.Errorf("usage: /install <package>")
		}
		modules := strings.Fields(cmd.Args)
		if err := c.resolver.Install(ctx, modules, c.session.Language); err != nil {
			return nil, err
		}
		c.markInstalled(c.session.Language, modules...)
		c.logTranscript(persistence.TranscriptInstall, strings.Join(modules, ", "), nil)
		return &Turn{Message: "installed " + strings.Join(modules, ", ")}, nil

	case CmdSave:
		artifact, ok := c.session.Artifact()
		if !ok {
			return nil, fmt.Errorf("no code generated yet")
		}
		path, err := c.saveArtifact(artifact)
		if err != nil {
			return nil, err
		}
		return &Turn{Message: "saved to " + path, SavedPath: path}, nil

	case CmdEdit:
		artifact, ok := c.session.Artifact()
		if !ok {
			return nil, fmt.Errorf("no code to edit yet")
		}
		return &Turn{NeedsEdit: true, Artifact: &artifact, State: prev}, nil

	case CmdExecute:
		artifact, ok := c.session.Artifact()
		if !ok {
			return nil, fmt.Errorf("no code to execute yet")
		}
		return c.executeArtifact(ctx, artifact, "/execute")

	case CmdShell:
		if cmd.Args == "" {
			return nil, fmt.Errorf("usage: /shell <command>")
		}
		passthrough := extract.Artifact{Body: cmd.Args, Mode: llm.ModeCommand, Version: 1}
		result, execErr := c.engine.Execute(ctx, passthrough)
		normalizeResult(&result, execErr)
		return &Turn{Result: &result, ExecErr: execErr}, nil

	case CmdUpgrade:
		upgrade := extract.Artifact{
			Body:    "go install github.com/lexcodex/incant/cmd/incant@latest",
			Mode:    llm.ModeCommand,
			Version: 1,
		}
		result, execErr := c.engine.Execute(ctx, upgrade)
		normalizeResult(&result, execErr)
		if execErr != nil {
			return &Turn{Result: &result, ExecErr: execErr, Message: "upgrade failed"}, nil
		}
		return &Turn{Result: &result, Message: "upgraded; restart to pick up the new binary"}, nil

	case CmdLog:
		return c.toggleTranscript()

	case CmdDebug:
		if c.session.artifact == nil || strings.TrimSpace(c.session.lastStderr) == "" {
			return nil, fmt.Errorf("no failed run to debug")
		}
		c.session.state = StateAwaitingGeneration
		return c.generateTurn(ctx, debugInstruction(*c.session.artifact, c.session.lastStderr))

	case CmdHistory:
		limit := c.opts.HistoryLimit
		if cmd.Args != "" {
			if n, err := strconv.Atoi(cmd.Args); err == nil && n > 0 {
				limit = n
			}
		}
		entries, err := c.history.History(ctx, limit)
		if err != nil {
			return nil, fmt.Errorf("read history: %w", err)
		}
		return &Turn{Message: formatHistory(entries)}, nil

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownCommand, cmd.Name)
	}
}

// generateTurn runs one instruction through generation, extraction, and
// (optionally) execution. The caller has already moved the machine to
// AwaitingGeneration.
func (c *Controller) generateTurn(ctx context.Context, instruction string) (*Turn, error) {
	backend, _ := c.lookup(c.session.Model)
	language := c.session.languageFor()

	req := llm.Request{
		Instruction: instruction,
		Mode:        c.session.Mode,
		Language:    language,
		OS:          c.session.OS,
		Addenda:     promptAddenda(instruction, language, c.opts.Workdir),
		Config:      backend,
	}
	if c.session.Mode == llm.ModeVision {
		if image := extractFileName(instruction); image != "" {
			req.Images = []string{image}
		}
	}

	c.cleanResources()
	c.emit(Event{Type: EventGenerationStart, Message: c.session.Model, Metadata: map[string]any{"mode": string(c.session.Mode)}})
	raw, err := c.adapterFor(backend).Generate(ctx, req)
	if err != nil {
		return nil, err
	}
	c.emit(Event{Type: EventGenerationDone, Message: fmt.Sprintf("%d bytes", len(raw))})
	c.logTranscript(persistence.TranscriptGeneration, instruction, map[string]any{
		"model": c.session.Model,
		"mode":  string(c.session.Mode),
		"bytes": len(raw),
	})

	if !c.session.Mode.Executable() {
		c.session.state = StateIdle
		return &Turn{State: StateIdle, Message: strings.TrimSpace(raw)}, nil
	}

	segment, err := extract.Select(raw, backend)
	if err != nil {
		return nil, err
	}
	artifact := extract.NewArtifact(segment, c.session.Mode, language)
	c.session.artifact = &artifact
	c.emit(Event{Type: EventExtraction, Message: fmt.Sprintf("%s artifact v%d", artifact.Language, artifact.Version)})

	if c.opts.SaveCode {
		if path, saveErr := c.saveArtifact(artifact); saveErr != nil {
			c.emit(Event{Type: EventNotice, Message: "could not save code", Err: saveErr})
		} else {
			c.debugf("saved %s", path)
		}
	}

	entry := persistence.Entry{
		ID:          uuid.NewString(),
		Instruction: instruction,
		Prompt:      llm.ComposeTask(req),
		Mode:        string(c.session.Mode),
		Model:       c.session.Model,
		OS:          c.session.OS,
		Language:    artifact.Language,
		Code:        artifact.Body,
		Version:     artifact.Version,
	}
	c.pendingID = entry.ID
	if err := c.history.Append(ctx, entry); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrHistorySink, err)
	}

	if c.opts.AutoExecute {
		return c.executeArtifact(ctx, artifact, instruction)
	}
	c.session.state = StateAwaitingConfirmation
	return &Turn{State: StateAwaitingConfirmation, Artifact: &artifact}, nil
}

// executeArtifact resolves dependencies, runs the artifact, and appends the
// outcome to history. Execution failures ride back on the turn, not the
// error: only an unusable history sink aborts.
func (c *Controller) executeArtifact(ctx context.Context, artifact extract.Artifact, instruction string) (*Turn, error) {
	c.session.state = StateExecuting
	c.installMissing(ctx, artifact)

	c.emit(Event{Type: EventExecutionStart, Message: fmt.Sprintf("%s v%d", artifact.Mode, artifact.Version)})
	result, execErr := c.engine.Execute(ctx, artifact)

	if execErr != nil && artifact.Mode == llm.ModeCode && deps.IndicatesMissingModule(result.Stderr) {
		result, execErr = c.recoverMissingModule(ctx, artifact, result, execErr)
	}

	normalizeResult(&result, execErr)
	c.session.lastStderr = ""
	if execErr != nil {
		c.session.lastStderr = result.Stderr
	}
	c.emit(Event{Type: EventExecutionDone, Message: fmt.Sprintf("exit %d in %s", result.ExitCode, result.Duration.Round(time.Millisecond))})
	c.logTranscript(persistence.TranscriptExecution, string(artifact.Mode), map[string]any{
		"exit_code":   result.ExitCode,
		"duration_ms": result.Duration.Milliseconds(),
	})

	if err := c.appendResult(ctx, instruction, artifact, result); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrHistorySink, err)
	}
	c.openResources(ctx)
	c.session.state = StateIdle
	return &Turn{State: StateIdle, Artifact: &artifact, Result: &result, ExecErr: execErr}, nil
}

// installMissing scans the artifact and installs whatever the installed set
// lacks. Install failures are advisory: execution proceeds with a warning.
func (c *Controller) installMissing(ctx context.Context, artifact extract.Artifact) {
	if artifact.Mode != llm.ModeCode {
		return
	}
	installed := c.installedSet(ctx, artifact.Language)
	missing := c.resolver.Resolve(artifact, installed)
	if len(missing) == 0 {
		return
	}
	c.emit(Event{Type: EventInstallStart, Message: strings.Join(missing, ", ")})
	err := c.resolver.Install(ctx, missing, artifact.Language)
	failed := map[string]bool{}
	var installErr *deps.InstallError
	if errors.As(err, &installErr) {
		for _, name := range installErr.Failed {
			failed[name] = true
		}
		c.emit(Event{Type: EventNotice, Err: err, Message: "continuing despite install failures: " + strings.Join(installErr.Failed, ", ")})
	} else if err != nil {
		c.emit(Event{Type: EventNotice, Err: err, Message: "dependency install skipped"})
		return
	}
	for _, name := range missing {
		if !failed[name] {
			installed.Add(name)
		}
	}
	c.emit(Event{Type: EventInstallDone, Message: strings.Join(missing, ", ")})
	c.logTranscript(persistence.TranscriptInstall, strings.Join(missing, ", "), nil)
}

// recoverMissingModule handles interpreters that fail at import time: install
// the module named by stderr, wait for the package manager to settle, and
// re-execute once.
func (c *Controller) recoverMissingModule(ctx context.Context, artifact extract.Artifact, result execute.Result, execErr error) (execute.Result, error) {
	module := deps.PackageFromError(result.Stderr, artifact.Language)
	if module == "" {
		return result, execErr
	}
	c.emit(Event{Type: EventInstallStart, Message: "missing module " + module})
	if err := c.resolver.Install(ctx, []string{module}, artifact.Language); err != nil {
		c.emit(Event{Type: EventNotice, Err: err, Message: "install " + module + " failed"})
		return result, execErr
	}
	c.markInstalled(artifact.Language, module)
	c.emit(Event{Type: EventInstallDone, Message: module})
	c.waitForInstall(ctx)
	return c.engine.Execute(ctx, artifact)
}

func (c *Controller) appendResult(ctx context.Context, instruction string, artifact extract.Artifact, result execute.Result) error {
	entry := persistence.Entry{
		ID:          c.pendingID,
		Instruction: instruction,
		Mode:        string(artifact.Mode),
		Model:       c.session.Model,
		OS:          c.session.OS,
		Language:    artifact.Language,
		Code:        artifact.Body,
		Version:     artifact.Version,
		ExitCode:    result.ExitCode,
		Stdout:      result.Stdout,
		Stderr:      result.Stderr,
		DurationMS:  result.Duration.Milliseconds(),
	}
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	c.pendingID = ""
	return c.history.Append(ctx, entry)
}

func (c *Controller) installedSet(ctx context.Context, language string) deps.Set {
	if set, ok := c.installed[language]; ok {
		return set
	}
	set, err := c.resolver.Installed(ctx, language)
	if err != nil {
		c.debugf("installed set for %s: %v", language, err)
		set = deps.NewSet()
	}
	c.installed[language] = set
	return set
}

func (c *Controller) markInstalled(language string, modules ...string) {
	set, ok := c.installed[language]
	if !ok {
		set = deps.NewSet()
		c.installed[language] = set
	}
	for _, module := range modules {
		set.Add(module)
	}
}

func (c *Controller) toggleTranscript() (*Turn, error) {
	if c.logOn {
		c.logOn = false
		return &Turn{Message: "transcript logging disabled"}, nil
	}
	if c.transcript == nil {
		path := c.opts.TranscriptPath
		if path == "" {
			path = filepath.Join(c.opts.OutputDir, "transcript.ndjson")
		}
		transcript, err := persistence.NewTranscriptLog(path)
		if err != nil {
			return nil, fmt.Errorf("open transcript log: %w", err)
		}
		c.transcript = transcript
	}
	c.logOn = true
	return &Turn{Message: "transcript logging enabled"}, nil
}

// saveArtifact writes the artifact under the output directory with the
// mode-specific timestamped name.
func (c *Controller) saveArtifact(artifact extract.Artifact) (string, error) {
	dir := c.opts.OutputDir
	if dir == "" {
		dir = "output"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	stamp := time.Now().Format("2006_01_02-15_04_05")
	var name string
	switch artifact.Mode {
	case llm.ModeCommand:
		name = "command_" + stamp + ".txt"
	case llm.ModeScript:
		name = "script_" + stamp + ".txt"
	default:
		name = "code_" + stamp + "." + execute.FileExtension(artifact.Language)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(artifact.Body), 0o644); err != nil {
		return "", fmt.Errorf("save code: %w", err)
	}
	return path, nil
}

func (c *Controller) cleanResources() {
	for _, name := range resourceFiles {
		if err := os.Remove(filepath.Join(c.opts.Workdir, name)); err == nil {
			c.debugf("removed stale %s", name)
		}
	}
}

func (c *Controller) openResources(ctx context.Context) {
	if !c.opts.OpenResources {
		return
	}
	for _, name := range resourceFiles {
		path := filepath.Join(c.opts.Workdir, name)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		args := openerArgs(path)
		if args == nil {
			continue
		}
		if _, _, err := c.runner.Run(ctx, execute.CommandRequest{Args: args, Timeout: 10 * time.Second}); err != nil {
			c.emit(Event{Type: EventNotice, Err: err, Message: "could not open " + name})
		}
	}
}

func (c *Controller) waitForInstall(ctx context.Context) {
	if c.opts.InstallWait <= 0 {
		return
	}
	timer := time.NewTimer(c.opts.InstallWait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

func (c *Controller) failTurn(err error) {
	c.session.state = StateIdle
	c.emit(Event{Type: EventTurnError, Err: err, Message: err.Error()})
	c.logTranscript(persistence.TranscriptError, err.Error(), nil)
}

func (c *Controller) lookup(model string) (llm.BackendConfig, bool) {
	if c.registry != nil {
		return c.registry.Lookup(model)
	}
	return llm.DefaultProfile(model), false
}

func (c *Controller) emit(event Event) {
	if c.events == nil {
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	select {
	case c.events <- event:
	default:
	}
}

func (c *Controller) logTranscript(eventType persistence.TranscriptEventType, message string, metadata map[string]any) {
	if !c.logOn || c.transcript == nil {
		return
	}
	c.transcript.Emit(persistence.TranscriptEvent{Type: eventType, Message: message, Metadata: metadata})
}

func (c *Controller) debugf(format string, args ...interface{}) {
	if c.opts.Debug {
		log.Printf("[session] "+format, args...)
	}
}

func normalizeResult(result *execute.Result, execErr error) {
	if execErr == nil {
		return
	}
	if result.ExitCode == 0 {
		result.ExitCode = -1
	}
	if strings.TrimSpace(result.Stderr) == "" {
		result.Stderr = execErr.Error()
	}
}

func debugInstruction(artifact extract.Artifact, stderr string) string {
	return fmt.Sprintf("Debug this %s code and fix the error.\nCode:\n%s\nError:\n%s", artifact.Language, artifact.Body, stderr)
}

func formatHistory(entries []persistence.Entry) string {
	if len(entries) == 0 {
		return "history is empty"
	}
	var b strings.Builder
	for _, entry := range entries {
		fmt.Fprintf(&b, "%s  [%s/%s] exit %d  %s\n",
			entry.Timestamp.Local().Format("2006-01-02 15:04:05"),
			entry.Mode, entry.Language, entry.ExitCode, entry.Instruction)
	}
	return strings.TrimRight(b.String(), "\n")
}

func openerArgs(path string) []string {
	switch runtime.GOOS {
	case "darwin":
		return []string{"open", path}
	case "windows":
		return []string{"cmd", "/c", "start", "", path}
	case "linux":
		return []string{"xdg-open", path}
	default:
		return nil
	}
}

const helpText = `Commands available:

/save - Save the last generated code to the output directory.
/edit - Edit the last generated code, producing a new version.
/execute - Execute the last generated code.
/install <package> - Install a package with pip or npm.
/mode <mode> - Switch between code, script, command, vision, and chat.
/model <name> - Switch the backend model.
/language <lang> - Switch the target language.
/debug - Ask the model to fix the last failed run.
/history [n] - Show recent turns.
/clear - Clear the screen (/clear history empties the store).
/log - Toggle the transcript log.
/version - Show the version.
/shell <command> - Run a host shell command.
/upgrade - Install the latest release.
/help - Show this message.
/exit - Leave the session.`
