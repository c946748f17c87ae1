package runtime

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/lexcodex/incant/deps"
	"github.com/lexcodex/incant/execute"
	"github.com/lexcodex/incant/llm"
	"github.com/lexcodex/incant/persistence"
	"github.com/lexcodex/incant/session"
)

// Runtime wires the incant CLI and console to the shared session controller.
// It centralizes profile loading, credential checks, history storage, and log
// management.
type Runtime struct {
	Config      Config
	Session     *session.Session
	Controller  *session.Controller
	Registry    *llm.Registry
	Credentials llm.Credentials
	History     persistence.HistoryStore
	Transcript  *persistence.TranscriptLog
	Events      chan session.Event
	Logger      *log.Logger
	Warnings    []string

	logFile io.Closer
}

// New builds a runtime. Profile and watcher failures degrade to warnings so
// the console can surface them instead of refusing to start; only broken
// storage is fatal.
func New(ctx context.Context, cfg Config) (*Runtime, error) {
	if err := cfg.Normalize(); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(cfg.ConfigDir, 0o755); err != nil {
		return nil, fmt.Errorf("create config directory: %w", err)
	}
	logPath := filepath.Join(cfg.ConfigDir, "incant.log")
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log: %w", err)
	}
	logger := log.New(logFile, "incant ", log.LstdFlags|log.Lmicroseconds)
	// Package-level log output would corrupt the interactive screen, so it
	// goes to the same file.
	log.SetOutput(logFile)

	registry := llm.NewRegistry(cfg.ProfilesDir)
	if err := registry.Load(); err != nil {
		logger.Printf("profile load failed: %v", err)
	}
	if err := registry.StartWatcher(ctx); err != nil {
		logger.Printf("profile watcher unavailable: %v", err)
	}

	creds := llm.CredentialsFromEnv()
	if creds.OllamaEndpoint == "" {
		creds.OllamaEndpoint = cfg.OllamaEndpoint
	}
	warnings := creds.Warnings()
	for _, warning := range warnings {
		logger.Printf("credential warning: %s", warning)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.HistoryPath), 0o755); err != nil {
		logFile.Close()
		return nil, fmt.Errorf("create history directory: %w", err)
	}
	history, err := persistence.NewSQLiteStore(cfg.HistoryPath)
	if err != nil {
		logFile.Close()
		return nil, fmt.Errorf("history store: %w", err)
	}

	var transcript *persistence.TranscriptLog
	if cfg.Log {
		if err := os.MkdirAll(filepath.Dir(cfg.TranscriptPath), 0o755); err != nil {
			history.Close()
			logFile.Close()
			return nil, fmt.Errorf("create transcript directory: %w", err)
		}
		transcript, err = persistence.NewTranscriptLog(cfg.TranscriptPath)
		if err != nil {
			history.Close()
			logFile.Close()
			return nil, fmt.Errorf("transcript log: %w", err)
		}
	}

	// Normalize already validated the mode string.
	mode, _ := llm.ParseMode(cfg.Mode)
	sess := session.NewSession(mode, cfg.Model, cfg.Language)

	runner := execute.HostCommandRunner{}
	events := make(chan session.Event, 64)
	adapterFor := func(backend llm.BackendConfig) llm.Adapter {
		adapter := llm.NewAdapter(backend, creds, cfg.Debug)
		if cfg.Debug {
			return llm.Instrument(adapter, backend.Model)
		}
		return adapter
	}
	controller := session.NewController(session.Config{
		Session:     sess,
		Registry:    registry,
		Credentials: creds,
		AdapterFor:  adapterFor,
		Engine:      execute.NewEngine(runner, time.Duration(cfg.TimeoutSeconds)*time.Second, cfg.Workdir),
		Resolver:    deps.NewResolver(runner, 0),
		Runner:      runner,
		History:     history,
		Transcript:  transcript,
		Events:      events,
		Options: session.Options{
			AutoExecute:    cfg.AutoExecute,
			SaveCode:       cfg.SaveCode,
			OpenResources:  cfg.OpenResources,
			Debug:          cfg.Debug,
			OutputDir:      cfg.OutputDir,
			Workdir:        cfg.Workdir,
			TranscriptPath: cfg.TranscriptPath,
			Version:        cfg.Version,
			InstallWait:    time.Duration(cfg.InstallWaitSeconds) * time.Second,
			HistoryLimit:   cfg.HistoryLimit,
		},
	})

	return &Runtime{
		Config:      cfg,
		Session:     sess,
		Controller:  controller,
		Registry:    registry,
		Credentials: creds,
		History:     history,
		Transcript:  transcript,
		Events:      events,
		Logger:      logger,
		Warnings:    warnings,
		logFile:     logFile,
	}, nil
}

// Close releases resources managed by the runtime.
func (r *Runtime) Close() error {
	var errs []error
	if r.Registry != nil {
		errs = append(errs, r.Registry.Close())
	}
	if r.History != nil {
		errs = append(errs, r.History.Close())
	}
	if r.Transcript != nil {
		errs = append(errs, r.Transcript.Close())
	}
	if r.logFile != nil {
		errs = append(errs, r.logFile.Close())
	}
	return errors.Join(errs...)
}

// Banner returns the startup lines the console prints before the first
// prompt.
func (r *Runtime) Banner() []string {
	lines := []string{
		fmt.Sprintf("OS: %q, Language: %q, Mode: %q, Model: %q",
			r.Session.OS, r.Session.Language, string(r.Session.Mode), r.Session.Model),
	}
	for _, warning := range r.Warnings {
		lines = append(lines, "warning: "+warning)
	}
	return lines
}

// Models lists every model the runtime can reach: configured profiles plus
// whatever a local Ollama daemon reports. The daemon being down is not an
// error; its models are simply absent.
func (r *Runtime) Models(ctx context.Context) []string {
	models := r.Registry.Models()
	local, err := llm.FetchLocalModels(ctx, r.Config.OllamaEndpoint)
	if err != nil {
		r.Logger.Printf("local model listing failed: %v", err)
		return models
	}
	seen := make(map[string]struct{}, len(models))
	for _, model := range models {
		seen[model] = struct{}{}
	}
	for _, model := range local {
		if _, ok := seen[model]; !ok {
			models = append(models, model)
		}
	}
	return models
}
