package runtime

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/lexcodex/incant/llm"
)

// Config captures every knob shared across the incant CLI and console entry
// points. Keeping it as a lightweight struct makes it trivial to reuse in
// tests or future headless workflows.
type Config struct {
	ConfigDir      string
	ProfilesDir    string
	ConfigPath     string
	HistoryPath    string
	TranscriptPath string
	OutputDir      string
	Workdir        string

	Model          string
	Mode           string
	Language       string
	OllamaEndpoint string
	Version        string

	TimeoutSeconds     int
	InstallWaitSeconds int
	HistoryLimit       int

	AutoExecute   bool
	DisplayCode   bool
	SaveCode      bool
	OpenResources bool
	Debug         bool
	Log           bool
}

// DefaultConfig infers sensible defaults based on the home and working
// directories. Errors from os.Getwd are ignored so callers can override
// manually.
func DefaultConfig() Config {
	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}
	home, err := os.UserHomeDir()
	if err != nil {
		home = cwd
	}
	configDir := filepath.Join(home, ".incant")
	return Config{
		ConfigDir:          configDir,
		ProfilesDir:        filepath.Join(configDir, "profiles"),
		ConfigPath:         filepath.Join(configDir, "config.yaml"),
		HistoryPath:        filepath.Join(configDir, "history.db"),
		TranscriptPath:     filepath.Join(configDir, "transcript.ndjson"),
		OutputDir:          filepath.Join(cwd, "output"),
		Workdir:            cwd,
		Model:              "gpt-3.5-turbo",
		Mode:               string(llm.ModeCode),
		Language:           "python",
		OllamaEndpoint:     "http://localhost:11434",
		TimeoutSeconds:     60,
		InstallWaitSeconds: 10,
		HistoryLimit:       10,
		DisplayCode:        true,
		OpenResources:      true,
	}
}

// Normalize ensures every filesystem path is absolute and fills missing
// defaults so runtime initialization never has to re-check the same
// invariants.
func (c *Config) Normalize() error {
	if c.ConfigDir == "" {
		return fmt.Errorf("config directory required")
	}
	absDir, err := filepath.Abs(c.ConfigDir)
	if err != nil {
		return fmt.Errorf("resolve config directory: %w", err)
	}
	c.ConfigDir = absDir
	if c.ProfilesDir == "" {
		c.ProfilesDir = filepath.Join(c.ConfigDir, "profiles")
	}
	if !filepath.IsAbs(c.ProfilesDir) {
		c.ProfilesDir = filepath.Join(c.ConfigDir, c.ProfilesDir)
	}
	if c.ConfigPath == "" {
		c.ConfigPath = filepath.Join(c.ConfigDir, "config.yaml")
	}
	if !filepath.IsAbs(c.ConfigPath) {
		c.ConfigPath = filepath.Join(c.ConfigDir, c.ConfigPath)
	}
	if c.HistoryPath == "" {
		c.HistoryPath = filepath.Join(c.ConfigDir, "history.db")
	}
	if !filepath.IsAbs(c.HistoryPath) {
		c.HistoryPath = filepath.Join(c.ConfigDir, c.HistoryPath)
	}
	if c.TranscriptPath == "" {
		c.TranscriptPath = filepath.Join(c.ConfigDir, "transcript.ndjson")
	}
	if !filepath.IsAbs(c.TranscriptPath) {
		c.TranscriptPath = filepath.Join(c.ConfigDir, c.TranscriptPath)
	}
	if c.Workdir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			cwd = "."
		}
		c.Workdir = cwd
	}
	absWorkdir, err := filepath.Abs(c.Workdir)
	if err != nil {
		return fmt.Errorf("resolve workdir: %w", err)
	}
	c.Workdir = absWorkdir
	if c.OutputDir == "" {
		c.OutputDir = filepath.Join(c.Workdir, "output")
	}
	if !filepath.IsAbs(c.OutputDir) {
		c.OutputDir = filepath.Join(c.Workdir, c.OutputDir)
	}
	if c.Model == "" {
		c.Model = "gpt-3.5-turbo"
	}
	if c.Mode == "" {
		c.Mode = string(llm.ModeCode)
	}
	if _, ok := llm.ParseMode(c.Mode); !ok {
		return fmt.Errorf("unknown mode %q (code, script, command, vision, chat)", c.Mode)
	}
	if c.Language == "" {
		c.Language = "python"
	}
	c.Language = strings.ToLower(c.Language)
	if c.OllamaEndpoint == "" {
		c.OllamaEndpoint = "http://localhost:11434"
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 60
	}
	if c.InstallWaitSeconds <= 0 {
		c.InstallWaitSeconds = 10
	}
	if c.HistoryLimit <= 0 {
		c.HistoryLimit = 10
	}
	return nil
}

// FileConfig captures persisted preferences for reuse across runs. Pointer
// fields distinguish "unset" from an explicit false.
type FileConfig struct {
	Model          string `yaml:"model,omitempty"`
	Mode           string `yaml:"mode,omitempty"`
	Language       string `yaml:"language,omitempty"`
	OllamaEndpoint string `yaml:"ollama_endpoint,omitempty"`
	TimeoutSeconds int    `yaml:"timeout_seconds,omitempty"`
	AutoExecute    *bool  `yaml:"auto_execute,omitempty"`
	DisplayCode    *bool  `yaml:"display_code,omitempty"`
	SaveCode       *bool  `yaml:"save_code,omitempty"`
	OpenResources  *bool  `yaml:"open_resources,omitempty"`
	Log            *bool  `yaml:"log,omitempty"`
}

// LoadFileConfig loads persisted preferences from disk.
func LoadFileConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return FileConfig{}, err
	}
	var cfg FileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return FileConfig{}, err
	}
	return cfg, nil
}

// SaveFileConfig persists preferences for future sessions.
func SaveFileConfig(path string, cfg FileConfig) error {
	if path == "" {
		return fmt.Errorf("config path required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Apply merges persisted preferences into the config. Only fields the file
// actually sets are copied, so command-line flags applied afterwards win.
func (c *Config) Apply(fc FileConfig) {
	if fc.Model != "" {
		c.Model = fc.Model
	}
	if fc.Mode != "" {
		c.Mode = fc.Mode
	}
	if fc.Language != "" {
		c.Language = fc.Language
	}
	if fc.OllamaEndpoint != "" {
		c.OllamaEndpoint = fc.OllamaEndpoint
	}
	if fc.TimeoutSeconds > 0 {
		c.TimeoutSeconds = fc.TimeoutSeconds
	}
	if fc.AutoExecute != nil {
		c.AutoExecute = *fc.AutoExecute
	}
	if fc.DisplayCode != nil {
		c.DisplayCode = *fc.DisplayCode
	}
	if fc.SaveCode != nil {
		c.SaveCode = *fc.SaveCode
	}
	if fc.OpenResources != nil {
		c.OpenResources = *fc.OpenResources
	}
	if fc.Log != nil {
		c.Log = *fc.Log
	}
}

// Snapshot converts the live config into its persistable form.
func (c Config) Snapshot() FileConfig {
	autoExecute := c.AutoExecute
	displayCode := c.DisplayCode
	saveCode := c.SaveCode
	openResources := c.OpenResources
	logOn := c.Log
	return FileConfig{
		Model:          c.Model,
		Mode:           c.Mode,
		Language:       c.Language,
		OllamaEndpoint: c.OllamaEndpoint,
		TimeoutSeconds: c.TimeoutSeconds,
		AutoExecute:    &autoExecute,
		DisplayCode:    &displayCode,
		SaveCode:       &saveCode,
		OpenResources:  &openResources,
		Log:            &logOn,
	}
}
