package runtime

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeFillsDerivedPaths(t *testing.T) {
	configDir := t.TempDir()
	workdir := t.TempDir()
	cfg := Config{ConfigDir: configDir, Workdir: workdir}
	require.NoError(t, cfg.Normalize())

	require.Equal(t, filepath.Join(configDir, "profiles"), cfg.ProfilesDir)
	require.Equal(t, filepath.Join(configDir, "config.yaml"), cfg.ConfigPath)
	require.Equal(t, filepath.Join(configDir, "history.db"), cfg.HistoryPath)
	require.Equal(t, filepath.Join(workdir, "output"), cfg.OutputDir)
	require.Equal(t, "gpt-3.5-turbo", cfg.Model)
	require.Equal(t, "code", cfg.Mode)
	require.Equal(t, "python", cfg.Language)
	require.Equal(t, 60, cfg.TimeoutSeconds)
	require.Equal(t, 10, cfg.HistoryLimit)
}

func TestNormalizeRejectsUnknownMode(t *testing.T) {
	cfg := Config{ConfigDir: t.TempDir(), Mode: "nonsense"}
	require.Error(t, cfg.Normalize())
}

func TestNormalizeLowercasesLanguage(t *testing.T) {
	cfg := Config{ConfigDir: t.TempDir(), Language: "JavaScript"}
	require.NoError(t, cfg.Normalize())
	require.Equal(t, "javascript", cfg.Language)
}

func TestFileConfigRoundTripAndApply(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	autoExecute := true
	displayCode := false
	saved := FileConfig{
		Model:       "ollama/llama3",
		Language:    "javascript",
		AutoExecute: &autoExecute,
		DisplayCode: &displayCode,
	}
	require.NoError(t, SaveFileConfig(path, saved))

	loaded, err := LoadFileConfig(path)
	require.NoError(t, err)

	cfg := DefaultConfig()
	cfg.Apply(loaded)
	require.Equal(t, "ollama/llama3", cfg.Model)
	require.Equal(t, "javascript", cfg.Language)
	require.True(t, cfg.AutoExecute)
	require.False(t, cfg.DisplayCode)
	require.Equal(t, "code", cfg.Mode)
}

func TestLoadFileConfigMissingFile(t *testing.T) {
	_, err := LoadFileConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestNewRuntimeWiresCollaborators(t *testing.T) {
	cfg := Config{
		ConfigDir: filepath.Join(t.TempDir(), ".incant"),
		Workdir:   t.TempDir(),
		Log:       true,
		Version:   "test",
	}
	rt, err := New(context.Background(), cfg)
	require.NoError(t, err)
	defer rt.Close()

	require.NotNil(t, rt.Controller)
	require.NotNil(t, rt.Session)
	require.NotNil(t, rt.Registry)
	require.NotNil(t, rt.History)
	require.NotNil(t, rt.Transcript)

	_, err = os.Stat(filepath.Join(rt.Config.ConfigDir, "incant.log"))
	require.NoError(t, err)
	_, err = os.Stat(rt.Config.HistoryPath)
	require.NoError(t, err)

	banner := rt.Banner()
	require.NotEmpty(t, banner)
	require.Contains(t, banner[0], `Mode: "code"`)
	require.Contains(t, banner[0], `Model: "gpt-3.5-turbo"`)
}
