package llm

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Provider identifies the transport family a model dispatches through.
type Provider string

const (
	ProviderOpenAI      Provider = "openai"
	ProviderGoogle      Provider = "google"
	ProviderHuggingFace Provider = "huggingface"
	ProviderOllama      Provider = "ollama"
)

// DefaultStartSep and DefaultEndSep are the fenced-code-block markers assumed
// when a profile does not override them.
const (
	DefaultStartSep = "```"
	DefaultEndSep   = "```"
)

// BackendConfig is the static per-model descriptor loaded from a profile file.
// Immutable once loaded; looked up by model name at dispatch time.
type BackendConfig struct {
	Model         string
	Provider      Provider
	StartSep      string
	EndSep        string
	SkipFirstLine bool
	Temperature   float64
	MaxTokens     int
	APIBase       string
}

// DefaultProfile returns the descriptor used for models without a profile file.
func DefaultProfile(model string) BackendConfig {
	return BackendConfig{
		Model:       model,
		Provider:    InferProvider(model),
		StartSep:    DefaultStartSep,
		EndSep:      DefaultEndSep,
		Temperature: 0.1,
		MaxTokens:   2048,
	}
}

// InferProvider keys the transport family off the model name when a profile
// carries no explicit provider.
func InferProvider(model string) Provider {
	name := strings.ToLower(model)
	switch {
	case strings.HasPrefix(name, "ollama/"):
		return ProviderOllama
	case strings.Contains(name, "gpt"):
		return ProviderOpenAI
	case strings.Contains(name, "gemini"), strings.Contains(name, "palm"):
		return ProviderGoogle
	default:
		return ProviderHuggingFace
	}
}

// LoadProfile parses a key=value profile file into a BackendConfig. The model
// name defaults to the file name minus its extension; a `model` key overrides
// it. Lines starting with # and lines without = are skipped.
func LoadProfile(path string) (BackendConfig, error) {
	file, err := os.Open(path)
	if err != nil {
		return BackendConfig{}, err
	}
	defer file.Close()

	cfg := DefaultProfile(modelNameFromPath(path))
	// Provider resolves after parsing so api_base and an explicit provider
	// key beat the model-name heuristic.
	cfg.Provider = ""
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		idx := strings.Index(line, "=")
		if idx < 0 {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(line[:idx]))
		value := strings.TrimSpace(line[idx+1:])
		if err := applyProfileKey(&cfg, key, value); err != nil {
			return BackendConfig{}, fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
	}
	if err := scanner.Err(); err != nil {
		return BackendConfig{}, err
	}
	cfg.Provider = resolveProvider(cfg)
	return cfg, nil
}

func applyProfileKey(cfg *BackendConfig, key, value string) error {
	switch key {
	case "model", "hf_model":
		if value != "" {
			cfg.Model = value
		}
	case "provider":
		cfg.Provider = Provider(strings.ToLower(value))
	case "start_sep":
		cfg.StartSep = value
	case "end_sep":
		cfg.EndSep = value
	case "skip_first_line":
		parsed, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("skip_first_line: %w", err)
		}
		cfg.SkipFirstLine = parsed
	case "temperature":
		parsed, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("temperature: %w", err)
		}
		cfg.Temperature = parsed
	case "max_tokens":
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("max_tokens: %w", err)
		}
		cfg.MaxTokens = parsed
	case "api_base":
		cfg.APIBase = value
	}
	return nil
}

func resolveProvider(cfg BackendConfig) Provider {
	switch cfg.Provider {
	case ProviderOpenAI, ProviderGoogle, ProviderHuggingFace, ProviderOllama:
		return cfg.Provider
	}
	if cfg.APIBase != "" {
		return ProviderOpenAI
	}
	return InferProvider(cfg.Model)
}

func modelNameFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
