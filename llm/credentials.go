package llm

import (
	"fmt"
	"os"
	"strings"
)

// CredentialsFromEnv reads provider keys from the environment. Keys are
// treated as opaque strings; Warnings reports likely copy/paste mistakes.
func CredentialsFromEnv() Credentials {
	return Credentials{
		OpenAIKey:      os.Getenv("OPENAI_API_KEY"),
		GoogleKey:      os.Getenv("GOOGLE_API_KEY"),
		HuggingFaceKey: os.Getenv("HUGGINGFACE_API_KEY"),
		OllamaEndpoint: os.Getenv("OLLAMA_HOST"),
	}
}

// KeyFor returns the credential matching a resolved provider.
func (c Credentials) KeyFor(provider Provider) string {
	switch provider {
	case ProviderOpenAI:
		return c.OpenAIKey
	case ProviderGoogle:
		return c.GoogleKey
	case ProviderHuggingFace:
		return c.HuggingFaceKey
	default:
		return ""
	}
}

// Warnings flags keys that do not look like what the provider issues. These
// are advisory; a nonstandard key is still sent as-is.
func (c Credentials) Warnings() []string {
	var warnings []string
	if c.OpenAIKey != "" && !strings.HasPrefix(c.OpenAIKey, "sk-") {
		warnings = append(warnings, "OPENAI_API_KEY does not start with sk-")
	}
	if c.HuggingFaceKey != "" && !strings.HasPrefix(c.HuggingFaceKey, "hf_") {
		warnings = append(warnings, "HUGGINGFACE_API_KEY does not start with hf_")
	}
	if c.GoogleKey != "" && (len(c.GoogleKey) < 15 || strings.ContainsAny(c.GoogleKey, " \t")) {
		warnings = append(warnings, "GOOGLE_API_KEY looks malformed")
	}
	return warnings
}

// Missing reports which credential a provider needs but the environment
// lacks. Ollama runs keyless so it never reports missing.
func (c Credentials) Missing(provider Provider) error {
	if provider == ProviderOllama {
		return nil
	}
	if c.KeyFor(provider) != "" {
		return nil
	}
	var envVar string
	switch provider {
	case ProviderOpenAI:
		envVar = "OPENAI_API_KEY"
	case ProviderGoogle:
		envVar = "GOOGLE_API_KEY"
	case ProviderHuggingFace:
		envVar = "HUGGINGFACE_API_KEY"
	}
	return fmt.Errorf("%w: %s is not set", ErrBackendUnavailable, envVar)
}
