package llm

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeProfile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadProfileParsesAllKeys(t *testing.T) {
	path := writeProfile(t, t.TempDir(), "gpt-4.config", `
# sampling
temperature = 0.7
max_tokens=512

start_sep=[[code]]
end_sep=[[/code]]
skip_first_line=true
api_base=https://proxy.example.com/v1
`)

	cfg, err := LoadProfile(path)
	require.NoError(t, err)
	assert.Equal(t, "gpt-4", cfg.Model)
	assert.Equal(t, ProviderOpenAI, cfg.Provider)
	assert.Equal(t, "[[code]]", cfg.StartSep)
	assert.Equal(t, "[[/code]]", cfg.EndSep)
	assert.True(t, cfg.SkipFirstLine)
	assert.Equal(t, 0.7, cfg.Temperature)
	assert.Equal(t, 512, cfg.MaxTokens)
	assert.Equal(t, "https://proxy.example.com/v1", cfg.APIBase)
}

func TestLoadProfileDefaultsFromFileName(t *testing.T) {
	path := writeProfile(t, t.TempDir(), "gemini-pro.config", "temperature=0.2\n")

	cfg, err := LoadProfile(path)
	require.NoError(t, err)
	assert.Equal(t, "gemini-pro", cfg.Model)
	assert.Equal(t, ProviderGoogle, cfg.Provider)
	assert.Equal(t, DefaultStartSep, cfg.StartSep)
	assert.Equal(t, DefaultEndSep, cfg.EndSep)
	assert.False(t, cfg.SkipFirstLine)
}

func TestLoadProfileModelKeyOverridesFileName(t *testing.T) {
	path := writeProfile(t, t.TempDir(), "starcoder.config", "hf_model=bigcode/starcoder2\n")

	cfg, err := LoadProfile(path)
	require.NoError(t, err)
	assert.Equal(t, "bigcode/starcoder2", cfg.Model)
	assert.Equal(t, ProviderHuggingFace, cfg.Provider)
}

func TestLoadProfileRejectsBadValues(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadProfile(writeProfile(t, dir, "a.config", "temperature=hot\n"))
	assert.Error(t, err)

	_, err = LoadProfile(writeProfile(t, dir, "b.config", "max_tokens=many\n"))
	assert.Error(t, err)

	_, err = LoadProfile(writeProfile(t, dir, "c.config", "skip_first_line=maybe\n"))
	assert.Error(t, err)
}

func TestInferProvider(t *testing.T) {
	cases := map[string]Provider{
		"gpt-4":                 ProviderOpenAI,
		"gpt-3.5-turbo":         ProviderOpenAI,
		"gemini-pro":            ProviderGoogle,
		"palm/chat-bison":       ProviderGoogle,
		"ollama/llama3":         ProviderOllama,
		"bigcode/starcoder":     ProviderHuggingFace,
		"mistralai/Mistral-7B":  ProviderHuggingFace,
		"WizardLM/WizardCoder":  ProviderHuggingFace,
		"codellama/CodeLlama-7": ProviderHuggingFace,
	}
	for model, want := range cases {
		assert.Equal(t, want, InferProvider(model), model)
	}
}

func TestResolveProviderExplicitWins(t *testing.T) {
	cfg := BackendConfig{Model: "gpt-4", Provider: ProviderHuggingFace}
	assert.Equal(t, ProviderHuggingFace, resolveProvider(cfg))
}

func TestResolveProviderAPIBaseImpliesOpenAI(t *testing.T) {
	cfg := BackendConfig{Model: "local-mixtral", APIBase: "http://localhost:8080/v1"}
	assert.Equal(t, ProviderOpenAI, resolveProvider(cfg))
}

func TestCredentialWarnings(t *testing.T) {
	creds := Credentials{
		OpenAIKey:      "not-a-key",
		HuggingFaceKey: "hf_abcdef",
		GoogleKey:      "short",
	}
	warnings := creds.Warnings()
	require.Len(t, warnings, 2)
	assert.Contains(t, warnings[0], "OPENAI_API_KEY")
	assert.Contains(t, warnings[1], "GOOGLE_API_KEY")
}

func TestCredentialMissing(t *testing.T) {
	creds := Credentials{OpenAIKey: "sk-test"}
	assert.NoError(t, creds.Missing(ProviderOpenAI))
	assert.NoError(t, creds.Missing(ProviderOllama))
	assert.ErrorIs(t, creds.Missing(ProviderGoogle), ErrBackendUnavailable)
}
