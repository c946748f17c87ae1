package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type roundTripFunc func(*http.Request) *http.Response

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req), nil
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Status:     http.StatusText(status),
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     make(http.Header),
	}
}

func TestOpenAIGenerate(t *testing.T) {
	client := NewOpenAIClient("sk-test", false)
	client.client = &http.Client{
		Transport: roundTripFunc(func(req *http.Request) *http.Response {
			assert.Equal(t, "/v1/chat/completions", req.URL.Path)
			assert.Equal(t, "Bearer sk-test", req.Header.Get("Authorization"))
			var payload map[string]interface{}
			assert.NoError(t, json.NewDecoder(req.Body).Decode(&payload))
			assert.Equal(t, "gpt-4", payload["model"])
			messages := payload["messages"].([]interface{})
			assert.Len(t, messages, 3)
			first := messages[0].(map[string]interface{})
			assert.Equal(t, "system", first["role"])
			return jsonResponse(200, `{"choices":[{"message":{"content":"print('hi')"}}]}`)
		}),
	}

	req := Request{
		Instruction: "print hi",
		Mode:        ModeCode,
		Language:    "python",
		OS:          "linux",
		Config:      DefaultProfile("gpt-4"),
	}
	text, err := client.Generate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "print('hi')", text)
}

func TestOpenAIGenerateUsesAPIBaseOverride(t *testing.T) {
	client := NewOpenAIClient("", false)
	client.client = &http.Client{
		Transport: roundTripFunc(func(req *http.Request) *http.Response {
			assert.Equal(t, "proxy.local", req.URL.Host)
			assert.Empty(t, req.Header.Get("Authorization"))
			return jsonResponse(200, `{"choices":[{"text":"ok"}]}`)
		}),
	}

	cfg := DefaultProfile("local-model")
	cfg.APIBase = "http://proxy.local/v1"
	text, err := client.Generate(context.Background(), Request{Instruction: "x", Mode: ModeChat, Config: cfg})
	require.NoError(t, err)
	assert.Equal(t, "ok", text)
}

func TestOpenAIGenerateMapsQuotaStatus(t *testing.T) {
	client := NewOpenAIClient("sk-test", false)
	client.client = &http.Client{
		Transport: roundTripFunc(func(req *http.Request) *http.Response {
			return jsonResponse(http.StatusTooManyRequests, `{"error":{"message":"rate limited"}}`)
		}),
	}

	_, err := client.Generate(context.Background(), Request{Instruction: "x", Mode: ModeCode, Config: DefaultProfile("gpt-4")})
	assert.ErrorIs(t, err, ErrQuotaExceeded)
}

func TestOpenAIGenerateMapsQuotaDetail(t *testing.T) {
	client := NewOpenAIClient("sk-test", false)
	client.client = &http.Client{
		Transport: roundTripFunc(func(req *http.Request) *http.Response {
			return jsonResponse(http.StatusForbidden, `{"error":{"message":"You exceeded your current quota"}}`)
		}),
	}

	_, err := client.Generate(context.Background(), Request{Instruction: "x", Mode: ModeCode, Config: DefaultProfile("gpt-4")})
	assert.ErrorIs(t, err, ErrQuotaExceeded)
}

func TestOpenAIGenerateMapsServerError(t *testing.T) {
	client := NewOpenAIClient("sk-test", false)
	client.client = &http.Client{
		Transport: roundTripFunc(func(req *http.Request) *http.Response {
			return jsonResponse(http.StatusBadGateway, "upstream died")
		}),
	}

	_, err := client.Generate(context.Background(), Request{Instruction: "x", Mode: ModeCode, Config: DefaultProfile("gpt-4")})
	assert.ErrorIs(t, err, ErrBackendUnavailable)
	assert.NotErrorIs(t, err, ErrQuotaExceeded)
}

func TestGoogleGenerate(t *testing.T) {
	client := NewGoogleClient("key123", false)
	client.client = &http.Client{
		Transport: roundTripFunc(func(req *http.Request) *http.Response {
			assert.Equal(t, "/v1beta/models/gemini-pro:generateContent", req.URL.Path)
			assert.Equal(t, "key123", req.URL.Query().Get("key"))
			var payload map[string]interface{}
			assert.NoError(t, json.NewDecoder(req.Body).Decode(&payload))
			contents := payload["contents"].([]interface{})
			require.Len(t, contents, 1)
			first := contents[0].(map[string]interface{})
			assert.Equal(t, "user", first["role"])
			return jsonResponse(200, `{"candidates":[{"content":{"parts":[{"text":"echo"},{"text":" hi"}]}}]}`)
		}),
	}

	req := Request{Instruction: "say hi", Mode: ModeCommand, OS: "linux", Config: DefaultProfile("gemini-pro")}
	text, err := client.Generate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "echo hi", text)
}

func TestGoogleGenerateReroutesPalm(t *testing.T) {
	client := NewGoogleClient("key123", false)
	client.client = &http.Client{
		Transport: roundTripFunc(func(req *http.Request) *http.Response {
			assert.Contains(t, req.URL.Path, "models/gemini-pro:")
			return jsonResponse(200, `{"candidates":[{"content":{"parts":[{"text":"ok"}]}}]}`)
		}),
	}

	_, err := client.Generate(context.Background(), Request{Instruction: "x", Mode: ModeChat, Config: DefaultProfile("palm/chat-bison")})
	assert.NoError(t, err)
}

func TestHuggingFaceGenerate(t *testing.T) {
	client := NewHuggingFaceClient("hf_test", false)
	client.client = &http.Client{
		Transport: roundTripFunc(func(req *http.Request) *http.Response {
			assert.Equal(t, "/models/bigcode/starcoder", req.URL.Path)
			assert.Equal(t, "Bearer hf_test", req.Header.Get("Authorization"))
			var payload map[string]interface{}
			assert.NoError(t, json.NewDecoder(req.Body).Decode(&payload))
			assert.NotEmpty(t, payload["inputs"])
			return jsonResponse(200, `[{"generated_text":"def f(): pass"}]`)
		}),
	}

	cfg := DefaultProfile("huggingface/bigcode/starcoder")
	text, err := client.Generate(context.Background(), Request{Instruction: "stub", Mode: ModeCode, Language: "python", Config: cfg})
	require.NoError(t, err)
	assert.Equal(t, "def f(): pass", text)
}

func TestNewAdapterSelectsTransportByModel(t *testing.T) {
	creds := Credentials{}
	cases := map[string]string{
		"gpt-4":             "*llm.OpenAIClient",
		"gemini-pro":        "*llm.GoogleClient",
		"ollama/llama3":     "*llm.OllamaClient",
		"bigcode/starcoder": "*llm.HuggingFaceClient",
	}
	for model, want := range cases {
		adapter := NewAdapter(DefaultProfile(model), creds, false)
		retry, ok := adapter.(*retryAdapter)
		require.True(t, ok, model)
		assert.Equal(t, want, fmt.Sprintf("%T", retry.inner), model)
	}
}
