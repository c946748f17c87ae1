package llm

import (
	"context"
	"time"
)

// Request carries everything a transport needs to produce one raw response.
// Addenda are extra prompt lines appended after the mode framing, such as
// chart/table rendering hints or inlined file data.
type Request struct {
	Instruction string
	Mode        Mode
	Language    string
	OS          string
	Images      []string
	Addenda     []string
	Config      BackendConfig
}

// Message is a single chat turn in the provider payload.
type Message struct {
	Role    string
	Content string
	Images  []string
}

// Adapter is the uniform contract over heterogeneous providers: build the
// provider-specific prompt, perform the network call, return the raw text
// unmodified.
type Adapter interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// Credentials holds the opaque secrets a transport forwards to its provider.
type Credentials struct {
	OpenAIKey      string
	GoogleKey      string
	HuggingFaceKey string
	OllamaEndpoint string
}

// NewAdapter selects the transport for the request's provider family and wraps
// it with the bounded quota retry.
func NewAdapter(cfg BackendConfig, creds Credentials, debug bool) Adapter {
	var inner Adapter
	switch resolveProvider(cfg) {
	case ProviderGoogle:
		inner = NewGoogleClient(creds.GoogleKey, debug)
	case ProviderHuggingFace:
		inner = NewHuggingFaceClient(creds.HuggingFaceKey, debug)
	case ProviderOllama:
		inner = NewOllamaClient(creds.OllamaEndpoint, debug)
	default:
		inner = NewOpenAIClient(creds.OpenAIKey, debug)
	}
	return WithRetry(inner, 2*time.Second)
}
