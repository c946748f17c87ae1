package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

const defaultOllamaEndpoint = "http://localhost:11434"

// OllamaClient serves models on a local Ollama server. Model names carry an
// `ollama/` prefix in profiles, which is stripped before dispatch.
type OllamaClient struct {
	Endpoint string
	transport
}

type ollamaMessage struct {
	Role    string   `json:"role"`
	Content string   `json:"content"`
	Images  []string `json:"images,omitempty"`
}

type ollamaResponse struct {
	Response string `json:"response"`
	Message  *struct {
		Content string `json:"content"`
	} `json:"message"`
}

// NewOllamaClient builds a local chat client.
func NewOllamaClient(endpoint string, debug bool) *OllamaClient {
	if endpoint == "" {
		endpoint = defaultOllamaEndpoint
	}
	return &OllamaClient{
		Endpoint:  endpoint,
		transport: newTransport("ollama", debug),
	}
}

// Generate sends the framed request to /api/chat and returns the raw text.
func (c *OllamaClient) Generate(ctx context.Context, req Request) (string, error) {
	temperature, maxTokens := SamplingFor(req)
	payload := map[string]interface{}{
		"model":    strings.TrimPrefix(req.Config.Model, "ollama/"),
		"messages": ollamaMessages(BuildMessages(req)),
		"stream":   false,
		"options": map[string]interface{}{
			"temperature": temperature,
			"num_predict": maxTokens,
		},
	}
	body, err := c.postJSON(ctx, c.Endpoint+"/api/chat", nil, payload)
	if err != nil {
		return "", err
	}
	return decodeOllamaResponse(body)
}

func decodeOllamaResponse(body []byte) (string, error) {
	var raw ollamaResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return "", fmt.Errorf("ollama: decode response: %w", err)
	}
	if raw.Message != nil && raw.Message.Content != "" {
		return raw.Message.Content, nil
	}
	return raw.Response, nil
}

// ollamaMessages converts framing messages, inlining local images as raw
// base64 without the data-URI prefix the other transports use.
func ollamaMessages(messages []Message) []ollamaMessage {
	out := make([]ollamaMessage, 0, len(messages))
	for _, msg := range messages {
		entry := ollamaMessage{Role: msg.Role, Content: msg.Content}
		for _, image := range msg.Images {
			if IsImageURL(image) {
				continue
			}
			encoded, err := EncodeImageFile(image)
			if err != nil {
				continue
			}
			if idx := strings.Index(encoded, ";base64,"); idx >= 0 {
				entry.Images = append(entry.Images, encoded[idx+len(";base64,"):])
			}
		}
		out = append(out, entry)
	}
	return out
}
