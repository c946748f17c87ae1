package llm

import (
	"context"
	"encoding/json"
	"fmt"
)

const defaultOpenAIBase = "https://api.openai.com/v1"

// OpenAIClient speaks the chat completions protocol. It also serves any
// OpenAI-compatible endpoint selected through a profile's api_base override.
type OpenAIClient struct {
	APIKey string
	transport
}

type openaiResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		Text string `json:"text"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// NewOpenAIClient builds a chat completions client.
func NewOpenAIClient(apiKey string, debug bool) *OpenAIClient {
	return &OpenAIClient{
		APIKey:    apiKey,
		transport: newTransport("openai", debug),
	}
}

// Generate sends the framed request and returns the raw completion text.
func (c *OpenAIClient) Generate(ctx context.Context, req Request) (string, error) {
	temperature, maxTokens := SamplingFor(req)
	payload := map[string]interface{}{
		"model":       req.Config.Model,
		"messages":    openaiMessages(BuildMessages(req)),
		"temperature": temperature,
		"max_tokens":  maxTokens,
	}
	base := req.Config.APIBase
	if base == "" {
		base = defaultOpenAIBase
	}
	headers := map[string]string{}
	if c.APIKey != "" {
		headers["Authorization"] = "Bearer " + c.APIKey
	}
	body, err := c.postJSON(ctx, base+"/chat/completions", headers, payload)
	if err != nil {
		return "", err
	}
	return decodeOpenAIResponse(body)
}

func decodeOpenAIResponse(body []byte) (string, error) {
	var raw openaiResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return "", fmt.Errorf("openai: decode response: %w", err)
	}
	if raw.Error != nil {
		return "", fmt.Errorf("openai: %w: %s", ErrBackendUnavailable, raw.Error.Message)
	}
	if len(raw.Choices) == 0 {
		return "", fmt.Errorf("openai: %w: empty choices", ErrBackendUnavailable)
	}
	return firstNonEmpty(raw.Choices[0].Message.Content, raw.Choices[0].Text), nil
}

// openaiMessages converts framing messages into the wire shape. A message
// carrying images becomes a multimodal content-part array.
func openaiMessages(messages []Message) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(messages))
	for _, msg := range messages {
		if len(msg.Images) == 0 {
			out = append(out, map[string]interface{}{
				"role":    msg.Role,
				"content": msg.Content,
			})
			continue
		}
		parts := []map[string]interface{}{
			{"type": "text", "text": msg.Content},
		}
		for _, image := range msg.Images {
			url := image
			if !IsImageURL(image) {
				encoded, err := EncodeImageFile(image)
				if err != nil {
					continue
				}
				url = encoded
			}
			parts = append(parts, map[string]interface{}{
				"type":      "image_url",
				"image_url": map[string]interface{}{"url": url},
			})
		}
		out = append(out, map[string]interface{}{
			"role":    msg.Role,
			"content": parts,
		})
	}
	return out
}
