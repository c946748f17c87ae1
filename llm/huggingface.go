package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

const huggingFaceAPIBase = "https://api-inference.huggingface.co/models"

// HuggingFaceClient serves hosted inference models. Any model name that maps
// to no other provider family dispatches here.
type HuggingFaceClient struct {
	APIKey string
	transport
}

// NewHuggingFaceClient builds a hosted inference client.
func NewHuggingFaceClient(apiKey string, debug bool) *HuggingFaceClient {
	return &HuggingFaceClient{
		APIKey:    apiKey,
		transport: newTransport("huggingface", debug),
	}
}

// Generate flattens the chat framing into a single prompt, since the hosted
// inference endpoint takes plain text rather than role messages.
func (c *HuggingFaceClient) Generate(ctx context.Context, req Request) (string, error) {
	temperature, maxTokens := SamplingFor(req)
	payload := map[string]interface{}{
		"inputs": flattenMessages(BuildMessages(req)),
		"parameters": map[string]interface{}{
			"temperature":      temperature,
			"max_new_tokens":   maxTokens,
			"return_full_text": false,
		},
	}
	model := strings.TrimPrefix(req.Config.Model, "huggingface/")
	headers := map[string]string{}
	if c.APIKey != "" {
		headers["Authorization"] = "Bearer " + c.APIKey
	}
	body, err := c.postJSON(ctx, huggingFaceAPIBase+"/"+model, headers, payload)
	if err != nil {
		return "", err
	}
	return decodeHuggingFaceResponse(body)
}

func decodeHuggingFaceResponse(body []byte) (string, error) {
	var rows []struct {
		GeneratedText string `json:"generated_text"`
	}
	if err := json.Unmarshal(body, &rows); err == nil && len(rows) > 0 {
		return rows[0].GeneratedText, nil
	}
	var single struct {
		GeneratedText string `json:"generated_text"`
		Error         string `json:"error"`
	}
	if err := json.Unmarshal(body, &single); err != nil {
		return "", fmt.Errorf("huggingface: decode response: %w", err)
	}
	if single.Error != "" {
		return "", fmt.Errorf("huggingface: %w: %s", ErrBackendUnavailable, single.Error)
	}
	return single.GeneratedText, nil
}

func flattenMessages(messages []Message) string {
	var b strings.Builder
	for _, msg := range messages {
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(msg.Content)
	}
	return b.String()
}
