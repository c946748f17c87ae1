package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

const googleAPIBase = "https://generativelanguage.googleapis.com/v1beta"

// GoogleClient serves the gemini and palm model families through the
// generateContent endpoint. Legacy palm names are rerouted to a current model.
type GoogleClient struct {
	APIKey string
	transport
}

type googleResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// NewGoogleClient builds a generateContent client.
func NewGoogleClient(apiKey string, debug bool) *GoogleClient {
	return &GoogleClient{
		APIKey:    apiKey,
		transport: newTransport("google", debug),
	}
}

// Generate sends the framed request and returns the raw candidate text.
func (c *GoogleClient) Generate(ctx context.Context, req Request) (string, error) {
	temperature, maxTokens := SamplingFor(req)
	payload := map[string]interface{}{
		"contents": googleContents(BuildMessages(req)),
		"generationConfig": map[string]interface{}{
			"temperature":     temperature,
			"maxOutputTokens": maxTokens,
		},
	}
	model := googleModelName(req.Config.Model)
	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", googleAPIBase, model, c.APIKey)
	body, err := c.postJSON(ctx, url, nil, payload)
	if err != nil {
		return "", err
	}
	return decodeGoogleResponse(body)
}

func decodeGoogleResponse(body []byte) (string, error) {
	var raw googleResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return "", fmt.Errorf("google: decode response: %w", err)
	}
	if len(raw.Candidates) == 0 || len(raw.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("google: %w: empty candidates", ErrBackendUnavailable)
	}
	var b strings.Builder
	for _, part := range raw.Candidates[0].Content.Parts {
		b.WriteString(part.Text)
	}
	return b.String(), nil
}

// googleModelName maps legacy aliases onto servable models.
func googleModelName(model string) string {
	name := strings.ToLower(model)
	if strings.Contains(name, "palm") {
		return "gemini-pro"
	}
	return strings.TrimPrefix(model, "google/")
}

// googleContents folds the chat framing into the generateContent shape, which
// has no system role: system and assistant framing become a leading user turn
// paired with a model acknowledgement.
func googleContents(messages []Message) []map[string]interface{} {
	var framing []string
	var contents []map[string]interface{}
	for _, msg := range messages {
		switch msg.Role {
		case "user":
			parts := []map[string]interface{}{}
			text := msg.Content
			if len(framing) > 0 {
				text = strings.Join(framing, "\n") + "\n\n" + text
				framing = nil
			}
			parts = append(parts, map[string]interface{}{"text": text})
			for _, image := range msg.Images {
				if IsImageURL(image) {
					parts = append(parts, map[string]interface{}{"text": "Image URL: " + image})
					continue
				}
				encoded, err := EncodeImageFile(image)
				if err != nil {
					continue
				}
				idx := strings.Index(encoded, ";base64,")
				if idx < 0 {
					continue
				}
				parts = append(parts, map[string]interface{}{
					"inline_data": map[string]interface{}{
						"mime_type": strings.TrimPrefix(encoded[:idx], "data:"),
						"data":      encoded[idx+len(";base64,"):],
					},
				})
			}
			contents = append(contents, map[string]interface{}{
				"role":  "user",
				"parts": parts,
			})
		default:
			framing = append(framing, msg.Content)
		}
	}
	return contents
}
