package llm

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// transport is the HTTP plumbing shared by every provider client: payload
// logging, status classification, and bounded error detail.
type transport struct {
	name   string
	client *http.Client
	Debug  bool
}

func newTransport(name string, debug bool) transport {
	return transport{
		name:   name,
		client: &http.Client{Timeout: 3 * time.Minute},
		Debug:  debug,
	}
}

func (t transport) postJSON(ctx context.Context, url string, headers map[string]string, payload interface{}) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	t.logPayload(url, body)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	for key, value := range headers {
		req.Header.Set(key, value)
	}
	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %v", t.name, ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, t.statusError(resp, strings.TrimSpace(string(msg)))
	}
	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	t.logResponse(url, responseBody)
	return responseBody, nil
}

func (t transport) statusError(resp *http.Response, detail string) error {
	base := ErrBackendUnavailable
	if resp.StatusCode == http.StatusTooManyRequests || strings.Contains(strings.ToLower(detail), "quota") {
		base = ErrQuotaExceeded
	}
	if detail != "" {
		return fmt.Errorf("%s: %w: %s: %s", t.name, base, resp.Status, detail)
	}
	return fmt.Errorf("%s: %w: %s", t.name, base, resp.Status)
}

func (t transport) logPayload(url string, payload []byte) {
	if !t.Debug {
		return
	}
	t.logf("request %s payload: %s", url, truncate(string(payload), 2048))
}

func (t transport) logResponse(url string, resp []byte) {
	if !t.Debug {
		return
	}
	t.logf("response %s payload: %s", url, truncate(string(resp), 2048))
}

func (t transport) logf(format string, args ...interface{}) {
	if !t.Debug {
		return
	}
	log.Printf("["+t.name+"] "+format, args...)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "...(truncated)"
}

// IsImageURL reports whether the reference points at a remote image rather
// than a local file.
func IsImageURL(ref string) bool {
	lower := strings.ToLower(ref)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") || strings.Contains(lower, "www.")
}

// EncodeImageFile reads a local image and returns it as a base64 data URI.
func EncodeImageFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read image: %w", err)
	}
	return "data:" + imageMIME(path) + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

func imageMIME(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	default:
		return "image/png"
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
