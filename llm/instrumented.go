package llm

import (
	"context"
	"log"
	"time"
)

// InstrumentedAdapter wraps an Adapter and logs request and response
// timings. It sits outside the retry wrapper so one log line covers the
// whole exchange, retries included.
type InstrumentedAdapter struct {
	Inner Adapter
	Label string
}

// Instrument decorates an adapter with timing logs under the given label,
// usually the model name.
func Instrument(inner Adapter, label string) *InstrumentedAdapter {
	return &InstrumentedAdapter{Inner: inner, Label: label}
}

func (a *InstrumentedAdapter) Generate(ctx context.Context, req Request) (string, error) {
	task := ComposeTask(req)
	log.Printf("[llm] %s generate mode=%s chars=%d task=%q", a.Label, req.Mode, len(task), clip(task, 120))
	start := time.Now()
	raw, err := a.Inner.Generate(ctx, req)
	elapsed := time.Since(start).Round(time.Millisecond)
	if err != nil {
		log.Printf("[llm] %s failed after %s: %v", a.Label, elapsed, err)
		return "", err
	}
	log.Printf("[llm] %s returned %d chars in %s", a.Label, len(raw), elapsed)
	return raw, nil
}

func clip(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "…"
}
