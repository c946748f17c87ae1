package llm

import (
	"context"
	"errors"
	"log"
	"time"
)

// retryAdapter wraps an Adapter with exactly one bounded retry on quota
// errors. Every other failure surfaces to the caller untouched.
type retryAdapter struct {
	inner   Adapter
	backoff time.Duration
}

// WithRetry decorates the adapter with the single quota retry.
func WithRetry(inner Adapter, backoff time.Duration) Adapter {
	if backoff <= 0 {
		backoff = 2 * time.Second
	}
	return &retryAdapter{inner: inner, backoff: backoff}
}

func (r *retryAdapter) Generate(ctx context.Context, req Request) (string, error) {
	text, err := r.inner.Generate(ctx, req)
	if err == nil || !errors.Is(err, ErrQuotaExceeded) {
		return text, err
	}
	log.Printf("[llm] quota exceeded for %s, retrying once after %s", req.Config.Model, r.backoff)
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-time.After(r.backoff):
	}
	return r.inner.Generate(ctx, req)
}
