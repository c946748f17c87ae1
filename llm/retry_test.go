package llm

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type scriptedAdapter struct {
	calls int
	errs  []error
	text  string
}

func (s *scriptedAdapter) Generate(ctx context.Context, req Request) (string, error) {
	s.calls++
	if len(s.errs) > 0 {
		err := s.errs[0]
		s.errs = s.errs[1:]
		if err != nil {
			return "", err
		}
	}
	return s.text, nil
}

func TestRetryPassesThroughSuccess(t *testing.T) {
	inner := &scriptedAdapter{text: "done"}
	adapter := WithRetry(inner, time.Millisecond)

	text, err := adapter.Generate(context.Background(), Request{})
	assert.NoError(t, err)
	assert.Equal(t, "done", text)
	assert.Equal(t, 1, inner.calls)
}

func TestRetryRetriesOnceOnQuota(t *testing.T) {
	inner := &scriptedAdapter{
		errs: []error{fmt.Errorf("openai: %w: 429", ErrQuotaExceeded)},
		text: "recovered",
	}
	adapter := WithRetry(inner, time.Millisecond)

	text, err := adapter.Generate(context.Background(), Request{})
	assert.NoError(t, err)
	assert.Equal(t, "recovered", text)
	assert.Equal(t, 2, inner.calls)
}

func TestRetryGivesUpAfterSecondQuotaError(t *testing.T) {
	quota := fmt.Errorf("openai: %w: 429", ErrQuotaExceeded)
	inner := &scriptedAdapter{errs: []error{quota, quota}}
	adapter := WithRetry(inner, time.Millisecond)

	_, err := adapter.Generate(context.Background(), Request{})
	assert.ErrorIs(t, err, ErrQuotaExceeded)
	assert.Equal(t, 2, inner.calls)
}

func TestRetryDoesNotRetryOtherErrors(t *testing.T) {
	inner := &scriptedAdapter{errs: []error{errors.New("boom")}}
	adapter := WithRetry(inner, time.Millisecond)

	_, err := adapter.Generate(context.Background(), Request{})
	assert.Error(t, err)
	assert.Equal(t, 1, inner.calls)
}

func TestRetryHonorsContextCancellation(t *testing.T) {
	inner := &scriptedAdapter{errs: []error{fmt.Errorf("%w", ErrQuotaExceeded)}}
	adapter := WithRetry(inner, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := adapter.Generate(ctx, Request{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, inner.calls)
}
