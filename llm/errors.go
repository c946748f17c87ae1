package llm

import "errors"

// ErrBackendUnavailable indicates the transport could not reach or
// authenticate against the provider.
var ErrBackendUnavailable = errors.New("backend unavailable")

// ErrQuotaExceeded indicates the provider signaled rate limiting. Eligible for
// exactly one bounded retry.
var ErrQuotaExceeded = errors.New("backend quota exceeded")
