package genai

import (
	"net/http"
	"strconv"
	"time"
)

// RetryPolicy controls how transient upstream failures are retried.
// Delay grows exponentially from BaseDelay and is overridden upward by the
// server's Retry-After header when that asks for more.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		BaseDelay:   2 * time.Second,
	}
}

// retryable reports whether the failure class is worth another attempt.
// Client errors other than rate limiting are not.
func retryable(statusCode int) bool {
	if statusCode == http.StatusTooManyRequests {
		return true
	}
	return statusCode >= 500
}

// backoff returns the wait before the given zero-based attempt's retry,
// honoring Retry-After when present and larger.
func (p RetryPolicy) backoff(attempt int, header http.Header) time.Duration {
	delay := p.BaseDelay * (1 << attempt)
	if ra := header.Get("Retry-After"); ra != "" {
		if secs, err := strconv.Atoi(ra); err == nil {
			if hinted := time.Duration(secs) * time.Second; hinted > delay {
				delay = hinted
			}
		}
	}
	return delay
}
