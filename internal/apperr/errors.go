package apperr

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors for the request-failure modes. Denials that carry a
// user-displayable message (quota, cooldown) get their own types below.
var (
	ErrNotFound     = errors.New("resource not found")
	ErrInvalidInput = errors.New("invalid input")
)

func NotFound(what string) error {
	return fmt.Errorf("%s: %w", what, ErrNotFound)
}

func InvalidInput(reason string) error {
	return fmt.Errorf("%s: %w", reason, ErrInvalidInput)
}

// QuotaExceededError is returned when a session hits its message cap or a
// user exhausts a usage allowance. The Message is safe to show to the user.
type QuotaExceededError struct {
	Message string
	Limit   int
	Used    int
}

func (e *QuotaExceededError) Error() string {
	return e.Message
}

// CooldownError is returned when messages arrive faster than the configured
// cooldown. RetryAfter hints when the gate reopens.
type CooldownError struct {
	Message    string
	RetryAfter time.Duration
}

func (e *CooldownError) Error() string {
	return e.Message
}
