package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type DenyReason string

const (
	ReasonQuotaExceeded  DenyReason = "quota_exceeded"
	ReasonCooldownActive DenyReason = "cooldown_active"
)

// Decision is the outcome of the gate. RetryAfter is a hint, only set for
// cooldown denials.
type Decision struct {
	Allowed    bool
	Reason     DenyReason
	Message    string
	RetryAfter time.Duration
}

// stampGrace keeps the cooldown stamp alive slightly longer than the window
// so reads shortly after expiry still see it (self-cleaning keys).
const stampGrace = 2 * time.Second

type LimiterConfig struct {
	MaxSessionMessages int
	Cooldown           time.Duration
	Now                func() time.Time // defaults to time.Now
}

// Limiter enforces the per-session message cap and the per-user-per-session
// cooldown. The cooldown slot is claimed atomically BEFORE the upstream AI
// call, so rapid concurrent submissions are serialized here, not at the
// database.
type Limiter struct {
	store  Store
	picker *MessagePicker
	cfg    LimiterConfig
}

func NewLimiter(store Store, picker *MessagePicker, cfg LimiterConfig) *Limiter {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Limiter{
		store:  store,
		picker: picker,
		cfg:    cfg,
	}
}

func cooldownKey(userId, sessionId uuid.UUID) string {
	return fmt.Sprintf("chat:cooldown:%s:%s", userId, sessionId)
}

// CheckAndReserve gates one incoming message. messageCount is the session's
// current total message count (user + assistant). Privileged users bypass
// every check.
func (l *Limiter) CheckAndReserve(ctx context.Context, userId, sessionId uuid.UUID, privileged bool, messageCount int64) (Decision, error) {
	if privileged {
		return Decision{Allowed: true}, nil
	}

	if messageCount >= int64(l.cfg.MaxSessionMessages) {
		return Decision{
			Reason:  ReasonQuotaExceeded,
			Message: l.picker.Quota(),
		}, nil
	}

	now := l.cfg.Now()
	key := cooldownKey(userId, sessionId)
	stamp := now.Format(time.RFC3339Nano)
	ttl := l.cfg.Cooldown + stampGrace

	ok, err := l.store.SetNX(ctx, key, stamp, ttl)
	if err != nil {
		return Decision{}, err
	}
	if ok {
		return Decision{Allowed: true}, nil
	}

	// A stamp is already live. Deny if it is still within the cooldown
	// window; otherwise it is in the grace tail and we claim it via CAS so
	// only one of several concurrent requests wins.
	prev, found, err := l.store.Get(ctx, key)
	if err != nil {
		return Decision{}, err
	}
	if !found {
		// Expired between SetNX and Get; one retry claims it
		ok, err := l.store.SetNX(ctx, key, stamp, ttl)
		if err != nil {
			return Decision{}, err
		}
		if ok {
			return Decision{Allowed: true}, nil
		}
		return l.denyCooldown(l.cfg.Cooldown), nil
	}

	prevAt, perr := time.Parse(time.RFC3339Nano, prev)
	if perr == nil {
		if remaining := l.cfg.Cooldown - now.Sub(prevAt); remaining > 0 {
			// A denied request must not refresh the stamp
			return l.denyCooldown(remaining), nil
		}
	}

	swapped, err := l.store.CompareAndSwap(ctx, key, prev, stamp, ttl)
	if err != nil {
		return Decision{}, err
	}
	if swapped {
		return Decision{Allowed: true}, nil
	}
	return l.denyCooldown(l.cfg.Cooldown), nil
}

// Release clears the cooldown stamp, used when the reserved message is
// ultimately not persisted (e.g. empty content) so the user is not punished
// for a rejected submission.
func (l *Limiter) Release(ctx context.Context, userId, sessionId uuid.UUID) error {
	return l.store.Delete(ctx, cooldownKey(userId, sessionId))
}

func (l *Limiter) denyCooldown(retryAfter time.Duration) Decision {
	return Decision{
		Reason:     ReasonCooldownActive,
		Message:    l.picker.Cooldown(),
		RetryAfter: retryAfter,
	}
}

// UsageCounter tracks a rolling usage count (e.g. daily TTS calls) in the
// same store.
type UsageCounter struct {
	store Store
}

func NewUsageCounter(store Store) *UsageCounter {
	return &UsageCounter{store: store}
}

// Allow increments the counter under key and reports whether the new total
// is within limit. The TTL is applied when the counter is created.
func (c *UsageCounter) Allow(ctx context.Context, key string, limit int, ttl time.Duration) (bool, error) {
	count, err := c.store.Incr(ctx, key, ttl)
	if err != nil {
		return false, err
	}
	return count <= int64(limit), nil
}
