package ratelimit

import (
	"math/rand"
	"sync"
)

var cooldownMessages = []string{
	"You're going too fast! Try again in a few seconds.",
	"Hold on! You're sending messages too quickly. Try again in 5-10 seconds.",
	"Slow down! The AI needs a moment to respond properly.",
}

var quotaMessages = []string{
	"You have reached your free usage limit for this feature.",
	"Upgrade to premium to continue using this feature.",
}

// MessagePicker selects a user-facing denial message. Seedable so tests can
// pin the choice; the rate-limiter itself does not care which one is used.
type MessagePicker struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewMessagePicker(seed int64) *MessagePicker {
	return &MessagePicker{rng: rand.New(rand.NewSource(seed))}
}

func (p *MessagePicker) Cooldown() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return cooldownMessages[p.rng.Intn(len(cooldownMessages))]
}

func (p *MessagePicker) Quota() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return quotaMessages[p.rng.Intn(len(quotaMessages))]
}
