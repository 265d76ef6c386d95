package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
)

// Store is the expiring key-value abstraction shared by the chat cooldown
// gate and the usage counters. Implementations must make SetNX and
// CompareAndSwap atomic so two concurrent requests cannot both claim the
// same cooldown slot.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	CompareAndSwap(ctx context.Context, key, old, new string, ttl time.Duration) (bool, error)
	Incr(ctx context.Context, key string, ttl time.Duration) (int64, error)
	Delete(ctx context.Context, key string) error
}

// MemoryStore backs the limiter with an in-process go-cache instance.
// Suitable for single-instance deployments and tests; multi-instance
// deployments should use RedisStore so the gate is shared.
type MemoryStore struct {
	mu    sync.Mutex
	cache *cache.Cache
}

func NewMemoryStore() *MemoryStore {
	// Purge expired entries every 10 minutes; per-entry TTLs are set on write
	return &MemoryStore{
		cache: cache.New(cache.NoExpiration, 10*time.Minute),
	}
}

func (s *MemoryStore) Get(ctx context.Context, key string) (string, bool, error) {
	if x, found := s.cache.Get(key); found {
		if v, ok := x.(string); ok {
			return v, true, nil
		}
	}
	return "", false, nil
}

func (s *MemoryStore) SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.cache.Add(key, value, ttl); err != nil {
		return false, nil
	}
	return true, nil
}

func (s *MemoryStore) CompareAndSwap(ctx context.Context, key, old, new string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	x, found := s.cache.Get(key)
	if !found {
		return false, nil
	}
	current, ok := x.(string)
	if !ok || current != old {
		return false, nil
	}
	s.cache.Set(key, new, ttl)
	return true, nil
}

func (s *MemoryStore) Incr(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.cache.Add(key, int64(1), ttl); err == nil {
		return 1, nil
	}
	return s.cache.IncrementInt64(key, 1)
}

func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	s.cache.Delete(key)
	return nil
}
