package security

import (
	"context"
	"sync"
	"time"

	"subscription-cancellation/internal/domain"
)

// CounterStore backs the fixed-window rate limiter. Incr bumps the counter
// for a key and returns the new count; the first increment in a window arms
// the expiry.
type CounterStore interface {
	Incr(ctx context.Context, key string, window time.Duration) (int64, error)
}

// TokenStore backs the CSRF manager with expiring opaque values.
type TokenStore interface {
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
}

// Sweeper is implemented by stores that need periodic expiry of stale
// entries. Redis-backed stores expire natively and do not implement it.
type Sweeper interface {
	Sweep(now time.Time) int
}

type counterEntry struct {
	count   int64
	resetAt time.Time
}

// MemoryCounterStore is the in-process CounterStore used when no Redis is
// configured, and by tests.
type MemoryCounterStore struct {
	mu      sync.Mutex
	entries map[string]*counterEntry
}

var _ CounterStore = (*MemoryCounterStore)(nil)
var _ Sweeper = (*MemoryCounterStore)(nil)

func NewMemoryCounterStore() *MemoryCounterStore {
	return &MemoryCounterStore{entries: make(map[string]*counterEntry)}
}

func (s *MemoryCounterStore) Incr(ctx context.Context, key string, window time.Duration) (int64, error) {
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok || now.After(e.resetAt) {
		e = &counterEntry{resetAt: now.Add(window)}
		s.entries[key] = e
	}
	e.count++
	return e.count, nil
}

// Sweep drops every window that has already reset and returns how many were
// removed.
func (s *MemoryCounterStore) Sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for key, e := range s.entries {
		if now.After(e.resetAt) {
			delete(s.entries, key)
			removed++
		}
	}
	return removed
}

type tokenEntry struct {
	value     string
	expiresAt time.Time
}

// MemoryTokenStore is the in-process TokenStore counterpart.
type MemoryTokenStore struct {
	mu      sync.Mutex
	entries map[string]tokenEntry
}

var _ TokenStore = (*MemoryTokenStore)(nil)
var _ Sweeper = (*MemoryTokenStore)(nil)

func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{entries: make(map[string]tokenEntry)}
}

func (s *MemoryTokenStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = tokenEntry{value: value, expiresAt: time.Now().Add(ttl)}
	return nil
}

func (s *MemoryTokenStore) Get(ctx context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok || time.Now().After(e.expiresAt) {
		delete(s.entries, key)
		return "", domain.ErrNotFound
	}
	return e.value, nil
}

func (s *MemoryTokenStore) Del(ctx context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range keys {
		delete(s.entries, key)
	}
	return nil
}

func (s *MemoryTokenStore) Sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for key, e := range s.entries {
		if now.After(e.expiresAt) {
			delete(s.entries, key)
			removed++
		}
	}
	return removed
}
