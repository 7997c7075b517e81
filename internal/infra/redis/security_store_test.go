//go:build !integration

package redis

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	goredis "github.com/go-redis/redis/v8"

	"subscription-cancellation/internal/domain"
)

// fakeRedis is a minimal in-memory RedisClient for unit tests. Expiry is
// checked lazily on read, like Redis does for short-lived test windows.
type fakeRedis struct {
	mu      sync.Mutex
	values  map[string]string
	counts  map[string]int64
	expires map[string]time.Time

	incrErr error
}

var _ RedisClient = (*fakeRedis)(nil)

func newFakeRedis() *fakeRedis {
	return &fakeRedis{
		values:  make(map[string]string),
		counts:  make(map[string]int64),
		expires: make(map[string]time.Time),
	}
}

func (f *fakeRedis) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values[key] = value
	f.expires[key] = time.Now().Add(ttl)
	return nil
}

func (f *fakeRedis) Get(ctx context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	exp, hasExp := f.expires[key]
	if hasExp && time.Now().After(exp) {
		delete(f.values, key)
		delete(f.expires, key)
	}
	v, ok := f.values[key]
	if !ok {
		return "", goredis.Nil
	}
	return v, nil
}

func (f *fakeRedis) Incr(ctx context.Context, key string) (int64, error) {
	if f.incrErr != nil {
		return 0, f.incrErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if exp, ok := f.expires[key]; ok && time.Now().After(exp) {
		delete(f.counts, key)
		delete(f.expires, key)
	}
	f.counts[key]++
	return f.counts[key], nil
}

func (f *fakeRedis) Expire(ctx context.Context, key string, expiration time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.expires[key] = time.Now().Add(expiration)
	return nil
}

func (f *fakeRedis) Del(ctx context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, k := range keys {
		delete(f.values, k)
		delete(f.counts, k)
		delete(f.expires, k)
	}
	return nil
}

func TestCounterStore(t *testing.T) {
	ctx := context.Background()

	t.Run("should count increments within a window", func(t *testing.T) {
		store := NewCounterStore(newFakeRedis())
		for want := int64(1); want <= 3; want++ {
			got, err := store.Incr(ctx, "post:sess", time.Minute)
			if err != nil {
				t.Fatal(err)
			}
			if got != want {
				t.Fatalf("expected count %d, got %d", want, got)
			}
		}
	})

	t.Run("should restart counting after expiry", func(t *testing.T) {
		store := NewCounterStore(newFakeRedis())
		if _, err := store.Incr(ctx, "k", 20*time.Millisecond); err != nil {
			t.Fatal(err)
		}
		time.Sleep(40 * time.Millisecond)
		got, err := store.Incr(ctx, "k", 20*time.Millisecond)
		if err != nil {
			t.Fatal(err)
		}
		if got != 1 {
			t.Fatalf("expected a fresh window, got count %d", got)
		}
	})

	t.Run("should surface redis errors", func(t *testing.T) {
		cli := newFakeRedis()
		cli.incrErr = errors.New("connection refused")
		store := NewCounterStore(cli)
		if _, err := store.Incr(ctx, "k", time.Minute); err == nil {
			t.Fatal("expected an error")
		}
	})
}

func TestTokenStore(t *testing.T) {
	ctx := context.Background()

	t.Run("should round-trip a token", func(t *testing.T) {
		store := NewTokenStore(newFakeRedis())
		if err := store.Set(ctx, "csrf:sess", "tok", time.Minute); err != nil {
			t.Fatal(err)
		}
		got, err := store.Get(ctx, "csrf:sess")
		if err != nil {
			t.Fatal(err)
		}
		if got != "tok" {
			t.Fatalf("expected %q, got %q", "tok", got)
		}
	})

	t.Run("should map a missing key to ErrNotFound", func(t *testing.T) {
		store := NewTokenStore(newFakeRedis())
		if _, err := store.Get(ctx, "absent"); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("should expire tokens", func(t *testing.T) {
		store := NewTokenStore(newFakeRedis())
		store.Set(ctx, "csrf:sess", "tok", 10*time.Millisecond)
		time.Sleep(30 * time.Millisecond)
		if _, err := store.Get(ctx, "csrf:sess"); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("expected ErrNotFound after expiry, got %v", err)
		}
	})

	t.Run("should delete tokens", func(t *testing.T) {
		store := NewTokenStore(newFakeRedis())
		store.Set(ctx, "csrf:sess", "tok", time.Minute)
		if err := store.Del(ctx, "csrf:sess"); err != nil {
			t.Fatal(err)
		}
		if _, err := store.Get(ctx, "csrf:sess"); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("expected ErrNotFound after delete, got %v", err)
		}
	})
}
