package redis

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"

	"subscription-cancellation/internal/domain"
	"subscription-cancellation/internal/infra/security"
)

// CounterStore backs the rate limiter with a shared Redis so limits hold
// across replicas. Redis expires the windows itself; no sweeper needed.
type CounterStore struct {
	client RedisClient
}

var _ security.CounterStore = (*CounterStore)(nil)

func NewCounterStore(client RedisClient) *CounterStore {
	return &CounterStore{client: client}
}

func (s *CounterStore) Incr(ctx context.Context, key string, window time.Duration) (int64, error) {
	count, err := s.client.Incr(ctx, "ratelimit:"+key)
	if err != nil {
		return 0, err
	}
	if count == 1 {
		if err := s.client.Expire(ctx, "ratelimit:"+key, window); err != nil {
			return 0, err
		}
	}
	return count, nil
}

// TokenStore backs the CSRF manager with expiring Redis keys.
type TokenStore struct {
	client RedisClient
}

var _ security.TokenStore = (*TokenStore)(nil)

func NewTokenStore(client RedisClient) *TokenStore {
	return &TokenStore{client: client}
}

func (s *TokenStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return s.client.Set(ctx, key, value, ttl)
}

func (s *TokenStore) Get(ctx context.Context, key string) (string, error) {
	val, err := s.client.Get(ctx, key)
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", domain.ErrNotFound
		}
		return "", err
	}
	return val, nil
}

func (s *TokenStore) Del(ctx context.Context, keys ...string) error {
	return s.client.Del(ctx, keys...)
}
