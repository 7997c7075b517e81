package security

import (
	"context"
	"time"
)

// RateLimiter enforces a fixed window per key over any CounterStore.
type RateLimiter struct {
	store CounterStore
}

func NewRateLimiter(store CounterStore) *RateLimiter {
	return &RateLimiter{store: store}
}

// Allow reports whether the request fits inside the current window for key.
// Counting and limiting share one store call so concurrent requests cannot
// race past the limit.
func (r *RateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	count, err := r.store.Incr(ctx, key, window)
	if err != nil {
		return false, err
	}
	return count <= int64(limit), nil
}

// VariantKey scopes the variant-fetch limit to a caller session.
func VariantKey(sessionKey string) string { return "get:" + sessionKey }

// SubmitKey scopes the submission limit to a caller session.
func SubmitKey(sessionKey string) string { return "post:" + sessionKey }
