package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimiter is a fixed-window counter backed by Redis.
// Key format: ratelimit:<key>:<window_index>
type RateLimiter struct {
	client *redis.Client
	limit  int64
	window time.Duration
	now    func() time.Time
}

// NewRateLimiter allows limit events per key within each window.
func NewRateLimiter(client *redis.Client, limit int, window time.Duration) *RateLimiter {
	if window <= 0 {
		window = time.Minute
	}
	return &RateLimiter{client: client, limit: int64(limit), window: window, now: time.Now}
}

// Allow records one event for key and reports whether it fits in the
// current window. A non-positive limit disables limiting.
func (l *RateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	if l.limit <= 0 {
		return true, nil
	}

	k := l.key(key, l.now())
	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, k)
	pipe.Expire(ctx, k, 2*l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("rate limit: %w", err)
	}
	return incr.Val() <= l.limit, nil
}

func (l *RateLimiter) key(key string, now time.Time) string {
	return fmt.Sprintf("ratelimit:%s:%d", key, now.UnixNano()/int64(l.window))
}
