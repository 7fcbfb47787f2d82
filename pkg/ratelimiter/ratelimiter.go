// Package ratelimiter throttles repeated actions per key using redis counters.
package ratelimiter

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Counter is the storage a Limiter needs. The redis implementation is the
// production one.
type Counter interface {
	Count(ctx context.Context, key string) (int64, error)
	Incr(ctx context.Context, key string, window time.Duration) (int64, error)
	TTL(ctx context.Context, key string) (time.Duration, error)
	Reset(ctx context.Context, key string) error
}

// Limiter allows at most max hits per key within window.
type Limiter struct {
	counter Counter
	action  string
	max     int64
	window  time.Duration
}

// New returns a limiter for action. A nil counter disables limiting.
func New(counter Counter, action string, max int, window time.Duration) *Limiter {
	return &Limiter{counter: counter, action: action, max: int64(max), window: window}
}

func (l *Limiter) key(subject string) string {
	return fmt.Sprintf("rate_limit:%s:%s", l.action, subject)
}

func (l *Limiter) enabled() bool {
	return l != nil && l.counter != nil && l.max > 0
}

// Allowed reports whether subject may attempt the action again, and if not,
// how long until the window resets.
func (l *Limiter) Allowed(ctx context.Context, subject string) (bool, time.Duration, error) {
	if !l.enabled() {
		return true, 0, nil
	}
	n, err := l.counter.Count(ctx, l.key(subject))
	if err != nil {
		return false, 0, fmt.Errorf("failed to check rate limit: %w", err)
	}
	if n < l.max {
		return true, 0, nil
	}
	ttl, err := l.counter.TTL(ctx, l.key(subject))
	if err != nil {
		return false, 0, fmt.Errorf("failed to read rate limit ttl: %w", err)
	}
	return false, ttl, nil
}

// Hit records one attempt for subject.
func (l *Limiter) Hit(ctx context.Context, subject string) error {
	if !l.enabled() {
		return nil
	}
	_, err := l.counter.Incr(ctx, l.key(subject), l.window)
	return err
}

// Reset clears the counter for subject.
func (l *Limiter) Reset(ctx context.Context, subject string) error {
	if !l.enabled() {
		return nil
	}
	return l.counter.Reset(ctx, l.key(subject))
}

type redisCounter struct {
	rdb *redis.Client
}

// NewRedisCounter returns nil when rdb is nil.
func NewRedisCounter(rdb *redis.Client) Counter {
	if rdb == nil {
		return nil
	}
	return &redisCounter{rdb: rdb}
}

func (r *redisCounter) Count(ctx context.Context, key string) (int64, error) {
	n, err := r.rdb.Get(ctx, key).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	return n, err
}

// Incr bumps the counter and starts the window on the first hit.
func (r *redisCounter) Incr(ctx context.Context, key string, window time.Duration) (int64, error) {
	pipe := r.rdb.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("failed to record rate limit hit in redis: %w", err)
	}
	return incr.Val(), nil
}

func (r *redisCounter) TTL(ctx context.Context, key string) (time.Duration, error) {
	return r.rdb.TTL(ctx, key).Result()
}

func (r *redisCounter) Reset(ctx context.Context, key string) error {
	return r.rdb.Del(ctx, key).Err()
}
