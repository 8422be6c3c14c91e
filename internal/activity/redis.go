package activity

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "activity:"

// RedisTracker keeps activity records in Redis so several API replicas share
// one view of inactivity. Keys expire once they are older than both twice the
// window and the token lifetime plus the window.
type RedisTracker struct {
	client redis.UniversalClient
	window time.Duration
	ttl    time.Duration
	now    func() time.Time
}

// RedisOption configures a RedisTracker.
type RedisOption func(*RedisTracker)

// WithRedisClock replaces the wall clock.
func WithRedisClock(now func() time.Time) RedisOption {
	return func(r *RedisTracker) {
		r.now = now
	}
}

// WithRedisTokenLifetime stretches the key TTL so a record outlives every
// token issued at its last touch.
func WithRedisTokenLifetime(d time.Duration) RedisOption {
	return func(r *RedisTracker) {
		r.ttl = max(2*r.window, retention(r.window, d)+r.window)
	}
}

// NewRedisTracker creates a tracker backed by client.
func NewRedisTracker(client redis.UniversalClient, window time.Duration, opts ...RedisOption) *RedisTracker {
	if window <= 0 {
		window = DefaultWindow
	}
	r := &RedisTracker{
		client: client,
		window: window,
		ttl:    2 * window,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func redisKey(userID string) string {
	return redisKeyPrefix + userID
}

// Touch implements Tracker.
func (r *RedisTracker) Touch(ctx context.Context, userID string) (Outcome, error) {
	now := r.now()
	key := redisKey(userID)

	var (
		last time.Time
		seen bool
	)
	raw, err := r.client.Get(ctx, key).Result()
	switch {
	case errors.Is(err, redis.Nil):
	case err != nil:
		return Fresh, fmt.Errorf("get activity record: %w", err)
	default:
		nanos, perr := strconv.ParseInt(raw, 10, 64)
		if perr != nil {
			return Fresh, fmt.Errorf("parse activity record %q: %w", raw, perr)
		}
		last, seen = time.Unix(0, nanos), true
	}

	outcome := classify(last, seen, now, r.window)
	if outcome == Expired {
		if err := r.client.Del(ctx, key).Err(); err != nil {
			return Fresh, fmt.Errorf("delete activity record: %w", err)
		}
	} else {
		if err := r.client.Set(ctx, key, strconv.FormatInt(now.UnixNano(), 10), r.ttl).Err(); err != nil {
			return Fresh, fmt.Errorf("set activity record: %w", err)
		}
	}

	observe(outcome)
	return outcome, nil
}

// Forget implements Tracker.
func (r *RedisTracker) Forget(ctx context.Context, userID string) error {
	if err := r.client.Del(ctx, redisKey(userID)).Err(); err != nil {
		return fmt.Errorf("delete activity record: %w", err)
	}
	return nil
}
