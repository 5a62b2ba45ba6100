// Package lock provides short-lived mutual exclusion across API instances.
package lock

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var ErrNotAcquired = errors.New("lock not acquired")

// ReleaseFunc gives the lock back. It is safe to call after the lock expired.
type ReleaseFunc func(ctx context.Context) error

type Locker interface {
	Acquire(ctx context.Context, key string) (ReleaseFunc, error)
}

// releaseScript deletes the key only while it still holds our token.
const releaseScript = `if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`

type RedisLocker struct {
	client   redis.Cmdable
	ttl      time.Duration
	wait     time.Duration
	retry    time.Duration
	prefix   string
	newToken func() string
}

func NewRedisLocker(client redis.Cmdable, ttl, wait time.Duration) *RedisLocker {
	return &RedisLocker{
		client:   client,
		ttl:      ttl,
		wait:     wait,
		retry:    50 * time.Millisecond,
		prefix:   "lock:",
		newToken: func() string { return uuid.NewString() },
	}
}

// Acquire polls SET NX until it wins or the wait budget is spent.
func (l *RedisLocker) Acquire(ctx context.Context, key string) (ReleaseFunc, error) {
	fullKey := l.prefix + key
	token := l.newToken()
	deadline := time.Now().Add(l.wait)

	for {
		ok, err := l.client.SetNX(ctx, fullKey, token, l.ttl).Result()
		if err != nil {
			return nil, err
		}
		if ok {
			return func(ctx context.Context) error {
				return l.client.Eval(ctx, releaseScript, []string{fullKey}, token).Err()
			}, nil
		}
		if !time.Now().Before(deadline) {
			return nil, ErrNotAcquired
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(l.retry):
		}
	}
}

// NopLocker grants every lock immediately. Used when Redis is not configured;
// callers keep their database constraints as the real guard.
type NopLocker struct{}

func (NopLocker) Acquire(context.Context, string) (ReleaseFunc, error) {
	return func(context.Context) error { return nil }, nil
}
