package ratelimit

import (
	"context"
	"fmt"
	"time"

	"textback/internal/infrastructure/cache/port"
)

// RedisLimiter shares the cooldown window across instances using the cache's
// atomic SETNX with TTL. The key's expiry is the window itself.
type RedisLimiter struct {
	cache    port.Cache
	cooldown time.Duration
}

func NewRedisLimiter(cache port.Cache, cooldown time.Duration) *RedisLimiter {
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	return &RedisLimiter{cache: cache, cooldown: cooldown}
}

var _ Limiter = (*RedisLimiter)(nil)

func key(to string) string {
	return "sms:cooldown:" + to
}

func (l *RedisLimiter) Reserve(ctx context.Context, to string) (bool, error) {
	ok, err := l.cache.SetNX(ctx, key(to), time.Now().UTC().Format(time.RFC3339), l.cooldown)
	if err != nil {
		return false, fmt.Errorf("ratelimit: reserve %s: %w", to, err)
	}
	return ok, nil
}

func (l *RedisLimiter) Release(ctx context.Context, to string) error {
	_, err := l.cache.Del(ctx, key(to))
	return err
}

func (l *RedisLimiter) Touch(ctx context.Context, to string) error {
	return l.cache.Set(ctx, key(to), time.Now().UTC().Format(time.RFC3339), l.cooldown)
}

func (l *RedisLimiter) Remaining(ctx context.Context, to string) (time.Duration, error) {
	return l.cache.TTL(ctx, key(to))
}

func (l *RedisLimiter) Clear(ctx context.Context, to string) error {
	_, err := l.cache.Del(ctx, key(to))
	return err
}
