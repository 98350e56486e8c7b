package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryLimiter is a mutex-guarded in-process limiter. Correct for a
// single-process deployment; multi-instance deployments need RedisLimiter.
type MemoryLimiter struct {
	mu       sync.Mutex
	lastSent map[string]time.Time
	cooldown time.Duration
	now      func() time.Time
}

func NewMemoryLimiter(cooldown time.Duration) *MemoryLimiter {
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	return &MemoryLimiter{
		lastSent: make(map[string]time.Time),
		cooldown: cooldown,
		now:      time.Now,
	}
}

var _ Limiter = (*MemoryLimiter)(nil)

// SetClock replaces the time source. Test hook.
func (l *MemoryLimiter) SetClock(now func() time.Time) {
	l.mu.Lock()
	l.now = now
	l.mu.Unlock()
}

func (l *MemoryLimiter) Reserve(_ context.Context, to string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	if last, ok := l.lastSent[to]; ok && now.Sub(last) < l.cooldown {
		return false, nil
	}
	l.lastSent[to] = now
	return true, nil
}

func (l *MemoryLimiter) Release(_ context.Context, to string) error {
	l.mu.Lock()
	delete(l.lastSent, to)
	l.mu.Unlock()
	return nil
}

func (l *MemoryLimiter) Touch(_ context.Context, to string) error {
	l.mu.Lock()
	l.lastSent[to] = l.now()
	l.mu.Unlock()
	return nil
}

func (l *MemoryLimiter) Remaining(_ context.Context, to string) (time.Duration, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	last, ok := l.lastSent[to]
	if !ok {
		return 0, nil
	}
	left := l.cooldown - l.now().Sub(last)
	if left < 0 {
		return 0, nil
	}
	return left, nil
}

func (l *MemoryLimiter) Clear(_ context.Context, to string) error {
	l.mu.Lock()
	delete(l.lastSent, to)
	l.mu.Unlock()
	return nil
}
