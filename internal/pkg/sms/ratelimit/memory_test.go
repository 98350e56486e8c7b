package ratelimit

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReserveEnforcesCooldown(t *testing.T) {
	l := NewMemoryLimiter(10 * time.Minute)
	now := time.Now()
	l.SetClock(func() time.Time { return now })
	ctx := context.Background()

	ok, err := l.Reserve(ctx, "+15550001111")
	require.NoError(t, err)
	assert.True(t, ok)

	// One second later: still inside the window.
	now = now.Add(time.Second)
	ok, err = l.Reserve(ctx, "+15550001111")
	require.NoError(t, err)
	assert.False(t, ok)

	remaining, err := l.Remaining(ctx, "+15550001111")
	require.NoError(t, err)
	assert.InDelta(t, (10*time.Minute - time.Second).Seconds(), remaining.Seconds(), 1)

	// After the window elapses the number is sendable again.
	now = now.Add(10 * time.Minute)
	ok, err = l.Reserve(ctx, "+15550001111")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestReserveIsAtomicUnderConcurrency(t *testing.T) {
	l := NewMemoryLimiter(10 * time.Minute)
	ctx := context.Background()

	var granted int64
	var wg sync.WaitGroup
	const workers = 64
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			ok, err := l.Reserve(ctx, "+15550002222")
			assert.NoError(t, err)
			if ok {
				atomic.AddInt64(&granted, 1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int64(1), granted)
}

func TestReleaseAndClearFreeTheWindow(t *testing.T) {
	l := NewMemoryLimiter(10 * time.Minute)
	ctx := context.Background()

	ok, err := l.Reserve(ctx, "+15550003333")
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, l.Release(ctx, "+15550003333"))
	ok, err = l.Reserve(ctx, "+15550003333")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, l.Clear(ctx, "+15550003333"))
	remaining, err := l.Remaining(ctx, "+15550003333")
	require.NoError(t, err)
	assert.Zero(t, remaining)
}
