package ratelimit

import (
	"context"
	"time"
)

// DefaultCooldown is the minimum gap between automated sends to one number.
const DefaultCooldown = 10 * time.Minute

// Limiter enforces a per-recipient cooldown. Reserve is the atomic
// check-then-set: a successful reservation claims the window before the
// gateway is contacted, so two concurrent sends to the same number cannot
// both pass the check.
type Limiter interface {
	// Reserve claims the cooldown window for the number. It returns false
	// when a prior send is still inside the window.
	Reserve(ctx context.Context, to string) (bool, error)

	// Release frees a reservation after a failed gateway call so the next
	// attempt is not locked out for the full window.
	Release(ctx context.Context, to string) error

	// Touch overwrites the window unconditionally. Used on bypassed sends,
	// which still reset the cooldown for subsequent automated sends.
	Touch(ctx context.Context, to string) error

	// Remaining reports how long until the number may be sent to again.
	// Zero means no active cooldown.
	Remaining(ctx context.Context, to string) (time.Duration, error)

	// Clear removes the entry. Administrative override.
	Clear(ctx context.Context, to string) error
}
