package retry

import (
	"context"
	"time"
)

var _ Policy = (*FixedPolicy)(nil)

// FixedPolicy waits the same interval, with jitter, before every retry.
type FixedPolicy struct {
	budget
	jitter   float64
	interval time.Duration
}

func Fixed(attempts int, interval time.Duration) *FixedPolicy {
	if interval < 0 {
		panic("interval can't be < 0")
	}
	return &FixedPolicy{
		budget:   newBudget(attempts),
		interval: interval,
		jitter:   0.1,
	}
}

func (r *FixedPolicy) WithJitter(jitter float64) *FixedPolicy {
	validateJitter(jitter)
	r.jitter = jitter
	return r
}

func (r *FixedPolicy) Attempt(ctx context.Context) bool {
	if r.first() {
		return r.spend(true)
	}
	if r.exhausted() {
		return false
	}
	return r.spend(wait(ctx, r.interval, r.jitter))
}

func (r *FixedPolicy) Derive() Policy {
	return Fixed(r.attempts, r.interval).WithJitter(r.jitter)
}
