package retry

import (
	"context"
	"math"
	"time"
)

var _ Policy = (*ExponentialPolicy)(nil)

// ExponentialPolicy multiplies the interval by base after every retry, up to maxInterval.
type ExponentialPolicy struct {
	budget
	jitter      float64
	base        float64
	minInterval time.Duration
	maxInterval time.Duration
}

func Exponential(attempts int, minInterval, maxInterval time.Duration) *ExponentialPolicy {
	if minInterval <= 0 {
		panic("minInterval can't be <= 0")
	}
	if minInterval >= maxInterval {
		panic("minInterval can't be >= maxInterval")
	}
	return &ExponentialPolicy{
		budget:      newBudget(attempts),
		minInterval: minInterval,
		maxInterval: maxInterval,
		base:        2,
		jitter:      0.1,
	}
}

func (r *ExponentialPolicy) WithBase(base float64) *ExponentialPolicy {
	if base <= 1 {
		panic("base can't be <= 1")
	}
	r.base = base
	return r
}

func (r *ExponentialPolicy) WithJitter(jitter float64) *ExponentialPolicy {
	validateJitter(jitter)
	r.jitter = jitter
	return r
}

func (r *ExponentialPolicy) Attempt(ctx context.Context) bool {
	if r.first() {
		return r.spend(true)
	}
	if r.exhausted() {
		return false
	}
	return r.spend(wait(ctx, r.interval(), r.jitter))
}

func (r *ExponentialPolicy) interval() time.Duration {
	multiplier := math.Pow(r.base, float64(r.attempted-1))
	interval := float64(r.minInterval) * multiplier
	if interval >= float64(r.maxInterval) {
		return r.maxInterval
	}
	return time.Duration(interval)
}

func (r *ExponentialPolicy) Derive() Policy {
	return Exponential(r.attempts, r.minInterval, r.maxInterval).
		WithBase(r.base).
		WithJitter(r.jitter)
}
