package retry

import (
	"context"
)

var _ Policy = (*ImmediatePolicy)(nil)

// ImmediatePolicy retries without waiting.
type ImmediatePolicy struct {
	budget
}

func Immediate(attempts int) *ImmediatePolicy {
	return &ImmediatePolicy{budget: newBudget(attempts)}
}

func (r *ImmediatePolicy) Attempt(ctx context.Context) bool {
	if r.first() {
		return r.spend(true)
	}
	if r.exhausted() {
		return false
	}
	return r.spend(ctx.Err() == nil)
}

func (r *ImmediatePolicy) Derive() Policy {
	return Immediate(r.attempts)
}
