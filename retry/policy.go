// This package contains the [Policy] interface used to retry failing flush handlers and several
// implementations.
package retry

import (
	"context"
)

// Policy defines how many times a failing handler is called again and how long to wait between
// calls.
//
// Implementations are not considered thread-safe. Each flush works with its own derived instance.
type Policy interface {
	// Attempt checks if another attempt should be made.
	//
	// The first attempt is granted immediately. Later attempts block until the policy's interval
	// has passed or the context is cancelled. Returns false if no attempts remain.
	Attempt(ctx context.Context) bool
	// Derive returns a new Policy instance with the same settings and no attempts made.
	Derive() Policy
}

// budget counts attempts. Zero attempts means infinite.
type budget struct {
	attempted int
	attempts  int
}

func newBudget(attempts int) budget {
	if attempts < 0 {
		panic("attempts can't be < 0")
	}
	return budget{attempts: attempts}
}

func (b *budget) first() bool {
	return b.attempted == 0
}

func (b *budget) exhausted() bool {
	return b.attempts != 0 && b.attempted >= b.attempts
}

// spend records the attempt if ok and returns ok.
func (b *budget) spend(ok bool) bool {
	if ok {
		b.attempted += 1
	}
	return ok
}
