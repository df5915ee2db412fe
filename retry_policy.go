package capacitor

import (
	"context"

	"github.com/teenjuna/capacitor/retry"
)

// RetryPolicy decides whether a failed handler call is repeated. See package [retry].
type RetryPolicy = retry.Policy

// Retrying wraps handler so that a failed flush is repeated while policy allows it. Every flush
// starts from a fresh copy of policy. The error of the last call is returned.
//
// The capacitor stays locked while the policy waits, so Push blocks for that time.
func Retrying[Item any](ctx context.Context, policy RetryPolicy, handler Handler[Item]) Handler[Item] {
	if policy == nil {
		panic("policy can't be nil")
	}
	if handler == nil {
		panic("handler can't be nil")
	}
	return func(batch []Item) error {
		var (
			attempts = policy.Derive()
			err      error
		)
		for attempts.Attempt(ctx) {
			if err = handler(batch); err == nil {
				return nil
			}
		}
		if err == nil {
			return ctx.Err()
		}
		return err
	}
}
