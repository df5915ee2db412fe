package retry_test

import (
	"testing"
	"testing/synctest"
	"time"
)

// resolution is the precision at which bubble durations are compared.
const resolution = time.Microsecond * 10

// run executes fn as a parallel subtest inside a synctest bubble, so waits take no real time.
func run(t *testing.T, name string, fn func(t *testing.T)) {
	t.Run(name, func(t *testing.T) {
		t.Parallel()
		synctest.Test(t, fn)
	})
}

// delayFunc returns a checker that fails t unless the call it wraps lasts delay, give or take
// delay*jitter of bubble time.
func delayFunc(t *testing.T, jitter float64) func(delay time.Duration, fn func()) {
	return func(delay time.Duration, fn func()) {
		t.Helper()

		spread := time.Duration(jitter * float64(delay))
		lo, hi := (delay - spread).Truncate(resolution), (delay + spread + resolution).Truncate(resolution)

		started := time.Now()
		fn()
		if took := time.Since(started).Truncate(resolution); took < lo || took > hi {
			t.Fatalf("call took %s, want within [%s, %s]", took, lo, hi)
		}
	}
}
