package retry

import (
	"context"
	"math/rand/v2"
	"time"
)

func validateJitter(jitter float64) {
	if jitter < 0 {
		panic("jitter can't be < 0")
	}
	if jitter >= 1 {
		panic("jitter can't be >= 1")
	}
}

// wait sleeps for interval ± interval*jitter.
func wait(ctx context.Context, interval time.Duration, jitter float64) bool {
	m := (rand.Float64() * 2) - 1
	d := interval + time.Duration(m*jitter*float64(interval))

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
