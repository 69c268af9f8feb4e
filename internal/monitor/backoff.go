package monitor

import "time"

// Backoff computes the pause after a failed fetch: base * 2^(n-1) capped
// at Max. The "retry" is the next cycle's visit to the product; Backoff
// only spaces out the iteration after a failure.
type Backoff struct {
	Base time.Duration
	Max  time.Duration
}

// Delay returns the sleep for the given consecutive error count.
// Zero or negative counts yield no delay.
func (b Backoff) Delay(errorCount int) time.Duration {
	if errorCount <= 0 || b.Base <= 0 {
		return 0
	}
	d := b.Base
	for i := 1; i < errorCount; i++ {
		// Grow stepwise and stop at the ceiling; avoids overflow for
		// large error counts.
		if b.Max > 0 && d >= b.Max {
			return b.Max
		}
		d *= 2
	}
	if b.Max > 0 && d > b.Max {
		return b.Max
	}
	return d
}
