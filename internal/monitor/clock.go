package monitor

import (
	"context"
	"time"
)

// Clock abstracts time so tests can run the scheduler without real sleeps.
// Sleep must return early when ctx is cancelled; the scheduler relies on
// that at every suspension point for prompt shutdown.
type Clock interface {
	Now() time.Time
	Sleep(ctx context.Context, d time.Duration)
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) Sleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// RealClock returns the wall clock used outside tests.
func RealClock() Clock { return realClock{} }
