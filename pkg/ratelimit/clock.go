package ratelimit

import (
	"context"
	"time"
)

// Clock abstracts the time source and the suspension primitive used by the
// limiters so tests can drive time explicitly.
type Clock interface {
	// Now returns the current time.
	Now() time.Time
	// Sleep suspends the caller for d or until ctx is done, whichever comes
	// first. It returns ctx.Err() when interrupted.
	Sleep(ctx context.Context, d time.Duration) error
}

// SystemClock is the Clock backed by the time package.
var SystemClock Clock = systemClock{} //nolint: gochecknoglobals

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

func (systemClock) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
