package ratelimit

import (
	"context"
	"emailcount/pkg/logger"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// FixedWindow admits at most capacity operations per window. When a window
// expires its counter is reset wholesale rather than recomputed, so the limit
// holds per window but not per arbitrary interval of the same length.
//
// All state is guarded by mu, which is held for the whole of Acquire including
// any wait. Concurrent callers are therefore admitted one at a time in arrival
// order.
type FixedWindow struct {
	clock    Clock
	onWait   func(ctx context.Context, wait time.Duration)
	capacity int
	window   time.Duration

	// mu protects count and windowStart.
	mu          sync.Mutex
	count       int
	windowStart time.Time
}

// NewFixedWindow creates a FixedWindow whose first window starts now.
func NewFixedWindow(opts Options) (*FixedWindow, error) {
	opts, err := opts.withDefaults()
	if err != nil {
		return nil, err
	}

	return &FixedWindow{
		clock:       opts.Clock,
		onWait:      opts.OnWait,
		capacity:    opts.Capacity,
		window:      opts.Window,
		windowStart: opts.Clock.Now(),
	}, nil
}

// Acquire implements Limiter.
func (f *FixedWindow) Acquire(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	now := f.clock.Now()

	// expired window: start a new one
	if now.Sub(f.windowStart) > f.window {
		f.count = 0
		f.windowStart = now
	}

	if f.count >= f.capacity {
		wait := f.window - now.Sub(f.windowStart)
		// a clock that moved backwards must not stretch the wait past one window
		wait = max(0, min(wait, f.window))

		logger.Info(ctx, fmt.Sprintf("Rate limit reached. Waiting %d seconds...", waitSeconds(wait)),
			zap.Duration("wait", wait),
			zap.Int("capacity", f.capacity),
			zap.Duration("window", f.window))
		if f.onWait != nil {
			f.onWait(ctx, wait)
		}

		if wait > 0 {
			if err := f.clock.Sleep(ctx, wait); err != nil {
				return fmt.Errorf("interrupted while waiting for rate limit: %w", err)
			}
		}

		f.count = 0
		f.windowStart = f.clock.Now()
	}

	f.count++

	return nil
}
