// Package ratelimit bounds how many provider calls are admitted per time window.
//
// Two strategies are available:
//   - FixedWindow admits up to Capacity operations per Window, resetting the
//     counter wholesale when the window expires. Bursts that straddle a reset
//     can admit up to 2 x Capacity operations within one window length.
//   - TokenBucket spreads the same budget evenly using golang.org/x/time/rate
//     and never admits more than Capacity operations in any window length, at
//     the cost of never bursting.
package ratelimit

import (
	"context"
	"emailcount/pkg/serrors"
	"time"
)

// Strategy names a limiter algorithm.
type Strategy string

const (
	// StrategyFixedWindow selects FixedWindow.
	StrategyFixedWindow Strategy = "fixed"
	// StrategyTokenBucket selects TokenBucket.
	StrategyTokenBucket Strategy = "token"
)

const (
	// DefaultCapacity is the number of operations admitted per window by default.
	DefaultCapacity = 150
	// DefaultWindow is the default window length.
	DefaultWindow = time.Minute
)

// Limiter admits operations, suspending the caller when the budget is spent.
//
//go:generate mockgen -package mockratelimit -source=ratelimit.go -destination=mock/mockratelimit.go *
type Limiter interface {
	// Acquire returns once the caller may perform one operation. It only fails
	// when ctx is done while waiting.
	Acquire(ctx context.Context) error
}

// Options configure a limiter. Zero values fall back to the defaults.
type Options struct {
	// Strategy selects the algorithm; empty means StrategyFixedWindow.
	Strategy Strategy
	// Capacity is the maximum number of operations per Window.
	Capacity int
	// Window is the length of one rate-limit window.
	Window time.Duration
	// Clock is the time source; nil means SystemClock.
	Clock Clock
	// OnWait, when set, is called with the duration of every wait before the
	// limiter suspends.
	OnWait func(ctx context.Context, wait time.Duration)
}

func (o Options) withDefaults() (Options, error) {
	if o.Capacity == 0 {
		o.Capacity = DefaultCapacity
	}
	if o.Window == 0 {
		o.Window = DefaultWindow
	}
	if o.Clock == nil {
		o.Clock = SystemClock
	}
	if o.Capacity < 0 {
		return o, serrors.With(serrors.ErrBadRequest, "rate limit capacity must be positive, got %d", o.Capacity)
	}
	if o.Window < 0 {
		return o, serrors.With(serrors.ErrBadRequest, "rate limit window must be positive, got %s", o.Window)
	}

	return o, nil
}

// New builds the limiter selected by opts.Strategy.
func New(opts Options) (Limiter, error) {
	switch opts.Strategy {
	case "", StrategyFixedWindow:
		return NewFixedWindow(opts)
	case StrategyTokenBucket:
		return NewTokenBucket(opts)
	default:
		return nil, serrors.With(serrors.ErrBadRequest, "unknown rate limit strategy %q", opts.Strategy)
	}
}

// waitSeconds rounds d up to whole seconds for display.
func waitSeconds(d time.Duration) int64 {
	secs := int64(d / time.Second)
	if d%time.Second != 0 {
		secs++
	}

	return secs
}
