package ratelimit

import (
	"context"
	"emailcount/pkg/logger"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// TokenBucket spreads capacity operations evenly over each window: the bucket
// holds a single token refilled every window/capacity, so no interval of one
// window length ever sees more than capacity admissions.
type TokenBucket struct {
	clock   Clock
	onWait  func(ctx context.Context, wait time.Duration)
	limiter *rate.Limiter
}

// NewTokenBucket creates a TokenBucket whose first operation is admitted immediately.
func NewTokenBucket(opts Options) (*TokenBucket, error) {
	opts, err := opts.withDefaults()
	if err != nil {
		return nil, err
	}

	return &TokenBucket{
		clock:   opts.Clock,
		onWait:  opts.OnWait,
		limiter: rate.NewLimiter(rate.Every(opts.Window/time.Duration(opts.Capacity)), 1),
	}, nil
}

// Acquire implements Limiter.
func (t *TokenBucket) Acquire(ctx context.Context) error {
	now := t.clock.Now()
	res := t.limiter.ReserveN(now, 1)
	if !res.OK() {
		return errors.New("rate limiter cannot admit a single operation")
	}

	wait := res.DelayFrom(now)
	if wait <= 0 {
		return nil
	}

	logger.Info(ctx, fmt.Sprintf("Rate limit reached. Waiting %d seconds...", waitSeconds(wait)),
		zap.Duration("wait", wait))
	if t.onWait != nil {
		t.onWait(ctx, wait)
	}

	if err := t.clock.Sleep(ctx, wait); err != nil {
		res.CancelAt(t.clock.Now())

		return fmt.Errorf("interrupted while waiting for rate limit: %w", err)
	}

	return nil
}
