package tool

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// errRetriesExceeded marks an error that survived the full retry budget.
var errRetriesExceeded = errors.New("max retries exceeded")

// retrier runs an operation up to attempts times with linear backoff:
// after failed attempt n the delay is baseDelay * n, so inter-attempt
// delays are monotonically non-decreasing. Only errors the retryable
// predicate accepts re-enter the loop; everything else surfaces
// immediately.
type retrier struct {
	attempts  int
	baseDelay time.Duration
	retryable func(error) bool
	sleep     func(ctx context.Context, d time.Duration) error
}

func newRetrier(attempts int, baseDelay time.Duration, retryable func(error) bool) retrier {
	return retrier{
		attempts:  attempts,
		baseDelay: baseDelay,
		retryable: retryable,
		sleep:     sleepCtx,
	}
}

func (r retrier) do(ctx context.Context, fn func() error) error {
	var lastErr error
	for attempt := 1; attempt <= r.attempts; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if !r.retryable(lastErr) {
			return lastErr
		}
		if attempt == r.attempts {
			break
		}
		if err := r.sleep(ctx, r.baseDelay*time.Duration(attempt)); err != nil {
			return err
		}
	}
	return fmt.Errorf("%w: %w", errRetriesExceeded, lastErr)
}

// sleepCtx waits for d, returning early with the context error if ctx
// is cancelled first.
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
