package llm

import (
	"context"
	"time"
)

// RetryPolicy bounds the retry loop around a completion call. The wait
// before attempt n+1 is BackoffFactor * 2^n seconds. Sleep may be
// replaced in tests to avoid real delays.
type RetryPolicy struct {
	Attempts      int
	BackoffFactor float64
	Sleep         func(ctx context.Context, d time.Duration) error
}

// DefaultRetryPolicy returns the standard policy: 3 attempts with waits
// of 1.5s and 3s between them.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{Attempts: 3, BackoffFactor: 1.5}
}

// Backoff returns the wait duration after a failed attempt (0-based).
func (p RetryPolicy) Backoff(attempt int) time.Duration {
	return time.Duration(p.BackoffFactor * float64(uint(1)<<attempt) * float64(time.Second))
}

// Wait sleeps for the backoff of the given attempt, honoring cancellation.
func (p RetryPolicy) Wait(ctx context.Context, attempt int) error {
	d := p.Backoff(attempt)
	if p.Sleep != nil {
		return p.Sleep(ctx, d)
	}
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p RetryPolicy) attempts() int {
	if p.Attempts <= 0 {
		return 3
	}
	return p.Attempts
}
