package etl

import (
	"context"
	"math"
	"time"
)

// RetryPolicy describes how many times an operation is attempted and how long
// to wait between attempts.
type RetryPolicy struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}

// DefaultRetryPolicy makes 7 attempts back to back.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 7,
		MaxDelay:    30 * time.Second,
		Multiplier:  2.0,
	}
}

// Delay returns the wait after the given failed attempt (1-based).
func (p RetryPolicy) Delay(attempt int) time.Duration {
	if attempt < 1 || p.InitialDelay <= 0 {
		return 0
	}

	mult := p.Multiplier
	if mult < 1 {
		mult = 1
	}
	delay := float64(p.InitialDelay) * math.Pow(mult, float64(attempt-1))
	if p.MaxDelay > 0 && delay > float64(p.MaxDelay) {
		return p.MaxDelay
	}
	return time.Duration(delay)
}

// Do calls fn until it succeeds, returns a Permanent error, the attempts are
// used up or ctx is done. It returns the number of attempts made and the last error.
func (p RetryPolicy) Do(ctx context.Context, fn func(attempt int) error) (int, error) {
	maxAttempts := max(p.MaxAttempts, 1)

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			if lastErr == nil {
				lastErr = err
			}
			return attempt - 1, lastErr
		}

		lastErr = fn(attempt)
		if lastErr == nil {
			return attempt, nil
		}
		if isPermanent(lastErr) || attempt == maxAttempts {
			return attempt, lastErr
		}

		if delay := p.Delay(attempt); delay > 0 {
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return attempt, lastErr
			case <-timer.C:
			}
		}
	}
	return maxAttempts, lastErr
}
