// Package retry provides exponential backoff retry strategies for archive writes.
// The broadcast path never waits on it; only the background archiver does.
package retry

import (
	"context"
	"fmt"
	"math"
	"time"
)

// Strategy defines the retry behavior for failed archive writes.
// It implements exponential backoff with configurable parameters.
//
// The retry schedule follows: delay = min(BaseDelay * ExponentialBase^attempt, MaxDelay)
//
// Example with defaults (100ms base, 2.0 exponential, 5s max):
//
//	Attempt 1: 200ms
//	Attempt 2: 400ms
//	Attempt 3: 800ms
//	Attempt 4: 1.6s (→ give up)
type Strategy struct {
	MaxAttempts     int           // Maximum attempts, including the first one
	BaseDelay       time.Duration // Initial retry delay
	MaxDelay        time.Duration // Maximum retry delay cap
	ExponentialBase float64       // Backoff multiplier (e.g., 2.0 for doubling)
}

// DefaultStrategy returns the default strategy for archive writes:
// 5 attempts, 100ms→5s exponential backoff.
func DefaultStrategy() Strategy {
	return Strategy{
		MaxAttempts:     5,
		BaseDelay:       100 * time.Millisecond,
		MaxDelay:        5 * time.Second,
		ExponentialBase: 2.0,
	}
}

// CalculateRetryDelay calculates the delay before the given retry attempt.
// Formula: delay = min(BaseDelay * ExponentialBase^attemptNumber, MaxDelay)
func (s Strategy) CalculateRetryDelay(attemptNumber int) time.Duration {
	if attemptNumber <= 0 {
		return s.BaseDelay
	}

	delay := float64(s.BaseDelay) * math.Pow(s.ExponentialBase, float64(attemptNumber))

	if delay > float64(s.MaxDelay) {
		return s.MaxDelay
	}

	return time.Duration(delay)
}

// IsRetryable checks if another attempt is allowed after attemptCount attempts.
func (s Strategy) IsRetryable(attemptCount int) bool {
	return attemptCount < s.MaxAttempts
}

// Do calls fn until it succeeds, the attempts are exhausted, or ctx is done.
// It returns the number of attempts made and the last error.
func (s Strategy) Do(ctx context.Context, fn func(ctx context.Context) error) (int, error) {
	attempts := 0
	for {
		err := fn(ctx)
		attempts++
		if err == nil {
			return attempts, nil
		}
		if !s.IsRetryable(attempts) {
			return attempts, fmt.Errorf("giving up after %d attempts: %w", attempts, err)
		}

		timer := time.NewTimer(s.CalculateRetryDelay(attempts))
		select {
		case <-ctx.Done():
			timer.Stop()
			return attempts, fmt.Errorf("%w (last error: %v)", ctx.Err(), err)
		case <-timer.C:
		}
	}
}

// GetRetrySchedule returns a human-readable description of the retry schedule.
//
// Example output:
//
//	Retry Schedule:
//	  Attempt 1: immediately
//	  Attempt 2: after 200ms
//	  ...
func (s Strategy) GetRetrySchedule() string {
	schedule := "Retry Schedule:\n"
	for i := 1; i <= s.MaxAttempts; i++ {
		if i == 1 {
			schedule += "  Attempt 1: immediately\n"
			continue
		}
		schedule += fmt.Sprintf("  Attempt %d: after %v\n", i, s.CalculateRetryDelay(i-1))
	}
	return schedule
}
