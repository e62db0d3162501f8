package retry

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultStrategy(t *testing.T) {
	strategy := DefaultStrategy()

	assert.Equal(t, 5, strategy.MaxAttempts)
	assert.Equal(t, 100*time.Millisecond, strategy.BaseDelay)
	assert.Equal(t, 5*time.Second, strategy.MaxDelay)
	assert.Equal(t, 2.0, strategy.ExponentialBase)
}

func TestStrategy_CalculateRetryDelay(t *testing.T) {
	strategy := DefaultStrategy()

	tests := []struct {
		name          string
		attemptNumber int
		expectedDelay time.Duration
	}{
		{name: "Zero attempts - base delay", attemptNumber: 0, expectedDelay: 100 * time.Millisecond},
		{name: "Negative attempts - base delay", attemptNumber: -3, expectedDelay: 100 * time.Millisecond},
		{name: "First attempt", attemptNumber: 1, expectedDelay: 200 * time.Millisecond},
		{name: "Second attempt", attemptNumber: 2, expectedDelay: 400 * time.Millisecond},
		{name: "Fifth attempt", attemptNumber: 5, expectedDelay: 3200 * time.Millisecond},
		{name: "Sixth attempt - capped", attemptNumber: 6, expectedDelay: 5 * time.Second},
		{name: "Large attempt number - still capped", attemptNumber: 100, expectedDelay: 5 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expectedDelay, strategy.CalculateRetryDelay(tt.attemptNumber))
		})
	}
}

func TestStrategy_IsRetryable(t *testing.T) {
	strategy := Strategy{MaxAttempts: 3}

	assert.True(t, strategy.IsRetryable(0))
	assert.True(t, strategy.IsRetryable(2))
	assert.False(t, strategy.IsRetryable(3))
	assert.False(t, strategy.IsRetryable(10))
}

func fastStrategy(attempts int) Strategy {
	return Strategy{
		MaxAttempts:     attempts,
		BaseDelay:       time.Millisecond,
		MaxDelay:        2 * time.Millisecond,
		ExponentialBase: 2.0,
	}
}

func TestStrategy_Do_SucceedsFirstTime(t *testing.T) {
	calls := 0
	attempts, err := fastStrategy(3).Do(context.Background(), func(context.Context) error {
		calls++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, attempts)
	assert.Equal(t, 1, calls)
}

func TestStrategy_Do_RetriesUntilSuccess(t *testing.T) {
	calls := 0
	attempts, err := fastStrategy(5).Do(context.Background(), func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("database is locked")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestStrategy_Do_GivesUp(t *testing.T) {
	boom := errors.New("connection refused")
	attempts, err := fastStrategy(4).Do(context.Background(), func(context.Context) error {
		return boom
	})

	assert.Equal(t, 4, attempts)
	assert.ErrorIs(t, err, boom)
}

func TestStrategy_Do_StopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	strategy := Strategy{MaxAttempts: 10, BaseDelay: time.Hour, MaxDelay: time.Hour, ExponentialBase: 1}

	calls := 0
	attempts, err := strategy.Do(ctx, func(context.Context) error {
		calls++
		cancel()
		return errors.New("fail")
	})

	assert.Equal(t, 1, attempts)
	assert.Equal(t, 1, calls)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStrategy_GetRetrySchedule(t *testing.T) {
	schedule := DefaultStrategy().GetRetrySchedule()

	assert.True(t, strings.HasPrefix(schedule, "Retry Schedule:\n"))
	assert.Contains(t, schedule, "Attempt 1: immediately")
	assert.Contains(t, schedule, "Attempt 2: after 200ms")
	assert.Contains(t, schedule, "Attempt 5: after 1.6s")
	assert.NotContains(t, schedule, "Attempt 6")
}
