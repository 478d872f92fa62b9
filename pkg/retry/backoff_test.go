package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExponentialBackoffDefaults(t *testing.T) {
	b := NewExponentialBackoff()
	assert.Equal(t, 100*time.Millisecond, b.InitialDelay)
	assert.Equal(t, 30*time.Second, b.MaxDelay)
	assert.Equal(t, 5, b.MaxAttempts)
}

func TestExponentialBackoffStopsAtMaxAttempts(t *testing.T) {
	b := &ExponentialBackoff{InitialDelay: time.Millisecond, MaxDelay: time.Second, Multiplier: 2, MaxAttempts: 3}
	for attempt := 0; attempt < 3; attempt++ {
		_, ok := b.NextDelay(attempt)
		assert.True(t, ok, "attempt %d should continue", attempt)
	}
	_, ok := b.NextDelay(3)
	assert.False(t, ok)
}

func TestExponentialBackoffCapsAtMaxDelay(t *testing.T) {
	b := &ExponentialBackoff{InitialDelay: time.Second, MaxDelay: 2 * time.Second, Multiplier: 10, MaxAttempts: 10}
	delay, ok := b.NextDelay(5)
	require.True(t, ok)
	assert.LessOrEqual(t, delay, 2*time.Second+time.Duration(float64(2*time.Second)*0.1))
}

func TestRetrySucceedsAfterTransientFailures(t *testing.T) {
	b := &ExponentialBackoff{InitialDelay: time.Millisecond, MaxDelay: time.Millisecond, Multiplier: 1, MaxAttempts: 5}
	attempts := 0
	err := Retry(context.Background(), b, func() error {
		attempts++
		if attempts < 3 {
			return errors.New("disk busy")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestRetryReturnsLastErrorWhenExhausted(t *testing.T) {
	b := &ExponentialBackoff{InitialDelay: time.Millisecond, MaxDelay: time.Millisecond, Multiplier: 1, MaxAttempts: 2}
	attempts := 0
	err := Retry(context.Background(), b, func() error {
		attempts++
		return errors.New("disk full")
	})
	require.Error(t, err)
	assert.Equal(t, "disk full", err.Error())
	// MaxAttempts counts retries: one initial call plus two retries.
	assert.Equal(t, 3, attempts)
}

func TestRetryRespectsContextCancellation(t *testing.T) {
	b := &ExponentialBackoff{InitialDelay: time.Hour, MaxDelay: time.Hour, Multiplier: 1, MaxAttempts: 5}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Retry(ctx, b, func() error {
		return errors.New("transient")
	})
	require.Error(t, err)
}

func TestRetryWithResultReturnsValueOnSuccess(t *testing.T) {
	b := &ConstantBackoff{Delay: time.Millisecond, MaxAttempts: 3}
	result, err := RetryWithResult(context.Background(), b, func() (int, error) {
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, result)
}

func TestConstantBackoffNeverIncreases(t *testing.T) {
	b := NewConstantBackoff(5*time.Second, 3)
	d1, _ := b.NextDelay(0)
	d2, _ := b.NextDelay(1)
	assert.Equal(t, d1, d2)
}
