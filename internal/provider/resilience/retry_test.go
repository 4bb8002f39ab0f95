package resilience_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ArielSanroj/mommyshops-sub003/internal/provider/resilience"
)

func TestRetrier_SucceedsAfterFailures(t *testing.T) {
	r := resilience.NewRetrier(resilience.RetryPolicy{
		MaxAttempts: 3,
		BaseDelay:   10 * time.Millisecond,
		MaxDelay:    50 * time.Millisecond,
		Strategy:    resilience.StrategyFixed,
	}, zerolog.Nop())

	attempts := 0
	err := r.Execute(context.Background(), "test", func(_ context.Context) error {
		attempts++
		if attempts < 3 {
			return errors.New("transient")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, attempts, "should invoke the work exactly three times")
}

func TestRetrier_SingleAttemptExhaustion(t *testing.T) {
	r := resilience.NewRetrier(resilience.RetryPolicy{
		MaxAttempts: 1,
		BaseDelay:   time.Second,
		MaxDelay:    time.Second,
		Strategy:    resilience.StrategyFixed,
	}, zerolog.Nop())

	underlying := errors.New("boom")
	attempts := 0

	start := time.Now()
	err := r.Execute(context.Background(), "test", func(_ context.Context) error {
		attempts++
		return underlying
	})

	assert.Less(t, time.Since(start), 100*time.Millisecond, "single attempt must not delay")
	assert.Equal(t, 1, attempts)

	require.ErrorIs(t, err, resilience.ErrRetriesExhausted)
	var exhausted *resilience.ExhaustedError
	require.ErrorAs(t, err, &exhausted)
	assert.Equal(t, "test", exhausted.Operation)
	assert.Equal(t, 1, exhausted.Attempts)
	assert.ErrorIs(t, err, underlying, "last failure must be preserved")
}

func TestRetrier_ExhaustionAfterAllAttempts(t *testing.T) {
	r := resilience.NewRetrier(resilience.RetryPolicy{
		MaxAttempts: 3,
		BaseDelay:   time.Millisecond,
		MaxDelay:    5 * time.Millisecond,
		Strategy:    resilience.StrategyFixed,
	}, zerolog.Nop())

	attempts := 0
	err := r.Execute(context.Background(), "test", func(_ context.Context) error {
		attempts++
		return errors.New("always fails")
	})

	assert.Equal(t, 3, attempts)
	var exhausted *resilience.ExhaustedError
	require.ErrorAs(t, err, &exhausted)
	assert.Equal(t, 3, exhausted.Attempts)
}

func TestRetrier_CancellationDuringDelay(t *testing.T) {
	r := resilience.NewRetrier(resilience.RetryPolicy{
		MaxAttempts: 3,
		BaseDelay:   time.Second,
		MaxDelay:    time.Second,
		Strategy:    resilience.StrategyFixed,
	}, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())

	attempts := 0
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	err := r.Execute(ctx, "test", func(_ context.Context) error {
		attempts++
		return errors.New("fail")
	})

	assert.Equal(t, 1, attempts, "should abort during the first delay")
	require.ErrorIs(t, err, resilience.ErrAborted)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, resilience.ErrRetriesExhausted, "abort must be distinct from exhaustion")
}

func TestRetryPolicy_Delay(t *testing.T) {
	tests := []struct {
		name     string
		policy   resilience.RetryPolicy
		attempt  int
		expected time.Duration
	}{
		{
			name: "fixed",
			policy: resilience.RetryPolicy{
				BaseDelay: 100 * time.Millisecond,
				MaxDelay:  time.Minute,
				Strategy:  resilience.StrategyFixed,
			},
			attempt:  5,
			expected: 100 * time.Millisecond,
		},
		{
			name: "linear third attempt",
			policy: resilience.RetryPolicy{
				BaseDelay: 100 * time.Millisecond,
				MaxDelay:  time.Minute,
				Strategy:  resilience.StrategyLinear,
			},
			attempt:  2,
			expected: 300 * time.Millisecond,
		},
		{
			name: "exponential first attempt",
			policy: resilience.RetryPolicy{
				BaseDelay:     time.Second,
				MaxDelay:      3 * time.Second,
				Strategy:      resilience.StrategyExponential,
				BackoffFactor: 2.0,
			},
			attempt:  0,
			expected: time.Second,
		},
		{
			name: "exponential second attempt",
			policy: resilience.RetryPolicy{
				BaseDelay:     time.Second,
				MaxDelay:      3 * time.Second,
				Strategy:      resilience.StrategyExponential,
				BackoffFactor: 2.0,
			},
			attempt:  1,
			expected: 2 * time.Second,
		},
		{
			name: "exponential clamped to max delay",
			policy: resilience.RetryPolicy{
				BaseDelay:     time.Second,
				MaxDelay:      3 * time.Second,
				Strategy:      resilience.StrategyExponential,
				BackoffFactor: 2.0,
			},
			attempt:  2,
			expected: 3 * time.Second,
		},
		{
			name: "linear clamped to max delay",
			policy: resilience.RetryPolicy{
				BaseDelay: time.Second,
				MaxDelay:  2 * time.Second,
				Strategy:  resilience.StrategyLinear,
			},
			attempt:  9,
			expected: 2 * time.Second,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.policy.Delay(tt.attempt))
		})
	}
}

func TestRetryPolicy_DelayWithJitter(t *testing.T) {
	policy := resilience.RetryPolicy{
		BaseDelay: 100 * time.Millisecond,
		MaxDelay:  time.Minute,
		Strategy:  resilience.StrategyFixed,
		Jitter:    true,
	}

	for i := 0; i < 100; i++ {
		d := policy.Delay(0)
		assert.GreaterOrEqual(t, d, 100*time.Millisecond)
		assert.LessOrEqual(t, d, 110*time.Millisecond, "jitter must stay within 10 percent")
	}
}

func TestRetryPolicy_JitterNeverExceedsMaxDelay(t *testing.T) {
	policy := resilience.RetryPolicy{
		BaseDelay:     time.Second,
		MaxDelay:      4 * time.Second,
		Strategy:      resilience.StrategyExponential,
		BackoffFactor: 2.0,
		Jitter:        true,
	}

	for attempt := 0; attempt < 10; attempt++ {
		assert.LessOrEqual(t, policy.Delay(attempt), 4*time.Second)
	}
}

func TestRetryPolicy_DelaySaturatesAtMaxDelayForLargeAttempts(t *testing.T) {
	policy := resilience.DefaultRetryPolicy()

	// 1s * 2^attempt overflows int64 nanoseconds around attempt 33; the
	// delay must saturate at MaxDelay, never go negative or to zero.
	for _, attempt := range []int{33, 64, 500} {
		d := policy.Delay(attempt)
		assert.Equal(t, policy.MaxDelay, d, "attempt %d", attempt)
		assert.Positive(t, d)
	}
}

func TestRetryPolicy_LinearDelayOverflowClampsToMaxDelay(t *testing.T) {
	policy := resilience.RetryPolicy{
		BaseDelay: time.Hour,
		MaxDelay:  time.Minute,
		Strategy:  resilience.StrategyLinear,
	}

	// Large enough for BaseDelay*(attempt+1) to wrap negative.
	assert.Equal(t, time.Minute, policy.Delay(1<<40))
}

func TestRetryPolicy_BackOffSequence(t *testing.T) {
	policy := resilience.RetryPolicy{
		MaxAttempts:   3,
		BaseDelay:     time.Second,
		MaxDelay:      time.Minute,
		Strategy:      resilience.StrategyExponential,
		BackoffFactor: 2.0,
	}

	bo := policy.BackOff()
	assert.Equal(t, time.Second, bo.NextBackOff())
	assert.Equal(t, 2*time.Second, bo.NextBackOff())
	assert.Equal(t, backoff.Stop, bo.NextBackOff(), "no delay after the final attempt")

	bo.Reset()
	assert.Equal(t, time.Second, bo.NextBackOff())
}

func TestDefaultRetryPolicy(t *testing.T) {
	policy := resilience.DefaultRetryPolicy()

	assert.Equal(t, 3, policy.MaxAttempts)
	assert.Equal(t, time.Second, policy.BaseDelay)
	assert.Equal(t, time.Minute, policy.MaxDelay)
	assert.Equal(t, resilience.StrategyExponential, policy.Strategy)
	assert.Equal(t, 2.0, policy.BackoffFactor)
	assert.True(t, policy.Jitter)
}

func TestStrategy_String(t *testing.T) {
	assert.Equal(t, "fixed", resilience.StrategyFixed.String())
	assert.Equal(t, "linear", resilience.StrategyLinear.String())
	assert.Equal(t, "exponential", resilience.StrategyExponential.String())
}
