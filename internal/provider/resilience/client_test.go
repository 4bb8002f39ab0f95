package resilience_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ArielSanroj/mommyshops-sub003/internal/provider/resilience"
)

// fastRetry keeps test retries quick while preserving the attempt count.
func fastRetry(maxAttempts int) *resilience.RetryPolicy {
	return &resilience.RetryPolicy{
		MaxAttempts: maxAttempts,
		BaseDelay:   time.Millisecond,
		MaxDelay:    5 * time.Millisecond,
		Strategy:    resilience.StrategyFixed,
	}
}

func TestClient_ExecuteSuccess(t *testing.T) {
	c := resilience.New(resilience.Config{Logger: zerolog.Nop()})

	result, err := resilience.Execute(context.Background(), c, "pubchem", func(_ context.Context) (string, error) {
		return "C9H8O4", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "C9H8O4", result)

	stats := c.Statistics()
	require.Contains(t, stats, "pubchem")
	assert.Equal(t, resilience.StateClosed, stats["pubchem"].State)
	assert.Equal(t, 0, stats["pubchem"].FailureCount)
}

func TestClient_OpenBreakerNeverInvokesWork(t *testing.T) {
	c := resilience.New(resilience.Config{Logger: zerolog.Nop()})
	c.Configure("fda", &resilience.BreakerConfig{
		FailureThreshold: 1,
		RecoveryTimeout:  time.Minute,
	}, fastRetry(1))

	var calls atomic.Int32
	work := func(_ context.Context) error {
		calls.Add(1)
		return errors.New("fail")
	}

	err := c.Do(context.Background(), "fda", work)
	require.ErrorIs(t, err, resilience.ErrRetriesExhausted)
	require.Equal(t, int32(1), calls.Load())

	err = c.Do(context.Background(), "fda", work)
	require.ErrorIs(t, err, resilience.ErrBreakerOpen)
	var open *resilience.OpenError
	require.ErrorAs(t, err, &open)
	assert.Equal(t, "fda", open.Operation)
	assert.Equal(t, int32(1), calls.Load(), "work must not run while the breaker is open")
}

func TestClient_ExhaustedRetriesCountAsOneFailure(t *testing.T) {
	c := resilience.New(resilience.Config{Logger: zerolog.Nop()})
	c.Configure("ewg", nil, fastRetry(3))

	var calls atomic.Int32
	err := c.Do(context.Background(), "ewg", func(_ context.Context) error {
		calls.Add(1)
		return errors.New("fail")
	})

	require.ErrorIs(t, err, resilience.ErrRetriesExhausted)
	assert.Equal(t, int32(3), calls.Load())

	// The retry loop's internal attempts are invisible to the breaker.
	stats := c.Statistics()
	assert.Equal(t, 1, stats["ewg"].FailureCount)
	assert.Equal(t, resilience.StateClosed, stats["ewg"].State)
}

func TestClient_DefaultThresholdTripsAfterFiveExhaustions(t *testing.T) {
	c := resilience.New(resilience.Config{Logger: zerolog.Nop()})
	c.Configure("ollama", nil, fastRetry(3))

	var calls atomic.Int32
	work := func(_ context.Context) error {
		calls.Add(1)
		return errors.New("fail")
	}

	// Default breaker threshold is 5; each exhausted Do records one failure.
	for i := 0; i < 5; i++ {
		err := c.Do(context.Background(), "ollama", work)
		require.ErrorIs(t, err, resilience.ErrRetriesExhausted)
	}
	assert.Equal(t, int32(15), calls.Load())
	assert.Equal(t, resilience.StateOpen, c.Statistics()["ollama"].State)

	err := c.Do(context.Background(), "ollama", work)
	require.ErrorIs(t, err, resilience.ErrBreakerOpen)
	assert.Equal(t, int32(15), calls.Load(), "rejected call must not invoke work")
}

func TestClient_OperationsAreIndependent(t *testing.T) {
	c := resilience.New(resilience.Config{Logger: zerolog.Nop()})
	c.Configure("failing", &resilience.BreakerConfig{
		FailureThreshold: 1,
		RecoveryTimeout:  time.Minute,
	}, fastRetry(1))

	_ = c.Do(context.Background(), "failing", func(_ context.Context) error {
		return errors.New("fail")
	})
	require.Equal(t, resilience.StateOpen, c.Statistics()["failing"].State)

	// A tripped breaker for one operation must not affect another.
	err := c.Do(context.Background(), "healthy", func(_ context.Context) error {
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, resilience.StateClosed, c.Statistics()["healthy"].State)
}

func TestClient_CancellationRecordedAsFailure(t *testing.T) {
	c := resilience.New(resilience.Config{Logger: zerolog.Nop()})
	c.Configure("slow", nil, &resilience.RetryPolicy{
		MaxAttempts: 3,
		BaseDelay:   time.Second,
		MaxDelay:    time.Second,
		Strategy:    resilience.StrategyFixed,
	})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	err := c.Do(ctx, "slow", func(_ context.Context) error {
		return errors.New("fail")
	})

	require.ErrorIs(t, err, resilience.ErrAborted)
	assert.Equal(t, 1, c.Statistics()["slow"].FailureCount)
}

func TestClient_StatisticsOnlyContainUsedOperations(t *testing.T) {
	c := resilience.New(resilience.Config{Logger: zerolog.Nop()})

	stats := c.Statistics()
	assert.Empty(t, stats)

	_ = c.Do(context.Background(), "fda", func(_ context.Context) error { return nil })
	_ = c.Do(context.Background(), "pubchem", func(_ context.Context) error { return nil })

	stats = c.Statistics()
	assert.Len(t, stats, 2)
	assert.Contains(t, stats, "fda")
	assert.Contains(t, stats, "pubchem")
	assert.NotContains(t, stats, "ollama")
}

func TestClient_BreakerRecoversThroughHalfOpen(t *testing.T) {
	c := resilience.New(resilience.Config{Logger: zerolog.Nop()})
	c.Configure("flaky", &resilience.BreakerConfig{
		FailureThreshold: 1,
		RecoveryTimeout:  20 * time.Millisecond,
		SuccessThreshold: 2,
	}, fastRetry(1))

	_ = c.Do(context.Background(), "flaky", func(_ context.Context) error {
		return errors.New("fail")
	})
	require.Equal(t, resilience.StateOpen, c.Statistics()["flaky"].State)

	time.Sleep(30 * time.Millisecond)

	ok := func(_ context.Context) error { return nil }
	require.NoError(t, c.Do(context.Background(), "flaky", ok))
	assert.Equal(t, resilience.StateHalfOpen, c.Statistics()["flaky"].State)

	require.NoError(t, c.Do(context.Background(), "flaky", ok))
	assert.Equal(t, resilience.StateClosed, c.Statistics()["flaky"].State)
	assert.Equal(t, 0, c.Statistics()["flaky"].FailureCount)
}

func TestClient_StateChangeHook(t *testing.T) {
	var transitions atomic.Int32
	c := resilience.New(resilience.Config{
		Logger: zerolog.Nop(),
		OnStateChange: func(operation string, _, to resilience.State) {
			assert.Equal(t, "fda", operation)
			if to == resilience.StateOpen {
				transitions.Add(1)
			}
		},
	})
	c.Configure("fda", &resilience.BreakerConfig{
		FailureThreshold: 1,
		RecoveryTimeout:  time.Minute,
	}, fastRetry(1))

	_ = c.Do(context.Background(), "fda", func(_ context.Context) error {
		return errors.New("fail")
	})

	assert.Equal(t, int32(1), transitions.Load())
}

func TestClient_ConcurrentLazyCreation(t *testing.T) {
	c := resilience.New(resilience.Config{Logger: zerolog.Nop()})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = c.Do(context.Background(), "shared", func(_ context.Context) error {
				return nil
			})
		}()
	}
	wg.Wait()

	stats := c.Statistics()
	require.Len(t, stats, 1)
	assert.Equal(t, resilience.StateClosed, stats["shared"].State)
}
