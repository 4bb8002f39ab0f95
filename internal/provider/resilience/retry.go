package resilience

import (
	"context"
	"math"
	"math/rand"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
)

// Strategy selects how the inter-attempt delay grows across retries.
type Strategy int

// Backoff strategies.
const (
	// StrategyFixed waits BaseDelay between every attempt.
	StrategyFixed Strategy = iota

	// StrategyLinear waits BaseDelay times the attempt number.
	StrategyLinear

	// StrategyExponential waits BaseDelay times BackoffFactor^attempt.
	StrategyExponential
)

// String returns a human-readable strategy name.
func (s Strategy) String() string {
	switch s {
	case StrategyFixed:
		return "fixed"
	case StrategyLinear:
		return "linear"
	case StrategyExponential:
		return "exponential"
	default:
		return "unknown"
	}
}

// RetryPolicy configures retry behavior for an operation.
type RetryPolicy struct {
	// MaxAttempts is the total number of attempts, including the first.
	// Default: 3
	MaxAttempts int

	// BaseDelay is the starting delay between attempts.
	// Default: 1 second
	BaseDelay time.Duration

	// MaxDelay caps the computed delay regardless of strategy or jitter.
	// Default: 1 minute
	MaxDelay time.Duration

	// Strategy selects how the delay grows.
	// Default: StrategyExponential
	Strategy Strategy

	// BackoffFactor is the multiplier used by StrategyExponential.
	// Default: 2.0
	BackoffFactor float64

	// Jitter adds up to 10% of the computed delay as random noise to
	// desynchronize concurrent retriers.
	Jitter bool
}

// DefaultRetryPolicy returns sensible defaults for retrying remote calls.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:   3,
		BaseDelay:     1 * time.Second,
		MaxDelay:      1 * time.Minute,
		Strategy:      StrategyExponential,
		BackoffFactor: 2.0,
		Jitter:        true,
	}
}

// Delay returns the delay to apply after the given zero-based attempt,
// clamped to MaxDelay.
func (p RetryPolicy) Delay(attempt int) time.Duration {
	var d time.Duration
	switch p.Strategy {
	case StrategyLinear:
		d = p.BaseDelay * time.Duration(attempt+1)
	case StrategyExponential:
		// Computed in float64 so a large attempt number saturates at
		// MaxDelay instead of overflowing time.Duration.
		scaled := float64(p.BaseDelay) * math.Pow(p.BackoffFactor, float64(attempt))
		if scaled >= float64(p.MaxDelay) {
			return p.MaxDelay
		}
		d = time.Duration(scaled)
	default:
		d = p.BaseDelay
	}
	if d < 0 {
		// Overflowed multiplication wraps negative; treat it as the cap.
		return p.MaxDelay
	}

	if p.Jitter && d > 0 {
		d += time.Duration(rand.Int63n(int64(d)/10 + 1)) //nolint:gosec // jitter, not crypto
	}

	if d > p.MaxDelay {
		d = p.MaxDelay
	}
	return d
}

// BackOff returns the policy's delay sequence as a backoff.BackOff.
// NextBackOff yields the delay after each failed attempt and backoff.Stop
// once only the final attempt remains.
func (p RetryPolicy) BackOff() backoff.BackOff {
	return &policyBackOff{policy: p}
}

// policyBackOff adapts a RetryPolicy to the backoff.BackOff interface.
type policyBackOff struct {
	policy  RetryPolicy
	attempt int
}

func (b *policyBackOff) NextBackOff() time.Duration {
	if b.attempt >= b.policy.MaxAttempts-1 {
		return backoff.Stop
	}
	d := b.policy.Delay(b.attempt)
	b.attempt++
	return d
}

func (b *policyBackOff) Reset() {
	b.attempt = 0
}

// Retrier executes units of work under a RetryPolicy. It is stateless
// across calls and safe for concurrent use.
type Retrier struct {
	policy RetryPolicy
	log    zerolog.Logger
}

// NewRetrier creates a retrier. Zero policy fields fall back to
// DefaultRetryPolicy values.
func NewRetrier(policy RetryPolicy, log zerolog.Logger) *Retrier {
	defaults := DefaultRetryPolicy()
	if policy.MaxAttempts <= 0 {
		policy.MaxAttempts = defaults.MaxAttempts
	}
	if policy.BaseDelay <= 0 {
		policy.BaseDelay = defaults.BaseDelay
	}
	if policy.MaxDelay <= 0 {
		policy.MaxDelay = defaults.MaxDelay
	}
	if policy.Strategy == StrategyExponential && policy.BackoffFactor <= 0 {
		policy.BackoffFactor = defaults.BackoffFactor
	}

	return &Retrier{policy: policy, log: log}
}

// Policy returns the retrier's effective policy.
func (r *Retrier) Policy() RetryPolicy {
	return r.policy
}

// Execute runs work up to MaxAttempts times, sleeping between attempts per
// the policy. It returns nil as soon as an attempt succeeds, an
// ExhaustedError carrying the last failure once all attempts are spent,
// and an AbortedError if the context is cancelled during a delay. The
// inter-attempt sleep holds no locks and blocks only the calling goroutine.
func (r *Retrier) Execute(ctx context.Context, operation string, work func(context.Context) error) error {
	bo := r.policy.BackOff()
	bo.Reset()

	var lastErr error
	for attempt := 0; attempt < r.policy.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return &AbortedError{Operation: operation, Attempts: attempt, Err: err}
		}

		lastErr = work(ctx)
		if lastErr == nil {
			return nil
		}

		delay := bo.NextBackOff()
		if delay == backoff.Stop {
			break
		}

		r.log.Debug().
			Str("operation", operation).
			Int("attempt", attempt+1).
			Int("max_attempts", r.policy.MaxAttempts).
			Dur("delay", delay).
			Err(lastErr).
			Msg("retrying after failure")

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return &AbortedError{Operation: operation, Attempts: attempt + 1, Err: ctx.Err()}
		case <-timer.C:
		}
	}

	return &ExhaustedError{Operation: operation, Attempts: r.policy.MaxAttempts, Err: lastErr}
}
