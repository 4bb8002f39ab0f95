package resilience

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

// Config holds configuration for the resilient client.
type Config struct {
	// Logger is used for state transitions and retry diagnostics.
	Logger zerolog.Logger

	// DefaultBreaker applies to operations without an explicit override.
	// Zero fields fall back to DefaultBreakerConfig values.
	DefaultBreaker BreakerConfig

	// DefaultRetry applies to operations without an explicit override.
	// A zero MaxAttempts selects DefaultRetryPolicy.
	DefaultRetry RetryPolicy

	// OnStateChange is invoked on every breaker state transition for any
	// operation, after the transition has been logged.
	OnStateChange func(operation string, from, to State)
}

// Client composes a per-operation circuit breaker and retry handler around
// arbitrary remote calls. Breakers and retriers are created lazily on first
// use of an operation name and live for the client's lifetime; operations
// with different names never contend with each other. The client is owned
// by the composition root and passed to call sites, so tests get fresh
// registries.
type Client struct {
	cfg Config
	log zerolog.Logger

	mu       sync.RWMutex
	breakers map[string]*Breaker
	retriers map[string]*Retrier
}

// New creates a resilient client.
func New(cfg Config) *Client {
	if cfg.DefaultRetry.MaxAttempts == 0 {
		cfg.DefaultRetry = DefaultRetryPolicy()
	}

	return &Client{
		cfg:      cfg,
		log:      cfg.Logger,
		breakers: make(map[string]*Breaker),
		retriers: make(map[string]*Retrier),
	}
}

// Configure installs a per-operation breaker configuration and retry
// policy, replacing any instances created earlier for that name. A nil
// argument keeps the client default for that concern. Intended for setup
// time; replacing a breaker discards its accumulated state.
func (c *Client) Configure(operation string, breakerCfg *BreakerConfig, policy *RetryPolicy) {
	bc := c.cfg.DefaultBreaker
	if breakerCfg != nil {
		bc = *breakerCfg
	}
	rp := c.cfg.DefaultRetry
	if policy != nil {
		rp = *policy
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.breakers[operation] = c.newBreaker(operation, bc)
	c.retriers[operation] = NewRetrier(rp, c.log)
}

// Do runs work under the operation's circuit breaker and retry policy. If
// the breaker rejects the call, work is never invoked and an OpenError is
// returned. Otherwise work runs through the retry handler; the retry
// loop's final outcome, success, exhaustion or abort, is recorded against
// the breaker as a single result.
func (c *Client) Do(ctx context.Context, operation string, work func(context.Context) error) error {
	breaker := c.breakerFor(operation)
	if !breaker.Allow() {
		c.log.Warn().
			Str("operation", operation).
			Msg("call rejected by open circuit breaker")
		return &OpenError{Operation: operation}
	}

	if err := c.retrierFor(operation).Execute(ctx, operation, work); err != nil {
		breaker.RecordFailure()
		return err
	}

	breaker.RecordSuccess()
	return nil
}

// Execute runs work under the client's resilience policies for the named
// operation and returns its typed result.
func Execute[T any](ctx context.Context, c *Client, operation string, work func(context.Context) (T, error)) (T, error) {
	var result T
	err := c.Do(ctx, operation, func(ctx context.Context) error {
		v, err := work(ctx)
		if err != nil {
			return err
		}
		result = v
		return nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return result, nil
}

// Statistics returns a snapshot of every breaker created so far, keyed by
// operation name. It never blocks on in-flight calls.
func (c *Client) Statistics() map[string]BreakerSnapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	stats := make(map[string]BreakerSnapshot, len(c.breakers))
	for name, b := range c.breakers {
		stats[name] = b.Snapshot()
	}
	return stats
}

// breakerFor returns the breaker for an operation, creating it on first
// use. Double-checked so the write lock is only taken for first creation.
func (c *Client) breakerFor(operation string) *Breaker {
	c.mu.RLock()
	b, ok := c.breakers[operation]
	c.mu.RUnlock()
	if ok {
		return b
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if b, ok = c.breakers[operation]; ok {
		return b
	}
	b = c.newBreaker(operation, c.cfg.DefaultBreaker)
	c.breakers[operation] = b
	return b
}

// retrierFor returns the retrier for an operation, creating it on first use.
func (c *Client) retrierFor(operation string) *Retrier {
	c.mu.RLock()
	r, ok := c.retriers[operation]
	c.mu.RUnlock()
	if ok {
		return r
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if r, ok = c.retriers[operation]; ok {
		return r
	}
	r = NewRetrier(c.cfg.DefaultRetry, c.log)
	c.retriers[operation] = r
	return r
}

// newBreaker builds a breaker whose state transitions are logged and
// forwarded to the per-breaker and client-wide hooks.
func (c *Client) newBreaker(operation string, cfg BreakerConfig) *Breaker {
	breakerHook := cfg.OnStateChange
	clientHook := c.cfg.OnStateChange

	cfg.OnStateChange = func(name string, from, to State) {
		c.log.Info().
			Str("operation", name).
			Str("from", from.String()).
			Str("to", to.String()).
			Msg("circuit breaker state changed")
		if breakerHook != nil {
			breakerHook(name, from, to)
		}
		if clientHook != nil {
			clientHook(name, from, to)
		}
	}

	return NewBreaker(operation, cfg)
}
