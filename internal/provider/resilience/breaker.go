// Package resilience provides per-operation circuit breakers, configurable
// retry policies, and a client facade that composes both around arbitrary
// remote calls to external ingredient-data providers.
package resilience

import (
	"sync"
	"time"
)

// State represents a circuit breaker state.
type State int

// Circuit breaker states.
const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// MarshalJSON implements json.Marshaler so snapshots serialize the state
// name rather than its numeric value.
func (s State) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// BreakerConfig holds configuration for a circuit breaker.
type BreakerConfig struct {
	// FailureThreshold is the failure count that trips the breaker open.
	// Default: 5
	FailureThreshold int

	// RecoveryTimeout is how long the breaker stays open before a trial
	// call is permitted.
	// Default: 60 seconds
	RecoveryTimeout time.Duration

	// SuccessThreshold is the number of consecutive successes in half-open
	// required to close the breaker again.
	// Default: 3
	SuccessThreshold int

	// OnStateChange is called after every state transition. The callback
	// runs while the breaker's lock is held and must not call back into
	// the breaker.
	OnStateChange func(name string, from, to State)
}

// DefaultBreakerConfig returns sensible defaults for a circuit breaker.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		FailureThreshold: 5,
		RecoveryTimeout:  60 * time.Second,
		SuccessThreshold: 3,
	}
}

// BreakerSnapshot is a point-in-time view of a breaker for observability.
type BreakerSnapshot struct {
	Name         string `json:"name"`
	State        State  `json:"state"`
	FailureCount int    `json:"failureCount"`
	SuccessCount int    `json:"successCount"`
}

// Breaker is a circuit breaker for a single logical operation. It starts
// closed, opens once FailureThreshold failures accumulate, admits trial
// calls after RecoveryTimeout, and closes again after SuccessThreshold
// consecutive successes in half-open. All methods are safe for concurrent
// use.
type Breaker struct {
	name string
	cfg  BreakerConfig

	mu            sync.Mutex
	state         State
	failureCount  int
	successCount  int
	lastFailureAt time.Time
}

// NewBreaker creates a circuit breaker named after its operation. Zero
// config fields fall back to DefaultBreakerConfig values.
func NewBreaker(name string, cfg BreakerConfig) *Breaker {
	defaults := DefaultBreakerConfig()
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = defaults.FailureThreshold
	}
	if cfg.RecoveryTimeout <= 0 {
		cfg.RecoveryTimeout = defaults.RecoveryTimeout
	}
	if cfg.SuccessThreshold <= 0 {
		cfg.SuccessThreshold = defaults.SuccessThreshold
	}

	return &Breaker{
		name:  name,
		cfg:   cfg,
		state: StateClosed,
	}
}

// Allow reports whether a call may proceed. In the open state it returns
// false until RecoveryTimeout has elapsed since the last failure, at which
// point the breaker moves to half-open and the call is admitted as a trial.
func (b *Breaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateOpen:
		if time.Since(b.lastFailureAt) < b.cfg.RecoveryTimeout {
			return false
		}
		b.successCount = 0
		b.transition(StateHalfOpen)
		return true
	default:
		// Closed admits everything; half-open admits trial calls.
		return true
	}
}

// RecordSuccess records a successful call. In half-open it counts toward
// SuccessThreshold and closes the breaker once reached; in closed it clears
// the failure tally. A success while open is a no-op since no call was
// admitted.
func (b *Breaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateHalfOpen:
		b.successCount++
		if b.successCount >= b.cfg.SuccessThreshold {
			b.failureCount = 0
			b.successCount = 0
			b.lastFailureAt = time.Time{}
			b.transition(StateClosed)
		}
	case StateClosed:
		b.failureCount = 0
	case StateOpen:
	}
}

// RecordFailure records a failed call from any state. Once the failure
// count reaches FailureThreshold the breaker opens; a failure during
// half-open re-opens immediately because the count carried over from the
// open period already meets the threshold.
func (b *Breaker) RecordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failureCount++
	b.lastFailureAt = time.Now()

	if b.state != StateOpen && b.failureCount >= b.cfg.FailureThreshold {
		b.successCount = 0
		b.transition(StateOpen)
	}
}

// transition moves the breaker to a new state. Callers must hold b.mu.
func (b *Breaker) transition(to State) {
	from := b.state
	if from == to {
		return
	}
	b.state = to
	if b.cfg.OnStateChange != nil {
		b.cfg.OnStateChange(b.name, from, to)
	}
}

// Name returns the operation name the breaker is keyed by.
func (b *Breaker) Name() string {
	return b.name
}

// State returns the current state.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// FailureCount returns the number of failures recorded since the last reset.
func (b *Breaker) FailureCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.failureCount
}

// SuccessCount returns the number of successes recorded in half-open.
func (b *Breaker) SuccessCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.successCount
}

// Snapshot returns a consistent view of the breaker's state and counters.
func (b *Breaker) Snapshot() BreakerSnapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	return BreakerSnapshot{
		Name:         b.name,
		State:        b.state,
		FailureCount: b.failureCount,
		SuccessCount: b.successCount,
	}
}
