package resilience

import (
	"errors"
	"fmt"
)

// Sentinel errors for classifying non-success outcomes with errors.Is.
var (
	// ErrBreakerOpen is returned when a call is rejected because the
	// operation's circuit breaker is open. The call was never attempted.
	ErrBreakerOpen = errors.New("circuit breaker is open")

	// ErrRetriesExhausted is returned when all configured retry attempts
	// have failed.
	ErrRetriesExhausted = errors.New("retries exhausted")

	// ErrAborted is returned when a retry loop is cut short by context
	// cancellation during an inter-attempt delay.
	ErrAborted = errors.New("retry aborted")
)

// OpenError reports a call rejected by an open circuit breaker.
type OpenError struct {
	// Operation is the name of the rejected operation.
	Operation string
}

func (e *OpenError) Error() string {
	return fmt.Sprintf("operation %q rejected: circuit breaker is open", e.Operation)
}

// Is makes errors.Is(err, ErrBreakerOpen) match.
func (e *OpenError) Is(target error) bool {
	return target == ErrBreakerOpen
}

// ExhaustedError reports that every configured attempt failed. The last
// underlying failure is preserved for diagnosis and via Unwrap.
type ExhaustedError struct {
	// Operation is the name of the failed operation.
	Operation string

	// Attempts is the number of attempts made.
	Attempts int

	// Err is the failure from the final attempt.
	Err error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("operation %q failed after %d attempts: %v", e.Operation, e.Attempts, e.Err)
}

func (e *ExhaustedError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrRetriesExhausted) match.
func (e *ExhaustedError) Is(target error) bool {
	return target == ErrRetriesExhausted
}

// AbortedError reports a retry loop aborted by cancellation, distinct from
// exhaustion so callers can tell shutdown from repeated failure. Unwrap
// exposes the context error.
type AbortedError struct {
	// Operation is the name of the aborted operation.
	Operation string

	// Attempts is the number of attempts completed before the abort.
	Attempts int

	// Err is the context error that caused the abort.
	Err error
}

func (e *AbortedError) Error() string {
	return fmt.Sprintf("operation %q aborted after %d attempts: %v", e.Operation, e.Attempts, e.Err)
}

func (e *AbortedError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrAborted) match.
func (e *AbortedError) Is(target error) bool {
	return target == ErrAborted
}
