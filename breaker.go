package tandem

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrOpen is wrapped by the error Result returned from [Call] while the
// breaker is short-circuiting.
var ErrOpen = errors.New("tandem: circuit breaker is open")

// BreakerState is the state of a [Breaker].
type BreakerState int

const (
	// StateClosed is normal operation: calls pass through and failures
	// are counted.
	StateClosed BreakerState = iota
	// StateOpen short-circuits calls without invoking them until the
	// open timeout elapses.
	StateOpen
	// StateHalfOpen lets probe calls through to test recovery.
	StateHalfOpen
)

func (s BreakerState) String() string {
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

const (
	defaultFailureThreshold = 5
	defaultSuccessThreshold = 1
	defaultOpenTimeout      = 30 * time.Second
)

// Breaker is a circuit breaker protecting one named resource.
//
// In [StateClosed], calls pass through; consecutive failures trip the
// breaker into [StateOpen] once they reach the failure threshold. While
// open, calls are rejected without invoking the wrapped function until
// the open timeout elapses, after which the breaker moves to
// [StateHalfOpen] and lets probe calls through: enough successes close
// it again, any failure reopens it immediately.
//
// A Breaker is safe for concurrent use. The wrapped function is always
// invoked outside the breaker's lock, so a slow call never blocks
// unrelated callers.
type Breaker struct {
	name string

	mu               sync.Mutex
	state            BreakerState
	failureCount     int
	successCount     int // meaningful only in StateHalfOpen
	failureThreshold int
	successThreshold int
	openTimeout      time.Duration
	openedAt         time.Time
	listeners        []func(from, to BreakerState)
}

// NewBreaker creates a closed breaker for the named resource with a
// failure threshold of 5, a success threshold of 1, and an open timeout
// of 30 seconds. Tune it with the WithX builder methods before use.
func NewBreaker(name string) *Breaker {
	return &Breaker{
		name:             name,
		failureThreshold: defaultFailureThreshold,
		successThreshold: defaultSuccessThreshold,
		openTimeout:      defaultOpenTimeout,
	}
}

// WithFailureThreshold sets how many consecutive closed-state failures
// trip the breaker. It returns the breaker for chaining.
// Panics if n <= 0.
func (b *Breaker) WithFailureThreshold(n int) *Breaker {
	if n <= 0 {
		panic("tandem: WithFailureThreshold requires n > 0")
	}
	b.mu.Lock()
	b.failureThreshold = n
	b.mu.Unlock()
	return b
}

// WithSuccessThreshold sets how many half-open probe successes close
// the breaker. It returns the breaker for chaining.
// Panics if n <= 0.
func (b *Breaker) WithSuccessThreshold(n int) *Breaker {
	if n <= 0 {
		panic("tandem: WithSuccessThreshold requires n > 0")
	}
	b.mu.Lock()
	b.successThreshold = n
	b.mu.Unlock()
	return b
}

// WithOpenTimeout sets how long the breaker stays open before probing.
// A zero timeout means the very next call probes. It returns the
// breaker for chaining.
// Panics if d < 0.
func (b *Breaker) WithOpenTimeout(d time.Duration) *Breaker {
	if d < 0 {
		panic("tandem: WithOpenTimeout requires a non-negative duration")
	}
	b.mu.Lock()
	b.openTimeout = d
	b.mu.Unlock()
	return b
}

// OnStateChange registers fn to be invoked on every state transition,
// synchronously in the goroutine that caused it. fn must not call back
// into the breaker.
func (b *Breaker) OnStateChange(fn func(from, to BreakerState)) {
	b.mu.Lock()
	b.listeners = append(b.listeners, fn)
	b.mu.Unlock()
}

// Call invokes fn through breaker b. While b is open and the open
// timeout has not elapsed, fn is not invoked and Call returns an error
// Result wrapping [ErrOpen]. Once the timeout elapses, the same Call
// transitions the breaker to half-open and runs fn as a probe.
//
// Call is a package function because Go methods cannot introduce new
// type parameters.
func Call[T any](b *Breaker, fn func() Result[T]) Result[T] {
	if !b.allow() {
		return Err[T](fmt.Errorf("%w: %q rejecting calls", ErrOpen, b.name))
	}

	// fn runs outside the lock so a slow call never serializes the breaker.
	res := fn()
	b.record(res.IsOk())
	return res
}

// allow decides whether a call may proceed, performing the
// open → half-open transition when the open timeout has elapsed.
func (b *Breaker) allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == StateOpen {
		if time.Since(b.openedAt) < b.openTimeout {
			return false
		}
		b.transition(StateHalfOpen)
	}
	return true
}

// record applies a call outcome to the state machine.
func (b *Breaker) record(ok bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateClosed:
		if ok {
			b.failureCount = 0
			return
		}
		b.failureCount++
		if b.failureCount >= b.failureThreshold {
			b.transition(StateOpen)
		}

	case StateHalfOpen:
		if ok {
			b.successCount++
			if b.successCount >= b.successThreshold {
				b.transition(StateClosed)
			}
			return
		}
		// One failed probe reopens immediately, whatever the
		// success threshold says.
		b.transition(StateOpen)

	case StateOpen:
		// A slow probe can finish after a concurrent failure already
		// reopened the breaker. Refresh the open window on failure;
		// discard stale successes.
		if !ok {
			b.openedAt = time.Now()
		}
	}
}

// transition moves to a new state, maintains the counter invariants,
// and notifies listeners. Callers must hold b.mu.
func (b *Breaker) transition(to BreakerState) {
	from := b.state
	if from == to {
		return
	}
	b.state = to

	switch to {
	case StateClosed:
		b.failureCount = 0
		b.successCount = 0
	case StateOpen:
		b.openedAt = time.Now()
		if from == StateHalfOpen {
			b.failureCount = 0
		}
	case StateHalfOpen:
		b.successCount = 0
	}

	for _, fn := range b.listeners {
		fn(from, to)
	}
}

// RecordFailure injects a failure by hand, following the same counting
// rules as a failed call. Useful for tests and manual control.
func (b *Breaker) RecordFailure() {
	b.record(false)
}

// Reset forces the breaker into [StateClosed] with both counters
// zeroed, notifying listeners if the state actually changed.
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.transition(StateClosed)
	b.failureCount = 0
	b.successCount = 0
}

// State returns the current state.
func (b *Breaker) State() BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// FailureCount returns the consecutive failure count.
func (b *Breaker) FailureCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.failureCount
}

// SuccessCount returns the half-open probe success count.
func (b *Breaker) SuccessCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.successCount
}

// Name returns the name of the protected resource.
func (b *Breaker) Name() string {
	return b.name
}
