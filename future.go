package tandem

import (
	"errors"
	"sync"
	"time"
)

// ErrCancelled is the error carried by a future in [StateCancelled].
var ErrCancelled = errors.New("cancelled")

// errFailed backs Failed(nil) so the Failed state always carries an error.
var errFailed = errors.New("tandem: future failed")

// State is the lifecycle state of a [Future].
type State int

const (
	// StatePending means the future has not yet settled.
	StatePending State = iota
	// StateSuccess means the future settled with a value.
	StateSuccess
	// StateFailed means the future settled with an error.
	StateFailed
	// StateCancelled means the future was cancelled before settling.
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateSuccess:
		return "success"
	case StateFailed:
		return "failed"
	case StateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Future holds the eventual outcome of an asynchronous computation.
//
// A future starts in [StatePending] and settles exactly once into one of
// the terminal states [StateSuccess], [StateFailed], or [StateCancelled].
// Once settled, its value and error never change. Futures are safe for
// concurrent use by multiple goroutines.
//
// Create one via [Run], [Completed], [Failed], [Delayed], or the
// combinators ([Map], [All], ...).
type Future[T any] struct {
	mu        sync.Mutex
	state     State
	val       T
	err       error
	callbacks []func(T)

	done chan struct{} // closed when the future settles
}

func newFuture[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

// Run executes fn on a new goroutine and returns a future for its
// outcome. A nil error settles the future into [StateSuccess] with fn's
// value; a non-nil error settles it into [StateFailed].
//
// A panic in fn is captured with its stack trace and fails the future
// with a [*PanicError] instead of crashing the process.
func Run[T any](fn func() (T, error)) *Future[T] {
	f := newFuture[T]()
	go f.run(fn)
	return f
}

// run executes fn with panic containment and settles f with the outcome.
func (f *Future[T]) run(fn func() (T, error)) {
	defer func() {
		if r := recover(); r != nil {
			f.fail(newPanicError(r))
		}
	}()

	v, err := fn()
	if err != nil {
		f.fail(err)
		return
	}
	f.complete(v)
}

// Completed returns a future already settled into [StateSuccess] with v.
func Completed[T any](v T) *Future[T] {
	f := newFuture[T]()
	f.complete(v)
	return f
}

// Failed returns a future already settled into [StateFailed] with err.
// A nil err is normalized to a generic failure error.
func Failed[T any](err error) *Future[T] {
	f := newFuture[T]()
	f.fail(err)
	return f
}

// settle performs the single Pending → terminal transition. It reports
// false if the future had already settled. Success callbacks run in the
// settling goroutine, after the done channel is closed.
func (f *Future[T]) settle(state State, v T, err error) bool {
	f.mu.Lock()
	if f.state != StatePending {
		f.mu.Unlock()
		return false
	}
	f.state = state
	f.val = v
	f.err = err
	cbs := f.callbacks
	f.callbacks = nil
	f.mu.Unlock()

	close(f.done)

	if state == StateSuccess {
		for _, cb := range cbs {
			cb(v)
		}
	}
	return true
}

func (f *Future[T]) complete(v T) bool {
	return f.settle(StateSuccess, v, nil)
}

func (f *Future[T]) fail(err error) bool {
	if err == nil {
		err = errFailed
	}
	var zero T
	return f.settle(StateFailed, zero, err)
}

// snapshot returns the terminal state. Call only after done is closed.
func (f *Future[T]) snapshot() (State, T, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state, f.val, f.err
}

// Await blocks until the future settles. It returns the value if the
// future succeeded, or the zero value otherwise; inspect [Future.State]
// and [Future.Err] to distinguish failure from a genuine zero.
func (f *Future[T]) Await() T {
	<-f.done
	_, v, _ := f.snapshot()
	return v
}

// AwaitTimeout blocks up to d for the future to settle. It reports true
// only if the future reached [StateSuccess] within the deadline. A
// negative d is a no-op that reports false without waiting.
func (f *Future[T]) AwaitTimeout(d time.Duration) (T, bool) {
	var zero T
	if d < 0 {
		return zero, false
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-f.done:
		st, v, _ := f.snapshot()
		return v, st == StateSuccess
	case <-timer.C:
		return zero, false
	}
}

// Cancel requests cancellation. It settles the future into
// [StateCancelled] and reports true if the future was still pending.
//
// Cancellation is cooperative: the goroutine started by [Run] is not
// interrupted and may keep executing in the background; its outcome is
// discarded when it finally tries to settle.
func (f *Future[T]) Cancel() bool {
	var zero T
	return f.settle(StateCancelled, zero, ErrCancelled)
}

// OnComplete registers fn to be invoked exactly once with the success
// value. If the future has already succeeded, fn runs immediately in
// the calling goroutine; otherwise it runs in the goroutine that
// settles the future. fn is never invoked for failed or cancelled
// futures.
func (f *Future[T]) OnComplete(fn func(T)) {
	f.mu.Lock()
	switch f.state {
	case StatePending:
		f.callbacks = append(f.callbacks, fn)
		f.mu.Unlock()
		return
	case StateSuccess:
		v := f.val
		f.mu.Unlock()
		fn(v)
		return
	default:
		f.mu.Unlock()
	}
}

// OrElse blocks until the future settles and returns its value on
// success, or def otherwise.
func (f *Future[T]) OrElse(def T) T {
	<-f.done
	st, v, _ := f.snapshot()
	if st != StateSuccess {
		return def
	}
	return v
}

// State returns the current lifecycle state. A [StatePending] result may
// be stale by the time the caller observes it; terminal states are final.
func (f *Future[T]) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Err returns the error of a failed or cancelled future, or nil while
// pending or on success.
func (f *Future[T]) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

// Value returns the success value without blocking. It reports false
// while the future is pending or if it did not succeed.
func (f *Future[T]) Value() (T, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != StateSuccess {
		var zero T
		return zero, false
	}
	return f.val, true
}

// Done returns a channel that is closed when the future settles.
// This is useful for select statements.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}
