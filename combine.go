package tandem

import (
	"errors"
	"sync"
	"time"
)

// ErrTimeout is the error carried by a future failed by [Future.Timeout].
var ErrTimeout = errors.New("timeout")

// Map returns a future that settles with fn applied to f's success
// value. If f fails or is cancelled, the derived future mirrors f's
// terminal state without invoking fn.
//
// Map is a package function because Go methods cannot introduce new
// type parameters.
func Map[T, U any](f *Future[T], fn func(T) U) *Future[U] {
	out := newFuture[U]()
	go func() {
		<-f.done
		st, v, err := f.snapshot()
		if st != StateSuccess {
			var zero U
			out.settle(st, zero, err)
			return
		}
		out.complete(fn(v))
	}()
	return out
}

// FlatMap returns a future that, once f succeeds, adopts the outcome of
// the future produced by fn. If f fails or is cancelled, the derived
// future mirrors f's terminal state without invoking fn.
func FlatMap[T, U any](f *Future[T], fn func(T) *Future[U]) *Future[U] {
	out := newFuture[U]()
	go func() {
		<-f.done
		st, v, err := f.snapshot()
		if st != StateSuccess {
			var zero U
			out.settle(st, zero, err)
			return
		}
		inner := fn(v)
		<-inner.done
		out.settle(inner.snapshot())
	}()
	return out
}

// Recover returns a future that converts a failure of f into a success
// by applying fn to the error. Success and cancellation pass through
// untouched.
func (f *Future[T]) Recover(fn func(error) T) *Future[T] {
	out := newFuture[T]()
	go func() {
		<-f.done
		st, v, err := f.snapshot()
		if st != StateFailed {
			out.settle(st, v, err)
			return
		}
		out.complete(fn(err))
	}()
	return out
}

// Timeout returns a future that races f against a timer. If f settles
// first, the derived future mirrors it; if the timer fires first, the
// derived future fails with [ErrTimeout]. f itself is not cancelled.
//
// A negative d fails the returned future immediately with
// "timeout must be non-negative".
func (f *Future[T]) Timeout(d time.Duration) *Future[T] {
	out := newFuture[T]()
	if d < 0 {
		out.fail(errors.New("timeout must be non-negative"))
		return out
	}

	go func() {
		timer := time.NewTimer(d)
		defer timer.Stop()

		select {
		case <-f.done:
			out.settle(f.snapshot())
		case <-timer.C:
			out.fail(ErrTimeout)
		}
	}()
	return out
}

// All waits for every future and succeeds with their values in input
// order. If any future does not succeed, All settles with the terminal
// state and error of the first such future in input order; later
// futures are left running.
//
// All of an empty slice succeeds with an empty result.
func All[T any](futures []*Future[T]) *Future[[]T] {
	out := newFuture[[]T]()
	go func() {
		vals := make([]T, len(futures))
		for i, f := range futures {
			<-f.done
			st, v, err := f.snapshot()
			if st != StateSuccess {
				out.settle(st, nil, err)
				return
			}
			vals[i] = v
		}
		out.complete(vals)
	}()
	return out
}

// Any succeeds with the value of the first future to reach
// [StateSuccess]; slower futures are ignored. If no future succeeds,
// Any fails with every input's error joined via [errors.Join].
//
// Any panics if futures is empty.
func Any[T any](futures []*Future[T]) *Future[T] {
	if len(futures) == 0 {
		panic("tandem: Any requires at least one future")
	}

	out := newFuture[T]()
	go func() {
		var wg sync.WaitGroup
		for _, f := range futures {
			f := f // capture for Go < 1.22
			wg.Add(1)
			go func() {
				defer wg.Done()
				<-f.done
				if st, v, _ := f.snapshot(); st == StateSuccess {
					out.complete(v)
				}
			}()
		}
		wg.Wait()

		// Every input is terminal and none succeeded.
		errs := make([]error, 0, len(futures))
		for _, f := range futures {
			_, _, err := f.snapshot()
			errs = append(errs, err)
		}
		out.fail(errors.Join(errs...))
	}()
	return out
}

// Race settles identically to whichever future reaches any terminal
// state first, success or not.
//
// Race panics if futures is empty.
func Race[T any](futures []*Future[T]) *Future[T] {
	if len(futures) == 0 {
		panic("tandem: Race requires at least one future")
	}

	out := newFuture[T]()
	for _, f := range futures {
		f := f // capture for Go < 1.22
		go func() {
			<-f.done
			out.settle(f.snapshot())
		}()
	}
	return out
}

// AllSettled waits until every future is terminal, then succeeds with
// the input futures themselves for inspection. It never fails.
func AllSettled[T any](futures []*Future[T]) *Future[[]*Future[T]] {
	out := newFuture[[]*Future[T]]()
	go func() {
		for _, f := range futures {
			<-f.done
		}
		out.complete(futures)
	}()
	return out
}

// Delayed schedules fn to run after d elapses and returns a future for
// its outcome. Cancelling the future before the delay elapses prevents
// fn from running at all.
//
// A negative d fails the returned future immediately with
// "delay must be non-negative".
func Delayed[T any](d time.Duration, fn func() (T, error)) *Future[T] {
	out := newFuture[T]()
	if d < 0 {
		out.fail(errors.New("delay must be non-negative"))
		return out
	}

	go func() {
		timer := time.NewTimer(d)
		defer timer.Stop()

		select {
		case <-timer.C:
		case <-out.done:
			// Cancelled while waiting; fn never runs.
			return
		}
		out.run(fn)
	}()
	return out
}
