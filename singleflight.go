package tandem

import (
	"errors"
	"fmt"
	"reflect"
	"sync"
)

// ErrEmptyKey is returned by [Do] (and carried by the future returned
// from [DoFuture]) when the single-flight key is empty.
var ErrEmptyKey = errors.New("key must not be empty")

// ErrTypeMismatch is returned when two call sites share a single-flight
// key but expect different result types.
var ErrTypeMismatch = errors.New("tandem: single-flight key type mismatch")

// flight is one in-flight execution shared by all callers of a key.
// The type tag is recorded at registration and compared when later
// callers attach, since Go generics carry no runtime type identity of
// their own.
type flight struct {
	fut *Future[any]
	typ reflect.Type
}

// Group deduplicates concurrent calls by key: while an execution for a
// key is in flight, additional callers for that key wait for the shared
// outcome instead of executing again. At most one execution is ever
// attributable to a given key at a time.
//
// The zero value is ready to use, but prefer [NewGroup].
type Group struct {
	mu sync.Mutex
	m  map[string]*flight
}

// NewGroup returns an empty single-flight group.
func NewGroup() *Group {
	return &Group{m: make(map[string]*flight)}
}

// register returns the flight for key, creating and claiming it if
// absent. The check-or-register step happens under one lock so two
// callers can never both observe "no entry" and execute twice.
func (g *Group) register(key string, typ reflect.Type) (fl *flight, owner bool, err error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.m == nil {
		g.m = make(map[string]*flight)
	}
	if existing, ok := g.m[key]; ok {
		if existing.typ != typ {
			return nil, false, fmt.Errorf(
				"%w: key %q in flight as %v, requested %v",
				ErrTypeMismatch, key, existing.typ, typ,
			)
		}
		return existing, false, nil
	}

	fl = &flight{fut: newFuture[any](), typ: typ}
	g.m[key] = fl
	return fl, true, nil
}

// remove deletes the entry for key, but only if it is still fl. After a
// [Group.Forget], a successor execution may have registered a fresh
// entry under the same key; completing the old one must not evict it.
func (g *Group) remove(key string, fl *flight) {
	g.mu.Lock()
	if cur, ok := g.m[key]; ok && cur == fl {
		delete(g.m, key)
	}
	g.mu.Unlock()
}

// Do executes fn and returns its result, making sure only one execution
// for key is in flight at a time. Concurrent callers sharing the key
// block until the single execution completes and all receive the same
// value or error; fn runs exactly once. The entry is removed once the
// call completes, so a later Do starts a fresh execution.
//
// An empty key returns [ErrEmptyKey]. If key is already in flight with
// a different result type, Do fails with an error wrapping
// [ErrTypeMismatch] without invoking fn.
//
// If fn panics, the panic is converted to a [*PanicError], published to
// all waiters as the shared failure, and re-raised in the executing
// caller's goroutine.
func Do[T any](g *Group, key string, fn func() (T, error)) (T, error) {
	var zero T
	if key == "" {
		return zero, ErrEmptyKey
	}

	fl, owner, err := g.register(key, reflect.TypeOf((*T)(nil)).Elem())
	if err != nil {
		return zero, err
	}

	if !owner {
		// Attach to the in-flight execution and share its outcome.
		<-fl.fut.done
		st, v, err := fl.fut.snapshot()
		if st != StateSuccess {
			return zero, err
		}
		return v.(T), nil
	}

	defer func() {
		if r := recover(); r != nil {
			pe := newPanicError(r)
			fl.fut.fail(pe)
			g.remove(key, fl)
			panic(pe)
		}
	}()

	v, err := fn()
	if err != nil {
		fl.fut.fail(err)
	} else {
		fl.fut.complete(v)
	}
	g.remove(key, fl)

	if err != nil {
		return zero, err
	}
	return v, nil
}

// DoFuture is the non-blocking form of [Do]: it returns immediately
// with a future for the shared outcome. Duplicate concurrent callers
// for the same key receive futures that settle identically without fn
// running again.
//
// An empty key settles the returned future into [StateFailed] with
// [ErrEmptyKey] rather than failing synchronously. A type collision
// fails the returned future with an error wrapping [ErrTypeMismatch].
func DoFuture[T any](g *Group, key string, fn func() (T, error)) *Future[T] {
	if key == "" {
		return Failed[T](ErrEmptyKey)
	}

	fl, owner, err := g.register(key, reflect.TypeOf((*T)(nil)).Elem())
	if err != nil {
		return Failed[T](err)
	}

	if owner {
		go func() {
			defer func() {
				if r := recover(); r != nil {
					fl.fut.fail(newPanicError(r))
					g.remove(key, fl)
				}
			}()

			v, err := fn()
			if err != nil {
				fl.fut.fail(err)
			} else {
				fl.fut.complete(v)
			}
			g.remove(key, fl)
		}()
	}

	return attach[T](fl)
}

// attach derives a typed future mirroring the shared untyped flight.
func attach[T any](fl *flight) *Future[T] {
	out := newFuture[T]()
	go func() {
		<-fl.fut.done
		st, v, err := fl.fut.snapshot()
		if st != StateSuccess {
			var zero T
			out.settle(st, zero, err)
			return
		}
		out.complete(v.(T))
	}()
	return out
}

// Forget removes the in-flight entry for key. The execution already
// running and its current waiters are unaffected; the next call for key
// starts fresh.
func (g *Group) Forget(key string) {
	g.mu.Lock()
	delete(g.m, key)
	g.mu.Unlock()
}

// Clear removes every in-flight entry.
func (g *Group) Clear() {
	g.mu.Lock()
	clear(g.m)
	g.mu.Unlock()
}

// HasInFlight reports whether an execution for key is in flight.
func (g *Group) HasInFlight(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.m[key]
	return ok
}

// InFlightCount returns the number of keys currently in flight.
func (g *Group) InFlightCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.m)
}
