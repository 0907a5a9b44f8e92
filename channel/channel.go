package channel

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrClosed is returned by [Channel.Send] when the channel has been closed.
var ErrClosed = errors.New("channel: send on closed channel")

// Channel is a goroutine-safe FIFO channel of T with idempotent close.
//
// A Channel created by [New] is unbuffered: every send rendezvouses with
// a concurrent receive. A Channel created by [Buffered] holds up to its
// capacity without a receiver. Once closed, a Channel never reopens.
//
// The underlying data channel is never closed; closure is signalled
// through a separate channel instead, so a sender blocked mid-send can
// never race the runtime's channel teardown.
type Channel[T any] struct {
	ch     chan T
	once   sync.Once
	closed chan struct{} // closed when Close() is called

	mu       sync.RWMutex // protects isClosed and serializes with Close
	isClosed bool
}

// New creates an unbuffered Channel. A send on the result blocks until a
// receiver is simultaneously ready (rendezvous).
func New[T any]() *Channel[T] {
	return &Channel[T]{
		ch:     make(chan T),
		closed: make(chan struct{}),
	}
}

// Buffered creates a Channel that holds up to capacity values.
// Panics if capacity <= 0; use [New] for an unbuffered channel.
func Buffered[T any](capacity int) *Channel[T] {
	if capacity <= 0 {
		panic("channel: Buffered requires capacity > 0")
	}
	return &Channel[T]{
		ch:     make(chan T, capacity),
		closed: make(chan struct{}),
	}
}

// Send sends v, blocking until buffer space is available or, for an
// unbuffered channel, until a receiver rendezvouses. It returns
// [ErrClosed] if the channel is closed before the send completes.
func (c *Channel[T]) Send(v T) error {
	c.mu.RLock()
	if c.isClosed {
		c.mu.RUnlock()
		return ErrClosed
	}

	// Try a non-blocking send first while holding the lock, so a send
	// that can proceed immediately never interleaves with Close.
	select {
	case c.ch <- v:
		c.mu.RUnlock()
		return nil
	default:
	}
	c.mu.RUnlock()

	// Block outside the lock; the closed signal unblocks us on Close.
	select {
	case c.ch <- v:
		return nil
	case <-c.closed:
		return ErrClosed
	}
}

// SendContext sends v like [Channel.Send], additionally unblocking early
// if ctx is canceled. Returns [ErrClosed] if the channel is closed, or
// the context error if canceled.
func (c *Channel[T]) SendContext(ctx context.Context, v T) error {
	c.mu.RLock()
	if c.isClosed {
		c.mu.RUnlock()
		return ErrClosed
	}

	select {
	case c.ch <- v:
		c.mu.RUnlock()
		return nil
	default:
	}
	c.mu.RUnlock()

	select {
	case c.ch <- v:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-c.closed:
		return ErrClosed
	}
}

// TrySend attempts a non-blocking send. It reports false if the channel
// is closed, the buffer is full, or no receiver is ready.
func (c *Channel[T]) TrySend(v T) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.isClosed {
		return false
	}

	select {
	case c.ch <- v:
		return true
	default:
		return false
	}
}

// Receive blocks until a value is available and returns it. If the
// channel is closed and drained, Receive returns the zero value
// immediately instead of blocking.
func (c *Channel[T]) Receive() T {
	select {
	case v := <-c.ch:
		return v
	case <-c.closed:
		// Closed: drain any buffered remainder before yielding zero.
		select {
		case v := <-c.ch:
			return v
		default:
			var zero T
			return zero
		}
	}
}

// TryReceive attempts a non-blocking receive. It reports false if no
// value is immediately available, including when the channel is closed
// and drained.
func (c *Channel[T]) TryReceive() (T, bool) {
	select {
	case v := <-c.ch:
		return v, true
	default:
		var zero T
		return zero, false
	}
}

// ReceiveTimeout blocks up to d for a value. A zero d checks once
// without waiting. A negative d is a caller error and reports false
// immediately; it is never treated as "wait forever".
func (c *Channel[T]) ReceiveTimeout(d time.Duration) (T, bool) {
	var zero T
	if d < 0 {
		return zero, false
	}
	if d == 0 {
		return c.TryReceive()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case v := <-c.ch:
		return v, true
	case <-c.closed:
		return c.TryReceive()
	case <-timer.C:
		return zero, false
	}
}

// Close closes the channel. It is safe to call multiple times; only the
// first call has any effect. Values already buffered remain receivable;
// once drained, receives yield the zero value.
//
// Only the closed signal is ever closed. The data channel stays open
// for the Channel's lifetime: closing it under a blocked sender would
// be a data race, not merely a panic to convert.
func (c *Channel[T]) Close() {
	c.once.Do(func() {
		c.mu.Lock()
		c.isClosed = true
		c.mu.Unlock()

		close(c.closed)
	})
}

// Cap returns the buffer capacity. Zero means unbuffered.
func (c *Channel[T]) Cap() int {
	return cap(c.ch)
}

// Len returns the number of values currently buffered.
// The value may be stale in concurrent contexts.
func (c *Channel[T]) Len() int {
	return len(c.ch)
}

// IsClosed reports whether Close has been called.
func (c *Channel[T]) IsClosed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.isClosed
}

// Done returns a channel that is closed when [Channel.Close] is called.
// This is useful for select statements that need to detect closure.
func (c *Channel[T]) Done() <-chan struct{} {
	return c.closed
}
