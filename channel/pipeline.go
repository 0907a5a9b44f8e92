package channel

import (
	"context"
	"fmt"
	"sync"
)

// Pipeline transforms values from in by applying fn and sends the
// results to the returned channel. A background worker drains in until
// it is closed, then closes the output. The worker also exits when ctx
// is canceled.
//
// Pipeline panics if in is nil.
func Pipeline[T, U any](ctx context.Context, in *Channel[T], fn func(T) U) *Channel[U] {
	if in == nil {
		panic("channel: Pipeline requires a non-nil input channel")
	}

	out := New[U]()

	go func() {
		defer out.Close()
		forward(ctx, in, func(v T) error {
			return out.SendContext(ctx, fn(v))
		})
	}()
	return out
}

// FanOut distributes values from in across n output channels in
// round-robin order. Each output channel is closed when in is closed
// and drained, or when ctx is canceled.
//
// This is useful for distributing work to a fixed set of workers.
// FanOut panics if n is not positive or in is nil.
func FanOut[T any](ctx context.Context, in *Channel[T], n int) []*Channel[T] {
	if n <= 0 {
		panic("channel: FanOut requires n > 0")
	}
	if in == nil {
		panic("channel: FanOut requires a non-nil input channel")
	}

	outs := make([]*Channel[T], n)
	for i := range outs {
		outs[i] = New[T]()
	}

	go func() {
		defer func() {
			for _, c := range outs {
				c.Close()
			}
		}()
		idx := 0
		forward(ctx, in, func(v T) error {
			err := outs[idx%n].SendContext(ctx, v)
			idx++
			return err
		})
	}()
	return outs
}

// FanIn merges multiple input channels into a single output channel.
// One forwarder goroutine per source moves values into the merged
// channel; the merged channel is closed when every source is closed and
// drained, or when ctx is canceled. The order of values from different
// sources is non-deterministic.
//
// FanIn panics if any element of channels is nil.
func FanIn[T any](ctx context.Context, channels ...*Channel[T]) *Channel[T] {
	for i, c := range channels {
		if c == nil {
			panic(fmt.Sprintf("channel: FanIn channel[%d] must not be nil", i))
		}
	}

	out := New[T]()

	var wg sync.WaitGroup
	for _, c := range channels {
		c := c // capture for Go < 1.22
		wg.Add(1)
		go func() {
			defer wg.Done()
			forward(ctx, c, func(v T) error {
				return out.SendContext(ctx, v)
			})
		}()
	}

	go func() {
		wg.Wait()
		out.Close()
	}()

	return out
}

// forward moves every value from in into fn until in is closed and
// drained, fn reports an error, or ctx is canceled. Closure is observed
// through in's closed signal since the data channel itself never
// closes; buffered values left at closure are still delivered.
func forward[T any](ctx context.Context, in *Channel[T], fn func(T) error) {
	for {
		select {
		case v := <-in.ch:
			if err := fn(v); err != nil {
				return
			}
		case <-in.closed:
			for {
				v, ok := in.TryReceive()
				if !ok {
					return
				}
				if err := fn(v); err != nil {
					return
				}
			}
		case <-ctx.Done():
			return
		}
	}
}

// Drain reads and discards all values from c until it is closed and
// empty. Use this to unblock a producer that is sending during
// shutdown.
func Drain[T any](c *Channel[T]) {
	for {
		select {
		case <-c.ch:
		case <-c.closed:
			for {
				if _, ok := c.TryReceive(); !ok {
					return
				}
			}
		}
	}
}
