package channel

import (
	"context"
	"reflect"
)

// Select waits until one of the given channels has a value ready, then
// returns that channel's index and the received value.
//
// When several channels are ready at once, the first ready channel in
// argument order wins. This list-order tie-break is a deliberate design
// choice: it makes contended selection deterministic, unlike Go's
// native select. A closed, drained channel counts as ready and yields
// the zero value, matching [Channel.Receive].
//
// If no channel is ready, Select blocks until one becomes ready or ctx
// is canceled, in which case it returns (-1, zero, ctx.Err()).
//
// Note: the blocking wait uses [reflect.Select], which has higher
// overhead than a direct select statement. This is acceptable because
// Select performs exactly one selection.
//
// Select panics if no channels are given.
func Select[T any](ctx context.Context, channels ...*Channel[T]) (int, T, error) {
	var zero T
	if len(channels) == 0 {
		panic("channel: Select requires at least one channel")
	}

	// The blocking wait watches each channel's closed signal alongside
	// its data channel, so it loops: a closure wakeup re-scans rather
	// than returning a value.
	for {
		// Ordered scan: resolves ties among simultaneously-ready
		// channels in argument order. A closed, drained channel is
		// ready with the zero value.
		for i, c := range channels {
			if v, ok := c.TryReceive(); ok {
				return i, v, nil
			}
			if c.IsClosed() {
				return i, zero, nil
			}
		}

		// Nothing ready; block until a channel can deliver, a channel
		// closes, or the context is canceled. Cases 0..n-1 are the data
		// channels, n..2n-1 the matching closed signals, 2n the context.
		n := len(channels)
		cases := make([]reflect.SelectCase, 0, 2*n+1)
		for _, c := range channels {
			cases = append(cases, reflect.SelectCase{
				Dir:  reflect.SelectRecv,
				Chan: reflect.ValueOf(c.ch),
			})
		}
		for _, c := range channels {
			cases = append(cases, reflect.SelectCase{
				Dir:  reflect.SelectRecv,
				Chan: reflect.ValueOf(c.closed),
			})
		}
		cases = append(cases, reflect.SelectCase{
			Dir:  reflect.SelectRecv,
			Chan: reflect.ValueOf(ctx.Done()),
		})

		chosen, value, _ := reflect.Select(cases)
		switch {
		case chosen < n:
			return chosen, value.Interface().(T), nil
		case chosen < 2*n:
			// A channel closed while we waited. Re-scan: the closed
			// channel may still hold buffered values, and an earlier
			// channel may have become ready in the meantime.
		default:
			return -1, zero, ctx.Err()
		}
	}
}
