// Package channel provides a generic, goroutine-safe channel type with
// explicit closure semantics and composition operators.
//
// Raw Go channels have sharp edges: sends to closed channels panic,
// double close panics, and there is no way to ask a channel whether it
// has been closed. [Channel] wraps a native channel and converts these
// panics into errors and sentinel values:
//
//   - [New] and [Buffered]: rendezvous and bounded FIFO construction.
//   - [Channel.Send] and [Channel.Receive]: blocking send and receive.
//     Receiving from a closed, drained channel yields the zero value
//     immediately instead of blocking forever.
//   - [Channel.TrySend], [Channel.TryReceive], [Channel.ReceiveTimeout]:
//     non-blocking and bounded-wait duals.
//   - [Channel.Close]: idempotent close; subsequent sends fail with
//     [ErrClosed] instead of panicking.
//   - [Select]: waits across several channels, preferring the first
//     ready channel in argument order.
//   - [Pipeline]: transforms values through a function stage.
//   - [FanOut]: distributes values round-robin across N outputs.
//   - [FanIn]: merges multiple channels into one.
//   - [Drain]: discards remaining values to unblock producers.
//
// All functions that spawn goroutines tie them to a [context.Context],
// ensuring they terminate when the context is canceled.
package channel
