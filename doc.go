// Package tandem provides concurrency and resilience building blocks
// for Go: asynchronous results, call deduplication, and circuit
// breaking. Its companion package channel provides a generic channel
// type with explicit closure semantics and composition operators.
//
// # Futures
//
// A [Future] is a single-assignment container for the outcome of an
// asynchronous computation. It settles exactly once into success,
// failure, or cancellation, and exposes blocking and bounded-wait
// accessors:
//
//	f := tandem.Run(func() (int, error) {
//	    return fetchCount(ctx)
//	})
//	n := f.Await()
//
// Futures compose: [Map] and [FlatMap] derive new futures from a
// success value, [Future.Recover] converts a failure back into a
// success, and [Future.Timeout] races a future against a timer.
// [All], [Any], [Race], and [AllSettled] aggregate several futures,
// and [Delayed] schedules one. Panics inside [Run] are captured as
// [*PanicError] values rather than crashing the process.
//
// # Single flight
//
// A [Group] collapses concurrent duplicate work. While a call for a key
// is in flight, other callers of [Do] with the same key wait for the
// shared result instead of executing again:
//
//	v, err := tandem.Do(g, "user:42", func() (User, error) {
//	    return loadUser(42)
//	})
//
// [DoFuture] is the non-blocking form, returning a [Future]
// immediately. Keys carry a runtime type tag, so two call sites using
// one key with different result types fail with [ErrTypeMismatch]
// instead of corrupting each other.
//
// # Circuit breaking
//
// A [Breaker] isolates a failing dependency. Consecutive failures trip
// it open; while open, [Call] rejects work without invoking it; after
// the open timeout, probe calls decide whether it closes again:
//
//	b := tandem.NewBreaker("billing").
//	    WithFailureThreshold(3).
//	    WithOpenTimeout(5 * time.Second)
//	res := tandem.Call(b, func() tandem.Result[Invoice] {
//	    inv, err := callBilling()
//	    if err != nil {
//	        return tandem.Err[Invoice](err)
//	    }
//	    return tandem.Ok(inv)
//	})
//
// Outcomes flow through the [Result] sum type so failures are explicit
// values the caller must inspect, never panics.
package tandem
