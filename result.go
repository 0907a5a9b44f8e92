package tandem

import "errors"

// errNilResult backs Err(nil) so an error Result always carries an error.
var errNilResult = errors.New("tandem: error result with nil error")

// Result holds the outcome of an operation: a value or an error, never
// both. It is produced by the functions wrapped by [Call] and consumed
// by [Breaker] to classify success and failure.
type Result[T any] struct {
	val T
	err error
}

// Ok returns a successful Result carrying v.
func Ok[T any](v T) Result[T] {
	return Result[T]{val: v}
}

// Err returns a failed Result carrying err. A nil err is normalized so
// the Result still reads as a failure.
func Err[T any](err error) Result[T] {
	if err == nil {
		err = errNilResult
	}
	return Result[T]{err: err}
}

// IsOk reports whether the Result carries a value.
func (r Result[T]) IsOk() bool {
	return r.err == nil
}

// Value returns the carried value, or the zero value for a failed Result.
func (r Result[T]) Value() T {
	return r.val
}

// Err returns the carried error, or nil for a successful Result.
func (r Result[T]) Err() error {
	return r.err
}

// Unwrap returns the value and error as an ordinary Go pair.
func (r Result[T]) Unwrap() (T, error) {
	return r.val, r.err
}
