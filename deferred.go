package plugkit

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
)

// Deferred is an asynchronous outcome that settles exactly once, either with
// a value or with an error.
type Deferred[T any] struct {
	done  chan struct{}
	value T
	err   error
}

func newDeferred[T any]() *Deferred[T] {
	return &Deferred[T]{done: make(chan struct{})}
}

func (d *Deferred[T]) settle(value T, err error) {
	d.value, d.err = value, err
	close(d.done)
}

// Defer runs fn on its own goroutine and returns its outcome as a Deferred.
// A panic inside fn settles the Deferred with a *PanicError.
func Defer[T any](ctx context.Context, fn func(context.Context) (T, error)) *Deferred[T] {
	d := newDeferred[T]()
	go func() {
		var (
			value T
			err   error
		)
		defer func() {
			if p := recover(); p != nil {
				var zero T
				value, err = zero, NewPanicError(p, debug.Stack())
			}
			d.settle(value, err)
		}()
		value, err = fn(ctx)
	}()
	return d
}

// Resolved returns a Deferred already settled with value.
func Resolved[T any](value T) *Deferred[T] {
	d := newDeferred[T]()
	d.settle(value, nil)
	return d
}

// Rejected returns a Deferred already settled with err.
func Rejected[T any](err error) *Deferred[T] {
	d := newDeferred[T]()
	var zero T
	d.settle(zero, err)
	return d
}

// Done is closed once the Deferred settles.
func (d *Deferred[T]) Done() <-chan struct{} {
	return d.done
}

// Settled reports whether the outcome is available.
func (d *Deferred[T]) Settled() bool {
	select {
	case <-d.done:
		return true
	default:
		return false
	}
}

// Result blocks until the Deferred settles and returns its outcome.
func (d *Deferred[T]) Result() (T, error) {
	<-d.done
	return d.value, d.err
}

// Await waits for the outcome or for ctx to end. Cancelling ctx abandons the
// wait only; the underlying work keeps running.
func (d *Deferred[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-d.done:
		return d.value, d.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Catch returns a Deferred that settles with the same outcome as d after fn
// has observed a rejection. fn is not called on success. A panic in fn is
// recovered and joined to the rejection as a *PanicError.
func (d *Deferred[T]) Catch(fn func(error)) *Deferred[T] {
	out := newDeferred[T]()
	go func() {
		<-d.done
		err := d.err
		defer func() {
			if p := recover(); p != nil {
				err = errors.Join(err, NewPanicError(p, debug.Stack()))
			}
			out.settle(d.value, err)
		}()
		if err != nil {
			fn(err)
		}
	}()
	return out
}

// PanicError carries a recovered panic value and the stack it was raised on.
type PanicError struct {
	Value any
	stack string
}

// NewPanicError wraps a recovered panic value.
func NewPanicError(value any, stack []byte) *PanicError {
	return &PanicError{Value: value, stack: string(stack)}
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("%v: %v", ErrPanic, e.Value)
}

// Unwrap exposes ErrPanic and, when the panic value is an error, that error.
func (e *PanicError) Unwrap() []error {
	if err, ok := e.Value.(error); ok {
		return []error{ErrPanic, err}
	}
	return []error{ErrPanic}
}

// Stack returns the goroutine stack captured at recovery.
func (e *PanicError) Stack() string {
	return e.stack
}
