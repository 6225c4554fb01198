package transport

import (
	"context"
	"dominicbreuker/netterm/pkg/socket"
	"sync"
)

// Future is the pending result of one platform operation.
type Future[T any] struct {
	done chan struct{}
	once sync.Once
	v    T
	err  error
}

// NewFuture returns an unresolved future and the callback that resolves it.
// Only the first invocation of the callback counts.
func NewFuture[T any]() (*Future[T], socket.Callback[T]) {
	f := &Future[T]{done: make(chan struct{})}
	return f, f.resolve
}

// Resolved returns a future that is already resolved with v and err.
func Resolved[T any](v T, err error) *Future[T] {
	f, cb := NewFuture[T]()
	cb(v, err)
	return f
}

func (f *Future[T]) resolve(v T, err error) {
	f.once.Do(func() {
		f.v, f.err = v, err
		close(f.done)
	})
}

// Done is closed once the operation has finished.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Wait blocks until the operation finished or ctx is done. Giving up on
// the wait does not cancel the operation.
func (f *Future[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.v, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Result blocks until the operation finished and returns its outcome.
func (f *Future[T]) Result() (T, error) {
	<-f.done
	return f.v, f.err
}

// Wrap0 turns a callback-style operation without arguments into one
// returning a Future. The operation is invoked once per call, synchronously.
func Wrap0[T any](op func(socket.Callback[T])) func() *Future[T] {
	return func() *Future[T] {
		f, cb := NewFuture[T]()
		op(cb)
		return f
	}
}

// Wrap1 is Wrap0 for operations with one argument.
func Wrap1[A, T any](op func(A, socket.Callback[T])) func(A) *Future[T] {
	return func(a A) *Future[T] {
		f, cb := NewFuture[T]()
		op(a, cb)
		return f
	}
}

// Wrap2 is Wrap0 for operations with two arguments.
func Wrap2[A, B, T any](op func(A, B, socket.Callback[T])) func(A, B) *Future[T] {
	return func(a A, b B) *Future[T] {
		f, cb := NewFuture[T]()
		op(a, b, cb)
		return f
	}
}

// Wrap3 is Wrap0 for operations with three arguments.
func Wrap3[A, B, C, T any](op func(A, B, C, socket.Callback[T])) func(A, B, C) *Future[T] {
	return func(a A, b B, c C) *Future[T] {
		f, cb := NewFuture[T]()
		op(a, b, c, cb)
		return f
	}
}

// Wrap4 is Wrap0 for operations with four arguments.
func Wrap4[A, B, C, D, T any](op func(A, B, C, D, socket.Callback[T])) func(A, B, C, D) *Future[T] {
	return func(a A, b B, c C, d D) *Future[T] {
		f, cb := NewFuture[T]()
		op(a, b, c, d, cb)
		return f
	}
}
