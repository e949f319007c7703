package core

import (
	"context"
	"sync"
)

// Deferred is the result of a call running in deferred mode. The call runs
// the same request, retry and decode path as a blocking call.
type Deferred[T any] struct {
	fn   func(context.Context) (T, error)
	once sync.Once
	done chan struct{}

	value T
	err   error
}

// Defer returns a Deferred that runs fn on the first Await.
func Defer[T any](fn func(context.Context) (T, error)) *Deferred[T] {
	return &Deferred[T]{fn: fn, done: make(chan struct{})}
}

// Go starts fn on a new goroutine and returns its Deferred.
func Go[T any](ctx context.Context, fn func(context.Context) (T, error)) *Deferred[T] {
	d := Defer(fn)
	d.Start(ctx)
	return d
}

// Start begins running the call in the background if it has not started.
func (d *Deferred[T]) Start(ctx context.Context) {
	d.once.Do(func() {
		go d.run(ctx)
	})
}

// Await waits for the result. On a Deferred that has not started, the call
// runs on a new goroutine bound to ctx. Await returns ctx.Err() if ctx is
// done first.
func (d *Deferred[T]) Await(ctx context.Context) (T, error) {
	d.Start(ctx)

	select {
	case <-d.done:
		return d.value, d.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Done is closed once the result is available.
func (d *Deferred[T]) Done() <-chan struct{} {
	return d.done
}

func (d *Deferred[T]) run(ctx context.Context) {
	defer close(d.done)
	d.value, d.err = d.fn(ctx)
}
