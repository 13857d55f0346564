// Package async provides single-resolution results for work run off the
// caller's goroutine.
package async

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/dpup/prefab/errors"
	"github.com/dpup/prefab/logging"
)

// Future holds the eventual value or error of one asynchronous call.
// It resolves exactly once.
type Future[T any] struct {
	done  chan struct{}
	value T
	err   error
}

// Go runs fn on a new goroutine and returns a Future for its result. A panic
// inside fn resolves the future with an error instead of crashing the process.
func Go[T any](ctx context.Context, fn func(context.Context) (T, error)) *Future[T] {
	f := &Future[T]{done: make(chan struct{})}

	go func() {
		defer close(f.done)
		defer func() {
			if r := recover(); r != nil {
				stackErr, _ := errors.ParseStack(debug.Stack())
				skipFrames := 3
				numFrames := 5
				logging.Errorw(ctx, "Async task: recovered from panic",
					"error", r, "error.stack_trace", stackErr.MinimalStack(skipFrames, numFrames))
				f.err = fmt.Errorf("async task panicked: %v", r)
			}
		}()

		f.value, f.err = fn(ctx)
	}()

	return f
}

// Resolved returns a Future that is already complete
func Resolved[T any](value T, err error) *Future[T] {
	f := &Future[T]{done: make(chan struct{}), value: value, err: err}
	close(f.done)
	return f
}

// Done is closed once the future has resolved
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Await blocks until the future resolves or ctx is done. Giving up on ctx does
// not cancel the underlying work.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
