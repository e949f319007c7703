package scrapybara

import (
	"context"

	"github.com/m43i/go-scrapybara/core"
)

// Async starts fn in the background and returns its deferred result. Any
// client method can run this way:
//
//	shot := scrapybara.Async(ctx, func(ctx context.Context) (*instance.ScreenshotResponse, error) {
//		return inst.Screenshot(ctx)
//	})
//	resp, err := shot.Await(ctx)
func Async[T any](ctx context.Context, fn func(context.Context) (T, error)) *core.Deferred[T] {
	return core.Go(ctx, fn)
}

// Lazy returns a deferred result that runs fn on its first Await.
func Lazy[T any](fn func(context.Context) (T, error)) *core.Deferred[T] {
	return core.Defer(fn)
}
