package core

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDeferRunsOnFirstAwaitOnly(t *testing.T) {
	t.Parallel()

	var runs atomic.Int32
	d := Defer(func(ctx context.Context) (string, error) {
		runs.Add(1)
		return "done", nil
	})

	require.Equal(t, int32(0), runs.Load())

	v, err := d.Await(context.Background())
	require.NoError(t, err)
	require.Equal(t, "done", v)

	v, err = d.Await(context.Background())
	require.NoError(t, err)
	require.Equal(t, "done", v)
	require.Equal(t, int32(1), runs.Load())
}

func TestGoStartsImmediately(t *testing.T) {
	t.Parallel()

	started := make(chan struct{})
	d := Go(context.Background(), func(ctx context.Context) (int, error) {
		close(started)
		return 42, nil
	})

	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("deferred call did not start")
	}

	<-d.Done()
	v, err := d.Await(context.Background())
	require.NoError(t, err)
	require.Equal(t, 42, v)
}

func TestDeferredPropagatesError(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	d := Go(context.Background(), func(ctx context.Context) (int, error) {
		return 0, boom
	})

	_, err := d.Await(context.Background())
	require.ErrorIs(t, err, boom)
}

func TestAwaitHonorsContext(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	defer close(release)

	d := Go(context.Background(), func(ctx context.Context) (int, error) {
		<-release
		return 1, nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := d.Await(ctx)
	require.ErrorIs(t, err, context.Canceled)
}
