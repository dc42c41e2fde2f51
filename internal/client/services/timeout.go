package services

import (
	"context"
	"time"

	"github.com/dmitrijs2005/storykeeper/internal/common"
)

// withTimeout runs fn in its own goroutine and waits at most d for it.
// When the timer wins the result of fn is discarded; the context passed to
// fn is cancelled on return so a well-behaved callee can stop early.
func withTimeout[T any](ctx context.Context, d time.Duration, fn func(ctx context.Context) (T, error)) (T, error) {
	cctx, cancel := context.WithCancel(ctx)
	defer cancel()

	type result struct {
		v   T
		err error
	}
	ch := make(chan result, 1)
	go func() {
		v, err := fn(cctx)
		ch <- result{v, err}
	}()

	timer := time.NewTimer(d)
	defer timer.Stop()

	var zero T
	select {
	case r := <-ch:
		return r.v, r.err
	case <-timer.C:
		return zero, common.ErrTimeout
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}
