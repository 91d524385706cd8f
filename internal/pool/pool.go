// Package pool runs independent build tasks across a bounded set of
// workers while handing results downstream in input order.
package pool

import (
	"context"

	"golang.org/x/sync/errgroup"
)

type indexed[R any] struct {
	i   int
	val R
}

// OrderedMap applies fn to every item using at most workers concurrent
// goroutines, and calls yield once per result strictly in input order,
// as soon as each next-in-line result is available. The first error from
// fn or yield cancels the remaining work and is returned.
func OrderedMap[T, R any](
	ctx context.Context,
	workers int,
	items []T,
	fn func(ctx context.Context, item T) (R, error),
	yield func(val R) error,
) error {
	if workers < 1 {
		workers = 1
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make(chan indexed[R], workers)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	go func() {
		for i, item := range items {
			g.Go(func() error {
				val, err := fn(gctx, item)
				if err != nil {
					return err
				}
				select {
				case results <- indexed[R]{i: i, val: val}:
					return nil
				case <-gctx.Done():
					return gctx.Err()
				}
			})
		}
		g.Wait()
		close(results)
	}()

	// Drain completions in submission order, buffering any that finish
	// ahead of their turn.
	pending := make(map[int]R)
	next := 0
	for res := range results {
		pending[res.i] = res.val
		for {
			val, ok := pending[next]
			if !ok {
				break
			}
			delete(pending, next)
			if err := yield(val); err != nil {
				cancel()
				for range results {
				}
				_ = g.Wait()
				return err
			}
			next++
		}
	}

	return g.Wait()
}
