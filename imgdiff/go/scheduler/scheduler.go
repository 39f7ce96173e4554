// Package scheduler runs a function over a range of indices on a bounded
// number of goroutines.
package scheduler

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Workers returns the number of goroutines Run uses for the given setting.
// Anything below one means one per available CPU.
func Workers(workers int) int {
	if workers <= 0 {
		return runtime.GOMAXPROCS(0)
	}
	return workers
}

// Run calls fn once for every index in [0, n) using at most workers
// goroutines and returns when all calls have returned. With a single worker
// the calls happen in order on the calling goroutine.
//
// ctx is passed through to fn unchanged. Run does not stop early when it is
// cancelled; fn decides what a cancelled context means for its item.
func Run(ctx context.Context, n, workers int, fn func(ctx context.Context, i int)) {
	workers = Workers(workers)
	if workers == 1 {
		for i := 0; i < n; i++ {
			fn(ctx, i)
		}
		return
	}
	var eg errgroup.Group
	eg.SetLimit(workers)
	for i := 0; i < n; i++ {
		i := i
		eg.Go(func() error {
			fn(ctx, i)
			return nil
		})
	}
	// fn cannot fail, so neither can Wait.
	_ = eg.Wait()
}
