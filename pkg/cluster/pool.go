package cluster

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// parallelRange splits [0, n) into at most workers contiguous chunks and runs
// fn on each chunk in its own goroutine. It returns the first error. With a
// single worker fn runs inline on the whole range.
func parallelRange(ctx context.Context, workers, n int, fn func(start, end int) error) error {
	if n == 0 {
		return nil
	}
	if workers <= 1 || n == 1 {
		return fn(0, n)
	}
	if workers > n {
		workers = n
	}

	g, ctx := errgroup.WithContext(ctx)

	q := n / workers
	r := n % workers

	start := 0
	for i := 0; i < workers; i++ {
		size := q
		if i < r {
			size++
		}
		end := start + size
		curStart, curEnd := start, end
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return fn(curStart, curEnd)
		})
		start = end
	}
	return g.Wait()
}
