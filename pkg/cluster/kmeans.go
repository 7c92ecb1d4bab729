package cluster

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/sanonone/kektorcluster/pkg/core/distance"
	"github.com/sanonone/kektorcluster/pkg/metrics"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"
)

// KMeansResult is the outcome of a k-centroid run.
type KMeansResult struct {
	// Partition maps a centroid index to the ascending row indices assigned to it.
	Partition [][]int
	// Assignments maps a row index to its centroid index.
	Assignments []int
	// Centroids are the centroid vectors after the last iteration.
	Centroids [][]float64
	// Iterations is the number of assignment passes performed.
	Iterations int
	// Converged is true when two consecutive passes produced the same partition.
	Converged bool
}

// KMeans partitions rows around k centroids. The centroids start at uniformly
// random positions inside the per-dimension [min, max] range of the rows; each
// iteration assigns every row to its closest centroid (the lowest index wins a
// tie) and moves each centroid to the mean of its rows. A centroid left without
// rows keeps its position. The run stops when the partition no longer changes
// or after maxIterations passes; values below 1 allow a single pass.
//
// The result depends on the random source; use WithRand for reproducible runs.
func KMeans(ctx context.Context, rows [][]float64, k, maxIterations int, metric distance.Func, opts ...Option) (res *KMeansResult, err error) {
	start := time.Now()
	defer func() { observeRun("kmeans", start, err) }()

	if metric == nil {
		return nil, fmt.Errorf("%w: nil metric", ErrInvalidParameter)
	}
	if k < 1 {
		return nil, fmt.Errorf("%w: k must be at least 1, got %d", ErrInvalidParameter, k)
	}
	if err := checkRows(rows); err != nil {
		return nil, err
	}
	if maxIterations < 1 {
		maxIterations = 1
	}
	o := newOptions(opts)

	centroids := initialCentroids(rows, k, o)

	assignments := make([]int, len(rows))
	var last []int
	res = &KMeansResult{}

	for t := 0; t < maxIterations; t++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := assignRows(ctx, o.workers, rows, centroids, metric, assignments); err != nil {
			return nil, err
		}
		res.Iterations = t + 1
		o.logger.Debug("k-means iteration", zap.Int("iteration", t+1))

		if last != nil && slices.Equal(last, assignments) {
			res.Converged = true
			break
		}
		last = slices.Clone(assignments)

		moveCentroids(rows, centroids, last)
	}

	res.Assignments = last
	res.Partition = partitionOf(last, k)
	res.Centroids = centroids
	metrics.KMeansIterations.Observe(float64(res.Iterations))
	o.logger.Debug("k-means done",
		zap.Int("rows", len(rows)),
		zap.Int("k", k),
		zap.Int("iterations", res.Iterations),
		zap.Bool("converged", res.Converged))
	return res, nil
}

// ColumnRanges returns the minimum and maximum of every dimension across rows.
func ColumnRanges(rows [][]float64) (lo, hi []float64) {
	dims := len(rows[0])
	lo = slices.Clone(rows[0])
	hi = slices.Clone(rows[0])
	for _, row := range rows[1:] {
		for d := 0; d < dims; d++ {
			if row[d] < lo[d] {
				lo[d] = row[d]
			}
			if row[d] > hi[d] {
				hi[d] = row[d]
			}
		}
	}
	return lo, hi
}

// initialCentroids draws dimension by dimension, centroid by centroid.
func initialCentroids(rows [][]float64, k int, o *options) [][]float64 {
	lo, hi := ColumnRanges(rows)
	dims := len(lo)

	centroids := make([][]float64, k)
	for j := range centroids {
		centroids[j] = make([]float64, dims)
	}
	for d := 0; d < dims; d++ {
		for j := 0; j < k; j++ {
			centroids[j][d] = lo[d] + o.rng.Float64()*(hi[d]-lo[d])
		}
	}
	return centroids
}

// assignRows writes the index of the closest centroid of every row into out.
func assignRows(ctx context.Context, workers int, rows, centroids [][]float64, metric distance.Func, out []int) error {
	return parallelRange(ctx, workers, len(rows), func(start, end int) error {
		for i := start; i < end; i++ {
			best := 0
			bestDist, err := metric(centroids[0], rows[i])
			if err != nil {
				return fmt.Errorf("row %d: %w", i, err)
			}
			for c := 1; c < len(centroids); c++ {
				d, err := metric(centroids[c], rows[i])
				if err != nil {
					return fmt.Errorf("row %d: %w", i, err)
				}
				if d < bestDist {
					best, bestDist = c, d
				}
			}
			out[i] = best
		}
		return nil
	})
}

// moveCentroids replaces every centroid that has rows with the mean of its rows.
func moveCentroids(rows, centroids [][]float64, assignments []int) {
	dims := len(rows[0])
	sums := make([][]float64, len(centroids))
	counts := make([]int, len(centroids))
	for i, c := range assignments {
		if sums[c] == nil {
			sums[c] = make([]float64, dims)
		}
		floats.Add(sums[c], rows[i])
		counts[c]++
	}
	for c := range centroids {
		if counts[c] == 0 {
			continue
		}
		floats.Scale(1/float64(counts[c]), sums[c])
		centroids[c] = sums[c]
	}
}

// partitionOf groups row indices by centroid; every centroid gets a (possibly empty) group.
func partitionOf(assignments []int, k int) [][]int {
	partition := make([][]int, k)
	for c := range partition {
		partition[c] = []int{}
	}
	for i, c := range assignments {
		partition[c] = append(partition[c], i)
	}
	return partition
}
