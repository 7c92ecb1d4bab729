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

// Hierarchical clusters rows bottom-up. Every row starts as a leaf whose id is
// its row index; the closest pair of active clusters is merged repeatedly into
// a new node with the next negative id (-1, -2, ...) until a single root is
// left. Ties go to the first pair in scan order, so equal input gives an
// identical tree.
//
// A single row is returned as a leaf. The context is checked between merges.
func Hierarchical(ctx context.Context, rows [][]float64, metric distance.Func, opts ...Option) (root *Node, err error) {
	start := time.Now()
	defer func() { observeRun("hierarchical", start, err) }()

	if metric == nil {
		return nil, fmt.Errorf("%w: nil metric", ErrInvalidParameter)
	}
	if err := checkRows(rows); err != nil {
		return nil, err
	}
	o := newOptions(opts)

	clusters := make([]*Node, len(rows))
	for i, row := range rows {
		clusters[i] = &Node{ID: i, Vector: slices.Clone(row)}
	}

	n := len(rows)
	cache := newDistanceCache(n * (n - 1) / 2)
	defer cache.flush()

	nextID := -1
	for len(clusters) > 1 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := fillCache(ctx, o.workers, cache, clusters, metric); err != nil {
			return nil, err
		}

		bi, bj := 0, 1
		closest := cache.value(clusters[0].ID, clusters[1].ID)
		for i := 0; i < len(clusters); i++ {
			for j := i + 1; j < len(clusters); j++ {
				d := cache.value(clusters[i].ID, clusters[j].ID)
				if d < closest {
					closest = d
					bi, bj = i, j
				}
			}
		}

		left, right := clusters[bi], clusters[bj]
		merged := &Node{
			ID:       nextID,
			Vector:   meanOf(left.Vector, right.Vector),
			Left:     left,
			Right:    right,
			Distance: closest,
		}
		nextID--

		// bj > bi, so removing bj first keeps bi valid.
		clusters = slices.Delete(clusters, bj, bj+1)
		clusters = slices.Delete(clusters, bi, bi+1)
		clusters = append(clusters, merged)

		metrics.MergesTotal.Inc()
		o.logger.Debug("merged clusters",
			zap.Int("id", merged.ID),
			zap.Int("left", left.ID),
			zap.Int("right", right.ID),
			zap.Float64("distance", closest),
			zap.Int("remaining", len(clusters)))
	}

	o.logger.Debug("hierarchical clustering done",
		zap.Int("rows", n),
		zap.Int("cached_pairs", cache.len()),
		zap.Int("cache_hits", cache.hits),
		zap.Int("cache_misses", cache.misses))
	return clusters[0], nil
}

type pendingPair struct {
	i, j int
	d    float64
}

// fillCache computes the metric for every active pair that has no cached
// value yet. Missing pairs are collected in scan order, computed (possibly in
// parallel, each worker writing only its own slots) and stored only after all
// workers are done.
func fillCache(ctx context.Context, workers int, cache *distanceCache, clusters []*Node, metric distance.Func) error {
	var pending []pendingPair
	for i := 0; i < len(clusters); i++ {
		for j := i + 1; j < len(clusters); j++ {
			if _, ok := cache.get(clusters[i].ID, clusters[j].ID); !ok {
				pending = append(pending, pendingPair{i: i, j: j})
			}
		}
	}

	err := parallelRange(ctx, workers, len(pending), func(start, end int) error {
		for k := start; k < end; k++ {
			p := &pending[k]
			d, err := metric(clusters[p.i].Vector, clusters[p.j].Vector)
			if err != nil {
				return fmt.Errorf("pair (%d, %d): %w", clusters[p.i].ID, clusters[p.j].ID, err)
			}
			p.d = d
		}
		return nil
	})
	if err != nil {
		return err
	}

	for _, p := range pending {
		cache.put(clusters[p.i].ID, clusters[p.j].ID, p.d)
	}
	return nil
}

// meanOf returns the elementwise mean of two vectors of equal length.
func meanOf(v1, v2 []float64) []float64 {
	out := make([]float64, len(v1))
	floats.AddTo(out, v1, v2)
	floats.Scale(0.5, out)
	return out
}
