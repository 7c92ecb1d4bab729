// Package cluster groups feature vectors with two engines: agglomerative
// (hierarchical) clustering, which builds a binary merge tree, and k-centroid
// (k-means style) partitional clustering.
//
// Both engines take the metric as a distance.Func and always treat the
// smallest score as the closest pair. Use distance.Resolve with
// distance.Corrected to feed a similarity such as Pearson correlation as
// 1 - similarity instead.
package cluster

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/sanonone/kektorcluster/pkg/core/distance"
	"github.com/sanonone/kektorcluster/pkg/metrics"
	"go.uber.org/zap"
)

var (
	// ErrEmptyInput is returned when an engine receives no rows.
	ErrEmptyInput = errors.New("cluster: no rows to cluster")
	// ErrInvalidParameter is returned for a nil metric or a non-positive k.
	ErrInvalidParameter = errors.New("cluster: invalid parameter")
)

type options struct {
	logger  *zap.Logger
	rng     *rand.Rand
	workers int
}

// Option configures a clustering run.
type Option func(*options)

// WithLogger sets the logger used for progress messages. Default: no-op.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithRand sets the random source used to place the initial centroids.
// Pass a seeded source to make k-means reproducible.
func WithRand(r *rand.Rand) Option {
	return func(o *options) {
		if r != nil {
			o.rng = r
		}
	}
}

// WithWorkers spreads the pairwise distance scan (hierarchical) or the row
// assignment loop (k-means) over n goroutines. Values below 2 keep the run
// single-threaded.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

func newOptions(opts []Option) *options {
	o := &options{
		logger:  zap.NewNop(),
		workers: 1,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.rng == nil {
		o.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return o
}

// checkRows verifies that every row has the same, non-zero length.
func checkRows(rows [][]float64) error {
	if len(rows) == 0 {
		return ErrEmptyInput
	}
	dims := len(rows[0])
	for i, row := range rows {
		if len(row) != dims || len(row) == 0 {
			return fmt.Errorf("%w: row %d has %d values, row 0 has %d",
				distance.ErrDimensionMismatch, i, len(row), dims)
		}
	}
	return nil
}

func observeRun(engine string, start time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.ClusterRunsTotal.WithLabelValues(engine, status).Inc()
	metrics.ClusterRunDuration.WithLabelValues(engine).Observe(time.Since(start).Seconds())
}
