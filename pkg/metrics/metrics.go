package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Global collectors, registered on the default registry through promauto.

var (
	// ClusterRunsTotal counts engine invocations, labeled by engine and outcome.
	ClusterRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kektorcluster_runs_total",
			Help: "Total number of clustering runs",
		},
		[]string{"engine", "status"},
	)

	// ClusterRunDuration measures how long a clustering run takes.
	// Hierarchical runs on a few thousand rows take minutes, hence the wide buckets.
	ClusterRunDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kektorcluster_run_duration_seconds",
			Help:    "Duration of clustering runs in seconds",
			Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60, 300},
		},
		[]string{"engine"},
	)

	// MergesTotal counts merges performed by the hierarchical engine.
	MergesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "kektorcluster_hierarchical_merges_total",
			Help: "Total number of merges performed by hierarchical clustering",
		},
	)

	// DistanceCacheLookups counts pair lookups in the hierarchical distance cache.
	DistanceCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kektorcluster_distance_cache_lookups_total",
			Help: "Distance cache lookups, labeled hit or miss",
		},
		[]string{"result"},
	)

	// KMeansIterations records how many iterations a k-means run needed.
	KMeansIterations = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "kektorcluster_kmeans_iterations",
			Help:    "Number of iterations per k-means run",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		},
	)
)
