// Package distance provides the scoring functions used to compare two feature
// vectors. It ships correlation-based and set-overlap-based metrics, a catalog
// that resolves a metric identifier to its implementation, and the sign
// convention applied when a similarity is fed to an engine that selects the
// smallest value.
//
// Metrics are resolved once, up front, and the returned Func is passed explicitly
// to the clustering engines:
//
//	fn, err := distance.Resolve(distance.Tanimoto, distance.Literal)
//	if err != nil {
//	    return err
//	}
//	root, err := cluster.Hierarchical(ctx, rows, fn)
package distance

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

var (
	// ErrDimensionMismatch is returned when two vectors differ in length or are empty.
	ErrDimensionMismatch = errors.New("distance: vectors must be non-empty and of the same length")
	// ErrUnknownMetric is returned when an identifier has no registered implementation.
	ErrUnknownMetric = errors.New("distance: unknown metric")
)

// Func scores two equal-length vectors.
type Func func(v1, v2 []float64) (float64, error)

// Metric identifies a scoring function in the catalog.
type Metric string

// Kind tells whether a higher or a lower score means "more alike".
type Kind int

const (
	// Distance metrics return 0 for identical inputs, larger means further apart.
	Distance Kind = iota
	// Similarity metrics return larger values for more alike inputs.
	Similarity
)

const (
	// Pearson is the sample correlation coefficient (a similarity).
	Pearson Metric = "pearson"
	// Tanimoto is 1 minus the intersection-over-union of nonzero positions.
	Tanimoto Metric = "tanimoto"
	// Euclidean is the squared Euclidean distance.
	Euclidean Metric = "euclidean"
)

func checkDims(v1, v2 []float64) error {
	if len(v1) != len(v2) || len(v1) == 0 {
		return fmt.Errorf("%w: got %d and %d", ErrDimensionMismatch, len(v1), len(v2))
	}
	return nil
}

// PearsonCorrelation returns the sample correlation coefficient of v1 and v2.
// It returns 0 when either vector has zero variance.
func PearsonCorrelation(v1, v2 []float64) (float64, error) {
	if err := checkDims(v1, v2); err != nil {
		return 0, err
	}
	m1 := stat.Mean(v1, nil)
	m2 := stat.Mean(v2, nil)

	var num, ss1, ss2 float64
	for i := range v1 {
		d1 := v1[i] - m1
		d2 := v2[i] - m2
		num += d1 * d2
		ss1 += d1 * d1
		ss2 += d2 * d2
	}
	den := ss1 * ss2
	if den == 0 {
		return 0, nil
	}
	return num / math.Sqrt(den), nil
}

// TanimotoDistance treats nonzero entries as "present" and returns
// 1 - |A∩B| / |A∪B|. Two all-zero vectors are at distance 1.
func TanimotoDistance(v1, v2 []float64) (float64, error) {
	if err := checkDims(v1, v2); err != nil {
		return 0, err
	}
	var c1, c2, shared int
	for i := range v1 {
		a, b := v1[i] != 0, v2[i] != 0
		if a {
			c1++
		}
		if b {
			c2++
		}
		if a && b {
			shared++
		}
	}
	union := c1 + c2 - shared
	if union == 0 {
		return 1.0, nil
	}
	return 1.0 - float64(shared)/float64(union), nil
}

// SquaredEuclidean returns the sum of squared coordinate differences.
func SquaredEuclidean(v1, v2 []float64) (float64, error) {
	if err := checkDims(v1, v2); err != nil {
		return 0, err
	}
	var sum float64
	for i := range v1 {
		diff := v1[i] - v2[i]
		sum += diff * diff
	}
	return sum, nil
}

// --- Function Catalog ---

type entry struct {
	fn   Func
	kind Kind
}

var catalog = map[Metric]entry{
	Pearson:   {fn: PearsonCorrelation, kind: Similarity},
	Tanimoto:  {fn: TanimotoDistance, kind: Distance},
	Euclidean: {fn: SquaredEuclidean, kind: Distance},
}

// aliases accepted for compatibility with the long-form names.
var aliases = map[string]Metric{
	"pearsonCorrelation": Pearson,
	"tanimotoDistance":   Tanimoto,
	"squaredEuclidean":   Euclidean,
}

// Parse normalizes an identifier into a catalog Metric.
func Parse(name string) (Metric, error) {
	if m, ok := aliases[name]; ok {
		return m, nil
	}
	m := Metric(name)
	if _, ok := catalog[m]; !ok {
		return "", fmt.Errorf("%w: '%s'", ErrUnknownMetric, name)
	}
	return m, nil
}

// Get returns the raw implementation of a metric and its kind.
func Get(metric Metric) (Func, Kind, error) {
	e, ok := catalog[metric]
	if !ok {
		return nil, 0, fmt.Errorf("%w: '%s'", ErrUnknownMetric, metric)
	}
	return e.fn, e.kind, nil
}

// Metrics lists the registered identifiers.
func Metrics() []Metric {
	return []Metric{Pearson, Tanimoto, Euclidean}
}
