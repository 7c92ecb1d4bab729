package cluster

import (
	"context"
	"math/rand"
	"testing"

	"github.com/sanonone/kektorcluster/pkg/core/distance"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func blobs() [][]float64 {
	return [][]float64{
		{0, 0}, {0.5, 0.2}, {0.1, 0.7}, {0.4, 0.4},
		{10, 10}, {9.5, 10.2}, {10.3, 9.6}, {9.8, 9.9},
	}
}

// assertCover checks that every row appears in exactly one group.
func assertCover(t *testing.T, res *KMeansResult, n, k int) {
	t.Helper()
	require.Len(t, res.Partition, k)
	require.Len(t, res.Assignments, n)

	seen := make(map[int]int)
	for c, group := range res.Partition {
		for _, row := range group {
			seen[row]++
			assert.Equal(t, c, res.Assignments[row])
		}
		assert.IsNonDecreasing(t, group)
	}
	assert.Len(t, seen, n)
	for row, count := range seen {
		assert.Equal(t, 1, count, "row %d", row)
	}
}

func TestKMeansPartitionIsCover(t *testing.T) {
	rows := blobs()
	for seed := int64(0); seed < 20; seed++ {
		for _, k := range []int{1, 2, 3, 5} {
			res, err := KMeans(context.Background(), rows, k, 100, distance.SquaredEuclidean,
				WithRand(rand.New(rand.NewSource(seed))))
			require.NoError(t, err)
			assertCover(t, res, len(rows), k)
			assert.True(t, res.Converged)
			assert.Less(t, res.Iterations, 100)
		}
	}
}

func TestKMeansSingleCentroid(t *testing.T) {
	rows := [][]float64{{1, 2}, {3, 4}, {5, 9}}
	res, err := KMeans(context.Background(), rows, 1, 10, distance.SquaredEuclidean,
		WithRand(rand.New(rand.NewSource(1))))
	require.NoError(t, err)

	assert.Equal(t, [][]int{{0, 1, 2}}, res.Partition)
	assert.True(t, res.Converged)
	assert.Equal(t, 2, res.Iterations)
	assert.InDeltaSlice(t, []float64{3, 5}, res.Centroids[0], 1e-9)
}

func TestKMeansEmptyCentroidsKeepPosition(t *testing.T) {
	// Identical rows collapse every range to a point, so all centroids start
	// equal and centroid 0 wins every tie.
	rows := [][]float64{{1, 1}, {1, 1}, {1, 1}}
	res, err := KMeans(context.Background(), rows, 3, 10, distance.SquaredEuclidean)
	require.NoError(t, err)

	assert.Equal(t, [][]int{{0, 1, 2}, {}, {}}, res.Partition)
	for _, c := range res.Centroids {
		assert.Equal(t, []float64{1, 1}, c)
	}
	assert.True(t, res.Converged)
}

func TestKMeansIterationCap(t *testing.T) {
	rows := blobs()
	for _, maxIter := range []int{0, 1} {
		res, err := KMeans(context.Background(), rows, 2, maxIter, distance.SquaredEuclidean,
			WithRand(rand.New(rand.NewSource(5))))
		require.NoError(t, err)
		assert.Equal(t, 1, res.Iterations)
		assert.False(t, res.Converged)
		assertCover(t, res, len(rows), 2)
	}
}

func TestKMeansReproducible(t *testing.T) {
	rows := randomRows(11, 30, 4)
	run := func(workers int) *KMeansResult {
		res, err := KMeans(context.Background(), rows, 4, 50, distance.SquaredEuclidean,
			WithRand(rand.New(rand.NewSource(99))), WithWorkers(workers))
		require.NoError(t, err)
		return res
	}

	first := run(1)
	assert.Equal(t, first, run(1))
	assert.Equal(t, first, run(4))
}

func TestKMeansWithTanimoto(t *testing.T) {
	rows := [][]float64{
		{1, 1, 0, 0},
		{1, 1, 0, 0},
		{0, 0, 1, 1},
		{0, 0, 1, 1},
	}
	res, err := KMeans(context.Background(), rows, 2, 20, distance.TanimotoDistance,
		WithRand(rand.New(rand.NewSource(3))))
	require.NoError(t, err)
	assertCover(t, res, len(rows), 2)
	assert.Equal(t, res.Assignments[0], res.Assignments[1])
	assert.Equal(t, res.Assignments[2], res.Assignments[3])
}

func TestInitialCentroidsWithinColumnRanges(t *testing.T) {
	rows := [][]float64{{1, 5}, {3, 2}, {2, 9}}
	lo, hi := ColumnRanges(rows)
	assert.Equal(t, []float64{1, 2}, lo)
	assert.Equal(t, []float64{3, 9}, hi)

	o := newOptions([]Option{WithRand(rand.New(rand.NewSource(8)))})
	for _, c := range initialCentroids(rows, 10, o) {
		for d := range c {
			assert.GreaterOrEqual(t, c[d], lo[d])
			assert.LessOrEqual(t, c[d], hi[d])
		}
	}
}

func TestKMeansErrors(t *testing.T) {
	ctx := context.Background()

	_, err := KMeans(ctx, nil, 2, 10, distance.SquaredEuclidean)
	assert.ErrorIs(t, err, ErrEmptyInput)

	_, err = KMeans(ctx, [][]float64{{1}}, 0, 10, distance.SquaredEuclidean)
	assert.ErrorIs(t, err, ErrInvalidParameter)

	_, err = KMeans(ctx, [][]float64{{1}}, 1, 10, nil)
	assert.ErrorIs(t, err, ErrInvalidParameter)

	_, err = KMeans(ctx, [][]float64{{1, 2}, {1}}, 1, 10, distance.SquaredEuclidean)
	assert.ErrorIs(t, err, distance.ErrDimensionMismatch)

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = KMeans(canceled, [][]float64{{1}, {2}}, 1, 10, distance.SquaredEuclidean)
	assert.ErrorIs(t, err, context.Canceled)
}
