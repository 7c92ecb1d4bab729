package distance

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tolerance = 1e-9

func TestPearsonCorrelation(t *testing.T) {
	testCases := []struct {
		name     string
		v1, v2   []float64
		expected float64
	}{
		{"PerfectLinear", []float64{1, 2, 3}, []float64{2, 4, 6}, 1.0},
		{"PerfectInverse", []float64{1, 2, 3}, []float64{3, 2, 1}, -1.0},
		{"ConstantVector", []float64{5, 5, 5}, []float64{1, 2, 3}, 0},
		{"SingleElement", []float64{7}, []float64{3}, 0},
		{"Uncorrelated", []float64{1, 0, -1, 0}, []float64{0, 1, 0, -1}, 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := PearsonCorrelation(tc.v1, tc.v2)
			require.NoError(t, err)
			assert.InDelta(t, tc.expected, got, tolerance)
		})
	}
}

func TestPearsonSelfAndSymmetry(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 20; i++ {
		v1 := make([]float64, 8)
		v2 := make([]float64, 8)
		for j := range v1 {
			v1[j] = rng.Float64() * 10
			v2[j] = rng.Float64() * 10
		}
		self, err := PearsonCorrelation(v1, v1)
		require.NoError(t, err)
		assert.InDelta(t, 1.0, self, tolerance)

		ab, _ := PearsonCorrelation(v1, v2)
		ba, _ := PearsonCorrelation(v2, v1)
		assert.InDelta(t, ab, ba, tolerance)
	}
}

func TestTanimotoDistance(t *testing.T) {
	testCases := []struct {
		name     string
		v1, v2   []float64
		expected float64
	}{
		{"PartialOverlap", []float64{1, 0, 1}, []float64{1, 1, 0}, 1 - 1.0/3.0},
		{"Identical", []float64{0, 3, 1}, []float64{0, 3, 1}, 0},
		{"SamePattern", []float64{0, 3, 1}, []float64{0, 0.5, 9}, 0},
		{"Disjoint", []float64{1, 0, 0}, []float64{0, 1, 1}, 1},
		{"BothEmpty", []float64{0, 0}, []float64{0, 0}, 1},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := TanimotoDistance(tc.v1, tc.v2)
			require.NoError(t, err)
			assert.InDelta(t, tc.expected, got, tolerance)

			reversed, err := TanimotoDistance(tc.v2, tc.v1)
			require.NoError(t, err)
			assert.InDelta(t, got, reversed, tolerance)
		})
	}
}

func TestSquaredEuclidean(t *testing.T) {
	got, err := SquaredEuclidean([]float64{1, 2}, []float64{3, 4})
	require.NoError(t, err)
	assert.InDelta(t, 8.0, got, tolerance) // (3-1)^2 + (4-2)^2
}

func TestDimensionMismatch(t *testing.T) {
	for _, m := range Metrics() {
		fn, _, err := Get(m)
		require.NoError(t, err)

		t.Run(string(m), func(t *testing.T) {
			_, err := fn([]float64{1, 2}, []float64{1, 2, 3})
			assert.ErrorIs(t, err, ErrDimensionMismatch)

			_, err = fn(nil, nil)
			assert.ErrorIs(t, err, ErrDimensionMismatch)
		})
	}
}

func TestParse(t *testing.T) {
	for name, want := range map[string]Metric{
		"pearson":            Pearson,
		"pearsonCorrelation": Pearson,
		"tanimoto":           Tanimoto,
		"tanimotoDistance":   Tanimoto,
		"euclidean":          Euclidean,
	} {
		got, err := Parse(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got)
	}

	_, err := Parse("manhattan")
	assert.ErrorIs(t, err, ErrUnknownMetric)
}

func TestResolveConvention(t *testing.T) {
	v1, v2 := []float64{1, 2, 3}, []float64{2, 4, 6}

	literal, err := Resolve(Pearson, Literal)
	require.NoError(t, err)
	got, _ := literal(v1, v2)
	assert.InDelta(t, 1.0, got, tolerance)

	corrected, err := Resolve(Pearson, Corrected)
	require.NoError(t, err)
	got, _ = corrected(v1, v2)
	assert.InDelta(t, 0.0, got, tolerance)

	// Distances are left alone by the correction.
	tan, err := Resolve(Tanimoto, Corrected)
	require.NoError(t, err)
	got, _ = tan([]float64{1, 0, 1}, []float64{1, 1, 0})
	assert.InDelta(t, 2.0/3.0, got, tolerance)

	_, err = Resolve("cosine", Literal)
	assert.ErrorIs(t, err, ErrUnknownMetric)

	_, err = Resolve(Pearson, Convention("inverted"))
	assert.Error(t, err)

	// Errors from the wrapped metric pass through.
	_, err = corrected([]float64{1}, []float64{1, 2})
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestParseConvention(t *testing.T) {
	c, err := ParseConvention("")
	require.NoError(t, err)
	assert.Equal(t, Literal, c)

	c, err = ParseConvention("corrected")
	require.NoError(t, err)
	assert.Equal(t, Corrected, c)

	_, err = ParseConvention("bogus")
	assert.Error(t, err)
}

// --- BENCHMARK ---

func generateVectors(dims int) ([]float64, []float64) {
	v1 := make([]float64, dims)
	v2 := make([]float64, dims)
	for i := 0; i < dims; i++ {
		v1[i] = rand.Float64()
		v2[i] = rand.Float64()
	}
	return v1, v2
}

func BenchmarkMetrics(b *testing.B) {
	dims := []int{64, 256, 1024}
	for _, m := range Metrics() {
		fn, _, _ := Get(m)
		for _, d := range dims {
			b.Run(fmt.Sprintf("%s_%dD", m, d), func(b *testing.B) {
				v1, v2 := generateVectors(d)
				b.ResetTimer()
				for i := 0; i < b.N; i++ {
					fn(v1, v2)
				}
			})
		}
	}
}
