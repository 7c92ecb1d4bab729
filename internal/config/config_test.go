package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sanonone/kektorcluster/pkg/core/distance"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "kektorcluster.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfigOverrides(t *testing.T) {
	path := writeConfig(t, `
metric: tanimoto
convention: corrected
workers: 8
timeout: 30s
k: 6
seed: 42
min_doc_fraction: 0.05
skip_stop_words: true
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "tanimoto", cfg.Metric)
	assert.Equal(t, "corrected", cfg.Convention)
	assert.Equal(t, 8, cfg.Workers)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Equal(t, 6, cfg.K)
	assert.Equal(t, int64(42), cfg.Seed)
	// Untouched keys keep their defaults.
	assert.Equal(t, 100, cfg.Iterations)
	assert.Equal(t, 0.5, cfg.MaxDocFraction)

	opts := cfg.MatrixOptions()
	assert.Equal(t, 0.05, opts.MinDocFraction)
	assert.True(t, opts.SkipStopWords)
}

func TestLoadConfigErrors(t *testing.T) {
	testCases := []struct {
		name string
		body string
	}{
		{"UnknownField", "metrik: pearson\n"},
		{"BadSyntax", "metric: [pearson\n"},
		{"UnknownMetric", "metric: cosine\n"},
		{"UnknownConvention", "convention: flipped\n"},
		{"BadK", "k: 0\n"},
		{"InvertedBand", "min_fraction: 0.6\nmax_fraction: 0.2\n"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tc.body))
			assert.Error(t, err)
		})
	}

	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	cfg := DefaultConfig()
	cfg.Metric = "cosine"
	assert.ErrorIs(t, cfg.Validate(), distance.ErrUnknownMetric)
}
