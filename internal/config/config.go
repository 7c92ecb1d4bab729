package config

import (
	"fmt"
	"os"
	"time"

	"github.com/sanonone/kektorcluster/pkg/core/distance"
	"github.com/sanonone/kektorcluster/pkg/textanalyzer"
	"gopkg.in/yaml.v3"
)

type Config struct {
	// Metric selection
	Metric     string `yaml:"metric"`     // "pearson", "tanimoto", "euclidean"
	Convention string `yaml:"convention"` // "literal" or "corrected"

	// Engine settings
	Workers    int           `yaml:"workers"` // goroutines for the pairwise scans, 1 = sequential
	Timeout    time.Duration `yaml:"timeout"` // 0 = no limit
	K          int           `yaml:"k"`
	Iterations int           `yaml:"iterations"`
	Seed       int64         `yaml:"seed"` // 0 = seed from the clock

	// Feature extraction
	MinFraction    float64 `yaml:"min_fraction"`     // per-text word share band
	MaxFraction    float64 `yaml:"max_fraction"`
	MinDocFraction float64 `yaml:"min_doc_fraction"` // word-matrix document share band
	MaxDocFraction float64 `yaml:"max_doc_fraction"`
	SkipStopWords  bool    `yaml:"skip_stop_words"`

	// Observability
	LogLevel       string `yaml:"log_level"`       // "debug", "info", "warn", "error"
	LogDevelopment bool   `yaml:"log_development"` // human-readable console output
	MetricsAddr    string `yaml:"metrics_addr"`    // e.g. ":9095", empty = disabled
}

// DefaultConfig returns the built-in settings.
func DefaultConfig() Config {
	return Config{
		Metric:     string(distance.Pearson),
		Convention: string(distance.Literal),

		Workers:    1,
		K:          4,
		Iterations: 100,

		MinFraction:    textanalyzer.DefaultMinFraction,
		MaxFraction:    textanalyzer.DefaultMaxFraction,
		MinDocFraction: textanalyzer.DefaultMinFraction,
		MaxDocFraction: textanalyzer.DefaultMaxFraction,

		LogLevel: "info",
	}
}

// LoadConfig reads the YAML configuration file using strict parsing.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		return cfg, nil
	}

	file, err := os.Open(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to open config: %w", err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)

	if err := decoder.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("YAML syntax error in config: %w", err)
	}

	return cfg, cfg.Validate()
}

// Validate checks values that the engines would reject later, so that a bad
// file fails before any work starts.
func (c Config) Validate() error {
	if _, err := distance.Parse(c.Metric); err != nil {
		return err
	}
	if _, err := distance.ParseConvention(c.Convention); err != nil {
		return err
	}
	if c.K < 1 {
		return fmt.Errorf("config: k must be at least 1, got %d", c.K)
	}
	if c.MinFraction > c.MaxFraction {
		return fmt.Errorf("config: min_fraction %.3f is above max_fraction %.3f", c.MinFraction, c.MaxFraction)
	}
	if c.MinDocFraction > c.MaxDocFraction {
		return fmt.Errorf("config: min_doc_fraction %.3f is above max_doc_fraction %.3f", c.MinDocFraction, c.MaxDocFraction)
	}
	return nil
}

// MatrixOptions converts the word-matrix settings.
func (c Config) MatrixOptions() textanalyzer.MatrixOptions {
	return textanalyzer.MatrixOptions{
		MinDocFraction: c.MinDocFraction,
		MaxDocFraction: c.MaxDocFraction,
		SkipStopWords:  c.SkipStopWords,
	}
}
