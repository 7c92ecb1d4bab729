package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sanonone/kektorcluster/internal/config"
	"github.com/sanonone/kektorcluster/internal/logging"
	"github.com/sanonone/kektorcluster/pkg/cluster"
	"github.com/sanonone/kektorcluster/pkg/core/distance"
	"github.com/sanonone/kektorcluster/pkg/corpus"
	"github.com/sanonone/kektorcluster/pkg/dataset"
	"github.com/sanonone/kektorcluster/pkg/textanalyzer"
	"go.uber.org/zap"
)

const usage = `usage: kektorcluster [flags] <command> <path>

commands:
  hcluster <dataset>   hierarchical clustering, prints the merge tree
  kcluster <dataset>   k-centroid clustering, prints one line per cluster
  words <file>         word frequencies of a document
  wordmatrix <dir>     word matrix of every document in dir, as a dataset

flags:
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "kektorcluster: %v\n", err)
		os.Exit(1)
	}
}

// app carries what every command needs.
type app struct {
	cfg    config.Config
	rotate bool
	logger *zap.Logger
	out    io.Writer
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("kektorcluster", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprint(stderr, usage)
		fs.PrintDefaults()
	}

	def := config.DefaultConfig()
	configPath := fs.String("config", "", "path of a YAML configuration file")
	metric := fs.String("metric", def.Metric, "metric: pearson, tanimoto or euclidean")
	convention := fs.String("convention", def.Convention, "similarity handling: literal or corrected")
	k := fs.Int("k", def.K, "number of centroids for kcluster")
	iterations := fs.Int("iterations", def.Iterations, "iteration cap for kcluster")
	seed := fs.Int64("seed", def.Seed, "random seed for kcluster (0 = clock)")
	workers := fs.Int("workers", def.Workers, "goroutines for the pairwise scans")
	timeout := fs.Duration("timeout", def.Timeout, "abort clustering after this long (0 = no limit)")
	minFraction := fs.Float64("min-fraction", def.MinFraction, "words: minimum share of a word in the text")
	maxFraction := fs.Float64("max-fraction", def.MaxFraction, "words: maximum share of a word in the text")
	minDocFraction := fs.Float64("min-doc-fraction", def.MinDocFraction, "wordmatrix: minimum share of documents containing a word")
	maxDocFraction := fs.Float64("max-doc-fraction", def.MaxDocFraction, "wordmatrix: maximum share of documents containing a word")
	rotate := fs.Bool("rotate", false, "cluster the columns of the dataset instead of the rows")
	metricsAddr := fs.String("metrics-addr", def.MetricsAddr, "serve Prometheus metrics on this address")
	logLevel := fs.String("log-level", def.LogLevel, "log level: debug, info, warn, error")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 2 {
		fs.Usage()
		return errors.New("expected a command and a path")
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		return err
	}

	// Flags given explicitly win over the file.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "metric":
			cfg.Metric = *metric
		case "convention":
			cfg.Convention = *convention
		case "k":
			cfg.K = *k
		case "iterations":
			cfg.Iterations = *iterations
		case "seed":
			cfg.Seed = *seed
		case "workers":
			cfg.Workers = *workers
		case "timeout":
			cfg.Timeout = *timeout
		case "min-fraction":
			cfg.MinFraction = *minFraction
		case "max-fraction":
			cfg.MaxFraction = *maxFraction
		case "min-doc-fraction":
			cfg.MinDocFraction = *minDocFraction
		case "max-doc-fraction":
			cfg.MaxDocFraction = *maxDocFraction
		case "metrics-addr":
			cfg.MetricsAddr = *metricsAddr
		case "log-level":
			cfg.LogLevel = *logLevel
		}
	})
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogDevelopment)
	if err != nil {
		return err
	}
	defer logger.Sync()
	logger = logger.With(zap.String("run_id", uuid.NewString()))

	if cfg.MetricsAddr != "" {
		srv := &http.Server{Addr: cfg.MetricsAddr, Handler: promhttp.Handler()}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server failed", zap.Error(err))
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()
		logger.Info("serving metrics", zap.String("addr", cfg.MetricsAddr))
	}

	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	a := &app{cfg: cfg, rotate: *rotate, logger: logger, out: stdout}
	command, path := fs.Arg(0), fs.Arg(1)

	switch command {
	case "hcluster":
		return a.hcluster(ctx, path)
	case "kcluster":
		return a.kcluster(ctx, path)
	case "words":
		return a.words(path)
	case "wordmatrix":
		return a.wordMatrix(path)
	default:
		fs.Usage()
		return fmt.Errorf("unknown command '%s'", command)
	}
}

// metric resolves the configured metric once for the whole run.
func (a *app) metric() (distance.Func, error) {
	conv, err := distance.ParseConvention(a.cfg.Convention)
	if err != nil {
		return nil, err
	}
	m, err := distance.Parse(a.cfg.Metric)
	if err != nil {
		return nil, err
	}
	_, kind, _ := distance.Get(m)
	if kind == distance.Similarity && conv == distance.Literal {
		a.logger.Warn("similarity metric used as a distance: the least similar items are merged first; use -convention corrected to invert it",
			zap.String("metric", string(m)))
	}
	return distance.Resolve(m, conv)
}

func (a *app) loadDataset(path string) (*dataset.Dataset, error) {
	ds, err := dataset.Load(path)
	if err != nil {
		return nil, err
	}
	if a.rotate {
		ds = ds.Rotate()
	}
	a.logger.Info("dataset loaded",
		zap.String("path", path),
		zap.Int("rows", len(ds.Rows)),
		zap.Int("columns", len(ds.ColNames)),
		zap.Bool("rotated", a.rotate))
	return ds, nil
}

func (a *app) options() []cluster.Option {
	opts := []cluster.Option{
		cluster.WithLogger(a.logger),
		cluster.WithWorkers(a.cfg.Workers),
	}
	if a.cfg.Seed != 0 {
		opts = append(opts, cluster.WithRand(rand.New(rand.NewSource(a.cfg.Seed))))
	}
	return opts
}

func (a *app) hcluster(ctx context.Context, path string) error {
	ds, err := a.loadDataset(path)
	if err != nil {
		return err
	}
	fn, err := a.metric()
	if err != nil {
		return err
	}

	start := time.Now()
	root, err := cluster.Hierarchical(ctx, ds.Rows, fn, a.options()...)
	if err != nil {
		return fmt.Errorf("hierarchical clustering failed: %w", err)
	}
	a.logger.Info("hierarchical clustering finished", zap.Duration("took", time.Since(start)))

	return cluster.Render(a.out, root, ds.RowNames)
}

func (a *app) kcluster(ctx context.Context, path string) error {
	ds, err := a.loadDataset(path)
	if err != nil {
		return err
	}
	fn, err := a.metric()
	if err != nil {
		return err
	}

	start := time.Now()
	res, err := cluster.KMeans(ctx, ds.Rows, a.cfg.K, a.cfg.Iterations, fn, a.options()...)
	if err != nil {
		return fmt.Errorf("k-means clustering failed: %w", err)
	}
	a.logger.Info("k-means clustering finished",
		zap.Duration("took", time.Since(start)),
		zap.Int("iterations", res.Iterations),
		zap.Bool("converged", res.Converged))

	for c, group := range res.Partition {
		names := make([]string, len(group))
		for i, row := range group {
			names[i] = ds.RowNames[row]
		}
		if _, err := fmt.Fprintf(a.out, "cluster %d: %s\n", c, strings.Join(names, ", ")); err != nil {
			return err
		}
	}
	return nil
}

func (a *app) words(path string) error {
	text, err := corpus.NewAutoLoader().Load(path)
	if err != nil {
		return err
	}
	freq := textanalyzer.WordFrequencies(text, a.cfg.MinFraction, a.cfg.MaxFraction)

	words := make([]string, 0, len(freq))
	for w := range freq {
		words = append(words, w)
	}
	sort.Slice(words, func(i, j int) bool {
		if freq[words[i]] != freq[words[j]] {
			return freq[words[i]] > freq[words[j]]
		}
		return words[i] < words[j]
	})
	for _, w := range words {
		if _, err := fmt.Fprintf(a.out, "%s\t%d\n", w, freq[w]); err != nil {
			return err
		}
	}
	return nil
}

func (a *app) wordMatrix(dir string) error {
	docs, err := corpus.LoadDir(dir, corpus.NewAutoLoader())
	if err != nil {
		return err
	}
	m := textanalyzer.BuildWordMatrix(docs, a.cfg.MatrixOptions())
	a.logger.Info("word matrix built",
		zap.Int("documents", len(m.RowNames)),
		zap.Int("words", len(m.ColNames)))

	return dataset.Write(a.out, &dataset.Dataset{
		Corner:   "Document",
		RowNames: m.RowNames,
		ColNames: m.ColNames,
		Rows:     m.Rows,
	})
}
