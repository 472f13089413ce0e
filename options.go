package cityroads

import (
	"context"
	"log/slog"
	"runtime"

	"github.com/hupe1980/cityroads/boundary"
	"github.com/hupe1980/cityroads/dataset"
	"github.com/hupe1980/cityroads/internal/fs"
	"github.com/hupe1980/cityroads/resource"
)

// ClassifyFunc computes the city road ids of a dataset. The returned slice
// need not be sorted.
type ClassifyFunc func(ctx context.Context, src dataset.Source, oracle boundary.Oracle) ([]uint64, ClassifyStats, error)

type options struct {
	logger    *Logger
	metrics   MetricsCollector
	workers   int
	detail    dataset.Detail
	fs        fs.FileSystem
	resources *resource.Controller
	classify  ClassifyFunc
}

func defaultOptions() options {
	return options{
		logger:  NewLogger(slog.Default().Handler()),
		metrics: NoopMetricsCollector{},
		workers: 1,
		detail:  dataset.BestGeometry,
		fs:      fs.Default,
	}
}

func applyOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Option configures builds, classification, and verification.
type Option func(*options)

// WithLogger sets the logger. Without it, messages go to slog.Default; a nil
// logger disables logging.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l == nil {
			l = NoopLogger()
		}
		o.logger = l
	}
}

// WithMetricsCollector sets the metrics sink. A nil collector disables metrics.
func WithMetricsCollector(m MetricsCollector) Option {
	return func(o *options) {
		if m == nil {
			m = NoopMetricsCollector{}
		}
		o.metrics = m
	}
}

// WithWorkers sets how many goroutines test points against city boundaries.
// Values below 1 select runtime.GOMAXPROCS(0).
func WithWorkers(n int) Option {
	return func(o *options) {
		if n < 1 {
			n = runtime.GOMAXPROCS(0)
		}
		o.workers = n
	}
}

// WithGeometryDetail sets the geometry detail parsed for each road.
// Defaults to dataset.BestGeometry.
func WithGeometryDetail(d dataset.Detail) Option {
	return func(o *options) {
		o.detail = d
	}
}

// WithFileSystem sets the filesystem used to write containers.
func WithFileSystem(fsys fs.FileSystem) Option {
	return func(o *options) {
		if fsys == nil {
			fsys = fs.Default
		}
		o.fs = fsys
	}
}

// WithResourceController bounds concurrent builds and buffered memory.
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) {
		o.resources = rc
	}
}

// WithClassifier replaces the road classifier. Intended for tests.
func WithClassifier(fn ClassifyFunc) Option {
	return func(o *options) {
		o.classify = fn
	}
}
