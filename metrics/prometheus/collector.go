// Package prometheus exports build metrics with the Prometheus client.
//
// Batch builds are short-lived, so besides registering with a normal
// registry the collector can write the node exporter textfile format:
//
//	c := prometheus.New(prometheus.Labels{"region": "europe"})
//	b := cityroads.NewBuilder(cityroads.WithMetricsCollector(c))
//	...
//	err := c.WriteTextfile("/var/lib/node_exporter/cityroads.prom")
package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hupe1980/cityroads"
)

// Labels are constant labels attached to every metric.
type Labels = prometheus.Labels

// Collector implements cityroads.MetricsCollector.
type Collector struct {
	registry *prometheus.Registry

	builds        *prometheus.CounterVec
	buildDuration prometheus.Histogram
	classifyDur   prometheus.Histogram
	features      prometheus.Counter
	roads         prometheus.Counter
	cityRoads     prometheus.Counter
	idsWritten    prometheus.Counter
	bytesWritten  prometheus.Counter
	lastSuccess   prometheus.Gauge
}

var _ cityroads.MetricsCollector = (*Collector)(nil)

// New creates a Collector with its own registry.
func New(constLabels Labels) *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		builds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   "cityroads",
			Name:        "builds_total",
			Help:        "City roads section builds by outcome (written, empty, error).",
			ConstLabels: constLabels,
		}, []string{"outcome"}),
		buildDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace:   "cityroads",
			Name:        "build_duration_seconds",
			Help:        "Duration of a dataset build.",
			ConstLabels: constLabels,
			Buckets:     prometheus.ExponentialBuckets(0.01, 4, 8),
		}),
		classifyDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace:   "cityroads",
			Name:        "classify_duration_seconds",
			Help:        "Duration of road classification.",
			ConstLabels: constLabels,
			Buckets:     prometheus.ExponentialBuckets(0.01, 4, 8),
		}),
		features: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cityroads", Name: "features_scanned_total",
			Help: "Features visited by the classifier.", ConstLabels: constLabels,
		}),
		roads: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cityroads", Name: "roads_scanned_total",
			Help: "Road features visited by the classifier.", ConstLabels: constLabels,
		}),
		cityRoads: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cityroads", Name: "city_roads_total",
			Help: "Roads classified as city roads.", ConstLabels: constLabels,
		}),
		idsWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cityroads", Name: "ids_written_total",
			Help: "Feature ids written to city_roads sections.", ConstLabels: constLabels,
		}),
		bytesWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cityroads", Name: "bytes_written_total",
			Help: "Bytes of city_roads sections written.", ConstLabels: constLabels,
		}),
		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "cityroads", Name: "last_success_timestamp_seconds",
			Help: "Unix time of the last successful build.", ConstLabels: constLabels,
		}),
	}
	c.registry.MustRegister(
		c.builds, c.buildDuration, c.classifyDur,
		c.features, c.roads, c.cityRoads,
		c.idsWritten, c.bytesWritten, c.lastSuccess,
	)
	return c
}

// Registry returns the registry holding the collector's metrics.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// RecordClassify implements cityroads.MetricsCollector.
func (c *Collector) RecordClassify(stats cityroads.ClassifyStats, d time.Duration, err error) {
	c.classifyDur.Observe(d.Seconds())
	if err != nil {
		return
	}
	c.features.Add(float64(stats.Features))
	c.roads.Add(float64(stats.Roads))
	c.cityRoads.Add(float64(stats.Retained))
}

// RecordBuild implements cityroads.MetricsCollector.
func (c *Collector) RecordBuild(ids int, bytes int64, d time.Duration, err error) {
	c.buildDuration.Observe(d.Seconds())
	switch {
	case err != nil:
		c.builds.WithLabelValues("error").Inc()
		return
	case ids == 0:
		c.builds.WithLabelValues("empty").Inc()
	default:
		c.builds.WithLabelValues("written").Inc()
		c.idsWritten.Add(float64(ids))
		c.bytesWritten.Add(float64(bytes))
	}
	c.lastSuccess.SetToCurrentTime()
}

// WriteTextfile writes all metrics to filename in the text exposition
// format. The file is replaced atomically.
func (c *Collector) WriteTextfile(filename string) error {
	return prometheus.WriteToTextfile(filename, c.registry)
}
