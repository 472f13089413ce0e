package cityroads

import (
	"sync/atomic"
	"time"
)

// MetricsCollector receives build measurements. Implement it to export them
// to a monitoring system; metrics/prometheus provides one.
type MetricsCollector interface {
	// RecordClassify is called after the classifier ran over a dataset.
	RecordClassify(stats ClassifyStats, duration time.Duration, err error)

	// RecordBuild is called after every build. ids and bytes are zero for
	// empty and failed builds.
	RecordBuild(ids int, bytes int64, duration time.Duration, err error)
}

// NoopMetricsCollector discards all measurements.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordClassify(ClassifyStats, time.Duration, error) {}
func (NoopMetricsCollector) RecordBuild(int, int64, time.Duration, error)      {}

// BasicMetricsCollector keeps in-memory counters.
type BasicMetricsCollector struct {
	ClassifyCount      atomic.Int64
	ClassifyErrors     atomic.Int64
	FeaturesScanned    atomic.Int64
	RoadsScanned       atomic.Int64
	CityRoadsFound     atomic.Int64
	BuildCount         atomic.Int64
	BuildErrors        atomic.Int64
	EmptyBuilds        atomic.Int64
	IDsWritten         atomic.Int64
	BytesWritten       atomic.Int64
	BuildTotalNanos    atomic.Int64
	ClassifyTotalNanos atomic.Int64
}

// RecordClassify implements MetricsCollector.
func (b *BasicMetricsCollector) RecordClassify(stats ClassifyStats, duration time.Duration, err error) {
	b.ClassifyCount.Add(1)
	b.ClassifyTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.ClassifyErrors.Add(1)
		return
	}
	b.FeaturesScanned.Add(int64(stats.Features))
	b.RoadsScanned.Add(int64(stats.Roads))
	b.CityRoadsFound.Add(int64(stats.Retained))
}

// RecordBuild implements MetricsCollector.
func (b *BasicMetricsCollector) RecordBuild(ids int, bytes int64, duration time.Duration, err error) {
	b.BuildCount.Add(1)
	b.BuildTotalNanos.Add(duration.Nanoseconds())
	switch {
	case err != nil:
		b.BuildErrors.Add(1)
	case ids == 0:
		b.EmptyBuilds.Add(1)
	default:
		b.IDsWritten.Add(int64(ids))
		b.BytesWritten.Add(bytes)
	}
}

// BasicMetricsStats is a point-in-time copy of BasicMetricsCollector.
type BasicMetricsStats struct {
	ClassifyCount      int64
	ClassifyErrors     int64
	FeaturesScanned    int64
	RoadsScanned       int64
	CityRoadsFound     int64
	BuildCount         int64
	BuildErrors        int64
	EmptyBuilds        int64
	IDsWritten         int64
	BytesWritten       int64
	AvgBuildDuration   time.Duration
	AvgClassifyLatency time.Duration
}

// GetStats returns a snapshot of the counters.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	s := BasicMetricsStats{
		ClassifyCount:   b.ClassifyCount.Load(),
		ClassifyErrors:  b.ClassifyErrors.Load(),
		FeaturesScanned: b.FeaturesScanned.Load(),
		RoadsScanned:    b.RoadsScanned.Load(),
		CityRoadsFound:  b.CityRoadsFound.Load(),
		BuildCount:      b.BuildCount.Load(),
		BuildErrors:     b.BuildErrors.Load(),
		EmptyBuilds:     b.EmptyBuilds.Load(),
		IDsWritten:      b.IDsWritten.Load(),
		BytesWritten:    b.BytesWritten.Load(),
	}
	if s.BuildCount > 0 {
		s.AvgBuildDuration = time.Duration(b.BuildTotalNanos.Load() / s.BuildCount)
	}
	if s.ClassifyCount > 0 {
		s.AvgClassifyLatency = time.Duration(b.ClassifyTotalNanos.Load() / s.ClassifyCount)
	}
	return s
}
