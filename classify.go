package cityroads

import (
	"context"
	"slices"

	"github.com/paulmach/orb"
	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/cityroads/boundary"
	"github.com/hupe1980/cityroads/dataset"
)

// InCityRatio is the share of a road's vertices that must lie inside a city,
// exclusive, for the road to count as a city road.
const InCityRatio = 0.2

// ClassifyStats counts what the classifier saw.
type ClassifyStats struct {
	Features int // features visited
	Roads    int // features with a road type
	NoPoints int // roads skipped because their geometry is empty
	Retained int // roads classified as city roads
}

// IsCityRoad reports whether inCity of total vertices exceed InCityRatio.
// It is evaluated in integers as inCity*5 > total; a road without vertices is
// never a city road.
func IsCityRoad(inCity, total int) bool {
	return total > 0 && inCity*5 > total
}

func countInCity(oracle boundary.Oracle, points []orb.Point) int {
	n := 0
	for _, p := range points {
		if oracle.InCity(p) {
			n++
		}
	}
	return n
}

// ComputeCityRoadIDs returns the ids of the road features of src whose
// vertices lie mostly inside cities according to oracle. With WithWorkers(n),
// n > 1, the ids are not in dataset order.
func ComputeCityRoadIDs(ctx context.Context, src dataset.Source, oracle boundary.Oracle, opts ...Option) ([]uint64, error) {
	o := applyOptions(opts)
	ids, _, err := classify(ctx, src, oracle, o.workers, o.detail)
	return ids, err
}

func classify(ctx context.Context, src dataset.Source, oracle boundary.Oracle, workers int, detail dataset.Detail) ([]uint64, ClassifyStats, error) {
	if workers > 1 {
		return classifyParallel(ctx, src, oracle, workers, detail)
	}

	var (
		ids   []uint64
		stats ClassifyStats
	)
	err := src.ForEachFeature(ctx, func(f dataset.Feature, index uint32) error {
		points, err := roadPoints(f, detail, &stats)
		if err != nil || points == nil {
			return err
		}
		if IsCityRoad(countInCity(oracle, points), len(points)) {
			ids = append(ids, uint64(index))
		}
		return nil
	})
	if err != nil {
		return nil, stats, err
	}
	stats.Retained = len(ids)
	return ids, stats, nil
}

// roadPoints parses the geometry of road features. It returns nil points for
// features that cannot be city roads.
func roadPoints(f dataset.Feature, detail dataset.Detail, stats *ClassifyStats) ([]orb.Point, error) {
	stats.Features++
	if !f.IsRoad() {
		return nil, nil
	}
	stats.Roads++
	if err := f.ParseGeometry(detail); err != nil {
		return nil, err
	}
	if f.PointCount() == 0 {
		stats.NoPoints++
		return nil, nil
	}
	return f.Points(), nil
}

type roadJob struct {
	id     uint64
	points []orb.Point
}

// classifyParallel decodes geometry on the iterating goroutine and fans the
// point-in-city tests out to workers. Each worker owns one partition; the
// partitions are merged after all workers are done.
func classifyParallel(ctx context.Context, src dataset.Source, oracle boundary.Oracle, workers int, detail dataset.Detail) ([]uint64, ClassifyStats, error) {
	var stats ClassifyStats
	roads := make(chan roadJob, workers*4)
	parts := make([][]uint64, workers)

	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			for r := range roads {
				if IsCityRoad(countInCity(oracle, r.points), len(r.points)) {
					parts[w] = append(parts[w], r.id)
				}
			}
			return nil
		})
	}

	g.Go(func() error {
		defer close(roads)
		return src.ForEachFeature(gctx, func(f dataset.Feature, index uint32) error {
			points, err := roadPoints(f, detail, &stats)
			if err != nil || points == nil {
				return err
			}
			select {
			case roads <- roadJob{id: uint64(index), points: points}:
				return nil
			case <-gctx.Done():
				return gctx.Err()
			}
		})
	})

	if err := g.Wait(); err != nil {
		return nil, stats, err
	}

	ids := slices.Concat(parts...)
	stats.Retained = len(ids)
	return ids, stats, nil
}
