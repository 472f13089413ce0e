package cityroads

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/cityroads/boundary"
	"github.com/hupe1980/cityroads/container"
	"github.com/hupe1980/cityroads/dataset"
	"github.com/hupe1980/cityroads/section"
)

// Result describes one build.
type Result struct {
	Path     string
	Empty    bool           // no city roads; nothing was written
	IDs      int            // number of ids in the written section
	Bytes    int64          // section size including its header
	Header   section.Header // header as written
	Classify ClassifyStats
	Duration time.Duration
}

// Builder builds city_roads sections. It is safe for concurrent use; each
// Build call works on its own dataset.
type Builder struct {
	opts options
}

// NewBuilder creates a Builder.
func NewBuilder(opts ...Option) *Builder {
	return &Builder{opts: applyOptions(opts)}
}

func (b *Builder) classifier() ClassifyFunc {
	if b.opts.classify != nil {
		return b.opts.classify
	}
	return func(ctx context.Context, src dataset.Source, oracle boundary.Oracle) ([]uint64, ClassifyStats, error) {
		return classify(ctx, src, oracle, b.opts.workers, b.opts.detail)
	}
}

// Build classifies the roads of the dataset container at path against the
// boundaries in table and appends the resulting city_roads section to the
// same container. An empty result is a success and leaves the file untouched.
// On failure the container is left as it was.
func (b *Builder) Build(ctx context.Context, path string, table *boundary.Table) (res Result, err error) {
	start := time.Now()
	res.Path = path
	log := b.opts.logger
	log.LogBuildStart(ctx, path)
	defer func() {
		res.Duration = time.Since(start)
		b.opts.metrics.RecordBuild(res.IDs, res.Bytes, res.Duration, err)
		log.LogBuild(ctx, path, res, err)
	}()

	if table == nil {
		return res, buildError(path, StageOpen, ErrNoBoundaries)
	}

	ids, err := b.classifyDataset(ctx, path, table, &res)
	if err != nil {
		return res, err
	}
	if len(ids) == 0 {
		res.Empty = true
		return res, nil
	}

	if err := SortIDs(ids); err != nil {
		return res, buildError(path, StageValidate, err)
	}

	reserved := int64(section.HeaderSize) + int64(len(ids))*8
	if rc := b.opts.resources; rc != nil {
		if err := rc.AcquireMemory(ctx, reserved); err != nil {
			return res, buildError(path, StageReserve, err)
		}
		defer rc.ReleaseMemory(reserved)
	}

	data, hdr, err := EncodeSection(ids)
	if err != nil {
		return res, buildError(path, StageSerialize, err)
	}

	if err := b.writeSection(path, data); err != nil {
		return res, buildError(path, StageWrite, err)
	}

	res.IDs = len(ids)
	res.Bytes = int64(len(data))
	res.Header = hdr
	return res, nil
}

func (b *Builder) classifyDataset(ctx context.Context, path string, table *boundary.Table, res *Result) ([]uint64, error) {
	dat, err := dataset.OpenDat(path)
	if err != nil {
		return nil, buildError(path, StageOpen, err)
	}
	defer dat.Close()

	oracle := boundary.NewChecker(boundary.Flatten(table))

	start := time.Now()
	ids, stats, err := b.classifier()(ctx, dat, oracle)
	b.opts.metrics.RecordClassify(stats, time.Since(start), err)
	res.Classify = stats
	if err != nil {
		return nil, buildError(path, StageClassify, err)
	}
	b.opts.logger.LogClassify(ctx, path, stats)
	return ids, nil
}

func (b *Builder) writeSection(path string, data []byte) error {
	w, err := container.OpenExisting(b.opts.fs, path)
	if err != nil {
		return err
	}
	if err := w.WriteSection(container.TagCityRoads, data); err != nil {
		return err
	}
	return w.Close()
}

// BuildAll builds every dataset in paths. Builds run concurrently, bounded by
// the resource controller's build slots (one at a time without a controller).
// Results are returned in the order of paths; failed builds are joined into
// the returned error.
func (b *Builder) BuildAll(ctx context.Context, paths []string, table *boundary.Table) ([]Result, error) {
	results := make([]Result, len(paths))
	errs := make([]error, len(paths))

	rc := b.opts.resources
	g, gctx := errgroup.WithContext(ctx)
	if rc == nil {
		g.SetLimit(1)
	}
	for i, path := range paths {
		g.Go(func() error {
			if err := rc.AcquireBuild(gctx); err != nil {
				errs[i] = buildError(path, StageOpen, err)
				return nil
			}
			defer rc.ReleaseBuild()
			results[i], errs[i] = b.Build(gctx, path, table)
			return nil
		})
	}
	_ = g.Wait()

	return results, errors.Join(errs...)
}

// BuildCityRoadIndex builds and appends the city_roads section of the dataset
// container at path. It returns false if the build failed; the failure is
// logged through the configured Logger. A dataset without city roads is a
// success.
func BuildCityRoadIndex(ctx context.Context, path string, table *boundary.Table, opts ...Option) bool {
	_, err := NewBuilder(opts...).Build(ctx, path, table)
	return err == nil
}
