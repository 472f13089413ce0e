package cityroads

import (
	"context"

	"github.com/RoaringBitmap/roaring/v2/roaring64"

	"github.com/hupe1980/cityroads/boundary"
	"github.com/hupe1980/cityroads/dataset"
)

// VerifyReport compares the stored city_roads section of a dataset with a
// fresh classification.
type VerifyReport struct {
	Path       string
	Expected   uint64   // ids the classifier produces
	Stored     uint64   // ids in the stored section
	Missing    []uint64 // classified but not stored
	Unexpected []uint64 // stored but not classified
}

// OK reports whether the stored section matches.
func (r VerifyReport) OK() bool {
	return len(r.Missing) == 0 && len(r.Unexpected) == 0
}

// Verify recomputes the city roads of the dataset at path and diffs them
// against its stored section.
func Verify(ctx context.Context, path string, table *boundary.Table, opts ...Option) (VerifyReport, error) {
	report := VerifyReport{Path: path}
	if table == nil {
		return report, ErrNoBoundaries
	}
	o := applyOptions(opts)

	stored, err := LoadCityRoads(path)
	if err != nil {
		return report, buildError(path, StageOpen, err)
	}

	dat, err := dataset.OpenDat(path)
	if err != nil {
		return report, buildError(path, StageOpen, err)
	}
	defer dat.Close()

	oracle := boundary.NewChecker(boundary.Flatten(table))
	ids, _, err := classify(ctx, dat, oracle, o.workers, o.detail)
	if err != nil {
		return report, buildError(path, StageClassify, err)
	}

	want := roaring64.BitmapOf(ids...)
	have := stored.Bitmap()
	report.Expected = want.GetCardinality()
	report.Stored = have.GetCardinality()
	report.Missing = roaring64.AndNot(want, have).ToArray()
	report.Unexpected = roaring64.AndNot(have, want).ToArray()

	o.logger.InfoContext(ctx, "verified city roads section",
		"dataset", path,
		"expected", report.Expected,
		"stored", report.Stored,
		"missing", len(report.Missing),
		"unexpected", len(report.Unexpected),
	)
	return report, nil
}
