package cityroads

import (
	"errors"
	"fmt"

	"github.com/hupe1980/cityroads/dataset"
)

var (
	// ErrDuplicateFeatureID is returned when the classified id set contains a
	// duplicate. Nothing is written when it occurs.
	ErrDuplicateFeatureID = errors.New("cityroads: duplicate city road feature id")

	// ErrNoBoundaries is returned when a build is started without a boundary table.
	ErrNoBoundaries = errors.New("cityroads: no boundary table")

	// ErrDatasetFormat matches malformed feature data.
	ErrDatasetFormat = dataset.ErrFormat
)

// Stage names the step of a build that failed.
type Stage string

const (
	StageOpen      Stage = "open"
	StageClassify  Stage = "classify"
	StageValidate  Stage = "validate"
	StageReserve   Stage = "reserve"
	StageEncode    Stage = "encode"
	StageSerialize Stage = "serialize"
	StageWrite     Stage = "write"
)

// BuildError reports a failed build.
//
// The original error can be accessed via errors.Unwrap.
type BuildError struct {
	Path  string
	Stage Stage
	Err   error
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("cityroads: build %s: %s: %v", e.Path, e.Stage, e.Err)
}

func (e *BuildError) Unwrap() error { return e.Err }

func buildError(path string, stage Stage, err error) error {
	if err == nil {
		return nil
	}
	return &BuildError{Path: path, Stage: stage, Err: err}
}
