package dataset

import (
	"context"
	"errors"

	"github.com/paulmach/orb"
)

var (
	// ErrFormat is returned for malformed dat sections or records.
	ErrFormat = errors.New("dataset: malformed feature data")
	// ErrCoordinate is returned when a point is outside lon [-180,180] or lat [-90,90].
	ErrCoordinate = errors.New("dataset: coordinate out of range")
	// ErrGeomType is returned for unknown geometry types.
	ErrGeomType = errors.New("dataset: unknown geometry type")
)

// GeomType is the kind of geometry a feature carries.
type GeomType uint8

const (
	GeomPoint GeomType = iota
	GeomLine
	GeomArea
)

func (g GeomType) String() string {
	switch g {
	case GeomPoint:
		return "point"
	case GeomLine:
		return "line"
	case GeomArea:
		return "area"
	default:
		return "unknown"
	}
}

func (g GeomType) valid() bool { return g <= GeomArea }

// Detail selects how much of a feature's geometry ParseGeometry loads.
type Detail int

const (
	// BestGeometry loads every vertex.
	BestGeometry Detail = iota
	// WorstGeometry loads only the first and last vertex.
	WorstGeometry
)

// Feature is one map object. Geometry accessors return nothing until
// ParseGeometry has been called.
type Feature interface {
	// ID is the feature's index in its dataset.
	ID() uint64
	Types() []string
	IsRoad() bool
	GeomType() GeomType
	ParseGeometry(d Detail) error
	PointCount() int
	PointAt(i int) orb.Point
	Points() []orb.Point
}

// Source iterates the features of a dataset in id order. The index passed to
// fn equals the feature's ID. Returning an error from fn stops the iteration
// and is returned unchanged.
type Source interface {
	ForEachFeature(ctx context.Context, fn func(f Feature, index uint32) error) error
}

// Record is the decoded form of one feature.
type Record struct {
	Types  []string
	Geom   GeomType
	Points []orb.Point
}

func selectDetail(points []orb.Point, d Detail) []orb.Point {
	if d == WorstGeometry && len(points) > 2 {
		return []orb.Point{points[0], points[len(points)-1]}
	}
	return points
}
