package boundary

import (
	"errors"
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

var (
	// ErrUnsupportedGeometry is returned for geometries that do not describe an area.
	ErrUnsupportedGeometry = errors.New("boundary: unsupported geometry")
	// ErrEmptyGeometry is returned for areas without any ring.
	ErrEmptyGeometry = errors.New("boundary: empty geometry")
)

// Oracle reports whether a point lies inside any city boundary.
type Oracle interface {
	InCity(p orb.Point) bool
}

// OracleFunc adapts a function to Oracle.
type OracleFunc func(p orb.Point) bool

// InCity calls f(p).
func (f OracleFunc) InCity(p orb.Point) bool { return f(p) }

// Boundary is the area of one city, with its bounding box cached.
type Boundary struct {
	Polygons orb.MultiPolygon
	Bound    orb.Bound
}

// NewBoundary builds a Boundary from a polygon, multipolygon, closed ring, or
// bounding box.
func NewBoundary(g orb.Geometry) (Boundary, error) {
	var mp orb.MultiPolygon
	switch v := g.(type) {
	case orb.Polygon:
		mp = orb.MultiPolygon{v}
	case orb.MultiPolygon:
		mp = v
	case orb.Ring:
		mp = orb.MultiPolygon{{v}}
	case orb.Bound:
		mp = orb.MultiPolygon{v.ToPolygon()}
	case nil:
		return Boundary{}, ErrEmptyGeometry
	default:
		return Boundary{}, fmt.Errorf("%w: %s", ErrUnsupportedGeometry, g.GeoJSONType())
	}

	rings := 0
	for _, p := range mp {
		rings += len(p)
	}
	if rings == 0 {
		return Boundary{}, ErrEmptyGeometry
	}
	return Boundary{Polygons: mp, Bound: mp.Bound()}, nil
}

// HasPoint reports whether p lies inside the boundary. Points inside a hole
// are outside.
func (b Boundary) HasPoint(p orb.Point) bool {
	if !b.Bound.Contains(p) {
		return false
	}
	return planar.MultiPolygonContains(b.Polygons, p)
}
