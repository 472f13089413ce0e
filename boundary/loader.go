package boundary

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"

	"github.com/paulmach/orb/geojson"

	"github.com/hupe1980/cityroads/internal/compress"
)

var (
	// ErrMissingID is returned for GeoJSON features without an osm_id.
	ErrMissingID = errors.New("boundary: feature has no osm_id")
	// ErrInvalidID is returned for ids that are not unsigned integers.
	ErrInvalidID = errors.New("boundary: invalid osm id")
)

const (
	propID    = "osm_id"
	propUnion = "union"
)

// LoadGeoJSON reads a FeatureCollection of city areas. Every feature needs an
// osm_id property (or a top-level id) and a Polygon or MultiPolygon geometry.
// An optional union property lists further ids belonging to the same city.
func LoadGeoJSON(r io.Reader) (*Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("boundary: read geojson: %w", err)
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("boundary: decode geojson: %w", err)
	}

	t := NewTable()
	for i, f := range fc.Features {
		raw, ok := f.Properties[propID]
		if !ok || raw == nil {
			raw = f.ID
		}
		if raw == nil {
			return nil, fmt.Errorf("feature %d: %w", i, ErrMissingID)
		}
		id, err := parseID(raw)
		if err != nil {
			return nil, fmt.Errorf("feature %d: %w", i, err)
		}

		b, err := NewBoundary(f.Geometry)
		if err != nil {
			return nil, fmt.Errorf("feature %d (osm_id %d): %w", i, id, err)
		}
		t.Append(id, b)

		if others, ok := f.Properties[propUnion].([]interface{}); ok {
			for _, o := range others {
				other, err := parseID(o)
				if err != nil {
					return nil, fmt.Errorf("feature %d (osm_id %d) union: %w", i, id, err)
				}
				t.Union(id, other)
			}
		}
	}
	return t, nil
}

// LoadFile loads a GeoJSON boundary table from path. zstd and LZ4 frames are
// decompressed transparently.
func LoadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("boundary: %w", err)
	}
	defer f.Close()

	r, err := compress.NewAutoReader(f)
	if err != nil {
		return nil, fmt.Errorf("boundary: %s: %w", path, err)
	}
	defer r.Close()

	t, err := LoadGeoJSON(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

func parseID(v interface{}) (uint64, error) {
	switch id := v.(type) {
	case float64:
		if id < 0 || id != math.Trunc(id) || id > 1<<53 {
			return 0, fmt.Errorf("%w: %v", ErrInvalidID, id)
		}
		return uint64(id), nil
	case json.Number:
		return parseIDString(id.String())
	case string:
		return parseIDString(id)
	case int:
		if id < 0 {
			return 0, fmt.Errorf("%w: %d", ErrInvalidID, id)
		}
		return uint64(id), nil
	case uint64:
		return id, nil
	default:
		return 0, fmt.Errorf("%w: %v (%T)", ErrInvalidID, v, v)
	}
}

func parseIDString(s string) (uint64, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidID, s)
	}
	return id, nil
}
