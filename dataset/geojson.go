package dataset

import (
	"fmt"
	"io"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// ImportGeoJSON adds the features of a GeoJSON FeatureCollection to w and
// returns how many records were added. Types come from a "types" string
// array property when present, otherwise from the string properties read as
// OSM tags. Multi-geometries produce one record per part; polygons keep their
// outer ring. Features without any type are skipped.
func ImportGeoJSON(r io.Reader, w *Writer) (int, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return 0, fmt.Errorf("dataset: read geojson: %w", err)
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return 0, fmt.Errorf("dataset: decode geojson: %w", err)
	}

	added := 0
	for i, f := range fc.Features {
		types := typesFromProperties(f.Properties)
		if len(types) == 0 {
			continue
		}
		records, err := recordsFromGeometry(types, f.Geometry)
		if err != nil {
			return added, fmt.Errorf("dataset: geojson feature %d: %w", i, err)
		}
		for _, rec := range records {
			if _, err := w.Add(rec); err != nil {
				return added, fmt.Errorf("dataset: geojson feature %d: %w", i, err)
			}
			added++
		}
	}
	return added, nil
}

func typesFromProperties(props geojson.Properties) []string {
	if raw, ok := props["types"].([]interface{}); ok {
		types := make([]string, 0, len(raw))
		for _, v := range raw {
			if s, ok := v.(string); ok && s != "" {
				types = append(types, s)
			}
		}
		return types
	}

	tags := make(map[string]string, len(props))
	for k, v := range props {
		if s, ok := v.(string); ok {
			tags[k] = s
		}
	}
	return TypesFromTags(tags)
}

func recordsFromGeometry(types []string, g orb.Geometry) ([]Record, error) {
	switch v := g.(type) {
	case orb.Point:
		return []Record{{Types: types, Geom: GeomPoint, Points: []orb.Point{v}}}, nil
	case orb.MultiPoint:
		out := make([]Record, 0, len(v))
		for _, p := range v {
			out = append(out, Record{Types: types, Geom: GeomPoint, Points: []orb.Point{p}})
		}
		return out, nil
	case orb.LineString:
		return []Record{{Types: types, Geom: GeomLine, Points: v}}, nil
	case orb.MultiLineString:
		out := make([]Record, 0, len(v))
		for _, ls := range v {
			out = append(out, Record{Types: types, Geom: GeomLine, Points: ls})
		}
		return out, nil
	case orb.Polygon:
		if len(v) == 0 {
			return nil, nil
		}
		return []Record{{Types: types, Geom: GeomArea, Points: v[0]}}, nil
	case orb.MultiPolygon:
		out := make([]Record, 0, len(v))
		for _, p := range v {
			if len(p) > 0 {
				out = append(out, Record{Types: types, Geom: GeomArea, Points: p[0]})
			}
		}
		return out, nil
	default:
		if g == nil {
			return nil, fmt.Errorf("%w: missing geometry", ErrGeomType)
		}
		return nil, fmt.Errorf("%w: %s", ErrGeomType, g.GeoJSONType())
	}
}
