package dataset

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"
	"github.com/paulmach/osm/osmxml"

	"github.com/hupe1980/cityroads/internal/compress"
)

// ImportStats summarizes an import.
type ImportStats struct {
	Nodes        int
	Ways         int
	Features     int
	MissingNodes int
}

// areaKeys mark a closed way as an area unless area=no.
var areaKeys = []string{"amenity", "building", "landuse", "leisure", "natural", "place", "shop", "tourism"}

// ImportOSM reads nodes and ways from scanner and adds every object that maps
// to at least one feature type to w. Nodes must precede the ways that
// reference them, as they do in sorted extracts. Relations are ignored.
func ImportOSM(ctx context.Context, scanner osm.Scanner, w *Writer) (ImportStats, error) {
	var stats ImportStats
	coords := make(map[osm.NodeID]orb.Point)

	for scanner.Scan() {
		switch obj := scanner.Object().(type) {
		case *osm.Node:
			stats.Nodes++
			p := orb.Point{obj.Lon, obj.Lat}
			coords[obj.ID] = p

			types := TypesFromTags(obj.Tags.Map())
			if len(types) == 0 {
				continue
			}
			if _, err := w.Add(Record{Types: types, Geom: GeomPoint, Points: []orb.Point{p}}); err != nil {
				return stats, fmt.Errorf("dataset: node %d: %w", obj.ID, err)
			}
			stats.Features++

		case *osm.Way:
			stats.Ways++
			tags := obj.Tags.Map()
			types := TypesFromTags(tags)
			if len(types) == 0 {
				continue
			}

			points := make([]orb.Point, 0, len(obj.Nodes))
			for _, n := range obj.Nodes {
				p, ok := coords[n.ID]
				if !ok {
					stats.MissingNodes++
					continue
				}
				points = append(points, p)
			}
			if len(points) == 0 {
				continue
			}

			geom := GeomLine
			if isArea(obj, tags) {
				geom = GeomArea
			}
			if _, err := w.Add(Record{Types: types, Geom: geom, Points: points}); err != nil {
				return stats, fmt.Errorf("dataset: way %d: %w", obj.ID, err)
			}
			stats.Features++
		}
	}
	if err := scanner.Err(); err != nil {
		return stats, fmt.Errorf("dataset: scan osm: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return stats, err
	}
	return stats, nil
}

func isArea(way *osm.Way, tags map[string]string) bool {
	nodes := way.Nodes
	if len(nodes) < 4 || nodes[0].ID != nodes[len(nodes)-1].ID {
		return false
	}
	switch tags["area"] {
	case "yes":
		return true
	case "no":
		return false
	}
	for _, k := range areaKeys {
		if tags[k] != "" {
			return true
		}
	}
	return false
}

// ImportOSMFile imports an OSM extract: .pbf files are read with the PBF
// decoder, anything else as OSM XML, optionally zstd or LZ4 compressed.
func ImportOSMFile(ctx context.Context, path string, w *Writer) (ImportStats, error) {
	f, err := os.Open(path)
	if err != nil {
		return ImportStats{}, fmt.Errorf("dataset: %w", err)
	}
	defer f.Close()

	var scanner osm.Scanner
	if strings.HasSuffix(strings.ToLower(path), ".pbf") {
		scanner = osmpbf.New(ctx, f, runtime.GOMAXPROCS(0))
	} else {
		r, err := compress.NewAutoReader(f)
		if err != nil {
			return ImportStats{}, fmt.Errorf("dataset: %s: %w", path, err)
		}
		defer r.Close()
		scanner = osmxml.New(ctx, r)
	}
	defer scanner.Close()

	stats, err := ImportOSM(ctx, scanner, w)
	if err != nil {
		return stats, fmt.Errorf("%s: %w", path, err)
	}
	return stats, nil
}
