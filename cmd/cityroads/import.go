package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/hupe1980/cityroads/dataset"
	"github.com/hupe1980/cityroads/internal/compress"
	"github.com/hupe1980/cityroads/internal/fs"
)

func runImport(ctx context.Context, e *env, args []string) error {
	flags := flag.NewFlagSet("import", flag.ContinueOnError)
	flags.SetOutput(e.stderr)
	osmPath := flags.String("osm", "", "OSM extract (.osm.pbf, or .osm XML optionally compressed)")
	geojsonPath := flags.String("geojson", "", "GeoJSON FeatureCollection of features")
	out := flags.String("out", "", "dataset container to create")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if *out == "" || (*osmPath == "") == (*geojsonPath == "") {
		return errors.New("import: -out and exactly one of -osm or -geojson are required")
	}

	w := dataset.NewWriter()
	switch {
	case *osmPath != "":
		stats, err := dataset.ImportOSMFile(ctx, *osmPath, w)
		if err != nil {
			return err
		}
		e.logger.InfoContext(ctx, "imported osm",
			"file", *osmPath,
			"nodes", stats.Nodes,
			"ways", stats.Ways,
			"features", stats.Features,
			"missing_nodes", stats.MissingNodes,
		)
	default:
		n, err := importGeoJSON(*geojsonPath, w)
		if err != nil {
			return err
		}
		e.logger.InfoContext(ctx, "imported geojson", "file", *geojsonPath, "features", n)
	}

	if err := dataset.WriteContainer(fs.Default, *out, w); err != nil {
		return err
	}
	fmt.Fprintf(e.stdout, "%s\t%d features\n", *out, w.Len())
	return nil
}

func importGeoJSON(path string, w *dataset.Writer) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	r, err := compress.NewAutoReader(f)
	if err != nil {
		return 0, err
	}
	defer r.Close()
	return dataset.ImportGeoJSON(r, w)
}
