package main

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/hupe1980/cityroads"
	"github.com/hupe1980/cityroads/container"
)

func runInspect(_ context.Context, e *env, args []string) error {
	if len(args) != 1 {
		return errors.New("inspect: exactly one dataset is required")
	}
	path := args[0]

	r, err := container.Open(path)
	if err != nil {
		return err
	}
	entries := r.Entries()
	size := r.Size()
	if err := r.Close(); err != nil {
		return err
	}

	tw := tabwriter.NewWriter(e.stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\t%d bytes\n", path, size)
	for _, en := range entries {
		fmt.Fprintf(tw, "  %s\toffset %d\tsize %d\n", en.Tag, en.Offset, en.Size)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	cr, err := cityroads.LoadCityRoads(path)
	if err != nil {
		return err
	}
	if cr.Empty() {
		fmt.Fprintln(e.stdout, "city_roads: none")
		return nil
	}
	hdr := cr.Header()
	fmt.Fprintf(e.stdout, "city_roads: version %d, %d payload bytes, crc32c %08x, %d ids\n",
		hdr.Version, hdr.DataSize, hdr.Checksum, cr.Len())
	return nil
}
