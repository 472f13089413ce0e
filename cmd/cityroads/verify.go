package main

import (
	"context"
	"errors"
	"flag"
	"fmt"

	"github.com/hupe1980/cityroads"
	"github.com/hupe1980/cityroads/boundary"
)

func runVerify(ctx context.Context, e *env, args []string) error {
	flags := flag.NewFlagSet("verify", flag.ContinueOnError)
	flags.SetOutput(e.stderr)
	boundaries := flags.String("boundaries", "", "city boundaries GeoJSON")
	workers := flags.Int("workers", e.cfg.Workers, "classifier goroutines")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if *boundaries == "" || flags.NArg() == 0 {
		return errors.New("verify: -boundaries and at least one dataset are required")
	}

	table, err := boundary.LoadFile(*boundaries)
	if err != nil {
		return err
	}

	var errs []error
	for _, path := range flags.Args() {
		report, err := cityroads.Verify(ctx, path, table,
			cityroads.WithLogger(e.logger),
			cityroads.WithWorkers(*workers),
		)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		status := "ok"
		if !report.OK() {
			status = "MISMATCH"
			errs = append(errs, fmt.Errorf("verify: %s: %d missing, %d unexpected ids",
				path, len(report.Missing), len(report.Unexpected)))
		}
		fmt.Fprintf(e.stdout, "%s\t%s\texpected %d\tstored %d\n", path, status, report.Expected, report.Stored)
	}
	return errors.Join(errs...)
}
