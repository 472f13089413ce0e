package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"path/filepath"

	"github.com/hupe1980/cityroads"
	"github.com/hupe1980/cityroads/boundary"
	"github.com/hupe1980/cityroads/ledger"
	"github.com/hupe1980/cityroads/ledger/dynamodb"
	"github.com/hupe1980/cityroads/metrics/prometheus"
	"github.com/hupe1980/cityroads/publish"
	"github.com/hupe1980/cityroads/resource"
)

func runBuild(ctx context.Context, e *env, args []string) error {
	cfg := e.cfg
	fs := flag.NewFlagSet("build", flag.ContinueOnError)
	fs.SetOutput(e.stderr)
	boundaries := fs.String("boundaries", "", "city boundaries GeoJSON (optionally .zst or .lz4)")
	workers := fs.Int("workers", cfg.Workers, "classifier goroutines per dataset")
	jobs := fs.Int("jobs", cfg.Jobs, "datasets built concurrently")
	publishURL := fs.String("publish", cfg.PublishURL, "blobstore URL to upload built containers to")
	prefix := fs.String("prefix", cfg.PublishPrefix, "key prefix for published containers")
	compression := fs.String("compress", cfg.Compression, "upload compression: none, lz4, zstd")
	metricsFile := fs.String("metrics-file", cfg.MetricsFile, "write Prometheus metrics to this textfile")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *boundaries == "" || fs.NArg() == 0 {
		return errors.New("build: -boundaries and at least one dataset are required")
	}

	table, err := boundary.LoadFile(*boundaries)
	if err != nil {
		return err
	}

	rc := resource.NewController(resource.Config{
		MaxConcurrentBuilds: int64(max(*jobs, 1)),
		MemoryLimitBytes:    cfg.MemoryLimit,
		IOBytesPerSec:       int64(cfg.UploadBPS),
	})
	collector := prometheus.New(prometheus.Labels{"boundaries": filepath.Base(*boundaries)})

	b := cityroads.NewBuilder(
		cityroads.WithLogger(e.logger),
		cityroads.WithMetricsCollector(collector),
		cityroads.WithWorkers(*workers),
		cityroads.WithResourceController(rc),
	)
	results, buildErr := b.BuildAll(ctx, fs.Args(), table)

	var (
		pub *publish.Publisher
		led ledger.Ledger
	)
	if *publishURL != "" {
		store, err := publish.OpenStore(ctx, *publishURL, publish.StoreOptions{
			Region:         cfg.AWSRegion,
			MinioAccessKey: cfg.MinioAccessKey,
			MinioSecretKey: cfg.MinioSecretKey,
			MinioSecure:    cfg.MinioSecure,
		})
		if err != nil {
			return err
		}
		pub, err = publish.New(store,
			publish.WithResourceController(rc),
			publish.WithCompression(*compression),
			publish.WithLogger(e.logger),
		)
		if err != nil {
			return err
		}
	}
	if cfg.LedgerTable != "" {
		led, err = dynamodb.New(ctx, cfg.LedgerTable)
		if err != nil {
			return err
		}
	} else {
		led = ledger.NewMemory()
	}

	errs := []error{buildErr}
	for _, res := range results {
		if res.Path == "" || res.Empty || res.IDs == 0 {
			continue
		}
		entry := ledger.Entry{
			Dataset:  filepath.Base(res.Path),
			IDs:      res.IDs,
			Bytes:    res.Bytes,
			Checksum: res.Header.Checksum,
		}
		if pub != nil {
			pr, err := pub.Publish(ctx, res.Path, *prefix)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			entry.Key = pr.Key
		}
		entry, err := led.Record(ctx, entry)
		if err != nil {
			errs = append(errs, fmt.Errorf("ledger: %s: %w", res.Path, err))
			continue
		}
		fmt.Fprintf(e.stdout, "%s\t%d ids\t%d bytes\tv%d\t%s\n", res.Path, res.IDs, res.Bytes, entry.Version, entry.Key)
	}

	if *metricsFile != "" {
		if err := collector.WriteTextfile(*metricsFile); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
