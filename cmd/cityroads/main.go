// Command cityroads builds and inspects the city_roads section of dataset
// containers.
//
//	cityroads import -geojson features.geojson -out region.mwm
//	cityroads build -boundaries cities.geojson region.mwm ...
//	cityroads inspect region.mwm
//	cityroads verify -boundaries cities.geojson region.mwm
//
// Defaults come from the environment and a .env file in the working
// directory; flags override them.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/hupe1980/cityroads"
	"github.com/hupe1980/cityroads/internal/config"
)

type command struct {
	name    string
	summary string
	run     func(ctx context.Context, env *env, args []string) error
}

var commands = []command{
	{"import", "create a dataset container from OSM or GeoJSON features", runImport},
	{"build", "build the city_roads section of dataset containers", runBuild},
	{"inspect", "print the sections and city roads header of a container", runInspect},
	{"verify", "compare a stored city_roads section with a fresh classification", runVerify},
}

// env is what every subcommand gets.
type env struct {
	cfg    config.Config
	logger *cityroads.Logger
	stdout io.Writer
	stderr io.Writer
}

func newLogger(cfg config.Config, w io.Writer) *cityroads.Logger {
	if cfg.LogFormat == "json" {
		return cityroads.NewJSONLogger(w, cfg.LogLevel)
	}
	return cityroads.NewTextLogger(w, cfg.LogLevel)
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "usage: cityroads <command> [flags] [args]")
	fmt.Fprintln(w)
	for _, c := range commands {
		fmt.Fprintf(w, "  %-8s %s\n", c.name, c.summary)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		usage(stderr)
		return 2
	}

	cfg, err := config.Load(".env")
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	e := &env{cfg: cfg, logger: newLogger(cfg, stderr), stdout: stdout, stderr: stderr}

	for _, c := range commands {
		if c.name != args[0] {
			continue
		}
		if err := c.run(ctx, e, args[1:]); err != nil {
			e.logger.ErrorContext(ctx, c.name+" failed", "error", err)
			return 1
		}
		return 0
	}

	fmt.Fprintf(stderr, "cityroads: unknown command %q\n\n", args[0])
	usage(stderr)
	return 2
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
