// Package config loads command line defaults from the environment.
//
// Values come from the process environment, optionally seeded from a .env
// file. Variables already set in the environment win over the file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds the settings shared by all cityroads subcommands.
type Config struct {
	LogLevel  slog.Level
	LogFormat string // "text" or "json"

	Workers     int   // classifier goroutines per build
	Jobs        int   // concurrent builds
	MemoryLimit int64 // bytes of encoded sections held at once, 0 = unlimited
	UploadBPS   int   // upload bytes per second, 0 = unlimited

	PublishURL    string // blobstore URL, empty disables publishing
	PublishPrefix string
	Compression   string // none, lz4, zstd

	LedgerTable string // DynamoDB table, empty uses an in-memory ledger
	MetricsFile string // node exporter textfile, empty disables

	AWSRegion      string
	MinioAccessKey string
	MinioSecretKey string
	MinioSecure    bool
}

// Default returns the built-in defaults.
func Default() Config {
	return Config{
		LogLevel:    slog.LevelInfo,
		LogFormat:   "text",
		Workers:     runtime.GOMAXPROCS(0),
		Jobs:        1,
		Compression: "none",
	}
}

// Load reads envFiles (missing files are ignored) and then the environment.
func Load(envFiles ...string) (Config, error) {
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("config: %s: %w", f, err)
		}
	}
	return FromEnv(os.LookupEnv)
}

// FromEnv builds a Config from lookup, starting from Default.
func FromEnv(lookup func(string) (string, bool)) (Config, error) {
	c := Default()
	var errs []error

	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	integer := func(key string, dst *int) {
		if v, ok := lookup(key); ok && v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 {
				errs = append(errs, fmt.Errorf("config: %s=%q is not a non-negative integer", key, v))
				return
			}
			*dst = n
		}
	}

	if v, ok := lookup("LOG_LEVEL"); ok && v != "" {
		lvl, err := ParseLevel(v)
		if err != nil {
			errs = append(errs, err)
		}
		c.LogLevel = lvl
	}
	str("LOG_FORMAT", &c.LogFormat)
	c.LogFormat = strings.ToLower(c.LogFormat)
	if c.LogFormat != "text" && c.LogFormat != "json" {
		errs = append(errs, fmt.Errorf("config: LOG_FORMAT=%q, want text or json", c.LogFormat))
	}

	integer("CITYROADS_WORKERS", &c.Workers)
	integer("CITYROADS_JOBS", &c.Jobs)
	integer("CITYROADS_UPLOAD_BPS", &c.UploadBPS)
	var memMB int
	integer("CITYROADS_MEMORY_MB", &memMB)
	c.MemoryLimit = int64(memMB) << 20

	str("CITYROADS_PUBLISH_URL", &c.PublishURL)
	str("CITYROADS_PUBLISH_PREFIX", &c.PublishPrefix)
	str("CITYROADS_COMPRESSION", &c.Compression)
	str("CITYROADS_LEDGER_TABLE", &c.LedgerTable)
	str("CITYROADS_METRICS_FILE", &c.MetricsFile)

	str("AWS_REGION", &c.AWSRegion)
	str("MINIO_ACCESS_KEY", &c.MinioAccessKey)
	str("MINIO_SECRET_KEY", &c.MinioSecretKey)
	if v, ok := lookup("MINIO_SECURE"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("config: MINIO_SECURE=%q: %w", v, err))
		}
		c.MinioSecure = b
	}

	return c, errors.Join(errs...)
}

// ParseLevel maps debug, info, warn, and error to a slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("config: unknown log level %q", s)
	}
}
