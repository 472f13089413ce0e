package publish

import (
	"context"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/config"

	"github.com/hupe1980/cityroads/blobstore"
	"github.com/hupe1980/cityroads/blobstore/minio"
	"github.com/hupe1980/cityroads/blobstore/s3"
)

// StoreOptions carries credentials for remote stores. S3 uses the default
// AWS credential chain and only reads Region.
type StoreOptions struct {
	Region         string
	MinioAccessKey string
	MinioSecretKey string
	MinioSecure    bool
}

// OpenStore returns the Store addressed by rawURL.
func OpenStore(ctx context.Context, rawURL string, opts StoreOptions) (blobstore.Store, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("publish: store url: %w", err)
	}

	switch u.Scheme {
	case "", "file":
		dir := u.Path
		if u.Scheme == "" {
			dir = rawURL
		}
		if dir == "" {
			return nil, fmt.Errorf("publish: store url %q has no path", rawURL)
		}
		return blobstore.NewLocalStore(filepath.FromSlash(dir)), nil
	case "mem":
		return blobstore.NewMemoryStore(), nil
	case "s3":
		if u.Host == "" {
			return nil, fmt.Errorf("publish: store url %q has no bucket", rawURL)
		}
		return s3.New(ctx, u.Host, strings.TrimPrefix(u.Path, "/"), regionOption(opts.Region)...)
	case "minio":
		bucket, prefix, _ := strings.Cut(strings.TrimPrefix(u.Path, "/"), "/")
		if u.Host == "" || bucket == "" {
			return nil, fmt.Errorf("publish: store url %q needs host and bucket", rawURL)
		}
		return minio.New(u.Host, bucket, prefix, minio.Options{
			AccessKey: opts.MinioAccessKey,
			SecretKey: opts.MinioSecretKey,
			Secure:    opts.MinioSecure,
			Region:    opts.Region,
		})
	default:
		return nil, fmt.Errorf("publish: unsupported store scheme %q", u.Scheme)
	}
}

func regionOption(region string) []func(*config.LoadOptions) error {
	if region == "" {
		return nil
	}
	return []func(*config.LoadOptions) error{config.WithRegion(region)}
}
