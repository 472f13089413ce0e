package publish

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"

	"github.com/hupe1980/cityroads"
	"github.com/hupe1980/cityroads/blobstore"
	"github.com/hupe1980/cityroads/internal/compress"
	"github.com/hupe1980/cityroads/resource"
)

// Result describes one upload.
type Result struct {
	Key   string
	Bytes int64 // bytes read from the container
	Codec string
}

// Publisher uploads containers to a Store.
type Publisher struct {
	store     blobstore.Store
	resources *resource.Controller
	codec     compress.Codec
	logger    *cityroads.Logger
}

// Option configures a Publisher.
type Option func(*Publisher) error

// WithResourceController throttles uploads to the controller's IO budget.
func WithResourceController(rc *resource.Controller) Option {
	return func(p *Publisher) error {
		p.resources = rc
		return nil
	}
}

// WithCompression compresses uploads with "lz4" or "zstd". "none" and ""
// disable compression.
func WithCompression(name string) Option {
	return func(p *Publisher) error {
		c, err := compress.ParseCodec(name)
		if err != nil {
			return err
		}
		p.codec = c
		return nil
	}
}

// WithLogger sets the logger.
func WithLogger(l *cityroads.Logger) Option {
	return func(p *Publisher) error {
		if l != nil {
			p.logger = l
		}
		return nil
	}
}

// New creates a Publisher for store.
func New(store blobstore.Store, opts ...Option) (*Publisher, error) {
	p := &Publisher{
		store:  store,
		logger: cityroads.NoopLogger(),
	}
	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// Key returns the blob name a container at localPath is published under.
func (p *Publisher) Key(prefix, localPath string) string {
	return path.Join(prefix, filepath.Base(localPath)+p.codec.Ext())
}

// Publish uploads the container at localPath under prefix.
func (p *Publisher) Publish(ctx context.Context, localPath, prefix string) (Result, error) {
	res, err := p.publish(ctx, localPath, p.Key(prefix, localPath))
	p.logger.LogPublish(ctx, localPath, res.Key, res.Bytes, err)
	return res, err
}

func (p *Publisher) publish(ctx context.Context, localPath, key string) (Result, error) {
	res := Result{Key: key, Codec: p.codec.String()}

	f, err := os.Open(localPath)
	if err != nil {
		return res, fmt.Errorf("publish: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return res, fmt.Errorf("publish: %w", err)
	}

	var src io.Reader = resource.NewRateLimitedReader(ctx, f, p.resources)
	size := info.Size()

	if p.codec != compress.None {
		pr, pw := io.Pipe()
		go func() {
			pw.CloseWithError(compressTo(pw, src, p.codec))
		}()
		defer pr.Close()
		src, size = pr, -1
	}

	if err := p.store.Put(ctx, key, src, size); err != nil {
		return res, fmt.Errorf("publish: %w", err)
	}
	res.Bytes = info.Size()
	return res, nil
}

func compressTo(w io.Writer, r io.Reader, c compress.Codec) error {
	cw, err := compress.NewWriter(w, c)
	if err != nil {
		return err
	}
	if _, err := io.Copy(cw, r); err != nil {
		_ = cw.Close()
		return err
	}
	return cw.Close()
}
