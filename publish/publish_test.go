package publish

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/cityroads"
	"github.com/hupe1980/cityroads/blobstore"
	"github.com/hupe1980/cityroads/internal/compress"
	"github.com/hupe1980/cityroads/resource"
)

func writeFile(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "region.mwm")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestPublish(t *testing.T) {
	data := bytes.Repeat([]byte("city roads "), 1000)
	path := writeFile(t, data)
	store := blobstore.NewMemoryStore()

	var logs bytes.Buffer
	p, err := New(store,
		WithResourceController(resource.NewController(resource.Config{IOBytesPerSec: 1 << 30})),
		WithLogger(cityroads.NewTextLogger(&logs, slog.LevelInfo)),
	)
	require.NoError(t, err)

	res, err := p.Publish(context.Background(), path, "europe")
	require.NoError(t, err)
	assert.Equal(t, "europe/region.mwm", res.Key)
	assert.Equal(t, int64(len(data)), res.Bytes)
	assert.Equal(t, "none", res.Codec)

	got, ok := store.Bytes("europe/region.mwm")
	require.True(t, ok)
	assert.Equal(t, data, got)
	assert.Contains(t, logs.String(), "published")
}

func TestPublish_Compressed(t *testing.T) {
	data := bytes.Repeat([]byte("city roads "), 1000)
	path := writeFile(t, data)

	for _, codec := range []string{"lz4", "zstd"} {
		t.Run(codec, func(t *testing.T) {
			store := blobstore.NewMemoryStore()
			p, err := New(store, WithCompression(codec))
			require.NoError(t, err)

			res, err := p.Publish(context.Background(), path, "")
			require.NoError(t, err)

			blob, ok := store.Bytes(res.Key)
			require.True(t, ok)
			assert.Less(t, len(blob), len(data))

			c, err := compress.ParseCodec(codec)
			require.NoError(t, err)
			assert.Equal(t, "region.mwm"+c.Ext(), res.Key)

			r, err := compress.NewAutoReader(bytes.NewReader(blob))
			require.NoError(t, err)
			defer r.Close()
			got, err := io.ReadAll(r)
			require.NoError(t, err)
			assert.Equal(t, data, got)
		})
	}
}

func TestPublish_MissingFile(t *testing.T) {
	p, err := New(blobstore.NewMemoryStore())
	require.NoError(t, err)

	_, err = p.Publish(context.Background(), filepath.Join(t.TempDir(), "missing.mwm"), "")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestNew_UnknownCodec(t *testing.T) {
	_, err := New(blobstore.NewMemoryStore(), WithCompression("brotli"))
	assert.ErrorIs(t, err, compress.ErrUnknownCodec)
}

func TestOpenStore(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	store, err := OpenStore(ctx, "file://"+filepath.ToSlash(dir), StoreOptions{})
	require.NoError(t, err)
	assert.IsType(t, &blobstore.LocalStore{}, store)

	store, err = OpenStore(ctx, dir, StoreOptions{})
	require.NoError(t, err)
	assert.IsType(t, &blobstore.LocalStore{}, store)

	store, err = OpenStore(ctx, "mem://", StoreOptions{})
	require.NoError(t, err)
	assert.IsType(t, &blobstore.MemoryStore{}, store)

	store, err = OpenStore(ctx, "minio://localhost:9000/maps/city-roads", StoreOptions{})
	require.NoError(t, err)
	assert.NotNil(t, store)

	for _, bad := range []string{"ftp://host/x", "s3:///prefix", "minio://localhost:9000", "file://"} {
		_, err := OpenStore(ctx, bad, StoreOptions{})
		assert.Error(t, err, bad)
	}
}
