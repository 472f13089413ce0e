package minio

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/cityroads/blobstore"
)

type fakeClient struct {
	objects map[string][]byte
	puts    []minio.PutObjectOptions
}

func newFakeClient() *fakeClient {
	return &fakeClient{objects: make(map[string][]byte)}
}

func (f *fakeClient) PutObject(_ context.Context, _, objectName string, reader io.Reader, _ int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return minio.UploadInfo{}, err
	}
	f.objects[objectName] = data
	f.puts = append(f.puts, opts)
	return minio.UploadInfo{Key: objectName, Size: int64(len(data))}, nil
}

func (f *fakeClient) GetObject(context.Context, string, string, minio.GetObjectOptions) (*minio.Object, error) {
	return nil, errors.New("not supported")
}

func (f *fakeClient) StatObject(_ context.Context, _, objectName string, _ minio.StatObjectOptions) (minio.ObjectInfo, error) {
	data, ok := f.objects[objectName]
	if !ok {
		return minio.ObjectInfo{}, minio.ErrorResponse{Code: "NoSuchKey", StatusCode: 404}
	}
	return minio.ObjectInfo{Key: objectName, Size: int64(len(data))}, nil
}

func (f *fakeClient) RemoveObject(_ context.Context, _, objectName string, _ minio.RemoveObjectOptions) error {
	if _, ok := f.objects[objectName]; !ok {
		return minio.ErrorResponse{Code: "NoSuchKey", StatusCode: 404}
	}
	delete(f.objects, objectName)
	return nil
}

func (f *fakeClient) ListObjects(_ context.Context, _ string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo {
	ch := make(chan minio.ObjectInfo, len(f.objects))
	for key := range f.objects {
		if len(key) >= len(opts.Prefix) && key[:len(opts.Prefix)] == opts.Prefix {
			ch <- minio.ObjectInfo{Key: key}
		}
	}
	close(ch)
	return ch
}

func TestStore(t *testing.T) {
	client := newFakeClient()
	store := NewStore(client, "maps", "city-roads/")
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "eu/de.mwm", bytes.NewReader([]byte("hello")), 5))
	require.NoError(t, store.Put(ctx, "eu/fr.mwm", bytes.NewReader([]byte("bonjour")), -1))
	assert.Contains(t, client.objects, "city-roads/eu/de.mwm")
	assert.Equal(t, "application/octet-stream", client.puts[0].ContentType)

	size, err := store.Stat(ctx, "eu/fr.mwm")
	require.NoError(t, err)
	assert.Equal(t, int64(7), size)

	_, err = store.Stat(ctx, "eu/it.mwm")
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
	_, err = store.Open(ctx, "eu/it.mwm")
	assert.ErrorIs(t, err, blobstore.ErrNotFound)

	names, err := store.List(ctx, "eu")
	require.NoError(t, err)
	assert.Equal(t, []string{"eu/de.mwm", "eu/fr.mwm"}, names)

	require.NoError(t, store.Delete(ctx, "eu/de.mwm"))
	require.NoError(t, store.Delete(ctx, "eu/de.mwm"))
	assert.NotContains(t, client.objects, "city-roads/eu/de.mwm")
}

// TestStore_Integration requires a running MinIO instance.
// Skip if not available.
func TestStore_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	store, err := New("localhost:9000", "test-cityroads", "test-prefix/", Options{
		AccessKey: "minioadmin",
		SecretKey: "minioadmin",
	})
	if err != nil {
		t.Skipf("MinIO client creation failed: %v", err)
	}
	client := store.client.(*minio.Client)

	ctx := context.Background()
	if _, err := client.ListBuckets(ctx); err != nil {
		t.Skipf("MinIO not available: %v", err)
	}
	exists, err := client.BucketExists(ctx, store.bucket)
	require.NoError(t, err)
	if !exists {
		require.NoError(t, client.MakeBucket(ctx, store.bucket, minio.MakeBucketOptions{}))
	}

	data := []byte("hello minio world")
	require.NoError(t, store.Put(ctx, "test.mwm", bytes.NewReader(data), int64(len(data))))

	rc, err := store.Open(ctx, "test.mwm")
	require.NoError(t, err)
	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, data, got)

	names, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Contains(t, names, "test.mwm")

	require.NoError(t, store.Delete(ctx, "test.mwm"))
	_, err = store.Stat(ctx, "test.mwm")
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
}
