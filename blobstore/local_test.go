package blobstore

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cfs "github.com/hupe1980/cityroads/internal/fs"
)

func testStore(t *testing.T, store Store) {
	ctx := context.Background()
	data := []byte("hello world, this is a test container")

	require.NoError(t, store.Put(ctx, "eu/region-a.mwm", bytes.NewReader(data), int64(len(data))))
	require.NoError(t, store.Put(ctx, "eu/region-b.mwm", bytes.NewReader(nil), 0))
	require.NoError(t, store.Put(ctx, "us/region-c.mwm", bytes.NewReader(data[:5]), -1))

	size, err := store.Stat(ctx, "eu/region-a.mwm")
	require.NoError(t, err)
	assert.Equal(t, int64(len(data)), size)

	rc, err := store.Open(ctx, "eu/region-a.mwm")
	require.NoError(t, err)
	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, data, got)

	names, err := store.List(ctx, "eu/")
	require.NoError(t, err)
	assert.Equal(t, []string{"eu/region-a.mwm", "eu/region-b.mwm"}, names)

	all, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	require.NoError(t, store.Delete(ctx, "eu/region-a.mwm"))
	require.NoError(t, store.Delete(ctx, "eu/region-a.mwm"))

	_, err = store.Open(ctx, "eu/region-a.mwm")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = store.Stat(ctx, "eu/region-a.mwm")
	assert.ErrorIs(t, err, ErrNotFound)

	err = store.Put(ctx, "short", bytes.NewReader(data[:3]), 10)
	assert.Error(t, err)
	_, err = store.Stat(ctx, "short")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalStore(t *testing.T) {
	testStore(t, NewLocalStore(t.TempDir()))
}

func TestMemoryStore(t *testing.T) {
	testStore(t, NewMemoryStore())
}

func TestLocalStore_InvalidName(t *testing.T) {
	store := NewLocalStore(t.TempDir())
	ctx := context.Background()

	for _, name := range []string{"", "../escape", "/abs"} {
		err := store.Put(ctx, name, bytes.NewReader(nil), 0)
		assert.Error(t, err, name)
	}
}

func TestLocalStore_ListMissingRoot(t *testing.T) {
	store := NewLocalStore(filepath.Join(t.TempDir(), "missing"))
	names, err := store.List(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestLocalStore_FailedWriteIsInvisible(t *testing.T) {
	dir := t.TempDir()
	ffs := cfs.NewFaultyFS(nil)
	ffs.AddRule("broken", cfs.Fault{FailAfterBytes: 4})
	store := NewLocalStoreFS(dir, ffs)

	err := store.Put(context.Background(), "broken.mwm", bytes.NewReader([]byte("0123456789")), 10)
	require.Error(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
