package ledger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory(t *testing.T) {
	ctx := context.Background()
	l := NewMemory()

	_, ok, err := l.Latest(ctx, "de.mwm")
	require.NoError(t, err)
	assert.False(t, ok)

	first, err := l.Record(ctx, Entry{Dataset: "de.mwm", IDs: 10, Bytes: 120})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), first.Version)
	assert.False(t, first.BuiltAt.IsZero())

	second, err := l.Record(ctx, Entry{Dataset: "de.mwm", IDs: 11, Bytes: 128})
	require.NoError(t, err)
	assert.Equal(t, uint64(2), second.Version)

	other, err := l.Record(ctx, Entry{Dataset: "fr.mwm"})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), other.Version)

	latest, ok, err := l.Latest(ctx, "de.mwm")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, second, latest)
	assert.Len(t, l.History("de.mwm"), 2)
}

func TestMemory_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewMemory().Record(ctx, Entry{Dataset: "de.mwm"})
	assert.ErrorIs(t, err, context.Canceled)
}
