package storage

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_GetSet(t *testing.T) {
	ctx := context.Background()
	kv := NewMemory()

	_, ok, err := kv.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, kv.Set(ctx, "k", "v"))
	value, ok, err := kv.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", value)
}

func TestWithPrefix_IsolatesNamespaces(t *testing.T) {
	ctx := context.Background()
	base := NewMemory()
	a := WithPrefix(base, "chat:1:")
	b := WithPrefix(base, "chat:2:")

	require.NoError(t, a.Set(ctx, KeyProgress, "a"))
	require.NoError(t, b.Set(ctx, KeyProgress, "b"))

	value, _, _ := a.Get(ctx, KeyProgress)
	assert.Equal(t, "a", value)
	value, _, _ = b.Get(ctx, KeyProgress)
	assert.Equal(t, "b", value)

	raw, ok, _ := base.Get(ctx, "chat:1:progress")
	assert.True(t, ok)
	assert.Equal(t, "a", raw)
}

func TestLoadJSON(t *testing.T) {
	ctx := context.Background()
	kv := NewMemory()

	var dst map[string]int
	found, err := LoadJSON(ctx, kv, "k", &dst)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, SaveJSON(ctx, kv, "k", map[string]int{"a": 1}))
	found, err = LoadJSON(ctx, kv, "k", &dst)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 1, dst["a"])

	require.NoError(t, kv.Set(ctx, "bad", "{not json"))
	found, err = LoadJSON(ctx, kv, "bad", &dst)
	assert.True(t, found)
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestRedis_GetSet(t *testing.T) {
	srv := miniredis.RunT(t)
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	kv, err := NewRedis(ctx, "redis://"+srv.Addr()+"/0", logger)
	require.NoError(t, err)
	defer kv.Close()

	_, ok, err := kv.Get(ctx, KeyAllLists)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, kv.Set(ctx, KeyAllLists, `[]`))
	value, ok, err := kv.Get(ctx, KeyAllLists)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[]`, value)
}

func TestNewRedis_BadURL(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	_, err := NewRedis(context.Background(), "not-a-url", logger)
	assert.Error(t, err)
}
