package blobstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	data := []byte("hello")
	require.NoError(t, store.Put(ctx, "b", data))
	require.NoError(t, store.Put(ctx, "a", []byte("world")))
	data[0] = 'X'

	got, err := store.Get(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, "hello", string(got), "Put must copy")

	got[0] = 'Y'
	again, err := store.Get(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, "hello", string(again), "Get must copy")

	require.NoError(t, store.Put(ctx, "b", []byte("replaced")))

	names, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, names)
	assert.Equal(t, 2, store.Len())

	_, err = store.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}
