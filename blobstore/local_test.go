package blobstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStore_Lifecycle(t *testing.T) {
	for _, tc := range []struct {
		name string
		opts []LocalOption
	}{
		{"InPlace", nil},
		{"InPlaceSync", []LocalOption{WithSync()}},
		{"Atomic", []LocalOption{WithAtomicWrites()}},
		{"AtomicSync", []LocalOption{WithAtomicWrites(), WithSync()}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()
			root := filepath.Join(t.TempDir(), "nested", "workdir")

			store, err := OpenLocalStore(root, tc.opts...)
			require.NoError(t, err)
			assert.Equal(t, root, store.Root())

			info, err := os.Stat(root)
			require.NoError(t, err)
			require.True(t, info.IsDir())

			// 1. Put and Get
			require.NoError(t, store.Put(ctx, "123", []byte("a much longer first version")))
			got, err := store.Get(ctx, "123")
			require.NoError(t, err)
			assert.Equal(t, "a much longer first version", string(got))

			// 2. Replace with shorter contents
			require.NoError(t, store.Put(ctx, "123", []byte("short")))
			got, err = store.Get(ctx, "123")
			require.NoError(t, err)
			assert.Equal(t, "short", string(got))

			// 3. List
			require.NoError(t, store.Put(ctx, "456", []byte("x")))
			names, err := store.List(ctx, "")
			require.NoError(t, err)
			assert.ElementsMatch(t, []string{"123", "456"}, names)

			names, err = store.List(ctx, "4")
			require.NoError(t, err)
			assert.Equal(t, []string{"456"}, names)
		})
	}
}

func TestLocalStore_GetMissing(t *testing.T) {
	store, err := OpenLocalStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalStore_ListSkipsDirsAndTemps(t *testing.T) {
	root := t.TempDir()
	store, err := OpenLocalStore(root)
	require.NoError(t, err)

	require.NoError(t, os.Mkdir(filepath.Join(root, "subdir"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, TempPrefix+"123"), []byte("partial"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "789"), []byte("{}"), 0o644))

	names, err := store.List(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, []string{"789"}, names)
}

func TestLocalStore_RejectsInvalidNames(t *testing.T) {
	store, err := OpenLocalStore(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()
	for _, name := range []string{"", "../escape", "a/b", TempPrefix + "x"} {
		assert.Error(t, store.Put(ctx, name, []byte("x")), name)
	}
}

func TestLocalStore_AtomicLeavesNoTemps(t *testing.T) {
	root := t.TempDir()
	store, err := OpenLocalStore(root, WithAtomicWrites())
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		require.NoError(t, store.Put(context.Background(), "1", []byte("data")))
	}

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "1", entries[0].Name())

	info, err := entries[0].Info()
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())
}

func TestLocalStore_PutFailsOnReadOnlyTarget(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root ignores file permissions")
	}
	root := t.TempDir()
	store, err := OpenLocalStore(root)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(root, "1"), []byte("x"), 0o444))
	assert.Error(t, store.Put(context.Background(), "1", []byte("y")))
}

func TestLocalStore_CanceledContext(t *testing.T) {
	store, err := OpenLocalStore(t.TempDir())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, store.Put(ctx, "1", nil), context.Canceled)
	_, err = store.Get(ctx, "1")
	assert.ErrorIs(t, err, context.Canceled)
	_, err = store.List(ctx, "")
	assert.ErrorIs(t, err, context.Canceled)
}
