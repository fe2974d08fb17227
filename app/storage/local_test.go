package storage

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStore(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "images")

	store, err := NewLocalStore(dir)
	require.NoError(t, err)
	assert.DirExists(t, dir)

	t.Run("save and open", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, "1-cat.png", "image/png", bytes.NewReader(pngBytes)))

		rc, err := store.Open(ctx, "1-cat.png")
		require.NoError(t, err)
		defer rc.Close()

		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		assert.Equal(t, pngBytes, data)
	})

	t.Run("no temp files left behind", func(t *testing.T) {
		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		for _, e := range entries {
			assert.NotContains(t, e.Name(), ".upload-")
		}
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, store.Delete(ctx, "1-cat.png"))

		_, err := store.Open(ctx, "1-cat.png")
		assert.ErrorIs(t, err, ErrNotFound)
		assert.ErrorIs(t, store.Delete(ctx, "1-cat.png"), ErrNotFound)
	})

	t.Run("rejects traversal", func(t *testing.T) {
		assert.ErrorIs(t, store.Save(ctx, "../escape.png", "image/png", bytes.NewReader(pngBytes)), ErrInvalidName)
		_, err := store.Open(ctx, "../escape.png")
		assert.ErrorIs(t, err, ErrInvalidName)
		assert.ErrorIs(t, store.Delete(ctx, ".."), ErrInvalidName)
	})
}
