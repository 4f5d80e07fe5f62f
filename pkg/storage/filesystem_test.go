package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_Write(t *testing.T) {
	ctx := context.Background()
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	t.Run("キー配下に書き込まれる", func(t *testing.T) {
		key, err := store.Write(ctx, "/downloads/ai-studio-1.png", []byte("png"))
		require.NoError(t, err)
		assert.Equal(t, "downloads/ai-studio-1.png", key)

		data, err := os.ReadFile(filepath.Join(store.BasePath(), "downloads", "ai-studio-1.png"))
		require.NoError(t, err)
		assert.Equal(t, []byte("png"), data)
	})

	t.Run("ルート外へのキーは拒否", func(t *testing.T) {
		for _, key := range []string{"../escape.png", "a/../../b.png", "  ", "."} {
			_, err := store.Write(ctx, key, []byte("x"))
			assert.Error(t, err, key)
		}
	})

	t.Run("キャンセル済みコンテキスト", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := store.Write(cctx, "x.png", []byte("x"))
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("nil ストア", func(t *testing.T) {
		var s *FileStore
		_, err := s.Write(ctx, "x.png", nil)
		assert.Error(t, err)
		assert.Empty(t, s.BasePath())
	})
}

func TestNewFileStore_RequiresPath(t *testing.T) {
	_, err := NewFileStore("")
	assert.Error(t, err)
}
