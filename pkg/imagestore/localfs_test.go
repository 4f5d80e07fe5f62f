package imagestore

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalReader(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "ref.png"), []byte("x"), 0o644))

	r, err := NewLocalReader(root)
	require.NoError(t, err)

	t.Run("root 配下のファイルを開ける", func(t *testing.T) {
		rc, err := r.Open(ctx, "ref.png")
		require.NoError(t, err)
		defer rc.Close()
		data, _ := io.ReadAll(rc)
		assert.Equal(t, []byte("x"), data)
	})

	t.Run("file:// プレフィックスも受け付ける", func(t *testing.T) {
		rc, err := r.Open(ctx, "file://"+filepath.Join(root, "ref.png"))
		require.NoError(t, err)
		rc.Close()
	})

	t.Run("root の外側は拒否", func(t *testing.T) {
		_, err := r.Open(ctx, "../../etc/passwd")
		assert.Error(t, err)
	})

	t.Run("List はファイルを列挙する", func(t *testing.T) {
		var names []string
		require.NoError(t, r.List(ctx, ".", func(p string) error {
			names = append(names, filepath.Base(p))
			return nil
		}))
		assert.Equal(t, []string{"ref.png"}, names)
	})

	t.Run("リモート URI は扱わない", func(t *testing.T) {
		_, err := r.Open(ctx, "gs://bucket/ref.png")
		assert.Error(t, err)
	})

	t.Run("root は必須", func(t *testing.T) {
		_, err := NewLocalReader(" ")
		assert.Error(t, err)
	})
}
