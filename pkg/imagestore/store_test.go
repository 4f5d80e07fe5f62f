package imagestore

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shouni/gemini-image-studio/pkg/domain"
	"github.com/shouni/go-http-kit/pkg/httpkit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_SetClear(t *testing.T) {
	s := New()
	a := domain.EncodeImage("image/png", []byte("a"))
	b := domain.EncodeImage("image/png", []byte("b"))

	require.NoError(t, s.Set(SlotDefault, a))
	assert.Equal(t, a, s.Get(Slot1), "スロット未指定は1番に入る")

	require.NoError(t, s.Set(Slot1, b))
	assert.Equal(t, b, s.Get(Slot1), "上書きされる")

	require.NoError(t, s.Set(Slot2, a))
	require.NoError(t, s.Clear(Slot1))
	assert.Equal(t, Images{Image2: a}, s.Snapshot())

	assert.ErrorIs(t, s.Set(Slot(3), a), ErrInvalidSlot)
}

func TestParseSlot(t *testing.T) {
	for in, want := range map[string]Slot{"": SlotDefault, "1": Slot1, "2": Slot2} {
		got, err := ParseSlot(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseSlot("9")
	assert.ErrorIs(t, err, ErrInvalidSlot)
}

func TestDecode(t *testing.T) {
	t.Run("PNG は MIME 付きの data URI になる", func(t *testing.T) {
		data := pngBytes(t)
		img, err := Decode(bytes.NewReader(data))
		require.NoError(t, err)

		assert.True(t, strings.HasPrefix(string(img), "data:image/png;base64,"))
		_, raw, err := img.Decode()
		require.NoError(t, err)
		assert.Equal(t, data, raw)
	})

	t.Run("画像以外は拒否", func(t *testing.T) {
		_, err := Decode(strings.NewReader("plain text"))
		assert.ErrorIs(t, err, ErrNotImage)
	})

	t.Run("空は拒否", func(t *testing.T) {
		_, err := Decode(bytes.NewReader(nil))
		assert.ErrorIs(t, err, ErrEmptyImage)
	})

	t.Run("上限超過は拒否", func(t *testing.T) {
		big := append(pngBytes(t), make([]byte, MaxImageBytes)...)
		_, err := Decode(bytes.NewReader(big))
		assert.ErrorIs(t, err, ErrImageTooLarge)
	})
}

func TestStore_Load(t *testing.T) {
	ctx := context.Background()

	t.Run("nil リーダーは何もしない", func(t *testing.T) {
		s := New()
		prev := domain.EncodeImage("image/png", []byte("prev"))
		_ = s.Set(Slot1, prev)

		assert.False(t, s.Load(ctx, Slot1, nil))
		assert.Equal(t, prev, s.Get(Slot1))
	})

	t.Run("読み込みエラーは黙って無視される", func(t *testing.T) {
		s := New()
		prev := domain.EncodeImage("image/png", []byte("prev"))
		_ = s.Set(Slot2, prev)

		assert.False(t, s.Load(ctx, Slot2, failingReader{}))
		assert.Equal(t, prev, s.Get(Slot2))
	})

	t.Run("スロット1と2の並行読み込みはそれぞれ反映される", func(t *testing.T) {
		s := New()
		data := pngBytes(t)

		var wg sync.WaitGroup
		for _, slot := range []Slot{Slot1, Slot2} {
			wg.Add(1)
			go func(slot Slot) {
				defer wg.Done()
				s.Load(ctx, slot, bytes.NewReader(data))
			}(slot)
		}
		wg.Wait()

		snap := s.Snapshot()
		assert.False(t, snap.Image1.IsEmpty())
		assert.Equal(t, snap.Image1, snap.Image2)
	})
}

func TestStore_LoadURI(t *testing.T) {
	ctx := context.Background()

	t.Run("http(s) は HTTP クライアントで取得する", func(t *testing.T) {
		httpMock := &mockHTTPClient{data: pngBytes(t)}
		s := New(WithHTTPClient(httpMock))

		ok := s.LoadURI(ctx, Slot2, "https://93.184.216.34/ref.png")
		assert.True(t, ok)
		assert.True(t, httpMock.called)
		assert.Equal(t, "image/png", s.Get(Slot2).MimeType())
	})

	t.Run("安全でない URL は取得しない", func(t *testing.T) {
		httpMock := &mockHTTPClient{data: pngBytes(t), unsafe: true}
		s := New(WithHTTPClient(httpMock))

		assert.False(t, s.LoadURI(ctx, Slot1, "http://127.0.0.1/evil.png"))
		assert.False(t, httpMock.called)
		assert.True(t, s.Get(Slot1).IsEmpty())
	})

	t.Run("httpkit のクライアントはループバックを拒否する", func(t *testing.T) {
		s := New(WithHTTPClient(httpkit.New(time.Second, httpkit.WithMaxRetries(0))))

		assert.False(t, s.LoadURI(ctx, Slot1, "http://127.0.0.1/evil.png"))
		assert.False(t, s.LoadURI(ctx, Slot1, "http://169.254.169.254/latest/meta-data"))
		assert.True(t, s.Get(Slot1).IsEmpty())
	})

	t.Run("ローカルファイルは LocalReader 経由で読む", func(t *testing.T) {
		root := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(root, "ref.png"), pngBytes(t), 0o644))
		reader, err := NewLocalReader(root)
		require.NoError(t, err)
		s := New(WithReader(reader))

		assert.True(t, s.LoadURI(ctx, Slot2, "ref.png"))
		assert.Equal(t, "image/png", s.Get(Slot2).MimeType())
		assert.False(t, s.LoadURI(ctx, Slot1, "../outside.png"))
	})

	t.Run("それ以外は InputReader で開く", func(t *testing.T) {
		reader := &mockReader{files: map[string][]byte{"gs://bucket/ref.png": pngBytes(t)}}
		s := New(WithReader(reader))

		assert.True(t, s.LoadURI(ctx, Slot1, "gs://bucket/ref.png"))
		assert.False(t, s.LoadURI(ctx, Slot2, "gs://bucket/missing.png"))
		assert.True(t, s.Get(Slot2).IsEmpty())
	})

	t.Run("取得手段がなければ失敗", func(t *testing.T) {
		s := New()
		assert.False(t, s.LoadURI(ctx, Slot1, "https://93.184.216.34/ref.png"))
	})
}
