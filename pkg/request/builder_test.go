package request

import (
	"errors"
	"strings"
	"testing"

	"github.com/shouni/gemini-image-studio/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	img1 = domain.EncodeImage("image/png", []byte("one"))
	img2 = domain.EncodeImage("image/png", []byte("two"))
)

func TestBuild(t *testing.T) {
	t.Run("画像なしなら変換後のプロンプトだけ", func(t *testing.T) {
		req, err := Build("sunset over mountains", domain.PresetFree, domain.ModeCreate, "", "")
		require.NoError(t, err)

		assert.Equal(t, "sunset over mountains", req.Prompt)
		assert.Equal(t, "sunset over mountains", req.UserPrompt)
		assert.Empty(t, req.Images())
	})

	t.Run("空白のみのプロンプトは ValidationError", func(t *testing.T) {
		_, err := Build("   ", domain.PresetFree, domain.ModeCreate, img1, "")

		var vErr *ValidationError
		require.True(t, errors.As(err, &vErr))
		assert.Equal(t, "prompt", vErr.Field)
		assert.ErrorIs(t, err, ErrEmptyPrompt)
	})

	t.Run("compose で1枚目だけなら2枚目は含まれない", func(t *testing.T) {
		req, err := Build("mix", domain.PresetCompose, domain.ModeEdit, img1, "")
		require.NoError(t, err)

		assert.Equal(t, img1, req.Image1)
		assert.True(t, req.Image2.IsEmpty())
		assert.Len(t, req.Images(), 1)
	})

	t.Run("compose で2枚あれば両方含まれる", func(t *testing.T) {
		req, err := Build("mix", domain.PresetCompose, domain.ModeEdit, img1, img2)
		require.NoError(t, err)
		assert.Equal(t, []domain.EncodedImage{img1, img2}, req.Images())
	})

	t.Run("1枚用プリセットでは2枚目を黙って捨てる", func(t *testing.T) {
		req, err := Build("fix", domain.PresetRetouch, domain.ModeEdit, img1, img2)
		require.NoError(t, err)
		assert.Equal(t, []domain.EncodedImage{img1}, req.Images())
	})

	t.Run("モード外の compose は2枚目不要として扱う", func(t *testing.T) {
		req, err := Build("mix", domain.PresetCompose, domain.ModeCreate, img1, img2)
		require.NoError(t, err)
		assert.True(t, req.Image2.IsEmpty())
	})

	t.Run("sticker は1回だけラップされる", func(t *testing.T) {
		req, err := Build("a cat", domain.PresetSticker, domain.ModeCreate, "", "")
		require.NoError(t, err)

		assert.Equal(t, 1, strings.Count(req.Prompt, "Sticker/figure of:"))
		assert.Contains(t, req.Prompt, "a cat")
		assert.Equal(t, "a cat", req.UserPrompt)
	})
}
