package preset

import (
	"fmt"

	"github.com/shouni/gemini-image-studio/pkg/domain"
)

const (
	stickerTemplate = "Sticker/figure of: %s. Clean white background, high quality vector style."
	textTemplate    = "Professional logo design of: %s. Modern, clean, professional aesthetics."
	comicTemplate   = "Comic book drawing style: %s. Vibrant colors, ink outlines, dynamic composition."
	retouchTemplate = "Retouch and enhance this image: %s. High resolution, natural lighting."
	styleTemplate   = "Apply a unique artistic style to this image based on: %s."
	composeTemplate = "Artistically merge and blend these two images together based on: %s. Smooth transition."
)

// Transform はプリセットごとのプロンプト書き換えを適用します。
// 入力は常にユーザーの元プロンプトで、ラップは1回だけ行われます。
// free / add-remove および未知の ID はそのまま返します。
func Transform(id domain.PresetID, prompt string) string {
	var tmpl string
	switch id {
	case domain.PresetSticker:
		tmpl = stickerTemplate
	case domain.PresetText:
		tmpl = textTemplate
	case domain.PresetComic:
		tmpl = comicTemplate
	case domain.PresetRetouch:
		tmpl = retouchTemplate
	case domain.PresetStyle:
		tmpl = styleTemplate
	case domain.PresetCompose:
		tmpl = composeTemplate
	default:
		return prompt
	}
	return fmt.Sprintf(tmpl, prompt)
}
