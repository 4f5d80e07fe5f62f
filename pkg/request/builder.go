package request

import (
	"errors"
	"strings"

	"github.com/shouni/gemini-image-studio/pkg/domain"
	"github.com/shouni/gemini-image-studio/pkg/preset"
)

// ErrEmptyPrompt はプロンプトが空白のみのときに返されます。
var ErrEmptyPrompt = errors.New("prompt is empty")

// ValidationError は外部呼び出しの前に検出される入力エラーです。
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.Field + ": " + e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Build は現在の入力から送信用のリクエストを1件組み立てます。
//
// image2 はプリセットが2枚入力を要求する場合にのみ含まれ、それ以外では黙って捨てられます。
// モード内に存在しないプリセット ID は「2枚目不要」として扱います。
func Build(prompt string, presetID domain.PresetID, mode domain.Mode, image1, image2 domain.EncodedImage) (domain.GenerationRequest, error) {
	if strings.TrimSpace(prompt) == "" {
		return domain.GenerationRequest{}, &ValidationError{Field: "prompt", Err: ErrEmptyPrompt}
	}

	req := domain.GenerationRequest{
		Prompt:     preset.Transform(presetID, prompt),
		UserPrompt: prompt,
		Mode:       mode,
		Preset:     presetID,
	}
	if !image1.IsEmpty() {
		req.Image1 = image1
	}

	p, _ := preset.Lookup(mode, presetID)
	if p.RequiresTwo && !image2.IsEmpty() {
		req.Image2 = image2
	}
	return req, nil
}
