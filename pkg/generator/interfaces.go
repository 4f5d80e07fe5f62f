package generator

import (
	"context"

	"github.com/shouni/gemini-image-studio/pkg/domain"
)

// ImageGenerator はライフサイクル層が利用する外部画像生成サービスの窓口です。
type ImageGenerator interface {
	// Generate はプロンプトと0〜2枚の入力画像から画像を1枚生成します。
	// 画像を含まない応答はエラーとして扱います。
	Generate(ctx context.Context, req domain.GenerationRequest) (*domain.ImageResponse, error)
}
