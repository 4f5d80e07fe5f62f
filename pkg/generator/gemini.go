package generator

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/shouni/gemini-image-studio/pkg/domain"
	"github.com/shouni/go-gemini-client/pkg/gemini"
)

// DefaultModel は画像生成・編集に使うモデルです。
const DefaultModel = "gemini-2.5-flash-image"

// GeminiGenerator は Gemini の generateContent を使って画像を生成・編集します。
type GeminiGenerator struct {
	aiClient        gemini.GenerativeModel
	model           string
	systemPrompt    string
	compressQuality int
	seed            *int64
	logger          zerolog.Logger
}

// Option は GeminiGenerator の任意設定です。
type Option func(*GeminiGenerator)

// WithCompression は入力画像を指定品質の JPEG に圧縮してから送信します。0 で無効です。
func WithCompression(quality int) Option {
	return func(g *GeminiGenerator) { g.compressQuality = quality }
}

// WithSystemPrompt は全リクエストに付与するシステムプロンプトを設定します。
func WithSystemPrompt(p string) Option {
	return func(g *GeminiGenerator) { g.systemPrompt = p }
}

// WithSeed は生成の乱数シードを固定します。nil なら毎回ランダムです。
func WithSeed(seed *int64) Option {
	return func(g *GeminiGenerator) { g.seed = seed }
}

// WithLogger はロガーを設定します。
func WithLogger(l zerolog.Logger) Option {
	return func(g *GeminiGenerator) { g.logger = l }
}

// NewGeminiGenerator は GeminiGenerator を初期化するのだ。
func NewGeminiGenerator(aiClient gemini.GenerativeModel, model string, opts ...Option) (*GeminiGenerator, error) {
	if aiClient == nil {
		return nil, fmt.Errorf("aiClient (gemini.GenerativeModel) is required")
	}
	if model == "" {
		model = DefaultModel
	}
	g := &GeminiGenerator{
		aiClient: aiClient,
		model:    model,
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Generate はリクエストを Gemini API の形式に変換して実行します。
func (g *GeminiGenerator) Generate(ctx context.Context, req domain.GenerationRequest) (*domain.ImageResponse, error) {
	parts, err := g.toParts(req)
	if err != nil {
		return nil, &ServiceError{Model: g.model, Err: err}
	}

	g.logger.Info().
		Str("model", g.model).
		Str("mode", req.Mode.String()).
		Str("preset", req.Preset.String()).
		Int("images", len(parts)-1).
		Msg("Geminiに画像生成をリクエストします")

	resp, err := g.aiClient.GenerateWithParts(ctx, g.model, parts, gemini.GenerateOptions{
		SystemPrompt: g.systemPrompt,
		Seed:         g.seed,
	})
	if err != nil {
		return nil, &ServiceError{Model: g.model, Err: err}
	}

	out, err := parseToResponse(resp)
	if err != nil {
		return nil, &ServiceError{Model: g.model, Err: err}
	}
	return out, nil
}

var _ ImageGenerator = (*GeminiGenerator)(nil)
