package generator

import (
	"fmt"

	"github.com/shouni/gemini-image-studio/pkg/domain"
	"github.com/shouni/gemini-image-studio/pkg/imgutil"
	"github.com/shouni/go-gemini-client/pkg/gemini"
	"google.golang.org/genai"
)

// toParts はリクエストをテキストパーツ + 画像パーツ（InlineData）の列に変換します。
func (g *GeminiGenerator) toParts(req domain.GenerationRequest) ([]*genai.Part, error) {
	parts := []*genai.Part{{Text: req.Prompt}}

	for i, img := range req.Images() {
		mimeType, data, err := img.Decode()
		if err != nil {
			return nil, fmt.Errorf("%w (index %d): %v", ErrInvalidInput, i, err)
		}
		if g.compressQuality > 0 {
			if compressed, compressedType, err := imgutil.Compress(data, g.compressQuality); err == nil {
				data, mimeType = compressed, compressedType
			}
		}
		parts = append(parts, &genai.Part{InlineData: &genai.Blob{MIMEType: mimeType, Data: data}})
	}
	return parts, nil
}

// parseToResponse は最初の候補から最初の画像パーツを取り出します。
func parseToResponse(resp *gemini.Response) (*domain.ImageResponse, error) {
	if resp == nil || resp.RawResponse == nil {
		return nil, ErrNoCandidates
	}
	raw := resp.RawResponse
	if raw.PromptFeedback != nil && raw.PromptFeedback.BlockReason != "" {
		return nil, &BlockedError{Reason: string(raw.PromptFeedback.BlockReason)}
	}
	if len(raw.Candidates) == 0 || raw.Candidates[0] == nil {
		return nil, ErrNoCandidates
	}

	// 現在の仕様では、最初の候補 (Candidate) のみを利用する。
	candidate := raw.Candidates[0]
	if candidate.Content != nil {
		for _, part := range candidate.Content.Parts {
			if part != nil && part.InlineData != nil && len(part.InlineData.Data) > 0 {
				return &domain.ImageResponse{
					Data:     part.InlineData.Data,
					MimeType: part.InlineData.MIMEType,
				}, nil
			}
		}
	}

	switch candidate.FinishReason {
	case "", genai.FinishReasonUnspecified, genai.FinishReasonStop:
		return nil, ErrNoImage
	}
	return nil, &BlockedError{Reason: string(candidate.FinishReason)}
}
