package domain

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"
)

// DefaultImageMimeType は MIME 情報を持たない素の base64 に割り当てる型です。
const DefaultImageMimeType = "image/png"

// EncodedImage は MIME タイプを埋め込んだテキスト表現の画像（data URI）です。
//
//	data:image/png;base64,iVBORw0...
type EncodedImage string

// EncodeImage はバイナリを data URI 形式に変換します。
func EncodeImage(mimeType string, data []byte) EncodedImage {
	if mimeType == "" {
		mimeType = DefaultImageMimeType
	}
	return EncodedImage("data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data))
}

// IsEmpty は値が空かどうかを返します。
func (e EncodedImage) IsEmpty() bool {
	return strings.TrimSpace(string(e)) == ""
}

// MimeType は埋め込まれた MIME タイプを返します。
// ヘッダーを持たない場合は DefaultImageMimeType です。
func (e EncodedImage) MimeType() string {
	header, _, ok := strings.Cut(string(e), ",")
	if !ok || !strings.HasPrefix(header, "data:") {
		return DefaultImageMimeType
	}
	mimeType := strings.TrimPrefix(header, "data:")
	mimeType, _, _ = strings.Cut(mimeType, ";")
	if mimeType == "" {
		return DefaultImageMimeType
	}
	return mimeType
}

// Decode は MIME タイプと生のバイナリを取り出します。
// カンマを含まない値は base64 本体のみとして扱います。
func (e EncodedImage) Decode() (string, []byte, error) {
	if e.IsEmpty() {
		return "", nil, fmt.Errorf("encoded image is empty")
	}
	payload := string(e)
	if _, body, ok := strings.Cut(payload, ","); ok && body != "" {
		payload = body
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("base64デコード失敗: %w", err)
	}
	return e.MimeType(), data, nil
}

// GenerationRequest は送信直前に組み立てられる一時的な生成要求です。永続化はしません。
type GenerationRequest struct {
	Prompt     string // プリセット変換後の最終プロンプト
	UserPrompt string // ユーザーが入力したままのプロンプト
	Mode       Mode
	Preset     PresetID
	Image1     EncodedImage
	Image2     EncodedImage
}

// Images は空でない入力画像を順番通りに返します。
func (r GenerationRequest) Images() []EncodedImage {
	var images []EncodedImage
	for _, img := range []EncodedImage{r.Image1, r.Image2} {
		if !img.IsEmpty() {
			images = append(images, img)
		}
	}
	return images
}

// ImageResponse は外部サービスから返された画像データです。
type ImageResponse struct {
	Data     []byte
	MimeType string
}

// GeneratedResult は生成成功時に作られる表示用の結果です。メモリ上に常に最大1件です。
type GeneratedResult struct {
	URL       EncodedImage `json:"url"`
	Prompt    string       `json:"prompt"`
	Mode      Mode         `json:"mode"`
	Function  PresetID     `json:"function"`
	CreatedAt time.Time    `json:"created_at"`
}
