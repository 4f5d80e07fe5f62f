package generator

import (
	"bytes"
	"context"
	"fmt"

	"github.com/shouni/gemini-image-studio/pkg/utils"
	"github.com/shouni/go-gemini-client/pkg/gemini"
	"google.golang.org/genai"
)

// GenAIModel は google.golang.org/genai を直接使う gemini.GenerativeModel の実装です。
// 認証情報はホスト環境の設定から渡され、ユーザー入力は受け付けません。
type GenAIModel struct {
	client *genai.Client
}

// NewGenAIModel は Gemini API バックエンドのクライアントを作成します。
func NewGenAIModel(ctx context.Context, apiKey string) (*GenAIModel, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("apiKey is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("genaiクライアントの初期化に失敗しました: %w", err)
	}
	return &GenAIModel{client: client}, nil
}

// GenerateContent はテキストのみのプロンプトで生成します。
func (m *GenAIModel) GenerateContent(ctx context.Context, model string, prompt string) (*gemini.Response, error) {
	resp, err := m.client.Models.GenerateContent(ctx, model, genai.Text(prompt), nil)
	if err != nil {
		return nil, err
	}
	return &gemini.Response{RawResponse: resp}, nil
}

// GenerateWithParts はテキストと画像パーツを1つのユーザーコンテンツとして送信します。
func (m *GenAIModel) GenerateWithParts(ctx context.Context, model string, parts []*genai.Part, opts gemini.GenerateOptions) (*gemini.Response, error) {
	var config *genai.GenerateContentConfig
	if opts.SystemPrompt != "" || opts.Seed != nil {
		config = &genai.GenerateContentConfig{Seed: utils.Int32Seed(opts.Seed)}
		if opts.SystemPrompt != "" {
			config.SystemInstruction = genai.NewContentFromText(opts.SystemPrompt, genai.RoleUser)
		}
	}

	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}
	resp, err := m.client.Models.GenerateContent(ctx, model, contents, config)
	if err != nil {
		return nil, err
	}
	return &gemini.Response{RawResponse: resp}, nil
}

// UploadFile は File API にアップロードし、参照用 URI と削除用の名前を返します。
func (m *GenAIModel) UploadFile(ctx context.Context, data []byte, mimeType, displayName string) (string, string, error) {
	file, err := m.client.Files.Upload(ctx, bytes.NewReader(data), &genai.UploadFileConfig{
		MIMEType:    mimeType,
		DisplayName: displayName,
	})
	if err != nil {
		return "", "", err
	}
	return file.URI, file.Name, nil
}

// DeleteFile は File API 上のファイル（files/xxxx）を削除します。
func (m *GenAIModel) DeleteFile(ctx context.Context, name string) error {
	_, err := m.client.Files.Delete(ctx, name, nil)
	return err
}

// GetFile は File API 上のファイル情報を取得します。
func (m *GenAIModel) GetFile(ctx context.Context, name string) (*genai.File, error) {
	return m.client.Files.Get(ctx, name, nil)
}

var _ gemini.GenerativeModel = (*GenAIModel)(nil)
