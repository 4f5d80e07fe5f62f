package generator

import (
	"errors"
	"fmt"
)

var (
	ErrNoCandidates = errors.New("Geminiからの有効な応答がありませんでした")
	ErrNoImage      = errors.New("画像データが見つかりませんでした")
	ErrInvalidInput = errors.New("入力画像を変換できませんでした")
)

// BlockedError は安全フィルター等で生成が中断されたことを表します。
type BlockedError struct {
	Reason string
}

func (e *BlockedError) Error() string {
	return fmt.Sprintf("画像生成が異常終了しました (reason: %s)", e.Reason)
}

// ServiceError は外部サービス呼び出しの失敗です。詳細はログ用で、ユーザーには表示しません。
type ServiceError struct {
	Model string
	Err   error
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("Gemini画像生成エラー (model: %s): %v", e.Model, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}
