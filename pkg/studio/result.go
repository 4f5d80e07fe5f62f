package studio

import (
	"context"
	"fmt"
	"time"

	"github.com/shouni/gemini-image-studio/pkg/domain"
	"github.com/shouni/gemini-image-studio/pkg/imagestore"
)

// DownloadName は保存用のタイムスタンプ付きファイル名を返します。
func DownloadName(result *domain.GeneratedResult, at time.Time) string {
	return fmt.Sprintf("ai-studio-%d%s", at.UnixMilli(), extensionFor(result.URL.MimeType()))
}

func extensionFor(mimeType string) string {
	switch mimeType {
	case "image/jpeg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	default:
		return ".png"
	}
}

// Result は直近の生成結果を返します。
func (s *Session) Result() *domain.GeneratedResult {
	return s.lifecycle.Result()
}

// PersistToDisk は結果画像をタイムスタンプ付きのファイル名で保存します。
// ベストエフォートで、失敗はログに残すだけです。保存を試みたファイル名を返します。
func (s *Session) PersistToDisk(ctx context.Context) string {
	result := s.lifecycle.Result()
	if result == nil {
		return ""
	}
	name := DownloadName(result, s.now())
	if s.persister == nil {
		return name
	}

	_, data, err := result.URL.Decode()
	if err != nil {
		s.logger.Warn().Err(err).Str("file", name).Msg("result image could not be decoded for saving")
		return name
	}
	key, err := s.persister.Write(ctx, name, data)
	if err != nil {
		s.logger.Warn().Err(err).Str("file", name).Msg("result image could not be saved")
		return name
	}
	s.logger.Info().Str("key", key).Msg("result image saved")
	return name
}

// ReEdit は結果をスロット1に戻して編集を再開します。
// モードは Edit、プリセットは retouch になり、現在の結果は破棄されます。
func (s *Session) ReEdit() error {
	result := s.lifecycle.Result()
	if result == nil {
		return ErrNoResult
	}
	if err := s.images.Set(imagestore.Slot1, result.URL); err != nil {
		return err
	}

	s.mu.Lock()
	s.mode = domain.ModeEdit
	s.preset = domain.PresetRetouch
	s.mu.Unlock()

	s.lifecycle.ClearResult()
	return nil
}
