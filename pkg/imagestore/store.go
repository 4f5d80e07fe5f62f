package imagestore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/shouni/gemini-image-studio/pkg/domain"
	"github.com/shouni/go-http-kit/pkg/httpkit"
	"github.com/shouni/go-remote-io/pkg/remoteio"
)

// MaxImageBytes はアップロード1枚あたりの上限です（10MiB）。
const MaxImageBytes = 10 << 20

var (
	ErrInvalidSlot   = errors.New("invalid image slot")
	ErrEmptyImage    = errors.New("image is empty")
	ErrImageTooLarge = errors.New("image exceeds size limit")
	ErrNotImage      = errors.New("content is not an image")
	ErrNoFetcher     = errors.New("no fetcher configured for uri")
	ErrUnsafeURL     = errors.New("unsafe url")
)

// HTTPClient は参照画像の取得に使う HTTP クライアントです。*httpkit.Client が満たします。
type HTTPClient interface {
	FetchBytes(ctx context.Context, url string) ([]byte, error)
	IsSafeURL(urlStr string) (bool, error)
}

var _ HTTPClient = (*httpkit.Client)(nil)

// Slot は入力画像の格納位置です。SlotDefault は Slot1 と同じ扱いです。
type Slot int

const (
	SlotDefault Slot = 0
	Slot1       Slot = 1
	Slot2       Slot = 2
)

// ParseSlot は "1" / "2" / "" を Slot に変換します。
func ParseSlot(s string) (Slot, error) {
	switch strings.TrimSpace(s) {
	case "", "0", "default":
		return SlotDefault, nil
	case "1":
		return Slot1, nil
	case "2":
		return Slot2, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidSlot, s)
}

func (s Slot) index() (int, error) {
	switch s {
	case SlotDefault, Slot1:
		return 0, nil
	case Slot2:
		return 1, nil
	}
	return 0, fmt.Errorf("%w: %d", ErrInvalidSlot, int(s))
}

// Images は2つのスロットの内容です。
type Images struct {
	Image1 domain.EncodedImage
	Image2 domain.EncodedImage
}

// Store は最大2枚の入力画像を保持します。
// スロット1とスロット2への読み込みは並行に行われても互いに独立して反映されます。
type Store struct {
	mu         sync.RWMutex
	slots      [2]domain.EncodedImage
	httpClient HTTPClient
	reader     remoteio.InputReader
	logger     zerolog.Logger
}

// Option は Store の任意設定です。
type Option func(*Store)

// WithHTTPClient は http(s) URI から画像を取得するクライアントを設定します。
func WithHTTPClient(c HTTPClient) Option {
	return func(s *Store) { s.httpClient = c }
}

// WithReader は http(s) 以外の URI（ローカルパスや gs:// など）を開くリーダーを設定します。
func WithReader(r remoteio.InputReader) Option {
	return func(s *Store) { s.reader = r }
}

// WithLogger はロガーを設定します。
func WithLogger(l zerolog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// New は空の Store を作成します。
func New(opts ...Option) *Store {
	s := &Store{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Set はスロットの内容を上書きします（マージはしません）。
func (s *Store) Set(slot Slot, img domain.EncodedImage) error {
	i, err := slot.index()
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.slots[i] = img
	s.mu.Unlock()
	return nil
}

// Clear はスロットを空にします。
func (s *Store) Clear(slot Slot) error {
	return s.Set(slot, "")
}

// Get はスロットの内容を返します。
func (s *Store) Get(slot Slot) domain.EncodedImage {
	i, err := slot.index()
	if err != nil {
		return ""
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.slots[i]
}

// Snapshot は両スロットの現在値を返します。
func (s *Store) Snapshot() Images {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Images{Image1: s.slots[0], Image2: s.slots[1]}
}

// Decode はファイル全体を読み込み、MIME タイプ付きのテキスト表現に変換します。
func Decode(r io.Reader) (domain.EncodedImage, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxImageBytes+1))
	if err != nil {
		return "", fmt.Errorf("画像の読み込みに失敗しました: %w", err)
	}
	return encodeBytes(data)
}

func encodeBytes(data []byte) (domain.EncodedImage, error) {
	if len(data) == 0 {
		return "", ErrEmptyImage
	}
	if len(data) > MaxImageBytes {
		return "", ErrImageTooLarge
	}
	mimeType := http.DetectContentType(data)
	if !strings.HasPrefix(mimeType, "image/") {
		return "", fmt.Errorf("%w: %s", ErrNotImage, mimeType)
	}
	return domain.EncodeImage(mimeType, data), nil
}

// Load はファイルを読み込んでスロットに格納します。
// r が nil（ファイル選択のキャンセル）の場合や読み込みに失敗した場合、Store は変更されません。
// 戻り値はスロットが更新されたかどうかです。
func (s *Store) Load(ctx context.Context, slot Slot, r io.Reader) bool {
	if r == nil {
		return false
	}
	if _, err := slot.index(); err != nil {
		s.logger.Debug().Err(err).Msg("image load skipped")
		return false
	}
	img, err := Decode(r)
	if err != nil {
		s.logger.Debug().Err(err).Int("slot", int(slot)).Msg("image decode failed, store unchanged")
		return false
	}
	if ctx.Err() != nil {
		return false
	}
	_ = s.Set(slot, img)
	return true
}

// LoadURI は URI から参照画像を取得してスロットに格納します。
// http(s) は SSRF 検証の上 HTTP クライアントで、それ以外は InputReader で開きます。
// 失敗時の扱いは Load と同じです。
func (s *Store) LoadURI(ctx context.Context, slot Slot, uri string) bool {
	data, err := s.fetch(ctx, uri)
	if err != nil {
		s.logger.Debug().Err(err).Str("uri", uri).Msg("reference image fetch failed, store unchanged")
		return false
	}
	img, err := encodeBytes(data)
	if err != nil {
		s.logger.Debug().Err(err).Str("uri", uri).Msg("reference image rejected, store unchanged")
		return false
	}
	if err := s.Set(slot, img); err != nil {
		s.logger.Debug().Err(err).Msg("image load skipped")
		return false
	}
	return true
}

func (s *Store) fetch(ctx context.Context, uri string) ([]byte, error) {
	if strings.HasPrefix(uri, "http://") || strings.HasPrefix(uri, "https://") {
		if s.httpClient == nil {
			return nil, ErrNoFetcher
		}
		if safe, err := s.httpClient.IsSafeURL(uri); err != nil || !safe {
			return nil, fmt.Errorf("%w: %s: %v", ErrUnsafeURL, uri, err)
		}
		return s.httpClient.FetchBytes(ctx, uri)
	}

	if s.reader == nil {
		return nil, ErrNoFetcher
	}
	rc, err := s.reader.Open(ctx, uri)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, io.LimitReader(rc, MaxImageBytes+1)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
