package studio

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shouni/gemini-image-studio/pkg/domain"
	"github.com/shouni/gemini-image-studio/pkg/generator"
	"github.com/shouni/gemini-image-studio/pkg/imagestore"
	"github.com/shouni/gemini-image-studio/pkg/preset"
	"github.com/shouni/gemini-image-studio/pkg/request"
)

var (
	ErrUnknownPreset = errors.New("preset is not available in the current mode")
	ErrNoResult      = errors.New("no generated result")
)

// Persister は生成画像の保存先です。storage.FileStore が満たします。
type Persister interface {
	Write(ctx context.Context, key string, data []byte) (string, error)
}

// Session は1画面分のスタジオ状態（プロンプト、モード、プリセット、入力画像、生成結果）を保持します。
type Session struct {
	id        string
	images    *imagestore.Store
	lifecycle *Controller
	persister Persister
	logger    zerolog.Logger
	now       func() time.Time

	mu            sync.Mutex
	prompt        string
	mode          domain.Mode
	preset        domain.PresetID
	locale        string
	validationMsg string
	createdAt     time.Time
}

// SessionOption は Session の任意設定です。
type SessionOption func(*Session)

// WithLogger はロガーを設定します。
func WithLogger(l zerolog.Logger) SessionOption {
	return func(s *Session) { s.logger = l }
}

// WithLocale はユーザー向けメッセージの言語を設定します。
func WithLocale(locale string) SessionOption {
	return func(s *Session) { s.locale = locale }
}

// WithPersister は PersistToDisk の保存先を設定します。
func WithPersister(p Persister) SessionOption {
	return func(s *Session) { s.persister = p }
}

// WithImageStore は入力画像ストアを差し替えます。
func WithImageStore(store *imagestore.Store) SessionOption {
	return func(s *Session) { s.images = store }
}

// WithClock は時刻の取得方法を差し替えます。
func WithClock(now func() time.Time) SessionOption {
	return func(s *Session) { s.now = now }
}

// NewSession は Create モード・free プリセットで Session を作成します。
func NewSession(id string, gen generator.ImageGenerator, opts ...SessionOption) (*Session, error) {
	if gen == nil {
		return nil, fmt.Errorf("gen (generator.ImageGenerator) is required")
	}
	s := &Session{
		id:     id,
		logger: zerolog.Nop(),
		now:    time.Now,
		mode:   domain.ModeCreate,
		preset: preset.Default(domain.ModeCreate),
		locale: DefaultLocale,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.images == nil {
		s.images = imagestore.New(imagestore.WithLogger(s.logger))
	}
	s.logger = s.logger.With().Str("session_id", id).Logger()
	s.lifecycle = NewController(gen, s.logger)
	s.lifecycle.now = s.now
	s.createdAt = s.now()
	return s, nil
}

// ID はセッション ID です。
func (s *Session) ID() string { return s.id }

// Images は入力画像ストアです。
func (s *Session) Images() *imagestore.Store { return s.images }

// Lifecycle は生成ライフサイクルです。
func (s *Session) Lifecycle() *Controller { return s.lifecycle }

// SetPrompt はプロンプトを更新します。長さの検証は送信時の空チェックのみです。
func (s *Session) SetPrompt(prompt string) {
	s.mu.Lock()
	s.prompt = prompt
	s.mu.Unlock()
}

// SetLocale はメッセージ言語を変更します。
func (s *Session) SetLocale(locale string) {
	s.mu.Lock()
	s.locale = locale
	s.mu.Unlock()
}

// SetMode はモードを切り替えます。
// プリセットはモードの既定値に戻り、エラー表示は消えます。プロンプトと入力画像は保持されます。
func (s *Session) SetMode(mode domain.Mode) error {
	if !mode.Valid() {
		return fmt.Errorf("unknown mode: %q", mode)
	}
	s.mu.Lock()
	s.mode = mode
	s.preset = preset.Default(mode)
	s.validationMsg = ""
	s.mu.Unlock()
	s.lifecycle.ClearError()
	return nil
}

// SelectPreset は現在のモードのプリセットを選択します。
func (s *Session) SelectPreset(id domain.PresetID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := preset.Lookup(s.mode, id); !ok {
		return fmt.Errorf("%w: %s (mode %s)", ErrUnknownPreset, id, s.mode)
	}
	s.preset = id
	return nil
}

// Generate は現在の入力からリクエストを組み立てて生成を開始します。
//
// 空のプロンプトは *request.ValidationError を返し、外部サービスもライフサイクルも触りません。
// 生成中は ErrGenerationInFlight を返します。
func (s *Session) Generate(ctx context.Context) (<-chan struct{}, error) {
	imgs := s.images.Snapshot()

	s.mu.Lock()
	req, err := request.Build(s.prompt, s.preset, s.mode, imgs.Image1, imgs.Image2)
	if err != nil {
		s.validationMsg = message(s.locale, msgDescribeIdea)
		s.mu.Unlock()
		return nil, err
	}
	s.mu.Unlock()

	done, err := s.lifecycle.Submit(ctx, req)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.validationMsg = ""
	s.mu.Unlock()
	return done, nil
}

// State は表示用の状態を組み立てます。
func (s *Session) State() State {
	snap := s.lifecycle.Snapshot()
	imgs := s.images.Snapshot()

	s.mu.Lock()
	defer s.mu.Unlock()

	p, _ := preset.Lookup(s.mode, s.preset)
	st := State{
		ID:             s.id,
		Prompt:         s.prompt,
		Mode:           s.mode,
		Preset:         s.preset,
		Presets:        preset.PresetsFor(s.mode),
		Status:         snap.Status,
		HasImage1:      !imgs.Image1.IsEmpty(),
		HasImage2:      !imgs.Image2.IsEmpty(),
		ShowDualUpload: s.mode == domain.ModeEdit && p.RequiresTwo,
		ShowUpload:     s.mode == domain.ModeEdit || s.preset != domain.PresetFree,
		Error:          s.validationMsg,
		CreatedAt:      s.createdAt,
	}
	if st.Error == "" && snap.Status == StatusFailed {
		st.Error = message(s.locale, msgGenerationFailed)
	}
	if snap.Result != nil {
		st.Result = &ResultView{
			Prompt:    snap.Result.Prompt,
			Mode:      snap.Result.Mode,
			Function:  snap.Result.Function,
			MimeType:  snap.Result.URL.MimeType(),
			CreatedAt: snap.Result.CreatedAt,
		}
	}
	return st
}

// State は Session の表示用ビューです。
type State struct {
	ID             string                  `json:"id"`
	Prompt         string                  `json:"prompt"`
	Mode           domain.Mode             `json:"mode"`
	Preset         domain.PresetID         `json:"preset"`
	Presets        []domain.FunctionPreset `json:"presets"`
	Status         Status                  `json:"status"`
	Error          string                  `json:"error,omitempty"`
	HasImage1      bool                    `json:"has_image1"`
	HasImage2      bool                    `json:"has_image2"`
	ShowUpload     bool                    `json:"show_upload"`
	ShowDualUpload bool                    `json:"show_dual_upload"`
	Result         *ResultView             `json:"result,omitempty"`
	CreatedAt      time.Time               `json:"created_at"`
}

// ResultView は結果のメタデータです。画像本体は別エンドポイントで返します。
type ResultView struct {
	Prompt    string          `json:"prompt"`
	Mode      domain.Mode     `json:"mode"`
	Function  domain.PresetID `json:"function"`
	MimeType  string          `json:"mime_type"`
	CreatedAt time.Time       `json:"created_at"`
}
