package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shouni/gemini-image-studio/pkg/generator"
	"github.com/shouni/gemini-image-studio/pkg/imagestore"
	"github.com/shouni/gemini-image-studio/pkg/studio"
)

// App は HTTP ハンドラーが共有する依存関係です。
type App struct {
	gen           generator.ImageGenerator
	sessions      *Registry
	persister     studio.Persister
	storeOpts     []imagestore.Option
	logger        zerolog.Logger
	defaultLocale string
}

// Option は App の任意設定です。
type Option func(*App)

// WithPersister はダウンロード時の保存先を設定します。
func WithPersister(p studio.Persister) Option {
	return func(a *App) { a.persister = p }
}

// WithImageStoreOptions は各セッションの入力画像ストアに渡す設定です。
func WithImageStoreOptions(opts ...imagestore.Option) Option {
	return func(a *App) { a.storeOpts = append(a.storeOpts, opts...) }
}

// WithLogger はロガーを設定します。
func WithLogger(l zerolog.Logger) Option {
	return func(a *App) { a.logger = l }
}

// WithDefaultLocale は言語指定のないリクエストに使うロケールです。
func WithDefaultLocale(locale string) Option {
	return func(a *App) { a.defaultLocale = locale }
}

// WithRegistry はセッションレジストリを差し替えます。
func WithRegistry(r *Registry) Option {
	return func(a *App) { a.sessions = r }
}

// NewApp は App を初期化します。
func NewApp(gen generator.ImageGenerator, opts ...Option) (*App, error) {
	if gen == nil {
		return nil, fmt.Errorf("gen (generator.ImageGenerator) is required")
	}
	a := &App{
		gen:           gen,
		logger:        zerolog.Nop(),
		defaultLocale: studio.DefaultLocale,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.sessions == nil {
		a.sessions = NewRegistry(0)
	}
	return a, nil
}

func (a *App) newSession(id, locale string) (*studio.Session, error) {
	logger := a.logger.With().Str("component", "session").Logger()
	storeOpts := append([]imagestore.Option{imagestore.WithLogger(logger)}, a.storeOpts...)
	opts := []studio.SessionOption{
		studio.WithLogger(logger),
		studio.WithLocale(locale),
		studio.WithImageStore(imagestore.New(storeOpts...)),
	}
	if a.persister != nil {
		opts = append(opts, studio.WithPersister(a.persister))
	}
	return studio.NewSession(id, a.gen, opts...)
}

// session は URL の {id} からセッションを引き、リクエストのロケールを反映します。
func (a *App) session(w http.ResponseWriter, r *http.Request) (*studio.Session, bool) {
	s, err := a.sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		a.error(w, http.StatusNotFound, "not_found", err.Error())
		return nil, false
	}
	s.SetLocale(LocaleFromContext(r.Context()))
	return s, true
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (a *App) error(w http.ResponseWriter, code int, kind, msg string) {
	a.json(w, code, errorBody{Error: kind, Message: msg})
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid json body: %w", err)
	}
	return nil
}
