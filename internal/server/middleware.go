package server

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/shouni/gemini-image-studio/pkg/studio"
)

type localeContextKey struct{}

// Locale はリクエストのロケールを決めてコンテキストに入れます。
// X-Locale を優先し、なければ Accept-Language、どちらもなければ fallback です。
func Locale(fallback string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			locale := fallback
			if v := strings.TrimSpace(r.Header.Get("X-Locale")); v != "" {
				locale = studio.MatchLocale(v, fallback)
			} else if v := r.Header.Get("Accept-Language"); v != "" {
				locale = studio.MatchLocale(v, fallback)
			}
			ctx := context.WithValue(r.Context(), localeContextKey{}, locale)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// LocaleFromContext はコンテキストのロケールを返します。
func LocaleFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(localeContextKey{}).(string); ok {
		return v
	}
	return studio.DefaultLocale
}

// RequestLogger はアクセスログを zerolog に出力します。
func RequestLogger(l zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			l.Info().
				Str("request_id", middleware.GetReqID(r.Context())).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Int("bytes", ww.BytesWritten()).
				Dur("elapsed", time.Since(start)).
				Msg("http request")
		})
	}
}
