package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter は API のルーティングを組み立てます。
func NewRouter(app *App) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer, RequestLogger(app.logger), Locale(app.defaultLocale))

	r.Get("/v1/healthz", app.Health)
	r.Get("/v1/presets", app.ListPresets)

	r.Route("/v1/sessions", func(r chi.Router) {
		r.Post("/", app.CreateSession)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", app.GetSession)
			r.Delete("/", app.DeleteSession)
			r.Put("/prompt", app.SetPrompt)
			r.Put("/mode", app.SetMode)
			r.Put("/preset", app.SelectPreset)
			r.Post("/images", app.UploadImages)
			r.Post("/images/{slot}/uri", app.LoadImageURI)
			r.Delete("/images/{slot}", app.ClearImage)
			r.Post("/generate", app.Generate)
			r.Get("/result/image", app.ResultImage)
			r.Get("/result/download", app.DownloadResult)
			r.Post("/result/edit", app.ReEdit)
		})
	})

	return r
}
