package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shouni/go-http-kit/pkg/httpkit"

	"github.com/shouni/gemini-image-studio/internal/config"
	"github.com/shouni/gemini-image-studio/internal/logging"
	"github.com/shouni/gemini-image-studio/internal/server"
	"github.com/shouni/gemini-image-studio/pkg/generator"
	"github.com/shouni/gemini-image-studio/pkg/imagestore"
	"github.com/shouni/gemini-image-studio/pkg/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	logger := logging.New(cfg.Env)

	ctx := context.Background()
	model, err := generator.NewGenAIModel(ctx, cfg.APIKey)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create gemini client")
	}
	gen, err := generator.NewGeminiGenerator(model, cfg.Model,
		generator.WithCompression(cfg.CompressQuality),
		generator.WithSystemPrompt(cfg.SystemPrompt),
		generator.WithSeed(cfg.Seed),
		generator.WithLogger(logger.With().Str("component", "generator").Logger()),
	)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create generator")
	}

	files, err := storage.NewFileStore(cfg.OutputDir)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to prepare output directory")
	}

	storeOpts := []imagestore.Option{imagestore.WithHTTPClient(httpkit.New(cfg.HTTPTimeout))}
	if cfg.InputDir != "" {
		reader, err := imagestore.NewLocalReader(cfg.InputDir)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to open input directory")
		}
		storeOpts = append(storeOpts, imagestore.WithReader(reader))
	}

	app, err := server.NewApp(gen,
		server.WithPersister(files),
		server.WithImageStoreOptions(storeOpts...),
		server.WithRegistry(server.NewRegistry(cfg.SessionTTL)),
		server.WithDefaultLocale(cfg.Locale),
		server.WithLogger(logger),
	)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create app")
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           server.NewRouter(app),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info().Str("model", cfg.Model).Msgf("studio listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
