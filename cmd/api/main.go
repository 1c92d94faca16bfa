package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"server/internal/http/handlers"
	"server/internal/http/httpapi"
	"server/internal/infra"
	"server/internal/infra/geoip"
	"server/internal/middleware"
	"server/internal/providers/copywriter"
	"server/internal/providers/image"
	"server/internal/storage"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()
	dbpool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer dbpool.Close()

	fileStore, err := storage.NewFileStore(cfg.StoragePath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure storage")
	}

	var lookup middleware.CountryLookup
	resolver, err := geoip.NewResolver(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip disabled")
	} else if resolver != nil {
		lookup = resolver.CountryCode
	}

	app := &handlers.App{
		Config:         cfg,
		Logger:         logger,
		SQL:            infra.NewSQLRunner(dbpool, logger),
		Copy:           newCopyWriter(cfg, logger),
		ImageProviders: newImageProviders(cfg, logger),
		Store:          fileStore,
		JWTSecret:      cfg.JWTSecret,
	}

	router := httpapi.NewRouter(app, lookup)
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}

func newCopyWriter(cfg *infra.Config, logger infra.Logger) copywriter.Writer {
	static := copywriter.NewStaticWriter()
	if cfg.CopyProvider != "gemini" || cfg.GeminiAPIKey == "" {
		if cfg.CopyProvider == "gemini" {
			logger.Warn().Msg("gemini api key missing, copy generation uses the static writer")
		}
		return static
	}
	writer, err := copywriter.NewGeminiWriter(copywriter.GeminiOptions{
		APIKey:   cfg.GeminiAPIKey,
		Model:    cfg.GeminiModel,
		BaseURL:  cfg.GeminiBaseURL,
		Fallback: static,
	})
	if err != nil {
		logger.Warn().Err(err).Msg("gemini writer unavailable, using static writer")
		return static
	}
	return writer
}

func newImageProviders(cfg *infra.Config, logger infra.Logger) map[string]image.Generator {
	providers := map[string]image.Generator{
		"static": image.NewStaticGenerator(),
	}
	if cfg.GeminiAPIKey == "" {
		return providers
	}
	gemini, err := image.NewGeminiGenerator(image.GeminiOptions{
		APIKey:  cfg.GeminiAPIKey,
		BaseURL: cfg.GeminiBaseURL,
	})
	if err != nil {
		logger.Warn().Err(err).Msg("gemini image generator unavailable")
		return providers
	}
	providers["gemini"] = gemini
	return providers
}
