package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"server/internal/domain/jsoncfg"
	"server/internal/infra"
	"server/internal/providers/image"
	"server/internal/sqlinline"
	"server/internal/storage"

	"github.com/jackc/pgx/v5"
)

const (
	statusDone   = "DONE"
	statusFailed = "FAILED"

	jobPollInterval = 2 * time.Second
)

type imageJob struct {
	ID          string
	UserID      string
	SessionID   string
	Prompt      string
	Quantity    int
	AspectRatio string
	Provider    string
}

type jobWorker struct {
	ctx       context.Context
	runner    *infra.SQLRunner
	logger    infra.Logger
	providers map[string]image.Generator
	fallback  string
	store     *storage.FileStore
}

var errNoJobAvailable = errors.New("no job available")

func main() {
	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: db connection failed")
	}
	defer pool.Close()

	runner := infra.NewSQLRunner(pool, logger)

	fileStore, err := storage.NewFileStore(cfg.StoragePath)
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: failed to configure storage")
	}

	providers := map[string]image.Generator{
		"static": image.NewStaticGenerator(),
	}
	if cfg.GeminiAPIKey != "" {
		gemini, err := image.NewGeminiGenerator(image.GeminiOptions{
			APIKey:  cfg.GeminiAPIKey,
			BaseURL: cfg.GeminiBaseURL,
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("worker: failed to configure gemini generator")
		}
		providers["gemini"] = gemini
	} else {
		logger.Warn().Msg("worker: gemini api key missing, image jobs fall back to static assets")
	}
	fallback := cfg.ImageProvider
	if _, ok := providers[fallback]; !ok {
		fallback = "static"
	}

	worker := &jobWorker{
		ctx:       ctx,
		runner:    runner,
		logger:    logger,
		providers: providers,
		fallback:  fallback,
		store:     fileStore,
	}

	if err := worker.Run(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal().Err(err).Msg("worker: stopped with error")
	}
	logger.Info().Msg("worker: stopped")
}

func (w *jobWorker) Run() error {
	w.logger.Info().Msg("worker: started")
	for {
		select {
		case <-w.ctx.Done():
			return w.ctx.Err()
		default:
		}

		j, err := w.claimJob()
		if err != nil {
			if !errors.Is(err, errNoJobAvailable) {
				w.logger.Error().Err(err).Msg("worker: failed to claim job")
			}
			select {
			case <-w.ctx.Done():
				return w.ctx.Err()
			case <-time.After(jobPollInterval):
			}
			continue
		}

		w.handleJob(j)
	}
}

func (w *jobWorker) claimJob() (imageJob, error) {
	row := w.runner.QueryRow(w.ctx, sqlinline.QClaimImageJob)
	var j imageJob
	if err := row.Scan(&j.ID, &j.UserID, &j.SessionID, &j.Prompt, &j.Quantity, &j.AspectRatio, &j.Provider); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return imageJob{}, errNoJobAvailable
		}
		return imageJob{}, err
	}
	return j, nil
}

func (w *jobWorker) handleJob(j imageJob) {
	w.logger.Info().Str("job_id", j.ID).Str("provider", j.Provider).Msg("worker: picked job")
	status := statusFailed
	if err := w.processJob(j); err != nil {
		w.logger.Error().Err(err).Str("job_id", j.ID).Msg("worker: job failed")
	} else {
		status = statusDone
	}
	if _, err := w.runner.Exec(w.ctx, sqlinline.QUpdateJobStatus, j.ID, status); err != nil {
		w.logger.Error().Err(err).Str("job_id", j.ID).Msg("worker: update status failed")
	}
}

func (w *jobWorker) processJob(j imageJob) error {
	generator, provider := w.selectProvider(j.Provider)
	assets, err := generator.Generate(w.ctx, image.GenerateRequest{
		Prompt:      j.Prompt,
		Quantity:    j.Quantity,
		AspectRatio: j.AspectRatio,
		Provider:    provider,
		RequestID:   j.ID,
	})
	if err != nil {
		return fmt.Errorf("image generation: %w", err)
	}
	stored := 0
	for idx, asset := range assets {
		key, size := w.persistAsset(j.ID, asset, idx)
		if key == "" {
			w.logger.Error().Str("job_id", j.ID).Int("index", idx).Msg("worker: asset has no storage key")
			continue
		}
		props := map[string]any{"provider": provider}
		if asset.URL != "" && asset.URL != key {
			props["source_url"] = asset.URL
		}
		if _, err := w.runner.Exec(
			w.ctx,
			sqlinline.QInsertAsset,
			j.UserID,
			j.ID,
			key,
			asset.Format,
			size,
			asset.Width,
			asset.Height,
			j.AspectRatio,
			jsoncfg.MustMarshal(props),
		); err != nil {
			w.logger.Error().Err(err).Str("job_id", j.ID).Msg("worker: insert asset failed")
			continue
		}
		stored++
	}
	if stored == 0 {
		return errors.New("no assets stored")
	}
	return nil
}

func (w *jobWorker) selectProvider(requested string) (image.Generator, string) {
	if generator, ok := w.providers[requested]; ok {
		return generator, requested
	}
	return w.providers[w.fallback], w.fallback
}

func (w *jobWorker) persistAsset(jobID string, asset image.Asset, index int) (string, int64) {
	if len(asset.Data) == 0 {
		// Remote-hosted asset: keep the URL as the key.
		return strings.TrimSpace(asset.URL), 0
	}
	key := fmt.Sprintf("generated/%s/image-%02d%s", jobID, index+1, extensionForMIME(asset.Format))
	savedKey, err := w.store.Write(w.ctx, key, asset.Data)
	if err != nil {
		w.logger.Warn().Err(err).Str("job_id", jobID).Msg("worker: persist asset failed")
		return "", 0
	}
	return savedKey, int64(len(asset.Data))
}

func extensionForMIME(mime string) string {
	switch strings.ToLower(strings.TrimSpace(mime)) {
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	default:
		return ".png"
	}
}
