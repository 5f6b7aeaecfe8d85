// Package bootstrap provides dependency initialization for the audiobook API.
package bootstrap

import (
	"fmt"
	"log/slog"

	"github.com/icewall905/audiobooker/internal/audio"
	"github.com/icewall905/audiobooker/internal/config"
	"github.com/icewall905/audiobooker/internal/encoder"
	"github.com/icewall905/audiobooker/internal/job"
	"github.com/icewall905/audiobooker/internal/narrator"
	"github.com/icewall905/audiobooker/internal/storage"
)

// Dependencies holds all initialized dependencies for the HTTP server.
type Dependencies struct {
	JobService *job.Service
}

// NewDependencies creates and initializes all dependencies for the application.
func NewDependencies(cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	store, err := initStorage(cfg, logger)
	if err != nil {
		return nil, err
	}

	voice, err := NewNarrator(cfg, logger)
	if err != nil {
		return nil, err
	}

	repo := job.NewMemoryRepository()

	svc := job.NewService(repo, voice,
		job.WithStorage(store),
		job.WithEncoder(encoder.NewFFmpeg(cfg.FFmpegPath)),
		job.WithSettings(job.Settings{
			OutputDir:       cfg.OutputDir,
			PauseSeconds:    cfg.ChapterPauseSec,
			SplitPerChapter: cfg.SplitPerChapter,
			MaxChunkLength:  cfg.MaxChunkLength,
			EncodeMP3:       cfg.EncodeMP3,
		}),
		job.WithLogger(logger),
	)

	return &Dependencies{
		JobService: svc,
	}, nil
}

// NewNarrator creates the TTS backend selected by configuration.
func NewNarrator(cfg *config.Config, logger *slog.Logger) (narrator.Narrator, error) {
	switch cfg.NarratorProvider {
	case config.ProviderChatterbox:
		opts := []narrator.ChatterboxOption{
			narrator.WithStyle(cfg.Exaggeration, cfg.CFGWeight),
		}
		if cfg.VoiceRefPath != "" {
			ref, err := audio.LoadVoiceRef(cfg.VoiceRefPath)
			if err != nil {
				return nil, fmt.Errorf("load voice reference: %w", err)
			}
			opts = append(opts, narrator.WithVoiceRef(ref))
			logger.Info("voice reference loaded",
				slog.String("path", cfg.VoiceRefPath),
			)
		}
		c, err := narrator.NewChatterbox(cfg.ChatterboxURL, opts...)
		if err != nil {
			return nil, fmt.Errorf("create chatterbox narrator: %w", err)
		}
		logger.Info("chatterbox narrator configured",
			slog.String("url", cfg.ChatterboxURL),
			slog.Float64("exaggeration", cfg.Exaggeration),
			slog.Float64("cfg_weight", cfg.CFGWeight),
		)
		return c, nil

	case config.ProviderYandex:
		y, err := narrator.NewYandex(narrator.YandexConfig{
			APIKey:   cfg.YandexAPIKey,
			FolderID: cfg.YandexFolderID,
			Voice:    cfg.YandexVoice,
		})
		if err != nil {
			return nil, fmt.Errorf("create yandex narrator: %w", err)
		}
		logger.Info("yandex narrator configured",
			slog.String("voice", cfg.YandexVoice),
		)
		return y, nil

	default:
		return nil, fmt.Errorf("%w: %s", config.ErrUnknownProvider, cfg.NarratorProvider)
	}
}

// initStorage creates the appropriate storage backend based on configuration.
func initStorage(cfg *config.Config, logger *slog.Logger) (storage.Storage, error) {
	if cfg.S3Enabled() {
		s3Cfg := storage.S3Config{
			Bucket:          cfg.S3Bucket,
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.AWSAccessKeyID,
			SecretAccessKey: cfg.AWSSecretAccessKey,
		}
		s3Store, err := storage.NewS3Storage(cfg.TempDir, s3Cfg)
		if err != nil {
			return nil, fmt.Errorf("create S3 storage: %w", err)
		}
		logger.Info("S3 storage configured",
			slog.String("bucket", cfg.S3Bucket),
			slog.String("region", cfg.S3Region),
		)
		return s3Store, nil
	}

	localStore, err := storage.NewLocalStorage(cfg.TempDir)
	if err != nil {
		return nil, fmt.Errorf("create local storage: %w", err)
	}
	logger.Info("local storage configured",
		slog.String("temp_dir", cfg.TempDir),
	)
	return localStore, nil
}
