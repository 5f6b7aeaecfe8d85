// Package config provides configuration loading from environment variables.
package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/sethvargo/go-envconfig"
)

// Narrator provider names accepted in NARRATOR_PROVIDER.
const (
	ProviderChatterbox = "chatterbox"
	ProviderYandex     = "yandex"
)

// Static errors for configuration validation.
var (
	// ErrChatterboxURLRequired is returned when CHATTERBOX_URL is not set for the chatterbox provider.
	ErrChatterboxURLRequired = errors.New("config: CHATTERBOX_URL is required for the chatterbox provider")
	// ErrYandexCredentialsRequired is returned when the yandex provider is missing its API key or folder ID.
	ErrYandexCredentialsRequired = errors.New("config: YANDEX_API_KEY and YANDEX_FOLDER_ID are required for the yandex provider")
	// ErrUnknownProvider is returned when NARRATOR_PROVIDER names no known adapter.
	ErrUnknownProvider = errors.New("config: unknown narrator provider")
)

// Config holds all configuration for the application.
type Config struct {
	// Server settings
	Port int `env:"PORT, default=8080" json:"port"`

	// Narrator settings
	NarratorProvider string  `env:"NARRATOR_PROVIDER, default=chatterbox" json:"narrator_provider"`
	ChatterboxURL    string  `env:"CHATTERBOX_URL" json:"chatterbox_url,omitempty"`
	YandexAPIKey     string  `env:"YANDEX_API_KEY" json:"-"` // Masked in JSON
	YandexFolderID   string  `env:"YANDEX_FOLDER_ID" json:"yandex_folder_id,omitempty"`
	YandexVoice      string  `env:"YANDEX_VOICE, default=marina" json:"yandex_voice"`
	VoiceRefPath     string  `env:"VOICE_REF_PATH" json:"voice_ref_path,omitempty"`
	Exaggeration     float64 `env:"EXAGGERATION, default=0.5" json:"exaggeration"`
	CFGWeight        float64 `env:"CFG_WEIGHT, default=0.5" json:"cfg_weight"`

	// Assembly settings
	MaxChunkLength  int     `env:"MAX_CHUNK_LENGTH, default=300" json:"max_chunk_length"`
	ChapterPauseSec float64 `env:"CHAPTER_PAUSE_SEC, default=1.0" json:"chapter_pause_sec"`
	SplitPerChapter bool    `env:"SPLIT_PER_CHAPTER, default=true" json:"split_per_chapter"`
	EncodeMP3       bool    `env:"ENCODE_MP3, default=false" json:"encode_mp3"`
	FFmpegPath      string  `env:"FFMPEG_PATH" json:"ffmpeg_path,omitempty"`

	// Storage settings
	OutputDir string `env:"OUTPUT_DIR, default=/tmp/audiobooker/out" json:"output_dir"`
	TempDir   string `env:"TEMP_DIR, default=/tmp/audiobooker" json:"temp_dir"`

	// Optional S3 settings
	S3Bucket           string `env:"S3_BUCKET" json:"s3_bucket,omitempty"`
	S3Region           string `env:"S3_REGION" json:"s3_region,omitempty"`
	AWSAccessKeyID     string `env:"AWS_ACCESS_KEY_ID" json:"-"`     // Masked in JSON
	AWSSecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY" json:"-"` // Masked in JSON

	// Logging settings
	LogFormat string `env:"LOG_FORMAT, default=text" json:"log_format"` // "json" or "text"
	LogLevel  string `env:"LOG_LEVEL, default=info" json:"log_level"`   // "debug", "info", "warn", "error"
}

// S3Enabled returns true if S3 configuration is provided.
func (c *Config) S3Enabled() bool {
	return c.S3Bucket != "" && c.S3Region != ""
}

// Load reads configuration from environment variables using go-envconfig.
func Load() (*Config, error) {
	cfg := &Config{}

	if err := envconfig.Process(context.Background(), cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that the selected narrator provider has what it needs.
func (c *Config) Validate() error {
	switch strings.ToLower(c.NarratorProvider) {
	case ProviderChatterbox:
		if c.ChatterboxURL == "" {
			return ErrChatterboxURLRequired
		}
	case ProviderYandex:
		if c.YandexAPIKey == "" || c.YandexFolderID == "" {
			return ErrYandexCredentialsRequired
		}
	default:
		return fmt.Errorf("%w: %s", ErrUnknownProvider, c.NarratorProvider)
	}
	return nil
}

// NewLogger creates a structured logger based on the configuration.
// When LogFormat is "json", it outputs JSON logs suitable for production.
// Otherwise, it outputs human-readable text logs.
func (c *Config) NewLogger() *slog.Logger {
	level := parseLogLevel(c.LogLevel)

	var handler slog.Handler
	if strings.ToLower(c.LogFormat) == "json" {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
	} else {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
	}

	return slog.New(handler)
}

// String returns a string representation of the config with sensitive values masked.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{Port: %d, NarratorProvider: %s, ChatterboxURL: %s, MaxChunkLength: %d, ChapterPauseSec: %.1f, SplitPerChapter: %t, EncodeMP3: %t, OutputDir: %s, TempDir: %s, S3Bucket: %s, S3Region: %s, LogFormat: %s, LogLevel: %s}",
		c.Port,
		c.NarratorProvider,
		c.ChatterboxURL,
		c.MaxChunkLength,
		c.ChapterPauseSec,
		c.SplitPerChapter,
		c.EncodeMP3,
		c.OutputDir,
		c.TempDir,
		c.S3Bucket,
		c.S3Region,
		c.LogFormat,
		c.LogLevel,
	)
}

// parseLogLevel converts a string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
