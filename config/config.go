// Package config manages application configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"ytscribe/writer"
)

// Config holds all application configuration for transcript runs.
type Config struct {
	// APIKey is the YouTube Data API key.
	APIKey string
	// Channel is the channel reference: handle, UC id, or channel URL.
	Channel string
	// VideoID selects single-video mode instead of channel enumeration.
	VideoID string

	// DestDir is the directory artifacts and logs are written to.
	DestDir string
	// MaxVideos limits how many videos are processed (0 = all).
	MaxVideos int
	// Languages is the ordered caption language preference list.
	Languages []string
	// Format selects the artifact serialization.
	Format writer.Format
	// TimeCodes includes segment start times in plain-text artifacts.
	TimeCodes bool
	// IncludeShorts keeps Shorts in channel enumeration.
	IncludeShorts bool
	// ForceFallback downloads the first available track when no preferred
	// language matches.
	ForceFallback bool
	// ListOnly reports available caption languages without downloading.
	ListOnly bool

	// Rate is the API call budget in calls per second.
	Rate float64
	// Timeout bounds how long one rate-gate acquisition may wait.
	Timeout time.Duration
	// Concurrency is the transcript worker pool size.
	Concurrency int

	// LogLevel is debug, info, warn, or error.
	LogLevel string
	// LogFormat is console or json.
	LogFormat string
	// ConsoleLog mirrors the log file to stderr.
	ConsoleLog bool
}

// DefaultConfig returns configuration with safe defaults.
func DefaultConfig() *Config {
	return &Config{
		DestDir:     ".",
		MaxVideos:   5,
		Languages:   []string{"en"},
		Format:      writer.FormatPlainText,
		Rate:        5,
		Timeout:     10 * time.Second,
		Concurrency: 1,
		LogLevel:    "info",
		LogFormat:   "console",
	}
}

// Load applies .env and environment overrides on top of the defaults.
// Priority: env vars > .env file > defaults. A missing .env file is fine.
func Load() (*Config, error) {
	cfg := DefaultConfig()

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	cfg.loadFromEnv()

	return cfg, nil
}

// loadFromEnv overrides config with environment variables.
func (c *Config) loadFromEnv() {
	if v := os.Getenv("YOUTUBE_API_KEY"); v != "" {
		c.APIKey = v
	}
	if v := os.Getenv("YTSCRIBE_DESTINATION"); v != "" {
		c.DestDir = v
	}
	if v := os.Getenv("YTSCRIBE_RATE_LIMIT"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.Rate = f
		}
	}
	if v := os.Getenv("YTSCRIBE_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Timeout = d
		}
	}
	if v := os.Getenv("YTSCRIBE_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
}

// ParseLanguages normalizes a language preference list. It accepts both
// plain comma-separated values and a bracketed list like "[en,fr]".
func ParseLanguages(raw string) []string {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "[")
	raw = strings.TrimSuffix(raw, "]")

	var langs []string
	for _, part := range strings.Split(raw, ",") {
		if lang := strings.TrimSpace(part); lang != "" {
			langs = append(langs, lang)
		}
	}
	return langs
}

// Validate checks that configuration values are valid and consistent.
// It returns an error if any configuration value is invalid.
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("api key is required (set YOUTUBE_API_KEY)")
	}
	if c.Channel == "" && c.VideoID == "" {
		return fmt.Errorf("either a channel or a video id is required")
	}
	if c.Channel != "" && c.VideoID != "" {
		return fmt.Errorf("channel and video id are mutually exclusive")
	}
	if c.DestDir == "" {
		return fmt.Errorf("destination directory is required")
	}
	if c.MaxVideos < 0 {
		return fmt.Errorf("max videos must be non-negative")
	}
	if len(c.Languages) == 0 && !c.ListOnly {
		return fmt.Errorf("at least one language is required")
	}
	if !c.Format.Valid() {
		return fmt.Errorf("format must be %q or %q", writer.FormatPlainText, writer.FormatJSON)
	}
	if c.Rate <= 0 {
		return fmt.Errorf("rate limit must be positive")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1")
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log level must be debug, info, warn, or error")
	}
	switch c.LogFormat {
	case "console", "json":
	default:
		return fmt.Errorf("log format must be console or json")
	}
	return nil
}
