// Package config manages application configuration.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Config holds all application configuration for the transcript pipeline.
type Config struct {
	// LinksFile is the input list of video URLs, one per line.
	LinksFile string `json:"links_file"`
	// RemainingFile is where the caption phase records videos that need
	// local transcription, and what the transcribe phase consumes.
	RemainingFile string `json:"remaining_file"`
	// OutputDir is where transcript files are written.
	OutputDir string `json:"output_dir"`
	// WorkDir is where intermediate audio files are written.
	WorkDir string `json:"work_dir"`
	// LogDir is where the rotating log file is written ("" = stdout only).
	LogDir string `json:"log_dir"`

	// Languages are the caption language codes to try, in order.
	// Defaults to Hebrew and its legacy code.
	Languages []string `json:"languages"`

	// YtdlpPath is the path to the yt-dlp executable (default: "yt-dlp").
	YtdlpPath string `json:"ytdlp_path"`
	// YtdlpTimeout is the maximum time to wait for one download.
	YtdlpTimeout time.Duration `json:"ytdlp_timeout"`

	// WhisperPath is the path to the whisper executable (default: "whisper").
	WhisperPath string `json:"whisper_path"`
	// WhisperModel is the model name (default: "medium").
	WhisperModel string `json:"whisper_model"`
	// WhisperTimeout is the maximum time for one transcription.
	WhisperTimeout time.Duration `json:"whisper_timeout"`

	// CookiesFromBrowser names a browser whose session cookies yt-dlp
	// should reuse ("chrome", "firefox", ...). Empty disables it.
	CookiesFromBrowser string `json:"cookies_from_browser"`
	// CookieFile is a Netscape-format cookie file path. Empty disables it.
	CookieFile string `json:"cookie_file"`

	// APIKey is an optional YouTube Data API v3 key used to pre-check
	// caption track availability.
	APIKey string `json:"api_key"`

	// RequestInterval is the minimum spacing between per-video operations,
	// keeping the sequential loop gentle on YouTube.
	RequestInterval time.Duration `json:"request_interval"`

	// MaxRetries is the maximum number of retries for transient failures.
	MaxRetries int `json:"max_retries"`
	// InitialBackoff is the initial backoff duration for retries.
	InitialBackoff time.Duration `json:"initial_backoff"`
	// MaxBackoff is the maximum backoff duration for retries.
	MaxBackoff time.Duration `json:"max_backoff"`
}

// DefaultConfig returns configuration with safe defaults.
func DefaultConfig() *Config {
	return &Config{
		LinksFile:       "links.txt",
		RemainingFile:   "remaining_links.txt",
		OutputDir:       ".",
		WorkDir:         filepath.Join(os.TempDir(), "hebscribe"),
		Languages:       []string{"he", "iw"},
		YtdlpPath:       "yt-dlp",
		YtdlpTimeout:    10 * time.Minute,
		WhisperPath:     "whisper",
		WhisperModel:    "medium",
		WhisperTimeout:  30 * time.Minute,
		RequestInterval: 2 * time.Second,
		MaxRetries:      3,
		InitialBackoff:  2 * time.Second,
		MaxBackoff:      30 * time.Second,
	}
}

// Load loads configuration from environment variables, config file, and
// applies defaults. Priority: env vars > config file > defaults.
func Load() (*Config, error) {
	cfg := DefaultConfig()

	if err := cfg.loadFromFile(); err != nil {
		// Config file is optional
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	cfg.loadFromEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFromFile attempts to load config from hebscribe.json in the current
// directory or the user config directory.
func (c *Config) loadFromFile() error {
	paths := []string{
		"hebscribe.json",
		filepath.Join(os.Getenv("HOME"), ".config", "hebscribe", "hebscribe.json"),
	}

	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return err
		}

		if err := json.Unmarshal(data, c); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
		return nil
	}

	return os.ErrNotExist
}

// loadFromEnv overrides config with environment variables.
func (c *Config) loadFromEnv() {
	if v := os.Getenv("HEBSCRIBE_LINKS_FILE"); v != "" {
		c.LinksFile = v
	}
	if v := os.Getenv("HEBSCRIBE_REMAINING_FILE"); v != "" {
		c.RemainingFile = v
	}
	if v := os.Getenv("HEBSCRIBE_OUTPUT_DIR"); v != "" {
		c.OutputDir = v
	}
	if v := os.Getenv("HEBSCRIBE_WORK_DIR"); v != "" {
		c.WorkDir = v
	}
	if v := os.Getenv("HEBSCRIBE_LOG_DIR"); v != "" {
		c.LogDir = v
	}
	if v := os.Getenv("HEBSCRIBE_YTDLP_PATH"); v != "" {
		c.YtdlpPath = v
	}
	if v := os.Getenv("HEBSCRIBE_YTDLP_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.YtdlpTimeout = d
		}
	}
	if v := os.Getenv("HEBSCRIBE_WHISPER_PATH"); v != "" {
		c.WhisperPath = v
	}
	if v := os.Getenv("HEBSCRIBE_WHISPER_MODEL"); v != "" {
		c.WhisperModel = v
	}
	if v := os.Getenv("HEBSCRIBE_WHISPER_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.WhisperTimeout = d
		}
	}
	if v := os.Getenv("HEBSCRIBE_COOKIES_FROM_BROWSER"); v != "" {
		c.CookiesFromBrowser = v
	}
	if v := os.Getenv("HEBSCRIBE_COOKIE_FILE"); v != "" {
		c.CookieFile = v
	}
	if v := os.Getenv("YOUTUBE_API_KEY"); v != "" {
		c.APIKey = v
	}
	if v := os.Getenv("HEBSCRIBE_REQUEST_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.RequestInterval = d
		}
	}
	if v := os.Getenv("HEBSCRIBE_MAX_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxRetries = n
		}
	}
	if v := os.Getenv("HEBSCRIBE_INITIAL_BACKOFF"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.InitialBackoff = d
		}
	}
	if v := os.Getenv("HEBSCRIBE_MAX_BACKOFF"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.MaxBackoff = d
		}
	}
}

// Validate checks that configuration values are valid and consistent.
// It returns an error if any configuration value is invalid.
func (c *Config) Validate() error {
	if c.LinksFile == "" {
		return fmt.Errorf("links_file must be set")
	}
	if c.RemainingFile == "" {
		return fmt.Errorf("remaining_file must be set")
	}
	if len(c.Languages) == 0 {
		return fmt.Errorf("languages must not be empty")
	}
	if c.YtdlpTimeout <= 0 {
		return fmt.Errorf("ytdlp_timeout must be positive")
	}
	if c.WhisperTimeout <= 0 {
		return fmt.Errorf("whisper_timeout must be positive")
	}
	if c.RequestInterval < 0 {
		return fmt.Errorf("request_interval must be non-negative")
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("max_retries must be non-negative")
	}
	if c.InitialBackoff <= 0 {
		return fmt.Errorf("initial_backoff must be positive")
	}
	if c.MaxBackoff < c.InitialBackoff {
		return fmt.Errorf("max_backoff must be >= initial_backoff")
	}
	if c.CookiesFromBrowser != "" && c.CookieFile != "" {
		return fmt.Errorf("cookies_from_browser and cookie_file are mutually exclusive")
	}
	return nil
}
