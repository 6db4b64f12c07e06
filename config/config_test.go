package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.LinksFile != "links.txt" {
		t.Errorf("LinksFile = %q, want links.txt", cfg.LinksFile)
	}
	if cfg.RemainingFile != "remaining_links.txt" {
		t.Errorf("RemainingFile = %q, want remaining_links.txt", cfg.RemainingFile)
	}
	if len(cfg.Languages) != 2 || cfg.Languages[0] != "he" || cfg.Languages[1] != "iw" {
		t.Errorf("Languages = %v, want [he iw]", cfg.Languages)
	}
	if cfg.WhisperModel != "medium" {
		t.Errorf("WhisperModel = %q, want medium", cfg.WhisperModel)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig() should validate, got %v", err)
	}
}

// chdir changes into dir and restores the original working directory when the
// test ends. It mirrors testing.T.Chdir, which requires Go 1.24.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Fatal(err)
		}
	})
}

func TestLoadEnvOverrides(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv("HEBSCRIBE_LINKS_FILE", "/data/my_links.txt")
	t.Setenv("HEBSCRIBE_OUTPUT_DIR", "/data/out")
	t.Setenv("HEBSCRIBE_WHISPER_MODEL", "large")
	t.Setenv("HEBSCRIBE_REQUEST_INTERVAL", "500ms")
	t.Setenv("HEBSCRIBE_MAX_RETRIES", "5")
	t.Setenv("YOUTUBE_API_KEY", "test-key")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.LinksFile != "/data/my_links.txt" {
		t.Errorf("LinksFile = %q, want env override", cfg.LinksFile)
	}
	if cfg.OutputDir != "/data/out" {
		t.Errorf("OutputDir = %q, want env override", cfg.OutputDir)
	}
	if cfg.WhisperModel != "large" {
		t.Errorf("WhisperModel = %q, want large", cfg.WhisperModel)
	}
	if cfg.RequestInterval != 500*time.Millisecond {
		t.Errorf("RequestInterval = %v, want 500ms", cfg.RequestInterval)
	}
	if cfg.MaxRetries != 5 {
		t.Errorf("MaxRetries = %d, want 5", cfg.MaxRetries)
	}
	if cfg.APIKey != "test-key" {
		t.Errorf("APIKey = %q, want test-key", cfg.APIKey)
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	t.Setenv("HOME", t.TempDir())

	data := `{
		"links_file": "from_file.txt",
		"whisper_model": "small",
		"cookies_from_browser": "firefox"
	}`
	if err := os.WriteFile(filepath.Join(dir, "hebscribe.json"), []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.LinksFile != "from_file.txt" {
		t.Errorf("LinksFile = %q, want value from config file", cfg.LinksFile)
	}
	if cfg.WhisperModel != "small" {
		t.Errorf("WhisperModel = %q, want small", cfg.WhisperModel)
	}
	if cfg.CookiesFromBrowser != "firefox" {
		t.Errorf("CookiesFromBrowser = %q, want firefox", cfg.CookiesFromBrowser)
	}
	// Fields the file does not mention keep their defaults.
	if cfg.RemainingFile != "remaining_links.txt" {
		t.Errorf("RemainingFile = %q, want default", cfg.RemainingFile)
	}
}

func TestLoadEnvBeatsFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	t.Setenv("HOME", t.TempDir())

	data := `{"whisper_model": "small"}`
	if err := os.WriteFile(filepath.Join(dir, "hebscribe.json"), []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("HEBSCRIBE_WHISPER_MODEL", "large")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.WhisperModel != "large" {
		t.Errorf("WhisperModel = %q, env should beat the config file", cfg.WhisperModel)
	}
}

func TestLoadInvalidConfigFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	if err := os.WriteFile(filepath.Join(dir, "hebscribe.json"), []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(); err == nil {
		t.Error("Load() with malformed config file should fail")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:   "defaults are valid",
			mutate: func(c *Config) {},
		},
		{
			name:    "missing links file",
			mutate:  func(c *Config) { c.LinksFile = "" },
			wantErr: true,
		},
		{
			name:    "missing remaining file",
			mutate:  func(c *Config) { c.RemainingFile = "" },
			wantErr: true,
		},
		{
			name:    "no languages",
			mutate:  func(c *Config) { c.Languages = nil },
			wantErr: true,
		},
		{
			name:    "zero ytdlp timeout",
			mutate:  func(c *Config) { c.YtdlpTimeout = 0 },
			wantErr: true,
		},
		{
			name:    "zero whisper timeout",
			mutate:  func(c *Config) { c.WhisperTimeout = 0 },
			wantErr: true,
		},
		{
			name:    "negative request interval",
			mutate:  func(c *Config) { c.RequestInterval = -time.Second },
			wantErr: true,
		},
		{
			name:   "zero request interval allowed",
			mutate: func(c *Config) { c.RequestInterval = 0 },
		},
		{
			name:    "negative retries",
			mutate:  func(c *Config) { c.MaxRetries = -1 },
			wantErr: true,
		},
		{
			name:    "max backoff below initial",
			mutate:  func(c *Config) { c.MaxBackoff = c.InitialBackoff / 2 },
			wantErr: true,
		},
		{
			name: "both cookie sources",
			mutate: func(c *Config) {
				c.CookiesFromBrowser = "chrome"
				c.CookieFile = "/tmp/cookies.txt"
			},
			wantErr: true,
		},
		{
			name:   "one cookie source",
			mutate: func(c *Config) { c.CookiesFromBrowser = "chrome" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
