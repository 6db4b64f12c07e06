package main

import (
	"testing"

	"hebscribe/config"
)

func TestApplyCookieFlags(t *testing.T) {
	tests := []struct {
		name    string
		browser string
		cookies string
		wantErr bool
	}{
		{name: "neither flag"},
		{name: "browser only", browser: "chrome"},
		{name: "cookie file only", cookies: "/tmp/cookies.txt"},
		{name: "both flags", browser: "chrome", cookies: "/tmp/cookies.txt", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			err := applyCookieFlags(cfg, tt.browser, tt.cookies)
			if (err != nil) != tt.wantErr {
				t.Fatalf("applyCookieFlags() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if cfg.CookiesFromBrowser != tt.browser {
				t.Errorf("CookiesFromBrowser = %q, want %q", cfg.CookiesFromBrowser, tt.browser)
			}
			if cfg.CookieFile != tt.cookies {
				t.Errorf("CookieFile = %q, want %q", cfg.CookieFile, tt.cookies)
			}
		})
	}
}

func TestApplyCookieFlagsFlagBeatsConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.CookieFile = "/etc/hebscribe/cookies.txt"

	// A browser flag alongside a configured cookie file is the same
	// conflict as setting both in configuration.
	if err := applyCookieFlags(cfg, "firefox", ""); err == nil {
		t.Error("applyCookieFlags() should reject browser flag plus configured cookie file")
	}
}
