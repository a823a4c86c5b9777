package config

import (
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Version != "1.0" {
		t.Errorf("Expected version 1.0, got %s", cfg.Version)
	}

	if cfg.API.PredictURL != "http://127.0.0.1:8000" {
		t.Errorf("Expected default predict URL http://127.0.0.1:8000, got %s", cfg.API.PredictURL)
	}

	if cfg.API.MetricsURL != "" {
		t.Errorf("Expected empty default metrics URL, got %s", cfg.API.MetricsURL)
	}

	if cfg.API.Timeout != 0 {
		t.Errorf("Expected no explicit API timeout, got %v", cfg.API.Timeout)
	}

	if cfg.Splash.VisibleDuration != 1500*time.Millisecond {
		t.Errorf("Expected visible duration 1.5s, got %v", cfg.Splash.VisibleDuration)
	}

	if cfg.Splash.FadeDuration != 350*time.Millisecond {
		t.Errorf("Expected fade duration 350ms, got %v", cfg.Splash.FadeDuration)
	}

	if len(cfg.Splash.Images) != 2 {
		t.Errorf("Expected 2 splash images, got %d", len(cfg.Splash.Images))
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("Default config should be valid: %v", err)
	}
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
		errMsg  string
	}{
		{
			name:    "valid config",
			mutate:  func(*Config) {},
			wantErr: false,
		},
		{
			name:    "missing predict url",
			mutate:  func(c *Config) { c.API.PredictURL = "" },
			wantErr: true,
			errMsg:  "predict_url is required",
		},
		{
			name:    "predict url without scheme",
			mutate:  func(c *Config) { c.API.PredictURL = "127.0.0.1:8000" },
			wantErr: true,
		},
		{
			name:    "metrics url with ftp scheme",
			mutate:  func(c *Config) { c.API.MetricsURL = "ftp://example.com/metrics" },
			wantErr: true,
			errMsg:  "invalid metrics_url: ftp://example.com/metrics (scheme must be http or https)",
		},
		{
			name:    "metrics url set",
			mutate:  func(c *Config) { c.API.MetricsURL = "https://example.com/" },
			wantErr: false,
		},
		{
			name:    "negative api timeout",
			mutate:  func(c *Config) { c.API.Timeout = -time.Second },
			wantErr: true,
			errMsg:  "api timeout must be non-negative",
		},
		{
			name:    "negative fade",
			mutate:  func(c *Config) { c.Splash.FadeDuration = -time.Millisecond },
			wantErr: true,
			errMsg:  "fade_duration must be non-negative",
		},
		{
			name:    "invalid output format",
			mutate:  func(c *Config) { c.Output.DefaultFormat = "invalid" },
			wantErr: true,
			errMsg:  "invalid output format: invalid (must be one of: json, text, markdown, csv)",
		},
		{
			name:    "invalid color mode",
			mutate:  func(c *Config) { c.Output.ColorMode = "invalid" },
			wantErr: true,
			errMsg:  "invalid color mode: invalid (must be one of: auto, always, never)",
		},
		{
			name:    "negative backups",
			mutate:  func(c *Config) { c.Log.MaxBackups = -1 },
			wantErr: true,
			errMsg:  "max_backups must be non-negative",
		},
		{
			name:    "zero chart width",
			mutate:  func(c *Config) { c.Charts.Width = 0 },
			wantErr: true,
			errMsg:  "chart width must be greater than 0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				if err == nil {
					t.Errorf("Expected error but got none")
				} else if tt.errMsg != "" && err.Error() != tt.errMsg {
					t.Errorf("Expected error message '%s', got '%s'", tt.errMsg, err.Error())
				}
			} else if err != nil {
				t.Errorf("Unexpected error: %v", err)
			}
		})
	}
}

func TestExpandPath(t *testing.T) {
	if got := ExpandPath("./config.yaml"); got != "./config.yaml" {
		t.Errorf("Expected relative path unchanged, got %s", got)
	}
	if got := ExpandPath("/etc/histodash/config.yaml"); got != "/etc/histodash/config.yaml" {
		t.Errorf("Expected absolute path unchanged, got %s", got)
	}
	if got := ExpandPath("~/.config/histodash/config.yaml"); got == "~/.config/histodash/config.yaml" {
		t.Errorf("Expected path to be expanded, but got same path")
	}
}

func TestGetConfigPaths(t *testing.T) {
	paths := GetConfigPaths()
	if len(paths) != 3 {
		t.Fatalf("Expected 3 config paths, got %d", len(paths))
	}
	if paths[0] != "./.histodash.yaml" {
		t.Errorf("Expected project config first, got %s", paths[0])
	}
	if paths[2] != "/etc/histodash/config.yaml" {
		t.Errorf("Expected system config last, got %s", paths[2])
	}
}
