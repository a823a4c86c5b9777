package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// newTestLoader returns a loader that sees no config files and the given environment
func newTestLoader(env map[string]string) *Loader {
	return &Loader{
		configPaths: nil,
		getenv:      func(k string) string { return env[k] },
	}
}

func TestNewLoader(t *testing.T) {
	loader := NewLoader()
	if loader == nil {
		t.Fatal("NewLoader returned nil")
	}
	if len(loader.configPaths) != 3 {
		t.Errorf("Expected 3 config paths, got %d", len(loader.configPaths))
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := newTestLoader(nil).LoadConfig("")
	if err != nil {
		t.Fatalf("Failed to load default config: %v", err)
	}

	if cfg.API.PredictURL != "http://127.0.0.1:8000" {
		t.Errorf("Expected default predict URL, got %s", cfg.API.PredictURL)
	}
	if cfg.Output.DefaultFormat != "text" {
		t.Errorf("Expected default output format text, got %s", cfg.Output.DefaultFormat)
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "test-config.yaml")

	configContent := `version: "1.0"
api:
  predict_url: "http://classifier.internal:9000/predict"
  metrics_url: "http://classifier.internal:9000/"
  timeout: 60s
splash:
  fade_duration: 500ms
output:
  default_format: "json"
  verbose: true
`

	if err := os.WriteFile(configPath, []byte(configContent), 0o600); err != nil {
		t.Fatalf("Failed to write test config file: %v", err)
	}

	cfg, err := newTestLoader(nil).LoadConfig(configPath)
	if err != nil {
		t.Fatalf("Failed to load config from file: %v", err)
	}

	if cfg.API.PredictURL != "http://classifier.internal:9000/predict" {
		t.Errorf("Unexpected predict URL %s", cfg.API.PredictURL)
	}
	if cfg.API.MetricsURL != "http://classifier.internal:9000/" {
		t.Errorf("Unexpected metrics URL %s", cfg.API.MetricsURL)
	}
	if cfg.API.Timeout != 60*time.Second {
		t.Errorf("Expected API timeout 60s, got %v", cfg.API.Timeout)
	}
	if cfg.Splash.FadeDuration != 500*time.Millisecond {
		t.Errorf("Expected fade 500ms, got %v", cfg.Splash.FadeDuration)
	}
	if cfg.Output.DefaultFormat != "json" {
		t.Errorf("Expected output format json, got %s", cfg.Output.DefaultFormat)
	}
	if !cfg.Output.Verbose {
		t.Errorf("Expected verbose to be true")
	}

	// keys absent from the file keep their defaults
	if !cfg.Splash.Enabled {
		t.Errorf("Expected splash to stay enabled")
	}
	if cfg.Splash.VisibleDuration != 1500*time.Millisecond {
		t.Errorf("Expected visible duration to remain 1.5s, got %v", cfg.Splash.VisibleDuration)
	}
	if cfg.Charts.Width != 800 {
		t.Errorf("Expected chart width to remain 800, got %d", cfg.Charts.Width)
	}
}

func TestLoadConfigInvalidYAML(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "invalid-config.yaml")

	invalidConfigContent := `version: "1.0"
api:
  predict_url: "http://127.0.0.1:8000
  metrics_url: ""
`

	if err := os.WriteFile(configPath, []byte(invalidConfigContent), 0o600); err != nil {
		t.Fatalf("Failed to write test config file: %v", err)
	}

	if _, err := newTestLoader(nil).LoadConfig(configPath); err == nil {
		t.Error("Expected error loading invalid YAML config, but got none")
	}
}

func TestEnvOverridesFile(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "config.yaml")
	content := `api:
  predict_url: "http://from-file:8000"
  metrics_url: "http://from-file:8000/"
`
	if err := os.WriteFile(configPath, []byte(content), 0o600); err != nil {
		t.Fatalf("Failed to write test config file: %v", err)
	}

	loader := newTestLoader(map[string]string{
		EnvPredictURL: "http://from-env:8000",
	})
	cfg, err := loader.LoadConfig(configPath)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.API.PredictURL != "http://from-env:8000" {
		t.Errorf("Expected env to win for predict URL, got %s", cfg.API.PredictURL)
	}
	if cfg.API.MetricsURL != "http://from-file:8000/" {
		t.Errorf("Expected file value for metrics URL, got %s", cfg.API.MetricsURL)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	loader := newTestLoader(map[string]string{
		EnvPredictURL:                    "http://10.0.0.5:8000",
		EnvMetricsURL:                    "http://10.0.0.5:8000/",
		"HISTODASH_OUTPUT_VERBOSE":       "true",
		"HISTODASH_SPLASH_ENABLED":       "false",
		"HISTODASH_SPLASH_FADE_DURATION": "1s",
		"HISTODASH_SPLASH_IMAGES":        "a.png, b.png ,c.png",
		"HISTODASH_CHARTS_WIDTH":         "1024",
	})
	cfg := DefaultConfig()

	if err := loader.applyEnvOverrides(cfg); err != nil {
		t.Fatalf("Failed to apply env overrides: %v", err)
	}

	if cfg.API.PredictURL != "http://10.0.0.5:8000" {
		t.Errorf("Unexpected predict URL %s", cfg.API.PredictURL)
	}
	if cfg.API.MetricsURL != "http://10.0.0.5:8000/" {
		t.Errorf("Unexpected metrics URL %s", cfg.API.MetricsURL)
	}
	if !cfg.Output.Verbose {
		t.Errorf("Expected verbose to be true")
	}
	if cfg.Splash.Enabled {
		t.Errorf("Expected splash to be disabled")
	}
	if cfg.Splash.FadeDuration != time.Second {
		t.Errorf("Expected fade 1s, got %v", cfg.Splash.FadeDuration)
	}
	expected := []string{"a.png", "b.png", "c.png"}
	if len(cfg.Splash.Images) != len(expected) {
		t.Fatalf("Expected %d splash images, got %d", len(expected), len(cfg.Splash.Images))
	}
	for i := range expected {
		if cfg.Splash.Images[i] != expected[i] {
			t.Errorf("Expected splash image %s, got %s", expected[i], cfg.Splash.Images[i])
		}
	}
	if cfg.Charts.Width != 1024 {
		t.Errorf("Expected chart width 1024, got %d", cfg.Charts.Width)
	}
}

func TestApplyEnvOverridesInvalidValues(t *testing.T) {
	tests := []struct {
		name   string
		envVar string
		value  string
	}{
		{"invalid int", "HISTODASH_CHARTS_WIDTH", "not-a-number"},
		{"invalid bool", "HISTODASH_OUTPUT_VERBOSE", "not-a-bool"},
		{"invalid duration", "HISTODASH_API_TIMEOUT", "not-a-duration"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loader := newTestLoader(map[string]string{tt.envVar: tt.value})
			if err := loader.applyEnvOverrides(DefaultConfig()); err == nil {
				t.Error("Expected error for invalid env var value, but got none")
			}
		})
	}
}

func TestParseHelpers(t *testing.T) {
	var d time.Duration
	if err := parseDuration("30s", &d); err != nil || d != 30*time.Second {
		t.Errorf("parseDuration(30s) = %v, %v", d, err)
	}
	if err := parseDuration("invalid", &d); err == nil {
		t.Error("Expected error for invalid duration")
	}

	var n int
	if err := parseInt("42", &n); err != nil || n != 42 {
		t.Errorf("parseInt(42) = %d, %v", n, err)
	}

	var b bool
	if err := parseBool("true", &b); err != nil || !b {
		t.Errorf("parseBool(true) = %v, %v", b, err)
	}
	if err := parseBool("not-a-bool", &b); err == nil {
		t.Error("Expected error for invalid bool")
	}
}

func TestValidateConfigPath(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		wantErr bool
		errMsg  string
	}{
		{name: "valid yaml file", path: "config.yaml"},
		{name: "valid yml file", path: "config.yml"},
		{name: "path traversal attempt", path: "../../../etc/passwd", wantErr: true, errMsg: "path traversal not allowed"},
		{name: "non-yaml file", path: "config.txt", wantErr: true, errMsg: "config file must have .yaml or .yml extension"},
		{name: "proc filesystem access", path: "/proc/version.yaml", wantErr: true, errMsg: "access to system files not allowed"},
		{name: "relative path with valid extension", path: "./configs/app.yaml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateConfigPath(tt.path)
			if tt.wantErr {
				if err == nil {
					t.Error("Expected error but got none")
				} else if tt.errMsg != "" && !strings.Contains(err.Error(), tt.errMsg) {
					t.Errorf("Expected error message to contain '%s', got '%s'", tt.errMsg, err.Error())
				}
			} else if err != nil {
				t.Errorf("Unexpected error: %v", err)
			}
		})
	}
}

func TestSampleConfigLoads(t *testing.T) {
	tempDir := t.TempDir()
	for name, content := range map[string]string{
		"full.yaml":    SampleConfig(),
		"minimal.yaml": MinimalSampleConfig(),
	} {
		path := filepath.Join(tempDir, name)
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
		if _, err := newTestLoader(nil).LoadConfig(path); err != nil {
			t.Errorf("sample %s does not load: %v", name, err)
		}
	}
}
