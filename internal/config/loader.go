package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ConfigPaths defines the config file search paths in priority order
var ConfigPaths = []string{
	"./.histodash.yaml",               // Project-specific config (highest priority)
	"~/.config/histodash/config.yaml", // User config
	"/etc/histodash/config.yaml",      // System config (lowest priority)
}

// Environment variables carrying the two endpoint base URLs
const (
	EnvPredictURL = "HISTODASH_API_URL"
	EnvMetricsURL = "HISTODASH_DATA_URL"
)

// Loader handles configuration loading with priority merging
type Loader struct {
	configPaths []string
	getenv      func(string) string
}

// NewLoader creates a new config loader
func NewLoader() *Loader {
	return &Loader{
		configPaths: ConfigPaths,
		getenv:      os.Getenv,
	}
}

// LoadConfig loads configuration from multiple sources with priority order:
// 1. Command line flags (handled by caller)
// 2. Environment variables
// 3. ./.histodash.yaml
// 4. ~/.config/histodash/config.yaml
// 5. /etc/histodash/config.yaml
// 6. Built-in defaults
func (l *Loader) LoadConfig(customPath string) (*Config, error) {
	config := DefaultConfig()

	if customPath != "" {
		if err := validateConfigPath(customPath); err != nil {
			return nil, fmt.Errorf("invalid config path: %w", err)
		}
		if err := l.loadFromFile(config, customPath); err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", customPath, err)
		}
	} else {
		// lowest priority first so later files win
		for i := len(l.configPaths) - 1; i >= 0; i-- {
			expandedPath := ExpandPath(l.configPaths[i])
			if !fileExists(expandedPath) {
				continue
			}
			if err := l.loadFromFile(config, expandedPath); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: Failed to load config from %s: %v\n", expandedPath, err)
			}
		}
	}

	if err := l.applyEnvOverrides(config); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// loadFromFile decodes a YAML file on top of the existing config. Keys absent
// from the file keep their current value.
func (l *Loader) loadFromFile(config *Config, path string) error {
	// #nosec G304 - path is validated by validateConfigPath() or comes from ConfigPaths
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	merged := *config
	merged.Splash.Images = append([]string(nil), config.Splash.Images...)
	if err := yaml.Unmarshal(data, &merged); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}

	*config = merged
	return nil
}

// applyEnvOverrides applies environment variable overrides to the config
func (l *Loader) applyEnvOverrides(config *Config) error {
	envMappings := map[string]func(string) error{
		// The two endpoint URLs
		EnvPredictURL: func(v string) error { config.API.PredictURL = v; return nil },
		EnvMetricsURL: func(v string) error { config.API.MetricsURL = v; return nil },

		"HISTODASH_API_TIMEOUT":    func(v string) error { return parseDuration(v, &config.API.Timeout) },
		"HISTODASH_API_USER_AGENT": func(v string) error { config.API.UserAgent = v; return nil },

		// Splash
		"HISTODASH_SPLASH_ENABLED":          func(v string) error { return parseBool(v, &config.Splash.Enabled) },
		"HISTODASH_SPLASH_VISIBLE_DURATION": func(v string) error { return parseDuration(v, &config.Splash.VisibleDuration) },
		"HISTODASH_SPLASH_FADE_DURATION":    func(v string) error { return parseDuration(v, &config.Splash.FadeDuration) },

		// Output
		"HISTODASH_OUTPUT_DEFAULT_FORMAT": func(v string) error { config.Output.DefaultFormat = v; return nil },
		"HISTODASH_OUTPUT_COLOR_MODE":     func(v string) error { config.Output.ColorMode = v; return nil },
		"HISTODASH_OUTPUT_VERBOSE":        func(v string) error { return parseBool(v, &config.Output.Verbose) },
		"HISTODASH_OUTPUT_NO_EMOJI":       func(v string) error { return parseBool(v, &config.Output.NoEmoji) },

		// Log
		"HISTODASH_LOG_FILE":         func(v string) error { config.Log.File = v; return nil },
		"HISTODASH_LOG_MAX_SIZE_MB":  func(v string) error { return parseInt(v, &config.Log.MaxSizeMB) },
		"HISTODASH_LOG_MAX_BACKUPS":  func(v string) error { return parseInt(v, &config.Log.MaxBackups) },
		"HISTODASH_LOG_MAX_AGE_DAYS": func(v string) error { return parseInt(v, &config.Log.MaxAgeDays) },

		// Charts
		"HISTODASH_CHARTS_EXPORT_DIR": func(v string) error { config.Charts.ExportDir = v; return nil },
		"HISTODASH_CHARTS_WIDTH":      func(v string) error { return parseInt(v, &config.Charts.Width) },
		"HISTODASH_CHARTS_HEIGHT":     func(v string) error { return parseInt(v, &config.Charts.Height) },
	}

	for envVar, setter := range envMappings {
		if value := l.getenv(envVar); value != "" {
			if err := setter(value); err != nil {
				return fmt.Errorf("invalid value for %s: %w", envVar, err)
			}
		}
	}

	// Comma-separated list of splash images
	if images := l.getenv("HISTODASH_SPLASH_IMAGES"); images != "" {
		config.Splash.Images = splitList(images)
	}

	return nil
}

// GetConfigPaths returns the list of configuration file paths that will be searched
func GetConfigPaths() []string {
	paths := make([]string, 0, len(ConfigPaths))
	for _, path := range ConfigPaths {
		paths = append(paths, ExpandPath(path))
	}
	return paths
}

// FindConfigFile finds the first existing config file in the search paths
func FindConfigFile() (string, bool) {
	for _, path := range ConfigPaths {
		expandedPath := ExpandPath(path)
		if fileExists(expandedPath) {
			return expandedPath, true
		}
	}
	return "", false
}

// validateConfigPath validates that a config path is safe to read
func validateConfigPath(path string) error {
	cleanPath := filepath.Clean(path)

	if strings.Contains(cleanPath, "..") {
		return fmt.Errorf("path traversal not allowed")
	}

	ext := strings.ToLower(filepath.Ext(cleanPath))
	if ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("config file must have .yaml or .yml extension")
	}

	absPath, err := filepath.Abs(cleanPath)
	if err != nil {
		return fmt.Errorf("failed to resolve absolute path: %w", err)
	}

	if strings.HasPrefix(absPath, "/proc/") || strings.HasPrefix(absPath, "/sys/") {
		return fmt.Errorf("access to system files not allowed")
	}

	return nil
}

// ExpandPath expands ~ to home directory
func ExpandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Type conversion helpers

func parseInt(s string, dst *int) error {
	val, err := strconv.Atoi(s)
	if err != nil {
		return err
	}
	*dst = val
	return nil
}

func parseBool(s string, dst *bool) error {
	val, err := strconv.ParseBool(s)
	if err != nil {
		return err
	}
	*dst = val
	return nil
}

func parseDuration(s string, dst *time.Duration) error {
	val, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*dst = val
	return nil
}
