package config

import (
	"fmt"
	"net/url"
	"time"
)

// Config holds the complete application configuration
type Config struct {
	Version string       `yaml:"version" json:"version"`
	API     APIConfig    `yaml:"api" json:"api"`
	Splash  SplashConfig `yaml:"splash" json:"splash"`
	Output  OutputConfig `yaml:"output" json:"output"`
	Log     LogConfig    `yaml:"log" json:"log"`
	Charts  ChartsConfig `yaml:"charts" json:"charts"`
}

// APIConfig configures the two remote endpoints
type APIConfig struct {
	PredictURL string        `yaml:"predict_url" json:"predict_url"` // multipart POST target
	MetricsURL string        `yaml:"metrics_url" json:"metrics_url"` // classification report GET target
	Timeout    time.Duration `yaml:"timeout" json:"timeout"`         // 0 leaves it to the transport
	UserAgent  string        `yaml:"user_agent" json:"user_agent"`
}

// SplashConfig configures the intro sequence
type SplashConfig struct {
	Enabled         bool          `yaml:"enabled" json:"enabled"`
	Images          []string      `yaml:"images" json:"images"`
	VisibleDuration time.Duration `yaml:"visible_duration" json:"visible_duration"`
	FadeDuration    time.Duration `yaml:"fade_duration" json:"fade_duration"`
	Caption         string        `yaml:"caption" json:"caption"`
}

// OutputConfig configures output formatting and display
type OutputConfig struct {
	DefaultFormat string `yaml:"default_format" json:"default_format"` // json|text|markdown|csv
	ColorMode     string `yaml:"color_mode" json:"color_mode"`         // auto|always|never
	Verbose       bool   `yaml:"verbose" json:"verbose"`
	NoEmoji       bool   `yaml:"no_emoji" json:"no_emoji"`
}

// LogConfig configures the rotating log file used while the TUI owns the terminal
type LogConfig struct {
	File       string `yaml:"file" json:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb" json:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups" json:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days" json:"max_age_days"`
	Compress   bool   `yaml:"compress" json:"compress"`
}

// ChartsConfig configures PNG chart export
type ChartsConfig struct {
	ExportDir string `yaml:"export_dir" json:"export_dir"`
	Width     int    `yaml:"width" json:"width"`
	Height    int    `yaml:"height" json:"height"`
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Version: "1.0",
		API: APIConfig{
			PredictURL: "http://127.0.0.1:8000",
			MetricsURL: "",
			Timeout:    0,
			UserAgent:  "histodash",
		},
		Splash: SplashConfig{
			Enabled:         true,
			Images:          []string{"./images/melons.jpg", "./images/trafficlight.jpg"},
			VisibleDuration: 1500 * time.Millisecond,
			FadeDuration:    350 * time.Millisecond,
			Caption:         "Have you checked yours?",
		},
		Output: OutputConfig{
			DefaultFormat: "text",
			ColorMode:     "auto",
			Verbose:       false,
			NoEmoji:       false,
		},
		Log: LogConfig{
			File:       "~/.cache/histodash/histodash.log",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
			Compress:   false,
		},
		Charts: ChartsConfig{
			ExportDir: "./charts",
			Width:     800,
			Height:    480,
		},
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := c.validateAPIConfig(); err != nil {
		return err
	}
	if err := c.validateSplashConfig(); err != nil {
		return err
	}
	if err := c.validateOutputConfig(); err != nil {
		return err
	}
	if err := c.validateLogConfig(); err != nil {
		return err
	}
	return c.validateChartsConfig()
}

// validateAPIConfig validates endpoint configuration
func (c *Config) validateAPIConfig() error {
	if c.API.PredictURL == "" {
		return fmt.Errorf("predict_url is required")
	}
	if err := validateHTTPURL("predict_url", c.API.PredictURL); err != nil {
		return err
	}
	// An empty metrics URL is allowed: the analytics panel simply stays hidden.
	if c.API.MetricsURL != "" {
		if err := validateHTTPURL("metrics_url", c.API.MetricsURL); err != nil {
			return err
		}
	}
	if c.API.Timeout < 0 {
		return fmt.Errorf("api timeout must be non-negative")
	}
	return nil
}

// validateSplashConfig validates splash timing
func (c *Config) validateSplashConfig() error {
	if c.Splash.VisibleDuration < 0 {
		return fmt.Errorf("visible_duration must be non-negative")
	}
	if c.Splash.FadeDuration < 0 {
		return fmt.Errorf("fade_duration must be non-negative")
	}
	return nil
}

// validateOutputConfig validates output-related configuration
func (c *Config) validateOutputConfig() error {
	if c.Output.DefaultFormat != "" {
		validFormats := map[string]bool{
			"json":     true,
			"text":     true,
			"markdown": true,
			"csv":      true,
		}
		if !validFormats[c.Output.DefaultFormat] {
			return fmt.Errorf("invalid output format: %s (must be one of: json, text, markdown, csv)", c.Output.DefaultFormat)
		}
	}
	if c.Output.ColorMode != "" {
		validColorModes := map[string]bool{
			"auto":   true,
			"always": true,
			"never":  true,
		}
		if !validColorModes[c.Output.ColorMode] {
			return fmt.Errorf("invalid color mode: %s (must be one of: auto, always, never)", c.Output.ColorMode)
		}
	}
	return nil
}

// validateLogConfig validates rotation settings
func (c *Config) validateLogConfig() error {
	if c.Log.MaxSizeMB < 0 {
		return fmt.Errorf("max_size_mb must be non-negative")
	}
	if c.Log.MaxBackups < 0 {
		return fmt.Errorf("max_backups must be non-negative")
	}
	if c.Log.MaxAgeDays < 0 {
		return fmt.Errorf("max_age_days must be non-negative")
	}
	return nil
}

// validateChartsConfig validates chart export dimensions
func (c *Config) validateChartsConfig() error {
	if c.Charts.Width < 1 {
		return fmt.Errorf("chart width must be greater than 0")
	}
	if c.Charts.Height < 1 {
		return fmt.Errorf("chart height must be greater than 0")
	}
	return nil
}

func validateHTTPURL(field, raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", field, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid %s: %s (scheme must be http or https)", field, raw)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid %s: %s (missing host)", field, raw)
	}
	return nil
}
