package cli

import (
	"errors"
	"fmt"
	"os"
	"runtime"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"github.com/yildizm/histodash/internal/config"
	"github.com/yildizm/histodash/internal/emoji"
	"github.com/yildizm/histodash/internal/logger"
)

// ErrReportFailed is returned when a headless report carries an error. The
// report itself has already been printed.
var ErrReportFailed = errors.New("report contains an error")

var (
	cfgFile   string
	verbose   bool
	noColor   bool
	noEmoji   bool
	outputFmt string
	apiURL    string
	dataURL   string
	logFile   string

	globalConfig *config.Config
)

// NewRootCommand creates the root command
func NewRootCommand(version, commit, date string) *cobra.Command {
	globalConfig = nil

	rootCmd := &cobra.Command{
		Use:   "histodash",
		Short: "Breast cancer image classifier dashboard",
		Long: `histodash is a terminal dashboard for a remote breast cancer image classifier.

Pick an image, send it to the prediction endpoint and compare the result with
the model's classification report. Without a subcommand the interactive
dashboard starts.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Auto-disable emojis on Windows if not explicitly set
			if runtime.GOOS == "windows" && !cmd.Flag("no-emoji").Changed {
				noEmoji = true
			}
			emoji.SetEmojiDisabled(noEmoji)
		},
		RunE: runDashboard,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().BoolVar(&noEmoji, "no-emoji", false, "disable emoji output (useful for Windows terminals)")
	rootCmd.PersistentFlags().StringVarP(&outputFmt, "output", "o", "", "output format (text, json, markdown, csv)")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "prediction endpoint (overrides "+config.EnvPredictURL+")")
	rootCmd.PersistentFlags().StringVar(&dataURL, "data-url", "", "metrics endpoint (overrides "+config.EnvMetricsURL+")")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "log file used while the dashboard is running")

	// Add subcommands
	rootCmd.AddCommand(newDashboardCommand())
	rootCmd.AddCommand(newPredictCommand())
	rootCmd.AddCommand(newMetricsCommand())
	rootCmd.AddCommand(newChartsCommand())
	rootCmd.AddCommand(newConfigCommand())
	rootCmd.AddCommand(newVersionCommand(version, commit, date))

	return rootCmd
}

func newVersionCommand(version, commit, date string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  "Display version number, build commit, date, and runtime information",
		Run: func(cmd *cobra.Command, args []string) {
			displayVersion := version
			displayCommit := commit
			displayDate := date

			if version == "dev" || version == "" {
				displayVersion = "development"
			}
			if commit == "none" || commit == "" {
				displayCommit = "local-build"
			}
			if date == "unknown" || date == "" {
				displayDate = "local-build"
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "histodash %s (%s) built on %s\n", displayVersion, displayCommit, displayDate)
			fmt.Fprintf(out, "Go version: %s\n", runtime.Version())
			fmt.Fprintf(out, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	}
}

// GetGlobalConfig loads the configuration once and applies flag overrides
func GetGlobalConfig() (*config.Config, error) {
	if globalConfig != nil {
		return globalConfig, nil
	}

	cfg, err := config.NewLoader().LoadConfig(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	applyFlagOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid flags: %w", err)
	}

	if cfg.Output.NoEmoji {
		noEmoji = true
		emoji.SetEmojiDisabled(true)
	}
	globalConfig = cfg
	return cfg, nil
}

// applyFlagOverrides gives explicitly set flags the last word
func applyFlagOverrides(cfg *config.Config) {
	if apiURL != "" {
		cfg.API.PredictURL = apiURL
	}
	if dataURL != "" {
		cfg.API.MetricsURL = dataURL
	}
	if logFile != "" {
		cfg.Log.File = logFile
	}
	if outputFmt != "" {
		cfg.Output.DefaultFormat = outputFmt
	}
	if noColor {
		cfg.Output.ColorMode = "never"
	}
	if noEmoji {
		cfg.Output.NoEmoji = true
	}
	if verbose {
		cfg.Output.Verbose = true
	}
}

// Global helpers
func isVerbose() bool {
	return verbose || (globalConfig != nil && globalConfig.Output.Verbose)
}

func getOutputFormat() string {
	if outputFmt != "" {
		return outputFmt
	}
	if globalConfig != nil {
		return globalConfig.Output.DefaultFormat
	}
	return "text"
}

// useColor resolves the color mode against the terminal stdout is attached to
func useColor(cfg *config.Config) bool {
	switch cfg.Output.ColorMode {
	case "always":
		return true
	case "never":
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// applyColorProfile makes lipgloss honour the resolved color mode
func applyColorProfile(cfg *config.Config) {
	switch cfg.Output.ColorMode {
	case "never":
		lipgloss.SetColorProfile(termenv.Ascii)
	case "always":
		lipgloss.SetColorProfile(termenv.TrueColor)
	}
}

// newLogger returns the component logger headless commands share
func newLogger(component string) *logger.Logger {
	return logger.NewWithCallback(component, isVerbose)
}
