package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/yildizm/histodash/internal/config"
	"github.com/yildizm/histodash/internal/dashboard"
	"github.com/yildizm/histodash/internal/logger"
	"github.com/yildizm/histodash/internal/preview"
	"github.com/yildizm/histodash/internal/ui"
	"github.com/yildizm/histodash/internal/watch"
)

var (
	dashboardTheme    string
	dashboardNoSplash bool
)

func newDashboardCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dashboard [FILE]",
		Short: "Start the interactive dashboard",
		Long: `Start the interactive dashboard. An optional FILE is selected on start.

Keys:
  o        choose an image
  p/enter  predict
  e        export the analytics charts
  s        skip the intro
  q        quit

Logs go to the configured log file while the dashboard owns the terminal.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runDashboard,
	}

	cmd.Flags().StringVar(&dashboardTheme, "theme", "default", fmt.Sprintf("color theme %v", ui.AvailableThemes()))
	cmd.Flags().BoolVar(&dashboardNoSplash, "no-splash", false, "skip the intro sequence")

	return cmd
}

func runDashboard(cmd *cobra.Command, args []string) error {
	cfg, err := GetGlobalConfig()
	if err != nil {
		return err
	}
	applyColorProfile(cfg)

	theme, ok := ui.ThemeByName(dashboardTheme)
	if !ok {
		return fmt.Errorf("unknown theme: %s (available: %v)", dashboardTheme, ui.AvailableThemes())
	}

	logOut, err := logger.NewRotatingWriter(logger.RotateOptions{
		Path:       config.ExpandPath(cfg.Log.File),
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
		Compress:   cfg.Log.Compress,
	})
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	logger.SetOutput(logOut)
	defer func() {
		logger.SetOutput(nil)
		_ = logOut.Close()
	}()

	log := newLogger("dashboard")
	client, err := newClient(cfg, log)
	if err != nil {
		return err
	}

	previews := preview.NewManager()
	ctrl := dashboard.New(client, previews, log.WithComponent("controller"))

	watcher, err := watch.New(log.WithComponent("watch"))
	if err != nil {
		log.Warn("file watching disabled: %v", err)
		watcher = nil
	}

	if len(args) == 1 {
		if err := ctrl.SelectFile(args[0]); err != nil {
			ctrl.Close()
			if watcher != nil {
				_ = watcher.Close()
			}
			return err
		}
		if watcher != nil {
			if err := watcher.Watch(args[0]); err != nil {
				log.Warn("cannot follow %s: %v", args[0], err)
			}
		}
	}

	splashCfg := cfg.Splash
	if dashboardNoSplash {
		splashCfg.Enabled = false
	}

	model := ui.New(ctrl, previews, watcher, ui.Options{
		Splash:      splashCfg,
		ExportDir:   cfg.Charts.ExportDir,
		ChartWidth:  cfg.Charts.Width,
		ChartHeight: cfg.Charts.Height,
		Theme:       theme,
	}, log.WithComponent("ui"))

	log.Info("dashboard starting (predict=%s metrics=%s)", cfg.API.PredictURL, cfg.API.MetricsURL)
	return ui.Run(model)
}
