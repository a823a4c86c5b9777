package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/yildizm/histodash/internal/charts"
	"github.com/yildizm/histodash/internal/emoji"
)

func newChartsCommand() *cobra.Command {
	chartsCmd := &cobra.Command{
		Use:   "charts",
		Short: "Render the model analytics charts",
		Long: `Render the analytics charts shown next to a prediction.

Charts need both a prediction and the classification report, so every
subcommand classifies an image first.`,
	}

	chartsCmd.AddCommand(newChartsExportCommand())
	chartsCmd.AddCommand(newChartsShowCommand())

	return chartsCmd
}

func newChartsExportCommand() *cobra.Command {
	var (
		dir    string
		width  int
		height int
	)

	cmd := &cobra.Command{
		Use:   "export FILE",
		Short: "Classify an image and export the charts as PNG files",
		Example: `  # Export to the configured directory
  histodash charts export slide.png

  # Export at a custom size
  histodash charts export slide.png --dir ./out --width 1024 --height 640`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			set, err := chartSetFor(args[0])
			if err != nil {
				return err
			}
			cfg, _ := GetGlobalConfig()

			if dir == "" {
				dir = cfg.Charts.ExportDir
			}
			if width == 0 {
				width = cfg.Charts.Width
			}
			if height == 0 {
				height = cfg.Charts.Height
			}

			paths, err := charts.ExportPNG(set, dir, width, height)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s Exported %d charts to %s\n", emoji.GetEmoji("success"), len(paths), dir)
			for _, p := range paths {
				fmt.Fprintf(out, "  %s\n", p)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "d", "", "export directory (default from config)")
	cmd.Flags().IntVar(&width, "width", 0, "chart width in pixels (default from config)")
	cmd.Flags().IntVar(&height, "height", 0, "chart height in pixels (default from config)")

	return cmd
}

func newChartsShowCommand() *cobra.Command {
	var width int

	cmd := &cobra.Command{
		Use:   "show FILE",
		Short: "Classify an image and draw the charts in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			set, err := chartSetFor(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), charts.RenderTerminal(set, width))
			return nil
		},
	}

	cmd.Flags().IntVarP(&width, "width", "w", 72, "output width in columns")

	return cmd
}

// chartSetFor classifies path and builds the charts for the result
func chartSetFor(path string) (charts.Set, error) {
	cfg, err := GetGlobalConfig()
	if err != nil {
		return charts.Set{}, err
	}
	applyColorProfile(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	report, err := runPrediction(ctx, cfg, path, newLogger("charts"))
	if err != nil {
		return charts.Set{}, err
	}
	if !report.Analytics {
		if report.Error != nil {
			return charts.Set{}, fmt.Errorf("prediction failed: %s", *report.Error)
		}
		return charts.Set{}, fmt.Errorf("analytics unavailable: the metrics endpoint returned no report")
	}

	return charts.Build(*report.Metrics, *report.Prediction), nil
}
