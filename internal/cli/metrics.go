package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/yildizm/histodash/internal/config"
	"github.com/yildizm/histodash/internal/dashboard"
)

var metricsOutputFile string

func newMetricsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "metrics",
		Short: "Show the model's classification report",
		Long: `Fetch the classification report from the metrics endpoint and print it.

Examples:
  histodash metrics --data-url http://127.0.0.1:8000/metrics
  histodash metrics --output markdown`,
		Args: cobra.NoArgs,
		RunE: runMetrics,
	}

	cmd.Flags().StringVar(&metricsOutputFile, "output-file", "", "save output to file instead of stdout")

	return cmd
}

func runMetrics(cmd *cobra.Command, args []string) error {
	cfg, err := GetGlobalConfig()
	if err != nil {
		return err
	}
	if cfg.API.MetricsURL == "" {
		return fmt.Errorf("no metrics endpoint configured (use --data-url or %s)", config.EnvMetricsURL)
	}
	log := newLogger("metrics")

	client, err := newClient(cfg, log)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	ctrl := dashboard.New(client, nil, log.WithComponent("dashboard"))
	defer ctrl.Close()

	// headless, the failure is the result
	if err := ctrl.FetchMetrics(ctx); err != nil {
		return fmt.Errorf("failed to fetch metrics: %w", err)
	}

	return writeReport(cmd.OutOrStdout(), cfg, ctrl.Snapshot(), metricsOutputFile)
}
