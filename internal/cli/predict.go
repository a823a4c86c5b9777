package cli

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

var predictOutputFile string

func newPredictCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "predict FILE",
		Short: "Classify an image without the dashboard",
		Long: `Send an image to the prediction endpoint and print the result together with
the model analytics when a metrics endpoint is configured.

Exits with status 1 when the report carries an error.

Examples:
  histodash predict slide.png
  histodash predict --output json slide.png
  histodash predict --api-url http://gpu-box:8000 slide.png`,
		Args: cobra.ExactArgs(1),
		RunE: runPredict,
	}

	cmd.Flags().StringVar(&predictOutputFile, "output-file", "", "save output to file instead of stdout")

	return cmd
}

func runPredict(cmd *cobra.Command, args []string) error {
	cfg, err := GetGlobalConfig()
	if err != nil {
		return err
	}
	log := newLogger("predict")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	report, err := runPrediction(ctx, cfg, args[0], log)
	if err != nil {
		return err
	}

	if err := writeReport(cmd.OutOrStdout(), cfg, report, predictOutputFile); err != nil {
		return err
	}
	if report.HasError() {
		return ErrReportFailed
	}
	return nil
}
