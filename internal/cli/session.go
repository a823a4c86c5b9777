package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/yildizm/histodash/internal/api"
	"github.com/yildizm/histodash/internal/config"
	"github.com/yildizm/histodash/internal/dashboard"
	"github.com/yildizm/histodash/internal/formatter"
	"github.com/yildizm/histodash/internal/logger"
	"github.com/yildizm/histodash/internal/preview"
	"golang.org/x/sync/errgroup"
)

// newClient builds the endpoint client from the configuration
func newClient(cfg *config.Config, log *logger.Logger) (*api.Client, error) {
	client, err := api.NewClient(api.Config{
		PredictURL: cfg.API.PredictURL,
		MetricsURL: cfg.API.MetricsURL,
		Timeout:    cfg.API.Timeout,
		UserAgent:  cfg.API.UserAgent,
		Logger:     log.WithComponent("api"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create API client: %w", err)
	}
	return client, nil
}

// runPrediction selects path, then submits it while the metrics load. It
// returns the resulting report; a report error is not a Go error.
func runPrediction(ctx context.Context, cfg *config.Config, path string, log *logger.Logger) (*dashboard.Report, error) {
	if err := validateFilePath(path); err != nil {
		return nil, err
	}

	client, err := newClient(cfg, log)
	if err != nil {
		return nil, err
	}

	ctrl := dashboard.New(client, preview.NewManager(), log.WithComponent("dashboard"))
	defer ctrl.Close()

	if err := ctrl.SelectFile(path); err != nil {
		return nil, err
	}

	var g errgroup.Group
	if client.HasMetrics() {
		g.Go(func() error {
			// soft failure: the report simply has no analytics
			_ = ctrl.FetchMetrics(ctx)
			return nil
		})
	}
	g.Go(func() error {
		ctrl.Predict(ctx)
		return nil
	})
	_ = g.Wait()

	return ctrl.Snapshot(), nil
}

// writeReport formats the report with the selected output format
func writeReport(w io.Writer, cfg *config.Config, report *dashboard.Report, outputFile string) error {
	f, err := formatter.New(getOutputFormat(), outputFile == "" && useColor(cfg))
	if err != nil {
		return err
	}
	output, err := f.Format(report)
	if err != nil {
		return fmt.Errorf("failed to format report: %w", err)
	}
	return handleOutputDestination(w, output, outputFile)
}

// handleOutputDestination writes output to file or w
func handleOutputDestination(w io.Writer, output []byte, outputFile string) error {
	if outputFile == "" {
		_, err := w.Write(output)
		return err
	}

	if err := writeOutputBytesToFile(output, outputFile); err != nil {
		return fmt.Errorf("failed to write output to file: %w", err)
	}
	if isVerbose() {
		fmt.Fprintf(os.Stderr, "Output saved to: %s\n", outputFile)
	}
	return nil
}

func validateFilePath(path string) error {
	if path == "" {
		return fmt.Errorf("empty file path")
	}

	cleanPath := filepath.Clean(path)

	info, err := os.Stat(cleanPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("file does not exist: %s", cleanPath)
		}
		return fmt.Errorf("cannot access file: %w", err)
	}

	if info.IsDir() {
		return fmt.Errorf("path is a directory, not a file: %s", cleanPath)
	}

	return nil
}

// writeOutputBytesToFile writes output to a file with proper error handling
func writeOutputBytesToFile(output []byte, filePath string) error {
	cleanPath := filepath.Clean(filePath)

	file, err := os.Create(cleanPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil && isVerbose() {
			fmt.Fprintf(os.Stderr, "Warning: failed to close output file: %v\n", closeErr)
		}
	}()

	if _, err := file.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if err := file.Sync(); err != nil {
		return fmt.Errorf("failed to sync output file: %w", err)
	}

	return nil
}
