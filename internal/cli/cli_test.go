package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"image"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/yildizm/histodash/internal/api"
	"github.com/yildizm/histodash/internal/config"
)

const metricsBody = `{
  "accuracy": 0.85,
  "benign": {"precision": 0.78, "recall": 0.74, "f1_score": 0.76, "support": 176},
  "malignant": {"precision": 0.88, "recall": 0.90, "f1_score": 0.89, "support": 369}
}`

// isolate keeps user config files and environment out of a test
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv(config.EnvPredictURL, "")
	t.Setenv(config.EnvMetricsURL, "")
	t.Chdir(t.TempDir())
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewRootCommand("1.2.3", "abc123", "2025-01-01")
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeImage(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "slide.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, image.NewGray(image.Rect(0, 0, 4, 4))); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return path
}

// newServer serves a prediction body on /predict and the metrics on /metrics
func newServer(t *testing.T, predictBody string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/predict", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("Expected POST, got %s", r.Method)
			return
		}
		file, _, err := r.FormFile(api.FileField)
		if err != nil {
			t.Errorf("Expected multipart field %q: %v", api.FileField, err)
			return
		}
		_, _ = io.Copy(io.Discard, file)
		_ = file.Close()
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, predictBody)
	})
	mux.HandleFunc("/metrics", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, metricsBody)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if !strings.Contains(out, "histodash 1.2.3 (abc123) built on 2025-01-01") {
		t.Errorf("Unexpected version output:\n%s", out)
	}
}

func TestPredictCommand(t *testing.T) {
	isolate(t)
	srv := newServer(t, `{"prediction": "Malignant"}`)

	out, err := execute(t,
		"--api-url", srv.URL+"/predict",
		"--data-url", srv.URL+"/metrics",
		"--output", "json",
		"predict", writeImage(t))
	if err != nil {
		t.Fatalf("predict failed: %v\n%s", err, out)
	}

	var report map[string]interface{}
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("invalid JSON output: %v\n%s", err, out)
	}
	if report["prediction"] != "Malignant" || report["badge"] != "malignant" {
		t.Errorf("Unexpected prediction fields: %v", report)
	}
	if report["analytics"] != true {
		t.Error("Expected analytics with prediction and metrics")
	}
}

func TestPredictCommandReportError(t *testing.T) {
	isolate(t)
	srv := newServer(t, `{"error": "Image could not be processed"}`)

	out, err := execute(t, "--api-url", srv.URL+"/predict", "--no-emoji", "predict", writeImage(t))
	if !errors.Is(err, ErrReportFailed) {
		t.Fatalf("Expected ErrReportFailed, got %v", err)
	}
	if !strings.Contains(out, "Image could not be processed") {
		t.Errorf("Expected the server error in the report:\n%s", out)
	}
}

func TestPredictCommandConnectFailure(t *testing.T) {
	isolate(t)
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	out, err := execute(t, "--api-url", url, "--output", "csv", "predict", writeImage(t))
	if !errors.Is(err, ErrReportFailed) {
		t.Fatalf("Expected ErrReportFailed, got %v", err)
	}
	if !strings.Contains(out, api.MsgConnectFailed) {
		t.Errorf("Expected connect failure message:\n%s", out)
	}
}

func TestPredictCommandMissingFile(t *testing.T) {
	isolate(t)
	_, err := execute(t, "--api-url", "http://127.0.0.1:1", "predict", filepath.Join(t.TempDir(), "missing.png"))
	if err == nil || errors.Is(err, ErrReportFailed) {
		t.Fatalf("Expected a file error, got %v", err)
	}
}

func TestInvalidAPIURLFlag(t *testing.T) {
	isolate(t)
	_, err := execute(t, "--api-url", "ftp://example.com", "predict", writeImage(t))
	if err == nil || !strings.Contains(err.Error(), "predict_url") {
		t.Fatalf("Expected predict_url validation error, got %v", err)
	}
}

func TestMetricsCommand(t *testing.T) {
	isolate(t)
	srv := newServer(t, `{}`)

	out, err := execute(t, "--data-url", srv.URL+"/metrics", "--output", "markdown", "metrics")
	if err != nil {
		t.Fatalf("metrics failed: %v", err)
	}
	if !strings.Contains(out, "## Model Analytics") || !strings.Contains(out, "85.0%") {
		t.Errorf("Unexpected metrics output:\n%s", out)
	}

	if _, err := execute(t, "metrics"); err == nil {
		t.Error("Expected an error without a metrics endpoint")
	}
}

func TestChartsExportCommand(t *testing.T) {
	isolate(t)
	srv := newServer(t, `{"prediction": "Benign"}`)
	dir := filepath.Join(t.TempDir(), "charts")

	out, err := execute(t,
		"--api-url", srv.URL+"/predict",
		"--data-url", srv.URL+"/metrics",
		"charts", "export", writeImage(t),
		"--dir", dir, "--width", "320", "--height", "240")
	if err != nil {
		t.Fatalf("charts export failed: %v", err)
	}
	if !strings.Contains(out, "Exported 4 charts") {
		t.Errorf("Unexpected output:\n%s", out)
	}
	for _, name := range []string{"accuracy.png", "per_class.png", "support.png", "averages.png"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("Expected %s: %v", name, err)
		}
	}
}

func TestChartsNeedAnalytics(t *testing.T) {
	isolate(t)
	srv := newServer(t, `{"prediction": "Benign"}`)

	_, err := execute(t, "--api-url", srv.URL+"/predict", "charts", "show", writeImage(t))
	if err == nil || !strings.Contains(err.Error(), "analytics unavailable") {
		t.Fatalf("Expected analytics error, got %v", err)
	}
}

func TestChartsShowCommand(t *testing.T) {
	isolate(t)
	srv := newServer(t, `{"prediction": "Benign"}`)

	out, err := execute(t,
		"--api-url", srv.URL+"/predict",
		"--data-url", srv.URL+"/metrics",
		"--no-color",
		"charts", "show", writeImage(t))
	if err != nil {
		t.Fatalf("charts show failed: %v", err)
	}
	for _, want := range []string{"Accuracy (%)", "Scores per class (highlight: Benign)", "Support Distribution", "Macro vs Weighted Averages"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in output", want)
		}
	}
}

func TestConfigInitAndValidate(t *testing.T) {
	isolate(t)

	out, err := execute(t, "config", "init")
	if err != nil {
		t.Fatalf("config init failed: %v", err)
	}
	if !fileExists(".histodash.yaml") || !strings.Contains(out, ".histodash.yaml") {
		t.Fatalf("Expected .histodash.yaml to be created:\n%s", out)
	}

	if _, err := execute(t, "config", "init"); err == nil {
		t.Error("Expected init to refuse overwriting without --force")
	}
	if _, err := execute(t, "config", "init", "--minimal", "--force"); err != nil {
		t.Errorf("Expected --force to overwrite: %v", err)
	}

	out, err = execute(t, "--config", ".histodash.yaml", "config", "validate")
	if err != nil {
		t.Fatalf("config validate failed: %v", err)
	}
	if !strings.Contains(out, "Configuration is valid") || !strings.Contains(out, "(none, analytics hidden)") {
		t.Errorf("Unexpected validate output:\n%s", out)
	}
}

func TestConfigValidateRejectsBadFile(t *testing.T) {
	isolate(t)
	if err := os.WriteFile("bad.yaml", []byte("api:\n  predict_url: \"not a url\"\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	out, err := execute(t, "--config", "bad.yaml", "config", "validate")
	if err == nil {
		t.Fatal("Expected validation error")
	}
	if !strings.Contains(out, "Configuration validation failed") {
		t.Errorf("Unexpected output:\n%s", out)
	}
}

func TestConfigShowAppliesFlags(t *testing.T) {
	isolate(t)

	out, err := execute(t, "--api-url", "http://gpu-box:9000/predict", "config", "show", "--format", "json")
	if err != nil {
		t.Fatalf("config show failed: %v", err)
	}
	var cfg config.Config
	if err := json.Unmarshal([]byte(out), &cfg); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	if cfg.API.PredictURL != "http://gpu-box:9000/predict" {
		t.Errorf("Expected flag override, got %s", cfg.API.PredictURL)
	}
}

func TestConfigPathCommand(t *testing.T) {
	isolate(t)
	out, err := execute(t, "--no-emoji", "config", "path")
	if err != nil {
		t.Fatalf("config path failed: %v", err)
	}
	if !strings.Contains(out, ".histodash.yaml") || !strings.Contains(out, "No config file found") {
		t.Errorf("Unexpected output:\n%s", out)
	}
}

func TestApplyFlagOverrides(t *testing.T) {
	defer func() {
		apiURL, dataURL, logFile, outputFmt = "", "", "", ""
		noColor, noEmoji, verbose = false, false, false
	}()
	apiURL, dataURL, logFile, outputFmt = "http://a:1", "http://b:2", "/tmp/h.log", "csv"
	noColor, noEmoji, verbose = true, true, true

	cfg := config.DefaultConfig()
	applyFlagOverrides(cfg)

	if cfg.API.PredictURL != "http://a:1" || cfg.API.MetricsURL != "http://b:2" {
		t.Errorf("Unexpected endpoints %+v", cfg.API)
	}
	if cfg.Log.File != "/tmp/h.log" || cfg.Output.DefaultFormat != "csv" {
		t.Errorf("Unexpected overrides %+v %+v", cfg.Log, cfg.Output)
	}
	if cfg.Output.ColorMode != "never" || !cfg.Output.NoEmoji || !cfg.Output.Verbose {
		t.Errorf("Unexpected output overrides %+v", cfg.Output)
	}
	if useColor(cfg) {
		t.Error("Expected color disabled")
	}
}
