package charts

import (
	"bytes"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/yildizm/histodash/internal/api"
)

func fullMetrics() api.Metrics {
	return api.Metrics{
		Accuracy:    0.85,
		Benign:      api.ClassScores{Precision: 0.78, Recall: 0.74, F1Score: 0.76, Support: 176},
		Malignant:   api.ClassScores{Precision: 0.88, Recall: 0.90, F1Score: 0.89, Support: 369},
		MacroAvg:    api.ClassScores{Precision: 0.83, Recall: 0.82, F1Score: 0.83, Support: 545},
		WeightedAvg: api.ClassScores{Precision: 0.85, Recall: 0.85, F1Score: 0.85, Support: 545},
	}
}

func TestBuild(t *testing.T) {
	set := Build(fullMetrics(), "Malignant")

	if set.Accuracy.Kind != KindGauge || math.Abs(set.Accuracy.Value-85) > 1e-9 || set.Accuracy.Max != 100 {
		t.Errorf("Unexpected gauge %+v", set.Accuracy)
	}
	if set.Accuracy.Color != "#2ecc71" {
		t.Errorf("Expected gauge color #2ecc71, got %s", set.Accuracy.Color)
	}

	if set.PerClass.Title != "Scores per class (highlight: Malignant)" {
		t.Errorf("Unexpected per-class title %q", set.PerClass.Title)
	}
	if len(set.PerClass.Series) != 3 || set.PerClass.YMax != 1 {
		t.Fatalf("Unexpected per-class chart %+v", set.PerClass)
	}
	wantColors := []string{"#3498db", "#e67e22", "#2ecc71"}
	for i, s := range set.PerClass.Series {
		if s.Color != wantColors[i] {
			t.Errorf("Series %s: expected color %s, got %s", s.Name, wantColors[i], s.Color)
		}
	}
	if got := set.PerClass.Series[1].Values; got[0] != 0.74 || got[1] != 0.90 {
		t.Errorf("Unexpected recall values %v", got)
	}

	if set.Support.Slices[1].Value != 369 || set.Support.SliceTotal() != 545 {
		t.Errorf("Unexpected support slices %+v", set.Support.Slices)
	}

	if len(set.Averages.Categories) != 3 || set.Averages.Series[0].Color != "#9b59b6" || set.Averages.Series[1].Color != "#f39c12" {
		t.Errorf("Unexpected averages chart %+v", set.Averages)
	}
}

func TestBuildMissingFieldsAreZero(t *testing.T) {
	m, err := api.DecodeMetrics([]byte(`{"metrics": {"accuracy": 0.9, "benign": {"recall": 0.5}}}`))
	if err != nil {
		t.Fatalf("DecodeMetrics failed: %v", err)
	}

	set := Build(*m, "benign")
	precision := set.PerClass.Series[0]
	if precision.Name != "Precision" || precision.Values[0] != 0 {
		t.Errorf("Expected benign precision data point 0, got %v", precision.Values)
	}
	if set.PerClass.Series[1].Values[0] != 0.5 {
		t.Errorf("Expected benign recall 0.5, got %v", set.PerClass.Series[1].Values[0])
	}
	for _, s := range set.Averages.Series {
		for _, v := range s.Values {
			if v != 0 {
				t.Errorf("Expected zero average values, got %v", s.Values)
			}
		}
	}
}

func TestRenderTerminal(t *testing.T) {
	out := RenderTerminal(Build(fullMetrics(), "benign"), 60)

	for _, want := range []string{"Accuracy (%)", "85.0", "Scores per class (highlight: benign)", "Support Distribution", "67.7%", "Macro vs Weighted Averages", "Weighted Avg"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected terminal output to contain %q", want)
		}
	}

	empty := RenderTerminal(Build(api.Metrics{}, ""), 10)
	if !strings.Contains(empty, "0.0%") {
		t.Error("Expected zero support to render 0.0%")
	}
}

func TestFraction(t *testing.T) {
	tests := []struct {
		v, lo, hi, want float64
	}{
		{0.5, 0, 1, 0.5},
		{-1, 0, 1, 0},
		{2, 0, 1, 1},
		{50, 0, 100, 0.5},
		{1, 1, 1, 0},
	}
	for _, tt := range tests {
		if got := fraction(tt.v, tt.lo, tt.hi); got != tt.want {
			t.Errorf("fraction(%v, %v, %v) = %v, want %v", tt.v, tt.lo, tt.hi, got, tt.want)
		}
	}
}

func TestExportPNG(t *testing.T) {
	for name, m := range map[string]api.Metrics{"full": fullMetrics(), "empty": {}} {
		t.Run(name, func(t *testing.T) {
			dir := filepath.Join(t.TempDir(), "charts")
			paths, err := ExportPNG(Build(m, "Malignant"), dir, 640, 400)
			if err != nil {
				t.Fatalf("ExportPNG failed: %v", err)
			}
			if len(paths) != 4 {
				t.Fatalf("Expected 4 files, got %d", len(paths))
			}

			for _, p := range paths {
				data, err := os.ReadFile(p)
				if err != nil {
					t.Fatalf("read %s: %v", p, err)
				}
				if _, err := png.Decode(bytes.NewReader(data)); err != nil {
					t.Errorf("%s is not a PNG: %v", p, err)
				}
			}
		})
	}
}

func TestExportPNGInvalidSize(t *testing.T) {
	if _, err := ExportPNG(Build(fullMetrics(), ""), t.TempDir(), 0, 100); err == nil {
		t.Error("Expected error for zero width")
	}
}
