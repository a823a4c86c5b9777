package formatter

import (
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/yildizm/histodash/internal/api"
	"github.com/yildizm/histodash/internal/dashboard"
	"github.com/yildizm/histodash/internal/emoji"
)

func strPtr(s string) *string { return &s }

func sampleReport() *dashboard.Report {
	return &dashboard.Report{
		GeneratedAt: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
		File:        &dashboard.FileInfo{Path: "/tmp/slide.png", Name: "slide.png", Size: 2048, Format: "png", Width: 50, Height: 40},
		Prediction:  strPtr("Malignant"),
		Badge:       dashboard.BadgeMalignant,
		Metrics: &api.Metrics{
			Accuracy:  0.85,
			Benign:    api.ClassScores{Precision: 0.78, Recall: 0.74, F1Score: 0.76, Support: 176},
			Malignant: api.ClassScores{Precision: 0.88, Recall: 0.90, F1Score: 0.89, Support: 369},
		},
		Analytics: true,
	}
}

func TestNew(t *testing.T) {
	for _, name := range []string{"", "text", "json", "markdown", "md", "csv"} {
		if _, err := New(name, false); err != nil {
			t.Errorf("New(%q) failed: %v", name, err)
		}
	}
	if _, err := New("xml", false); err == nil {
		t.Error("Expected error for unsupported format")
	}
}

func TestTerminalFormat(t *testing.T) {
	emoji.SetEmojiDisabled(true)
	defer emoji.SetEmojiDisabled(false)

	out, err := NewTerminal(false).Format(sampleReport())
	if err != nil {
		t.Fatalf("Format failed: %v", err)
	}
	text := string(out)

	for _, want := range []string{"Breast Cancer Image Classifier", "slide.png", "2.0 KiB", "[MAL] MALIGNANT", "Accuracy", "85.0%", "Weighted Avg"} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected output to contain %q\n%s", want, text)
		}
	}
}

func TestTerminalFormatEmptyAndError(t *testing.T) {
	emoji.SetEmojiDisabled(true)
	defer emoji.SetEmojiDisabled(false)

	report := &dashboard.Report{Error: strPtr(api.MsgConnectFailed)}
	out, err := NewTerminal(false).Format(report)
	if err != nil {
		t.Fatalf("Format failed: %v", err)
	}
	text := string(out)
	if !strings.Contains(text, "No prediction yet") || !strings.Contains(text, "[ERR] Failed to connect to API") {
		t.Errorf("Unexpected output:\n%s", text)
	}
	if strings.Contains(text, "Model Analytics") {
		t.Error("Expected no analytics section without metrics")
	}
}

func TestJSONFormat(t *testing.T) {
	out, err := NewJSON().Format(sampleReport())
	if err != nil {
		t.Fatalf("Format failed: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(out, &decoded); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if decoded["prediction"] != "Malignant" || decoded["badge"] != "malignant" {
		t.Errorf("Unexpected prediction fields: %v", decoded)
	}
	if _, ok := decoded["error"]; ok {
		t.Error("Expected error to be omitted")
	}
	metrics, ok := decoded["metrics"].(map[string]interface{})
	if !ok || metrics["accuracy"] != 0.85 {
		t.Errorf("Unexpected metrics: %v", decoded["metrics"])
	}
}

func TestMarkdownFormat(t *testing.T) {
	out, err := NewMarkdown().Format(sampleReport())
	if err != nil {
		t.Fatalf("Format failed: %v", err)
	}
	text := string(out)
	for _, want := range []string{"# Breast Cancer Image Classifier", "Generated: 2025-01-02 03:04:05", "**MALIGNANT** (malignant)", "| Malignant | 0.88 | 0.90 | 0.89 | 369 |"} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected markdown to contain %q\n%s", want, text)
		}
	}
}

func TestCSVFormat(t *testing.T) {
	out, err := NewCSV().Format(sampleReport())
	if err != nil {
		t.Fatalf("Format failed: %v", err)
	}
	records, err := csv.NewReader(strings.NewReader(string(out))).ReadAll()
	if err != nil {
		t.Fatalf("invalid CSV: %v", err)
	}
	if len(records) != 5 {
		t.Fatalf("Expected header plus 4 rows, got %d", len(records))
	}
	if records[2][3] != "malignant" || records[2][4] != "0.88" || records[2][8] != "0.85" {
		t.Errorf("Unexpected malignant row %v", records[2])
	}

	out, err = NewCSV().Format(&dashboard.Report{Error: strPtr("line one\nline two")})
	if err != nil {
		t.Fatalf("Format failed: %v", err)
	}
	records, _ = csv.NewReader(strings.NewReader(string(out))).ReadAll()
	if len(records) != 2 || records[1][2] != "line one line two" {
		t.Errorf("Unexpected error-only CSV %v", records)
	}
}

func TestFormatBytes(t *testing.T) {
	tests := map[int64]string{
		0:       "0 B",
		1023:    "1023 B",
		1024:    "1.0 KiB",
		1536:    "1.5 KiB",
		1048576: "1.0 MiB",
	}
	for in, want := range tests {
		if got := FormatBytes(in); got != want {
			t.Errorf("FormatBytes(%d) = %s, want %s", in, got, want)
		}
	}
}
