package formatter

import (
	"fmt"
	"strings"

	"github.com/yildizm/histodash/internal/api"
	"github.com/yildizm/histodash/internal/dashboard"
)

// markdownFormatter formats output as Markdown
type markdownFormatter struct{}

// NewMarkdown creates a new Markdown formatter
func NewMarkdown() Formatter {
	return &markdownFormatter{}
}

func (f *markdownFormatter) Format(report *dashboard.Report) ([]byte, error) {
	var b strings.Builder

	b.WriteString("# Breast Cancer Image Classifier\n\n")
	fmt.Fprintf(&b, "Generated: %s\n\n", report.GeneratedAt.Format("2006-01-02 15:04:05"))

	if report.File != nil {
		f.writeFile(&b, report.File)
	}
	f.writePrediction(&b, report)
	if report.Metrics != nil {
		f.writeMetrics(&b, report.Metrics)
	}

	return []byte(b.String()), nil
}

func (f *markdownFormatter) writeFile(b *strings.Builder, file *dashboard.FileInfo) {
	b.WriteString("## Image\n\n")
	b.WriteString("| Field | Value |\n")
	b.WriteString("|-------|-------|\n")
	fmt.Fprintf(b, "| File | `%s` |\n", file.Name)
	fmt.Fprintf(b, "| Size | %s |\n", FormatBytes(file.Size))
	if file.Format != "" {
		fmt.Fprintf(b, "| Format | %s |\n", file.Format)
		fmt.Fprintf(b, "| Dimensions | %dx%d |\n", file.Width, file.Height)
	}
	b.WriteString("\n")
}

func (f *markdownFormatter) writePrediction(b *strings.Builder, report *dashboard.Report) {
	b.WriteString("## Prediction\n\n")
	if report.Prediction != nil {
		fmt.Fprintf(b, "**%s** (%s)\n\n", BadgeText(*report.Prediction), report.Badge)
	} else {
		b.WriteString("_No prediction yet_\n\n")
	}
	if report.Error != nil {
		fmt.Fprintf(b, "> **Error:** %s\n\n", *report.Error)
	}
}

func (f *markdownFormatter) writeMetrics(b *strings.Builder, m *api.Metrics) {
	b.WriteString("## Model Analytics\n\n")
	fmt.Fprintf(b, "Accuracy: **%.1f%%**\n\n", m.Accuracy*100)

	b.WriteString("| Class | Precision | Recall | F1 Score | Support |\n")
	b.WriteString("|-------|-----------|--------|----------|---------|\n")
	for _, row := range scoreRows(m) {
		fmt.Fprintf(b, "| %s | %s | %s | %s | %s |\n",
			displayName(row.Name),
			formatScore(row.Scores.Precision),
			formatScore(row.Scores.Recall),
			formatScore(row.Scores.F1Score),
			formatSupport(row.Scores.Support))
	}
	b.WriteString("\n")
}
