package formatter

import (
	"fmt"
	"strings"

	"github.com/yildizm/histodash/internal/api"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// BadgeText renders a prediction label the way the dashboard badge shows it
func BadgeText(label string) string {
	return cases.Upper(language.Und).String(label)
}

// FormatBytes formats a byte count for display
func FormatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

// formatScore formats a 0..1 score with two decimals
func formatScore(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

// formatSupport formats a support count; supports are whole numbers in practice
func formatSupport(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%.1f", v)
}

// scoreRow is one labelled row of a classification report
type scoreRow struct {
	Name   string
	Scores api.ClassScores
}

// scoreRows lists the report rows in display order
func scoreRows(m *api.Metrics) []scoreRow {
	return []scoreRow{
		{Name: "benign", Scores: m.Benign},
		{Name: "malignant", Scores: m.Malignant},
		{Name: "macro_avg", Scores: m.MacroAvg},
		{Name: "weighted_avg", Scores: m.WeightedAvg},
	}
}

// displayName turns a row key into a heading, e.g. "macro_avg" -> "Macro Avg"
func displayName(key string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(key, "_", " "))
}
