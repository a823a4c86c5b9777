package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/yildizm/histodash/internal/dashboard"
)

// csvFormatter formats the classification report as CSV, one row per class
type csvFormatter struct{}

// NewCSV creates a new CSV formatter
func NewCSV() Formatter {
	return &csvFormatter{}
}

func (f *csvFormatter) Format(report *dashboard.Report) ([]byte, error) {
	var b bytes.Buffer
	writer := csv.NewWriter(&b)

	headers := []string{
		"File",
		"Prediction",
		"Error",
		"Class",
		"Precision",
		"Recall",
		"F1 Score",
		"Support",
		"Accuracy",
	}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	file, prediction, errMsg := "", "", ""
	if report.File != nil {
		file = report.File.Name
	}
	if report.Prediction != nil {
		prediction = *report.Prediction
	}
	if report.Error != nil {
		errMsg = escapeCSVString(*report.Error)
	}

	if report.Metrics == nil {
		record := []string{file, prediction, errMsg, "", "", "", "", "", ""}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	} else {
		accuracy := formatScore(report.Metrics.Accuracy)
		for _, row := range scoreRows(report.Metrics) {
			record := []string{
				file,
				prediction,
				errMsg,
				row.Name,
				formatScore(row.Scores.Precision),
				formatScore(row.Scores.Recall),
				formatScore(row.Scores.F1Score),
				formatSupport(row.Scores.Support),
				accuracy,
			}
			if err := writer.Write(record); err != nil {
				return nil, fmt.Errorf("failed to write CSV record: %w", err)
			}
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return b.Bytes(), nil
}

// escapeCSVString flattens newlines and truncates long messages
func escapeCSVString(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", " ")

	if len(s) > 100 {
		s = s[:97] + "..."
	}

	return s
}
