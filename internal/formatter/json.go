package formatter

import (
	"encoding/json"

	"github.com/yildizm/histodash/internal/dashboard"
)

// jsonFormatter formats output as JSON
type jsonFormatter struct{}

// NewJSON creates a new JSON formatter
func NewJSON() Formatter {
	return &jsonFormatter{}
}

func (f *jsonFormatter) Format(report *dashboard.Report) ([]byte, error) {
	return json.MarshalIndent(report, "", "  ")
}
