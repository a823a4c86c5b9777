// Package charts declares the analytics charts drawn from a classification
// report and renders them to the terminal or to PNG files.
package charts

import (
	"fmt"
	"strings"

	"github.com/yildizm/histodash/internal/api"
)

// Kind is the chart type of a declaration
type Kind string

const (
	KindGauge Kind = "gauge"
	KindBar   Kind = "bar"
	KindPie   Kind = "pie"
)

// Series palette
const (
	ColorAccuracy  = "#2ecc71"
	ColorPrecision = "#3498db"
	ColorRecall    = "#e67e22"
	ColorF1        = "#2ecc71"
	ColorMacro     = "#9b59b6"
	ColorWeighted  = "#f39c12"
	ColorBenign    = "#1f77b4"
	ColorMalignant = "#ff7f0e"
)

// Series is one named set of values, aligned with Chart.Categories
type Series struct {
	Name   string
	Color  string
	Values []float64
}

// Slice is one pie segment
type Slice struct {
	Label string
	Value float64
	Color string
}

// Chart is a renderer-independent chart declaration
type Chart struct {
	ID    string
	Kind  Kind
	Title string

	// gauge
	Value    float64
	Min, Max float64
	Color    string

	// bar
	Categories []string
	Series     []Series
	YMin, YMax float64
	YTitle     string

	// pie
	Slices []Slice
}

// Set holds the four analytics charts
type Set struct {
	Accuracy  Chart
	PerClass  Chart
	Support   Chart
	Averages  Chart
	Highlight string
}

// All returns the charts in display order
func (s Set) All() []Chart {
	return []Chart{s.Accuracy, s.PerClass, s.Support, s.Averages}
}

// Build declares the analytics charts for a report. Fields missing from the
// report are already zero and plot as zero.
func Build(m api.Metrics, prediction string) Set {
	label := strings.TrimSpace(prediction)

	return Set{
		Highlight: label,
		Accuracy: Chart{
			ID:    "accuracy",
			Kind:  KindGauge,
			Title: "Accuracy (%)",
			Value: m.Accuracy * 100,
			Min:   0,
			Max:   100,
			Color: ColorAccuracy,
		},
		PerClass: Chart{
			ID:         "per_class",
			Kind:       KindBar,
			Title:      fmt.Sprintf("Scores per class (highlight: %s)", label),
			Categories: []string{"Benign", "Malignant"},
			Series: []Series{
				{Name: "Precision", Color: ColorPrecision, Values: []float64{m.Benign.Precision, m.Malignant.Precision}},
				{Name: "Recall", Color: ColorRecall, Values: []float64{m.Benign.Recall, m.Malignant.Recall}},
				{Name: "F1 Score", Color: ColorF1, Values: []float64{m.Benign.F1Score, m.Malignant.F1Score}},
			},
			YMin:   0,
			YMax:   1,
			YTitle: "Score",
		},
		Support: Chart{
			ID:    "support",
			Kind:  KindPie,
			Title: "Support Distribution",
			Slices: []Slice{
				{Label: "Benign", Value: m.Benign.Support, Color: ColorBenign},
				{Label: "Malignant", Value: m.Malignant.Support, Color: ColorMalignant},
			},
		},
		Averages: Chart{
			ID:         "averages",
			Kind:       KindBar,
			Title:      "Macro vs Weighted Averages",
			Categories: []string{"Precision", "Recall", "F1"},
			Series: []Series{
				{Name: "Macro Avg", Color: ColorMacro, Values: []float64{m.MacroAvg.Precision, m.MacroAvg.Recall, m.MacroAvg.F1Score}},
				{Name: "Weighted Avg", Color: ColorWeighted, Values: []float64{m.WeightedAvg.Precision, m.WeightedAvg.Recall, m.WeightedAvg.F1Score}},
			},
			YMin: 0,
			YMax: 1,
		},
	}
}

// SliceTotal sums the pie values
func (c Chart) SliceTotal() float64 {
	var total float64
	for _, s := range c.Slices {
		total += s.Value
	}
	return total
}
