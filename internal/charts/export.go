package charts

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

const (
	colorTrack  = "#ecf0f1"
	colorNoData = "#bdc3c7"
)

// ExportPNG writes every chart in the set to dir as <id>.png and returns the
// written paths
func ExportPNG(set Set, dir string, width, height int) ([]string, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid chart size %dx%d", width, height)
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create export directory: %w", err)
	}

	paths := make([]string, 0, 4)
	for _, c := range set.All() {
		path := filepath.Join(dir, c.ID+".png")
		if err := writePNG(c, path, width, height); err != nil {
			return paths, fmt.Errorf("failed to export %s chart: %w", c.ID, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

type renderable interface {
	Render(rp chart.RendererProvider, w io.Writer) error
}

func writePNG(c Chart, path string, width, height int) (err error) {
	var r renderable
	switch c.Kind {
	case KindGauge:
		r = gaugeChart(c, width, height)
	case KindBar:
		r = barChart(c, width, height)
	case KindPie:
		r = pieChart(c, width, height)
	default:
		return fmt.Errorf("unknown chart kind %q", c.Kind)
	}

	// #nosec G304 - path is built from the export directory
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	return r.Render(chart.PNG, f)
}

// gaugeChart draws the gauge as a two-slice pie: value and remaining track
func gaugeChart(c Chart, width, height int) *chart.PieChart {
	frac := fraction(c.Value, c.Min, c.Max)
	span := c.Max - c.Min

	var values []chart.Value
	if frac > 0 {
		values = append(values, chart.Value{
			Label: fmt.Sprintf("%.1f", c.Value),
			Value: frac * span,
			Style: fill(c.Color),
		})
	}
	if frac < 1 {
		values = append(values, chart.Value{
			Value: (1 - frac) * span,
			Style: fill(colorTrack),
		})
	}

	return &chart.PieChart{
		Title:  c.Title,
		Width:  width,
		Height: height,
		Values: values,
	}
}

func barChart(c Chart, width, height int) *chart.BarChart {
	var bars []chart.Value
	for i, category := range c.Categories {
		for _, s := range c.Series {
			var v float64
			if i < len(s.Values) {
				v = s.Values[i]
			}
			bars = append(bars, chart.Value{
				Label: category + " " + s.Name,
				Value: v,
				Style: fill(s.Color),
			})
		}
	}

	barWidth := width / (len(bars)*2 + 1)
	if barWidth < 8 {
		barWidth = 8
	}

	return &chart.BarChart{
		Title:      c.Title,
		Width:      width,
		Height:     height,
		BarWidth:   barWidth,
		BarSpacing: barWidth / 2,
		YAxis: chart.YAxis{
			Name:  c.YTitle,
			Range: &chart.ContinuousRange{Min: c.YMin, Max: c.YMax},
		},
		Bars: bars,
	}
}

func pieChart(c Chart, width, height int) *chart.PieChart {
	total := c.SliceTotal()

	var values []chart.Value
	for _, s := range c.Slices {
		if s.Value <= 0 {
			continue
		}
		values = append(values, chart.Value{
			Label: fmt.Sprintf("%s %.1f%%", s.Label, s.Value/total*100),
			Value: s.Value,
			Style: fill(s.Color),
		})
	}
	if len(values) == 0 {
		values = []chart.Value{{Label: "No data", Value: 1, Style: fill(colorNoData)}}
	}

	return &chart.PieChart{
		Title:  c.Title,
		Width:  width,
		Height: height,
		Values: values,
	}
}

func fill(hex string) chart.Style {
	color := drawing.ColorFromHex(hex)
	return chart.Style{
		FillColor:   color,
		StrokeColor: drawing.ColorWhite,
		StrokeWidth: 1,
	}
}
