package charts

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const (
	minBarWidth = 10
	labelWidth  = 14
	valueWidth  = 7
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "#3B82F6", Dark: "#60A5FA"})
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#9CA3AF"})
	trackStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#E5E7EB", Dark: "#374151"})
)

// RenderTerminal draws every chart in the set within width columns
func RenderTerminal(set Set, width int) string {
	blocks := make([]string, 0, 4)
	for _, c := range set.All() {
		blocks = append(blocks, RenderChart(c, width))
	}
	return strings.Join(blocks, "\n\n")
}

// RenderChart draws one chart declaration
func RenderChart(c Chart, width int) string {
	barWidth := width - labelWidth - valueWidth - 2
	if barWidth < minBarWidth {
		barWidth = minBarWidth
	}

	var lines []string
	lines = append(lines, titleStyle.Render(c.Title))

	switch c.Kind {
	case KindGauge:
		frac := fraction(c.Value, c.Min, c.Max)
		lines = append(lines, row("", bar(frac, barWidth, c.Color), fmt.Sprintf("%.1f", c.Value)))
		lines = append(lines, mutedStyle.Render(fmt.Sprintf("%s%.0f%s%.0f", strings.Repeat(" ", labelWidth+1), c.Min, strings.Repeat(" ", max(barWidth-4, 1)), c.Max)))

	case KindBar:
		for i, category := range c.Categories {
			lines = append(lines, mutedStyle.Render(category))
			for _, s := range c.Series {
				var v float64
				if i < len(s.Values) {
					v = s.Values[i]
				}
				lines = append(lines, row(s.Name, bar(fraction(v, c.YMin, c.YMax), barWidth, s.Color), fmt.Sprintf("%.2f", v)))
			}
		}

	case KindPie:
		total := c.SliceTotal()
		for _, s := range c.Slices {
			var frac float64
			if total > 0 {
				frac = s.Value / total
			}
			lines = append(lines, row(s.Label, bar(frac, barWidth, s.Color), fmt.Sprintf("%.1f%%", frac*100)))
		}
		lines = append(lines, mutedStyle.Render(fmt.Sprintf("total %.0f", total)))
	}

	return strings.Join(lines, "\n")
}

func row(label, barText, value string) string {
	return fmt.Sprintf("%-*s %s %*s", labelWidth, truncate(label, labelWidth), barText, valueWidth, value)
}

func bar(frac float64, width int, color string) string {
	filled := int(frac*float64(width) + 0.5)
	if filled > width {
		filled = width
	}
	style := lipgloss.NewStyle().Foreground(lipgloss.Color(color))
	return style.Render(strings.Repeat("█", filled)) + trackStyle.Render(strings.Repeat("░", width-filled))
}

// fraction maps v onto [0, 1] within [lo, hi]
func fraction(v, lo, hi float64) float64 {
	if hi <= lo {
		return 0
	}
	f := (v - lo) / (hi - lo)
	switch {
	case f < 0:
		return 0
	case f > 1:
		return 1
	default:
		return f
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
