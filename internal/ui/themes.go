package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/yildizm/histodash/internal/dashboard"
)

// Theme represents a color theme for the TUI
type Theme struct {
	Name string

	Primary   lipgloss.AdaptiveColor
	Secondary lipgloss.AdaptiveColor
	Success   lipgloss.AdaptiveColor
	Warning   lipgloss.AdaptiveColor
	Error     lipgloss.AdaptiveColor
	Border    lipgloss.AdaptiveColor
	Selected  lipgloss.AdaptiveColor

	// Badge colors per prediction class
	Malignant lipgloss.AdaptiveColor
	Benign    lipgloss.AdaptiveColor
}

// buildTheme creates a theme with the given light/dark color pairs
func buildTheme(name string, primary, secondary, success, warning, errorColor, border, selected, malignant, benign [2]string) Theme {
	return Theme{
		Name:      name,
		Primary:   lipgloss.AdaptiveColor{Light: primary[0], Dark: primary[1]},
		Secondary: lipgloss.AdaptiveColor{Light: secondary[0], Dark: secondary[1]},
		Success:   lipgloss.AdaptiveColor{Light: success[0], Dark: success[1]},
		Warning:   lipgloss.AdaptiveColor{Light: warning[0], Dark: warning[1]},
		Error:     lipgloss.AdaptiveColor{Light: errorColor[0], Dark: errorColor[1]},
		Border:    lipgloss.AdaptiveColor{Light: border[0], Dark: border[1]},
		Selected:  lipgloss.AdaptiveColor{Light: selected[0], Dark: selected[1]},
		Malignant: lipgloss.AdaptiveColor{Light: malignant[0], Dark: malignant[1]},
		Benign:    lipgloss.AdaptiveColor{Light: benign[0], Dark: benign[1]},
	}
}

// Available themes
var (
	DefaultTheme = buildTheme("default",
		[2]string{"#3B82F6", "#60A5FA"}, [2]string{"#6B7280", "#9CA3AF"}, [2]string{"#10B981", "#34D399"},
		[2]string{"#F59E0B", "#FBBF24"}, [2]string{"#EF4444", "#F87171"}, [2]string{"#D1D5DB", "#374151"},
		[2]string{"#DBEAFE", "#1E3A8A"}, [2]string{"#DC2626", "#F87171"}, [2]string{"#059669", "#34D399"})

	HighContrastTheme = buildTheme("high-contrast",
		[2]string{"#000000", "#FFFFFF"}, [2]string{"#666666", "#BBBBBB"}, [2]string{"#006600", "#00FF00"},
		[2]string{"#CC6600", "#FFAA00"}, [2]string{"#CC0000", "#FF4444"}, [2]string{"#000000", "#FFFFFF"},
		[2]string{"#CCCCCC", "#333333"}, [2]string{"#CC0000", "#FF4444"}, [2]string{"#006600", "#00FF00"})
)

// ThemeByName returns the named theme
func ThemeByName(name string) (Theme, bool) {
	switch name {
	case "", "default":
		return DefaultTheme, true
	case "high-contrast":
		return HighContrastTheme, true
	default:
		return Theme{}, false
	}
}

// AvailableThemes returns the list of theme names
func AvailableThemes() []string {
	return []string{"default", "high-contrast"}
}

// Styles are the rendered styles derived from a theme
type Styles struct {
	Title     lipgloss.Style
	Caption   lipgloss.Style
	Muted     lipgloss.Style
	Key       lipgloss.Style
	Status    lipgloss.Style
	Failure   lipgloss.Style
	ErrorBox  lipgloss.Style
	Panel     lipgloss.Style
	Prompt    lipgloss.Style
	Malignant lipgloss.Style
	Benign    lipgloss.Style
}

// NewStyles derives the dashboard styles from a theme
func NewStyles(theme Theme) Styles {
	return Styles{
		Title: lipgloss.NewStyle().
			Foreground(theme.Primary).
			Bold(true),

		Caption: lipgloss.NewStyle().
			Foreground(theme.Primary).
			Bold(true).
			Italic(true),

		Muted: lipgloss.NewStyle().
			Foreground(theme.Secondary),

		Key: lipgloss.NewStyle().
			Foreground(theme.Primary).
			Bold(true),

		Status: lipgloss.NewStyle().
			Foreground(theme.Warning),

		Failure: lipgloss.NewStyle().
			Foreground(theme.Error).
			Bold(true),

		ErrorBox: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Error).
			Foreground(theme.Error).
			Padding(0, 1),

		Panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border).
			Padding(0, 1),

		Prompt: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Primary).
			Padding(0, 1),

		Malignant: lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#111827"}).
			Background(theme.Malignant).
			Bold(true).
			Padding(0, 2),

		Benign: lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#111827"}).
			Background(theme.Benign).
			Bold(true).
			Padding(0, 2),
	}
}

// Badge returns the style for a badge class
func (s Styles) Badge(class string) lipgloss.Style {
	if class == dashboard.BadgeMalignant {
		return s.Malignant
	}
	return s.Benign
}
