package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// spinnerFrames are the braille animation frames
var spinnerFrames = []rune("⠋⠙⠹⠸⠼⠴⠦⠧⠇⠏")

// Spinner represents a spinning progress indicator
type Spinner struct {
	Frame int
	Label string
	Color lipgloss.TerminalColor
}

// NewSpinner creates a new spinner
func NewSpinner(label string) *Spinner {
	return &Spinner{
		Label: label,
		Color: lipgloss.AdaptiveColor{Light: "#10B981", Dark: "#34D399"},
	}
}

// Tick advances the spinner animation
func (s *Spinner) Tick() {
	s.Frame = (s.Frame + 1) % len(spinnerFrames)
}

// Glyph returns the current frame
func (s *Spinner) Glyph() string {
	return string(spinnerFrames[s.Frame%len(spinnerFrames)])
}

// Render renders the spinner
func (s *Spinner) Render() string {
	spinner := lipgloss.NewStyle().Foreground(s.Color).Bold(true).Render(s.Glyph())

	if s.Label != "" {
		return fmt.Sprintf("%s %s", spinner, s.Label)
	}

	return spinner
}
