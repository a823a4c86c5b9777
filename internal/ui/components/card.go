package components

import (
	"github.com/charmbracelet/lipgloss"
)

// Card statuses
const (
	StatusSuccess = "success"
	StatusWarning = "warning"
	StatusError   = "error"
	StatusInfo    = "info"
	StatusMuted   = "muted"
)

// Card is a bordered box with a title, a highlighted value and a description
type Card struct {
	Title       string
	Value       string
	Description string
	Status      string
	Icon        string
	Width       int
}

// NewCard creates a new card
func NewCard(title, value, description string) *Card {
	return &Card{
		Title:       title,
		Value:       value,
		Description: description,
		Status:      StatusInfo,
		Width:       24,
	}
}

// SetStatus sets the status color of the card
func (c *Card) SetStatus(status string) *Card {
	c.Status = status
	return c
}

// SetIcon sets the icon for the card
func (c *Card) SetIcon(icon string) *Card {
	c.Icon = icon
	return c
}

// SetWidth sets the inner width of the card
func (c *Card) SetWidth(width int) *Card {
	c.Width = width
	return c
}

// StatusColor maps a card status to its color
func StatusColor(status string) lipgloss.AdaptiveColor {
	switch status {
	case StatusSuccess:
		return lipgloss.AdaptiveColor{Light: "#10B981", Dark: "#34D399"}
	case StatusWarning:
		return lipgloss.AdaptiveColor{Light: "#F59E0B", Dark: "#FBBF24"}
	case StatusError:
		return lipgloss.AdaptiveColor{Light: "#EF4444", Dark: "#F87171"}
	case StatusInfo:
		return lipgloss.AdaptiveColor{Light: "#3B82F6", Dark: "#60A5FA"}
	default:
		return lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#9CA3AF"}
	}
}

// Render renders the card
func (c *Card) Render() string {
	infoColor := StatusColor(StatusInfo)
	bodyColor := StatusColor(StatusMuted)
	statusColor := StatusColor(c.Status)

	title := lipgloss.NewStyle().Foreground(infoColor).Bold(true).Render(c.Title)
	if c.Icon != "" {
		title = c.Icon + " " + title
	}

	lines := []string{title}
	if c.Value != "" {
		lines = append(lines, lipgloss.NewStyle().Foreground(statusColor).Bold(true).Render(c.Value))
	}
	if c.Description != "" {
		lines = append(lines, lipgloss.NewStyle().Foreground(bodyColor).Render(c.Description))
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(statusColor).
		Padding(0, 1).
		Width(c.Width).
		Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}
