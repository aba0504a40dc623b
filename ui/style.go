package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// Terminal palette shared by the command views.
const (
	Green  = lipgloss.Color("10")
	Yellow = lipgloss.Color("11")
	Red    = lipgloss.Color("9")
	Blue   = lipgloss.Color("12")
	Grey   = lipgloss.Color("8")
	White  = lipgloss.Color("7")
)

// Colorize applies the given color to the text using lipgloss.
func Colorize(text string, color lipgloss.Color) string {
	return lipgloss.NewStyle().Foreground(color).Render(text)
}

// StatusColor picks the color for an install or relocation status.
func StatusColor(status string) lipgloss.Color {
	switch status {
	case "completed", "ready":
		return Green
	case "skipped", "moving":
		return Yellow
	case "failed", "missing":
		return Red
	default:
		return White
	}
}
