// Package tui renders bound resources as an interactive terminal
// application: collection views over list resources, detail pages over
// document resources, a type-selector dialog, and toast notifications.
package tui

import "github.com/charmbracelet/lipgloss"

// Theme collects the lipgloss styles shared by every component. Styles are
// value types; components derive widths from these without mutating them.
type Theme struct {
	Title       lipgloss.Style
	Header      lipgloss.Style
	Row         lipgloss.Style
	SelectedRow lipgloss.Style
	Muted       lipgloss.Style
	Error       lipgloss.Style
	Success     lipgloss.Style
	Dialog      lipgloss.Style
	DialogIcon  lipgloss.Style
	Toast       lipgloss.Style
	ToastError  lipgloss.Style
}

// DefaultTheme works on dark and light terminals via adaptive colors.
func DefaultTheme() Theme {
	subtle := lipgloss.AdaptiveColor{Light: "#6b7280", Dark: "#9ca3af"}
	accent := lipgloss.AdaptiveColor{Light: "#4f46e5", Dark: "#818cf8"}
	danger := lipgloss.AdaptiveColor{Light: "#b91c1c", Dark: "#f87171"}
	good := lipgloss.AdaptiveColor{Light: "#15803d", Dark: "#4ade80"}

	return Theme{
		Title:       lipgloss.NewStyle().Bold(true).Foreground(accent).Padding(0, 1),
		Header:      lipgloss.NewStyle().Bold(true).Padding(0, 1),
		Row:         lipgloss.NewStyle().Padding(0, 1),
		SelectedRow: lipgloss.NewStyle().Padding(0, 1).Reverse(true),
		Muted:       lipgloss.NewStyle().Foreground(subtle),
		Error:       lipgloss.NewStyle().Foreground(danger),
		Success:     lipgloss.NewStyle().Foreground(good),
		Dialog: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(1, 2),
		DialogIcon: lipgloss.NewStyle().Foreground(accent).Bold(true),
		Toast: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(good).
			Padding(0, 1),
		ToastError: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(danger).
			Padding(0, 1),
	}
}
