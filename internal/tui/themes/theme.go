package themes

import "github.com/charmbracelet/lipgloss"

// Theme defines the visual style for the chat TUI.
type Theme struct {
	Title          lipgloss.Style
	Subtitle       lipgloss.Style
	UserMessage    lipgloss.Style
	Success        lipgloss.Style
	Question       lipgloss.Style
	Error          lipgloss.Style
	Suggestion     lipgloss.Style
	Option         lipgloss.Style
	SelectedOption lipgloss.Style
	InputBox       lipgloss.Style
	Waiting        lipgloss.Style
	Primary        lipgloss.Color
	Muted          lipgloss.Color
	Border         lipgloss.Color
}

// Default is the default theme.
var Default = Theme{
	Primary: lipgloss.Color("#2ECC71"),
	Muted:   lipgloss.Color("#737373"),
	Border:  lipgloss.Color("#404040"),

	Title: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#2ECC71")),
	Subtitle: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#a3a3a3")),
	UserMessage: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#3b82f6")).
		Bold(true),
	Success: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#10b981")),
	Question: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#f59e0b")),
	Error: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#ef4444")),
	Suggestion: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#737373")).
		Italic(true),
	Option: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#404040")).
		Padding(0, 1),
	SelectedOption: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#2ECC71")).
		Foreground(lipgloss.Color("#2ECC71")).
		Bold(true).
		Padding(0, 1),
	InputBox: lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("#404040")).
		Padding(0, 1),
	Waiting: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#737373")).
		Italic(true),
}

// Mono renders without colors, for terminals that cannot show them.
var Mono = Theme{
	Title:          lipgloss.NewStyle().Bold(true),
	Subtitle:       lipgloss.NewStyle(),
	UserMessage:    lipgloss.NewStyle().Bold(true),
	Success:        lipgloss.NewStyle(),
	Question:       lipgloss.NewStyle(),
	Error:          lipgloss.NewStyle(),
	Suggestion:     lipgloss.NewStyle().Italic(true),
	Option:         lipgloss.NewStyle().Border(lipgloss.NormalBorder()).Padding(0, 1),
	SelectedOption: lipgloss.NewStyle().Border(lipgloss.ThickBorder()).Bold(true).Padding(0, 1),
	InputBox:       lipgloss.NewStyle().Border(lipgloss.NormalBorder()).Padding(0, 1),
	Waiting:        lipgloss.NewStyle().Italic(true),
}

// ByName returns the named theme, falling back to Default.
func ByName(name string) Theme {
	switch name {
	case "mono":
		return Mono
	default:
		return Default
	}
}
