package tui

import "github.com/charmbracelet/lipgloss"

// Styles groups the lipgloss styles of the panel.
type Styles struct {
	Title     lipgloss.Style
	Tab       lipgloss.Style
	ActiveTab lipgloss.Style
	Cursor    lipgloss.Style
	Selected  lipgloss.Style
	Enabled   lipgloss.Style
	Disabled  lipgloss.Style
	Submit    lipgloss.Style
	CardTitle lipgloss.Style
	Highlight lipgloss.Style
	Muted     lipgloss.Style
	Added     lipgloss.Style
	Failed    lipgloss.Style
	Help      lipgloss.Style
}

// DefaultStyles returns the default color scheme.
func DefaultStyles() Styles {
	return Styles{
		Title:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		Tab:       lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("245")),
		ActiveTab: lipgloss.NewStyle().Padding(0, 1).Bold(true).Foreground(lipgloss.Color("212")),
		Cursor:    lipgloss.NewStyle().Foreground(lipgloss.Color("212")),
		Selected:  lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		Enabled:   lipgloss.NewStyle().Bold(true),
		Disabled:  lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		Submit:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("0")).Background(lipgloss.Color("12")).Padding(0, 1),
		CardTitle: lipgloss.NewStyle().Bold(true),
		Highlight: lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(lipgloss.Color("212")).PaddingLeft(1),
		Muted:  lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		Added:  lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("245")).Padding(0, 1),
		Failed: lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Background(lipgloss.Color("9")).Padding(0, 1),
		Help:   lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
	}
}
