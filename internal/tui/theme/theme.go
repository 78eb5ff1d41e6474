// Package theme holds the lipgloss styles shared by the terminal UIs.
package theme

import "github.com/charmbracelet/lipgloss"

// Theme keeps every color in one place.
type Theme struct {
	StatusOK      lipgloss.Style
	StatusWarn    lipgloss.Style
	StatusFailed  lipgloss.Style
	StatusMuted   lipgloss.Style
	StatusPending lipgloss.Style

	Border    lipgloss.Style
	Title     lipgloss.Style
	Header    lipgloss.Style
	Dim       lipgloss.Style
	Highlight lipgloss.Style
	Selected  lipgloss.Style
	Unread    lipgloss.Style
	Key       lipgloss.Style

	TickerActive   lipgloss.Style
	TickerInactive lipgloss.Style

	// Categories colors activity categories.
	Categories map[string]lipgloss.Style
}

func NewDefaultTheme() Theme {
	purple := lipgloss.Color("#874BFD")

	return Theme{
		StatusOK:      lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF00")),
		StatusWarn:    lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFF00")),
		StatusFailed:  lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000")),
		StatusMuted:   lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")),
		StatusPending: lipgloss.NewStyle().Foreground(lipgloss.Color("#61AFEF")),

		Border: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(purple),
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Padding(0, 1),
		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#61AFEF")),
		Dim:       lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")),
		Highlight: lipgloss.NewStyle().Foreground(lipgloss.Color("#E5C07B")),
		Selected:  lipgloss.NewStyle().Foreground(lipgloss.Color("170")).Bold(true),
		Unread:    lipgloss.NewStyle().Foreground(purple).Bold(true),
		Key: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#3E4451")).
			Padding(0, 1),

		TickerActive:   lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF00")),
		TickerInactive: lipgloss.NewStyle().Foreground(lipgloss.Color("#444444")),

		Categories: map[string]lipgloss.Style{
			"brand":         lipgloss.NewStyle().Foreground(lipgloss.Color("#C678DD")),
			"research":      lipgloss.NewStyle().Foreground(lipgloss.Color("#61AFEF")),
			"personas":      lipgloss.NewStyle().Foreground(lipgloss.Color("#98C379")),
			"strategy":      lipgloss.NewStyle().Foreground(lipgloss.Color("#D19A66")),
			"collaboration": lipgloss.NewStyle().Foreground(lipgloss.Color("#E06C9F")),
			"system":        lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")),
		},
	}
}

// Category returns the style for an activity category.
func (t Theme) Category(c string) lipgloss.Style {
	if s, ok := t.Categories[c]; ok {
		return s
	}
	return t.Dim
}
