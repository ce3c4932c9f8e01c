package tui

import "github.com/charmbracelet/lipgloss"

var (
	// Color palette
	colorPrimary = lipgloss.Color("#B45309")
	colorSuccess = lipgloss.Color("#10B981")
	colorDanger  = lipgloss.Color("#EF4444")
	colorInfo    = lipgloss.Color("#3B82F6")
	colorMuted   = lipgloss.Color("#6B7280")
	colorText    = lipgloss.Color("#F3F4F6")
	colorBorder  = lipgloss.Color("#4B5563")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary)

	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorText).
			Background(colorPrimary).
			Padding(0, 2)

	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(colorMuted).
				Padding(0, 2)

	successStyle = lipgloss.NewStyle().Foreground(colorSuccess).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(colorDanger).Bold(true)
	infoStyle    = lipgloss.NewStyle().Foreground(colorInfo)
	mutedStyle   = lipgloss.NewStyle().Foreground(colorMuted)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(1, 2)

	helpStyle    = lipgloss.NewStyle().Foreground(colorMuted).MarginTop(1)
	helpKeyStyle = lipgloss.NewStyle().Foreground(colorPrimary)

	// Seat cells
	seatFreeStyle     = lipgloss.NewStyle().Foreground(colorSuccess)
	seatPickedStyle   = lipgloss.NewStyle().Foreground(colorInfo).Bold(true)
	seatTakenStyle    = lipgloss.NewStyle().Foreground(colorDanger)
	seatCursorStyle   = lipgloss.NewStyle().Reverse(true)
	screenBannerStyle = lipgloss.NewStyle().
				Foreground(colorMuted).
				Border(lipgloss.NormalBorder(), false, false, true, false).
				BorderForeground(colorBorder)
)

// formatKey formats one help entry.
func formatKey(key, description string) string {
	return helpKeyStyle.Render(key) + " " + mutedStyle.Render(description)
}

func helpLine(pairs ...string) string {
	s := ""
	for i := 0; i+1 < len(pairs); i += 2 {
		if s != "" {
			s += " • "
		}
		s += formatKey(pairs[i], pairs[i+1])
	}
	return helpStyle.Render(s)
}
