package playerbar

import "github.com/charmbracelet/lipgloss"

// Palette
var (
	colorPrimary   = lipgloss.Color("#a78bfa")
	colorSecondary = lipgloss.Color("#f1a208")
	colorFgBase    = lipgloss.Color("#c0c0c0")
	colorFgMuted   = lipgloss.Color("#808080")
	colorFgSubtle  = lipgloss.Color("#585858")
	colorError     = lipgloss.Color("#ff5555")
	colorBorder    = lipgloss.Color("240")
)

func barStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Padding(0, 2)
}

func titleStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(colorFgBase).Bold(true)
}

func artistStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(colorFgMuted)
}

func timeStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(colorFgMuted)
}

func scrubTimeStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(colorSecondary).Bold(true)
}

func emptyBarStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(colorFgSubtle)
}

func messageStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(colorFgMuted).Italic(true)
}

func errorStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(colorError)
}
