package app

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/llehouerou/ripple/internal/playback"
	"github.com/llehouerou/ripple/internal/ui/playerbar"
)

var (
	messageStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#f1a208"))
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#585858"))
)

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(playerbar.Render(playerbar.FromState(m.state), m.width))
	b.WriteString("\n ")
	if m.message == "" && m.state.Status == playback.StatusLoading {
		b.WriteString(m.spin.View() + helpStyle.Render(" buffering"))
	} else {
		b.WriteString(messageStyle.Render(m.message))
	}
	b.WriteString("\n ")
	if m.showHelp {
		b.WriteString(helpStyle.Render(m.keys.HelpLine("global", "playback", "scrub")))
	} else {
		b.WriteString(helpStyle.Render("? help"))
	}
	return b.String()
}
