package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/atinyakov/SecurePass/internal/dashboard"
	"github.com/atinyakov/SecurePass/internal/strength"
)

const (
	colorSubtle    = lipgloss.Color("240")
	colorHighlight = lipgloss.Color("81")
	colorError     = lipgloss.Color("196")
	colorWarning   = lipgloss.Color("214")
	colorSuccess   = lipgloss.Color("40")
	colorInfo      = lipgloss.Color("39")
)

var (
	docStyle          = lipgloss.NewStyle().Margin(1, 2)
	titleStyle        = lipgloss.NewStyle().Foreground(colorHighlight).Bold(true).MarginBottom(1)
	helpStyle         = lipgloss.NewStyle().Foreground(colorSubtle)
	itemStyle         = lipgloss.NewStyle().PaddingLeft(2)
	selectedItemStyle = lipgloss.NewStyle().PaddingLeft(1).Foreground(colorHighlight).Bold(true)
	subtleStyle       = lipgloss.NewStyle().Foreground(colorSubtle)
	labelStyle        = lipgloss.NewStyle().Width(12).Foreground(colorSubtle)
	secretStyle       = lipgloss.NewStyle().Bold(true)
	focusedStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("170"))

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorHighlight).
			Padding(1, 2).
			Width(64)

	keyBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.ThickBorder()).
			BorderForeground(colorWarning).
			Padding(0, 1)
)

func alertStyle(level dashboard.Level) lipgloss.Style {
	switch level {
	case dashboard.LevelError:
		return lipgloss.NewStyle().Foreground(colorError).Bold(true)
	case dashboard.LevelSuccess:
		return lipgloss.NewStyle().Foreground(colorSuccess)
	default:
		return lipgloss.NewStyle().Foreground(colorInfo)
	}
}

func strengthStyle(l strength.Label) lipgloss.Style {
	switch l {
	case strength.Weak:
		return lipgloss.NewStyle().Foreground(colorError)
	case strength.Medium:
		return lipgloss.NewStyle().Foreground(colorWarning)
	case strength.Strong, strength.VeryStrong:
		return lipgloss.NewStyle().Foreground(colorSuccess)
	default:
		return subtleStyle
	}
}
