package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme holds the color scheme.
type Theme struct {
	Accent  lipgloss.Color
	Success lipgloss.Color
	Error   lipgloss.Color
	Hint    lipgloss.Color
	Target  lipgloss.Color
	Muted   lipgloss.Color
}

// DefaultTheme provides default colors.
var DefaultTheme = Theme{
	Accent:  lipgloss.Color("#5FAFD7"), // light blue
	Success: lipgloss.Color("#00D787"), // green
	Error:   lipgloss.Color("#FF005F"), // red
	Hint:    lipgloss.Color("#6C6C6C"), // dim gray
	Target:  lipgloss.Color("#FFAF00"), // amber
	Muted:   lipgloss.Color("#3A3A3A"), // dark gray
}

func (t Theme) titleStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Accent).Bold(true)
}

func (t Theme) activeTabStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Accent).Bold(true).Underline(true).Padding(0, 1)
}

func (t Theme) tabStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Hint).Padding(0, 1)
}

func (t Theme) goodStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Success).Bold(true)
}

func (t Theme) errorStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Error).Bold(true)
}

func (t Theme) hintStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Hint).Italic(true)
}

func (t Theme) targetStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Target).Bold(true)
}

func (t Theme) panelStyle() lipgloss.Style {
	return lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(t.Muted).Padding(0, 1)
}

// scoreStyle colors a tau score from red (inverted) to green (ideal).
func (t Theme) scoreStyle(score float64) lipgloss.Style {
	switch {
	case score >= 0.5:
		return t.goodStyle()
	case score <= -0.5:
		return t.errorStyle()
	default:
		return lipgloss.NewStyle().Foreground(t.Target).Bold(true)
	}
}
