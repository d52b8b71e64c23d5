package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

var (
	colorInk    = lipgloss.Color("#0d1117")
	colorAccent = lipgloss.Color("#c0392b")
	colorOK     = lipgloss.Color("#2c6e49")
	colorMuted  = lipgloss.Color("#6b5e4e")
	colorWarn   = lipgloss.Color("#b7791f")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ffffff")).
			Background(colorInk).
			Padding(0, 1)
	labelStyle   = lipgloss.NewStyle().Foreground(colorMuted).Width(18)
	valueStyle   = lipgloss.NewStyle().Bold(true)
	successStyle = lipgloss.NewStyle().Foreground(colorOK).Bold(true)
	warnStyle    = lipgloss.NewStyle().Foreground(colorWarn)
	errorStyle   = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
	boxStyle     = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorMuted).
			Padding(0, 1)
)

// kv renders one aligned "label  value" line.
func kv(label string, value any) string {
	return labelStyle.Render(label) + valueStyle.Render(fmt.Sprint(value))
}

// panel renders a titled box of kv lines.
func panel(title string, lines ...string) string {
	body := lipgloss.JoinVertical(lipgloss.Left, lines...)
	return lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render(title), boxStyle.Render(body))
}
