// Package cli provides styled terminal output, progress bars and interrupt
// handling for the almanac commands.
package cli

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	quartzGold = lipgloss.Color("#F2C14E")
	border     = lipgloss.Color("#333")

	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(quartzGold).MarginBottom(1)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#4ECDC4"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFE66D"))
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#95E1D3"))
	subtleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#666666"))
	boldStyle    = lipgloss.NewStyle().Bold(true)
	cellStyle    = lipgloss.NewStyle().PaddingRight(2)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(border).
			Padding(1, 2)
)

const (
	successIcon = "✓"
	warningIcon = "⚠️"
	infoIcon    = "ℹ️"
	quartzIcon  = "✦"
	chartIcon   = "📊"
)

// FormatSuccess renders a finished step, e.g. "✓ Exported 412 banners".
func FormatSuccess(message string) string {
	return successStyle.Render(successIcon + " " + message)
}

func FormatWarning(message string) string {
	return warningStyle.Render(warningIcon + " " + message)
}

func FormatInfo(message string) string {
	return infoStyle.Render(infoIcon + " " + message)
}

// FormatTitle renders a command heading behind a saint quartz.
func FormatTitle(title string) string {
	return titleStyle.Render(quartzIcon + " " + title)
}

func renderBox(title, content string) string {
	heading := titleStyle.UnsetMargins().Render(title)
	return boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, heading, content))
}
