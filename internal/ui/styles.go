package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Color palette
var (
	ColorPrimary   = lipgloss.Color("39")  // Cyan
	ColorSecondary = lipgloss.Color("212") // Pink
	ColorSuccess   = lipgloss.Color("82")  // Green
	ColorWarning   = lipgloss.Color("214") // Orange
	ColorError     = lipgloss.Color("196") // Red
	ColorMuted     = lipgloss.Color("245") // Gray
	ColorHighlight = lipgloss.Color("226") // Yellow
)

var (
	Bold      = lipgloss.NewStyle().Bold(true)
	Dim       = lipgloss.NewStyle().Foreground(ColorMuted)
	Highlight = lipgloss.NewStyle().Foreground(ColorHighlight)
	Header    = lipgloss.NewStyle().Foreground(ColorPrimary).Bold(true)

	Success = lipgloss.NewStyle().Foreground(ColorSuccess)
	Warning = lipgloss.NewStyle().Foreground(ColorWarning)
	Error   = lipgloss.NewStyle().Foreground(ColorError)

	ResultTitle   = lipgloss.NewStyle().Foreground(ColorPrimary).Bold(true)
	ResultSection = lipgloss.NewStyle().Foreground(ColorSecondary)
	ResultScore   = lipgloss.NewStyle().Foreground(ColorSuccess)
	ResultContent = lipgloss.NewStyle().Foreground(ColorMuted).PaddingLeft(2)

	SectionTitle = lipgloss.NewStyle().
			Foreground(ColorSecondary).
			Bold(true).
			MarginTop(1)
	Divider = lipgloss.NewStyle().Foreground(ColorMuted)

	Citation = lipgloss.NewStyle().Foreground(ColorHighlight).Bold(true)
)

// HorizontalRule returns a styled horizontal divider.
func HorizontalRule(width int) string {
	return Divider.Render(strings.Repeat("─", width))
}

// FormatScore renders a retrieval score. Keyword scores are not similarities,
// so they are shown raw instead of as a percentage.
func FormatScore(score float64, tier string) string {
	if tier == "keyword" {
		return ResultScore.Render(fmt.Sprintf("(keyword %.1f)", score))
	}
	return ResultScore.Render(fmt.Sprintf("(%.1f%% match)", score*100))
}

// FormatTier renders the retrieval tier label, warning-coloured for fallbacks.
func FormatTier(tier string) string {
	if tier == "semantic" {
		return Dim.Render("[" + tier + "]")
	}
	return Warning.Render("[" + tier + "]")
}
