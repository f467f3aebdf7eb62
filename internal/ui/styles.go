package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/hmans/coursegraph/internal/entity"
)

// Color palette
var (
	ColorPrimary   = lipgloss.Color("#7C3AED") // Purple
	ColorSecondary = lipgloss.Color("#6B7280") // Gray
	ColorSuccess   = lipgloss.Color("#10B981") // Green
	ColorWarning   = lipgloss.Color("#F59E0B") // Amber
	ColorDanger    = lipgloss.Color("#EF4444") // Red
	ColorMuted     = lipgloss.Color("#9CA3AF") // Light gray
	ColorBlue      = lipgloss.Color("#3B82F6") // Blue
)

// Text styles
var (
	Bold      = lipgloss.NewStyle().Bold(true)
	Muted     = lipgloss.NewStyle().Foreground(ColorMuted)
	Primary   = lipgloss.NewStyle().Foreground(ColorPrimary)
	Success   = lipgloss.NewStyle().Foreground(ColorSuccess)
	Warning   = lipgloss.NewStyle().Foreground(ColorWarning)
	Danger    = lipgloss.NewStyle().Foreground(ColorDanger)
	Secondary = lipgloss.NewStyle().Foreground(ColorSecondary)
)

// ID style - distinctive for record ids
var ID = lipgloss.NewStyle().
	Foreground(ColorPrimary).
	Bold(true)

// Title style
var Title = lipgloss.NewStyle().Bold(true)

// TreeLine styles tree connectors.
var TreeLine = lipgloss.NewStyle().Foreground(ColorSecondary)

// Header style for section headers
var Header = lipgloss.NewStyle().
	Foreground(ColorPrimary).
	Bold(true).
	MarginBottom(1)

// Role badge styles
var (
	RoleAdmin = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#fff")).
			Background(ColorDanger).
			Padding(0, 1).
			Bold(true)

	RoleUser = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#fff")).
			Background(ColorSecondary).
			Padding(0, 1)
)

// RenderRole returns a styled role badge.
func RenderRole(role string) string {
	switch role {
	case entity.RoleAdmin:
		return RoleAdmin.Render(role)
	case "":
		return ""
	default:
		return RoleUser.Render(role)
	}
}

// RenderPublished returns styled publication state text (for tables, no background).
func RenderPublished(published bool) string {
	if published {
		return Success.Bold(true).Render("published")
	}
	return Warning.Render("draft")
}

// RenderSuccess formats a one-line confirmation for the CLI.
func RenderSuccess(msg string) string {
	return Success.Render("✓") + " " + msg
}

// RenderError formats a one-line failure for the CLI.
func RenderError(msg string) string {
	return Danger.Render("✗") + " " + msg
}
