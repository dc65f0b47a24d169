// Package statustui implements SPEC_FULL.md's cmd/inputremapperctl
// dashboard: a read-only terminal view of every device group's
// injection state, polled off the daemon's control socket. Adapted
// from palaver's internal/tui (bubbletea Model/Update/View plus
// lipgloss styling) — generalized from "one recording/transcription
// state machine" to "a polled table of per-group InjectorState".
package statustui

import "github.com/charmbracelet/lipgloss"

// theme is a fixed, single palette (the dashboard has no recording
// visualizer or user-selectable tone to theme around, so palaver's
// multi-theme/custom-theme machinery in theme.go has no work to do
// here — one palette, not a registry of them).
var (
	bg     = lipgloss.Color("#1A1A2E")
	fg     = lipgloss.Color("#E0E0E0")
	dimmed = lipgloss.Color("#666666")
	accent = lipgloss.Color("#00E5FF")

	runningColor = lipgloss.Color("#64FFDA")
	stoppedColor = lipgloss.Color("#666666")
	failedColor  = lipgloss.Color("#FF8A80")
	upgradeColor = lipgloss.Color("#FFAB40")
	unknownColor = lipgloss.Color("#888888")

	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(accent).Background(bg).MarginBottom(1)
	borderStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(accent).Padding(1, 2).Background(bg)
	labelStyle  = lipgloss.NewStyle().Foreground(accent).Background(bg).Bold(true)
	bodyStyle   = lipgloss.NewStyle().Foreground(fg).Background(bg)
	dimStyle    = lipgloss.NewStyle().Foreground(dimmed).Background(bg)
	errorStyle  = lipgloss.NewStyle().Foreground(failedColor).Background(bg)
)

func badgeStyle(phase string) lipgloss.Style {
	style := lipgloss.NewStyle().Bold(true).Background(bg)
	switch phase {
	case "RUNNING":
		return style.Foreground(runningColor)
	case "STOPPED", "":
		return style.Foreground(stoppedColor)
	case "NO_GRAB", "FAILED":
		return style.Foreground(failedColor)
	case "UPGRADE_EVDEV":
		return style.Foreground(upgradeColor)
	default:
		return style.Foreground(unknownColor)
	}
}
