package statustui

import (
	"fmt"
	"strings"
)

const panelWidth = 72
const panelWidthForStyle = panelWidth - 2
const panelContentWidth = panelWidth - 6

// View renders the dashboard: one row per tracked device group, its
// current Phase badge, and Reason when the phase carries one.
func (m Model) View() string {
	var b strings.Builder

	titleText := "  INPUT-REMAPPER STATUS  "
	barTotal := panelContentWidth - len(titleText)
	barLeft := barTotal / 2
	barRight := barTotal - barLeft
	title := strings.Repeat("▓", barLeft) + titleText + strings.Repeat("▓", barRight)
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n")

	if len(m.groups) == 0 {
		b.WriteString(dimStyle.Render("waiting for first poll..."))
	}
	for _, g := range m.groups {
		b.WriteString(labelStyle.Render(fmt.Sprintf("%-20s", g.GroupKey)))
		if g.Err != "" {
			b.WriteString(errorStyle.Render("✗ " + g.Err))
		} else {
			phase := string(g.State.Phase)
			if phase == "" {
				phase = "UNKNOWN"
			}
			b.WriteString(badgeStyle(phase).Render("● " + phase))
			if g.State.Reason != "" {
				b.WriteString(dimStyle.Render("  (" + g.State.Reason + ")"))
			}
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Press q to quit"))
	b.WriteString(bodyStyle.Render(""))

	return borderStyle.Width(panelWidthForStyle).Render(b.String())
}
