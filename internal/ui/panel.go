package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ProgressBar renders a Unicode progress bar with percentage.
func ProgressBar(done, total, width int) string {
	if total <= 0 {
		total = 1
	}
	if width < 5 {
		width = 5
	}
	filled := int(float64(done) / float64(total) * float64(width))
	if filled > width {
		filled = width
	}
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	pct := int(float64(done) / float64(total) * 100)
	return fmt.Sprintf("%s %3d%%", bar, pct)
}

// PanelStyle is the framed box around a whole screen.
func PanelStyle() lipgloss.Style {
	t := Current()
	return lipgloss.NewStyle().
		Border(t.Border).
		BorderForeground(t.BorderColor).
		Padding(0, 1)
}

// Panel draws a framed box using the current theme.
func Panel(lines []string) string {
	return PanelStyle().Render(strings.Join(lines, "\n"))
}

// Header is the title line with live counts.
func Header(done, pending int) string {
	t := Current()
	return fmt.Sprintf("%s   %s %d  %s %d  %s %d",
		t.Title.Render("Todos"),
		t.Success.Render(t.SymDone), done,
		t.Pending.Render(t.SymPending), pending,
		t.Accent.Render("Total"), done+pending,
	)
}
