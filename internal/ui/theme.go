package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme bundles palette + symbols + box borders.
// All UI helpers pull from `current`.
type Theme struct {
	Name string

	Title, Muted, Accent, Success, Error, Pending lipgloss.Style
	Selected, Done, Help                          lipgloss.Style

	BoxUnchecked, BoxChecked string
	SymDone, SymPending      string
	Border                   lipgloss.Border
	BorderColor              lipgloss.TerminalColor
}

var current = classic()

func classic() Theme {
	return Theme{
		Name:         "classic",
		Title:        lipgloss.NewStyle().Bold(true),
		Muted:        lipgloss.NewStyle().Faint(true),
		Accent:       lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
		Success:      lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		Error:        lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		Pending:      lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		Selected:     lipgloss.NewStyle().Bold(true).Reverse(true),
		Done:         lipgloss.NewStyle().Faint(true).Strikethrough(true),
		Help:         lipgloss.NewStyle().Faint(true),
		BoxUnchecked: "☐", BoxChecked: "☑",
		SymDone: "✔", SymPending: "•",
		Border:      lipgloss.NormalBorder(),
		BorderColor: lipgloss.Color("8"),
	}
}

func SetTheme(name string) {
	switch strings.ToLower(name) {
	case "neon":
		current = Theme{
			Name:         "neon",
			Title:        lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("13")), // bright magenta
			Muted:        lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
			Accent:       lipgloss.NewStyle().Foreground(lipgloss.Color("14")),
			Success:      lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
			Error:        lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
			Pending:      lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
			Selected:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("0")).Background(lipgloss.Color("14")),
			Done:         lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Strikethrough(true),
			Help:         lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
			BoxUnchecked: "◻", BoxChecked: "◼",
			SymDone: "✔", SymPending: "•",
			Border:      lipgloss.RoundedBorder(),
			BorderColor: lipgloss.Color("13"),
		}
	case "mono":
		plain := lipgloss.NewStyle()
		current = Theme{
			Name:  "mono",
			Title: plain, Muted: plain, Accent: plain, Success: plain, Error: plain, Pending: plain,
			Selected: plain.Reverse(true), Done: plain, Help: plain,
			BoxUnchecked: "[ ]", BoxChecked: "[x]",
			SymDone: "x", SymPending: "-",
			Border:      lipgloss.ASCIIBorder(),
			BorderColor: lipgloss.NoColor{},
		}
	default:
		current = classic()
	}
}

// Expose what renderers need
func Current() Theme { return current }
