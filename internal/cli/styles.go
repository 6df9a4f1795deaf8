package cli

import (
	"github.com/charmbracelet/lipgloss"

	"cmkit/internal/diagnostics"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Inline(true)
	faintStyle  = lipgloss.NewStyle().Faint(true).Inline(true)

	severityStyles = map[diagnostics.Severity]lipgloss.Style{
		diagnostics.SeverityError:   lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true).Inline(true),
		diagnostics.SeverityWarning: lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Inline(true),
		diagnostics.SeverityRemark:  lipgloss.NewStyle().Foreground(lipgloss.Color("4")).Inline(true),
		diagnostics.SeverityNote:    lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Inline(true),
	}

	checkStyles = map[string]lipgloss.Style{
		"ok":      lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Inline(true),
		"warning": lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Inline(true),
		"error":   lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Inline(true),
	}
)

func severityStyle(s diagnostics.Severity) lipgloss.Style {
	if style, ok := severityStyles[s]; ok {
		return style
	}
	return lipgloss.NewStyle().Inline(true)
}

func checkStyle(status string) lipgloss.Style {
	if style, ok := checkStyles[status]; ok {
		return style
	}
	return lipgloss.NewStyle().Inline(true)
}
