package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/openkraft/kraftlint/internal/domain"
	"github.com/openkraft/kraftlint/internal/domain/rules"
)

// ── warm palette ──
var (
	accent  = lipgloss.Color("#D97706") // amber
	fg      = lipgloss.Color("#E8E6E3") // warm light gray
	dim     = lipgloss.Color("#6B7280") // muted gray
	faint   = lipgloss.Color("#3F3F46") // very dim
	success = lipgloss.Color("#22C55E") // green
	danger  = lipgloss.Color("#EF4444") // red
	warning = lipgloss.Color("#F59E0B") // amber-yellow
	muted   = lipgloss.Color("#4B5563") // dark gray
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accent).
			Align(lipgloss.Center)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(0, 4).
			Align(lipgloss.Center).
			Width(68)

	statusColors = map[domain.RunStatus]lipgloss.Color{
		domain.StatusPass:      success,
		domain.StatusWarn:      warning,
		domain.StatusFail:      danger,
		domain.StatusCancelled: muted,
	}

	dimStyle      = lipgloss.NewStyle().Foreground(dim)
	faintStyle    = lipgloss.NewStyle().Foreground(faint)
	passStyle     = lipgloss.NewStyle().Foreground(success)
	errorTagStyle = lipgloss.NewStyle().Foreground(danger).Bold(true)
	warnTagStyle  = lipgloss.NewStyle().Foreground(warning).Bold(true)
	fileStyle     = lipgloss.NewStyle().Bold(true).Foreground(fg)
	ruleStyle     = lipgloss.NewStyle().Foreground(accent)
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(fg)
	separatorLine = faintStyle.Render(strings.Repeat("─", 64))
)

func statusColor(s domain.RunStatus) lipgloss.Color {
	if c, ok := statusColors[s]; ok {
		return c
	}
	return fg
}

func severityTag(s domain.Severity) string {
	if s == domain.SeverityError {
		return errorTagStyle.Render("error")
	}
	return warnTagStyle.Render("warn ")
}

func lineRange(v domain.Violation) string {
	if v.LineEnd > v.LineStart {
		return fmt.Sprintf("%d-%d", v.LineStart, v.LineEnd)
	}
	return fmt.Sprintf("%d", v.LineStart)
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

// RenderSummary renders the per-category counts as a table.
func RenderSummary(s domain.Summary) string {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Category", "Errors", "Warnings"})
	for _, c := range s.ByCategory {
		t.AppendRow(table.Row{c.Category, c.Errors, c.Warnings})
	}
	t.AppendFooter(table.Row{"Total", s.Errors, s.Warnings})
	return t.Render()
}

// RenderRules lists the rule catalog with the state each rule has in rs.
func RenderRules(defs []rules.RuleDef, rs *domain.Ruleset) string {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"ID", "Name", "Category", "Severity", "Enabled", "Description"})
	for _, def := range defs {
		sev, enabled := def.DefaultSeverity, true
		if r, ok := rs.Rule(def.ID); ok {
			sev, enabled = r.Severity, r.Enabled
		}
		t.AppendRow(table.Row{def.ID, def.Name, def.Category, sev, enabled, def.Description})
	}
	return t.Render() + "\n"
}
