package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/openkraft/kraftlint/internal/domain"
)

// RenderReport renders a Report as a styled terminal string: a status box,
// one section per file, then the category summary.
func RenderReport(report domain.Report) string {
	var b strings.Builder

	status := lipgloss.NewStyle().
		Bold(true).
		Foreground(statusColor(report.Status)).
		Render(strings.ToUpper(string(report.Status)))
	sub := dimStyle.Render(fmt.Sprintf("%d files checked", report.Summary.FilesChecked))
	if report.Revision != "" {
		rev := report.Revision
		if len(rev) > 7 {
			rev = rev[:7]
		}
		sub += dimStyle.Render("  @ " + rev)
	}
	b.WriteString(boxStyle.Render(headerStyle.Render("kraftlint") + "\n" + status + "\n" + sub))
	b.WriteString("\n")

	if len(report.Violations) == 0 {
		b.WriteString("\n  " + passStyle.Render("No violations found.") + "\n")
		return b.String()
	}

	for _, group := range byFile(report.Violations) {
		renderFileSection(&b, group)
	}

	b.WriteString("\n  " + separatorLine + "\n\n")
	fmt.Fprintf(&b, "  %s  %s  %s\n\n",
		titleStyle.Render("Summary"),
		errorTagStyle.Render(fmt.Sprintf("%d errors", report.Summary.Errors)),
		warnTagStyle.Render(fmt.Sprintf("%d warnings", report.Summary.Warnings)),
	)
	for _, line := range strings.Split(RenderSummary(report.Summary), "\n") {
		b.WriteString("  " + line + "\n")
	}
	return b.String()
}

func renderFileSection(b *strings.Builder, vs []domain.Violation) {
	b.WriteString("\n")
	fmt.Fprintf(b, "  %s %s\n",
		fileStyle.Render(vs[0].File),
		dimStyle.Render(fmt.Sprintf("(%d)", len(vs))),
	)
	for _, v := range vs {
		fmt.Fprintf(b, "    %s %s %s  %s\n",
			severityTag(v.Severity),
			dimStyle.Render(padRight(lineRange(v), 9)),
			ruleStyle.Render(v.RuleID),
			v.Message,
		)
	}
}

// byFile splits sorted violations into per-file runs.
func byFile(vs []domain.Violation) [][]domain.Violation {
	var out [][]domain.Violation
	for i, v := range vs {
		if i == 0 || v.File != vs[i-1].File {
			out = append(out, nil)
		}
		out[len(out)-1] = append(out[len(out)-1], v)
	}
	return out
}
