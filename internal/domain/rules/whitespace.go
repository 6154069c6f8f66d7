package rules

import (
	"strings"

	"github.com/openkraft/kraftlint/internal/domain"
)

func init() {
	register(TrailingWhitespace)
}

// TrailingWhitespace flags lines ending in spaces or tabs.
var TrailingWhitespace = RuleDef{
	ID:              "WS001",
	Name:            "whitespace.trailing",
	Category:        domain.CategoryWhitespace,
	Description:     "Lines must not end with spaces or tabs.",
	DefaultSeverity: domain.SeverityWarning,
	Kinds:           allKinds,
	Check:           checkTrailingWhitespace,
}

func checkTrailingWhitespace(m *domain.StructuralModel, _ domain.Params) []Finding {
	var out []Finding
	for _, l := range m.Lines {
		if m.Kind == domain.KindProseMarkup && m.InFenceBody(l.Index) {
			continue
		}
		if trimmed := strings.TrimRight(l.Text, " \t"); len(trimmed) != len(l.Text) {
			out = append(out, Finding{
				LineStart: l.Index,
				LineEnd:   l.Index,
				Message:   "trailing whitespace",
			})
		}
	}
	return out
}
