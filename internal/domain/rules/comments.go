package rules

import (
	"strings"

	"github.com/openkraft/kraftlint/internal/domain"
)

func init() {
	register(InlineComments)
}

// InlineComments flags comment lines that neither document a declaration
// nor carry a work marker.
var InlineComments = RuleDef{
	ID:              "CM001",
	Name:            "comments.undocumented",
	Category:        domain.CategoryComments,
	Description:     "Comments document the declaration below them or start with a work marker.",
	DefaultSeverity: domain.SeverityWarning,
	Kinds:           codeKinds,
	Params: []ParamSpec{
		{Name: "markers", Kind: ParamStrings, Default: []string{"TODO", "FIXME"}},
	},
	Check: checkComments,
}

// directives are tool pragmas that look like comments but configure tooling.
var directives = []string{
	"type:", "noqa", "pylint:", "mypy:", "pyright:", "fmt:", "-*-",
	"@ts-", "eslint-", "prettier-ignore", "istanbul ", "c8 ", "biome-ignore",
}

func checkComments(m *domain.StructuralModel, p domain.Params) []Finding {
	markers := p.Strings("markers", []string{"TODO", "FIXME"})

	var out []Finding
	open := false
	for _, l := range m.Lines {
		flagged := l.Kind == domain.LineComment &&
			!m.DocAdjacent[l.Index] &&
			!(l.Index == 1 && strings.HasPrefix(l.Text, "#!")) &&
			!exemptComment(commentBody(l.Text), markers)
		if !flagged {
			open = false
			continue
		}
		if open {
			out[len(out)-1].LineEnd = l.Index
			continue
		}
		out = append(out, Finding{
			LineStart: l.Index,
			LineEnd:   l.Index,
			Message:   "comment does not document a declaration",
		})
		open = true
	}
	return out
}

// commentBody strips the comment leader of a line.
func commentBody(text string) string {
	s := strings.TrimSpace(text)
	for _, leader := range []string{"<!--", "/**", "/*", "//", "#", "*/", "*"} {
		if strings.HasPrefix(s, leader) {
			s = s[len(leader):]
			break
		}
	}
	return strings.TrimSpace(s)
}

func exemptComment(body string, markers []string) bool {
	for _, mk := range markers {
		if strings.HasPrefix(body, mk) {
			return true
		}
	}
	for _, d := range directives {
		if strings.HasPrefix(body, d) {
			return true
		}
	}
	return false
}
