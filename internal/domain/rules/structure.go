package rules

import (
	"fmt"
	"strings"

	"github.com/openkraft/kraftlint/internal/domain"
)

func init() {
	register(SingleTitle)
	register(HeadingDepth)
	register(SectionSeparators)
	register(FenceLanguage)
	register(ListIndent)
}

// SingleTitle requires exactly one top-level heading, placed first.
var SingleTitle = RuleDef{
	ID:              "ST001",
	Name:            "structure.single-title",
	Category:        domain.CategoryStructure,
	Description:     "A document has exactly one top-level heading and it is the first content line.",
	DefaultSeverity: domain.SeverityError,
	Kinds:           proseOnly,
	FileLevel:       true,
	Check:           checkSingleTitle,
}

// HeadingDepth caps heading nesting.
var HeadingDepth = RuleDef{
	ID:              "ST002",
	Name:            "structure.heading-depth",
	Category:        domain.CategoryStructure,
	Description:     "Headings do not nest deeper than the maximum depth.",
	DefaultSeverity: domain.SeverityWarning,
	Kinds:           proseOnly,
	Params: []ParamSpec{
		{Name: "max_depth", Kind: ParamInt, Default: 3, Min: 1, Max: 6},
	},
	Check: checkHeadingDepth,
}

// SectionSeparators requires a horizontal rule before every section at the
// separated depth except the first.
var SectionSeparators = RuleDef{
	ID:              "ST003",
	Name:            "structure.section-separator",
	Category:        domain.CategoryStructure,
	Description:     "Sections at the separated depth are preceded by a horizontal rule.",
	DefaultSeverity: domain.SeverityWarning,
	Kinds:           proseOnly,
	Params: []ParamSpec{
		{Name: "separated_depth", Kind: ParamInt, Default: 2, Min: 1, Max: 6},
	},
	Check: checkSectionSeparators,
}

// FenceLanguage requires a language tag on every fence.
var FenceLanguage = RuleDef{
	ID:              "ST004",
	Name:            "structure.fence-language",
	Category:        domain.CategoryStructure,
	Description:     "Fenced blocks declare a language tag.",
	DefaultSeverity: domain.SeverityWarning,
	Kinds:           proseOnly,
	Check:           checkFenceLanguage,
}

// ListIndent caps how far a list item may indent past the previous one.
var ListIndent = RuleDef{
	ID:              "ST005",
	Name:            "structure.list-indent",
	Category:        domain.CategoryStructure,
	Description:     "Nested list items indent by at most the maximum increment.",
	DefaultSeverity: domain.SeverityWarning,
	Kinds:           proseOnly,
	Params: []ParamSpec{
		{Name: "max_increment", Kind: ParamInt, Default: 2, Max: 16},
	},
	Check: checkListIndent,
}

// firstContentLine returns the first non-blank line after any front matter,
// or 0 for an empty document.
func firstContentLine(m *domain.StructuralModel) int {
	start := 1
	if l, ok := m.Line(1); ok && l.Kind == domain.LineCode && strings.TrimSpace(l.Text) == "---" {
		for i := 2; i <= m.LineCount(); i++ {
			t, _ := m.Line(i)
			if s := strings.TrimSpace(t.Text); t.Kind == domain.LineCode && (s == "---" || s == "...") {
				start = i + 1
				break
			}
		}
	}
	for i := start; i <= m.LineCount(); i++ {
		if l, _ := m.Line(i); l.Kind != domain.LineBlank {
			return i
		}
	}
	return 0
}

func checkSingleTitle(m *domain.StructuralModel, _ domain.Params) []Finding {
	first := firstContentLine(m)
	if first == 0 {
		return nil
	}

	var titles []domain.Heading
	for _, h := range m.Headings {
		if h.Depth == 1 {
			titles = append(titles, h)
		}
	}
	if len(titles) == 0 {
		return []Finding{{LineStart: first, LineEnd: first, Message: "document has no top-level heading"}}
	}

	var out []Finding
	if titles[0].Line != first {
		out = append(out, Finding{
			LineStart: titles[0].Line,
			LineEnd:   titles[0].Line,
			Message:   fmt.Sprintf("top-level heading must be the first content line (line %d)", first),
		})
	}
	for _, h := range titles[1:] {
		out = append(out, Finding{
			LineStart: h.Line,
			LineEnd:   h.Line,
			Message:   fmt.Sprintf("extra top-level heading %q", h.Text),
		})
	}
	return out
}

func checkHeadingDepth(m *domain.StructuralModel, p domain.Params) []Finding {
	limit := p.Int("max_depth", 3)

	var out []Finding
	for _, h := range m.Headings {
		if h.Depth > limit {
			out = append(out, Finding{
				LineStart: h.Line,
				LineEnd:   h.Line,
				Message:   fmt.Sprintf("heading depth %d exceeds the maximum of %d", h.Depth, limit),
			})
		}
	}
	return out
}

func checkSectionSeparators(m *domain.StructuralModel, p domain.Params) []Finding {
	depth := p.Int("separated_depth", 2)

	var out []Finding
	seen := false
	for _, h := range m.Headings {
		if h.Depth != depth {
			continue
		}
		if !seen {
			seen = true
			continue
		}
		if prev := lastNonBlankBefore(m, h.Line); prev == 0 || m.Lines[prev-1].Kind != domain.LineHorizontalRule {
			out = append(out, Finding{
				LineStart: h.Line,
				LineEnd:   h.Line,
				Message:   fmt.Sprintf("section %q is not preceded by a horizontal rule", h.Text),
			})
		}
	}
	return out
}

func lastNonBlankBefore(m *domain.StructuralModel, line int) int {
	for i := line - 1; i >= 1; i-- {
		if l, _ := m.Line(i); l.Kind != domain.LineBlank {
			return i
		}
	}
	return 0
}

func checkFenceLanguage(m *domain.StructuralModel, _ domain.Params) []Finding {
	var out []Finding
	for _, b := range m.Blocks {
		if b.Kind == domain.BlockFence && b.Name == "" {
			out = append(out, Finding{
				LineStart: b.StartLine,
				LineEnd:   b.StartLine,
				Message:   "fenced block has no language tag",
			})
		}
	}
	return out
}

func checkListIndent(m *domain.StructuralModel, p domain.Params) []Finding {
	maxInc := p.Int("max_increment", 2)

	items := make(map[int]domain.ListItem, len(m.ListItems))
	for _, it := range m.ListItems {
		items[it.Line] = it
	}

	var out []Finding
	prev := -1
	for _, l := range m.Lines {
		if it, ok := items[l.Index]; ok {
			if prev >= 0 && it.Indent > prev+maxInc {
				out = append(out, Finding{
					LineStart: l.Index,
					LineEnd:   l.Index,
					Message:   fmt.Sprintf("list item indented %d columns past the previous item, maximum is %d", it.Indent-prev, maxInc),
				})
			}
			prev = it.Indent
			continue
		}
		switch l.Kind {
		case domain.LineBlank:
		case domain.LineCode, domain.LineComment:
			// Paragraph text at column 0 ends the list; indented text
			// continues the previous item.
			if l.IndentDepth == 0 && !m.InFenceBody(l.Index) {
				prev = -1
			}
		default:
			prev = -1
		}
	}
	return out
}
