package rules

import (
	"fmt"
	"sort"

	"github.com/openkraft/kraftlint/internal/domain"
)

func init() {
	register(BlockSpacing)
	register(BodySpacing)
	register(ImportSpacing)
}

// BlockSpacing checks the blank run between sibling blocks.
var BlockSpacing = RuleDef{
	ID:              "SP001",
	Name:            "spacing.between-blocks",
	Category:        domain.CategorySpacing,
	Description:     "Sibling blocks are separated by an exact number of blank lines.",
	DefaultSeverity: domain.SeverityWarning,
	Kinds:           codeKinds,
	Params: []ParamSpec{
		{Name: "between_blocks", Kind: ParamInt, Default: 2, Max: 10},
		{Name: "between_nested_blocks", Kind: ParamInt, Default: 1, Max: 10},
	},
	Check: checkBlockSpacing,
}

// BodySpacing forbids blank lines inside function bodies, except before a
// complex return.
var BodySpacing = RuleDef{
	ID:              "SP002",
	Name:            "spacing.function-body",
	Category:        domain.CategorySpacing,
	Description:     "Function bodies contain no blank lines except the one before a complex return.",
	DefaultSeverity: domain.SeverityWarning,
	Kinds:           codeKinds,
	Params: []ParamSpec{
		{Name: "before_complex_return", Kind: ParamInt, Default: 1, Max: 10},
		{Name: "complex_return_lines", Kind: ParamInt, Default: 2, Min: 1},
		{Name: "complex_return_conditional", Kind: ParamBool, Default: true},
	},
	Check: checkBodySpacing,
}

// ImportSpacing checks the gap between the import region and the first
// top-level block.
var ImportSpacing = RuleDef{
	ID:              "SP003",
	Name:            "spacing.after-imports",
	Category:        domain.CategorySpacing,
	Description:     "The import region is followed by an exact number of blank lines before the first block.",
	DefaultSeverity: domain.SeverityWarning,
	Kinds:           codeKinds,
	Params: []ParamSpec{
		{Name: "exact", Kind: ParamInt, Default: 1, Max: 10},
	},
	Check: checkImportSpacing,
}

// gap describes the lines between two structural units. Blank is the run of
// blank lines right after the first unit. Clean is false when anything but
// doc-adjacent comments follows that run.
type gap struct {
	blank int
	clean bool
}

func measureGap(m *domain.StructuralModel, from, to int) gap {
	g := gap{clean: true}
	line := from
	for ; line <= to; line++ {
		l, ok := m.Line(line)
		if !ok || l.Kind != domain.LineBlank {
			break
		}
		g.blank++
	}
	for ; line <= to; line++ {
		l, ok := m.Line(line)
		if !ok {
			break
		}
		docComment := l.Kind == domain.LineDocstring || (l.Kind == domain.LineComment && m.DocAdjacent[line])
		if !docComment {
			g.clean = false
			break
		}
	}
	return g
}

// parents maps every block to the index of its innermost enclosing block,
// or -1 for top-level blocks.
func parents(blocks []domain.BlockSpan) []int {
	out := make([]int, len(blocks))
	for i, b := range blocks {
		out[i] = -1
		for j, o := range blocks {
			if i == j || o.Depth >= b.Depth {
				continue
			}
			if o.StartLine <= b.StartLine && o.EndLine >= b.EndLine {
				if out[i] < 0 || blocks[out[i]].Depth < o.Depth {
					out[i] = j
				}
			}
		}
	}
	return out
}

func checkBlockSpacing(m *domain.StructuralModel, p domain.Params) []Finding {
	top := p.Int("between_blocks", 2)
	nested := p.Int("between_nested_blocks", 1)

	parent := parents(m.Blocks)
	groups := make(map[int][]domain.BlockSpan)
	var keys []int
	for i, b := range m.Blocks {
		if _, ok := groups[parent[i]]; !ok {
			keys = append(keys, parent[i])
		}
		groups[parent[i]] = append(groups[parent[i]], b)
	}
	sort.Ints(keys)

	var out []Finding
	for _, k := range keys {
		siblings := groups[k]
		sort.SliceStable(siblings, func(i, j int) bool { return siblings[i].StartLine < siblings[j].StartLine })
		for i := 1; i < len(siblings); i++ {
			a, b := siblings[i-1], siblings[i]
			if b.StartLine <= a.EndLine {
				continue
			}
			g := measureGap(m, a.EndLine+1, b.StartLine-1)
			if !g.clean {
				continue
			}
			want := nested
			if a.Depth == 0 {
				want = top
			}
			if g.blank == want {
				continue
			}
			f := Finding{
				LineStart: a.EndLine + 1,
				LineEnd:   a.EndLine + g.blank,
				Message:   fmt.Sprintf("expected %d blank lines between %s and %s, found %d", want, spanLabel(a), spanLabel(b), g.blank),
			}
			if g.blank == 0 {
				f.LineStart, f.LineEnd = a.EndLine, a.EndLine
			}
			out = append(out, f)
		}
	}
	return out
}

func spanLabel(b domain.BlockSpan) string {
	if b.Name == "" {
		return string(b.Kind)
	}
	return fmt.Sprintf("%s %q", b.Kind, b.Name)
}

func checkBodySpacing(m *domain.StructuralModel, p domain.Params) []Finding {
	allowed := p.Int("before_complex_return", 1)
	complexLines := p.Int("complex_return_lines", 2)
	conditional := p.Bool("complex_return_conditional", true)

	complexAt := make(map[int]bool)
	for _, r := range m.Returns {
		if r.EndLine-r.StartLine+1 >= complexLines || (conditional && r.Conditional) {
			complexAt[r.StartLine] = true
		}
	}

	parent := parents(m.Blocks)
	var out []Finding
	for i, span := range m.Blocks {
		if span.Kind != domain.BlockFunction && span.Kind != domain.BlockComponent {
			continue
		}
		var children []domain.BlockSpan
		for j, c := range m.Blocks {
			if parent[j] == i {
				children = append(children, c)
			}
		}
		out = append(out, bodyRuns(m, span, children, complexAt, allowed)...)
	}
	return out
}

// bodyRuns reports the blank runs of a function body that are not adjacent
// to a nested block and not the permitted run before a complex return.
func bodyRuns(m *domain.StructuralModel, span domain.BlockSpan, children []domain.BlockSpan, complexAt map[int]bool, allowed int) []Finding {
	inChild := func(line int) bool {
		for _, c := range children {
			if c.Contains(line) {
				return true
			}
		}
		return false
	}

	var out []Finding
	line := span.HeaderLine + 1
	for line < span.EndLine {
		l, _ := m.Line(line)
		if l.Kind != domain.LineBlank || inChild(line) {
			line++
			continue
		}
		start := line
		for line < span.EndLine {
			next, _ := m.Line(line)
			if next.Kind != domain.LineBlank {
				break
			}
			line++
		}
		end := line - 1
		run := end - start + 1
		if inChild(start-1) || inChild(end+1) {
			continue
		}
		if complexAt[end+1] {
			if run != allowed {
				out = append(out, Finding{
					LineStart: start,
					LineEnd:   end,
					Message:   fmt.Sprintf("expected %d blank lines before the complex return, found %d", allowed, run),
				})
			}
			continue
		}
		out = append(out, Finding{
			LineStart: start,
			LineEnd:   end,
			Message:   fmt.Sprintf("blank lines inside %s", spanLabel(span)),
		})
	}
	return out
}

func checkImportSpacing(m *domain.StructuralModel, p domain.Params) []Finding {
	if m.ImportEnd == 0 {
		return nil
	}
	want := p.Int("exact", 1)

	first := -1
	for i, b := range m.Blocks {
		if b.Depth != 0 || b.StartLine <= m.ImportEnd {
			continue
		}
		if first < 0 || b.StartLine < m.Blocks[first].StartLine {
			first = i
		}
	}
	if first < 0 {
		return nil
	}
	g := measureGap(m, m.ImportEnd+1, m.Blocks[first].StartLine-1)
	if !g.clean || g.blank == want {
		return nil
	}
	f := Finding{
		LineStart: m.ImportEnd + 1,
		LineEnd:   m.ImportEnd + g.blank,
		Message:   fmt.Sprintf("expected %d blank lines after imports, found %d", want, g.blank),
	}
	if g.blank == 0 {
		f.LineStart, f.LineEnd = m.ImportEnd, m.ImportEnd
	}
	return []Finding{f}
}
