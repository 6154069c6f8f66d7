package extract

import (
	"fmt"
	"strings"

	"github.com/openkraft/kraftlint/internal/domain"
	"github.com/openkraft/kraftlint/internal/domain/classify"
)

// proseExtractor models Markdown documents. Fenced code becomes nested
// fragment models.
type proseExtractor struct {
	opts Options
}

type openFence struct {
	char   byte
	length int
	col    int
	line   int
	tag    string
}

func (x proseExtractor) extract(content string) (*domain.StructuralModel, error) {
	raw := splitLines(content)
	lines := make([]domain.LogicalLine, len(raw))
	for i, r := range raw {
		lines[i] = newLine(i+1, r.text, x.opts.TabWidth)
	}
	m := &domain.StructuralModel{Lines: lines}

	start := x.frontMatter(lines)
	var fence *openFence
	inHTMLComment := false

	for i := start; i < len(lines); i++ {
		l := &lines[i]
		text := l.Text
		if fence != nil {
			if closesFence(text, fence) {
				l.Kind = domain.LineFenceBoundary
				x.addFence(m, raw, fence, i+1)
				fence = nil
				continue
			}
			l.Kind = domain.LineCode
			l.Continuation = true
			continue
		}

		trimmed := strings.TrimSpace(text)
		lead := len(text) - len(strings.TrimLeft(text, " "))
		switch {
		case inHTMLComment:
			l.Kind = domain.LineComment
			if strings.Contains(text, "-->") {
				inHTMLComment = false
			}
		case trimmed == "":
			l.Kind = domain.LineBlank
		case lead <= 3 && opensFence(text[lead:]):
			f := newFence(text, lead, i+1)
			fence = &f
			l.Kind = domain.LineFenceBoundary
		case lead <= 3 && headingDepth(text[lead:]) > 0:
			l.Kind = domain.LineHeading
			m.Headings = append(m.Headings, domain.Heading{
				Line:  i + 1,
				Depth: headingDepth(text[lead:]),
				Text:  headingText(text[lead:]),
			})
		case lead <= 3 && isThematicBreak(trimmed):
			l.Kind = domain.LineHorizontalRule
		case isListItem(trimmed):
			l.Kind = domain.LineListItem
			m.ListItems = append(m.ListItems, domain.ListItem{Line: i + 1, Indent: l.IndentDepth})
		case strings.HasPrefix(trimmed, "<!--"):
			l.Kind = domain.LineComment
			inHTMLComment = !strings.Contains(trimmed[4:], "-->")
		default:
			l.Kind = domain.LineCode
		}
	}
	if fence != nil {
		return nil, &domain.ParseError{
			Line:   fence.line,
			Reason: fmt.Sprintf("unterminated fence opened at line %d", fence.line),
		}
	}

	x.sections(m)
	sortBlocks(m.Blocks)
	blockDepths(m.Blocks)
	return m, nil
}

// frontMatter marks a leading YAML block as code and returns the index of
// the first line after it.
func (x proseExtractor) frontMatter(lines []domain.LogicalLine) int {
	if len(lines) == 0 || strings.TrimRight(lines[0].Text, " \t") != "---" {
		return 0
	}
	for i := 1; i < len(lines); i++ {
		t := strings.TrimRight(lines[i].Text, " \t")
		if t == "---" || t == "..." {
			for j := 0; j <= i; j++ {
				lines[j].Kind = domain.LineCode
			}
			return i + 1
		}
	}
	return 0
}

func (x proseExtractor) addFence(m *domain.StructuralModel, raw []rawLine, f *openFence, closeLine int) {
	span := domain.BlockSpan{
		StartLine:  f.line,
		EndLine:    closeLine,
		HeaderLine: f.line,
		Kind:       domain.BlockFence,
		Name:       f.tag,
	}
	m.Blocks = append(m.Blocks, span)

	body := make([]string, 0, closeLine-f.line-1)
	for i := f.line; i < closeLine-1; i++ {
		body = append(body, stripColumns(raw[i].text, f.col))
	}
	content := strings.Join(body, "\n")

	frag := domain.Fragment{Tag: f.tag, Offset: f.line, Span: span}
	frag.Kind = classify.ClassifyTag(f.tag, content)
	nested := x.opts
	nested.depth++
	if nested.depth > x.opts.MaxFragmentDepth {
		frag.Kind = domain.KindUnclassified
	}
	frag.Model, frag.Err = Extract(frag.Kind, content, nested)
	if frag.Err != nil {
		// Universal rules still see the body as plain lines.
		frag.Model, _ = Extract(domain.KindUnclassified, content, nested)
	}
	m.Fragments = append(m.Fragments, frag)
}

// sections adds a heading-section span per heading.
func (x proseExtractor) sections(m *domain.StructuralModel) {
	for i, h := range m.Headings {
		end := len(m.Lines)
		for _, next := range m.Headings[i+1:] {
			if next.Depth <= h.Depth {
				end = next.Line - 1
				break
			}
		}
		m.Blocks = append(m.Blocks, domain.BlockSpan{
			StartLine:  h.Line,
			EndLine:    end,
			HeaderLine: h.Line,
			Kind:       domain.BlockHeadingSection,
			Name:       h.Text,
		})
	}
}

func opensFence(s string) bool {
	if len(s) < 3 || s[0] != '`' && s[0] != '~' {
		return false
	}
	n := runLength(s, s[0])
	if n < 3 {
		return false
	}
	return s[0] != '`' || !strings.ContainsRune(s[n:], '`')
}

func newFence(text string, col, line int) openFence {
	s := text[col:]
	n := runLength(s, s[0])
	info := strings.Fields(s[n:])
	tag := ""
	if len(info) > 0 {
		tag = strings.Trim(info[0], "{}.")
	}
	return openFence{char: s[0], length: n, col: col, line: line, tag: tag}
}

func closesFence(text string, f *openFence) bool {
	lead := len(text) - len(strings.TrimLeft(text, " "))
	if lead != f.col {
		return false
	}
	s := text[lead:]
	n := runLength(s, f.char)
	return n >= f.length && strings.TrimSpace(s[n:]) == ""
}

func runLength(s string, c byte) int {
	n := 0
	for n < len(s) && s[n] == c {
		n++
	}
	return n
}

func headingDepth(s string) int {
	n := runLength(s, '#')
	if n == 0 || n > 6 {
		return 0
	}
	if n < len(s) && s[n] != ' ' && s[n] != '\t' {
		return 0
	}
	return n
}

func headingText(s string) string {
	t := strings.TrimSpace(s[runLength(s, '#'):])
	trimmed := strings.TrimRight(t, "#")
	if trimmed == "" || strings.HasSuffix(trimmed, " ") {
		t = strings.TrimSpace(trimmed)
	}
	return t
}

func isThematicBreak(s string) bool {
	if s == "" {
		return false
	}
	c := s[0]
	if c != '-' && c != '*' && c != '_' {
		return false
	}
	n := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case c:
			n++
		case ' ', '\t':
		default:
			return false
		}
	}
	return n >= 3
}

func isListItem(s string) bool {
	if s == "" {
		return false
	}
	switch s[0] {
	case '-', '*', '+':
		return len(s) == 1 || s[1] == ' ' || s[1] == '\t'
	}
	n := 0
	for n < len(s) && n < 9 && s[n] >= '0' && s[n] <= '9' {
		n++
	}
	if n == 0 || n >= len(s) || s[n] != '.' && s[n] != ')' {
		return false
	}
	return n+1 == len(s) || s[n+1] == ' ' || s[n+1] == '\t'
}

// stripColumns removes up to n leading spaces.
func stripColumns(s string, n int) string {
	i := 0
	for i < n && i < len(s) && s[i] == ' ' {
		i++
	}
	return s[i:]
}
