package extract

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"

	"github.com/openkraft/kraftlint/internal/domain"
)

type rawLine struct {
	text  string
	start int // byte offset in the joined source
}

// splitLines splits on '\n' and strips one trailing '\r' per line. A final
// newline does not start another line and empty content has no lines.
func splitLines(content string) []rawLine {
	if content == "" {
		return nil
	}
	parts := strings.Split(content, "\n")
	if parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}
	out := make([]rawLine, len(parts))
	offset := 0
	for i, p := range parts {
		p = strings.TrimSuffix(p, "\r")
		out[i] = rawLine{text: p, start: offset}
		offset += len(p) + 1
	}
	return out
}

// source is the line-normalised content shared by the character scanners.
type source struct {
	lines []rawLine
	text  string
}

func newSource(content string) source {
	lines := splitLines(content)
	texts := make([]string, len(lines))
	for i, l := range lines {
		texts[i] = l.text
	}
	return source{lines: lines, text: strings.Join(texts, "\n")}
}

// lineOf returns the 1-based line holding byte offset.
func (s source) lineOf(offset int) int {
	i := sort.Search(len(s.lines), func(i int) bool { return s.lines[i].start > offset })
	if i == 0 {
		return 1
	}
	return i
}

func newLine(index int, text string, tabWidth int) domain.LogicalLine {
	return domain.LogicalLine{
		Index:       index,
		Text:        text,
		RawLength:   utf8.RuneCountInString(text),
		Width:       runewidth.StringWidth(text),
		IndentDepth: indentColumns(text, tabWidth),
		Kind:        domain.LineCode,
	}
}

func indentColumns(text string, tabWidth int) int {
	col := 0
	for _, r := range text {
		switch r {
		case ' ':
			col++
		case '\t':
			col += tabWidth - col%tabWidth
		default:
			return col
		}
	}
	return col
}

func isBlank(text string) bool {
	return strings.TrimSpace(text) == ""
}

// blockDepths fills the Depth of every span with the number of spans that
// strictly enclose it.
func blockDepths(blocks []domain.BlockSpan) {
	for i := range blocks {
		d := 0
		for j := range blocks {
			if i == j {
				continue
			}
			o := blocks[j]
			if o.StartLine <= blocks[i].StartLine && o.EndLine >= blocks[i].EndLine &&
				(o.StartLine < blocks[i].StartLine || o.EndLine > blocks[i].EndLine || j < i) {
				d++
			}
		}
		blocks[i].Depth = d
	}
}

func sortBlocks(blocks []domain.BlockSpan) {
	sort.SliceStable(blocks, func(i, j int) bool {
		if blocks[i].StartLine != blocks[j].StartLine {
			return blocks[i].StartLine < blocks[j].StartLine
		}
		return blocks[i].EndLine > blocks[j].EndLine
	})
}

// markDocAdjacent flags the comment lines that directly precede each span.
func markDocAdjacent(lines []domain.LogicalLine, blocks []domain.BlockSpan) map[int]bool {
	adj := make(map[int]bool)
	for _, b := range blocks {
		for i := b.StartLine - 1; i >= 1; i-- {
			k := lines[i-1].Kind
			if k != domain.LineComment && k != domain.LineDocstring {
				break
			}
			if k == domain.LineComment {
				adj[i] = true
			}
		}
	}
	return adj
}

func sortIdentifiers(ids []domain.IdentifierDecl) {
	sort.SliceStable(ids, func(i, j int) bool {
		if ids[i].DeclaredAtLine != ids[j].DeclaredAtLine {
			return ids[i].DeclaredAtLine < ids[j].DeclaredAtLine
		}
		return ids[i].Name < ids[j].Name
	})
}
