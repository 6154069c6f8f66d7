// Package classify maps files and embedded fragments onto a LanguageKind.
package classify

import (
	"path/filepath"
	"strings"

	"github.com/openkraft/kraftlint/internal/domain"
)

var extensionKinds = map[string]domain.LanguageKind{
	".py":       domain.KindIndentBlock,
	".pyi":      domain.KindIndentBlock,
	".ts":       domain.KindComponentMarkup,
	".tsx":      domain.KindComponentMarkup,
	".js":       domain.KindComponentMarkup,
	".jsx":      domain.KindComponentMarkup,
	".mjs":      domain.KindComponentMarkup,
	".cjs":      domain.KindComponentMarkup,
	".md":       domain.KindProseMarkup,
	".markdown": domain.KindProseMarkup,
	".mdx":      domain.KindProseMarkup,
}

var tagKinds = map[string]domain.LanguageKind{
	"python":     domain.KindIndentBlock,
	"py":         domain.KindIndentBlock,
	"py3":        domain.KindIndentBlock,
	"tsx":        domain.KindComponentMarkup,
	"jsx":        domain.KindComponentMarkup,
	"ts":         domain.KindComponentMarkup,
	"typescript": domain.KindComponentMarkup,
	"js":         domain.KindComponentMarkup,
	"javascript": domain.KindComponentMarkup,
	"md":         domain.KindProseMarkup,
	"markdown":   domain.KindProseMarkup,
}

// Classify determines the kind of a file from its extension, falling back
// to content sniffing when the extension is absent or unknown.
func Classify(path, content string) domain.LanguageKind {
	ext := strings.ToLower(filepath.Ext(path))
	if kind, ok := extensionKinds[ext]; ok {
		return kind
	}
	return Sniff(content)
}

// ClassifyTag determines the kind of a fenced fragment from its declared
// tag. An empty tag falls back to sniffing; an unknown tag is Unclassified.
func ClassifyTag(tag, content string) domain.LanguageKind {
	tag = strings.ToLower(strings.TrimSpace(tag))
	if tag == "" {
		return Sniff(content)
	}
	if kind, ok := tagKinds[tag]; ok {
		return kind
	}
	return domain.KindUnclassified
}

// Sniff scores brace, indentation and prose heuristics over content.
func Sniff(content string) domain.LanguageKind {
	lines := strings.Split(content, "\n")
	if len(lines) > 0 && strings.HasPrefix(lines[0], "#!") {
		if strings.Contains(lines[0], "python") {
			return domain.KindIndentBlock
		}
		if strings.Contains(lines[0], "node") || strings.Contains(lines[0], "deno") {
			return domain.KindComponentMarkup
		}
	}

	var indent, braces, prose int
	for i, raw := range lines {
		line := strings.TrimRight(raw, " \t\r")
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		switch {
		case strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~"):
			prose += 2
		case isATXHeading(line):
			prose += 2
		case strings.HasPrefix(trimmed, "- ") || strings.HasPrefix(trimmed, "* "):
			prose++
		}
		if strings.HasSuffix(trimmed, ":") && !strings.HasPrefix(trimmed, "#") && i+1 < len(lines) {
			if indentOf(lines[i+1]) > indentOf(line) {
				indent += 2
			}
		}
		if strings.HasPrefix(trimmed, "def ") || strings.HasPrefix(trimmed, "import ") && !strings.Contains(trimmed, " from ") {
			indent++
		}
		if strings.HasSuffix(trimmed, "{") || trimmed == "}" || strings.HasPrefix(trimmed, "}") {
			braces++
		}
		if strings.Contains(trimmed, "=>") || strings.HasPrefix(trimmed, "function ") ||
			strings.HasPrefix(trimmed, "const ") || strings.HasPrefix(trimmed, "export ") {
			braces++
		}
	}

	best, kind := 0, domain.KindUnclassified
	for _, c := range []struct {
		score int
		kind  domain.LanguageKind
	}{
		{indent, domain.KindIndentBlock},
		{braces, domain.KindComponentMarkup},
		{prose, domain.KindProseMarkup},
	} {
		switch {
		case c.score > best:
			best, kind = c.score, c.kind
		case c.score == best && best > 0:
			kind = domain.KindUnclassified
		}
	}
	return kind
}

func isATXHeading(line string) bool {
	n := 0
	for n < len(line) && line[n] == '#' {
		n++
	}
	return n > 0 && (n == len(line) || line[n] == ' ')
}

func indentOf(line string) int {
	n := 0
	for _, r := range line {
		switch r {
		case ' ':
			n++
		case '\t':
			n += 4
		default:
			return n
		}
	}
	return n
}
