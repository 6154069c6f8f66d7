package extract

import "strings"

// segment is a half-open byte range of the masked source.
type segment struct {
	start, end int
}

// splitTopLevel splits masked[from:to] on commas that are not nested in
// brackets. With angles set, '<' and '>' nest as well, except the '>' of
// an arrow.
func splitTopLevel(masked []byte, from, to int, angles bool) []segment {
	var out []segment
	depth := 0
	start := from
	for i := from; i < to; i++ {
		switch c := masked[i]; c {
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		case '<':
			if angles {
				depth++
			}
		case '>':
			if angles && (i == 0 || masked[i-1] != '=') {
				depth--
			}
		case ',':
			if depth == 0 {
				out = append(out, segment{start, i})
				start = i + 1
			}
		}
	}
	return append(out, segment{start, to})
}

// indexTopLevel returns the offset of the first c in masked[from:to] that is
// not nested in brackets, or -1.
func indexTopLevel(masked []byte, from, to int, c byte, angles bool) int {
	depth := 0
	for i := from; i < to; i++ {
		switch b := masked[i]; b {
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		case '<':
			if angles {
				depth++
			}
		case '>':
			if angles && (i == 0 || masked[i-1] != '=') {
				depth--
			}
		}
		if masked[i] == c && depth == 0 {
			return i
		}
	}
	return -1
}

// trimSegment narrows seg to its non-space content.
func trimSegment(masked []byte, seg segment) segment {
	for seg.start < seg.end && isSpace(masked[seg.start]) {
		seg.start++
	}
	for seg.end > seg.start && isSpace(masked[seg.end-1]) {
		seg.end--
	}
	return seg
}

func skipSpace(masked []byte, i int) int {
	for i < len(masked) && isSpace(masked[i]) {
		i++
	}
	return i
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isIdentByte(c byte) bool {
	return c == '_' || c == '$' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c >= 0x80
}

// leadingIdent returns the identifier at the start of s.
func leadingIdent(s string) string {
	end := 0
	for end < len(s) && isIdentByte(s[end]) {
		end++
	}
	return s[:end]
}

// blank replaces every byte of masked[from:to] except newlines by a space.
func blank(masked []byte, from, to int) {
	if to > len(masked) {
		to = len(masked)
	}
	for i := from; i < to; i++ {
		if masked[i] != '\n' {
			masked[i] = ' '
		}
	}
}

func hasWordPrefix(s, word string) bool {
	if !strings.HasPrefix(s, word) {
		return false
	}
	return len(s) == len(word) || !isIdentByte(s[len(word)])
}
