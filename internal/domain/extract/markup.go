package extract

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/openkraft/kraftlint/internal/domain"
	"github.com/openkraft/kraftlint/internal/domain/naming"
)

var (
	jsFunctionRe  = regexp.MustCompile(`^(?:export\s+)?(?:default\s+)?(?:declare\s+)?(?:async\s+)?function\b\s*\*?\s*([A-Za-z_$][\w$]*)?`)
	jsBindingRe   = regexp.MustCompile(`^(?:export\s+)?(?:declare\s+)?(const|let|var)\s+([A-Za-z_$][\w$]*)\s*(?::\s*[^=]+?)?\s*=\s*`)
	jsBareBinding = regexp.MustCompile(`^(?:export\s+)?(?:declare\s+)?(const|let|var)\s+([A-Za-z_$][\w$]*)`)
	jsClassRe     = regexp.MustCompile(`^(?:export\s+)?(?:default\s+)?(?:declare\s+)?(?:abstract\s+)?class\s+([A-Za-z_$][\w$]*)`)
	jsTypeRe      = regexp.MustCompile(`^(?:export\s+)?(?:declare\s+)?(?:type|interface|enum)\s+([A-Za-z_$][\w$]*)`)
	jsMethodRe    = regexp.MustCompile(`^(?:(?:public|private|protected|static|async|readonly|override|abstract|declare|get|set)\s+)*\*?\s*(#?[A-Za-z_$][\w$]*)\s*\??\s*(?:<[^>(]*>)?\s*\(`)
	jsPropertyRe  = regexp.MustCompile(`^(?:(?:public|private|protected|static|readonly|override|declare)\s+)*(#?[A-Za-z_$][\w$]*)\s*(?::\s*[^=]+?)?\s*=\s*`)
	jsImportRe    = regexp.MustCompile(`^import\b`)
	jsReturnRe    = regexp.MustCompile(`^return\b`)
	jsHookRe      = regexp.MustCompile(`^use[A-Z0-9]`)
	jsNotMethod   = map[string]bool{
		"if": true, "for": true, "while": true, "switch": true, "catch": true, "return": true,
		"function": true, "new": true, "await": true, "typeof": true, "super": true, "with": true,
	}
	jsParamModifiers = []string{"public ", "private ", "protected ", "readonly ", "override "}
	jsWrappers       = map[string]bool{"memo": true, "forwardRef": true, "useCallback": true, "observer": true}
)

// markupExtractor models TSX/JSX/TS/JS content with a character scanner.
type markupExtractor struct {
	opts Options
}

type frameKind int

const (
	frameBracket frameKind = iota
	frameTemplate
	frameTag
	frameChildren
)

type frame struct {
	kind    frameKind
	ch      byte
	off     int
	closing bool
}

type markupLine struct {
	startDepth      int
	endDepth        int
	startInComment  bool
	startInTemplate bool
	docComment      bool
	hasCode         bool
	hasComment      bool
	hasMarkup       bool
}

type markupScan struct {
	src           source
	masked        []byte
	match         map[int]int
	info          []markupLine
	recoveries    int
	firstRecovery int
}

func (s *markupScan) recover(offset int) {
	if s.recoveries == 0 {
		s.firstRecovery = s.src.lineOf(offset)
	}
	s.recoveries++
}

// scanMarkupSource walks the content once with a context stack. Strings,
// comments, template text and markup text are blanked in the masked copy.
func scanMarkupSource(src source, budget int) (*markupScan, error) {
	t := src.text
	s := &markupScan{
		src:    src,
		masked: []byte(t),
		match:  make(map[int]int),
		info:   make([]markupLine, len(src.lines)),
	}
	if len(src.lines) == 0 {
		return s, nil
	}

	var stack []frame
	depth := func() int {
		d := 0
		for _, f := range stack {
			if f.kind != frameTemplate {
				d++
			}
		}
		return d
	}
	top := func() frameKind {
		if len(stack) == 0 {
			return frameBracket
		}
		return stack[len(stack)-1].kind
	}
	pop := func() frame {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		return f
	}

	var inLine, inBlock, blockDoc bool
	var blockStart, line int
	var quote byte
	peek := func(i int) byte {
		if i < len(t) {
			return t[i]
		}
		return 0
	}

	for i := 0; i < len(t); i++ {
		c := t[i]
		if c == '\n' {
			s.info[line].endDepth = depth()
			inLine = false
			if quote != 0 {
				s.recover(i)
				quote = 0
			}
			line++
			if line < len(s.info) {
				s.info[line] = markupLine{
					startDepth:      depth(),
					startInComment:  inBlock,
					startInTemplate: top() == frameTemplate,
					docComment:      inBlock && blockDoc,
				}
			}
			continue
		}
		cur := &s.info[line]

		switch {
		case inLine:
			s.masked[i] = ' '
			continue
		case inBlock:
			s.masked[i] = ' '
			if c == '*' && peek(i+1) == '/' {
				s.masked[i+1] = ' '
				i++
				inBlock = false
			}
			continue
		case quote != 0:
			s.masked[i] = ' '
			if c == '\\' && peek(i+1) != '\n' && peek(i+1) != 0 {
				s.masked[i+1] = ' '
				i++
			} else if c == quote {
				quote = 0
			}
			continue
		}

		switch top() {
		case frameTemplate:
			s.masked[i] = ' '
			if !isSpace(c) {
				cur.hasCode = true
			}
			switch {
			case c == '\\' && peek(i+1) != '\n' && peek(i+1) != 0:
				s.masked[i+1] = ' '
				i++
			case c == '`':
				pop()
			case c == '$' && peek(i+1) == '{':
				i++
				stack = append(stack, frame{kind: frameBracket, ch: '{', off: i})
			}
			continue

		case frameChildren:
			switch {
			case c == '{':
				cur.hasCode = true
				stack = append(stack, frame{kind: frameBracket, ch: '{', off: i})
			case c == '<' && peek(i+1) == '/':
				cur.hasCode, cur.hasMarkup = true, true
				stack = append(stack, frame{kind: frameTag, off: i, closing: true})
				i++
			case c == '<' && (isLetter(peek(i+1)) || peek(i+1) == '>'):
				cur.hasCode, cur.hasMarkup = true, true
				stack = append(stack, frame{kind: frameTag, off: i})
			default:
				if !isSpace(c) {
					cur.hasCode = true
				}
				s.masked[i] = ' '
			}
			continue

		case frameTag:
			if !isSpace(c) {
				cur.hasCode = true
			}
			switch {
			case c == '"' || c == '\'':
				quote = c
				s.masked[i] = ' '
			case c == '{':
				stack = append(stack, frame{kind: frameBracket, ch: '{', off: i})
			case c == '/' && peek(i+1) == '>':
				f := pop()
				s.match[f.off] = i + 1
				i++
			case c == '>':
				f := pop()
				if f.closing {
					if top() == frameChildren && len(stack) > 0 {
						open := pop()
						s.match[open.off] = i
					} else {
						s.recover(i)
					}
				} else {
					stack = append(stack, frame{kind: frameChildren, off: f.off})
				}
			}
			continue
		}

		// Code context: top level or inside a bracket.
		if c == '/' && peek(i+1) == '/' {
			inLine = true
			cur.hasComment = true
			s.masked[i] = ' '
			continue
		}
		if c == '/' && peek(i+1) == '*' {
			inBlock = true
			blockStart = i
			blockDoc = peek(i+2) == '*' && peek(i+3) != '/'
			cur.hasComment = true
			if blockDoc {
				cur.docComment = true
			}
			s.masked[i], s.masked[i+1] = ' ', ' '
			i++
			continue
		}
		if !isSpace(c) {
			cur.hasCode = true
		}
		switch c {
		case '"', '\'':
			quote = c
			s.masked[i] = ' '
		case '`':
			stack = append(stack, frame{kind: frameTemplate, off: i})
			s.masked[i] = ' '
		case '(', '[', '{':
			stack = append(stack, frame{kind: frameBracket, ch: c, off: i})
		case ')', ']', '}':
			want := openerFor(c)
			k := len(stack) - 1
			for k >= 0 && stack[k].kind == frameBracket && stack[k].ch != want {
				k--
			}
			if k < 0 || stack[k].kind != frameBracket {
				s.recover(i)
				continue
			}
			for n := len(stack) - 1; n > k; n-- {
				s.recover(stack[n].off)
			}
			s.match[stack[k].off] = i
			stack = stack[:k]
		case '<':
			if s.startsMarkup(i) {
				cur.hasMarkup = true
				stack = append(stack, frame{kind: frameTag, off: i})
			}
		}
	}
	if line < len(s.info) {
		s.info[line].endDepth = depth()
	}

	if inBlock {
		return nil, &domain.ParseError{Line: src.lineOf(blockStart), Reason: "unterminated block comment"}
	}
	for _, f := range stack {
		if f.kind == frameTemplate {
			return nil, &domain.ParseError{Line: src.lineOf(f.off), Reason: "unterminated template literal"}
		}
	}
	for _, f := range stack {
		s.recover(f.off)
	}
	if s.recoveries > budget {
		return nil, &domain.ParseError{
			Line:   s.firstRecovery,
			Reason: fmt.Sprintf("unbalanced delimiters: %d recoveries exceed budget %d", s.recoveries, budget),
		}
	}
	return s, nil
}

// startsMarkup decides whether the '<' at i opens a markup tag rather than
// a comparison or a type parameter list.
func (s *markupScan) startsMarkup(i int) bool {
	t := s.src.text
	if i+1 >= len(t) || !(isLetter(t[i+1]) || t[i+1] == '>') {
		return false
	}
	if t[i+1] != '>' {
		name := leadingIdent(t[i+1:])
		rest := strings.TrimLeft(t[i+1+len(name):], " \t")
		if strings.HasPrefix(rest, ",") || strings.HasPrefix(rest, "extends ") {
			return false
		}
		if len(name) == 1 && strings.HasPrefix(rest, ">(") {
			return false
		}
	}

	j := i - 1
	for j >= 0 && isSpace(s.masked[j]) {
		j--
	}
	if j < 0 {
		return true
	}
	switch p := s.masked[j]; {
	case strings.IndexByte("([{,;=:?&|!}", p) >= 0:
		return true
	case p == '>':
		return j > 0 && s.masked[j-1] == '='
	case isIdentByte(p):
		end := j + 1
		for j >= 0 && isIdentByte(s.masked[j]) {
			j--
		}
		switch string(s.masked[j+1 : end]) {
		case "return", "yield", "default", "case", "await":
			return true
		}
	}
	return false
}

func isLetter(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

// callable is a parsed function-like value.
type callable struct {
	open, close int // parameter list delimiters, close == -1 for a bare parameter
	bare        segment
	returnTyped bool
	returnType  string
	returnOff   int
	bodyEnd     int // offset of the body's last byte, -1 when unknown
	arrowOff    int // offset after "=>", -1 for declarations
}

type markupParser struct {
	scan *markupScan
}

func (p markupParser) skipGeneric(pos int) int {
	m := p.scan.masked
	if pos >= len(m) || m[pos] != '<' {
		return pos
	}
	depth := 0
	for i := pos; i < len(m); i++ {
		switch m[i] {
		case '<':
			depth++
		case '>':
			if i > 0 && m[i-1] == '=' {
				continue
			}
			depth--
			if depth == 0 {
				return skipSpace(m, i+1)
			}
		case ';', '{':
			return pos
		}
	}
	return pos
}

// declared parses "(params) [: Type] { body }" starting at pos.
func (p markupParser) declared(pos int) (callable, bool) {
	m := p.scan.masked
	pos = p.skipGeneric(skipSpace(m, pos))
	if pos >= len(m) || m[pos] != '(' {
		return callable{}, false
	}
	close, ok := p.scan.match[pos]
	if !ok {
		return callable{}, false
	}
	fn := callable{open: pos, close: close, returnOff: close, bodyEnd: -1, arrowOff: -1}
	i := skipSpace(m, close+1)
	typeStart := -1
	if i < len(m) && m[i] == ':' {
		fn.returnTyped = true
		fn.returnOff = i
		typeStart = i + 1
		i++
	}
	depth := 0
	for ; i < len(m); i++ {
		switch c := m[i]; c {
		case '(', '[', '<':
			depth++
		case ')', ']':
			depth--
		case '>':
			if m[i-1] != '=' {
				depth--
			}
		case ';':
			if depth == 0 {
				fn.returnType = p.typeText(typeStart, i)
				return fn, true
			}
		case '{':
			if depth > 0 {
				continue
			}
			if typeStart >= 0 && strings.TrimSpace(string(m[typeStart:i])) == "" || typeStart >= 0 && endsWithOperator(m[typeStart:i]) {
				if end, ok := p.scan.match[i]; ok {
					i = end
					continue
				}
			}
			fn.returnType = p.typeText(typeStart, i)
			if end, ok := p.scan.match[i]; ok {
				fn.bodyEnd = end
			}
			return fn, true
		}
		if depth < 0 {
			break
		}
	}
	fn.returnType = p.typeText(typeStart, i)
	return fn, true
}

func endsWithOperator(b []byte) bool {
	s := strings.TrimSpace(string(b))
	return strings.HasSuffix(s, "|") || strings.HasSuffix(s, "&") || strings.HasSuffix(s, ",")
}

func (p markupParser) typeText(from, to int) string {
	if from < 0 || to <= from {
		return ""
	}
	if to > len(p.scan.src.text) {
		to = len(p.scan.src.text)
	}
	return strings.TrimSpace(p.scan.src.text[from:to])
}

// arrow parses "[: Type] => body" following a parameter list closed at close.
func (p markupParser) arrow(fn callable) (callable, bool) {
	m := p.scan.masked
	var i int
	if fn.close < 0 {
		i = skipSpace(m, fn.bare.end)
	} else {
		i = skipSpace(m, fn.close+1)
	}
	typeStart := -1
	if i < len(m) && m[i] == ':' {
		fn.returnTyped = true
		fn.returnOff = i
		typeStart = i + 1
		depth := 0
		for i++; i+1 < len(m); i++ {
			c := m[i]
			if depth == 0 && c == '=' && m[i+1] == '>' {
				break
			}
			switch c {
			case '(', '[', '{', '<':
				depth++
			case ')', ']', '}':
				depth--
			case '>':
				if m[i-1] != '=' {
					depth--
				}
			case ';':
				if depth == 0 {
					return callable{}, false
				}
			}
			if depth < 0 {
				return callable{}, false
			}
		}
	}
	if i+1 >= len(m) || m[i] != '=' || m[i+1] != '>' {
		return callable{}, false
	}
	fn.returnType = p.typeText(typeStart, i)
	fn.arrowOff = i + 2
	body := skipSpace(m, i+2)
	fn.bodyEnd = -1
	if body < len(m) && (m[body] == '{' || m[body] == '(') {
		if end, ok := p.scan.match[body]; ok {
			fn.bodyEnd = end
		}
	}
	return fn, true
}

// value parses the right-hand side of a binding when it is function-like.
func (p markupParser) value(pos int) (callable, bool) {
	m := p.scan.masked
	pos = skipSpace(m, pos)
	rest := string(m[pos:min(len(m), pos+64)])
	if hasWordPrefix(rest, "async") {
		pos = skipSpace(m, pos+len("async"))
		rest = string(m[pos:min(len(m), pos+64)])
	}
	if hasWordPrefix(rest, "function") {
		i := skipSpace(m, pos+len("function"))
		if i < len(m) && m[i] == '*' {
			i = skipSpace(m, i+1)
		}
		for i < len(m) && isIdentByte(m[i]) {
			i++
		}
		return p.declared(i)
	}
	if pos < len(m) && m[pos] == '<' {
		pos = p.skipGeneric(pos)
	}
	if pos < len(m) && m[pos] == '(' {
		close, ok := p.scan.match[pos]
		if !ok {
			return callable{}, false
		}
		return p.arrow(callable{open: pos, close: close, returnOff: close})
	}

	name := leadingIdent(string(m[pos:min(len(m), pos+128)]))
	if name == "" {
		return callable{}, false
	}
	after := skipSpace(m, pos+len(name))
	if after+1 < len(m) && m[after] == '=' && m[after+1] == '>' {
		return p.arrow(callable{close: -1, bare: segment{pos, pos + len(name)}, returnOff: pos})
	}

	// Wrapped values such as memo(...) or forwardRef<T>(...).
	i := pos
	for i < len(m) && (isIdentByte(m[i]) || m[i] == '.') {
		i++
	}
	callee := string(m[pos:i])
	if dot := strings.LastIndexByte(callee, '.'); dot >= 0 {
		callee = callee[dot+1:]
	}
	if !jsWrappers[callee] {
		return callable{}, false
	}
	i = p.skipGeneric(skipSpace(m, i))
	if i < len(m) && m[i] == '(' {
		if _, ok := p.scan.match[i]; ok {
			return p.value(i + 1)
		}
	}
	return callable{}, false
}

func (p markupParser) params(fn callable) []domain.Param {
	m := p.scan.masked
	src := p.scan.src
	if fn.close < 0 {
		return []domain.Param{{
			Name: string(m[fn.bare.start:fn.bare.end]),
			Line: src.lineOf(fn.bare.start),
		}}
	}
	var out []domain.Param
	for _, seg := range splitTopLevel(m, fn.open+1, fn.close, true) {
		seg = trimSegment(m, seg)
		if seg.start >= seg.end {
			continue
		}
		text := string(m[seg.start:seg.end])
		for _, mod := range jsParamModifiers {
			text = strings.TrimPrefix(text, mod)
		}
		text = strings.TrimPrefix(text, "...")

		var name string
		switch {
		case strings.HasPrefix(text, "{") || strings.HasPrefix(text, "["):
			end := indexTopLevel([]byte(text), 0, len(text), ':', true)
			if end < 0 {
				end = len(text)
			}
			name = strings.Join(strings.Fields(text[:end]), " ")
		default:
			name = leadingIdent(text)
		}
		colon := indexTopLevel(m, seg.start, seg.end, ':', true)
		eq := indexTopLevel(m, seg.start, seg.end, '=', true)
		if eq >= 0 && eq+1 < len(m) && m[eq+1] == '>' {
			eq = -1
		}
		out = append(out, domain.Param{
			Name:  name,
			Line:  src.lineOf(seg.start),
			Typed: colon >= 0 && (eq < 0 || colon < eq),
		})
	}
	return out
}

type markupDecl struct {
	name    string
	line    int
	kind    string // function, class, type or binding
	fn      *callable
	block   int // index in blocks, -1 when none
	isConst bool
	depth0  bool
	method  bool
}

func (x markupExtractor) extract(content string) (*domain.StructuralModel, error) {
	src := newSource(content)
	scan, err := scanMarkupSource(src, x.opts.RecoveryBudget)
	if err != nil {
		return nil, err
	}

	lines := make([]domain.LogicalLine, len(src.lines))
	for i, r := range src.lines {
		info := scan.info[i]
		l := newLine(i+1, r.text, x.opts.TabWidth)
		l.Continuation = info.startInComment || info.startInTemplate
		switch {
		case isBlank(r.text):
			switch {
			case info.startInTemplate:
				l.Kind = domain.LineCode
			case info.startInComment && info.docComment:
				l.Kind = domain.LineDocstring
			case info.startInComment:
				l.Kind = domain.LineComment
			default:
				l.Kind = domain.LineBlank
			}
		case info.hasCode:
			l.Kind = domain.LineCode
		case info.docComment:
			l.Kind = domain.LineDocstring
		case info.hasComment || info.startInComment:
			l.Kind = domain.LineComment
		}
		lines[i] = l
	}

	m := &domain.StructuralModel{Lines: lines}
	p := markupParser{scan: scan}
	decls := x.declarations(m, p)
	blockDepths(m.Blocks)
	x.identifiers(m, p, decls)
	x.returns(m, scan)
	m.ImportEnd = x.importEnd(m, scan)
	m.DocAdjacent = markDocAdjacent(lines, m.Blocks)
	return m, nil
}

// maskedLine returns the trimmed masked text of line i (0-based) and the
// absolute offset of its first byte.
func maskedLine(scan *markupScan, i int) (string, int) {
	r := scan.src.lines[i]
	text := string(scan.masked[r.start : r.start+len(r.text)])
	lead := len(text) - len(strings.TrimLeft(text, " \t"))
	return strings.TrimSpace(text), r.start + lead
}

// statementEnd returns the 1-based line where the statement opened on the
// 1-based header line is complete, no earlier than from.
func statementEnd(scan *markupScan, header, from int) int {
	base := scan.info[header-1].startDepth
	for l := from; l <= len(scan.info); l++ {
		if scan.info[l-1].endDepth > base {
			continue
		}
		text, _ := maskedLine(scan, l-1)
		if l < len(scan.info) && continues(text) {
			continue
		}
		return l
	}
	return len(scan.info)
}

func continues(text string) bool {
	for _, op := range []string{"&&", "||", "?", ":", "=", "(", ",", "=>"} {
		if strings.HasSuffix(text, op) {
			return true
		}
	}
	return false
}

func (x markupExtractor) declarations(m *domain.StructuralModel, p markupParser) []markupDecl {
	scan := p.scan
	var decls []markupDecl
	type classBody struct {
		start, end, depth int
	}
	var classes []classBody

	addBlock := func(b domain.BlockSpan) int {
		m.Blocks = append(m.Blocks, b)
		return len(m.Blocks) - 1
	}

	for i := range m.Lines {
		info := scan.info[i]
		if m.Lines[i].Kind != domain.LineCode || info.startInTemplate || info.startInComment && !info.hasCode {
			continue
		}
		text, base := maskedLine(scan, i)
		line := i + 1

		inClass := false
		for _, c := range classes {
			if line > c.start && line <= c.end && info.startDepth == c.depth {
				inClass = true
			}
		}

		switch {
		case jsClassRe.MatchString(text):
			sm := jsClassRe.FindStringSubmatch(text)
			end := line
			if open := strings.IndexByte(text, '{'); open >= 0 {
				if close, ok := scan.match[base+open]; ok {
					end = scan.src.lineOf(close)
				}
			} else if open := indexByteFrom(scan.masked, base+len(sm[0]), '{'); open >= 0 {
				if close, ok := scan.match[open]; ok {
					end = scan.src.lineOf(close)
				}
			}
			idx := addBlock(domain.BlockSpan{StartLine: line, EndLine: end, HeaderLine: line, Kind: domain.BlockClass, Name: sm[1]})
			classes = append(classes, classBody{start: line, end: end, depth: info.startDepth + 1})
			decls = append(decls, markupDecl{name: sm[1], line: line, kind: "class", block: idx})

		case jsTypeRe.MatchString(text):
			sm := jsTypeRe.FindStringSubmatch(text)
			decls = append(decls, markupDecl{name: sm[1], line: line, kind: "type", block: -1})

		case jsFunctionRe.MatchString(text):
			loc := jsFunctionRe.FindStringSubmatchIndex(text)
			fn, ok := p.declared(base + loc[1])
			if !ok {
				continue
			}
			name := ""
			if loc[2] >= 0 {
				name = text[loc[2]:loc[3]]
			}
			end := line
			if fn.bodyEnd >= 0 {
				end = scan.src.lineOf(fn.bodyEnd)
			}
			idx := addBlock(domain.BlockSpan{StartLine: line, EndLine: end, HeaderLine: line, Kind: domain.BlockFunction, Name: name})
			decls = append(decls, markupDecl{name: name, line: line, kind: "function", fn: &fn, block: idx})

		case jsBindingRe.MatchString(text):
			sm := jsBindingRe.FindStringSubmatchIndex(text)
			name := text[sm[4]:sm[5]]
			keyword := text[sm[2]:sm[3]]
			if fn, ok := p.value(base + sm[1]); ok {
				bodyLine := line
				if fn.bodyEnd >= 0 {
					bodyLine = scan.src.lineOf(fn.bodyEnd)
				} else if fn.arrowOff >= 0 {
					bodyLine = scan.src.lineOf(fn.arrowOff)
				}
				end := statementEnd(scan, line, bodyLine)
				idx := addBlock(domain.BlockSpan{StartLine: line, EndLine: end, HeaderLine: line, Kind: domain.BlockFunction, Name: name})
				decls = append(decls, markupDecl{name: name, line: line, kind: "function", fn: &fn, block: idx})
				continue
			}
			decls = append(decls, markupDecl{
				name: name, line: line, kind: "binding", block: -1,
				isConst: keyword == "const", depth0: info.startDepth == 0,
			})

		case jsBareBinding.MatchString(text):
			sm := jsBareBinding.FindStringSubmatch(text)
			decls = append(decls, markupDecl{
				name: sm[2], line: line, kind: "binding", block: -1,
				isConst: sm[1] == "const", depth0: info.startDepth == 0,
			})

		case inClass && jsMethodRe.MatchString(text):
			sm := jsMethodRe.FindStringSubmatchIndex(text)
			name := text[sm[2]:sm[3]]
			if jsNotMethod[name] {
				continue
			}
			fn, ok := p.declared(base + sm[1] - 1)
			if !ok {
				continue
			}
			end := line
			if fn.bodyEnd >= 0 {
				end = scan.src.lineOf(fn.bodyEnd)
			}
			idx := addBlock(domain.BlockSpan{StartLine: line, EndLine: end, HeaderLine: line, Kind: domain.BlockFunction, Name: name})
			decls = append(decls, markupDecl{name: name, line: line, kind: "function", fn: &fn, block: idx, method: true})

		case inClass && jsPropertyRe.MatchString(text):
			sm := jsPropertyRe.FindStringSubmatchIndex(text)
			name := text[sm[2]:sm[3]]
			fn, ok := p.value(base + sm[1])
			if !ok {
				continue
			}
			bodyLine := line
			if fn.bodyEnd >= 0 {
				bodyLine = scan.src.lineOf(fn.bodyEnd)
			}
			end := statementEnd(scan, line, bodyLine)
			idx := addBlock(domain.BlockSpan{StartLine: line, EndLine: end, HeaderLine: line, Kind: domain.BlockFunction, Name: name})
			decls = append(decls, markupDecl{name: name, line: line, kind: "function", fn: &fn, block: idx, method: true})
		}
	}
	return decls
}

func indexByteFrom(b []byte, from int, c byte) int {
	for i := from; i < len(b); i++ {
		if b[i] == c {
			return i
		}
		if b[i] == ';' {
			return -1
		}
	}
	return -1
}

func (x markupExtractor) identifiers(m *domain.StructuralModel, p markupParser, decls []markupDecl) {
	scan := p.scan
	seen := make(map[string]bool)
	for _, d := range decls {
		var role domain.Role
		switch d.kind {
		case "class", "type":
			role = domain.RoleTypeAlias
		case "binding":
			role = domain.RoleVariable
			if d.isConst && d.depth0 && naming.Classify(d.name) == domain.CaseUpperSnake {
				role = domain.RoleConstant
			}
		case "function":
			role = domain.RoleFunction
			switch {
			case d.method:
			case jsHookRe.MatchString(d.name):
				role = domain.RoleHook
			case d.name != "" && isUpperASCII(d.name[0]) && spanHasMarkup(scan, m.Blocks[d.block]):
				role = domain.RoleComponent
				m.Blocks[d.block].Kind = domain.BlockComponent
			}
			m.Signatures = append(m.Signatures, domain.Signature{
				Name:        d.name,
				Role:        role,
				Line:        d.line,
				Params:      p.params(*d.fn),
				ReturnLine:  scan.src.lineOf(d.fn.returnOff),
				ReturnTyped: d.fn.returnTyped,
				ReturnType:  d.fn.returnType,
			})
		}
		if d.name == "" {
			continue
		}
		scope := innermost(m.Blocks, d.line)
		key := fmt.Sprintf("%d/%s", scope, d.name)
		if seen[key] {
			continue
		}
		seen[key] = true
		m.Identifiers = append(m.Identifiers, domain.IdentifierDecl{
			Name:           d.name,
			Role:           role,
			Case:           naming.Classify(d.name),
			DeclaredAtLine: d.line,
		})
	}
	sortIdentifiers(m.Identifiers)
}

func spanHasMarkup(scan *markupScan, b domain.BlockSpan) bool {
	for l := b.StartLine; l <= b.EndLine; l++ {
		if scan.info[l-1].hasMarkup {
			return true
		}
	}
	return false
}

func isUpperASCII(c byte) bool {
	return c >= 'A' && c <= 'Z'
}

func (x markupExtractor) returns(m *domain.StructuralModel, scan *markupScan) {
	for i := range m.Lines {
		if m.Lines[i].Kind != domain.LineCode || scan.info[i].startInTemplate {
			continue
		}
		text, _ := maskedLine(scan, i)
		if !jsReturnRe.MatchString(text) || innermost(m.Blocks, i+1) < 0 {
			continue
		}
		end := statementEnd(scan, i+1, i+1)
		var stmt strings.Builder
		for l := i; l < end; l++ {
			t, _ := maskedLine(scan, l)
			stmt.WriteString(t)
			stmt.WriteByte(' ')
		}
		m.Returns = append(m.Returns, domain.ReturnStmt{
			StartLine:   i + 1,
			EndLine:     end,
			Conditional: jsConditional(stmt.String()),
		})
	}
}

func jsConditional(stmt string) bool {
	stmt = strings.NewReplacer("?.", "", "??", "").Replace(stmt)
	return strings.Contains(stmt, "?") || strings.Contains(stmt, "&&") || strings.Contains(stmt, "||")
}

func (x markupExtractor) importEnd(m *domain.StructuralModel, scan *markupScan) int {
	end := 0
	for i := 0; i < len(m.Lines); i++ {
		switch m.Lines[i].Kind {
		case domain.LineBlank, domain.LineComment, domain.LineDocstring:
			continue
		}
		text, _ := maskedLine(scan, i)
		if end == 0 && (text == "" || text == ";") {
			// Directive prologue such as "use client".
			continue
		}
		if !jsImportRe.MatchString(text) || scan.info[i].startDepth > 0 {
			break
		}
		end = statementEnd(scan, i+1, i+1)
		i = end - 1
	}
	return end
}
