package extract

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/openkraft/kraftlint/internal/domain"
	"github.com/openkraft/kraftlint/internal/domain/naming"
)

var (
	pyDefRe        = regexp.MustCompile(`^(?:async\s+)?def\s+([A-Za-z_]\w*)`)
	pyClassRe      = regexp.MustCompile(`^class\s+([A-Za-z_]\w*)`)
	pyImportRe     = regexp.MustCompile(`^(?:import\s|from\s+\S+\s+import\b)`)
	pyTypeStmtRe   = regexp.MustCompile(`^type\s+([A-Za-z_]\w*)\s*(?:\[[^\]]*\])?\s*=`)
	pyAnnotatedRe  = regexp.MustCompile(`^([A-Za-z_]\w*)\s*:\s*([^=]+?)\s*(?:=|$)`)
	pyAssignRe     = regexp.MustCompile(`^([A-Za-z_]\w*(?:\s*,\s*[A-Za-z_]\w*)*)\s*=(?:[^=]|$)`)
	pyStringRe     = regexp.MustCompile(`^[rRbBuUfF]{0,2}["']`)
	pyReturnRe     = regexp.MustCompile(`^return\b`)
	pyConditional  = regexp.MustCompile(`\sif\s[\s\S]*\selse\s`)
	pyTypeFactory  = regexp.MustCompile(`^\s*(?:typing\.)?(?:TypeVar|NewType|ParamSpec|TypeVarTuple)\s*\(`)
	pyKeywordNames = map[string]bool{
		"if": true, "elif": true, "else": true, "for": true, "while": true, "try": true,
		"except": true, "finally": true, "with": true, "match": true, "case": true,
		"lambda": true, "return": true, "yield": true, "pass": true, "del": true,
		"global": true, "nonlocal": true, "assert": true, "raise": true, "print": true,
	}
)

// indentExtractor models Python-like content where indentation delimits
// blocks.
type indentExtractor struct {
	opts Options
}

type pyString struct {
	start, end         int // byte range, end exclusive
	startLine, endLine int
	doc                bool
}

type pyStatement struct {
	start, end int // 1-based lines, inclusive
	indent     int
	first      string // trimmed original text of the first line
	code       string // masked text of the whole statement
	offStart   int
	offEnd     int
	docstring  bool
}

type indentScan struct {
	src           source
	masked        []byte
	match         map[int]int
	cont          []bool
	strings       []pyString
	recoveries    int
	firstRecovery int
}

func (s *indentScan) recover(offset int) {
	if s.recoveries == 0 {
		s.firstRecovery = s.src.lineOf(offset)
	}
	s.recoveries++
}

// scanIndentSource blanks strings and comments, matches brackets and marks
// continuation lines.
func scanIndentSource(src source, budget int) (*indentScan, error) {
	t := src.text
	s := &indentScan{
		src:    src,
		masked: []byte(t),
		match:  make(map[int]int),
		cont:   make([]bool, len(src.lines)),
	}
	type opener struct {
		ch  byte
		off int
	}
	var stack []opener
	line := 0
	backslash := false
	newline := func(inString bool) {
		line++
		if line < len(s.cont) {
			s.cont[line] = inString || backslash || len(stack) > 0
		}
		backslash = false
	}

	for i := 0; i < len(t); {
		c := t[i]
		switch {
		case c == '\n':
			newline(false)
			i++
		case c == '\\' && i+1 < len(t) && t[i+1] == '\n':
			backslash = true
			i++
		case c == '#':
			j := strings.IndexByte(t[i:], '\n')
			if j < 0 {
				j = len(t) - i
			}
			blank(s.masked, i, i+j)
			i += j
		case c == '"' || c == '\'':
			if i+2 < len(t) && t[i+1] == c && t[i+2] == c {
				j := i + 3
				for ; j < len(t); j++ {
					if t[j] == '\\' {
						if j+1 < len(t) && t[j+1] == '\n' {
							newline(true)
						}
						j++
						continue
					}
					if t[j] == '\n' {
						newline(true)
						continue
					}
					if t[j] == c && j+2 < len(t) && t[j+1] == c && t[j+2] == c {
						break
					}
				}
				if j >= len(t) {
					return nil, &domain.ParseError{Line: src.lineOf(i), Reason: "unterminated triple-quoted string"}
				}
				s.strings = append(s.strings, pyString{
					start: i, end: j + 3,
					startLine: src.lineOf(i), endLine: src.lineOf(j),
				})
				blank(s.masked, i, j+3)
				i = j + 3
				continue
			}
			j := i + 1
			for j < len(t) && t[j] != c && t[j] != '\n' {
				if t[j] == '\\' && j+1 < len(t) {
					if t[j+1] == '\n' {
						newline(true)
					}
					j++
				}
				j++
			}
			if j >= len(t) || t[j] == '\n' {
				s.recover(i)
				blank(s.masked, i, j)
				i = j
				continue
			}
			blank(s.masked, i, j+1)
			i = j + 1
		case c == '(' || c == '[' || c == '{':
			stack = append(stack, opener{c, i})
			i++
		case c == ')' || c == ']' || c == '}':
			want := openerFor(c)
			k := len(stack) - 1
			for k >= 0 && stack[k].ch != want {
				k--
			}
			if k < 0 {
				s.recover(i)
			} else {
				for n := len(stack) - 1; n > k; n-- {
					s.recover(stack[n].off)
				}
				s.match[stack[k].off] = i
				stack = stack[:k]
			}
			i++
		default:
			i++
		}
	}
	for _, o := range stack {
		s.recover(o.off)
	}
	if s.recoveries > budget {
		return nil, &domain.ParseError{
			Line:   s.firstRecovery,
			Reason: fmt.Sprintf("unbalanced brackets: %d recoveries exceed budget %d", s.recoveries, budget),
		}
	}
	return s, nil
}

func openerFor(c byte) byte {
	switch c {
	case ')':
		return '('
	case ']':
		return '['
	default:
		return '{'
	}
}

func (x indentExtractor) extract(content string) (*domain.StructuralModel, error) {
	src := newSource(content)
	scan, err := scanIndentSource(src, x.opts.RecoveryBudget)
	if err != nil {
		return nil, err
	}

	n := len(src.lines)
	lines := make([]domain.LogicalLine, n)
	stringAt := make([]int, n) // index+1 of the multi-line string a line starts inside
	for si, str := range scan.strings {
		for l := str.startLine + 1; l <= str.endLine; l++ {
			stringAt[l-1] = si + 1
		}
	}
	for i, r := range src.lines {
		lines[i] = newLine(i+1, r.text, x.opts.TabWidth)
		lines[i].Continuation = scan.cont[i]
	}

	stmts := x.statements(src, scan, lines, stringAt)
	x.markDocstrings(scan, stmts)

	for i := range lines {
		trimmed := strings.TrimSpace(lines[i].Text)
		switch {
		case stringAt[i] > 0:
			if scan.strings[stringAt[i]-1].doc {
				lines[i].Kind = domain.LineDocstring
			}
		case trimmed == "":
			lines[i].Kind = domain.LineBlank
		case strings.HasPrefix(trimmed, "#"):
			lines[i].Kind = domain.LineComment
		}
	}
	for _, st := range stmts {
		if !st.docstring {
			continue
		}
		for l := st.start; l <= st.end; l++ {
			lines[l-1].Kind = domain.LineDocstring
		}
	}

	m := &domain.StructuralModel{Lines: lines}
	headers := x.blocks(m, stmts)
	x.declarations(m, src, scan, stmts, headers)
	m.ImportEnd = importEnd(stmts)
	m.DocAdjacent = markDocAdjacent(lines, m.Blocks)
	return m, nil
}

// statements groups physical lines into logical statements.
func (x indentExtractor) statements(src source, scan *indentScan, lines []domain.LogicalLine, stringAt []int) []pyStatement {
	var out []pyStatement
	for i := 0; i < len(lines); i++ {
		trimmed := strings.TrimSpace(lines[i].Text)
		if scan.cont[i] || stringAt[i] > 0 || trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		end := i
		for end+1 < len(lines) && scan.cont[end+1] {
			end++
		}
		offStart := src.lines[i].start + (len(lines[i].Text) - len(strings.TrimLeft(lines[i].Text, " \t")))
		offEnd := src.lines[end].start + len(src.lines[end].text)
		out = append(out, pyStatement{
			start:    i + 1,
			end:      end + 1,
			indent:   lines[i].IndentDepth,
			first:    trimmed,
			code:     string(scan.masked[offStart:offEnd]),
			offStart: offStart,
			offEnd:   offEnd,
		})
		i = end
	}
	return out
}

// markDocstrings flags bare string statements that open a module, def or
// class body.
func (x indentExtractor) markDocstrings(scan *indentScan, stmts []pyStatement) {
	for k := range stmts {
		st := &stmts[k]
		if !pyStringRe.MatchString(st.first) || strings.TrimSpace(st.code) != "" {
			continue
		}
		isDoc := k == 0
		if k > 0 {
			prev := stmts[k-1]
			isHeader := pyDefRe.MatchString(prev.first) || pyClassRe.MatchString(prev.first)
			isDoc = isHeader && strings.HasSuffix(strings.TrimSpace(prev.code), ":") && st.indent > prev.indent
		}
		if !isDoc {
			continue
		}
		st.docstring = true
		for si := range scan.strings {
			if scan.strings[si].start >= st.offStart && scan.strings[si].end <= st.offEnd {
				scan.strings[si].doc = true
			}
		}
	}
}

// blocks builds def and class spans and returns, per span, the index of its
// header statement.
func (x indentExtractor) blocks(m *domain.StructuralModel, stmts []pyStatement) map[int]int {
	n := len(m.Lines)
	headers := make(map[int]int)
	for k, st := range stmts {
		var kind domain.BlockKind
		var name string
		if sm := pyDefRe.FindStringSubmatch(st.first); sm != nil {
			kind, name = domain.BlockFunction, sm[1]
		} else if sm := pyClassRe.FindStringSubmatch(st.first); sm != nil {
			kind, name = domain.BlockClass, sm[1]
		} else {
			continue
		}

		start := st.start
		for d := k - 1; d >= 0; d-- {
			prev := stmts[d]
			if !strings.HasPrefix(prev.first, "@") || prev.indent != st.indent || prev.end+1 != start {
				break
			}
			start = prev.start
		}

		boundary := n + 1
		for _, next := range stmts[k+1:] {
			if next.indent <= st.indent {
				boundary = next.start
				break
			}
		}
		end := boundary - 1
		for end > st.end {
			l := m.Lines[end-1]
			if l.Kind == domain.LineBlank || l.Kind == domain.LineComment && l.IndentDepth <= st.indent {
				end--
				continue
			}
			break
		}

		m.Blocks = append(m.Blocks, domain.BlockSpan{
			StartLine:  start,
			EndLine:    end,
			HeaderLine: st.start,
			Kind:       kind,
			Name:       name,
		})
		headers[len(m.Blocks)-1] = k
	}

	// Statement order is start order, so the header index stays valid.
	blockDepths(m.Blocks)
	return headers
}

// innermost returns the index of the narrowest span strictly enclosing
// line that is not headed at line itself, or -1.
func innermost(blocks []domain.BlockSpan, line int) int {
	best := -1
	for i, b := range blocks {
		if b.HeaderLine == line || !b.Contains(line) || line < b.HeaderLine {
			continue
		}
		if best < 0 || b.Depth > blocks[best].Depth {
			best = i
		}
	}
	return best
}

func (x indentExtractor) declarations(m *domain.StructuralModel, src source, scan *indentScan, stmts []pyStatement, headers map[int]int) {
	seen := make(map[string]bool)
	add := func(scope int, name string, role domain.Role, line int) {
		if name == "_" || pyKeywordNames[name] {
			return
		}
		key := fmt.Sprintf("%d/%s", scope, name)
		if seen[key] {
			return
		}
		seen[key] = true
		m.Identifiers = append(m.Identifiers, domain.IdentifierDecl{
			Name:           name,
			Role:           role,
			Case:           naming.Classify(name),
			DeclaredAtLine: line,
		})
	}

	for bi, b := range m.Blocks {
		scope := innermost(m.Blocks, b.HeaderLine)
		role := domain.RoleFunction
		if b.Kind == domain.BlockClass {
			role = domain.RoleTypeAlias
		}
		add(scope, b.Name, role, b.HeaderLine)
		if b.Kind == domain.BlockFunction {
			if sig, ok := x.signature(src, scan, stmts[headers[bi]], b.Name); ok {
				m.Signatures = append(m.Signatures, sig)
			}
		}
	}

	for _, st := range stmts {
		if st.docstring || pyDefRe.MatchString(st.first) || pyClassRe.MatchString(st.first) {
			continue
		}
		scope := innermost(m.Blocks, st.start)

		if pyReturnRe.MatchString(st.first) && scope >= 0 {
			m.Returns = append(m.Returns, domain.ReturnStmt{
				StartLine:   st.start,
				EndLine:     st.end,
				Conditional: pyConditional.MatchString(st.code),
			})
			continue
		}

		code := strings.TrimSpace(st.code)
		if sm := pyTypeStmtRe.FindStringSubmatch(code); sm != nil {
			add(scope, sm[1], domain.RoleTypeAlias, st.start)
			continue
		}
		if sm := pyAssignRe.FindStringSubmatch(code); sm != nil {
			rhs := code[strings.IndexByte(code, '=')+1:]
			for _, name := range strings.Split(sm[1], ",") {
				name = strings.TrimSpace(name)
				add(scope, name, x.bindingRole(m, scope, name, "", rhs), st.start)
			}
			continue
		}
		if sm := pyAnnotatedRe.FindStringSubmatch(code); sm != nil {
			rhs := ""
			if eq := strings.IndexByte(code, '='); eq >= 0 {
				rhs = code[eq+1:]
			}
			add(scope, sm[1], x.bindingRole(m, scope, sm[1], sm[2], rhs), st.start)
		}
	}
	sortIdentifiers(m.Identifiers)
}

func (x indentExtractor) bindingRole(m *domain.StructuralModel, scope int, name, annotation, rhs string) domain.Role {
	if strings.Contains(annotation, "TypeAlias") || pyTypeFactory.MatchString(rhs) {
		return domain.RoleTypeAlias
	}
	moduleOrClass := scope < 0 || m.Blocks[scope].Kind == domain.BlockClass
	if moduleOrClass && naming.Classify(name) == domain.CaseUpperSnake {
		return domain.RoleConstant
	}
	return domain.RoleVariable
}

// signature reads the parameter list and return annotation of a def
// statement.
func (x indentExtractor) signature(src source, scan *indentScan, st pyStatement, name string) (domain.Signature, bool) {
	masked := scan.masked
	loc := pyDefRe.FindStringSubmatchIndex(st.code)
	if loc == nil {
		return domain.Signature{}, false
	}
	i := skipSpace(masked, st.offStart+loc[3])
	if i < st.offEnd && masked[i] == '[' {
		close, ok := scan.match[i]
		if !ok {
			return domain.Signature{}, false
		}
		i = skipSpace(masked, close+1)
	}
	if i >= st.offEnd || masked[i] != '(' {
		return domain.Signature{}, false
	}
	close, ok := scan.match[i]
	if !ok {
		return domain.Signature{}, false
	}

	sig := domain.Signature{
		Name:       name,
		Role:       domain.RoleFunction,
		Line:       st.start,
		ReturnLine: src.lineOf(close),
	}
	for idx, seg := range splitTopLevel(masked, i+1, close, false) {
		seg = trimSegment(masked, seg)
		text := string(masked[seg.start:seg.end])
		if text == "" || text == "*" || text == "/" {
			continue
		}
		pname := leadingIdent(strings.TrimLeft(text, "*"))
		if idx == 0 && (pname == "self" || pname == "cls") {
			continue
		}
		colon := indexTopLevel(masked, seg.start, seg.end, ':', false)
		eq := indexTopLevel(masked, seg.start, seg.end, '=', false)
		sig.Params = append(sig.Params, domain.Param{
			Name:  pname,
			Line:  src.lineOf(seg.start),
			Typed: colon >= 0 && (eq < 0 || colon < eq),
		})
	}

	after := skipSpace(masked, close+1)
	if after+1 < st.offEnd && masked[after] == '-' && masked[after+1] == '>' {
		sig.ReturnTyped = true
		sig.ReturnLine = src.lineOf(after)
		end := indexTopLevel(masked, after+2, st.offEnd, ':', false)
		if end < 0 {
			end = st.offEnd
		}
		sig.ReturnType = strings.TrimSpace(src.text[after+2 : end])
	}
	return sig, true
}

func importEnd(stmts []pyStatement) int {
	end := 0
	for _, st := range stmts {
		if st.docstring && end == 0 {
			continue
		}
		if !pyImportRe.MatchString(st.first) || st.indent > 0 {
			break
		}
		end = st.end
	}
	return end
}
