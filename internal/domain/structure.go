package domain

// LanguageKind is the closed set of content kinds the engine understands.
type LanguageKind string

const (
	KindIndentBlock     LanguageKind = "indent"
	KindComponentMarkup LanguageKind = "markup"
	KindProseMarkup     LanguageKind = "prose"
	KindUnclassified    LanguageKind = "unclassified"
)

// AllKinds lists every LanguageKind in a stable order.
var AllKinds = []LanguageKind{
	KindIndentBlock, KindComponentMarkup, KindProseMarkup, KindUnclassified,
}

// IsCode reports whether the kind carries declarations (functions, bindings).
func (k LanguageKind) IsCode() bool {
	return k == KindIndentBlock || k == KindComponentMarkup
}

// LineKind classifies a LogicalLine.
type LineKind string

const (
	LineCode           LineKind = "code"
	LineBlank          LineKind = "blank"
	LineComment        LineKind = "comment"
	LineDocstring      LineKind = "docstring"
	LineHeading        LineKind = "heading"
	LineFenceBoundary  LineKind = "fence_boundary"
	LineHorizontalRule LineKind = "horizontal_rule"
	LineListItem       LineKind = "list_item"
)

// LogicalLine is one line of a file or fragment.
type LogicalLine struct {
	Index       int      `json:"index"`
	Text        string   `json:"text"`
	RawLength   int      `json:"raw_length"`
	Width       int      `json:"width"`
	IndentDepth int      `json:"indent_depth"`
	Kind        LineKind `json:"kind"`
	// Continuation marks lines that sit inside an open bracket, string or
	// comment started on an earlier line.
	Continuation bool `json:"continuation,omitempty"`
}

// BlockKind classifies a BlockSpan.
type BlockKind string

const (
	BlockFunction       BlockKind = "function"
	BlockClass          BlockKind = "class"
	BlockComponent      BlockKind = "component"
	BlockHeadingSection BlockKind = "heading_section"
	BlockFence          BlockKind = "fence"
)

// BlockSpan is a contiguous range of lines forming one structural unit.
type BlockSpan struct {
	StartLine  int       `json:"start_line"`
	EndLine    int       `json:"end_line"`
	HeaderLine int       `json:"header_line"`
	Kind       BlockKind `json:"kind"`
	Name       string    `json:"name,omitempty"`
	Depth      int       `json:"depth"`
}

// Contains reports whether line lies within the span.
func (b BlockSpan) Contains(line int) bool {
	return line >= b.StartLine && line <= b.EndLine
}

// Role is the declaration context of an identifier.
type Role string

const (
	RoleFunction  Role = "function"
	RoleVariable  Role = "variable"
	RoleConstant  Role = "constant"
	RoleTypeAlias Role = "type_alias"
	RoleComponent Role = "component"
	RoleHook      Role = "hook"
)

// CasePattern is the observed letter-case shape of an identifier.
type CasePattern string

const (
	CaseSnake      CasePattern = "snake"
	CasePascal     CasePattern = "pascal"
	CaseCamel      CasePattern = "camel"
	CaseUpperSnake CasePattern = "upper_snake"
	CaseMixed      CasePattern = "mixed"
)

// IdentifierDecl is a declared name with its role and observed case.
type IdentifierDecl struct {
	Name           string      `json:"name"`
	Role           Role        `json:"role"`
	Case           CasePattern `json:"case"`
	DeclaredAtLine int         `json:"declared_at_line"`
}

// Param is one parameter position of a Signature.
type Param struct {
	Name  string `json:"name"`
	Line  int    `json:"line"`
	Typed bool   `json:"typed"`
}

// Signature is the typed shape of a function-like declaration.
type Signature struct {
	Name        string  `json:"name"`
	Role        Role    `json:"role"`
	Line        int     `json:"line"`
	Params      []Param `json:"params,omitempty"`
	ReturnLine  int     `json:"return_line"`
	ReturnTyped bool    `json:"return_typed"`
	ReturnType  string  `json:"return_type,omitempty"`
}

// Heading is an ATX heading of a prose document.
type Heading struct {
	Line  int    `json:"line"`
	Depth int    `json:"depth"`
	Text  string `json:"text"`
}

// ListItem is one list marker line of a prose document.
type ListItem struct {
	Line   int `json:"line"`
	Indent int `json:"indent"`
}

// ReturnStmt is a return statement found inside a function body.
type ReturnStmt struct {
	StartLine   int  `json:"start_line"`
	EndLine     int  `json:"end_line"`
	Conditional bool `json:"conditional"`
}

// Fragment is an embedded, separately modelled piece of a prose document.
// When Err is set, Model holds the body as unclassified lines.
type Fragment struct {
	Tag    string           `json:"tag"`
	Kind   LanguageKind     `json:"kind"`
	Offset int              `json:"offset"`
	Span   BlockSpan        `json:"span"`
	Model  *StructuralModel `json:"model,omitempty"`
	Err    error            `json:"-"`
}

// StructuralModel is the immutable representation of one file or fragment
// used by every rule evaluator.
type StructuralModel struct {
	Kind        LanguageKind     `json:"kind"`
	Lines       []LogicalLine    `json:"lines"`
	Blocks      []BlockSpan      `json:"blocks,omitempty"`
	Identifiers []IdentifierDecl `json:"identifiers,omitempty"`
	Signatures  []Signature      `json:"signatures,omitempty"`
	Returns     []ReturnStmt     `json:"returns,omitempty"`
	Headings    []Heading        `json:"headings,omitempty"`
	ListItems   []ListItem       `json:"list_items,omitempty"`
	Fragments   []Fragment       `json:"fragments,omitempty"`
	// ImportEnd is the last line of the leading import region, 0 when absent.
	ImportEnd int `json:"import_end"`
	// DocAdjacent marks comment lines that directly precede a block header.
	DocAdjacent map[int]bool `json:"-"`
	// Fragment is true when the model describes embedded content.
	Fragment bool `json:"fragment"`
}

// LineCount returns the number of logical lines.
func (m *StructuralModel) LineCount() int {
	return len(m.Lines)
}

// Line returns the 1-based line, or false when out of range.
func (m *StructuralModel) Line(index int) (LogicalLine, bool) {
	if index < 1 || index > len(m.Lines) {
		return LogicalLine{}, false
	}
	return m.Lines[index-1], true
}

// InFenceBody reports whether line lies strictly inside a fence span.
func (m *StructuralModel) InFenceBody(line int) bool {
	for _, f := range m.Fragments {
		if line > f.Span.StartLine && line < f.Span.EndLine {
			return true
		}
	}
	return false
}
