package rules

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/openkraft/kraftlint/internal/domain"
	"github.com/openkraft/kraftlint/internal/domain/naming"
)

func init() {
	register(IdentifierCase)
	register(BooleanPrefix)
}

var caseEnum = []string{
	string(domain.CaseSnake), string(domain.CasePascal),
	string(domain.CaseCamel), string(domain.CaseUpperSnake),
}

// IdentifierCase checks declared names against the case mandated for their
// role. Mandates are per content family: indent_<role> and markup_<role>.
var IdentifierCase = RuleDef{
	ID:              "NM001",
	Name:            "naming.case",
	Category:        domain.CategoryNaming,
	Description:     "Identifiers follow the case pattern mandated for their role.",
	DefaultSeverity: domain.SeverityError,
	Kinds:           codeKinds,
	Params: []ParamSpec{
		{Name: "indent_function", Kind: ParamString, Default: "snake", Enum: caseEnum},
		{Name: "indent_variable", Kind: ParamString, Default: "snake", Enum: caseEnum},
		{Name: "indent_constant", Kind: ParamString, Default: "upper_snake", Enum: caseEnum},
		{Name: "indent_type_alias", Kind: ParamString, Default: "pascal", Enum: caseEnum},
		{Name: "markup_function", Kind: ParamString, Default: "camel", Enum: caseEnum},
		{Name: "markup_variable", Kind: ParamString, Default: "camel", Enum: caseEnum},
		{Name: "markup_constant", Kind: ParamString, Default: "upper_snake", Enum: caseEnum},
		{Name: "markup_type_alias", Kind: ParamString, Default: "pascal", Enum: caseEnum},
		{Name: "markup_component", Kind: ParamString, Default: "pascal", Enum: caseEnum},
		{Name: "markup_hook", Kind: ParamString, Default: "camel", Enum: caseEnum},
	},
	Check: checkIdentifierCase,
}

// BooleanPrefix requires predicate-style names for functions declared to
// return a boolean.
var BooleanPrefix = RuleDef{
	ID:              "NM002",
	Name:            "naming.boolean-prefix",
	Category:        domain.CategoryNaming,
	Description:     "Functions returning a boolean start with a predicate prefix.",
	DefaultSeverity: domain.SeverityWarning,
	Kinds:           codeKinds,
	Params: []ParamSpec{
		{Name: "prefixes", Kind: ParamStrings, Default: []string{"is", "has", "can", "should"}},
	},
	Check: checkBooleanPrefix,
}

func familyOf(kind domain.LanguageKind) string {
	if kind == domain.KindIndentBlock {
		return "indent"
	}
	return "markup"
}

func checkIdentifierCase(m *domain.StructuralModel, p domain.Params) []Finding {
	family := familyOf(m.Kind)

	var out []Finding
	for _, id := range m.Identifiers {
		mandate, ok := naming.ParsePattern(p.String(family+"_"+string(id.Role), ""))
		if !ok {
			continue
		}
		if naming.Matches(id.Name, id.Case, mandate) {
			continue
		}
		out = append(out, Finding{
			LineStart: id.DeclaredAtLine,
			LineEnd:   id.DeclaredAtLine,
			Message: fmt.Sprintf("%s %q should be %s case (%s)",
				strings.ReplaceAll(string(id.Role), "_", " "), id.Name, mandate, naming.Suggest(id.Name, mandate)),
		})
	}
	return out
}

var predicateRe = regexp.MustCompile(`^[A-Za-z_$][\w$]*\s+is\s+\S`)

// returnsBoolean reports whether a declared return type is boolean, counting
// type predicates, type guards and quoted forward references.
func returnsBoolean(t string) bool {
	t = unquote(strings.TrimSpace(t))
	switch t {
	case "bool", "boolean":
		return true
	}
	if strings.HasPrefix(t, "TypeGuard[") || strings.HasPrefix(t, "TypeIs[") {
		return true
	}
	return predicateRe.MatchString(t)
}

// unquote strips one layer of matching quotes.
func unquote(t string) string {
	if len(t) >= 2 && (t[0] == '\'' || t[0] == '"') && t[len(t)-1] == t[0] {
		return strings.TrimSpace(t[1 : len(t)-1])
	}
	return t
}

func checkBooleanPrefix(m *domain.StructuralModel, p domain.Params) []Finding {
	prefixes := p.Strings("prefixes", []string{"is", "has", "can", "should"})

	var out []Finding
	for _, sig := range m.Signatures {
		if sig.Name == "" || !sig.ReturnTyped || !returnsBoolean(sig.ReturnType) {
			continue
		}
		if hasPrefixWord(sig.Name, prefixes) {
			continue
		}
		out = append(out, Finding{
			LineStart: sig.Line,
			LineEnd:   sig.Line,
			Message: fmt.Sprintf("boolean function %q should start with one of: %s",
				sig.Name, strings.Join(prefixes, ", ")),
		})
	}
	return out
}

func hasPrefixWord(name string, prefixes []string) bool {
	words := naming.Words(name)
	if len(words) == 0 {
		return false
	}
	first := strings.ToLower(words[0])
	for _, prefix := range prefixes {
		if first == strings.ToLower(prefix) {
			return true
		}
	}
	return false
}
