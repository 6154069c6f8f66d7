package rules

import (
	"fmt"

	"github.com/openkraft/kraftlint/internal/domain"
)

func init() {
	register(ParamTypes)
	register(ReturnTypes)
}

// ParamTypes flags every parameter without a type annotation.
var ParamTypes = RuleDef{
	ID:              "TY001",
	Name:            "types.params",
	Category:        domain.CategoryTypes,
	Description:     "Every parameter carries a type annotation.",
	DefaultSeverity: domain.SeverityError,
	Kinds:           codeKinds,
	Check:           checkParamTypes,
}

// ReturnTypes flags every function without a declared return type.
var ReturnTypes = RuleDef{
	ID:              "TY002",
	Name:            "types.return",
	Category:        domain.CategoryTypes,
	Description:     "Every function declares its return type.",
	DefaultSeverity: domain.SeverityError,
	Kinds:           codeKinds,
	Check:           checkReturnTypes,
}

func sigLabel(sig domain.Signature) string {
	if sig.Name == "" {
		return "anonymous function"
	}
	return fmt.Sprintf("%q", sig.Name)
}

func checkParamTypes(m *domain.StructuralModel, _ domain.Params) []Finding {
	var out []Finding
	for _, sig := range m.Signatures {
		for _, param := range sig.Params {
			if param.Typed {
				continue
			}
			out = append(out, Finding{
				LineStart: param.Line,
				LineEnd:   param.Line,
				Message:   fmt.Sprintf("parameter %q of %s has no type annotation", param.Name, sigLabel(sig)),
			})
		}
	}
	return out
}

func checkReturnTypes(m *domain.StructuralModel, _ domain.Params) []Finding {
	var out []Finding
	for _, sig := range m.Signatures {
		// Constructors cannot declare a return type in markup sources.
		if sig.ReturnTyped || (m.Kind == domain.KindComponentMarkup && sig.Name == "constructor") {
			continue
		}
		out = append(out, Finding{
			LineStart: sig.ReturnLine,
			LineEnd:   sig.ReturnLine,
			Message:   fmt.Sprintf("%s has no return type annotation", sigLabel(sig)),
		})
	}
	return out
}
