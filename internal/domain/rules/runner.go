package rules

import (
	"errors"
	"fmt"
	"sync"

	"github.com/openkraft/kraftlint/internal/domain"
)

var ordered = sync.OnceValue(All)

// Evaluate runs every enabled rule that applies to m, then recurses into
// fragments. Fragment findings are remapped to file lines. A panicking
// evaluator yields one error violation and does not stop the others.
func Evaluate(file string, m *domain.StructuralModel, rs *domain.Ruleset) []domain.Violation {
	var out []domain.Violation
	evaluate(file, m, rs, 0, &out)
	return out
}

func evaluate(file string, m *domain.StructuralModel, rs *domain.Ruleset, offset int, out *[]domain.Violation) {
	for _, def := range ordered() {
		rule, ok := rs.Rule(def.ID)
		if !ok || !rule.Enabled || !def.AppliesTo(m) {
			continue
		}
		for _, f := range run(def, m, rule.Params) {
			sev := f.Severity
			if sev == "" {
				sev = rule.Severity
			}
			*out = append(*out, domain.Violation{
				File:      file,
				LineStart: f.LineStart + offset,
				LineEnd:   f.LineEnd + offset,
				RuleID:    def.ID,
				Category:  def.Category,
				Severity:  sev,
				Message:   f.Message,
			})
		}
	}

	for _, frag := range m.Fragments {
		if frag.Err != nil {
			*out = append(*out, domain.Violation{
				File:      file,
				LineStart: frag.Span.StartLine + offset,
				LineEnd:   frag.Span.EndLine + offset,
				RuleID:    domain.RuleParseError,
				Category:  domain.CategoryInternal,
				Severity:  domain.SeverityError,
				Message:   fmt.Sprintf("cannot model %s fence: %v", fragmentLabel(frag), frag.Err),
			})
		}
		if frag.Model != nil {
			evaluate(file, frag.Model, rs, offset+frag.Offset, out)
		}
	}
}

func fragmentLabel(frag domain.Fragment) string {
	if frag.Tag == "" {
		return "untagged"
	}
	return frag.Tag
}

func run(def RuleDef, m *domain.StructuralModel, p domain.Params) (findings []Finding) {
	defer func() {
		if r := recover(); r != nil {
			// 0..0 on an empty model; fragment offsets map it onto the fence.
			n := m.LineCount()
			findings = []Finding{{
				LineStart: min(1, n),
				LineEnd:   n,
				Severity:  domain.SeverityError,
				Message:   fmt.Sprintf("evaluator failed: %v", r),
			}}
		}
	}()
	return def.Check(m, p)
}

// ParseViolation turns an extraction failure into the file's single
// parse violation.
func ParseViolation(file string, err error) domain.Violation {
	line := 1
	var pe *domain.ParseError
	if errors.As(err, &pe) && pe.Line > 0 {
		line = pe.Line
	}
	return domain.Violation{
		File:      file,
		LineStart: line,
		LineEnd:   line,
		RuleID:    domain.RuleParseError,
		Category:  domain.CategoryInternal,
		Severity:  domain.SeverityError,
		Message:   fmt.Sprintf("cannot model file: %v", err),
	}
}

// IOViolation reports a file that could not be read.
func IOViolation(file string, err error) domain.Violation {
	return domain.Violation{
		File:      file,
		LineStart: 1,
		LineEnd:   1,
		RuleID:    domain.RuleIOError,
		Category:  domain.CategoryInternal,
		Severity:  domain.SeverityError,
		Message:   fmt.Sprintf("cannot read file: %v", err),
	}
}
