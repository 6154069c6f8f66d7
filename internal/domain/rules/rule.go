// Package rules holds the rule catalog, ruleset validation and the
// evaluators that turn a StructuralModel into violations.
package rules

import "github.com/openkraft/kraftlint/internal/domain"

// ParamKind is the value type of a rule parameter.
type ParamKind string

const (
	ParamInt     ParamKind = "int"
	ParamBool    ParamKind = "bool"
	ParamString  ParamKind = "string"
	ParamStrings ParamKind = "strings"
)

// ParamSpec declares one configurable parameter and its domain.
type ParamSpec struct {
	Name    string    `json:"name"`
	Kind    ParamKind `json:"kind"`
	Default any       `json:"default"`
	Min     int       `json:"min,omitempty"`
	Max     int       `json:"max,omitempty"` // 0 means unbounded
	Enum    []string  `json:"enum,omitempty"`
}

// Finding is one evaluator result before it is bound to a file. An empty
// Severity means the rule's configured severity.
type Finding struct {
	LineStart int
	LineEnd   int
	Severity  domain.Severity
	Message   string
}

// CheckFunc evaluates a model. It must not mutate the model.
type CheckFunc func(m *domain.StructuralModel, p domain.Params) []Finding

// RuleDef is a data-driven rule definition.
type RuleDef struct {
	ID              string
	Name            string
	Category        domain.Category
	Description     string
	DefaultSeverity domain.Severity
	// Kinds lists the content kinds the rule applies to.
	Kinds []domain.LanguageKind
	// FileLevel rules judge a whole file and never run on fragments.
	FileLevel bool
	Params    []ParamSpec
	Check     CheckFunc
	// Validate checks relations between parameters after each one passed
	// its own domain check.
	Validate func(p domain.Params) error
}

// AppliesTo reports whether the rule runs on the given model.
func (d RuleDef) AppliesTo(m *domain.StructuralModel) bool {
	if d.FileLevel && m.Fragment {
		return false
	}
	for _, k := range d.Kinds {
		if k == m.Kind {
			return true
		}
	}
	return false
}

// Param returns the spec of a named parameter.
func (d RuleDef) Param(name string) (ParamSpec, bool) {
	for _, p := range d.Params {
		if p.Name == name {
			return p, true
		}
	}
	return ParamSpec{}, false
}

// Defaults returns the default parameter set.
func (d RuleDef) Defaults() domain.Params {
	p := make(domain.Params, len(d.Params))
	for _, s := range d.Params {
		p[s.Name] = s.Default
	}
	return p
}

var (
	allKinds  = domain.AllKinds
	codeKinds = []domain.LanguageKind{domain.KindIndentBlock, domain.KindComponentMarkup}
	fileKinds = []domain.LanguageKind{domain.KindIndentBlock, domain.KindComponentMarkup, domain.KindProseMarkup}
	proseOnly = []domain.LanguageKind{domain.KindProseMarkup}
)
