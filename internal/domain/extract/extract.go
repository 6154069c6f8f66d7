// Package extract builds a StructuralModel from file content. Each
// LanguageKind has its own self-contained strategy; Extract is the only
// place that chooses between them.
package extract

import (
	"fmt"

	"github.com/openkraft/kraftlint/internal/domain"
)

// Options tunes extraction. A zero TabWidth and negative budgets fall back
// to domain.DefaultEngine.
type Options struct {
	TabWidth         int
	RecoveryBudget   int
	MaxFragmentDepth int

	// depth is the current fragment nesting level.
	depth int
}

// OptionsFrom converts the ruleset engine settings.
func OptionsFrom(e domain.Engine) Options {
	return Options{
		TabWidth:         e.TabWidth,
		RecoveryBudget:   e.RecoveryBudget,
		MaxFragmentDepth: e.MaxFragmentDepth,
	}
}

// DefaultOptions mirrors domain.DefaultEngine.
func DefaultOptions() Options {
	return OptionsFrom(domain.DefaultEngine())
}

func (o Options) normalized() Options {
	def := domain.DefaultEngine()
	if o.TabWidth <= 0 {
		o.TabWidth = def.TabWidth
	}
	if o.RecoveryBudget < 0 {
		o.RecoveryBudget = def.RecoveryBudget
	}
	if o.MaxFragmentDepth < 0 {
		o.MaxFragmentDepth = def.MaxFragmentDepth
	}
	return o
}

type extractor interface {
	extract(content string) (*domain.StructuralModel, error)
}

// Extract builds the structural model of content interpreted as kind. A
// *domain.ParseError is returned when line or block boundaries cannot be
// determined.
func Extract(kind domain.LanguageKind, content string, opts Options) (*domain.StructuralModel, error) {
	opts = opts.normalized()

	var x extractor
	switch kind {
	case domain.KindIndentBlock:
		x = indentExtractor{opts: opts}
	case domain.KindComponentMarkup:
		x = markupExtractor{opts: opts}
	case domain.KindProseMarkup:
		x = proseExtractor{opts: opts}
	case domain.KindUnclassified:
		x = plainExtractor{opts: opts}
	default:
		return nil, fmt.Errorf("extract: unknown language kind %q", kind)
	}

	m, err := x.extract(content)
	if err != nil {
		return nil, err
	}
	m.Kind = kind
	m.Fragment = opts.depth > 0
	return m, nil
}

// plainExtractor produces lines only.
type plainExtractor struct {
	opts Options
}

func (x plainExtractor) extract(content string) (*domain.StructuralModel, error) {
	raw := splitLines(content)
	lines := make([]domain.LogicalLine, len(raw))
	for i, r := range raw {
		lines[i] = newLine(i+1, r.text, x.opts.TabWidth)
		if isBlank(r.text) {
			lines[i].Kind = domain.LineBlank
		}
	}
	return &domain.StructuralModel{Lines: lines}, nil
}
