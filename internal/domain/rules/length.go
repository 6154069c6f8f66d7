package rules

import (
	"fmt"

	"github.com/openkraft/kraftlint/internal/domain"
)

func init() {
	register(FileLength)
	register(LineWidth)
}

// FileLength compares the logical line count of a file against a target
// and a hard threshold.
var FileLength = RuleDef{
	ID:              "LN001",
	Name:            "length.file",
	Category:        domain.CategoryLength,
	Description:     "File line count should stay within the target and must stay within the hard limit.",
	DefaultSeverity: domain.SeverityError,
	Kinds:           fileKinds,
	FileLevel:       true,
	Params: []ParamSpec{
		{Name: "target", Kind: ParamInt, Default: 200, Min: 1},
		{Name: "hard", Kind: ParamInt, Default: 300, Min: 1},
	},
	Check:    checkFileLength,
	Validate: targetWithinHard,
}

// LineWidth compares every line's width against a target and a hard width.
var LineWidth = RuleDef{
	ID:              "LN002",
	Name:            "length.line",
	Category:        domain.CategoryLength,
	Description:     "Line width should stay within the target and must stay within the hard limit.",
	DefaultSeverity: domain.SeverityError,
	Kinds:           allKinds,
	Params: []ParamSpec{
		{Name: "target", Kind: ParamInt, Default: 100, Min: 1},
		{Name: "hard", Kind: ParamInt, Default: 120, Min: 1},
		{Name: "width_mode", Kind: ParamString, Default: "runes", Enum: []string{"runes", "cells"}},
	},
	Check:    checkLineWidth,
	Validate: targetWithinHard,
}

func targetWithinHard(p domain.Params) error {
	target, hard := p.Int("target", 0), p.Int("hard", 0)
	if target > hard {
		return fmt.Errorf("target %d exceeds hard %d", target, hard)
	}
	return nil
}

func checkFileLength(m *domain.StructuralModel, p domain.Params) []Finding {
	n := m.LineCount()
	target := p.Int("target", 200)
	hard := p.Int("hard", 300)

	var out []Finding
	if n > target {
		out = append(out, Finding{
			LineStart: target + 1,
			LineEnd:   n,
			Severity:  domain.SeverityWarning,
			Message:   fmt.Sprintf("file has %d lines, over the target of %d", n, target),
		})
	}
	if n > hard {
		out = append(out, Finding{
			LineStart: hard + 1,
			LineEnd:   n,
			Message:   fmt.Sprintf("file has %d lines, over the hard limit of %d", n, hard),
		})
	}
	return out
}

func checkLineWidth(m *domain.StructuralModel, p domain.Params) []Finding {
	target := p.Int("target", 100)
	hard := p.Int("hard", 120)
	cells := p.String("width_mode", "runes") == "cells"

	var out []Finding
	for _, l := range m.Lines {
		if m.Kind == domain.KindProseMarkup && m.InFenceBody(l.Index) {
			continue
		}
		width := l.RawLength
		if cells {
			width = l.Width
		}
		switch {
		case width > hard:
			out = append(out, Finding{
				LineStart: l.Index,
				LineEnd:   l.Index,
				Message:   fmt.Sprintf("line is %d wide, over the hard limit of %d", width, hard),
			})
		case width > target:
			out = append(out, Finding{
				LineStart: l.Index,
				LineEnd:   l.Index,
				Severity:  domain.SeverityWarning,
				Message:   fmt.Sprintf("line is %d wide, over the target of %d", width, target),
			})
		}
	}
	return out
}
