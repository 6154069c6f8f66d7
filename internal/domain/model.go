package domain

import "sort"

// Severity is the importance of a Violation.
type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// ParseSeverity maps a configuration string onto a Severity.
func ParseSeverity(s string) (Severity, bool) {
	switch Severity(s) {
	case SeverityWarning, SeverityError:
		return Severity(s), true
	default:
		return "", false
	}
}

// RunStatus is the aggregate verdict of a run.
type RunStatus string

const (
	StatusPass      RunStatus = "pass"
	StatusWarn      RunStatus = "warn"
	StatusFail      RunStatus = "fail"
	StatusCancelled RunStatus = "cancelled"
)

// Violation is one reported instance of a rule being broken.
type Violation struct {
	File      string   `json:"file"               msgpack:"file"`
	LineStart int      `json:"line_start"         msgpack:"line_start"`
	LineEnd   int      `json:"line_end"           msgpack:"line_end"`
	RuleID    string   `json:"rule_id"            msgpack:"rule_id"`
	Category  Category `json:"category,omitempty" msgpack:"category"`
	Severity  Severity `json:"severity"           msgpack:"severity"`
	Message   string   `json:"message"            msgpack:"message"`
}

// Less orders violations by file, start line, rule id, then end line and
// message so that equal keys still sort deterministically.
func (v Violation) Less(o Violation) bool {
	if v.File != o.File {
		return v.File < o.File
	}
	if v.LineStart != o.LineStart {
		return v.LineStart < o.LineStart
	}
	if v.RuleID != o.RuleID {
		return v.RuleID < o.RuleID
	}
	if v.LineEnd != o.LineEnd {
		return v.LineEnd < o.LineEnd
	}
	return v.Message < o.Message
}

// Report is the single result of a run.
type Report struct {
	Status     RunStatus   `json:"status"`
	Revision   string      `json:"revision,omitempty"`
	Summary    Summary     `json:"summary"`
	Violations []Violation `json:"violations"`
}

// Summary holds the counts derived from a Report's violations.
type Summary struct {
	FilesChecked int             `json:"files_checked"`
	Total        int             `json:"total"`
	Errors       int             `json:"errors"`
	Warnings     int             `json:"warnings"`
	ByCategory   []CategoryCount `json:"by_category,omitempty"`
}

// CategoryCount is the per-category slice of a Summary.
type CategoryCount struct {
	Category Category `json:"category"`
	Errors   int      `json:"errors"`
	Warnings int      `json:"warnings"`
}

// StatusFor derives the RunStatus from the most severe violation present.
func StatusFor(violations []Violation) RunStatus {
	status := StatusPass
	for _, v := range violations {
		switch v.Severity {
		case SeverityError:
			return StatusFail
		case SeverityWarning:
			status = StatusWarn
		}
	}
	return status
}

// Summarize counts violations per severity and per category.
func Summarize(violations []Violation, filesChecked int) Summary {
	s := Summary{FilesChecked: filesChecked, Total: len(violations)}
	byCat := make(map[Category]*CategoryCount)
	for _, v := range violations {
		cat := v.Category
		if cat == "" {
			cat = CategoryInternal
		}
		cc, ok := byCat[cat]
		if !ok {
			cc = &CategoryCount{Category: cat}
			byCat[cat] = cc
		}
		if v.Severity == SeverityError {
			s.Errors++
			cc.Errors++
		} else {
			s.Warnings++
			cc.Warnings++
		}
	}
	for _, cc := range byCat {
		s.ByCategory = append(s.ByCategory, *cc)
	}
	sort.Slice(s.ByCategory, func(i, j int) bool {
		return s.ByCategory[i].Category < s.ByCategory[j].Category
	})
	return s
}
