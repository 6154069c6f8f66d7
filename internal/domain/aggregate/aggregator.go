// Package aggregate merges per-file violations into the run report.
package aggregate

import (
	"sort"

	"github.com/openkraft/kraftlint/internal/domain"
)

// Aggregate merges per-file results, sorts them, coalesces exact duplicates
// and derives the run status. A cancelled run keeps what completed.
func Aggregate(perFile [][]domain.Violation, filesChecked int, cancelled bool) domain.Report {
	var n int
	for _, vs := range perFile {
		n += len(vs)
	}
	all := make([]domain.Violation, 0, n)
	for _, vs := range perFile {
		all = append(all, vs...)
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].Less(all[j]) })
	all = dedupe(all)

	status := domain.StatusFor(all)
	if cancelled {
		status = domain.StatusCancelled
	}
	return domain.Report{
		Status:     status,
		Summary:    domain.Summarize(all, filesChecked),
		Violations: all,
	}
}

// dedupe drops neighbours that repeat file, range, rule and message. The
// input must be sorted.
func dedupe(sorted []domain.Violation) []domain.Violation {
	out := sorted[:0]
	for i, v := range sorted {
		if i > 0 && sameKey(out[len(out)-1], v) {
			if v.Severity == domain.SeverityError {
				out[len(out)-1].Severity = domain.SeverityError
			}
			continue
		}
		out = append(out, v)
	}
	return out
}

func sameKey(a, b domain.Violation) bool {
	return a.File == b.File &&
		a.LineStart == b.LineStart &&
		a.LineEnd == b.LineEnd &&
		a.RuleID == b.RuleID &&
		a.Message == b.Message
}
