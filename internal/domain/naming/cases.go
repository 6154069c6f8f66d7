// Package naming classifies identifier case patterns and splits names into
// words.
package naming

import (
	"strings"
	"unicode"

	"github.com/fatih/camelcase"

	"github.com/openkraft/kraftlint/internal/domain"
)

// Words splits an identifier into its words. Separators ('_', '-') split
// words; within a separator-free part, case transitions split words.
func Words(name string) []string {
	var words []string
	for _, part := range strings.FieldsFunc(name, isSeparator) {
		for _, w := range camelcase.Split(part) {
			if w == "" || strings.IndexFunc(w, isSeparator) >= 0 {
				continue
			}
			words = append(words, w)
		}
	}
	return words
}

// Classify returns the case pattern of name. Leading and trailing
// underscores (private or dunder markers) are ignored.
func Classify(name string) domain.CasePattern {
	core := strings.Trim(name, "_$#")
	if core == "" {
		return domain.CaseMixed
	}

	hasSep := strings.IndexFunc(core, isSeparator) >= 0
	var hasUpper, hasLower bool
	for _, r := range core {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		}
	}
	first := []rune(core)[0]

	switch {
	case hasUpper && !hasLower:
		if strings.Contains(core, "-") {
			return domain.CaseMixed
		}
		if len(core) == 1 {
			return domain.CasePascal
		}
		return domain.CaseUpperSnake
	case hasSep:
		if !hasUpper && !strings.Contains(core, "-") {
			return domain.CaseSnake
		}
		return domain.CaseMixed
	case unicode.IsUpper(first):
		return domain.CasePascal
	case hasUpper:
		return domain.CaseCamel
	default:
		return domain.CaseSnake
	}
}

// Matches reports whether an observed pattern satisfies a mandated one. A
// single lowercase word satisfies both snake and camel mandates.
func Matches(name string, observed, mandated domain.CasePattern) bool {
	if observed == mandated {
		return true
	}
	if observed == domain.CaseSnake && mandated == domain.CaseCamel {
		return !strings.ContainsRune(strings.Trim(name, "_$#"), '_')
	}
	return false
}

// Suggest renders name in the mandated pattern, keeping leading
// underscores.
func Suggest(name string, pattern domain.CasePattern) string {
	prefix := name[:len(name)-len(strings.TrimLeft(name, "_"))]
	words := Words(name)
	if len(words) == 0 {
		return name
	}
	lower := make([]string, len(words))
	for i, w := range words {
		lower[i] = strings.ToLower(w)
	}
	switch pattern {
	case domain.CaseSnake:
		return prefix + strings.Join(lower, "_")
	case domain.CaseUpperSnake:
		return prefix + strings.ToUpper(strings.Join(lower, "_"))
	case domain.CasePascal:
		return prefix + joinTitled(lower, 0)
	case domain.CaseCamel:
		return prefix + lower[0] + joinTitled(lower, 1)
	default:
		return name
	}
}

// ParsePattern maps a configuration string onto a CasePattern.
func ParsePattern(s string) (domain.CasePattern, bool) {
	switch p := domain.CasePattern(s); p {
	case domain.CaseSnake, domain.CasePascal, domain.CaseCamel, domain.CaseUpperSnake:
		return p, true
	default:
		return "", false
	}
}

func joinTitled(words []string, from int) string {
	var b strings.Builder
	for _, w := range words[from:] {
		b.WriteString(strings.ToUpper(w[:1]) + w[1:])
	}
	return b.String()
}

func isSeparator(r rune) bool {
	return r == '_' || r == '-'
}
