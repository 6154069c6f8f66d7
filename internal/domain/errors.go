package domain

import "fmt"

// Reserved rule ids for engine diagnostics.
const (
	RuleParseError = "KL001"
	RuleIOError    = "KL002"
)

// ConfigError reports a malformed or ambiguous ruleset. It is fatal: the
// run aborts before any file is processed.
type ConfigError struct {
	Path string
	Err  error
}

func (e *ConfigError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("invalid configuration: %v", e.Err)
	}
	return fmt.Sprintf("invalid configuration %s: %v", e.Path, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// ParseError reports content whose line or block boundaries cannot be
// determined.
type ParseError struct {
	Line   int
	Reason string
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Reason)
	}
	return e.Reason
}
