package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
)

// Category groups rules by concern.
type Category string

const (
	CategoryLength     Category = "length"
	CategorySpacing    Category = "spacing"
	CategoryWhitespace Category = "whitespace"
	CategoryComments   Category = "comments"
	CategoryNaming     Category = "naming"
	CategoryTypes      Category = "types"
	CategoryStructure  Category = "structure"

	// CategoryInternal tags engine diagnostics (parse and IO failures).
	CategoryInternal Category = "internal"
)

// ValidCategories enumerates every configurable category.
var ValidCategories = []Category{
	CategoryLength, CategorySpacing, CategoryWhitespace, CategoryComments,
	CategoryNaming, CategoryTypes, CategoryStructure,
}

// IsValidCategory reports whether name is a configurable category.
func IsValidCategory(name string) bool {
	for _, c := range ValidCategories {
		if string(c) == name {
			return true
		}
	}
	return false
}

// Params holds validated, typed rule parameters: int, bool, string or
// []string values only.
type Params map[string]any

// Int returns an int parameter or def when absent.
func (p Params) Int(key string, def int) int {
	if v, ok := p[key].(int); ok {
		return v
	}
	return def
}

// Bool returns a bool parameter or def when absent.
func (p Params) Bool(key string, def bool) bool {
	if v, ok := p[key].(bool); ok {
		return v
	}
	return def
}

// String returns a string parameter or def when absent.
func (p Params) String(key string, def string) string {
	if v, ok := p[key].(string); ok {
		return v
	}
	return def
}

// Strings returns a string list parameter or def when absent.
func (p Params) Strings(key string, def []string) []string {
	if v, ok := p[key].([]string); ok {
		return v
	}
	return def
}

// Rule is one configured rule.
type Rule struct {
	ID       string   `json:"id"`
	Category Category `json:"category"`
	Severity Severity `json:"severity"`
	Enabled  bool     `json:"enabled"`
	Params   Params   `json:"params,omitempty"`
}

// Discovery controls which files a run looks at.
type Discovery struct {
	Include          []string `json:"include"`
	Exclude          []string `json:"exclude"`
	RespectGitignore bool     `json:"respect_gitignore"`
}

// Engine tunes extraction.
type Engine struct {
	RecoveryBudget   int `json:"recovery_budget"`
	TabWidth         int `json:"tab_width"`
	MaxFragmentDepth int `json:"max_fragment_depth"`
}

// Ruleset is the frozen, validated configuration of a run. It is built once
// and only read afterwards, so it is safe for concurrent use.
type Ruleset struct {
	rules       map[string]Rule
	ids         []string
	discovery   Discovery
	engine      Engine
	fingerprint string
}

// NewRuleset freezes rules, discovery and engine settings.
func NewRuleset(rules []Rule, discovery Discovery, engine Engine) *Ruleset {
	rs := &Ruleset{
		rules:     make(map[string]Rule, len(rules)),
		discovery: discovery,
		engine:    engine,
	}
	for _, r := range rules {
		rs.rules[r.ID] = r
		rs.ids = append(rs.ids, r.ID)
	}
	sort.Strings(rs.ids)
	rs.fingerprint = rs.computeFingerprint()
	return rs
}

// Rule returns the rule with the given id.
func (rs *Ruleset) Rule(id string) (Rule, bool) {
	r, ok := rs.rules[id]
	return r, ok
}

// Enabled reports whether the rule exists and is enabled.
func (rs *Ruleset) Enabled(id string) bool {
	r, ok := rs.rules[id]
	return ok && r.Enabled
}

// Rules returns every rule ordered by id.
func (rs *Ruleset) Rules() []Rule {
	out := make([]Rule, 0, len(rs.ids))
	for _, id := range rs.ids {
		out = append(out, rs.rules[id])
	}
	return out
}

// Discovery returns the discovery settings.
func (rs *Ruleset) Discovery() Discovery { return rs.discovery }

// Engine returns the extraction settings.
func (rs *Ruleset) Engine() Engine { return rs.engine }

// Fingerprint is a stable digest of the ruleset content.
func (rs *Ruleset) Fingerprint() string { return rs.fingerprint }

func (rs *Ruleset) computeFingerprint() string {
	// encoding/json sorts map keys, so equal rulesets hash equally.
	data, err := json.Marshal(struct {
		Rules     []Rule    `json:"rules"`
		Discovery Discovery `json:"discovery"`
		Engine    Engine    `json:"engine"`
	}{rs.Rules(), rs.discovery, rs.engine})
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:8])
}
