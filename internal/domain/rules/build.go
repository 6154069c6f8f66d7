package rules

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"

	"fortio.org/safecast"
	"github.com/bmatcuk/doublestar/v4"

	"github.com/openkraft/kraftlint/internal/domain"
)

// Default returns the built-in ruleset: every rule enabled with its default
// severity and parameters.
func Default() *domain.Ruleset {
	rs, err := Build(domain.RulesetDocument{}, "")
	if err != nil {
		panic(fmt.Sprintf("rules: built-in ruleset is invalid: %v", err))
	}
	return rs
}

// Build validates a raw document into a frozen Ruleset. Every problem is a
// *domain.ConfigError carrying path; no partial ruleset is returned.
func Build(doc domain.RulesetDocument, path string) (*domain.Ruleset, error) {
	fail := func(format string, args ...any) (*domain.Ruleset, error) {
		return nil, &domain.ConfigError{Path: path, Err: fmt.Errorf(format, args...)}
	}

	enabledByDefault := true
	switch doc.Extends {
	case "", domain.ExtendsDefault:
	case domain.ExtendsNone:
		enabledByDefault = false
	default:
		return fail("unknown extends %q (want %q or %q)", doc.Extends, domain.ExtendsDefault, domain.ExtendsNone)
	}

	rules := make(map[string]domain.Rule, len(catalog))
	for _, def := range All() {
		rules[def.ID] = domain.Rule{
			ID:       def.ID,
			Category: def.Category,
			Severity: def.DefaultSeverity,
			Enabled:  enabledByDefault,
			Params:   def.Defaults(),
		}
	}

	seen := make(map[string]bool, len(doc.Rules))
	for i, entry := range doc.Rules {
		if entry.ID == "" {
			return fail("rules[%d]: missing id", i)
		}
		if seen[entry.ID] {
			return fail("rule %s is configured more than once", entry.ID)
		}
		seen[entry.ID] = true

		def, ok := ByID(entry.ID)
		if !ok {
			return fail("unknown rule %s", entry.ID)
		}
		rule, err := applyEntry(def, rules[def.ID], entry)
		if err != nil {
			return fail("rule %s: %w", entry.ID, err)
		}
		rules[def.ID] = rule
	}

	discovery, err := buildDiscovery(doc)
	if err != nil {
		return nil, &domain.ConfigError{Path: path, Err: err}
	}
	engine, err := buildEngine(doc.Engine)
	if err != nil {
		return nil, &domain.ConfigError{Path: path, Err: err}
	}

	out := make([]domain.Rule, 0, len(rules))
	for _, r := range rules {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return domain.NewRuleset(out, discovery, engine), nil
}

// applyEntry overrides a base rule field by field. A listed rule without an
// explicit enabled flag is enabled.
func applyEntry(def RuleDef, base domain.Rule, entry domain.RuleEntry) (domain.Rule, error) {
	if entry.Category != "" {
		if !domain.IsValidCategory(entry.Category) {
			return base, fmt.Errorf("unknown category %q", entry.Category)
		}
		if domain.Category(entry.Category) != def.Category {
			return base, fmt.Errorf("category %q contradicts the rule's category %q", entry.Category, def.Category)
		}
	}

	base.Enabled = true
	if entry.Enabled != nil {
		base.Enabled = *entry.Enabled
	}
	if entry.Severity != "" {
		sev, ok := domain.ParseSeverity(entry.Severity)
		if !ok {
			return base, fmt.Errorf("invalid severity %q (want warning or error)", entry.Severity)
		}
		base.Severity = sev
	}

	params := make(domain.Params, len(base.Params))
	for k, v := range base.Params {
		params[k] = v
	}
	keys := make([]string, 0, len(entry.Params))
	for k := range entry.Params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		spec, ok := def.Param(k)
		if !ok {
			return base, fmt.Errorf("unknown param %q", k)
		}
		v, err := coerce(spec, entry.Params[k])
		if err != nil {
			return base, fmt.Errorf("param %q: %w", k, err)
		}
		params[k] = v
	}
	if def.Validate != nil {
		if err := def.Validate(params); err != nil {
			return base, err
		}
	}
	base.Params = params
	return base, nil
}

var errNotInteger = errors.New("not an integer")

// coerce converts a decoded configuration value into the parameter's type
// and checks its domain.
func coerce(spec ParamSpec, raw any) (any, error) {
	switch spec.Kind {
	case ParamInt:
		n, err := toInt(raw)
		if err != nil {
			return nil, fmt.Errorf("want integer, got %v: %w", raw, err)
		}
		if n < spec.Min {
			return nil, fmt.Errorf("%d is below the minimum %d", n, spec.Min)
		}
		if spec.Max > 0 && n > spec.Max {
			return nil, fmt.Errorf("%d is above the maximum %d", n, spec.Max)
		}
		return n, nil
	case ParamBool:
		b, ok := raw.(bool)
		if !ok {
			return nil, fmt.Errorf("want boolean, got %T", raw)
		}
		return b, nil
	case ParamString:
		s, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("want string, got %T", raw)
		}
		if len(spec.Enum) > 0 && !slices.Contains(spec.Enum, s) {
			return nil, fmt.Errorf("%q is not one of %s", s, strings.Join(spec.Enum, ", "))
		}
		return s, nil
	case ParamStrings:
		return toStrings(raw)
	default:
		return nil, fmt.Errorf("unsupported param kind %q", spec.Kind)
	}
}

func toInt(raw any) (int, error) {
	switch v := raw.(type) {
	case int:
		return v, nil
	case int64:
		return safecast.Conv[int](v)
	case uint64:
		return safecast.Conv[int](v)
	case float64:
		return safecast.Convert[int](v)
	default:
		return 0, errNotInteger
	}
}

func toStrings(raw any) ([]string, error) {
	switch v := raw.(type) {
	case []string:
		return slices.Clone(v), nil
	case []any:
		out := make([]string, 0, len(v))
		for i, item := range v {
			s, ok := item.(string)
			if !ok || s == "" {
				return nil, fmt.Errorf("item %d: want non-empty string, got %v", i, item)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("want list of strings, got %T", raw)
	}
}

func buildDiscovery(doc domain.RulesetDocument) (domain.Discovery, error) {
	d := domain.Discovery{
		Include:          slices.Clone(domain.DefaultInclude),
		Exclude:          slices.Clone(domain.DefaultExclude),
		RespectGitignore: true,
	}
	if len(doc.Include) > 0 {
		d.Include = slices.Clone(doc.Include)
	}
	d.Exclude = append(d.Exclude, doc.Exclude...)
	if doc.RespectGitignore != nil {
		d.RespectGitignore = *doc.RespectGitignore
	}
	for _, pattern := range append(slices.Clone(d.Include), d.Exclude...) {
		if !doublestar.ValidatePattern(pattern) {
			return d, fmt.Errorf("invalid glob pattern %q", pattern)
		}
	}
	return d, nil
}

func buildEngine(cfg domain.EngineConfig) (domain.Engine, error) {
	e := domain.DefaultEngine()
	if cfg.RecoveryBudget != nil {
		if *cfg.RecoveryBudget < 0 {
			return e, fmt.Errorf("engine.recovery_budget must not be negative, got %d", *cfg.RecoveryBudget)
		}
		e.RecoveryBudget = *cfg.RecoveryBudget
	}
	if cfg.TabWidth != nil {
		if *cfg.TabWidth < 1 || *cfg.TabWidth > 16 {
			return e, fmt.Errorf("engine.tab_width must be between 1 and 16, got %d", *cfg.TabWidth)
		}
		e.TabWidth = *cfg.TabWidth
	}
	if cfg.MaxFragmentDepth != nil {
		if *cfg.MaxFragmentDepth < 0 {
			return e, fmt.Errorf("engine.max_fragment_depth must not be negative, got %d", *cfg.MaxFragmentDepth)
		}
		e.MaxFragmentDepth = *cfg.MaxFragmentDepth
	}
	return e, nil
}
