package domain

// RulesetDocument is the raw, unvalidated configuration document as read
// from .kraftlint.yaml or .kraftlint.toml.
type RulesetDocument struct {
	Extends          string       `yaml:"extends"           toml:"extends"           json:"extends,omitempty"`
	Include          []string     `yaml:"include"           toml:"include"           json:"include,omitempty"`
	Exclude          []string     `yaml:"exclude"           toml:"exclude"           json:"exclude,omitempty"`
	RespectGitignore *bool        `yaml:"respect_gitignore" toml:"respect_gitignore" json:"respect_gitignore,omitempty"`
	Engine           EngineConfig `yaml:"engine"            toml:"engine"            json:"engine,omitempty"`
	Rules            []RuleEntry  `yaml:"rules"             toml:"rules"             json:"rules,omitempty"`
}

// EngineConfig tunes extraction. Pointer fields distinguish "not specified"
// from zero values.
type EngineConfig struct {
	RecoveryBudget   *int `yaml:"recovery_budget"    toml:"recovery_budget"    json:"recovery_budget,omitempty"`
	TabWidth         *int `yaml:"tab_width"          toml:"tab_width"          json:"tab_width,omitempty"`
	MaxFragmentDepth *int `yaml:"max_fragment_depth" toml:"max_fragment_depth" json:"max_fragment_depth,omitempty"`
}

// RuleEntry configures one rule.
type RuleEntry struct {
	ID       string         `yaml:"id"       toml:"id"       json:"id"`
	Category string         `yaml:"category" toml:"category" json:"category,omitempty"`
	Enabled  *bool          `yaml:"enabled"  toml:"enabled"  json:"enabled,omitempty"`
	Severity string         `yaml:"severity" toml:"severity" json:"severity,omitempty"`
	Params   map[string]any `yaml:"params"   toml:"params"   json:"params,omitempty"`
}

const (
	ExtendsDefault = "default"
	ExtendsNone    = "none"
)

// DefaultInclude is the discovery include set used when a document sets none.
var DefaultInclude = []string{
	"**/*.py", "**/*.pyi",
	"**/*.ts", "**/*.tsx", "**/*.js", "**/*.jsx",
	"**/*.md", "**/*.markdown",
}

// DefaultExclude is always part of the discovery exclude set.
var DefaultExclude = []string{
	"**/node_modules/**",
	"**/.git/**",
	"**/vendor/**",
	"**/dist/**",
	"**/build/**",
	"**/.kraftlint/**",
}

// DefaultEngine returns the engine settings used when a document is silent.
func DefaultEngine() Engine {
	return Engine{
		RecoveryBudget:   8,
		TabWidth:         4,
		MaxFragmentDepth: 3,
	}
}
