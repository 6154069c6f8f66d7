package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/openkraft/kraftlint/internal/domain"
	"github.com/openkraft/kraftlint/internal/domain/rules"
)

// DefaultFileName is looked up in the working directory when no path is
// given.
const DefaultFileName = ".kraftlint.yaml"

// EnvVar names the environment variable that selects a config file.
const EnvVar = "KRAFTLINT_CONFIG"

// Resolve picks the config path: flag, then environment, then the default
// file. explicit reports whether the path was requested by the user.
func Resolve(flagPath, envPath string) (path string, explicit bool) {
	switch {
	case flagPath != "":
		return flagPath, true
	case envPath != "":
		return envPath, true
	default:
		return DefaultFileName, false
	}
}

// Loader implements domain.RulesetLoader for YAML and TOML documents.
type Loader struct{}

// New creates a Loader.
func New() *Loader { return &Loader{} }

// Load reads and validates the ruleset at path. A missing default file
// yields the built-in ruleset; a missing explicit file is a ConfigError.
func (l *Loader) Load(path string, explicit bool) (*domain.Ruleset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			return rules.Default(), nil
		}
		return nil, &domain.ConfigError{Path: path, Err: err}
	}

	doc, err := Parse(path, data)
	if err != nil {
		return nil, &domain.ConfigError{Path: path, Err: err}
	}
	return rules.Build(doc, path)
}

// Parse decodes a document, choosing the format from the file extension.
// Unknown keys are rejected so typos do not pass silently.
func Parse(path string, data []byte) (domain.RulesetDocument, error) {
	var doc domain.RulesetDocument

	if strings.EqualFold(filepath.Ext(path), ".toml") {
		md, err := toml.Decode(string(data), &doc)
		if err != nil {
			return doc, fmt.Errorf("parsing toml: %w", err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return doc, fmt.Errorf("unknown key %q", undecoded[0].String())
		}
		return doc, nil
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return doc, fmt.Errorf("parsing yaml: %w", err)
	}
	return doc, nil
}

// DefaultDocument renders the built-in ruleset as an explicit document, the
// starting point written by `kraftlint init`.
func DefaultDocument() domain.RulesetDocument {
	engine := domain.DefaultEngine()
	respect := true
	doc := domain.RulesetDocument{
		Extends:          domain.ExtendsDefault,
		Include:          domain.DefaultInclude,
		Exclude:          []string{},
		RespectGitignore: &respect,
		Engine: domain.EngineConfig{
			RecoveryBudget:   &engine.RecoveryBudget,
			TabWidth:         &engine.TabWidth,
			MaxFragmentDepth: &engine.MaxFragmentDepth,
		},
	}
	for _, def := range rules.All() {
		enabled := true
		entry := domain.RuleEntry{
			ID:       def.ID,
			Category: string(def.Category),
			Enabled:  &enabled,
			Severity: string(def.DefaultSeverity),
		}
		if len(def.Params) > 0 {
			entry.Params = def.Defaults()
		}
		doc.Rules = append(doc.Rules, entry)
	}
	return doc
}

// WriteYAML encodes doc as YAML.
func WriteYAML(w io.Writer, doc domain.RulesetDocument) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return err
	}
	return enc.Close()
}
