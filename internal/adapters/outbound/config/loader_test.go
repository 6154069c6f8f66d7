package config_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appconfig "github.com/openkraft/kraftlint/internal/adapters/outbound/config"
	"github.com/openkraft/kraftlint/internal/domain"
	"github.com/openkraft/kraftlint/internal/domain/rules"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestResolve(t *testing.T) {
	p, explicit := appconfig.Resolve("flag.yaml", "env.yaml")
	assert.Equal(t, "flag.yaml", p)
	assert.True(t, explicit)

	p, explicit = appconfig.Resolve("", "env.yaml")
	assert.Equal(t, "env.yaml", p)
	assert.True(t, explicit)

	p, explicit = appconfig.Resolve("", "")
	assert.Equal(t, appconfig.DefaultFileName, p)
	assert.False(t, explicit)
}

func TestLoader_MissingDefaultFileReturnsBuiltins(t *testing.T) {
	rs, err := appconfig.New().Load(filepath.Join(t.TempDir(), appconfig.DefaultFileName), false)
	require.NoError(t, err)
	assert.Equal(t, rules.Default().Fingerprint(), rs.Fingerprint())
}

func TestLoader_MissingExplicitFileIsConfigError(t *testing.T) {
	_, err := appconfig.New().Load(filepath.Join(t.TempDir(), "custom.yaml"), true)

	var cfgErr *domain.ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoader_YAML(t *testing.T) {
	p := writeConfig(t, ".kraftlint.yaml", `
extends: none
exclude: ["legacy/**"]
engine:
  tab_width: 2
rules:
  - id: LN001
    severity: warning
    params:
      target: 150
      hard: 250
  - id: CM001
    params:
      markers: [NOTE]
`)
	rs, err := appconfig.New().Load(p, true)
	require.NoError(t, err)

	ln, ok := rs.Rule("LN001")
	require.True(t, ok)
	assert.True(t, ln.Enabled)
	assert.Equal(t, domain.SeverityWarning, ln.Severity)
	assert.Equal(t, 150, ln.Params.Int("target", 0))

	cm, _ := rs.Rule("CM001")
	assert.Equal(t, []string{"NOTE"}, cm.Params.Strings("markers", nil))

	assert.False(t, rs.Enabled("WS001"))
	assert.Equal(t, 2, rs.Engine().TabWidth)
	assert.Contains(t, rs.Discovery().Exclude, "legacy/**")
}

func TestLoader_TOML(t *testing.T) {
	p := writeConfig(t, "kraftlint.toml", `
extends = "default"

[engine]
recovery_budget = 4

[[rules]]
id = "LN002"
params = { target = 80, hard = 100, width_mode = "cells" }

[[rules]]
id = "TY001"
enabled = false
`)
	rs, err := appconfig.New().Load(p, true)
	require.NoError(t, err)

	ln, _ := rs.Rule("LN002")
	assert.Equal(t, 80, ln.Params.Int("target", 0))
	assert.Equal(t, "cells", ln.Params.String("width_mode", ""))
	assert.False(t, rs.Enabled("TY001"))
	assert.Equal(t, 4, rs.Engine().RecoveryBudget)
}

func TestLoader_Errors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		want    string
	}{
		{"invalid yaml", "a.yaml", "{{{invalid yaml", "parsing yaml"},
		{"unknown yaml key", "a.yaml", "extend: none\n", "parsing yaml"},
		{"invalid toml", "a.toml", "rules = [", "parsing toml"},
		{"unknown toml key", "a.toml", "extend = \"none\"\n", "unknown key"},
		{"validation", "a.yaml", "rules:\n  - id: LN001\n    params: {target: -1}\n", "below the minimum"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := writeConfig(t, tt.file, tt.content)
			_, err := appconfig.New().Load(p, true)

			var cfgErr *domain.ConfigError
			require.True(t, errors.As(err, &cfgErr))
			assert.Equal(t, p, cfgErr.Path)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoader_EmptyFileIsDefault(t *testing.T) {
	p := writeConfig(t, ".kraftlint.yaml", "")
	rs, err := appconfig.New().Load(p, true)
	require.NoError(t, err)
	assert.Equal(t, rules.Default().Fingerprint(), rs.Fingerprint())
}

func TestDefaultDocument_RoundTrips(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, appconfig.WriteYAML(&buf, appconfig.DefaultDocument()))

	doc, err := appconfig.Parse(".kraftlint.yaml", buf.Bytes())
	require.NoError(t, err)
	rs, err := rules.Build(doc, "")
	require.NoError(t, err)

	assert.Equal(t, rules.Default().Fingerprint(), rs.Fingerprint())
}
