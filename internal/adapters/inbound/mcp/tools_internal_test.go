package mcp

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openkraft/kraftlint/internal/adapters/outbound/config"
	"github.com/openkraft/kraftlint/internal/domain"
	"github.com/openkraft/kraftlint/internal/domain/rules"
	"github.com/openkraft/kraftlint/internal/testutil"
)

func newHandlers(t *testing.T, files map[string]string) *handlers {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
	return &handlers{projectPath: root, loader: config.New(), logger: testutil.NewTestLogger(t)}
}

func callTool(args map[string]any) mcplib.CallToolRequest {
	var req mcplib.CallToolRequest
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcplib.CallToolResult) string {
	t.Helper()
	require.NotNil(t, res)
	require.Len(t, res.Content, 1)
	text, ok := res.Content[0].(mcplib.TextContent)
	require.True(t, ok, "expected text content")
	return text.Text
}

func TestHandleCheck_ReturnsReport(t *testing.T) {
	h := newHandlers(t, map[string]string{
		"src/a.py":  "x = 1  \n",
		"src/b.py":  "y = 2\n",
		"README.md": "# Readme\n",
	})

	res, err := h.handleCheck(context.Background(), callTool(map[string]any{"paths": "src/a.py, src/b.py"}))
	require.NoError(t, err)
	assert.False(t, res.IsError)

	var report domain.Report
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &report))
	assert.Equal(t, 2, report.Summary.FilesChecked)
	require.NotEmpty(t, report.Violations)
	assert.Equal(t, "WS001", report.Violations[0].RuleID)
}

func TestHandleCheck_DefaultsToProject(t *testing.T) {
	h := newHandlers(t, map[string]string{"a.py": "x = 1\n", "docs/b.md": "# B\n"})

	res, err := h.handleCheck(context.Background(), callTool(nil))
	require.NoError(t, err)

	var report domain.Report
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &report))
	assert.Equal(t, 2, report.Summary.FilesChecked)
}

func TestHandleCheck_BadConfig(t *testing.T) {
	h := newHandlers(t, map[string]string{
		"a.py":        "x = 1\n",
		"strict.yaml": "rules:\n  - id: ZZ999\n",
	})

	res, err := h.handleCheck(context.Background(), callTool(map[string]any{"config": "strict.yaml"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(t, res), "invalid configuration")
}

func TestHandleCheck_MissingExplicitConfig(t *testing.T) {
	h := newHandlers(t, map[string]string{"a.py": "x = 1\n"})

	res, err := h.handleCheck(context.Background(), callTool(map[string]any{"config": "nope.yaml"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

// recordingLoader serves the default ruleset and remembers what it was asked.
type recordingLoader struct {
	path     string
	explicit bool
}

func (l *recordingLoader) Load(path string, explicit bool) (*domain.Ruleset, error) {
	l.path, l.explicit = path, explicit
	return rules.Default(), nil
}

func TestLoadRuleset_AnchorsAtProject(t *testing.T) {
	t.Setenv(config.EnvVar, "")
	loader := &recordingLoader{}
	h := &handlers{projectPath: "/proj", loader: loader, logger: testutil.NewTestLogger(t)}

	_, err := h.loadRuleset("conf/lint.toml")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/proj", "conf", "lint.toml"), loader.path)
	assert.True(t, loader.explicit)

	_, err = h.loadRuleset("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/proj", config.DefaultFileName), loader.path)
	assert.False(t, loader.explicit)
}

func TestHandleRules_ListsCatalog(t *testing.T) {
	h := newHandlers(t, nil)

	res, err := h.handleRules(context.Background(), callTool(nil))
	require.NoError(t, err)

	var got []ruleInfo
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &got))
	assert.Len(t, got, len(rules.All()))
	for _, r := range got {
		assert.True(t, r.Enabled, "rule %s should be enabled by default", r.ID)
	}
}

func TestHandleRulesResource(t *testing.T) {
	h := newHandlers(t, nil)

	contents, err := h.handleRulesResource(context.Background(), mcplib.ReadResourceRequest{})
	require.NoError(t, err)
	require.Len(t, contents, 1)

	text, ok := contents[0].(mcplib.TextResourceContents)
	require.True(t, ok)
	assert.Equal(t, rulesURI, text.URI)
	assert.Contains(t, text.Text, `"id": "LN001"`)
}

func TestSplitAndTrim(t *testing.T) {
	assert.Nil(t, splitAndTrim(""))
	assert.Equal(t, []string{"a", "b"}, splitAndTrim(" a , ,b "))
}
