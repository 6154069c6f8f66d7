package cli_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/openkraft/kraftlint/internal/adapters/inbound/cli"
	"github.com/openkraft/kraftlint/internal/adapters/outbound/config"
	"github.com/openkraft/kraftlint/internal/domain/rules"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitCmd_CreatesConfigFile(t *testing.T) {
	tmpDir := t.TempDir()

	root := cli.NewRootCmdForTest()
	root.SetArgs([]string{"init", tmpDir})
	require.NoError(t, root.Execute())

	data, err := os.ReadFile(filepath.Join(tmpDir, ".kraftlint.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "extends: default")
	assert.Contains(t, string(data), "id: LN001")
}

func TestInitCmd_OutputLoadsAsDefaultRuleset(t *testing.T) {
	tmpDir := t.TempDir()

	root := cli.NewRootCmdForTest()
	root.SetArgs([]string{"init", tmpDir})
	require.NoError(t, root.Execute())

	rs, err := config.New().Load(filepath.Join(tmpDir, ".kraftlint.yaml"), true)
	require.NoError(t, err)
	assert.Equal(t, rules.Default().Fingerprint(), rs.Fingerprint())
}

func TestInitCmd_FailsIfExists(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, ".kraftlint.yaml"), []byte("existing"), 0o644))

	root := cli.NewRootCmdForTest()
	root.SetArgs([]string{"init", tmpDir})
	err := root.Execute()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestInitCmd_ForceOverwrites(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, ".kraftlint.yaml"), []byte("old"), 0o644))

	root := cli.NewRootCmdForTest()
	root.SetArgs([]string{"init", tmpDir, "--force"})
	require.NoError(t, root.Execute())

	data, err := os.ReadFile(filepath.Join(tmpDir, ".kraftlint.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "rules:")
	assert.NotEqual(t, "old", string(data))
}
