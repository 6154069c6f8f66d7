package main_test

import (
	"encoding/json"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/openkraft/kraftlint/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var binaryPath string

func TestMain(m *testing.M) {
	// Build binary before running tests
	dir, err := os.MkdirTemp("", "kraftlint-e2e")
	if err != nil {
		panic(err)
	}

	binaryPath = filepath.Join(dir, "kraftlint")
	cmd := exec.Command("go", "build", "-o", binaryPath, ".")
	if out, err := cmd.CombinedOutput(); err != nil {
		_ = os.RemoveAll(dir)
		panic("build failed: " + string(out))
	}

	code := m.Run()
	_ = os.RemoveAll(dir)
	os.Exit(code)
}

func fixturePath(name string) string {
	abs, _ := filepath.Abs(filepath.Join("../../testdata/projects", name))
	return abs
}

func run(t *testing.T, args ...string) (string, string, int) {
	t.Helper()
	cmd := exec.Command(binaryPath, args...)
	cmd.Env = cleanEnv()
	stdout, err := cmd.Output()
	exitCode := 0
	var stderr string
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
			stderr = string(exitErr.Stderr)
		}
	}
	return string(stdout), stderr, exitCode
}

// cleanEnv drops KRAFTLINT_* variables so the host environment cannot
// change results.
func cleanEnv() []string {
	var env []string
	for _, kv := range os.Environ() {
		if !strings.HasPrefix(kv, "KRAFTLINT_") {
			env = append(env, kv)
		}
	}
	return env
}

// --- Check Tests ---

func TestE2E_CheckClean(t *testing.T) {
	out, _, code := run(t, "check", fixturePath("clean"))
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "PASS")
}

func TestE2E_CheckCleanJSON(t *testing.T) {
	out, _, code := run(t, "check", fixturePath("clean"), "--format", "json")
	assert.Equal(t, 0, code)

	var report domain.Report
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, domain.StatusPass, report.Status)
	assert.Equal(t, 3, report.Summary.FilesChecked)
	assert.Empty(t, report.Violations)
}

func TestE2E_CheckMixed(t *testing.T) {
	out, _, code := run(t, "check", fixturePath("mixed"), "--format", "json", "--jobs", "1")
	assert.Equal(t, 1, code)

	var report domain.Report
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, domain.StatusFail, report.Status)

	ids := make(map[string]bool)
	for _, v := range report.Violations {
		ids[v.RuleID] = true
	}
	for _, id := range []string{"NM001", "TY001", "TY002", "ST002"} {
		assert.True(t, ids[id], "expected a %s violation", id)
	}
}

func TestE2E_CheckIsDeterministic(t *testing.T) {
	a, _, _ := run(t, "check", fixturePath("mixed"), "--format", "json", "--jobs", "1")
	b, _, _ := run(t, "check", fixturePath("mixed"), "--format", "json", "--jobs", "8")
	assert.JSONEq(t, a, b)
}

func TestE2E_CheckBadConfig(t *testing.T) {
	out, stderr, code := run(t, "check", fixturePath("clean"), "--config", fixturePath("bad-config.yaml"))
	assert.Equal(t, 2, code)
	assert.Empty(t, out)
	assert.Contains(t, stderr, "invalid configuration")
}

func TestE2E_CheckMissingPath(t *testing.T) {
	_, _, code := run(t, "check", fixturePath("does-not-exist"))
	assert.Equal(t, 2, code)
}

// --- Other Commands ---

func TestE2E_Rules(t *testing.T) {
	out, _, code := run(t, "rules")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "LN001")
	assert.Contains(t, out, "ST005")
}

func TestE2E_Init(t *testing.T) {
	dir := t.TempDir()
	out, _, code := run(t, "init", dir)
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "Created .kraftlint.yaml")

	_, _, code = run(t, "check", fixturePath("clean"), "--config", filepath.Join(dir, ".kraftlint.yaml"))
	assert.Equal(t, 0, code)
}

func TestE2E_Version(t *testing.T) {
	out, _, code := run(t, "version")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "kraftlint")
}
