package application_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openkraft/kraftlint/internal/adapters/outbound/cache"
	"github.com/openkraft/kraftlint/internal/adapters/outbound/scanner"
	"github.com/openkraft/kraftlint/internal/application"
	"github.com/openkraft/kraftlint/internal/domain"
	"github.com/openkraft/kraftlint/internal/domain/rules"
	"github.com/openkraft/kraftlint/internal/testutil"
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
	return root
}

func lines(ls ...string) string {
	return strings.Join(ls, "\n") + "\n"
}

func newCheckService(t *testing.T, s domain.FileScanner) *application.CheckService {
	return application.NewCheckService(s, nil, testutil.NewTestLogger(t))
}

// staticScanner returns a fixed file list in the given order.
type staticScanner struct {
	files []domain.SourceFile
	err   error
}

func (s staticScanner) Scan(context.Context, []string, domain.Discovery) ([]domain.SourceFile, error) {
	return s.files, s.err
}

var cleanPython = lines(
	`"""Tools."""`,
	"import os",
	"",
	"# Returns the working directory.",
	"def cwd() -> str:",
	"    return os.getcwd()",
)

func TestCheckService_Run(t *testing.T) {
	root := writeTree(t, map[string]string{
		"src/clean.py":  cleanPython,
		"src/dirty.py":  lines("def loadUser(a, b):", "    return a  "),
		"docs/guide.md": lines("# Guide", "", "#### Too deep"),
		"notes.txt":     "not included\n",
	})

	report, err := newCheckService(t, scanner.New()).Run(context.Background(), []string{root}, rules.Default(), application.RunOptions{Jobs: 2})
	require.NoError(t, err)

	assert.Equal(t, domain.StatusFail, report.Status)
	assert.Equal(t, 3, report.Summary.FilesChecked)

	byRule := map[string]int{}
	for _, v := range report.Violations {
		byRule[v.RuleID]++
	}
	assert.Equal(t, 1, byRule["NM001"])
	assert.Equal(t, 2, byRule["TY001"])
	assert.Equal(t, 1, byRule["TY002"])
	assert.Equal(t, 1, byRule["WS001"])
	assert.Equal(t, 1, byRule["ST002"])
}

func TestCheckService_ReportIsOrderInvariant(t *testing.T) {
	root := writeTree(t, map[string]string{
		"a.py": lines("def f(x):", "    return x"),
		"b.py": lines("x = 1  "),
		"c.md": lines("Intro", "", "# Title"),
	})
	files, err := scanner.New().Scan(context.Background(), []string{root}, rules.Default().Discovery())
	require.NoError(t, err)
	require.Len(t, files, 3)

	reversed := make([]domain.SourceFile, len(files))
	for i, f := range files {
		reversed[len(files)-1-i] = f
	}

	rs := rules.Default()
	a, err := newCheckService(t, staticScanner{files: files}).Run(context.Background(), nil, rs, application.RunOptions{Jobs: 1})
	require.NoError(t, err)
	b, err := newCheckService(t, staticScanner{files: reversed}).Run(context.Background(), nil, rs, application.RunOptions{Jobs: 3})
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestCheckService_UnreadableFileIsIOViolation(t *testing.T) {
	files := []domain.SourceFile{{Path: "gone.py", AbsPath: filepath.Join(t.TempDir(), "gone.py")}}

	report, err := newCheckService(t, staticScanner{files: files}).Run(context.Background(), nil, rules.Default(), application.RunOptions{})
	require.NoError(t, err)

	require.Len(t, report.Violations, 1)
	assert.Equal(t, domain.RuleIOError, report.Violations[0].RuleID)
	assert.Equal(t, domain.StatusFail, report.Status)
}

func TestCheckService_ParseFailureDoesNotStopRun(t *testing.T) {
	root := writeTree(t, map[string]string{
		"broken.py": lines(`x = """never closed`),
		"ok.py":     lines("x = 1  "),
	})

	report, err := newCheckService(t, scanner.New()).Run(context.Background(), []string{root}, rules.Default(), application.RunOptions{})
	require.NoError(t, err)

	assert.Equal(t, 2, report.Summary.FilesChecked)
	var ids []string
	for _, v := range report.Violations {
		ids = append(ids, v.RuleID)
	}
	assert.Contains(t, ids, domain.RuleParseError)
	assert.Contains(t, ids, "WS001")
}

func TestCheckService_CancelledBeforeStart(t *testing.T) {
	root := writeTree(t, map[string]string{"a.py": lines("x = 1  ")})
	files, err := scanner.New().Scan(context.Background(), []string{root}, rules.Default().Discovery())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := newCheckService(t, staticScanner{files: files}).Run(ctx, nil, rules.Default(), application.RunOptions{})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, report.Status)
	assert.Equal(t, 0, report.Summary.FilesChecked)
	assert.Empty(t, report.Violations)
}

// cancellingCache cancels the run at the nth lookup or the nth store.
type cancellingCache struct {
	lookupAt, storeAt int32
	lookups, stores   atomic.Int32
	cancel            context.CancelFunc
}

func (c *cancellingCache) Lookup(string, string) ([]domain.Violation, bool) {
	if c.lookups.Add(1) == c.lookupAt {
		c.cancel()
	}
	return nil, false
}

func (c *cancellingCache) Store(string, string, []domain.Violation) {
	if c.stores.Add(1) == c.storeAt {
		c.cancel()
	}
}

func (c *cancellingCache) Flush() error { return nil }

func TestCheckService_CancelledMidRunKeepsCompletedFiles(t *testing.T) {
	content := lines("x = 1  ")
	tree := map[string]string{}
	for i := range 20 {
		tree[fmt.Sprintf("f%02d.py", i)] = content
	}
	root := writeTree(t, tree)
	rs := rules.Default()
	files, err := scanner.New().Scan(context.Background(), []string{root}, rs.Discovery())
	require.NoError(t, err)
	require.Len(t, files, 20)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	svc := newCheckService(t, staticScanner{files: files})

	report, err := svc.Run(ctx, nil, rs, application.RunOptions{
		Jobs:  1,
		Cache: &cancellingCache{lookupAt: 3, cancel: cancel},
	})
	require.NoError(t, err)

	perFile := len(svc.CheckContent(files[0].Path, content, rs))
	require.Positive(t, perFile)
	assert.Equal(t, domain.StatusCancelled, report.Status)
	assert.Equal(t, 2, report.Summary.FilesChecked)
	assert.Equal(t, perFile*report.Summary.FilesChecked, report.Summary.Total)
	for _, v := range report.Violations {
		assert.Contains(t, []string{files[0].Path, files[1].Path}, v.File)
	}
}

func TestCheckService_CancelAfterLastFileIsNotCancelled(t *testing.T) {
	root := writeTree(t, map[string]string{"a.py": lines("x = 1  ")})
	files, err := scanner.New().Scan(context.Background(), []string{root}, rules.Default().Discovery())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	report, err := newCheckService(t, staticScanner{files: files}).Run(ctx, nil, rules.Default(), application.RunOptions{
		Cache: &cancellingCache{storeAt: 1, cancel: cancel},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Summary.FilesChecked)
	assert.NotEqual(t, domain.StatusCancelled, report.Status)
	assert.NotEmpty(t, report.Violations)
}

func TestCheckService_CancelledDuringDiscovery(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := newCheckService(t, staticScanner{err: context.Canceled}).Run(ctx, nil, rules.Default(), application.RunOptions{})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, report.Status)
}

func TestCheckService_DiscoveryError(t *testing.T) {
	boom := errors.New("boom")
	_, err := newCheckService(t, staticScanner{err: boom}).Run(context.Background(), nil, rules.Default(), application.RunOptions{})
	assert.ErrorIs(t, err, boom)
}

func TestCheckService_CacheHitMatchesFreshRun(t *testing.T) {
	root := writeTree(t, map[string]string{"a.py": lines("def f(x):", "    return x  ")})
	rs := rules.Default()
	svc := newCheckService(t, scanner.New())

	store, err := cache.Open(root, rs.Fingerprint())
	require.NoError(t, err)
	fresh, err := svc.Run(context.Background(), []string{root}, rs, application.RunOptions{Cache: store})
	require.NoError(t, err)

	reopened, err := cache.Open(root, rs.Fingerprint())
	require.NoError(t, err)
	cached, err := svc.Run(context.Background(), []string{root}, rs, application.RunOptions{Cache: reopened})
	require.NoError(t, err)

	assert.Equal(t, fresh, cached)
}

func TestCheckService_CheckContent(t *testing.T) {
	svc := newCheckService(t, scanner.New())
	vs := svc.CheckContent("snippet.tsx", lines("function add(a: number, b): number {", "  return a + b;", "}"), rules.Default())

	require.Len(t, vs, 1)
	assert.Equal(t, "TY001", vs[0].RuleID)
}
