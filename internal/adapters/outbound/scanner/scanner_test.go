package scanner_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openkraft/kraftlint/internal/adapters/outbound/scanner"
	"github.com/openkraft/kraftlint/internal/domain"
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

func defaults() domain.Discovery {
	return domain.Discovery{
		Include:          domain.DefaultInclude,
		Exclude:          domain.DefaultExclude,
		RespectGitignore: true,
	}
}

func paths(t *testing.T, root string, files []domain.SourceFile) []string {
	t.Helper()
	out := make([]string, len(files))
	for i, f := range files {
		rel, err := filepath.Rel(root, f.AbsPath)
		require.NoError(t, err)
		out[i] = filepath.ToSlash(rel)
	}
	return out
}

func TestFileScanner_Scan(t *testing.T) {
	root := writeTree(t, map[string]string{
		"app/main.py":               "x = 1\n",
		"web/App.tsx":               "export const a = 1;\n",
		"README.md":                 "# Readme\n",
		"notes.txt":                 "ignored by include\n",
		"node_modules/lib/index.js": "module.exports = {};\n",
		"build/out.py":              "x = 1\n",
	})

	files, err := scanner.New().Scan(context.Background(), []string{root}, defaults())
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"README.md", "app/main.py", "web/App.tsx"}, paths(t, root, files))
}

func TestFileScanner_RespectsGitignore(t *testing.T) {
	root := writeTree(t, map[string]string{
		".gitignore":     "generated/\n*.gen.py\n",
		"src/a.py":       "x = 1\n",
		"src/b.gen.py":   "x = 1\n",
		"generated/c.py": "x = 1\n",
	})

	files, err := scanner.New().Scan(context.Background(), []string{root}, defaults())
	require.NoError(t, err)
	assert.Equal(t, []string{"src/a.py"}, paths(t, root, files))

	d := defaults()
	d.RespectGitignore = false
	files, err = scanner.New().Scan(context.Background(), []string{root}, d)
	require.NoError(t, err)
	assert.Len(t, files, 3)
}

func TestFileScanner_CustomIncludeAndExclude(t *testing.T) {
	root := writeTree(t, map[string]string{
		"src/a.py":        "x = 1\n",
		"src/legacy/b.py": "x = 1\n",
		"docs/guide.md":   "# Guide\n",
	})
	d := defaults()
	d.Include = []string{"src/**/*.py"}
	d.Exclude = append(d.Exclude, "src/legacy/**")

	files, err := scanner.New().Scan(context.Background(), []string{root}, d)
	require.NoError(t, err)
	assert.Equal(t, []string{"src/a.py"}, paths(t, root, files))
}

func TestFileScanner_FileRoot(t *testing.T) {
	root := writeTree(t, map[string]string{"one.py": "x = 1\n", "two.txt": "x\n"})

	files, err := scanner.New().Scan(context.Background(), []string{filepath.Join(root, "one.py"), filepath.Join(root, "two.txt")}, defaults())
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, filepath.Join(root, "one.py"), files[0].AbsPath)
}

func TestFileScanner_DeduplicatesOverlappingRoots(t *testing.T) {
	root := writeTree(t, map[string]string{"src/a.py": "x = 1\n"})

	files, err := scanner.New().Scan(context.Background(), []string{root, filepath.Join(root, "src")}, defaults())
	require.NoError(t, err)
	assert.Len(t, files, 1)
}

func TestFileScanner_MissingRoot(t *testing.T) {
	_, err := scanner.New().Scan(context.Background(), []string{"/nonexistent/path"}, defaults())
	assert.Error(t, err)
}

func TestFileScanner_Cancelled(t *testing.T) {
	root := writeTree(t, map[string]string{"a.py": "x = 1\n"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := scanner.New().Scan(ctx, []string{root}, defaults())
	assert.ErrorIs(t, err, context.Canceled)
}
