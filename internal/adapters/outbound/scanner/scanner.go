package scanner

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"

	"github.com/openkraft/kraftlint/internal/domain"
)

// FileScanner implements domain.FileScanner by walking the filesystem.
type FileScanner struct{}

func New() *FileScanner {
	return &FileScanner{}
}

// Scan walks every root and returns the files selected by the discovery
// settings, sorted by display path. A root that is a file is returned when
// its name matches the include set.
func (s *FileScanner) Scan(ctx context.Context, roots []string, d domain.Discovery) ([]domain.SourceFile, error) {
	seen := make(map[string]bool)
	var out []domain.SourceFile
	for _, root := range roots {
		files, err := s.scanRoot(ctx, root, d)
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			if seen[f.AbsPath] {
				continue
			}
			seen[f.AbsPath] = true
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

func (s *FileScanner) scanRoot(ctx context.Context, root string, d domain.Discovery) ([]domain.SourceFile, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", root, err)
	}
	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", root, err)
	}
	display := filepath.ToSlash(filepath.Clean(root))

	if !info.IsDir() {
		if !matchAny(d.Include, path.Base(display)) || matchAny(d.Exclude, display) {
			return nil, nil
		}
		return []domain.SourceFile{{Path: display, AbsPath: absRoot, Root: display}}, nil
	}

	var ignored gitignore.Matcher
	if d.RespectGitignore {
		patterns, err := gitignore.ReadPatterns(osfs.New(absRoot), nil)
		if err != nil {
			return nil, fmt.Errorf("reading .gitignore files under %s: %w", root, err)
		}
		ignored = gitignore.NewMatcher(patterns)
	}

	var out []domain.SourceFile
	err = filepath.WalkDir(absRoot, func(p string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		rel, err := filepath.Rel(absRoot, p)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if entry.IsDir() {
			if matchAny(d.Exclude, rel) || matchAny(d.Exclude, rel+"/") ||
				(ignored != nil && ignored.Match(strings.Split(rel, "/"), true)) {
				return filepath.SkipDir
			}
			return nil
		}
		if !entry.Type().IsRegular() {
			return nil
		}
		if !matchAny(d.Include, rel) || matchAny(d.Exclude, rel) {
			return nil
		}
		if ignored != nil && ignored.Match(strings.Split(rel, "/"), false) {
			return nil
		}
		out = append(out, domain.SourceFile{
			Path:    displayPath(display, rel),
			AbsPath: p,
			Root:    display,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}
	return out, nil
}

func displayPath(root, rel string) string {
	if root == "." {
		return rel
	}
	return path.Join(root, rel)
}

func matchAny(patterns []string, name string) bool {
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p, name); ok {
			return true
		}
	}
	return false
}
