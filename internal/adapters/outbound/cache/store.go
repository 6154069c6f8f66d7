package cache

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/openkraft/kraftlint/internal/domain"
)

// Store is a msgpack file-backed implementation of domain.ResultCache. It is
// bound to one ruleset fingerprint; entries written under another
// fingerprint are discarded on open.
type Store struct {
	root string

	mu    sync.Mutex
	cache domain.EvaluationCache
	dirty bool
}

// Open loads the cache under root for the given fingerprint. A missing file
// yields an empty store. An unreadable file also yields an empty store,
// together with the error so callers can report it.
func Open(root, fingerprint string) (*Store, error) {
	s := &Store{
		root:  root,
		cache: domain.EvaluationCache{Fingerprint: fingerprint, Entries: make(map[string]domain.CacheEntry)},
	}

	data, err := os.ReadFile(cachePath(root))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		return s, fmt.Errorf("reading cache: %w", err)
	}

	var loaded domain.EvaluationCache
	if err := msgpack.Unmarshal(data, &loaded); err != nil {
		return s, fmt.Errorf("decoding cache: %w", err)
	}
	if loaded.IsInvalidated(fingerprint) || loaded.Entries == nil {
		s.dirty = true
		return s, nil
	}
	s.cache = loaded
	return s, nil
}

// Lookup returns the cached violations for path when its content hash is
// unchanged.
func (s *Store) Lookup(path, contentHash string) ([]domain.Violation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.cache.Entries[path]
	if !ok || e.ContentHash != contentHash {
		return nil, false
	}
	return slices.Clone(e.Violations), true
}

func (s *Store) Store(path, contentHash string, violations []domain.Violation) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cache.Entries[path] = domain.CacheEntry{ContentHash: contentHash, Violations: slices.Clone(violations)}
	s.dirty = true
}

// Flush writes the cache to disk when it changed, creating directories as
// needed.
func (s *Store) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.dirty {
		return nil
	}
	if err := os.MkdirAll(cacheDir(s.root), 0o755); err != nil {
		return err
	}
	data, err := msgpack.Marshal(&s.cache)
	if err != nil {
		return err
	}

	tmp := cachePath(s.root) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, cachePath(s.root)); err != nil {
		return err
	}
	s.dirty = false
	return nil
}

// Invalidate removes the cache file under root.
func Invalidate(root string) error {
	if err := os.Remove(cachePath(root)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func cacheDir(root string) string {
	return filepath.Join(root, ".kraftlint", "cache")
}

func cachePath(root string) string {
	return filepath.Join(root, ".kraftlint", "cache", "results.msgpack")
}
