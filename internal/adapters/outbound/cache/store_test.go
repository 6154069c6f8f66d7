package cache_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openkraft/kraftlint/internal/adapters/outbound/cache"
	"github.com/openkraft/kraftlint/internal/domain"
)

var sample = []domain.Violation{{
	File:      "src/a.py",
	LineStart: 3,
	LineEnd:   4,
	RuleID:    "SP001",
	Category:  domain.CategorySpacing,
	Severity:  domain.SeverityWarning,
	Message:   "expected 2 blank lines",
}}

func TestStore_FlushAndReopen(t *testing.T) {
	root := t.TempDir()

	store, err := cache.Open(root, "fp1")
	require.NoError(t, err)
	store.Store("src/a.py", "hash-a", sample)
	require.NoError(t, store.Flush())

	reopened, err := cache.Open(root, "fp1")
	require.NoError(t, err)
	got, ok := reopened.Lookup("src/a.py", "hash-a")
	require.True(t, ok)
	assert.Equal(t, sample, got)
}

func TestStore_MissesOnChangedContent(t *testing.T) {
	store, err := cache.Open(t.TempDir(), "fp1")
	require.NoError(t, err)
	store.Store("src/a.py", "hash-a", sample)

	_, ok := store.Lookup("src/a.py", "hash-b")
	assert.False(t, ok)
	_, ok = store.Lookup("src/other.py", "hash-a")
	assert.False(t, ok)
}

func TestStore_FingerprintChangeInvalidates(t *testing.T) {
	root := t.TempDir()
	store, err := cache.Open(root, "fp1")
	require.NoError(t, err)
	store.Store("src/a.py", "hash-a", sample)
	require.NoError(t, store.Flush())

	other, err := cache.Open(root, "fp2")
	require.NoError(t, err)
	_, ok := other.Lookup("src/a.py", "hash-a")
	assert.False(t, ok)
}

func TestStore_CorruptFileYieldsEmptyStore(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, ".kraftlint", "cache")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "results.msgpack"), []byte{0xc1, 0x00}, 0o644))

	store, err := cache.Open(root, "fp1")
	assert.Error(t, err)
	require.NotNil(t, store)
	_, ok := store.Lookup("src/a.py", "hash-a")
	assert.False(t, ok)
}

func TestStore_LookupReturnsCopy(t *testing.T) {
	store, err := cache.Open(t.TempDir(), "fp1")
	require.NoError(t, err)
	store.Store("src/a.py", "hash-a", sample)

	got, _ := store.Lookup("src/a.py", "hash-a")
	got[0].Message = "changed"

	again, _ := store.Lookup("src/a.py", "hash-a")
	assert.Equal(t, sample[0].Message, again[0].Message)
}

func TestInvalidate(t *testing.T) {
	root := t.TempDir()
	store, err := cache.Open(root, "fp1")
	require.NoError(t, err)
	store.Store("src/a.py", "hash-a", sample)
	require.NoError(t, store.Flush())

	require.NoError(t, cache.Invalidate(root))
	require.NoError(t, cache.Invalidate(root))

	reopened, err := cache.Open(root, "fp1")
	require.NoError(t, err)
	_, ok := reopened.Lookup("src/a.py", "hash-a")
	assert.False(t, ok)
}

func TestStore_FlushWithoutChangesWritesNothing(t *testing.T) {
	root := t.TempDir()
	store, err := cache.Open(root, "fp1")
	require.NoError(t, err)
	require.NoError(t, store.Flush())

	_, err = os.Stat(filepath.Join(root, ".kraftlint"))
	assert.True(t, os.IsNotExist(err))
}
