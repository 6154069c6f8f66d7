package domain

// EvaluationCache is the persisted form of the per-file result cache.
type EvaluationCache struct {
	Fingerprint string                `msgpack:"fingerprint"`
	Entries     map[string]CacheEntry `msgpack:"entries"`
}

// CacheEntry holds the violations produced for one file content.
type CacheEntry struct {
	ContentHash string      `msgpack:"content_hash"`
	Violations  []Violation `msgpack:"violations"`
}

// IsInvalidated reports whether the cache was produced by another ruleset.
func (c *EvaluationCache) IsInvalidated(fingerprint string) bool {
	return c.Fingerprint != fingerprint
}
