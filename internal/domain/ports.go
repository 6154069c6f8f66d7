package domain

import "context"

// SourceFile is one discovered file.
type SourceFile struct {
	// Path is the display path used in violations (root-joined, slash separated).
	Path string `json:"path"`
	// AbsPath is used to read the file.
	AbsPath string `json:"abs_path"`
	// Root is the discovery root the file was found under.
	Root string `json:"root"`
}

// FileScanner discovers files under one or more roots.
type FileScanner interface {
	Scan(ctx context.Context, roots []string, discovery Discovery) ([]SourceFile, error)
}

// RulesetLoader builds the frozen Ruleset. explicit is true when the
// path came from a flag or the environment rather than the default.
type RulesetLoader interface {
	Load(path string, explicit bool) (*Ruleset, error)
}

// ResultCache memoises per-file violations by content hash. Implementations
// must be safe for concurrent use.
type ResultCache interface {
	Lookup(path, contentHash string) ([]Violation, bool)
	Store(path, contentHash string, violations []Violation)
	Flush() error
}

// RevisionReader reports the VCS revision of a directory.
type RevisionReader interface {
	IsGitRepo(path string) bool
	CommitHash(path string) (string, error)
}
