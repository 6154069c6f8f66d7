package application

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/openkraft/kraftlint/internal/domain"
	"github.com/openkraft/kraftlint/internal/domain/aggregate"
	"github.com/openkraft/kraftlint/internal/domain/classify"
	"github.com/openkraft/kraftlint/internal/domain/extract"
	"github.com/openkraft/kraftlint/internal/domain/rules"
)

// CheckService orchestrates a run:
// discover → (read → classify → extract → evaluate) per file → aggregate.
type CheckService struct {
	scanner  domain.FileScanner
	revision domain.RevisionReader
	logger   *slog.Logger
}

func NewCheckService(
	scanner domain.FileScanner,
	revision domain.RevisionReader,
	logger *slog.Logger,
) *CheckService {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &CheckService{
		scanner:  scanner,
		revision: revision,
		logger:   logger,
	}
}

// RunOptions tunes one run.
type RunOptions struct {
	// Jobs bounds the number of files processed at once; 0 means GOMAXPROCS.
	Jobs int
	// Cache, when set, short-circuits files whose content is unchanged.
	Cache domain.ResultCache
}

// Run checks every file under roots. Discovery failures are returned as
// errors. Once files are scheduled, every failure becomes a violation. When
// ctx is cancelled no new file starts, in-flight files are abandoned at the
// next stage boundary and the report carries StatusCancelled with the
// violations of the files that completed.
func (s *CheckService) Run(ctx context.Context, roots []string, rs *domain.Ruleset, opts RunOptions) (domain.Report, error) {
	files, err := s.scanner.Scan(ctx, roots, rs.Discovery())
	if err != nil {
		if ctx.Err() != nil {
			s.logger.Warn("run cancelled during discovery")
			return aggregate.Aggregate(nil, 0, true), nil
		}
		return domain.Report{}, fmt.Errorf("discovering files: %w", err)
	}
	s.logger.Debug("discovered files", "count", len(files), "roots", roots)

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	results := make([][]domain.Violation, len(files))
	done := make([]bool, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for i, f := range files {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			vs, ok := s.checkFile(gctx, f, rs, opts.Cache)
			if ok {
				results[i] = vs
				done[i] = true
			}
			return nil
		})
	}
	_ = g.Wait()

	checked := 0
	for _, ok := range done {
		if ok {
			checked++
		}
	}
	cancelled := ctx.Err() != nil && checked < len(files)
	report := aggregate.Aggregate(results, checked, cancelled)
	report.Revision = s.revisionOf(roots)

	if opts.Cache != nil {
		if err := opts.Cache.Flush(); err != nil {
			s.logger.Warn("saving cache failed", "error", err)
		}
	}

	if cancelled {
		s.logger.Warn("run cancelled", "files_checked", checked, "files_total", len(files))
	} else {
		s.logger.Info("run complete",
			"status", report.Status,
			"files", checked,
			"violations", report.Summary.Total,
		)
	}
	return report, nil
}

// checkFile runs the per-file pipeline. ok is false when the file was
// abandoned because ctx was cancelled.
func (s *CheckService) checkFile(ctx context.Context, f domain.SourceFile, rs *domain.Ruleset, cache domain.ResultCache) (vs []domain.Violation, ok bool) {
	if ctx.Err() != nil {
		return nil, false
	}
	data, err := os.ReadFile(f.AbsPath)
	if err != nil {
		s.logger.Warn("reading file failed", "file", f.Path, "error", err)
		return []domain.Violation{rules.IOViolation(f.Path, err)}, true
	}

	var hash string
	if cache != nil {
		sum := sha256.Sum256(data)
		hash = hex.EncodeToString(sum[:])
		if cached, hit := cache.Lookup(f.Path, hash); hit {
			s.logger.Debug("cache hit", "file", f.Path)
			return cached, true
		}
	}

	if ctx.Err() != nil {
		return nil, false
	}
	vs = s.CheckContent(f.Path, string(data), rs)

	if cache != nil {
		cache.Store(f.Path, hash, vs)
	}
	return vs, true
}

// CheckContent classifies, models and evaluates one file's content. It
// never fails: extraction errors become a parse violation.
func (s *CheckService) CheckContent(path, content string, rs *domain.Ruleset) []domain.Violation {
	kind := classify.Classify(path, content)
	m, err := extract.Extract(kind, content, extract.OptionsFrom(rs.Engine()))
	if err != nil {
		s.logger.Warn("modelling file failed", "file", path, "kind", kind, "error", err)
		return []domain.Violation{rules.ParseViolation(path, err)}
	}
	vs := rules.Evaluate(path, m, rs)
	s.logger.Debug("checked file", "file", path, "kind", kind, "violations", len(vs))
	return vs
}

func (s *CheckService) revisionOf(roots []string) string {
	if s.revision == nil || len(roots) == 0 {
		return ""
	}
	if !s.revision.IsGitRepo(roots[0]) {
		return ""
	}
	hash, err := s.revision.CommitHash(roots[0])
	if err != nil {
		s.logger.Debug("no revision", "root", roots[0], "error", err)
		return ""
	}
	return hash
}
