package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/openkraft/kraftlint/internal/adapters/outbound/cache"
	"github.com/openkraft/kraftlint/internal/adapters/outbound/config"
	"github.com/openkraft/kraftlint/internal/adapters/outbound/gitinfo"
	"github.com/openkraft/kraftlint/internal/adapters/outbound/scanner"
	"github.com/openkraft/kraftlint/internal/adapters/outbound/tui"
	"github.com/openkraft/kraftlint/internal/application"
	"github.com/openkraft/kraftlint/internal/domain"
)

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [paths...]",
		Short: "Check files against the ruleset",
		Long: `Check every matching file under the given paths (default: the current
directory) and print one report. Exit status is 0 when the run passes,
1 when it produced warnings or errors and 2 on configuration errors,
fatal failures or cancellation.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := loadSettings(cmd.Flags())
			if err != nil {
				return &ExitError{Code: ExitFatal, Err: err}
			}

			roots := args
			if len(roots) == 0 {
				roots = []string{"."}
			}

			rs, err := loadRuleset(config.New(), settings.Config, "")
			if err != nil {
				return &ExitError{Code: ExitFatal, Err: err}
			}

			logger := loggerFrom(cmd.Context())
			if settings.ClearCache {
				if err := cache.Invalidate(cacheRoot(roots[0])); err != nil {
					logger.Warn("clearing cache failed", "error", err)
				}
			}

			run := &checkRun{
				svc:      application.NewCheckService(scanner.New(), gitinfo.New(), logger),
				rs:       rs,
				roots:    roots,
				settings: settings,
				out:      cmd.OutOrStdout(),
				errOut:   cmd.ErrOrStderr(),
				logger:   logger,
			}

			var code int
			if settings.Watch {
				code, err = run.watch(cmd.Context())
			} else {
				code, err = run.once(cmd.Context())
			}
			if err != nil {
				return &ExitError{Code: ExitFatal, Err: err}
			}
			if code != ExitPass {
				return &ExitError{Code: code}
			}
			return nil
		},
	}

	cmd.Flags().String("config", "", "Ruleset file (default: ./"+config.DefaultFileName+", env "+config.EnvVar+")")
	cmd.Flags().String("format", FormatText, "Output format (text|json)")
	cmd.Flags().Int("jobs", 0, "Files checked in parallel (0 = number of CPUs)")
	cmd.Flags().Duration("timeout", 0, "Cancel the run after this long and report partial results (0 = no limit)")
	cmd.Flags().Bool("cache", false, "Reuse results for unchanged files from .kraftlint/cache")
	cmd.Flags().Bool("clear-cache", false, "Delete cached results before running")
	cmd.Flags().Bool("watch", false, "Re-run whenever a watched file changes")

	_ = cmd.RegisterFlagCompletionFunc("format", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{FormatText, FormatJSON}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

// loadRuleset resolves the ruleset file from a flag and environment value
// and loads it.
func loadRuleset(loader domain.RulesetLoader, flagValue, envValue string) (*domain.Ruleset, error) {
	path, explicit := config.Resolve(flagValue, envValue)
	return loader.Load(path, explicit)
}

// checkRun holds everything one invocation of check needs.
type checkRun struct {
	svc      *application.CheckService
	rs       *domain.Ruleset
	roots    []string
	settings Settings
	out      io.Writer
	errOut   io.Writer
	logger   *slog.Logger
}

// once performs a single run, renders it and returns the exit code it maps
// to.
func (r *checkRun) once(ctx context.Context) (int, error) {
	if r.settings.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.settings.Timeout)
		defer cancel()
	}

	opts := application.RunOptions{Jobs: r.settings.Jobs}
	if r.settings.Cache {
		opts.Cache = r.openCache()
	}

	report, err := r.svc.Run(ctx, r.roots, r.rs, opts)
	if err != nil {
		return ExitFatal, err
	}
	if err := renderReport(r.out, report, r.settings.Format); err != nil {
		return ExitFatal, fmt.Errorf("writing report: %w", err)
	}
	return exitCodeFor(report.Status), nil
}

func (r *checkRun) openCache() domain.ResultCache {
	root := cacheRoot(r.roots[0])
	store, err := cache.Open(root, r.rs.Fingerprint())
	if err != nil {
		r.logger.Warn("cache unreadable, starting empty", "root", root, "error", err)
	}
	return store
}

// cacheRoot is the directory owning .kraftlint/cache for a root.
func cacheRoot(root string) string {
	info, err := os.Stat(root)
	if err == nil && !info.IsDir() {
		return filepath.Dir(root)
	}
	return root
}

func renderReport(w io.Writer, report domain.Report, format string) error {
	if format == FormatJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	_, err := fmt.Fprint(w, tui.RenderReport(report))
	return err
}
