package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/openkraft/kraftlint/internal/adapters/outbound/scanner"
)

const watchDebounce = 250 * time.Millisecond

// watch runs once, then re-runs after every burst of file changes until ctx
// is cancelled. The returned code is that of the last completed run.
func (r *checkRun) watch(ctx context.Context) (int, error) {
	code, err := r.once(ctx)
	if err != nil {
		return code, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return ExitFatal, fmt.Errorf("creating watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := r.addWatches(ctx, watcher); err != nil {
		return ExitFatal, err
	}
	fmt.Fprintf(r.errOut, "Watching %d directories for changes. Press Ctrl+C to stop.\n", len(watcher.WatchList()))

	var debounce *time.Timer
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return code, nil

		case event, ok := <-watcher.Events:
			if !ok {
				return code, nil
			}
			if !relevantEvent(event) {
				continue
			}
			r.logger.Debug("change detected", "file", event.Name, "op", event.Op.String())
			if debounce == nil {
				debounce = time.NewTimer(watchDebounce)
			} else {
				debounce.Reset(watchDebounce)
			}

		case <-timerC(debounce):
			debounce = nil
			if code, err = r.once(ctx); err != nil {
				return code, err
			}
			// New directories may have appeared.
			if err := r.addWatches(ctx, watcher); err != nil {
				r.logger.Warn("updating watches failed", "error", err)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return code, nil
			}
			r.logger.Warn("watcher error", "error", err)
		}
	}
}

// addWatches registers every root directory and every directory holding a
// discovered file.
func (r *checkRun) addWatches(ctx context.Context, watcher *fsnotify.Watcher) error {
	files, err := scanner.New().Scan(ctx, r.roots, r.rs.Discovery())
	if err != nil {
		return fmt.Errorf("discovering watch targets: %w", err)
	}
	dirs := make([]string, 0, len(r.roots)+len(files))
	for _, root := range r.roots {
		dirs = append(dirs, cacheRoot(root))
	}
	for _, f := range files {
		dirs = append(dirs, filepath.Dir(f.AbsPath))
	}
	for _, dir := range watchDirs(dirs) {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("watching %s: %w", dir, err)
		}
	}
	return nil
}

// watchDirs returns the distinct absolute directories in dirs, sorted.
func watchDirs(dirs []string) []string {
	out := make([]string, 0, len(dirs))
	for _, d := range dirs {
		abs, err := filepath.Abs(d)
		if err != nil {
			continue
		}
		out = append(out, abs)
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// relevantEvent filters out chmod noise and writes to kraftlint's own state
// directory, which would otherwise retrigger every cached run.
func relevantEvent(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	for _, part := range strings.Split(filepath.ToSlash(event.Name), "/") {
		if part == ".kraftlint" {
			return false
		}
	}
	return true
}

// timerC returns the timer's channel, or nil so that a select blocks on it
// when no timer is armed.
func timerC(t *time.Timer) <-chan time.Time {
	if t == nil {
		return nil
	}
	return t.C
}
