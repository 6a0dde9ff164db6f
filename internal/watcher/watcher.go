// =============================================================================
// COUNTER Report Generator - Input Directory Watcher
// =============================================================================
//
// This package watches the input directory and hands over usage exports once
// they have stopped changing, so a file still being copied in is never read
// half-written.
//
// SETTLING:
//   Every create or write event restarts the file's settle timer. A file is
//   handed over after no event has been seen for the settle duration. A file
//   removed or renamed away before it settles is dropped.
//
// =============================================================================

package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultSettle is how long a file must be quiet before it is handed over.
const DefaultSettle = 2 * time.Second

// Handler processes one settled file. It runs on the watcher's goroutine, so
// files are handed over one at a time.
type Handler func(ctx context.Context, path string)

// Watcher watches one directory for files matching glob patterns.
type Watcher struct {
	dir      string
	patterns []string
	settle   time.Duration
	logger   *zap.Logger

	pending map[string]time.Time
}

// New creates a watcher for dir.
//
// PARAMETERS:
//   - dir: The directory to watch. It is not watched recursively.
//   - patterns: Glob patterns matched against file base names.
//   - settle: The quiet period before a file is handed over; zero uses DefaultSettle.
//   - logger: The logger; nil disables logging.
func New(dir string, patterns []string, settle time.Duration, logger *zap.Logger) *Watcher {
	if settle <= 0 {
		settle = DefaultSettle
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Watcher{
		dir:      dir,
		patterns: patterns,
		settle:   settle,
		logger:   logger.With(zap.String("dir", dir)),
		pending:  make(map[string]time.Time),
	}
}

// Run watches until ctx is cancelled, calling handle for every settled file.
// It returns nil on cancellation and an error if the directory cannot be
// watched.
func (w *Watcher) Run(ctx context.Context, handle Handler) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer fsw.Close()

	if err := fsw.Add(w.dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.dir, err)
	}
	w.logger.Info("Watching input directory", zap.Duration("settle", w.settle))

	ticker := time.NewTicker(max(w.settle/4, 10*time.Millisecond))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Stopped watching input directory")
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("Watcher error", zap.Error(err))

		case now := <-ticker.C:
			for _, path := range w.settled(now) {
				if ctx.Err() != nil {
					return nil
				}
				w.logger.Debug("File settled", zap.String("file", filepath.Base(path)))
				handle(ctx, path)
			}
		}
	}
}

// handleEvent records or drops a pending file.
func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !w.Matches(event.Name) {
		return
	}
	switch {
	case event.Has(fsnotify.Create), event.Has(fsnotify.Write):
		w.pending[event.Name] = time.Now()
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		delete(w.pending, event.Name)
	}
}

// settled removes and returns the pending files quiet since settle before
// now, sorted by path.
func (w *Watcher) settled(now time.Time) []string {
	var ready []string
	for path, last := range w.pending {
		if now.Sub(last) >= w.settle {
			ready = append(ready, path)
			delete(w.pending, path)
		}
	}
	sort.Strings(ready)
	return ready
}

// Matches reports whether path's base name matches a watched pattern.
// Office lock files (~$usage.xlsx) never match.
func (w *Watcher) Matches(path string) bool {
	name := filepath.Base(path)
	if strings.HasPrefix(name, "~$") {
		return false
	}
	for _, pattern := range w.patterns {
		if ok, _ := filepath.Match(pattern, name); ok {
			return true
		}
	}
	return false
}
