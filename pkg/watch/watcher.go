// Package watch re-runs walks when source or value files change.
package watch

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fatih/color"
	"github.com/fsnotify/fsnotify"

	"github.com/panbanda/livewalk/pkg/config"
	"github.com/panbanda/livewalk/pkg/parser"
)

// Watcher monitors files for changes and triggers a walk.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	config    *config.Config
	debounce  time.Duration
	path      string
	callback  func(changed []string)
	out       io.Writer

	mu      sync.Mutex
	pending map[string]time.Time
	extra   map[string]bool   // non-source files that also trigger, such as the values file
	digests map[string]uint64 // content hash of the last version handed to the callback
}

// NewWatcher creates a new file watcher rooted at path.
func NewWatcher(path string, cfg *config.Config, debounce time.Duration) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}

	return &Watcher{
		fsWatcher: fsWatcher,
		config:    cfg,
		debounce:  debounce,
		path:      path,
		out:       os.Stdout,
		pending:   make(map[string]time.Time),
		extra:     make(map[string]bool),
		digests:   make(map[string]uint64),
	}, nil
}

// SetCallback sets the function called with each debounced batch of changed
// files, in sorted order.
func (w *Watcher) SetCallback(cb func(changed []string)) {
	w.callback = cb
}

// SetOutput redirects status messages.
func (w *Watcher) SetOutput(out io.Writer) {
	w.out = out
}

// WatchFile adds a file outside the source tree, such as the values document.
// Its current content is recorded so that only real edits trigger.
func (w *Watcher) WatchFile(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := w.fsWatcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", path, err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.extra[abs] = true
	if sum, ok := digest(abs); ok {
		w.digests[abs] = sum
	}
	return nil
}

// Start watches the tree under the root until ctx is done.
func (w *Watcher) Start(ctx context.Context) error {
	err := filepath.WalkDir(w.path, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		if path != w.path && w.excludedDir(path) {
			return filepath.SkipDir
		}
		return w.fsWatcher.Add(path)
	})
	if err != nil {
		return err
	}

	cyan := color.New(color.FgCyan)
	cyan.Fprintf(w.out, "Watching for changes in %s...\n", w.path)
	cyan.Fprintln(w.out, "Press Ctrl+C to stop")
	fmt.Fprintln(w.out)

	go w.processDebounced(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return nil
			}
			color.New(color.FgRed).Fprintf(w.out, "Watch error: %v\n", err)
		}
	}
}

func (w *Watcher) excludedDir(path string) bool {
	return slices.Contains(w.config.Exclude.Dirs, filepath.Base(path))
}

// handleEvent processes a filesystem event.
func (w *Watcher) handleEvent(event fsnotify.Event) {
	// Only care about writes and creates
	if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
		return
	}

	path := event.Name
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}

	// New directories are watched too, so files created in them are seen.
	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			if !w.excludedDir(path) {
				_ = w.fsWatcher.Add(path)
			}
			return
		}
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.extra[path] {
		if w.config.ShouldExclude(path) {
			return
		}
		if parser.DetectLanguage(path) == parser.LangUnknown {
			return
		}
	}

	w.pending[path] = time.Now()
}

// processDebounced processes pending changes after debounce period.
func (w *Watcher) processDebounced(ctx context.Context) {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if changed := w.ready(time.Now()); len(changed) > 0 {
				w.runCallback(changed)
			}
		}
	}
}

// ready removes and returns the files that have been stable for the debounce
// period and whose content differs from the last version seen.
func (w *Watcher) ready(now time.Time) []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	var out []string
	for path, lastMod := range w.pending {
		if now.Sub(lastMod) < w.debounce {
			continue
		}
		delete(w.pending, path)

		sum, ok := digest(path)
		if !ok {
			continue
		}
		if prev, seen := w.digests[path]; seen && prev == sum {
			continue
		}
		w.digests[path] = sum
		out = append(out, path)
	}
	sort.Strings(out)
	return out
}

// runCallback hands a batch of changed files to the callback.
func (w *Watcher) runCallback(changed []string) {
	if w.callback == nil {
		return
	}

	names := make([]string, len(changed))
	for i, path := range changed {
		if rel, err := filepath.Rel(w.path, path); err == nil {
			names[i] = rel
		} else {
			names[i] = path
		}
	}

	color.New(color.FgYellow).Fprintf(w.out, "\nChanged: %s\n", strings.Join(names, ", "))
	fmt.Fprintln(w.out, strings.Repeat("-", 40))

	w.callback(changed)

	fmt.Fprintln(w.out)
}

func digest(path string) (uint64, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, false
	}
	return xxhash.Sum64(data), true
}

// Stop stops the watcher.
func (w *Watcher) Stop() error {
	return w.fsWatcher.Close()
}

// WatchedFiles returns the list of watched directories.
func (w *Watcher) WatchedFiles() []string {
	return w.fsWatcher.WatchList()
}
