// Package fswatch streams document file changes from watched directories.
package fswatch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/parchment-labs/passage-cli/internal/core/domain"
	"github.com/parchment-labs/passage-cli/internal/core/ports/driven"
	"github.com/parchment-labs/passage-cli/internal/logger"
)

// Ensure Watcher implements the interface.
var _ driven.DirectoryWatcher = (*Watcher)(nil)

// DefaultDebounce is how long a file must stay quiet after a write
// burst before it is emitted.
const DefaultDebounce = 500 * time.Millisecond

// readyBuffer absorbs debounce timers that fire while the event loop
// is busy or shutting down.
const readyBuffer = 64

// Config holds watcher configuration.
type Config struct {
	// Debounce is the quiet period after the last write before a file
	// is read and emitted. Zero means DefaultDebounce.
	Debounce time.Duration
}

// Watcher observes directories with fsnotify and emits document
// changes for supported file formats. Editors produce bursts of write
// events per save; the watcher coalesces each burst into one change.
type Watcher struct {
	debounce time.Duration

	mu     sync.Mutex
	fsw    *fsnotify.Watcher
	closed bool
}

// New creates a directory watcher.
func New(cfg Config) *Watcher {
	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{debounce: debounce}
}

// Watch streams file changes under the given directories until the
// context is cancelled. The returned channel closes when watching
// stops.
func (w *Watcher) Watch(ctx context.Context, dirs []string) (<-chan domain.RawDocumentChange, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil, errors.New("watcher is closed")
	}
	if len(dirs) == 0 {
		return nil, fmt.Errorf("%w: no directories to watch", domain.ErrInvalidInput)
	}

	for _, dir := range dirs {
		info, err := os.Stat(dir)
		if err != nil {
			return nil, fmt.Errorf("watch %s: %w", dir, err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("watch %s: not a directory", dir)
		}
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	for _, dir := range dirs {
		if err := fsw.Add(dir); err != nil {
			_ = fsw.Close()
			return nil, fmt.Errorf("watch %s: %w", dir, err)
		}
	}
	w.fsw = fsw

	changes := make(chan domain.RawDocumentChange)
	go w.run(ctx, fsw, changes)

	logger.Debug("Watching %d directories (debounce %s)", len(dirs), w.debounce)
	return changes, nil
}

// Close stops the active watch and releases resources.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.closed = true
	if w.fsw != nil {
		err := w.fsw.Close()
		w.fsw = nil
		return err
	}
	return nil
}

// run is the event loop. All channel sends happen here, so emission
// order follows event order.
func (w *Watcher) run(ctx context.Context, fsw *fsnotify.Watcher, out chan<- domain.RawDocumentChange) {
	defer close(out)

	ready := make(chan string, readyBuffer)
	timers := make(map[string]*time.Timer)
	pending := make(map[string]domain.ChangeType)
	defer func() {
		for _, timer := range timers {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(ctx, event, timers, pending, ready, out)

		case path := <-ready:
			changeType, ok := pending[path]
			if !ok {
				continue
			}
			delete(timers, path)
			delete(pending, path)

			change := loadChange(path, changeType)
			if change == nil {
				continue
			}
			select {
			case out <- *change:
			case <-ctx.Done():
				return
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			logger.Warn("Watch error: %v", err)
		}
	}
}

// handleEvent filters an fsnotify event and either emits a deletion or
// schedules a debounced read.
func (w *Watcher) handleEvent(
	ctx context.Context,
	event fsnotify.Event,
	timers map[string]*time.Timer,
	pending map[string]domain.ChangeType,
	ready chan string,
	out chan<- domain.RawDocumentChange,
) {
	if isHidden(event.Name) {
		return
	}
	format, ok := domain.FormatFromExtension(filepath.Ext(event.Name))
	if !ok {
		return
	}

	switch {
	case event.Op.Has(fsnotify.Remove) || event.Op.Has(fsnotify.Rename):
		// A pending write for a now-gone file is moot
		if timer, ok := timers[event.Name]; ok {
			timer.Stop()
			delete(timers, event.Name)
			delete(pending, event.Name)
		}
		change := domain.RawDocumentChange{
			Type: domain.ChangeDeleted,
			Document: domain.RawDocument{
				Name:   filepath.Base(event.Name),
				Format: format,
			},
		}
		select {
		case out <- change:
		case <-ctx.Done():
		}

	case event.Op.Has(fsnotify.Create) || event.Op.Has(fsnotify.Write):
		if info, err := os.Stat(event.Name); err != nil || info.IsDir() {
			return
		}

		// The burst keeps the first-seen change type
		if _, scheduled := pending[event.Name]; !scheduled {
			if event.Op.Has(fsnotify.Create) {
				pending[event.Name] = domain.ChangeCreated
			} else {
				pending[event.Name] = domain.ChangeUpdated
			}
		}

		if timer, ok := timers[event.Name]; ok {
			timer.Reset(w.debounce)
			return
		}
		path := event.Name
		timers[path] = time.AfterFunc(w.debounce, func() {
			ready <- path
		})
	}
}

// loadChange reads the settled file into a change event. Files that
// vanished or turned into directories since the event are skipped.
func loadChange(path string, changeType domain.ChangeType) *domain.RawDocumentChange {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return nil
	}

	format, ok := domain.FormatFromExtension(filepath.Ext(path))
	if !ok {
		return nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("Read %s failed: %v", path, err)
		return nil
	}

	return &domain.RawDocumentChange{
		Type: changeType,
		Document: domain.RawDocument{
			Name:    filepath.Base(path),
			Format:  format,
			Content: content,
		},
	}
}

// isHidden reports whether any path segment is a dot-file or
// dot-directory. The segments "." and ".." do not count.
func isHidden(path string) bool {
	for _, segment := range strings.Split(filepath.ToSlash(path), "/") {
		switch segment {
		case "", ".", "..":
			continue
		}
		if strings.HasPrefix(segment, ".") {
			return true
		}
	}
	return false
}
