package services

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/zenji/internal/core/domain"
	"github.com/custodia-labs/zenji/internal/core/ports/driving"
	"github.com/custodia-labs/zenji/internal/logger"
)

// Ensure FolderWatcher implements the interface.
var _ driving.FolderWatcher = (*FolderWatcher)(nil)

// DefaultWatchDebounce is how long a file must be quiet before it is ingested.
const DefaultWatchDebounce = 500 * time.Millisecond

// FolderWatcher ingests documents as they are created or modified under a directory.
type FolderWatcher struct {
	ingest   driving.IngestService
	debounce time.Duration
}

// WatchOption configures a FolderWatcher.
type WatchOption func(*FolderWatcher)

// WithDebounce sets the quiet period before a changed file is ingested.
func WithDebounce(d time.Duration) WatchOption {
	return func(w *FolderWatcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// NewFolderWatcher creates a watcher feeding the given ingest service.
func NewFolderWatcher(ingest driving.IngestService, opts ...WatchOption) *FolderWatcher {
	w := &FolderWatcher{ingest: ingest, debounce: DefaultWatchDebounce}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Watch blocks until ctx is done, ingesting every supported file written
// under root. Each ingestion outcome is passed to onResult, which may be nil.
func (w *FolderWatcher) Watch(ctx context.Context, root string, onResult func(domain.IngestResult, error)) error {
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", domain.ErrInvalidInput, root)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := addTree(watcher, root); err != nil {
		return err
	}
	logger.Event("ingest.watch.start", "path", root)

	pending := newDebouncer(w.debounce)
	defer pending.stop()

	for {
		select {
		case <-ctx.Done():
			logger.Event("ingest.watch.stop", "path", root)
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if isNewDir(event) {
				if err := addTree(watcher, event.Name); err != nil {
					logger.Warn("Failed to watch %s: %v", event.Name, err)
				}
				continue
			}
			if path, ok := w.target(event); ok {
				pending.touch(path)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watcher error: %v", err)

		case f := <-pending.ready:
			if pending.accept(f) {
				w.ingestFile(ctx, f.path, onResult)
			}
		}
	}
}

// firedFile is a debounce timer expiry for one generation of a path.
type firedFile struct {
	path string
	gen  uint64
}

type pendingFile struct {
	timer *time.Timer
	gen   uint64
}

// debouncer delays a path until it has been quiet for delay. Each touch
// starts a new generation; only the latest generation is accepted, so a
// timer that fired while the path was touched again is dropped.
type debouncer struct {
	delay   time.Duration
	pending map[string]*pendingFile
	ready   chan firedFile
	done    chan struct{}
	next    uint64
}

func newDebouncer(delay time.Duration) *debouncer {
	return &debouncer{
		delay:   delay,
		pending: make(map[string]*pendingFile),
		ready:   make(chan firedFile),
		done:    make(chan struct{}),
	}
}

// touch (re)starts the quiet period for path.
func (d *debouncer) touch(path string) {
	if p, ok := d.pending[path]; ok {
		p.timer.Stop()
	}
	d.next++
	f := firedFile{path: path, gen: d.next}
	d.pending[path] = &pendingFile{
		gen: f.gen,
		timer: time.AfterFunc(d.delay, func() {
			select {
			case d.ready <- f:
			case <-d.done:
			}
		}),
	}
}

// accept reports whether f is the latest generation for its path and
// clears the entry when it is.
func (d *debouncer) accept(f firedFile) bool {
	p, ok := d.pending[f.path]
	if !ok || p.gen != f.gen {
		return false
	}
	delete(d.pending, f.path)
	return true
}

// stop cancels pending timers and releases callbacks blocked on ready.
func (d *debouncer) stop() {
	close(d.done)
	for _, p := range d.pending {
		p.timer.Stop()
	}
}

// target returns the file to ingest for an event, if any.
// Only creates and writes of visible, supported files qualify.
func (w *FolderWatcher) target(event fsnotify.Event) (string, bool) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return "", false
	}
	if isHidden(event.Name) || !w.ingest.Supports(event.Name) {
		return "", false
	}
	info, err := os.Stat(event.Name)
	if err != nil || info.IsDir() {
		return "", false
	}
	return event.Name, true
}

func (w *FolderWatcher) ingestFile(ctx context.Context, path string, onResult func(domain.IngestResult, error)) {
	raw, err := os.ReadFile(path)
	if err != nil {
		logger.WarnEvent("ingest.watch.failed", "filename", path, "error", err.Error())
		if onResult != nil {
			onResult(failed(filepath.Base(path), err), err)
		}
		return
	}

	res, err := w.ingest.IngestDocument(ctx, raw, path)
	if err != nil {
		logger.WarnEvent("ingest.watch.failed", "filename", path, "error", err.Error())
	}
	if onResult != nil {
		onResult(res, err)
	}
}

// addTree watches dir and every visible directory beneath it.
func addTree(watcher *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && isHidden(path) {
			return filepath.SkipDir
		}
		if err := watcher.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}

func isNewDir(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Create) {
		return false
	}
	info, err := os.Stat(event.Name)
	return err == nil && info.IsDir()
}

func isHidden(path string) bool {
	return strings.HasPrefix(filepath.Base(path), ".")
}
