// Package watcher reseeds the content store when knowledge files change.
package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"

	"github.com/nickcecere/mindhub/internal/knowledge"
	"github.com/nickcecere/mindhub/internal/store"
)

// Watcher watches a knowledge directory. Changes are batched; each batch
// triggers one full reload because the knowledge base is small.
type Watcher struct {
	loader *knowledge.Loader
	store  store.Store

	pending      map[string]fsnotify.Op
	pendingMu    sync.Mutex
	debounceTime time.Duration

	// reloadMu serialises reloads triggered by the watcher and by callers.
	reloadMu sync.Mutex

	onEvent  func(event string, path string)
	onReload func(ctx context.Context, result *knowledge.SeedResult)
}

// Option configures the watcher.
type Option func(*Watcher)

// WithDebounceTime sets the debounce duration for batching events.
func WithDebounceTime(d time.Duration) Option {
	return func(w *Watcher) {
		w.debounceTime = d
	}
}

// WithEventCallback sets a callback for file events.
func WithEventCallback(fn func(event string, path string)) Option {
	return func(w *Watcher) {
		w.onEvent = fn
	}
}

// WithReloadCallback is called after a reload changed the store contents.
// The retrieval index is usually reset here.
func WithReloadCallback(fn func(ctx context.Context, result *knowledge.SeedResult)) Option {
	return func(w *Watcher) {
		w.onReload = fn
	}
}

// New creates a watcher for the loader's directory.
func New(loader *knowledge.Loader, st store.Store, opts ...Option) *Watcher {
	w := &Watcher{
		loader:       loader,
		store:        st,
		pending:      make(map[string]fsnotify.Op),
		debounceTime: 500 * time.Millisecond,
		onEvent:      func(string, string) {},
		onReload:     func(context.Context, *knowledge.SeedResult) {},
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Start watches until ctx is cancelled.
func (w *Watcher) Start(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	if err := w.addDirectories(fw); err != nil {
		return err
	}

	log.Info("Watching knowledge base", "root", w.loader.Root())

	go w.processDebounced(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event, fw)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			log.Error("Watcher error", "error", err)
		}
	}
}

func (w *Watcher) addDirectories(fw *fsnotify.Watcher) error {
	root := w.loader.Root()
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && w.loader.Ignored(path) {
			return filepath.SkipDir
		}

		if err := fw.Add(path); err != nil {
			log.Debug("Failed to watch directory", "path", path, "error", err)
		}
		return nil
	})
}

func (w *Watcher) handleEvent(event fsnotify.Event, fw *fsnotify.Watcher) {
	path := event.Name
	if w.loader.Ignored(path) {
		return
	}

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			if err := fw.Add(path); err == nil {
				log.Debug("Added directory to watch", "path", path)
			}
			// Files copied in together with the directory produce no events.
			w.queue(path, event.Op)
			return
		}
	}

	if !knowledge.IsKnowledgeFile(path) {
		return
	}

	w.queue(path, event.Op)
}

func (w *Watcher) queue(path string, op fsnotify.Op) {
	w.pendingMu.Lock()
	w.pending[path] |= op
	w.pendingMu.Unlock()
}

func (w *Watcher) processDebounced(ctx context.Context) {
	ticker := time.NewTicker(w.debounceTime)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.flushDebounced(ctx)
		}
	}
}

func (w *Watcher) flushDebounced(ctx context.Context) {
	w.pendingMu.Lock()
	if len(w.pending) == 0 {
		w.pendingMu.Unlock()
		return
	}
	events := w.pending
	w.pending = make(map[string]fsnotify.Op)
	w.pendingMu.Unlock()

	for path, op := range events {
		rel, err := filepath.Rel(w.loader.Root(), path)
		if err != nil {
			rel = path
		}
		if op.Has(fsnotify.Remove) || op.Has(fsnotify.Rename) {
			w.onEvent("delete", rel)
		} else {
			w.onEvent("change", rel)
		}
	}

	if _, err := w.Reload(ctx); err != nil {
		// A half-edited file must not take the server down; the next save retries.
		log.Error("Failed to reload knowledge base", "error", err)
	}
}

// Reload loads the knowledge directory and seeds the store. The reload
// callback runs only when the contents actually changed.
func (w *Watcher) Reload(ctx context.Context) (*knowledge.SeedResult, error) {
	w.reloadMu.Lock()
	defer w.reloadMu.Unlock()

	records, err := w.loader.Load()
	if err != nil {
		return nil, err
	}

	result, err := knowledge.Seed(ctx, w.store, records, false)
	if err != nil {
		return nil, err
	}

	if !result.Skipped {
		log.Info("Knowledge base reloaded", "documents", result.Documents)
		w.onReload(ctx, result)
	}
	return result, nil
}
