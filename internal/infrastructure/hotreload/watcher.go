package hotreload

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounceDelay coalesces the burst of events editors emit on save.
const DefaultDebounceDelay = 250 * time.Millisecond

// ReloadFunc re-reads the watched file. A non-nil error leaves the
// previous content in place.
type ReloadFunc func(path string) error

// CatalogWatcher reloads the recipe catalog when its file changes
type CatalogWatcher struct {
	path     string
	reload   ReloadFunc
	hub      *Hub
	logger   *zap.Logger
	debounce time.Duration

	watcher *fsnotify.Watcher
	mutex   sync.Mutex
	timer   *time.Timer
	wg      sync.WaitGroup
}

// NewCatalogWatcher creates a watcher for path. hub may be nil; when set,
// connected browsers reload after a successful catalog reload.
func NewCatalogWatcher(path string, reload ReloadFunc, hub *Hub, logger *zap.Logger) (*CatalogWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve catalog path: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	// Watch the directory: editors often save by renaming a temp file over
	// the original, which drops a watch on the file itself.
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}

	return &CatalogWatcher{
		path:     abs,
		reload:   reload,
		hub:      hub,
		logger:   logger.Named("catalog-watcher"),
		debounce: DefaultDebounceDelay,
		watcher:  watcher,
	}, nil
}

// Run processes file events until ctx is done, then closes the watcher
func (cw *CatalogWatcher) Run(ctx context.Context) {
	cw.logger.Info("Watching catalog", zap.String("path", cw.path))
	defer func() {
		cw.mutex.Lock()
		if cw.timer != nil && cw.timer.Stop() {
			cw.wg.Done()
		}
		cw.mutex.Unlock()
		cw.wg.Wait()
		cw.watcher.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-cw.watcher.Events:
			if !ok {
				return
			}
			if !cw.relevant(event) {
				continue
			}
			cw.schedule()

		case err, ok := <-cw.watcher.Errors:
			if !ok {
				return
			}
			cw.logger.Warn("File watcher error", zap.Error(err))
		}
	}
}

func (cw *CatalogWatcher) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != cw.path {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename)
}

// schedule debounces rapid changes into one reload.
func (cw *CatalogWatcher) schedule() {
	cw.mutex.Lock()
	defer cw.mutex.Unlock()

	if cw.timer != nil && cw.timer.Stop() {
		cw.wg.Done()
	}
	cw.wg.Add(1)
	cw.timer = time.AfterFunc(cw.debounce, func() {
		defer cw.wg.Done()
		cw.apply()
	})
}

func (cw *CatalogWatcher) apply() {
	if err := cw.reload(cw.path); err != nil {
		cw.logger.Error("Catalog reload failed", zap.String("path", cw.path), zap.Error(err))
		return
	}
	cw.logger.Info("Catalog reloaded", zap.String("path", cw.path))
	if cw.hub != nil {
		cw.hub.TriggerReload(cw.path)
	}
}
