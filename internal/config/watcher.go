package config

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/sbvh/collegematch/internal/matcherr"
)

// ReloadCallback is invoked after a watched asset file changes on disk.
type ReloadCallback func(changedPath string) error

// AssetWatcher watches the directories that hold the given asset files
// (such as those named in normalization.{abbreviation_file,stopwords_file,
// state_alias_file}) and debounces rapid writes before invoking reload
// callbacks. A write or create of any file in a watched directory fires
// the callbacks with that file's path. Nothing in the module constructs an
// AssetWatcher; the CLI does not reload assets while it runs.
type AssetWatcher struct {
	watcher        *fsnotify.Watcher
	log            *zap.SugaredLogger
	mu             sync.Mutex
	callbacks      []ReloadCallback
	debouncePeriod time.Duration
	timers         map[string]*time.Timer
}

// NewAssetWatcher watches the parent directory of every non-empty path
// among the given files.
func NewAssetWatcher(log *zap.SugaredLogger, paths ...string) (*AssetWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, matcherr.Wrap(err, "create fsnotify watcher")
	}

	aw := &AssetWatcher{
		watcher:        w,
		log:            log,
		debouncePeriod: 500 * time.Millisecond,
		timers:         make(map[string]*time.Timer),
	}

	for _, p := range paths {
		if p == "" {
			continue
		}
		if err := w.Add(filepath.Dir(p)); err != nil {
			w.Close()
			return nil, matcherr.Wrapf(err, "watch directory for %s", p)
		}
	}

	return aw, nil
}

// OnReload registers a callback invoked (debounced) after a watched file
// changes.
func (aw *AssetWatcher) OnReload(cb ReloadCallback) {
	aw.mu.Lock()
	defer aw.mu.Unlock()
	aw.callbacks = append(aw.callbacks, cb)
}

// Start begins the watch loop in a new goroutine.
func (aw *AssetWatcher) Start() {
	go aw.loop()
}

func (aw *AssetWatcher) loop() {
	for {
		select {
		case event, ok := <-aw.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			aw.scheduleReload(event.Name)
		case err, ok := <-aw.watcher.Errors:
			if !ok {
				return
			}
			if aw.log != nil {
				aw.log.Warnw("asset watcher error", "error", err)
			}
		}
	}
}

func (aw *AssetWatcher) scheduleReload(path string) {
	aw.mu.Lock()
	defer aw.mu.Unlock()

	if t, ok := aw.timers[path]; ok {
		t.Stop()
	}
	aw.timers[path] = time.AfterFunc(aw.debouncePeriod, func() {
		aw.mu.Lock()
		callbacks := make([]ReloadCallback, len(aw.callbacks))
		copy(callbacks, aw.callbacks)
		aw.mu.Unlock()

		for _, cb := range callbacks {
			if err := cb(path); err != nil && aw.log != nil {
				aw.log.Errorw("asset reload callback failed", "path", path, "error", err)
			}
		}
	})
}

// Stop closes the underlying fsnotify watcher.
func (aw *AssetWatcher) Stop() error {
	return aw.watcher.Close()
}
