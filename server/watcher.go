package server

import (
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/phylomap/phylomap/errors"
)

// artifactWatcher watches the graph artifact file and triggers a reload when
// the export pipeline rewrites it. Only used for file sources; URL sources
// reload on explicit client request.
type artifactWatcher struct {
	path           string
	watcher        *fsnotify.Watcher
	reload         func() error
	debounceTimer  *time.Timer
	debouncePeriod time.Duration
	mu             sync.Mutex
	logger         *zap.SugaredLogger
}

// newArtifactWatcher creates a watcher for the artifact file
func newArtifactWatcher(path string, reload func() error, logger *zap.SugaredLogger) (*artifactWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create fsnotify watcher")
	}

	if err := watcher.Add(path); err != nil {
		watcher.Close()
		return nil, errors.Wrapf(err, "failed to watch artifact file %s", path)
	}

	return &artifactWatcher{
		path:    path,
		watcher: watcher,
		reload:  reload,
		// Exporters write large JSON in bursts; wait for the dust to settle
		debouncePeriod: 500 * time.Millisecond,
		logger:         logger,
	}, nil
}

// Start begins watching for artifact changes
func (w *artifactWatcher) Start() {
	go w.watchLoop()
}

func (w *artifactWatcher) watchLoop() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if isBackupFile(event.Name) {
				continue
			}

			w.logger.Infow("Artifact change detected",
				"file", event.Name,
				"op", event.Op.String(),
			)
			w.scheduleReload()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warnw("Artifact watcher error", "error", err)
		}
	}
}

// scheduleReload debounces rapid file changes before reloading
func (w *artifactWatcher) scheduleReload() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.debounceTimer = time.AfterFunc(w.debouncePeriod, func() {
		if err := w.reload(); err != nil {
			w.logger.Errorw("Artifact reload failed",
				"path", w.path,
				"error", err,
			)
		}
	})
}

// Stop closes the underlying fsnotify watcher
func (w *artifactWatcher) Stop() error {
	w.mu.Lock()
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.mu.Unlock()
	return w.watcher.Close()
}

func isBackupFile(name string) bool {
	return strings.HasSuffix(name, "~") ||
		strings.HasSuffix(name, ".bak") ||
		strings.HasSuffix(name, ".tmp") ||
		strings.HasSuffix(name, ".swp")
}
