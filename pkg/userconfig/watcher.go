package userconfig

import (
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const watchDebounce = 500 * time.Millisecond

// Watcher reports changes made to the preferences file by other processes.
// The callback runs on the watcher's goroutine; callers forward the result to
// their own event loop.
type Watcher struct {
	path     string
	onChange func(*Config)

	mu      sync.Mutex
	watcher *fsnotify.Watcher
	stop    chan struct{}
	done    chan struct{}
}

func NewWatcher(path string, onChange func(*Config)) *Watcher {
	return &Watcher{
		path:     filepath.Clean(path),
		onChange: onChange,
	}
}

// Start begins watching. The directory holding the file is watched so that
// atomic replacements and late creation are seen.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.stopLocked()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(w.path)); err != nil {
		watcher.Close()
		return err
	}

	w.watcher = watcher
	w.stop = make(chan struct{})
	w.done = make(chan struct{})
	go w.loop(watcher, w.stop, w.done)

	slog.Debug("Watching preferences", "path", w.path)
	return nil
}

// Stop stops watching and waits for the watch loop to exit.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.stopLocked()
}

func (w *Watcher) stopLocked() {
	if w.stop == nil {
		return
	}
	close(w.stop)
	w.watcher.Close()
	<-w.done
	w.stop, w.done, w.watcher = nil, nil, nil
}

func (w *Watcher) loop(watcher *fsnotify.Watcher, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-stop:
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(watchDebounce, w.reload)

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			slog.Warn("Preferences watcher error", "error", err)
		}
	}
}

func (w *Watcher) reload() {
	config, err := loadFrom(w.path)
	if err != nil {
		slog.Debug("Ignoring unreadable preferences", "path", w.path, "error", err)
		return
	}
	if w.onChange != nil {
		w.onChange(config)
	}
}
