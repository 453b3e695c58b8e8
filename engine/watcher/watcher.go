// Package watcher reports changes to a single asset file, debounced, using fsnotify.
package watcher

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// ErrClosed is returned by Watch after Close.
var ErrClosed = errors.New("watcher closed")

// Watcher calls a handler once a watched file has been quiet for the debounce window after a
// write, create or rename. It watches the parent directory so editors that save by replacing
// the file keep being tracked.
type Watcher struct {
	mu sync.Mutex

	fs       *fsnotify.Watcher
	debounce time.Duration
	onChange func(path string)

	files  map[string]struct{}
	dirs   map[string]int
	timers map[string]*time.Timer
	closed bool

	done chan struct{}
	wg   sync.WaitGroup
	log  *zap.Logger
}

// New starts a Watcher. Handlers run on timer goroutines and must hand work to the goroutine
// that owns the renderer.
//
// Parameters:
//   - onChange: called with the cleaned path of a changed file
//   - opts: functional options
//
// Returns:
//   - *Watcher: the running watcher
//   - error: error if the platform watcher could not be created
func New(onChange func(path string), opts ...WatcherOption) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	w := &Watcher{
		fs:       fsw,
		debounce: 250 * time.Millisecond,
		onChange: onChange,
		files:    make(map[string]struct{}),
		dirs:     make(map[string]int),
		timers:   make(map[string]*time.Timer),
		done:     make(chan struct{}),
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(w)
	}

	w.wg.Add(1)
	go w.loop()
	return w, nil
}

// Watch starts reporting changes to path.
//
// Parameters:
//   - path: the file to watch; its directory must exist
//
// Returns:
//   - error: error if the directory cannot be watched or the watcher is closed
func (w *Watcher) Watch(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrClosed
	}
	if _, ok := w.files[abs]; ok {
		return nil
	}
	dir := filepath.Dir(abs)
	if w.dirs[dir] == 0 {
		if err := w.fs.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}
	w.dirs[dir]++
	w.files[abs] = struct{}{}
	w.log.Debug("watching asset", zap.String("path", abs))
	return nil
}

// Unwatch stops reporting changes to path.
func (w *Watcher) Unwatch(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.files[abs]; !ok {
		return nil
	}
	delete(w.files, abs)
	if t := w.timers[abs]; t != nil {
		t.Stop()
		delete(w.timers, abs)
	}
	dir := filepath.Dir(abs)
	w.dirs[dir]--
	if w.dirs[dir] == 0 {
		delete(w.dirs, dir)
		if !w.closed {
			return w.fs.Remove(dir)
		}
	}
	return nil
}

// Close stops the watcher and cancels pending notifications. Calling it twice is a no-op.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	for p, t := range w.timers {
		t.Stop()
		delete(w.timers, p)
	}
	close(w.done)
	w.mu.Unlock()

	err := w.fs.Close()
	w.wg.Wait()
	return err
}

func (w *Watcher) loop() {
	defer w.wg.Done()
	for {
		select {
		case <-w.done:
			return
		case e, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if e.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				w.schedule(filepath.Clean(e.Name))
			}
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.log.Warn("file watcher error", zap.Error(err))
		}
	}
}

// schedule (re)starts the debounce timer of path if it is watched.
func (w *Watcher) schedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	if _, ok := w.files[path]; !ok {
		return
	}
	if t := w.timers[path]; t != nil {
		t.Stop()
	}
	w.timers[path] = time.AfterFunc(w.debounce, func() { w.fire(path) })
}

func (w *Watcher) fire(path string) {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	delete(w.timers, path)
	handler := w.onChange
	w.mu.Unlock()

	w.log.Info("asset changed", zap.String("path", path))
	if handler != nil {
		handler(path)
	}
}
