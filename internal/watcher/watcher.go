package watcher

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultSettle is how long a library must stay quiet after the last
// manifest event before the trigger fires.
const DefaultSettle = 2 * time.Minute

// Watcher fires a callback when app manifests under the watched library
// roots change and then settle.
type Watcher struct {
	fw      *fsnotify.Watcher
	settle  time.Duration
	trigger func()

	mu      sync.Mutex
	timer   *time.Timer
	stopCh  chan struct{}
	wg      sync.WaitGroup
	running bool
}

// New creates a Watcher that calls trigger after manifest changes settle.
func New(trigger func(), settle time.Duration) (*Watcher, error) {
	if trigger == nil {
		return nil, fmt.Errorf("trigger cannot be nil")
	}
	if settle <= 0 {
		settle = DefaultSettle
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create filesystem watcher: %w", err)
	}
	return &Watcher{
		fw:      fw,
		settle:  settle,
		trigger: trigger,
		stopCh:  make(chan struct{}),
	}, nil
}

// WatchLibrary adds one library's steamapps directory to the watch set.
func (w *Watcher) WatchLibrary(steamappsDir string) error {
	if err := w.fw.Add(steamappsDir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", steamappsDir, err)
	}
	return nil
}

// Start begins processing filesystem events.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return fmt.Errorf("watcher already running")
	}
	w.running = true

	w.wg.Add(1)
	go w.run()
	return nil
}

func (w *Watcher) run() {
	defer w.wg.Done()

	for {
		select {
		case event, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if isManifestEvent(event) {
				w.bump()
			}
		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			fmt.Fprintf(os.Stderr, "watcher: filesystem event error: %v\n", err)
		case <-w.stopCh:
			return
		}
	}
}

// bump (re)arms the settle timer. Each manifest event during a download
// burst pushes the trigger further out; it fires once the burst ends.
func (w *Watcher) bump() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.settle, w.trigger)
}

// Stop halts event processing and cancels any pending trigger.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = false
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	close(w.stopCh)
	w.mu.Unlock()

	err := w.fw.Close()
	w.wg.Wait()
	return err
}
