package lexicons

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// WatcherConfig holds configuration for the lexicon override watcher.
type WatcherConfig struct {
	// Dir is the override directory to watch.
	Dir string

	// DebounceInterval is the time to wait after the last change before
	// reloading, so editors that write in several steps trigger one
	// reload instead of many.
	DebounceInterval time.Duration

	// OnReload is called after a successful reload.
	OnReload func()

	// OnError is called when watching or reloading fails.
	OnError func(err error)
}

// DefaultWatcherConfig returns a WatcherConfig with sensible defaults.
func DefaultWatcherConfig(dir string) WatcherConfig {
	return WatcherConfig{
		Dir:              dir,
		DebounceInterval: 500 * time.Millisecond,
		OnError:          func(err error) { log.Printf("Lexicon watcher error: %v", err) },
	}
}

// Watcher monitors a lexicon override directory and reloads the store
// when pack files change. The store swap is atomic, so in-flight
// analyses keep the set they started with.
type Watcher struct {
	config  WatcherConfig
	store   *Store
	watcher *fsnotify.Watcher
	stopCh  chan struct{}
	doneCh  chan struct{}
	mu      sync.Mutex
	running bool
}

// NewWatcher creates a watcher that reloads store on changes in the
// configured directory.
func NewWatcher(store *Store, config WatcherConfig) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		config:  config,
		store:   store,
		watcher: fsWatcher,
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
	}, nil
}

// Start begins watching for pack changes. A watcher runs one watch
// loop; calling Start twice is an error.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("watcher already running")
	}
	w.running = true
	w.mu.Unlock()

	if err := w.watcher.Add(w.config.Dir); err != nil {
		// The loop never launched, so doneCh will never close; reset
		// state so a deferred Stop returns instead of blocking.
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
		w.watcher.Close()
		return err
	}

	go w.watchLoop(ctx)
	return nil
}

// Stop stops the watcher.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh
	return w.watcher.Close()
}

func (w *Watcher) watchLoop(ctx context.Context) {
	defer close(w.doneCh)

	var debounceTimer *time.Timer
	var debounceCh <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			return

		case <-w.stopCh:
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}

			if filepath.Ext(event.Name) != ".yaml" {
				continue
			}

			// Removals and renames matter too: deleting an override
			// should restore the embedded terms.
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
				if debounceTimer != nil {
					debounceTimer.Stop()
				}
				debounceTimer = time.NewTimer(w.config.DebounceInterval)
				debounceCh = debounceTimer.C
			}

		case <-debounceCh:
			log.Printf("Lexicon override change detected, reloading...")
			if err := w.store.Reload(); err != nil {
				if w.config.OnError != nil {
					w.config.OnError(err)
				}
			} else if w.config.OnReload != nil {
				w.config.OnReload()
			}
			debounceCh = nil

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			if w.config.OnError != nil {
				w.config.OnError(err)
			}
		}
	}
}
