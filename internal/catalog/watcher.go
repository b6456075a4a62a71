package catalog

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/banshee-data/odysseus-results/internal/monitoring"
)

// maxWatchDepth covers root, city, sim type and scenario directories.
const maxWatchDepth = 3

// Watcher calls OnChange once a burst of filesystem events under the
// results root has been quiet for the debounce interval.
type Watcher struct {
	root     string
	debounce time.Duration
	onChange func()

	mu      sync.Mutex
	watcher *fsnotify.Watcher
	events  int
	fired   int
	running bool
	doneCh  chan struct{}
}

// NewWatcher prepares a watcher for root. It does nothing until Start.
func NewWatcher(root string, debounce time.Duration, onChange func()) (*Watcher, error) {
	if onChange == nil {
		return nil, fmt.Errorf("watcher: nil change callback")
	}
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	return &Watcher{
		root:     filepath.Clean(root),
		debounce: debounce,
		onChange: onChange,
		watcher:  fw,
		doneCh:   make(chan struct{}),
	}, nil
}

// Start adds the tree to the watch list and runs the event loop until ctx is
// cancelled or Close is called.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	if err := w.addTree(w.root); err != nil {
		w.watcher.Close()
		close(w.doneCh)
		return err
	}
	monitoring.Logf("watching %s for changes (debounce %s)", w.root, w.debounce)
	go w.run(ctx)
	return nil
}

// Close stops the watcher and waits for the event loop to exit.
func (w *Watcher) Close() error {
	err := w.watcher.Close()
	w.mu.Lock()
	running := w.running
	w.mu.Unlock()
	if running {
		<-w.doneCh
	}
	return err
}

// Stats returns the number of events seen and callbacks fired.
func (w *Watcher) Stats() (events, fired int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.events, w.fired
}

func (w *Watcher) depth(dir string) int {
	rel, err := filepath.Rel(w.root, dir)
	if err != nil || rel == "." {
		return 0
	}
	n := 1
	for _, r := range rel {
		if r == filepath.Separator {
			n++
		}
	}
	return n
}

func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return fmt.Errorf("watch %s: %w", path, err)
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if w.depth(path) > maxWatchDepth {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			w.watcher.Close()
			return

		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if ev.Op == fsnotify.Chmod {
				continue
			}
			if ev.Op.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() && w.depth(ev.Name) <= maxWatchDepth {
					if err := w.addTree(ev.Name); err != nil {
						monitoring.Logf("watcher: %v", err)
					}
				}
			}
			w.mu.Lock()
			w.events++
			w.mu.Unlock()
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			monitoring.Logf("watcher error: %v", err)

		case <-fire:
			fire = nil
			w.mu.Lock()
			w.fired++
			w.mu.Unlock()
			w.onChange()
		}
	}
}
