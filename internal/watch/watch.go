package watch

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Event represents a change to a watched file.
type Event struct {
	Path string
	Type EventType
	Err  error
}

// EventType identifies the kind of file change.
type EventType int

const (
	EventModified EventType = iota
	EventCreated
	EventDeleted
)

func (t EventType) String() string {
	switch t {
	case EventModified:
		return "modified"
	case EventCreated:
		return "created"
	case EventDeleted:
		return "deleted"
	}
	return fmt.Sprintf("EventType(%d)", int(t))
}

// DefaultDebounce is how long a burst of writes is coalesced before an
// event is delivered.
const DefaultDebounce = 50 * time.Millisecond

// Watcher watches individual files for changes using fsnotify.
// Each file's parent directory is watched so that editors which save by
// writing a temp file and renaming it over the original are still seen.
// Bursts of events for the same file are coalesced into the last one.
type Watcher struct {
	fw       *fsnotify.Watcher
	debounce time.Duration

	mu    sync.Mutex
	files map[string]bool // absolute path -> watched
	dirs  map[string]bool

	events chan Event
	done   chan struct{}
	wg     sync.WaitGroup
	once   sync.Once
}

// New creates a file watcher. A debounce <= 0 uses DefaultDebounce.
func New(debounce time.Duration) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	w := &Watcher{
		fw:       fw,
		debounce: debounce,
		files:    make(map[string]bool),
		dirs:     make(map[string]bool),
		events:   make(chan Event, 64),
		done:     make(chan struct{}),
	}
	w.wg.Add(1)
	go w.run()
	return w, nil
}

// Add starts watching a file.
func (w *Watcher) Add(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	dir := filepath.Dir(absPath)

	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.dirs[dir] {
		if err := w.fw.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
		w.dirs[dir] = true
	}
	w.files[absPath] = true
	return nil
}

// Events returns the channel of coalesced file events. It is closed by Close.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

func (w *Watcher) watched(path string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.files[path]
}

func (w *Watcher) run() {
	defer w.wg.Done()
	defer close(w.events)

	pending := make(map[string]EventType)
	var order []string
	timer := time.NewTimer(w.debounce)
	timer.Stop()

	flush := func() bool {
		for _, path := range order {
			if !w.send(Event{Path: path, Type: pending[path]}) {
				return false
			}
		}
		clear(pending)
		order = order[:0]
		return true
	}

	for {
		select {
		case <-w.done:
			timer.Stop()
			return

		case ev, ok := <-w.fw.Events:
			if !ok {
				return
			}
			path := filepath.Clean(ev.Name)
			typ, ok := classify(ev.Op)
			if !ok || !w.watched(path) {
				continue
			}
			if _, seen := pending[path]; !seen {
				order = append(order, path)
			}
			pending[path] = typ
			timer.Reset(w.debounce)

		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			if !w.send(Event{Err: err}) {
				return
			}

		case <-timer.C:
			if !flush() {
				return
			}
		}
	}
}

// send delivers ev unless the watcher is closing.
func (w *Watcher) send(ev Event) bool {
	select {
	case w.events <- ev:
		return true
	case <-w.done:
		return false
	}
}

// classify maps an fsnotify op onto an EventType. A rename of the watched
// path counts as deletion; a rename onto it shows up as Create.
func classify(op fsnotify.Op) (EventType, bool) {
	switch {
	case op.Has(fsnotify.Create):
		return EventCreated, true
	case op.Has(fsnotify.Write):
		return EventModified, true
	case op.Has(fsnotify.Remove), op.Has(fsnotify.Rename):
		return EventDeleted, true
	}
	return 0, false
}

// Close stops the watcher and releases resources. Safe to call more than once.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		err = w.fw.Close()
		w.wg.Wait()
	})
	return err
}
