package watcher

import (
	"slices"
	"sync"
	"time"
	"unique"
)

// DefaultDebounceWindow is the default time window for coalescing file events.
const DefaultDebounceWindow = 100 * time.Millisecond

// Debouncer coalesces rapid file system events into one callback.
// Callbacks never overlap, and Flush waits for a callback that is already running.
type Debouncer struct {
	mu       sync.Mutex
	pending  map[unique.Handle[string]]struct{}
	timer    *time.Timer
	gen      uint64
	window   time.Duration
	callback func(paths []string)

	running  chan struct{}
	inflight sync.WaitGroup
}

// NewDebouncer creates a new debouncer with the given time window and callback.
func NewDebouncer(window time.Duration, callback func(paths []string)) *Debouncer {
	return &Debouncer{
		pending:  make(map[unique.Handle[string]]struct{}),
		window:   window,
		callback: callback,
		running:  make(chan struct{}, 1),
	}
}

// Add records path and restarts the window.
func (d *Debouncer) Add(path string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.pending[unique.Make(path)] = struct{}{}

	if d.timer != nil && d.timer.Stop() {
		d.inflight.Done()
	}
	d.gen++
	gen := d.gen
	d.inflight.Add(1)
	d.timer = time.AfterFunc(d.window, func() { d.fire(gen) })
}

func (d *Debouncer) fire(gen uint64) {
	defer d.inflight.Done()

	d.mu.Lock()
	if gen != d.gen {
		// superseded by a later Add
		d.mu.Unlock()
		return
	}
	d.timer = nil
	paths := d.drainLocked()
	d.mu.Unlock()

	d.run(paths)
}

// Flush runs the callback with all pending paths and blocks until every
// callback, including one started by the timer, has returned.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	fired := false
	if d.timer != nil {
		if d.timer.Stop() {
			d.inflight.Done()
		} else {
			fired = true
		}
		d.timer = nil
	}
	var paths []string
	if !fired {
		paths = d.drainLocked()
	}
	d.mu.Unlock()

	d.run(paths)
	d.inflight.Wait()
}

func (d *Debouncer) run(paths []string) {
	if len(paths) == 0 || d.callback == nil {
		return
	}
	d.running <- struct{}{}
	defer func() { <-d.running }()
	d.callback(paths)
}

// drainLocked returns the pending paths sorted and clears the set.
func (d *Debouncer) drainLocked() []string {
	paths := make([]string, 0, len(d.pending))
	for handle := range d.pending {
		paths = append(paths, handle.Value())
	}
	clear(d.pending)
	slices.Sort(paths)
	return paths
}
