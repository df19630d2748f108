package watcher

import (
	"sync"
	"time"
	"unique"
)

// Debouncer coalesces bursts of file events into a single callback. Paths
// are deduplicated while pending, and each new event resets the timer so
// the callback fires one quiet window after the last event.
type Debouncer struct {
	mu       sync.Mutex
	pending  map[unique.Handle[string]]struct{}
	timer    *time.Timer
	window   time.Duration
	callback func(paths []string)
}

// NewDebouncer creates a debouncer that invokes callback with the batch of
// distinct paths seen during a burst. A non-positive window falls back to
// DefaultDebounceWindow.
func NewDebouncer(window time.Duration, callback func(paths []string)) *Debouncer {
	if window <= 0 {
		window = DefaultDebounceWindow
	}

	return &Debouncer{
		pending:  make(map[unique.Handle[string]]struct{}),
		window:   window,
		callback: callback,
	}
}

// Add records a path and schedules the callback one window from now.
func (d *Debouncer) Add(path string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.pending[unique.Make(path)] = struct{}{}

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.window, d.fire)
}

// Flush invokes the callback synchronously with any pending paths and
// cancels the scheduled firing.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	paths := d.drain()
	d.mu.Unlock()

	if len(paths) > 0 && d.callback != nil {
		d.callback(paths)
	}
}

func (d *Debouncer) fire() {
	d.mu.Lock()
	paths := d.drain()
	d.mu.Unlock()

	if len(paths) > 0 && d.callback != nil {
		d.callback(paths)
	}
}

// drain returns the pending batch and resets state. Callers must hold mu.
func (d *Debouncer) drain() []string {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}

	if len(d.pending) == 0 {
		return nil
	}

	paths := make([]string, 0, len(d.pending))
	for handle := range d.pending {
		paths = append(paths, handle.Value())
	}
	clear(d.pending)

	return paths
}
