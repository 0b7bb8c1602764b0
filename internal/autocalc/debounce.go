package autocalc

import (
	"sync"
	"time"
)

// Debouncer runs the most recently triggered function once the quiet period has passed
// without another trigger.
type Debouncer struct {
	mu      sync.Mutex
	wait    time.Duration
	timer   *time.Timer
	pending func()
	gen     uint64
	stopped bool
}

// NewDebouncer creates a debouncer with the given quiet period.
func NewDebouncer(wait time.Duration) *Debouncer {
	return &Debouncer{wait: wait}
}

// Trigger schedules fn, replacing any pending function and restarting the quiet period.
// It is a no-op after Stop.
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.pending = fn
	d.timer = time.AfterFunc(d.wait, func() {
		d.mu.Lock()
		// a timer that fired while being replaced or cancelled must not run
		if d.stopped || gen != d.gen {
			d.mu.Unlock()
			return
		}
		d.timer = nil
		d.pending = nil
		d.mu.Unlock()
		fn()
	})
}

// Flush runs the pending function now instead of waiting for the quiet period.
// It reports whether there was anything to run.
func (d *Debouncer) Flush() bool {
	d.mu.Lock()
	fn := d.pending
	d.cancelLocked()
	d.mu.Unlock()
	if fn == nil {
		return false
	}
	fn()
	return true
}

// Cancel drops the pending function, if any.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cancelLocked()
}

// Pending reports whether a function is waiting for the quiet period to end.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}

// Stop cancels the pending function and disables further triggers.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cancelLocked()
	d.stopped = true
}

func (d *Debouncer) cancelLocked() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.pending = nil
	d.gen++
}
