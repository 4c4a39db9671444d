package debounce

import (
	"sync"
	"time"
)

// Debouncer delays a callback until input has settled. Only the callback
// from the most recent Trigger ever runs; a timer that already fired but
// was superseded before reaching the callback is dropped.
type Debouncer struct {
	mu    sync.Mutex
	delay time.Duration
	timer *time.Timer
	seq   uint64
}

// New creates a new debouncer with the specified delay
func New(delay time.Duration) *Debouncer {
	return &Debouncer{delay: delay}
}

// Trigger schedules fn to run after the delay, replacing any pending callback
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopLocked()
	d.seq++
	seq := d.seq

	d.timer = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		current := seq == d.seq
		if current {
			d.timer = nil
		}
		d.mu.Unlock()

		if current && fn != nil {
			fn()
		}
	})
}

// Cancel stops any pending callback
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopLocked()
	d.seq++
}

// Execute cancels any pending callback and runs fn immediately on the caller's goroutine
func (d *Debouncer) Execute(fn func()) {
	d.Cancel()
	if fn != nil {
		fn()
	}
}

func (d *Debouncer) stopLocked() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// SetDelay changes the delay duration for future triggers
func (d *Debouncer) SetDelay(delay time.Duration) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.delay = delay
}

// Delay returns the current delay
func (d *Debouncer) Delay() time.Duration {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.delay
}

// IsActive returns true if there is a pending callback
func (d *Debouncer) IsActive() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.timer != nil
}
