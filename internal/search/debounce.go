package search

import (
	"sync"
	"time"
)

// DefaultDebounce is the quiet period used when none is configured.
const DefaultDebounce = 300 * time.Millisecond

// Debouncer coalesces rapid query edits: fn runs with the last term once no
// new Trigger arrived for the whole window.
type Debouncer struct {
	window time.Duration
	fn     func(string)

	mu      sync.Mutex
	timer   *time.Timer
	seq     uint64
	pending string
	armed   bool
	stopped bool
}

// NewDebouncer returns a debouncer calling fn, usually Controller.SetQuery.
// A non-positive window means DefaultDebounce.
func NewDebouncer(window time.Duration, fn func(string)) *Debouncer {
	if window <= 0 {
		window = DefaultDebounce
	}
	return &Debouncer{window: window, fn: fn}
}

// Trigger records term and restarts the window.
func (d *Debouncer) Trigger(term string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}

	d.seq++
	seq := d.seq
	d.pending = term
	d.armed = true

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.window, func() { d.fire(seq) })
}

// Flush runs fn immediately with the pending term, if any.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	if d.timer != nil {
		d.timer.Stop()
	}
	term, ok := d.take()
	d.mu.Unlock()

	if ok {
		d.fn(term)
	}
}

// Stop drops the pending term. Later triggers are ignored.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	d.armed = false
	if d.timer != nil {
		d.timer.Stop()
	}
}

func (d *Debouncer) fire(seq uint64) {
	d.mu.Lock()
	if seq != d.seq {
		d.mu.Unlock()
		return
	}
	term, ok := d.take()
	d.mu.Unlock()

	if ok {
		d.fn(term)
	}
}

// take must be called with d.mu held.
func (d *Debouncer) take() (string, bool) {
	if !d.armed || d.stopped {
		return "", false
	}
	d.armed = false
	return d.pending, true
}
