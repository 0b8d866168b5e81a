package quote

import (
	"sync"
	"time"
)

// DefaultDebounce is the settle time applied to destination-amount
// keystrokes in EXACT_OUTPUT mode before a quote request is issued.
const DefaultDebounce = 500 * time.Millisecond

// Debouncer coalesces rapid input changes into a single callback once input
// has settled. The displayed value should be updated from the raw input
// immediately; only the quote request goes through the debouncer.
type Debouncer struct {
	delay time.Duration

	mu    sync.Mutex
	timer *time.Timer
}

// NewDebouncer creates a debouncer with the given settle delay; delay <= 0
// selects DefaultDebounce.
func NewDebouncer(delay time.Duration) *Debouncer {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	return &Debouncer{delay: delay}
}

// Input records a new raw value, scheduling fn(value) after the settle delay.
// A newer input cancels the pending callback.
func (d *Debouncer) Input(value string, fn func(string)) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, func() { fn(value) })
}

// Stop cancels any pending callback.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
