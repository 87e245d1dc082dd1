package view

import (
	"sync"
	"time"
)

const DefaultDebounce = 300 * time.Millisecond

// Debouncer delays a value until no newer one arrives for the configured
// delay. Each Push restarts the timer; only the last value is delivered.
type Debouncer[T any] struct {
	mu      sync.Mutex
	delay   time.Duration
	fire    func(T)
	timer   *time.Timer
	pending *T
	// seq identifies the latest Push; a timer only delivers its own push.
	seq     uint64
	stopped bool
}

func NewDebouncer[T any](delay time.Duration, fire func(T)) *Debouncer[T] {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	return &Debouncer[T]{delay: delay, fire: fire}
}

func (d *Debouncer[T]) Push(value T) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	d.pending = &value
	d.seq++
	if d.timer != nil {
		d.timer.Stop()
	}
	seq := d.seq
	d.timer = time.AfterFunc(d.delay, func() { d.deliver(seq) })
}

// Flush delivers a pending value immediately.
func (d *Debouncer[T]) Flush() {
	d.mu.Lock()
	if d.timer != nil {
		d.timer.Stop()
	}
	value := d.take()
	d.mu.Unlock()

	if value != nil {
		d.fire(*value)
	}
}

// Stop cancels any pending value; later pushes are ignored.
func (d *Debouncer[T]) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	d.pending = nil
	if d.timer != nil {
		d.timer.Stop()
	}
}

// deliver fires the value pushed as seq, unless a newer push or a flush
// superseded it.
func (d *Debouncer[T]) deliver(seq uint64) {
	d.mu.Lock()
	if seq != d.seq {
		d.mu.Unlock()
		return
	}
	value := d.take()
	d.mu.Unlock()

	if value != nil {
		d.fire(*value)
	}
}

// take empties the pending slot. Callers hold d.mu.
func (d *Debouncer[T]) take() *T {
	value := d.pending
	d.pending = nil
	d.seq++
	return value
}
