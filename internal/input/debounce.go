package input

import (
	"sync"
	"time"
)

// DefaultResizeDelay is how long resize requests settle before one is applied.
const DefaultResizeDelay = 100 * time.Millisecond

// Debouncer runs only the last function triggered within its delay. The
// function is handed to dispatch so it can run on the goroutine that owns
// the state it touches.
type Debouncer struct {
	mu       sync.Mutex
	delay    time.Duration
	timer    *time.Timer
	gen      uint64
	dispatch func(func())
}

func NewDebouncer(delay time.Duration, dispatch func(func())) *Debouncer {
	if dispatch == nil {
		dispatch = func(f func()) { f() }
	}
	return &Debouncer{delay: delay, dispatch: dispatch}
}

// Trigger schedules f, replacing anything scheduled before it.
func (d *Debouncer) Trigger(f func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.timer = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		if gen != d.gen {
			d.mu.Unlock()
			return
		}
		d.timer = nil
		d.mu.Unlock()
		d.dispatch(f)
	})
}

// Stop drops any pending function.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.gen++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
