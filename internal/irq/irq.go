// Package irq models a single-level interrupt controller in software.
//
// Producers (GPIO edge callbacks, ticker goroutines) only latch a pending
// bit with Raise. A single dispatcher goroutine runs the registered handlers
// one at a time, so handlers never preempt each other. Handlers are what the
// rest of the code calls "interrupt context".
package irq

import (
	"context"
	"sync/atomic"
)

// Source identifies an interrupt source. Lower values are serviced first.
type Source int

const (
	// SourcePinChange is the button pin-change interrupt.
	SourcePinChange Source = iota
	// SourceTick is the periodic debounce tick.
	SourceTick

	numSources
)

func (s Source) String() string {
	switch s {
	case SourcePinChange:
		return "PIN_CHANGE"
	case SourceTick:
		return "TICK"
	}
	return "UNKNOWN"
}

// Controller latches and dispatches interrupts.
// Register all handlers before calling Run.
type Controller struct {
	handlers [numSources]func()
	pending  [numSources]atomic.Bool
	enabled  atomic.Bool

	dropped    atomic.Uint32
	dispatched atomic.Uint32

	kick chan struct{}
	wake chan struct{}
}

// New creates a controller with interrupts globally disabled.
func New() *Controller {
	return &Controller{
		kick: make(chan struct{}, 1),
		wake: make(chan struct{}, 1),
	}
}

// Register installs the handler for src.
func (c *Controller) Register(src Source, handler func()) {
	c.handlers[src] = handler
}

// Enable globally enables interrupts.
func (c *Controller) Enable() {
	c.enabled.Store(true)
}

// Disable globally disables interrupts. Sources raised while disabled are
// dropped, not held pending, and a bit latched just before Disable is
// discarded by the dispatcher.
func (c *Controller) Disable() {
	c.enabled.Store(false)
}

// Enabled reports whether interrupts are globally enabled.
func (c *Controller) Enabled() bool {
	return c.enabled.Load()
}

// Raise latches src as pending. It never blocks and is safe from any
// goroutine. Raising an already pending source is a no-op, as with a
// hardware flag bit.
func (c *Controller) Raise(src Source) {
	if !c.enabled.Load() {
		c.dropped.Add(1)
		return
	}
	c.pending[src].Store(true)
	select {
	case c.kick <- struct{}{}:
	default:
	}
}

// Clear discards a pending src without running its handler, like writing
// the flag bit back to zero.
func (c *Controller) Clear(src Source) {
	c.pending[src].Store(false)
}

// Wake is signalled after the dispatcher has run one or more handlers.
// The main loop waits on it instead of busy polling.
func (c *Controller) Wake() <-chan struct{} {
	return c.wake
}

// Run dispatches pending interrupts until ctx is done.
func (c *Controller) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-c.kick:
			if c.dispatch() > 0 {
				select {
				case c.wake <- struct{}{}:
				default:
				}
			}
		}
	}
}

// dispatch services every pending source in priority order until none are
// left, and returns how many handlers ran.
func (c *Controller) dispatch() int {
	ran := 0
	for {
		serviced := false
		for src := Source(0); src < numSources; src++ {
			if !c.pending[src].Swap(false) {
				continue
			}
			if !c.enabled.Load() {
				c.dropped.Add(1)
				continue
			}
			if h := c.handlers[src]; h != nil {
				h()
				c.dispatched.Add(1)
				ran++
			}
			serviced = true
			// Restart from the highest priority source.
			break
		}
		if !serviced {
			return ran
		}
	}
}

// Stats returns how many interrupts were dispatched and dropped.
func (c *Controller) Stats() (dispatched, dropped uint32) {
	return c.dispatched.Load(), c.dropped.Load()
}
