package logic

import "sync/atomic"

// Debouncer turns raw pin-change interrupts into at most one confirmed press
// per debounce window. The window is fixed-length from the first edge: later
// edges inside an open window are ignored and do not restart it.
//
// OnPinChanged and OnTick must be called from interrupt context only, and
// never concurrently with each other. The counters may be read from anywhere.
type Debouncer struct {
	window    uint8
	countdown uint8

	tick TickSource
	pin  PinSampler
	flag *PressFlag

	windows   atomic.Uint32
	confirmed atomic.Uint32
	rejected  atomic.Uint32
}

// NewDebouncer creates an idle debouncer with a DebounceTicks window.
func NewDebouncer(tick TickSource, pin PinSampler, flag *PressFlag) *Debouncer {
	return &Debouncer{
		window: DebounceTicks,
		tick:   tick,
		pin:    pin,
		flag:   flag,
	}
}

// OnPinChanged handles an edge on the button pin.
func (d *Debouncer) OnPinChanged() {
	if d.countdown != 0 {
		return
	}
	d.countdown = d.window
	d.windows.Add(1)
	d.tick.Enable()
}

// OnTick handles one tick of the tick source.
func (d *Debouncer) OnTick() {
	// A tick can still be in flight after Disable.
	if d.countdown == 0 {
		return
	}
	d.countdown--
	if d.countdown != 0 {
		return
	}
	if d.pin.Asserted() {
		d.flag.Set()
		d.confirmed.Add(1)
	} else {
		d.rejected.Add(1)
	}
	d.tick.Disable()
}

// State returns IDLE or DEBOUNCING.
func (d *Debouncer) State() State {
	if d.countdown == 0 {
		return StateIdle
	}
	return StateDebouncing
}

// Countdown returns the ticks left in the open window, 0 when idle.
func (d *Debouncer) Countdown() int {
	return int(d.countdown)
}

// Counts returns the window statistics. Sequences is always zero here.
func (d *Debouncer) Counts() Counts {
	return Counts{
		Windows:   d.windows.Load(),
		Confirmed: d.confirmed.Load(),
		Rejected:  d.rejected.Load(),
	}
}
