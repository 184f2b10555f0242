// Package device wires the debouncer, interrupt controller, tick source and
// hardware together, and runs the scripted action for each confirmed press.
package device

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/sweeney/servo-button/internal/gpio"
	"github.com/sweeney/servo-button/internal/irq"
	"github.com/sweeney/servo-button/internal/logic"
	"github.com/sweeney/servo-button/internal/tick"
)

// Hardware is the set of devices the controller drives.
type Hardware struct {
	Button gpio.Button
	LED    gpio.LED
	Servo  gpio.Servo
}

// Config holds the controller settings. Zero values select the defaults.
type Config struct {
	// Hold is how long the servo stays open. Zero or negative selects
	// logic.DefaultHold; callers taking user input should reject those first.
	Hold time.Duration
	// Sleep blocks between script steps (default time.Sleep).
	Sleep func(time.Duration)
	// Now stamps events (default time.Now).
	Now func() time.Time
	// OnEvent receives press and sequence events on the main loop goroutine,
	// always with interrupts enabled.
	OnEvent func(logic.Event)
}

// Controller owns all device state for the life of the process.
//
// Start, Reset, Service, Poll and Close are main-loop calls and must come
// from a single goroutine. Everything the interrupt handlers touch lives in
// the debouncer and tick source; the only datum crossing over is the
// press flag.
type Controller struct {
	cfg Config
	hw  Hardware

	irq       *irq.Controller
	tick      *tick.Source
	flag      logic.PressFlag
	debouncer *logic.Debouncer
	script    []logic.Step

	sequences  atomic.Uint32
	servoAngle atomic.Int32
	reported   logic.Counts
	outbox     []logic.Event

	cancel context.CancelFunc
	done   chan struct{}
}

// New builds a controller in the power-on state: debouncer idle, tick
// stopped, interrupts globally disabled until Start.
func New(cfg Config, hw Hardware) *Controller {
	if cfg.Hold <= 0 {
		cfg.Hold = logic.DefaultHold
	}
	if cfg.Sleep == nil {
		cfg.Sleep = time.Sleep
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	c := &Controller{
		cfg:    cfg,
		hw:     hw,
		irq:    irq.New(),
		script: logic.Script(cfg.Hold),
	}
	c.tick = tick.New(logic.TickPeriod, func() { c.irq.Raise(irq.SourceTick) })
	c.debouncer = logic.NewDebouncer(tickLine{src: c.tick, irq: c.irq}, hw.Button, &c.flag)

	c.irq.Register(irq.SourcePinChange, c.debouncer.OnPinChanged)
	c.irq.Register(irq.SourceTick, c.debouncer.OnTick)
	hw.Button.Watch(func() { c.irq.Raise(irq.SourcePinChange) })
	return c
}

// tickLine couples the tick source to its interrupt flag. Stopping the tick
// also clears a tick latched before the stop, so the next window gets the
// full DebounceTicks.
type tickLine struct {
	src *tick.Source
	irq *irq.Controller
}

func (l tickLine) Enable() { l.src.Enable() }

func (l tickLine) Disable() {
	l.src.Disable()
	l.irq.Clear(irq.SourceTick)
}

// Start launches interrupt dispatch and globally enables interrupts.
func (c *Controller) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.done = make(chan struct{})
	go func() {
		defer close(c.done)
		c.irq.Run(ctx)
	}()
	c.irq.Enable()
}

// Close stops interrupt dispatch and the tick source.
func (c *Controller) Close() {
	c.irq.Disable()
	if c.cancel != nil {
		c.cancel()
		<-c.done
		c.cancel = nil
	}
	// Dispatcher has exited, so nothing else can touch the tick source.
	c.tick.Disable()
}

// Reset moves the servo to rest and powers it down. Called once at power-on.
func (c *Controller) Reset() error {
	if err := c.runScript(logic.ResetScript()); err != nil {
		return fmt.Errorf("reset servo: %w", err)
	}
	return nil
}

// Wake is signalled whenever interrupt handlers have run.
func (c *Controller) Wake() <-chan struct{} {
	return c.irq.Wake()
}

// Service takes the confirmed-press flag and, if it was set, runs the
// scripted action with interrupts globally disabled. The action always runs
// to completion; presses during it are lost. Reports whether it ran.
//
// Events are stamped as they happen but handed to OnEvent only after
// interrupts are enabled again, so a slow subscriber never holds up the
// actuators or widens the masked window.
func (c *Controller) Service() (bool, error) {
	if !c.flag.Take() {
		return false, nil
	}
	c.collect()
	c.queue(logic.EventSequenceStart)

	c.irq.Disable()
	err := c.runScript(c.script)
	c.sequences.Add(1)
	c.irq.Enable()

	c.queue(logic.EventSequenceDone)
	c.flush()

	if err != nil {
		return true, fmt.Errorf("run sequence: %w", err)
	}
	return true, nil
}

// Poll reports press outcomes recorded by the debouncer since the last call.
func (c *Controller) Poll() {
	c.collect()
	c.flush()
}

func (c *Controller) collect() {
	counts := c.debouncer.Counts()
	for ; c.reported.Confirmed < counts.Confirmed; c.reported.Confirmed++ {
		c.queue(logic.EventPressConfirmed)
	}
	for ; c.reported.Rejected < counts.Rejected; c.reported.Rejected++ {
		c.queue(logic.EventPressRejected)
	}
}

// State reports DEBOUNCING while the tick source runs.
func (c *Controller) State() logic.State {
	if c.tick.Enabled() {
		return logic.StateDebouncing
	}
	return logic.StateIdle
}

// Counts returns debouncer and sequence counters.
func (c *Controller) Counts() logic.Counts {
	counts := c.debouncer.Counts()
	counts.Sequences = c.sequences.Load()
	return counts
}

// LED reports the indicator state.
func (c *Controller) LED() bool {
	return c.hw.LED.On()
}

// ServoAngle returns the last commanded servo angle.
func (c *Controller) ServoAngle() int {
	return int(c.servoAngle.Load())
}

// InterruptStats returns dispatched and dropped interrupt counts.
func (c *Controller) InterruptStats() (dispatched, dropped uint32) {
	return c.irq.Stats()
}

// PressPending reports whether a confirmed press is waiting to be serviced.
func (c *Controller) PressPending() bool {
	return c.flag.IsSet()
}

func (c *Controller) queue(t logic.EventType) {
	c.outbox = append(c.outbox, logic.Event{
		Timestamp:  c.cfg.Now(),
		Type:       t,
		LED:        c.hw.LED.On(),
		ServoAngle: c.ServoAngle(),
	})
}

func (c *Controller) flush() {
	pending := c.outbox
	c.outbox = nil
	if c.cfg.OnEvent == nil {
		return
	}
	for _, e := range pending {
		c.cfg.OnEvent(e)
	}
}

// runScript executes steps with blocking waits. A failing step is logged and
// the script continues, so the servo still gets a chance to return to rest.
func (c *Controller) runScript(steps []logic.Step) error {
	var errs []error
	apply := func(due []logic.Step) {
		for _, s := range due {
			if err := c.apply(s); err != nil {
				log.Printf("device: %s: %v", s.Action, err)
				errs = append(errs, err)
			}
		}
	}

	seq := logic.NewSequencer(steps)
	apply(seq.Start())
	for seq.Running() {
		wait := seq.Remaining()
		c.cfg.Sleep(wait)
		apply(seq.Advance(wait))
	}
	return errors.Join(errs...)
}

func (c *Controller) apply(s logic.Step) error {
	switch s.Action {
	case logic.ActionLEDToggle:
		return c.hw.LED.Toggle()
	case logic.ActionServoOn:
		return c.hw.Servo.Enable()
	case logic.ActionServoMove:
		if err := c.hw.Servo.Move(s.Angle); err != nil {
			return err
		}
		c.servoAngle.Store(int32(s.Angle))
		return nil
	case logic.ActionServoOff:
		return c.hw.Servo.Disable()
	}
	return fmt.Errorf("unknown action %q", s.Action)
}
