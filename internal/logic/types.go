// Package logic contains the pure control logic for the servo button.
// This package has NO external dependencies (no GPIO, MQTT, OS, or time.Sleep).
// Hardware is reached only through the small interfaces declared here.
package logic

import "time"

// Timing and actuator constants. The numeric behaviour matches the
// original controller exactly; tests depend on these values.
const (
	// TickPeriod is the period of the debounce tick.
	TickPeriod = time.Millisecond

	// DebounceTicks is the debounce window length in ticks.
	DebounceTicks = 10

	// BlinkDelay is the pause after each LED toggle in a blink burst.
	BlinkDelay = 200 * time.Millisecond

	// DefaultHold is how long the servo stays open. The original firmware
	// delays 7000 ms while its comment claims 70 seconds; the coded value wins.
	DefaultHold = 7000 * time.Millisecond

	// ServoSettle is the wait after moving the servo back to rest.
	ServoSettle = 1000 * time.Millisecond

	// OpenAngle and RestAngle are the two servo positions used by the script.
	OpenAngle = 90
	RestAngle = 0
)

// Servo pulse-width register constants.
const (
	// ServoPulseBase is the register value for 0 degrees.
	ServoPulseBase = 4
	// ServoPulseSpan is the register span over the full angle range.
	ServoPulseSpan = 5
	// ServoMaxAngle is the largest accepted angle.
	ServoMaxAngle = 180
	// ServoFrameCounts is the number of register counts in one 20 ms frame.
	ServoFrameCounts = 82
)

// State is the debouncer state.
type State string

const (
	StateIdle       State = "IDLE"
	StateDebouncing State = "DEBOUNCING"
)

// TickSource is the periodic interrupt source driving the debouncer.
// Both calls must be idempotent.
type TickSource interface {
	Enable()
	Disable()
}

// PinSampler reads the button level at the end of a debounce window.
// Asserted reports true while the button is physically pressed.
type PinSampler interface {
	Asserted() bool
}

// EventType identifies something worth publishing.
type EventType string

const (
	EventPressConfirmed EventType = "PRESS_CONFIRMED"
	EventPressRejected  EventType = "PRESS_REJECTED"
	EventSequenceStart  EventType = "SEQUENCE_START"
	EventSequenceDone   EventType = "SEQUENCE_DONE"
)

// Event is a button or sequence event to be published.
type Event struct {
	Timestamp  time.Time
	Type       EventType
	LED        bool
	ServoAngle int
}

// Counts tracks debouncer and sequence activity since startup.
type Counts struct {
	Windows   uint32
	Confirmed uint32
	Rejected  uint32
	Sequences uint32
}

// HeartbeatData contains information for a heartbeat event.
type HeartbeatData struct {
	Timestamp time.Time
	Uptime    time.Duration
	Counts    Counts
}
