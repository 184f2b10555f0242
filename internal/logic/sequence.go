package logic

import "time"

// Action is one hardware operation in a scripted sequence.
type Action string

const (
	ActionLEDToggle Action = "LED_TOGGLE"
	ActionServoOn   Action = "SERVO_ON"
	ActionServoMove Action = "SERVO_MOVE"
	ActionServoOff  Action = "SERVO_OFF"
)

// Step is an action followed by a wait before the next step is due.
// Angle is only used by ActionServoMove.
type Step struct {
	Action Action
	Angle  int
	Wait   time.Duration
}

// Script returns the action run for one confirmed press: four LED toggles,
// open the servo and hold, four more toggles, then return to rest and
// power the servo down.
func Script(hold time.Duration) []Step {
	steps := blink()
	steps = append(steps,
		Step{Action: ActionServoOn},
		Step{Action: ActionServoMove, Angle: OpenAngle, Wait: hold},
	)
	steps = append(steps, blink()...)
	return append(steps, ResetScript()...)
}

// ResetScript moves the servo to rest and powers it down. It runs once at
// power-on and closes every Script.
func ResetScript() []Step {
	return []Step{
		{Action: ActionServoOn},
		{Action: ActionServoMove, Angle: RestAngle, Wait: ServoSettle},
		{Action: ActionServoOff},
	}
}

func blink() []Step {
	return []Step{
		{Action: ActionLEDToggle, Wait: BlinkDelay},
		{Action: ActionLEDToggle, Wait: BlinkDelay},
		{Action: ActionLEDToggle, Wait: BlinkDelay},
		{Action: ActionLEDToggle},
	}
}

// Duration returns the total wait time of steps.
func Duration(steps []Step) time.Duration {
	var d time.Duration
	for _, s := range steps {
		d += s.Wait
	}
	return d
}

// Sequencer is a timed-step state machine over a fixed list of steps.
// It performs no I/O: callers feed elapsed time in and apply the steps
// that fall due. Not safe for concurrent use.
type Sequencer struct {
	steps     []Step
	next      int
	remaining time.Duration
	running   bool
}

// NewSequencer creates a stopped sequencer over steps.
func NewSequencer(steps []Step) *Sequencer {
	return &Sequencer{steps: steps}
}

// Start rewinds the sequencer and returns the steps due immediately.
func (s *Sequencer) Start() []Step {
	s.next = 0
	s.remaining = 0
	s.running = true
	return s.Advance(0)
}

// Advance moves time forward by elapsed and returns the steps that fell due,
// in order. Overshoot carries into the next wait so cumulative timing is exact.
func (s *Sequencer) Advance(elapsed time.Duration) []Step {
	if !s.running {
		return nil
	}
	s.remaining -= elapsed

	var due []Step
	for s.remaining <= 0 {
		if s.next == len(s.steps) {
			s.running = false
			break
		}
		step := s.steps[s.next]
		s.next++
		due = append(due, step)
		s.remaining += step.Wait
	}
	return due
}

// Remaining returns the time until the next step is due, or 0 when stopped.
func (s *Sequencer) Remaining() time.Duration {
	if !s.running {
		return 0
	}
	return s.remaining
}

// Running reports whether steps are still pending.
func (s *Sequencer) Running() bool {
	return s.running
}
