package gpio

import (
	"errors"
	"sync"
	"sync/atomic"
)

// FakeButton is a test double whose level is set by the test.
// Edges call the watcher synchronously on the caller's goroutine.
type FakeButton struct {
	asserted atomic.Bool
	samples  atomic.Int32

	mu       sync.Mutex
	onChange func()

	// Closed tracks if Close was called
	Closed bool
}

// NewFakeButton creates a released FakeButton.
func NewFakeButton() *FakeButton {
	return &FakeButton{}
}

// Asserted returns the scripted level.
func (b *FakeButton) Asserted() bool {
	b.samples.Add(1)
	return b.asserted.Load()
}

// Watch registers the edge callback.
func (b *FakeButton) Watch(fn func()) {
	b.mu.Lock()
	b.onChange = fn
	b.mu.Unlock()
}

// Press asserts the button and fires an edge.
func (b *FakeButton) Press() {
	b.setLevel(true)
}

// Release deasserts the button and fires an edge.
func (b *FakeButton) Release() {
	b.setLevel(false)
}

// Bounce fires n edges alternating the level, ending asserted if n is odd
// relative to the current level.
func (b *FakeButton) Bounce(n int) {
	for i := 0; i < n; i++ {
		b.setLevel(!b.asserted.Load())
	}
}

// Samples returns how many times Asserted was called.
func (b *FakeButton) Samples() int {
	return int(b.samples.Load())
}

func (b *FakeButton) setLevel(asserted bool) {
	b.asserted.Store(asserted)
	b.mu.Lock()
	fn := b.onChange
	b.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// Close marks the button as closed.
func (b *FakeButton) Close() error {
	b.Closed = true
	return nil
}

// FakeLED records writes to the indicator.
type FakeLED struct {
	mu      sync.Mutex
	on      bool
	toggles int

	// SetError, if set, will be returned by Set and Toggle.
	SetError error

	Closed bool
}

// NewFakeLED creates an off FakeLED.
func NewFakeLED() *FakeLED {
	return &FakeLED{}
}

// Set records the new state.
func (l *FakeLED) Set(on bool) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.SetError != nil {
		return l.SetError
	}
	l.on = on
	return nil
}

// Toggle inverts the state and counts the toggle.
func (l *FakeLED) Toggle() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.SetError != nil {
		return l.SetError
	}
	l.on = !l.on
	l.toggles++
	return nil
}

// On returns the current state.
func (l *FakeLED) On() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.on
}

// Toggles returns the number of toggles since creation.
func (l *FakeLED) Toggles() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.toggles
}

// Close marks the LED as closed.
func (l *FakeLED) Close() error {
	l.Closed = true
	return nil
}

// ServoCommand is one recorded servo call.
type ServoCommand struct {
	Op    string // "ENABLE", "MOVE", "DISABLE"
	Angle int    // MOVE only
}

// FakeServo records servo commands.
type FakeServo struct {
	mu       sync.Mutex
	commands []ServoCommand
	enabled  bool
	angle    int

	// MoveError, if set, will be returned by Move.
	MoveError error

	Closed bool
}

// NewFakeServo creates a disabled FakeServo at angle 0.
func NewFakeServo() *FakeServo {
	return &FakeServo{}
}

// Enable records the call.
func (s *FakeServo) Enable() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commands = append(s.commands, ServoCommand{Op: "ENABLE"})
	s.enabled = true
	return nil
}

// Move records the call. Moving a disabled servo is an error, as on hardware.
func (s *FakeServo) Move(angle int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.MoveError != nil {
		return s.MoveError
	}
	if !s.enabled {
		return errors.New("servo disabled")
	}
	s.commands = append(s.commands, ServoCommand{Op: "MOVE", Angle: angle})
	s.angle = angle
	return nil
}

// Disable records the call.
func (s *FakeServo) Disable() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commands = append(s.commands, ServoCommand{Op: "DISABLE"})
	s.enabled = false
	return nil
}

// Commands returns a copy of the recorded commands.
func (s *FakeServo) Commands() []ServoCommand {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]ServoCommand(nil), s.commands...)
}

// Enabled reports whether PWM is running.
func (s *FakeServo) Enabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enabled
}

// Angle returns the last commanded angle.
func (s *FakeServo) Angle() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.angle
}

// Close marks the servo as closed.
func (s *FakeServo) Close() error {
	s.Closed = true
	return nil
}

// Reset clears recorded commands.
func (s *FakeServo) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commands = nil
	s.MoveError = nil
	s.Closed = false
}
