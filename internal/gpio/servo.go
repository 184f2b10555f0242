//go:build linux

package gpio

import (
	"fmt"

	"github.com/stianeikeland/go-rpio"

	"github.com/sweeney/servo-button/internal/logic"
)

// pwmScale multiplies the 82-count servo frame so the PWM clock lands inside
// the range the BCM2835 clock divider can produce.
const pwmScale = 100

// servoFrameHz is the servo refresh rate (20 ms frame).
const servoFrameHz = 50

// RealServo drives a hobby servo from the hardware PWM block via go-rpio.
// The pulse width is the same register value the logic package computes,
// scaled onto the PWM range.
type RealServo struct {
	pin     rpio.Pin
	enabled bool
}

// NewRealServo maps the GPIO registers. pin must be PWM capable (BCM 12,
// 13, 18 or 19). The servo starts disabled.
func NewRealServo(pin int) (*RealServo, error) {
	if err := rpio.Open(); err != nil {
		return nil, fmt.Errorf("open gpio memory: %w", err)
	}
	return &RealServo{pin: rpio.Pin(pin)}, nil
}

// Enable switches the pin to PWM mode with a 20 ms frame.
func (s *RealServo) Enable() error {
	s.pin.Mode(rpio.Pwm)
	s.pin.Freq(servoFrameHz * logic.ServoFrameCounts * pwmScale)
	s.enabled = true
	return nil
}

// Move sets the servo position.
func (s *RealServo) Move(angle int) error {
	if !s.enabled {
		return fmt.Errorf("move servo to %d: servo disabled", angle)
	}
	duty := uint32(logic.PulseWidth(angle) * pwmScale)
	s.pin.DutyCycle(duty, logic.ServoFrameCounts*pwmScale)
	return nil
}

// Disable stops PWM and leaves the pin as a floating input.
func (s *RealServo) Disable() error {
	s.pin.Input()
	s.pin.PullOff()
	s.enabled = false
	return nil
}

// Close disables the servo and unmaps the registers.
func (s *RealServo) Close() error {
	s.Disable()
	if err := rpio.Close(); err != nil {
		return fmt.Errorf("close gpio memory: %w", err)
	}
	return nil
}
