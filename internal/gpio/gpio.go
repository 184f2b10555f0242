// Package gpio provides the button, LED and servo with hardware abstraction.
// The real implementations use the Linux GPIO character device and the
// BCM2835 PWM block. The fake implementations allow testing without hardware.
package gpio

// Button is the active-low push-button input.
type Button interface {
	// Asserted reports whether the button is physically pressed.
	// The raw line is inverted: raw low = pressed.
	Asserted() bool

	// Watch registers fn to be called on every edge, rising or falling.
	// fn runs on the event goroutine and must not block.
	Watch(fn func())

	// Close releases GPIO resources.
	Close() error
}

// LED is the indicator output.
type LED interface {
	Toggle() error
	Set(on bool) error
	On() bool
	Close() error
}

// Servo is the PWM-driven hobby servo.
type Servo interface {
	// Enable starts the PWM output.
	Enable() error
	// Move sets the position in degrees, 0 to 180.
	Move(angle int) error
	// Disable stops PWM and releases the pin so the servo draws no holding current.
	Disable() error
	Close() error
}

// Pin definitions (BCM numbering)
const (
	DefaultPinButton = 17
	DefaultPinLED    = 27
	DefaultPinServo  = 18 // PWM0
)

// Chip is the GPIO character device used by the real implementations.
const Chip = "gpiochip0"
