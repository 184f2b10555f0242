//go:build !linux

package gpio

import "errors"

var errUnsupported = errors.New("gpio: not supported on this platform (requires Linux)")

// RealButton is not available on non-Linux platforms.
type RealButton struct{}

// NewRealButton returns an error on non-Linux platforms.
func NewRealButton(pin int) (*RealButton, error) { return nil, errUnsupported }

func (b *RealButton) Asserted() bool  { return false }
func (b *RealButton) Watch(fn func()) {}
func (b *RealButton) Close() error    { return nil }

// RealLED is not available on non-Linux platforms.
type RealLED struct{}

// NewRealLED returns an error on non-Linux platforms.
func NewRealLED(pin int) (*RealLED, error) { return nil, errUnsupported }

func (l *RealLED) Toggle() error     { return errUnsupported }
func (l *RealLED) Set(on bool) error { return errUnsupported }
func (l *RealLED) On() bool          { return false }
func (l *RealLED) Close() error      { return nil }

// RealServo is not available on non-Linux platforms.
type RealServo struct{}

// NewRealServo returns an error on non-Linux platforms.
func NewRealServo(pin int) (*RealServo, error) { return nil, errUnsupported }

func (s *RealServo) Enable() error        { return errUnsupported }
func (s *RealServo) Move(angle int) error { return errUnsupported }
func (s *RealServo) Disable() error       { return errUnsupported }
func (s *RealServo) Close() error         { return nil }
