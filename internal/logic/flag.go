package logic

import "sync/atomic"

// PressFlag is the confirmed-press handoff between interrupt context and
// the main loop. Only the tick handler calls Set; only the main loop calls
// Take. The zero value is an unset flag.
type PressFlag struct {
	v atomic.Bool
}

// Set raises the flag. Producer side.
func (f *PressFlag) Set() {
	f.v.Store(true)
}

// Take clears the flag and reports whether it was set. Consumer side.
func (f *PressFlag) Take() bool {
	return f.v.CompareAndSwap(true, false)
}

// IsSet reports the flag without clearing it.
func (f *PressFlag) IsSet() bool {
	return f.v.Load()
}
