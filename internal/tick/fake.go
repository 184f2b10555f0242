package tick

// Fake is a tick source for tests. It records calls and never ticks on its
// own; tests deliver ticks by calling the handler directly.
type Fake struct {
	On       bool
	Enables  int
	Disables int
}

// Enable marks the fake as running.
func (f *Fake) Enable() {
	f.On = true
	f.Enables++
}

// Disable marks the fake as stopped.
func (f *Fake) Disable() {
	f.On = false
	f.Disables++
}

// Enabled reports whether the fake is running.
func (f *Fake) Enabled() bool {
	return f.On
}
