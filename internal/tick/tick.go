// Package tick provides the periodic tick source used by the debouncer.
// The tick only runs while a debounce window is open.
package tick

import (
	"sync/atomic"
	"time"
)

// Source fires raise once per period while enabled.
//
// Enable and Disable are called from interrupt context only, so they are
// never concurrent with each other. Enabled may be read from anywhere.
type Source struct {
	period time.Duration
	raise  func()

	enabled atomic.Bool
	stop    chan struct{}
	exited  chan struct{}
	starts  atomic.Uint32
}

// New creates a disabled tick source. raise is called from the ticker
// goroutine and must not block.
func New(period time.Duration, raise func()) *Source {
	return &Source{
		period: period,
		raise:  raise,
	}
}

// Enable starts the periodic tick. It is a no-op when already running.
func (s *Source) Enable() {
	if s.enabled.Load() {
		return
	}
	stop := make(chan struct{})
	exited := make(chan struct{})
	s.stop, s.exited = stop, exited
	s.enabled.Store(true)
	s.starts.Add(1)
	go s.run(stop, exited)
}

// Disable stops the periodic tick and returns once the ticker goroutine has
// exited, so raise is never called after Disable returns. A tick raised just
// before Disable may still be pending with the caller. It is a no-op when
// already stopped. raise must not block, or Disable can deadlock.
func (s *Source) Disable() {
	if !s.enabled.Load() {
		return
	}
	s.enabled.Store(false)
	close(s.stop)
	<-s.exited
	s.stop, s.exited = nil, nil
}

// Enabled reports whether the tick is running.
func (s *Source) Enabled() bool {
	return s.enabled.Load()
}

// Starts returns how many times the tick has been started.
func (s *Source) Starts() uint32 {
	return s.starts.Load()
}

func (s *Source) run(stop <-chan struct{}, exited chan<- struct{}) {
	defer close(exited)
	t := time.NewTicker(s.period)
	defer t.Stop()
	for {
		select {
		case <-stop:
			return
		case <-t.C:
			s.raise()
		}
	}
}
