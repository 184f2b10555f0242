package tick

import (
	"sync/atomic"
	"testing"
	"time"
)

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(time.Millisecond)
	}
}

func TestSourceStartsDisabled(t *testing.T) {
	var n atomic.Int32
	s := New(time.Millisecond, func() { n.Add(1) })

	time.Sleep(20 * time.Millisecond)
	if s.Enabled() {
		t.Error("new source should be disabled")
	}
	if n.Load() != 0 {
		t.Errorf("disabled source ticked %d times", n.Load())
	}
}

func TestSourceTicksWhileEnabled(t *testing.T) {
	var n atomic.Int32
	s := New(time.Millisecond, func() { n.Add(1) })

	s.Enable()
	defer s.Disable()
	if !s.Enabled() {
		t.Fatal("expected enabled")
	}
	waitFor(t, "5 ticks", func() bool { return n.Load() >= 5 })
}

func TestSourceStopsOnDisable(t *testing.T) {
	var n atomic.Int32
	s := New(time.Millisecond, func() { n.Add(1) })

	s.Enable()
	waitFor(t, "first tick", func() bool { return n.Load() >= 1 })
	s.Disable()
	if s.Enabled() {
		t.Fatal("expected disabled")
	}

	before := n.Load()
	time.Sleep(30 * time.Millisecond)
	if after := n.Load(); after != before {
		t.Errorf("ticks after disable: %d -> %d", before, after)
	}
}

func TestSourceEnableDisableIdempotent(t *testing.T) {
	s := New(time.Millisecond, func() {})

	s.Enable()
	s.Enable()
	if s.Starts() != 1 {
		t.Errorf("expected 1 start, got %d", s.Starts())
	}
	s.Disable()
	s.Disable()
	if s.Enabled() {
		t.Error("expected disabled")
	}

	s.Enable()
	defer s.Disable()
	if s.Starts() != 2 {
		t.Errorf("expected 2 starts, got %d", s.Starts())
	}
}

func TestFake(t *testing.T) {
	f := &Fake{}
	f.Enable()
	if !f.Enabled() || f.Enables != 1 {
		t.Errorf("after Enable: %+v", f)
	}
	f.Disable()
	if f.Enabled() || f.Disables != 1 {
		t.Errorf("after Disable: %+v", f)
	}
}

func TestSourceNoRaiseAfterDisableReturns(t *testing.T) {
	var disabled atomic.Bool
	var late atomic.Int32
	s := New(100*time.Microsecond, func() {
		if disabled.Load() {
			late.Add(1)
		}
		// Widen the gap between the ticker firing and the raise landing.
		time.Sleep(200 * time.Microsecond)
	})

	for i := 0; i < 50; i++ {
		s.Enable()
		time.Sleep(time.Millisecond)
		s.Disable()
		disabled.Store(true)
		time.Sleep(300 * time.Microsecond)
		disabled.Store(false)
	}

	if n := late.Load(); n != 0 {
		t.Errorf("raise called %d times after Disable returned", n)
	}
}
