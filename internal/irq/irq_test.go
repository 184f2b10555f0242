package irq

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestRaiseWhileDisabledIsDropped(t *testing.T) {
	c := New()
	ran := 0
	c.Register(SourcePinChange, func() { ran++ })

	c.Raise(SourcePinChange)
	if n := c.dispatch(); n != 0 {
		t.Errorf("expected no handlers, got %d", n)
	}
	if ran != 0 {
		t.Errorf("handler ran while disabled")
	}
	if _, dropped := c.Stats(); dropped != 1 {
		t.Errorf("expected 1 dropped, got %d", dropped)
	}
}

func TestRaiseCoalesces(t *testing.T) {
	c := New()
	c.Enable()
	ran := 0
	c.Register(SourceTick, func() { ran++ })

	c.Raise(SourceTick)
	c.Raise(SourceTick)
	c.Raise(SourceTick)
	c.dispatch()

	if ran != 1 {
		t.Errorf("expected pending bit to coalesce to 1 run, got %d", ran)
	}
}

func TestDispatchPriority(t *testing.T) {
	c := New()
	c.Enable()
	var order []Source
	c.Register(SourcePinChange, func() { order = append(order, SourcePinChange) })
	c.Register(SourceTick, func() { order = append(order, SourceTick) })

	c.Raise(SourceTick)
	c.Raise(SourcePinChange)
	c.dispatch()

	if len(order) != 2 || order[0] != SourcePinChange || order[1] != SourceTick {
		t.Errorf("unexpected order: %v", order)
	}
}

func TestDisableDiscardsLatched(t *testing.T) {
	c := New()
	c.Enable()
	ran := 0
	c.Register(SourcePinChange, func() { ran++ })

	c.Raise(SourcePinChange)
	c.Disable()
	c.dispatch()

	if ran != 0 {
		t.Error("latched interrupt ran after Disable")
	}
}

func TestHandlerRaisingDuringDispatch(t *testing.T) {
	c := New()
	c.Enable()
	ticks := 0
	c.Register(SourcePinChange, func() { c.Raise(SourceTick) })
	c.Register(SourceTick, func() { ticks++ })

	c.Raise(SourcePinChange)
	if n := c.dispatch(); n != 2 {
		t.Errorf("expected 2 handlers, got %d", n)
	}
	if ticks != 1 {
		t.Errorf("expected tick handler to run, got %d", ticks)
	}
}

func TestRunSerializesHandlers(t *testing.T) {
	c := New()
	c.Enable()

	var active, maxActive atomic.Int32
	var total atomic.Int32
	handler := func() {
		n := active.Add(1)
		if n > maxActive.Load() {
			maxActive.Store(n)
		}
		time.Sleep(50 * time.Microsecond)
		active.Add(-1)
		total.Add(1)
	}
	c.Register(SourcePinChange, handler)
	c.Register(SourceTick, handler)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		c.Run(ctx)
		close(done)
	}()

	var wg sync.WaitGroup
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func(src Source) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				c.Raise(src)
			}
		}(Source(g % 2))
	}
	wg.Wait()

	deadline := time.Now().Add(2 * time.Second)
	for total.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	cancel()
	<-done

	if maxActive.Load() > 1 {
		t.Errorf("handlers overlapped: max active %d", maxActive.Load())
	}
	if total.Load() == 0 {
		t.Error("no handlers ran")
	}
}

func TestRunSignalsWake(t *testing.T) {
	c := New()
	c.Enable()
	c.Register(SourcePinChange, func() {})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go c.Run(ctx)

	c.Raise(SourcePinChange)
	select {
	case <-c.Wake():
	case <-time.After(2 * time.Second):
		t.Fatal("no wake after dispatch")
	}
}

func TestSourceString(t *testing.T) {
	if SourcePinChange.String() != "PIN_CHANGE" {
		t.Errorf("got %q", SourcePinChange.String())
	}
	if SourceTick.String() != "TICK" {
		t.Errorf("got %q", SourceTick.String())
	}
	if Source(99).String() != "UNKNOWN" {
		t.Errorf("got %q", Source(99).String())
	}
}

func TestClearDiscardsPending(t *testing.T) {
	c := New()
	c.Enable()
	var pin, tick int
	c.Register(SourcePinChange, func() { pin++ })
	c.Register(SourceTick, func() { tick++ })

	c.Raise(SourceTick)
	c.Raise(SourcePinChange)
	c.Clear(SourceTick)
	c.dispatch()

	if tick != 0 {
		t.Errorf("cleared tick ran %d times", tick)
	}
	if pin != 1 {
		t.Errorf("expected pin change to run once, got %d", pin)
	}
	if _, dropped := c.Stats(); dropped != 0 {
		t.Errorf("clear must not count as dropped, got %d", dropped)
	}
}
