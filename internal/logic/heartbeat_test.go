package logic

import (
	"testing"
	"time"
)

func TestHeartbeatDisabled(t *testing.T) {
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	h := NewHeartbeat(0, start)
	if hb := h.Check(start.Add(24*time.Hour), Counts{}); hb != nil {
		t.Errorf("expected nil with interval 0, got %+v", hb)
	}
}

func TestHeartbeatInterval(t *testing.T) {
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	h := NewHeartbeat(time.Minute, start)

	if hb := h.Check(start.Add(59*time.Second), Counts{}); hb != nil {
		t.Error("heartbeat before interval")
	}

	counts := Counts{Windows: 3, Confirmed: 2, Rejected: 1, Sequences: 2}
	hb := h.Check(start.Add(time.Minute), counts)
	if hb == nil {
		t.Fatal("expected heartbeat at interval")
	}
	if hb.Uptime != time.Minute {
		t.Errorf("expected uptime 1m, got %v", hb.Uptime)
	}
	if hb.Counts != counts {
		t.Errorf("expected counts %+v, got %+v", counts, hb.Counts)
	}

	if hb := h.Check(start.Add(90*time.Second), counts); hb != nil {
		t.Error("heartbeat repeated within interval")
	}
	if hb := h.Check(start.Add(2*time.Minute), counts); hb == nil {
		t.Error("expected second heartbeat")
	}
}
