package web

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sweeney/servo-button/internal/logic"
	"github.com/sweeney/servo-button/internal/status"
)

func newTestServer(t *testing.T) (*httptest.Server, *status.Tracker) {
	t.Helper()
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cfg := status.Config{
		TickMs:        1,
		DebounceTicks: 10,
		HoldMs:        7000,
		HeartbeatMs:   900000,
		PinButton:     17,
		PinLED:        27,
		PinServo:      18,
		Broker:        "tcp://192.168.1.200:1883",
		HTTPPort:      ":80",
	}
	tr := status.NewTracker(start, cfg)
	srv := New(":0", tr)
	ts := httptest.NewServer(srv.httpServer.Handler)
	t.Cleanup(ts.Close)
	return ts, tr
}

func get(t *testing.T, url string) (*http.Response, string) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, string(body)
}

func TestJSONEndpoint(t *testing.T) {
	ts, tr := newTestServer(t)
	tr.Update(status.Device{
		State:      logic.StateIdle,
		LED:        true,
		ServoAngle: 90,
		Counts:     logic.Counts{Windows: 5, Confirmed: 2, Rejected: 3, Sequences: 2},
	})
	tr.SetMQTTConnected(true)

	resp, body := get(t, ts.URL+"/index.json")
	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type: got %q, want application/json", ct)
	}

	var sj status.StatusJSON
	if err := json.Unmarshal([]byte(body), &sj); err != nil {
		t.Fatalf("decode JSON: %v", err)
	}
	if sj.Status.State != "IDLE" {
		t.Errorf("State: got %q, want IDLE", sj.Status.State)
	}
	if sj.Status.LED != "ON" {
		t.Errorf("LED: got %q, want ON", sj.Status.LED)
	}
	if sj.Status.Servo != 90 {
		t.Errorf("Servo: got %d, want 90", sj.Status.Servo)
	}
	if sj.Status.Counts.Confirmed != 2 || sj.Status.Counts.Sequences != 2 {
		t.Errorf("Counts: got %+v", sj.Status.Counts)
	}
	if !sj.Status.MQTT.Connected {
		t.Error("expected MQTT.Connected=true")
	}
	if sj.Status.Config.HoldMs != 7000 {
		t.Errorf("Config.HoldMs: got %d, want 7000", sj.Status.Config.HoldMs)
	}
}

func TestHTMLEndpointRoot(t *testing.T) {
	ts, tr := newTestServer(t)
	tr.Update(status.Device{State: logic.StateDebouncing, Counts: logic.Counts{Sequences: 4}})

	resp, body := get(t, ts.URL+"/")
	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type: got %q, want text/html", ct)
	}
	if !strings.Contains(body, "DEBOUNCING") {
		t.Error("page should show the debouncer state")
	}
	if !strings.Contains(body, "<tr><th>Sequences</th><td>4</td></tr>") {
		t.Error("page should show the sequence count")
	}
}

func TestHTMLEndpointIndexHTML(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, _ := get(t, ts.URL+"/index.html")
	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
}

func TestNotFoundForUnknownPath(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, _ := get(t, ts.URL+"/nonexistent")
	if resp.StatusCode != 404 {
		t.Errorf("status: got %d, want 404", resp.StatusCode)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	ts, tr := newTestServer(t)
	tr.Update(status.Device{
		State:      logic.StateDebouncing,
		ServoAngle: 90,
		Counts:     logic.Counts{Windows: 7, Confirmed: 3, Rejected: 4, Sequences: 3},
		Dispatched: 120,
		Dropped:    2,
	})

	resp, body := get(t, ts.URL+"/metrics")
	if resp.StatusCode != 200 {
		t.Fatalf("status: got %d, want 200", resp.StatusCode)
	}

	want := []string{
		"servo_button_debounce_windows_total 7",
		`servo_button_presses_total{outcome="confirmed"} 3`,
		`servo_button_presses_total{outcome="rejected"} 4`,
		"servo_button_sequences_total 3",
		`servo_button_interrupts_total{fate="dispatched"} 120`,
		`servo_button_interrupts_total{fate="dropped"} 2`,
		"servo_button_debouncing 1",
		"servo_button_led_on 0",
		"servo_button_servo_angle_degrees 90",
		"servo_button_mqtt_connected 0",
	}
	for _, w := range want {
		if !strings.Contains(body, w) {
			t.Errorf("metrics missing %q", w)
		}
	}
}

func TestStateChangesReflectedInResponse(t *testing.T) {
	ts, tr := newTestServer(t)

	_, body1 := get(t, ts.URL+"/index.json")
	var sj1 status.StatusJSON
	json.Unmarshal([]byte(body1), &sj1)
	if sj1.Status.Counts.Sequences != 0 {
		t.Error("expected no sequences initially")
	}

	tr.Update(status.Device{State: logic.StateIdle, Counts: logic.Counts{Sequences: 1}})
	tr.SetMQTTConnected(true)

	_, body2 := get(t, ts.URL+"/index.json")
	var sj2 status.StatusJSON
	json.Unmarshal([]byte(body2), &sj2)
	if sj2.Status.Counts.Sequences != 1 {
		t.Errorf("Sequences: got %d, want 1", sj2.Status.Counts.Sequences)
	}
	if !sj2.Status.MQTT.Connected {
		t.Error("expected MQTT connected after update")
	}
}
