package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string       `json:"event,omitempty"`
	Reason        string       `json:"reason,omitempty"`
	State         string       `json:"state"`
	LED           string       `json:"led"`
	Servo         int          `json:"servo"`
	PressPending  bool         `json:"press_pending"`
	UptimeSeconds int64        `json:"uptime_seconds"`
	StartTime     string       `json:"start_time"`
	Timestamp     string       `json:"timestamp"`
	MQTT          MQTTStatus   `json:"mqtt"`
	Counts        CountsJSON   `json:"counts"`
	Interrupts    IRQJSON      `json:"interrupts"`
	Network       *NetworkJSON `json:"network,omitempty"`
	Config        ConfigJSON   `json:"config"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// CountsJSON is the JSON representation of activity counts.
type CountsJSON struct {
	Windows   uint32 `json:"windows"`
	Confirmed uint32 `json:"confirmed"`
	Rejected  uint32 `json:"rejected"`
	Sequences uint32 `json:"sequences"`
}

// IRQJSON is the JSON representation of interrupt statistics.
type IRQJSON struct {
	Dispatched uint32 `json:"dispatched"`
	Dropped    uint32 `json:"dropped"`
}

// NetworkJSON is the JSON representation of network info.
type NetworkJSON struct {
	Type       string `json:"type"`
	IP         string `json:"ip"`
	Status     string `json:"status"`
	Gateway    string `json:"gateway"`
	WifiStatus string `json:"wifi_status"`
	SSID       string `json:"ssid"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	TickMs        int64  `json:"tick_ms"`
	DebounceTicks int    `json:"debounce_ticks"`
	HoldMs        int64  `json:"hold_ms"`
	HeartbeatMs   int64  `json:"heartbeat_ms"`
	PinButton     int    `json:"pin_button"`
	PinLED        int    `json:"pin_led"`
	PinServo      int    `json:"pin_servo"`
	Broker        string `json:"broker"`
	HTTPPort      string `json:"http_port"`
}

func onOff(b bool) string {
	if b {
		return "ON"
	}
	return "OFF"
}

func buildInner(snap Snapshot) StatusInner {
	state := string(snap.Device.State)
	if state == "" {
		state = "UNKNOWN"
	}
	d := snap.Device

	inner := StatusInner{
		State:         state,
		LED:           onOff(d.LED),
		Servo:         d.ServoAngle,
		PressPending:  d.PressPending,
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Counts: CountsJSON{
			Windows:   d.Counts.Windows,
			Confirmed: d.Counts.Confirmed,
			Rejected:  d.Counts.Rejected,
			Sequences: d.Counts.Sequences,
		},
		Interrupts: IRQJSON{Dispatched: d.Dispatched, Dropped: d.Dropped},
		Config: ConfigJSON{
			TickMs:        snap.Config.TickMs,
			DebounceTicks: snap.Config.DebounceTicks,
			HoldMs:        snap.Config.HoldMs,
			HeartbeatMs:   snap.Config.HeartbeatMs,
			PinButton:     snap.Config.PinButton,
			PinLED:        snap.Config.PinLED,
			PinServo:      snap.Config.PinServo,
			Broker:        snap.Config.Broker,
			HTTPPort:      snap.Config.HTTPPort,
		},
	}
	if n := snap.Network; n != nil {
		inner.Network = &NetworkJSON{
			Type:       n.Type,
			IP:         n.IP,
			Status:     n.Status,
			Gateway:    n.Gateway,
			WifiStatus: n.WifiStatus,
			SSID:       n.SSID,
		}
	}
	return inner
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	data, _ := json.MarshalIndent(StatusJSON{Status: buildInner(snap)}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
