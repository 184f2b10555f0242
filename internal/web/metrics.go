package web

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/sweeney/servo-button/internal/logic"
	"github.com/sweeney/servo-button/internal/status"
)

const namespace = "servo_button"

var (
	descWindows = prometheus.NewDesc(namespace+"_debounce_windows_total",
		"Debounce windows opened by a pin change.", nil, nil)
	descPresses = prometheus.NewDesc(namespace+"_presses_total",
		"Closed debounce windows by outcome.", []string{"outcome"}, nil)
	descSequences = prometheus.NewDesc(namespace+"_sequences_total",
		"Scripted actions run to completion.", nil, nil)
	descInterrupts = prometheus.NewDesc(namespace+"_interrupts_total",
		"Interrupts by fate.", []string{"fate"}, nil)
	descDebouncing = prometheus.NewDesc(namespace+"_debouncing",
		"1 while a debounce window is open.", nil, nil)
	descLED = prometheus.NewDesc(namespace+"_led_on",
		"1 while the indicator LED is lit.", nil, nil)
	descServo = prometheus.NewDesc(namespace+"_servo_angle_degrees",
		"Last commanded servo angle.", nil, nil)
	descMQTT = prometheus.NewDesc(namespace+"_mqtt_connected",
		"1 while the MQTT broker connection is up.", nil, nil)
	descUptime = prometheus.NewDesc(namespace+"_uptime_seconds",
		"Seconds since the daemon started.", nil, nil)
)

// collector exports the tracker snapshot at scrape time.
type collector struct {
	tracker *status.Tracker
}

func newCollector(tracker *status.Tracker) *collector {
	return &collector{tracker: tracker}
}

func (c *collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- descWindows
	ch <- descPresses
	ch <- descSequences
	ch <- descInterrupts
	ch <- descDebouncing
	ch <- descLED
	ch <- descServo
	ch <- descMQTT
	ch <- descUptime
}

func (c *collector) Collect(ch chan<- prometheus.Metric) {
	snap := c.tracker.Snapshot()
	d := snap.Device

	counter := func(desc *prometheus.Desc, v uint32, labels ...string) {
		ch <- prometheus.MustNewConstMetric(desc, prometheus.CounterValue, float64(v), labels...)
	}
	gauge := func(desc *prometheus.Desc, v float64) {
		ch <- prometheus.MustNewConstMetric(desc, prometheus.GaugeValue, v)
	}

	counter(descWindows, d.Counts.Windows)
	counter(descPresses, d.Counts.Confirmed, "confirmed")
	counter(descPresses, d.Counts.Rejected, "rejected")
	counter(descSequences, d.Counts.Sequences)
	counter(descInterrupts, d.Dispatched, "dispatched")
	counter(descInterrupts, d.Dropped, "dropped")
	gauge(descDebouncing, boolFloat(d.State == logic.StateDebouncing))
	gauge(descLED, boolFloat(d.LED))
	gauge(descServo, float64(d.ServoAngle))
	gauge(descMQTT, boolFloat(snap.MQTTConnected))
	gauge(descUptime, snap.Uptime().Seconds())
}

func boolFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
