// Command servo-button debounces a push-button and runs a timed servo
// open/close cycle for each confirmed press, publishing activity to MQTT.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sweeney/servo-button/internal/device"
	"github.com/sweeney/servo-button/internal/gpio"
	"github.com/sweeney/servo-button/internal/logic"
	"github.com/sweeney/servo-button/internal/mqtt"
	"github.com/sweeney/servo-button/internal/status"
	"github.com/sweeney/servo-button/internal/web"
)

// options holds the parsed command line.
type options struct {
	pinButton  int
	pinLED     int
	pinServo   int
	hold       time.Duration
	poll       time.Duration
	heartbeat  time.Duration
	broker     string
	httpAddr   string
	printState bool
}

func main() {
	var o options
	flag.IntVar(&o.pinButton, "pin-button", gpio.DefaultPinButton, "BCM pin number for the push-button (active low)")
	flag.IntVar(&o.pinLED, "pin-led", gpio.DefaultPinLED, "BCM pin number for the indicator LED")
	flag.IntVar(&o.pinServo, "pin-servo", gpio.DefaultPinServo, "BCM pin number for the servo (must be PWM capable)")
	flag.DurationVar(&o.hold, "hold", logic.DefaultHold, "How long the servo stays open (must be positive)")
	flag.DurationVar(&o.poll, "poll", 250*time.Millisecond, "Status refresh interval (must be positive)")
	flag.DurationVar(&o.heartbeat, "heartbeat", 15*time.Minute, "Heartbeat interval (0 to disable)")
	flag.StringVar(&o.broker, "broker", "tcp://192.168.1.200:1883", "MQTT broker address")
	flag.StringVar(&o.httpAddr, "http", ":80", "HTTP status address (empty to disable)")
	flag.BoolVar(&o.printState, "print-state", false, "Print current button state and exit")
	flag.Parse()

	if err := run(o); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

// validate rejects settings the daemon cannot run with.
func (o options) validate() error {
	if o.hold <= 0 {
		return fmt.Errorf("-hold must be positive, got %v", o.hold)
	}
	if o.poll <= 0 {
		return fmt.Errorf("-poll must be positive, got %v", o.poll)
	}
	if o.heartbeat < 0 {
		return fmt.Errorf("-heartbeat must not be negative, got %v", o.heartbeat)
	}
	return nil
}

func run(o options) error {
	if err := o.validate(); err != nil {
		return err
	}

	button, err := gpio.NewRealButton(o.pinButton)
	if err != nil {
		return fmt.Errorf("init button: %w", err)
	}
	defer button.Close()

	if o.printState {
		fmt.Printf("Button: %s\n", pressedString(button.Asserted()))
		return nil
	}

	led, err := gpio.NewRealLED(o.pinLED)
	if err != nil {
		return fmt.Errorf("init led: %w", err)
	}
	defer led.Close()

	servo, err := gpio.NewRealServo(o.pinServo)
	if err != nil {
		return fmt.Errorf("init servo: %w", err)
	}
	defer servo.Close()

	publisher, err := mqtt.NewRealPublisher(o.broker)
	if err != nil {
		return fmt.Errorf("init mqtt: %w", err)
	}
	defer publisher.Close()

	tracker := status.NewTracker(time.Now(), status.Config{
		TickMs:        logic.TickPeriod.Milliseconds(),
		DebounceTicks: logic.DebounceTicks,
		HoldMs:        o.hold.Milliseconds(),
		HeartbeatMs:   o.heartbeat.Milliseconds(),
		PinButton:     o.pinButton,
		PinLED:        o.pinLED,
		PinServo:      o.pinServo,
		Broker:        o.broker,
		HTTPPort:      o.httpAddr,
	})
	if net := readNetworkInfo(); net != nil {
		tracker.SetNetwork(net)
	}

	ctrl := device.New(device.Config{
		Hold:    o.hold,
		OnEvent: publishEvent(publisher),
	}, device.Hardware{Button: button, LED: led, Servo: servo})
	ctrl.Start()
	defer ctrl.Close()

	if err := ctrl.Reset(); err != nil {
		return err
	}

	// Publish startup event with full status snapshot
	updateTracker(tracker, ctrl, publisher)
	snap := tracker.Snapshot()
	startupEvent := mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "STARTUP",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
	}
	if err := publisher.PublishSystem(startupEvent); err != nil {
		log.Printf("failed to publish startup event: %v", err)
	} else {
		log.Printf("published startup event")
	}

	if o.httpAddr != "" {
		srv := web.New(o.httpAddr, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("http status server listening on %s", o.httpAddr)
	}

	log.Printf("started: button=%d led=%d servo=%d hold=%v broker=%s heartbeat=%v",
		o.pinButton, o.pinLED, o.pinServo, o.hold, o.broker, o.heartbeat)

	ticker := time.NewTicker(o.poll)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	return runLoop(ctrl, publisher, publisher, tracker, o.heartbeat, time.Now, ticker.C, sigCh)
}

// publishEvent returns the controller's event sink. It runs on the main
// loop goroutine; publish failures are logged and never stop the device.
func publishEvent(publisher mqtt.Publisher) func(logic.Event) {
	return func(event logic.Event) {
		log.Printf("event: %s (led=%s servo=%d)", event.Type, pressedOnOff(event.LED), event.ServoAngle)
		if err := publisher.Publish(event); err != nil {
			log.Printf("publish error: %v", err)
		}
	}
}

// runLoop is the main loop: it services confirmed presses, refreshes status on
// each tick, and publishes heartbeats until a signal arrives. A scripted
// action that has started always completes before a signal is handled.
func runLoop(ctrl *device.Controller, publisher mqtt.Publisher, mqttStatus mqtt.ConnectionStatus, tracker *status.Tracker, heartbeat time.Duration, now func() time.Time, tick <-chan time.Time, sig <-chan os.Signal) error {
	hb := logic.NewHeartbeat(heartbeat, now())

	for {
		ran, err := ctrl.Service()
		if err != nil {
			log.Printf("sequence error: %v", err)
		}
		if ran && tracker != nil {
			updateTracker(tracker, ctrl, mqttStatus)
		}

		select {
		case s := <-sig:
			log.Printf("received %v, shutting down", s)
			signalName := "UNKNOWN"
			if s == syscall.SIGINT {
				signalName = "SIGINT"
			} else if s == syscall.SIGTERM {
				signalName = "SIGTERM"
			}
			event := mqtt.SystemEvent{
				Timestamp: now(),
				Event:     "SHUTDOWN",
				Reason:    signalName,
				Retained:  true,
			}
			if tracker != nil {
				updateTracker(tracker, ctrl, mqttStatus)
				snap := tracker.Snapshot()
				event.RawPayload = status.FormatStatusEvent(snap, "SHUTDOWN", signalName)
			}
			if err := publisher.PublishSystem(event); err != nil {
				log.Printf("failed to publish shutdown event: %v", err)
			} else {
				log.Printf("published shutdown event")
			}
			return nil

		case <-ctrl.Wake():
			// Interrupt handlers ran; service the flag at the top of the loop.

		case <-tick:
			t := now()
			ctrl.Poll()
			if tracker != nil {
				updateTracker(tracker, ctrl, mqttStatus)
			}

			if hbData := hb.Check(t, ctrl.Counts()); hbData != nil {
				log.Printf("heartbeat: uptime=%v windows=%d confirmed=%d rejected=%d sequences=%d",
					hbData.Uptime, hbData.Counts.Windows, hbData.Counts.Confirmed, hbData.Counts.Rejected, hbData.Counts.Sequences)

				hbEvent := mqtt.SystemEvent{
					Timestamp: hbData.Timestamp,
					Event:     "HEARTBEAT",
				}
				if tracker != nil {
					// Refresh network info for heartbeat
					if net := readNetworkInfo(); net != nil {
						tracker.SetNetwork(net)
					}
					hbEvent.RawPayload = status.FormatStatusEvent(tracker.Snapshot(), "HEARTBEAT", "")
				}
				if err := publisher.PublishSystem(hbEvent); err != nil {
					log.Printf("heartbeat publish error: %v", err)
				}
			}
		}
	}
}

func updateTracker(tracker *status.Tracker, ctrl *device.Controller, mqttStatus mqtt.ConnectionStatus) {
	dispatched, dropped := ctrl.InterruptStats()
	tracker.Update(status.Device{
		State:        ctrl.State(),
		LED:          ctrl.LED(),
		ServoAngle:   ctrl.ServoAngle(),
		PressPending: ctrl.PressPending(),
		Counts:       ctrl.Counts(),
		Dispatched:   dispatched,
		Dropped:      dropped,
	})
	if mqttStatus != nil {
		tracker.SetMQTTConnected(mqttStatus.IsConnected())
	}
}

// pi-helper env var names (written to /run/pi-helper.env).
const (
	envNetworkType       = "NETWORK_TYPE"
	envNetworkIP         = "NETWORK_IP"
	envNetworkStatus     = "NETWORK_STATUS"
	envNetworkGateway    = "NETWORK_GATEWAY"
	envNetworkWifiStatus = "NETWORK_WIFI_STATUS"
	envNetworkWifiSSID   = "NETWORK_WIFI_SSID"
)

func readNetworkInfo() *status.NetworkInfo {
	s := os.Getenv(envNetworkStatus)
	if s == "" {
		return nil
	}
	return &status.NetworkInfo{
		Type:       os.Getenv(envNetworkType),
		IP:         os.Getenv(envNetworkIP),
		Status:     s,
		Gateway:    os.Getenv(envNetworkGateway),
		WifiStatus: os.Getenv(envNetworkWifiStatus),
		SSID:       os.Getenv(envNetworkWifiSSID),
	}
}

func pressedString(asserted bool) string {
	if asserted {
		return "PRESSED"
	}
	return "RELEASED"
}

func pressedOnOff(on bool) string {
	if on {
		return "ON"
	}
	return "OFF"
}
