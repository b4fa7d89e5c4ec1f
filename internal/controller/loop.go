// Package controller runs the periodic control loop: pull the readings
// window, snapshot the settings, decide, apply. It is the only stateful,
// long-running piece of the system.
package controller

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/smart-garden/control-system/internal/engine"
	"github.com/smart-garden/control-system/internal/metrics"
	"github.com/smart-garden/control-system/internal/model"
	"github.com/smart-garden/control-system/internal/relay"
	"github.com/smart-garden/control-system/pkg/mqtt"
)

// Aggregator supplies the windowed sensor averages.
type Aggregator interface {
	Average(ctx context.Context, window time.Duration) (model.WindowAverage, error)
}

// Settings supplies a fresh thresholds snapshot every tick.
type Settings interface {
	Thresholds() model.Thresholds
}

// Config wires a Loop.
type Config struct {
	Aggregator Aggregator
	Settings   Settings
	Driver     relay.Driver
	Publisher  mqtt.Publisher // nil disables event publishing
	Metrics    *metrics.Metrics
	Logger     *slog.Logger

	TickPeriod time.Duration
	Window     time.Duration
	StateTopic string
	AlertTopic string

	// Now is the wall clock; tests inject a fixed one. Defaults to time.Now.
	Now func() time.Time
}

// Loop owns the control cadence and the lifecycle of the actuator resource.
// Single-writer: all actuator access happens on the Run goroutine.
type Loop struct {
	agg      Aggregator
	settings Settings
	driver   relay.Driver
	pub      mqtt.Publisher
	metrics  *metrics.Metrics
	log      *slog.Logger

	tick       time.Duration
	window     time.Duration
	stateTopic string
	alertTopic string
	now        func() time.Time

	mu        sync.Mutex
	lastCycle time.Time
	lastOK    bool
}

// New builds a Loop; Run does the actual initialization.
func New(cfg Config) *Loop {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Loop{
		agg:        cfg.Aggregator,
		settings:   cfg.Settings,
		driver:     cfg.Driver,
		pub:        cfg.Publisher,
		metrics:    cfg.Metrics,
		log:        cfg.Logger,
		tick:       cfg.TickPeriod,
		window:     cfg.Window,
		stateTopic: cfg.StateTopic,
		alertTopic: cfg.AlertTopic,
		now:        now,
	}
}

// Run drives the loop until ctx is cancelled. Initialization failure is the
// only error it returns: a controller that cannot zero its actuators must
// not run. Once running, per-cycle errors degrade the cycle and never abort
// the loop. On every exit path the actuators are forced OFF and released.
func (l *Loop) Run(ctx context.Context) error {
	if err := l.driver.Init(); err != nil {
		return fmt.Errorf("initialize actuators: %w", err)
	}
	defer func() {
		if err := l.driver.Close(); err != nil {
			l.log.Error("actuator cleanup failed", "error", err)
		} else {
			l.log.Info("actuators forced off and released")
		}
	}()

	l.log.Info("control loop running", "tick", l.tick, "window", l.window)

	ticker := time.NewTicker(l.tick)
	defer ticker.Stop()

	// first cycle immediately, then on the tick boundary
	l.runCycle(ctx)

	for {
		select {
		case <-ctx.Done():
			l.log.Info("shutdown requested, stopping control loop")
			return nil
		case <-ticker.C:
			l.runCycle(ctx)
		}
	}
}

// LastCycle reports when the last cycle finished and whether it was clean.
func (l *Loop) LastCycle() (time.Time, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lastCycle, l.lastOK
}

// runCycle executes one decision cycle. Store and actuator errors are
// recovered locally: missing data biases fan and pump OFF, a faulted
// channel is skipped while the others are still applied.
func (l *Loop) runCycle(ctx context.Context) {
	now := l.now()
	ok := true

	th := l.settings.Thresholds()

	avg, err := l.agg.Average(ctx, l.window)
	if err != nil {
		ok = false
		l.log.Error("readings unavailable, degrading to safe defaults", "error", err)
		l.metrics.StoreErrors.Inc()
		l.alert("store_unavailable", err.Error(), now)
		// avg is all-absent here; the predicates resolve fan/pump OFF
	}
	l.observeAverages(avg)

	light := engine.LightOn(now, th)
	fan, triggers := engine.FanOn(avg, th)
	pump := engine.PumpOn(avg, th)
	decision := model.Decision{Light: light, Fan: fan, Pump: pump}

	reasons := map[model.Channel]string{
		model.ChannelLight: fmt.Sprintf("schedule %s-%s", th.LightOnTime, th.LightOffTime),
		model.ChannelFan:   strings.Join(triggers, ", "),
		model.ChannelPump:  l.pumpReason(avg, th, pump),
	}

	for _, ch := range model.Channels {
		desired := decision.For(ch)
		prev, err := l.driver.Set(ch, desired)
		if err != nil {
			ok = false
			l.log.Error("actuator write failed, channel state unknown until next write",
				"channel", ch, "desired", desired, "error", err)
			l.metrics.ActuatorFaults.WithLabelValues(string(ch)).Inc()
			l.alert("actuator_fault", err.Error(), now)
			continue
		}
		l.metrics.ActuatorState.WithLabelValues(string(ch)).Set(boolGauge(desired))
		if prev != desired {
			l.logTransition(ch, desired, reasons[ch])
			l.metrics.Transitions.WithLabelValues(string(ch)).Inc()
			l.publishState(ch, desired, reasons[ch], now)
		}
	}

	l.metrics.Cycles.Inc()
	if !ok {
		l.metrics.CycleErrors.Inc()
	}

	l.mu.Lock()
	l.lastCycle = now
	l.lastOK = ok
	l.mu.Unlock()
}

// observeAverages exports the present channels to the window-average gauge;
// absent channels keep their previous reading rather than dropping to zero.
func (l *Loop) observeAverages(avg model.WindowAverage) {
	set := func(channel string, v *float64) {
		if v != nil {
			l.metrics.WindowAverage.WithLabelValues(channel).Set(*v)
		}
	}
	set("temperature", avg.Temperature)
	set("humidity", avg.Humidity)
	set("co2", avg.CO2)
	set("moisture", avg.Moisture)
}

func (l *Loop) pumpReason(avg model.WindowAverage, th model.Thresholds, on bool) string {
	if !on || avg.Moisture == nil {
		return ""
	}
	return fmt.Sprintf("moisture %.1f%% below minimum %.1f%%", *avg.Moisture, th.MoistureMin)
}

func (l *Loop) logTransition(ch model.Channel, on bool, reason string) {
	state := "OFF"
	if on {
		state = "ON"
	}
	if reason != "" {
		l.log.Info(fmt.Sprintf("%s turned %s", ch, state), "reason", reason)
		return
	}
	l.log.Info(fmt.Sprintf("%s turned %s", ch, state))
}

func (l *Loop) publishState(ch model.Channel, on bool, reason string, now time.Time) {
	if l.pub == nil {
		return
	}
	evt := model.StateChangeEvent{Channel: ch, On: on, Reason: reason, Timestamp: now.UTC()}
	if err := l.pub.Publish(l.stateTopic, evt); err != nil {
		l.log.Warn("state event publish failed", "channel", ch, "error", err)
	}
}

func (l *Loop) alert(kind, message string, now time.Time) {
	if l.pub == nil {
		return
	}
	a := model.Alert{Kind: kind, Message: message, Timestamp: now.UTC()}
	if err := l.pub.Publish(l.alertTopic, a); err != nil {
		l.log.Warn("alert publish failed", "kind", kind, "error", err)
	}
}

func boolGauge(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
