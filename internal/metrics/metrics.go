// Package metrics exposes the controller's Prometheus instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics bundles the controller's collectors.
type Metrics struct {
	Cycles         prometheus.Counter
	CycleErrors    prometheus.Counter
	StoreErrors    prometheus.Counter
	Transitions    *prometheus.CounterVec
	ActuatorFaults *prometheus.CounterVec
	ActuatorState  *prometheus.GaugeVec
	WindowAverage  *prometheus.GaugeVec
}

// New registers the collectors on reg and returns them.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Cycles: factory.NewCounter(prometheus.CounterOpts{
			Name: "garden_control_cycles_total",
			Help: "Control cycles executed.",
		}),
		CycleErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "garden_control_cycle_errors_total",
			Help: "Control cycles that degraded due to a recovered error.",
		}),
		StoreErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "garden_readings_store_errors_total",
			Help: "Readings store queries that failed or were short-circuited.",
		}),
		Transitions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "garden_actuator_transitions_total",
			Help: "Actuator state transitions applied.",
		}, []string{"channel"}),
		ActuatorFaults: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "garden_actuator_faults_total",
			Help: "Failed hardware writes per channel.",
		}, []string{"channel"}),
		ActuatorState: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "garden_actuator_state",
			Help: "Current actuator state per channel (1 = on).",
		}, []string{"channel"}),
		WindowAverage: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "garden_window_average",
			Help: "Windowed sensor averages by telemetry channel.",
		}, []string{"channel"}),
	}
}
