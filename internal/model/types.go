package model

import "time"

// Channel identifies one of the three controlled actuators.
type Channel string

const (
	ChannelLight Channel = "light"
	ChannelFan   Channel = "fan"
	ChannelPump  Channel = "pump"
)

// Channels lists the actuator channels in the order the control loop
// applies them.
var Channels = []Channel{ChannelLight, ChannelFan, ChannelPump}

// WindowAverage holds the per-channel arithmetic means over the most recent
// readings window. A nil field means the underlying sensor produced no
// samples inside the window; all fields are nil when the window is empty.
type WindowAverage struct {
	Temperature *float64
	Humidity    *float64
	CO2         *float64
	Moisture    *float64
}

// Empty reports whether no channel reported at all inside the window.
func (w WindowAverage) Empty() bool {
	return w.Temperature == nil && w.Humidity == nil && w.CO2 == nil && w.Moisture == nil
}

// Thresholds is the per-tick snapshot of the user-editable control
// parameters. Values are taken as-is from the settings store; out-of-range
// combinations (e.g. MoistureMin >= MoistureMax) are tolerated by the
// decision predicates, not rejected here.
type Thresholds struct {
	MoistureMin  float64
	MoistureMax  float64
	TempMax      float64
	HumidityMax  float64
	CO2Max       float64
	LightOnTime  string // "HH:MM", 24h
	LightOffTime string // "HH:MM", 24h
}

// Decision is the desired actuator state computed for one tick. It is a
// plain value with no identity; the control loop compares it against the
// driver's previous state to detect transitions.
type Decision struct {
	Light bool
	Fan   bool
	Pump  bool
}

// For returns the desired state of a single channel.
func (d Decision) For(ch Channel) bool {
	switch ch {
	case ChannelLight:
		return d.Light
	case ChannelFan:
		return d.Fan
	case ChannelPump:
		return d.Pump
	}
	return false
}

// StateChangeEvent is published when an actuator channel transitions.
type StateChangeEvent struct {
	Channel   Channel   `json:"channel"`
	On        bool      `json:"on"`
	Reason    string    `json:"reason,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Alert is published for recovered errors so operators can see degraded
// cycles without tailing the log.
type Alert struct {
	Kind      string    `json:"kind"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}
