// Package relay drives the actuator relays with hardware abstraction.
// The real implementation uses the Linux GPIO character device; the fake
// allows testing the control loop without hardware.
package relay

import "github.com/smart-garden/control-system/internal/model"

// Driver applies desired boolean states to the relay channels.
type Driver interface {
	// Init acquires the GPIO resource and forces every channel to a known
	// OFF state. It must be called before Set.
	Init() error

	// Set drives one channel to the desired state and returns the state it
	// previously held, so the caller can tell a transition from a no-op.
	// Setting an already-set state does not touch the hardware. On error
	// the channel's state is unknown until the next successful write.
	Set(ch model.Channel, on bool) (prev bool, err error)

	// Close forces all channels OFF and releases the GPIO resource.
	// Safe to call more than once; the release happens exactly once.
	Close() error
}

// Pins maps channels to BCM line offsets.
type Pins struct {
	Light int
	Fan   int
	Pump  int
}

// Default BCM pin assignment of the original relay board.
const (
	DefaultLightPin = 17
	DefaultFanPin   = 18
	DefaultPumpPin  = 23
)

func (p Pins) offset(ch model.Channel) int {
	switch ch {
	case model.ChannelLight:
		return p.Light
	case model.ChannelFan:
		return p.Fan
	case model.ChannelPump:
		return p.Pump
	}
	return -1
}
