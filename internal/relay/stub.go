//go:build !linux

package relay

import (
	"errors"

	"github.com/smart-garden/control-system/internal/model"
)

// GPIODriver is not available on non-Linux platforms.
type GPIODriver struct{}

// NewGPIODriver returns a driver whose Init always fails off-Linux.
func NewGPIODriver(chipName string, pins Pins) *GPIODriver {
	return &GPIODriver{}
}

func (d *GPIODriver) Init() error {
	return errors.New("relay: gpio not supported on this platform (requires Linux)")
}

func (d *GPIODriver) Set(ch model.Channel, on bool) (bool, error) {
	return false, errors.New("relay: gpio not supported")
}

func (d *GPIODriver) Close() error { return nil }
