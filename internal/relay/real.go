//go:build linux

package relay

import (
	"fmt"
	"sync"

	"github.com/warthog618/go-gpiocdev"

	"github.com/smart-garden/control-system/internal/model"
)

// GPIODriver drives relay channels through the GPIO character device.
type GPIODriver struct {
	chipName string
	pins     Pins

	chip  *gpiocdev.Chip
	lines map[model.Channel]*gpiocdev.Line

	// state is the last value written per channel; known is false after a
	// failed write, forcing the next Set to hit the hardware again.
	state map[model.Channel]bool
	known map[model.Channel]bool

	closeOnce sync.Once
	closeErr  error
}

// NewGPIODriver creates a driver for the given chip and pin assignment.
// No hardware is touched until Init.
func NewGPIODriver(chipName string, pins Pins) *GPIODriver {
	return &GPIODriver{
		chipName: chipName,
		pins:     pins,
		lines:    make(map[model.Channel]*gpiocdev.Line, len(model.Channels)),
		state:    make(map[model.Channel]bool, len(model.Channels)),
		known:    make(map[model.Channel]bool, len(model.Channels)),
	}
}

// Init requests every relay line as an output initialized LOW, so all
// actuators start OFF regardless of prior pin state.
func (d *GPIODriver) Init() error {
	chip, err := gpiocdev.NewChip(d.chipName)
	if err != nil {
		return fmt.Errorf("open gpio chip %s: %w", d.chipName, err)
	}
	d.chip = chip

	for _, ch := range model.Channels {
		line, err := chip.RequestLine(d.pins.offset(ch), gpiocdev.AsOutput(0))
		if err != nil {
			d.releaseLines()
			chip.Close()
			d.chip = nil
			return fmt.Errorf("request %s line %d: %w", ch, d.pins.offset(ch), err)
		}
		d.lines[ch] = line
		d.state[ch] = false
		d.known[ch] = true
	}
	return nil
}

// Set drives one channel. A write that matches the last known state is a
// hardware no-op.
func (d *GPIODriver) Set(ch model.Channel, on bool) (bool, error) {
	line, ok := d.lines[ch]
	if !ok {
		return false, &model.ActuatorFault{Channel: ch, Err: fmt.Errorf("line not initialized")}
	}

	prev := d.state[ch]
	if d.known[ch] && prev == on {
		return prev, nil
	}

	value := 0
	if on {
		value = 1
	}
	if err := line.SetValue(value); err != nil {
		d.known[ch] = false
		return prev, &model.ActuatorFault{Channel: ch, Err: err}
	}
	d.state[ch] = on
	d.known[ch] = true
	return prev, nil
}

// Close forces all channels OFF and releases the lines and chip exactly
// once, on every exit path.
func (d *GPIODriver) Close() error {
	d.closeOnce.Do(func() {
		var errs []error
		for _, ch := range model.Channels {
			if line, ok := d.lines[ch]; ok {
				if err := line.SetValue(0); err != nil {
					errs = append(errs, fmt.Errorf("force %s off: %w", ch, err))
				}
			}
		}
		d.releaseLines()
		if d.chip != nil {
			if err := d.chip.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close chip: %w", err))
			}
			d.chip = nil
		}
		if len(errs) > 0 {
			d.closeErr = fmt.Errorf("relay close: %v", errs)
		}
	})
	return d.closeErr
}

func (d *GPIODriver) releaseLines() {
	for ch, line := range d.lines {
		_ = line.Close()
		delete(d.lines, ch)
	}
}
