package relay

import (
	"github.com/smart-garden/control-system/internal/model"
)

// Transition records one observed state change on the fake driver.
type Transition struct {
	Channel model.Channel
	On      bool
}

// Fake is a test double tracking relay state in memory.
type Fake struct {
	// States holds the current state per channel after Init.
	States map[model.Channel]bool

	// Transitions accumulates every state change (not no-ops), in order.
	Transitions []Transition

	// SetErr, when set for a channel, makes Set fail for that channel.
	SetErr map[model.Channel]error

	// InitErr, if set, is returned by Init.
	InitErr error

	Initialized bool
	Closed      bool
	CloseCount  int
}

// NewFake returns a fake driver with all channels OFF once initialized.
func NewFake() *Fake {
	return &Fake{
		States: make(map[model.Channel]bool, len(model.Channels)),
		SetErr: make(map[model.Channel]error),
	}
}

func (f *Fake) Init() error {
	if f.InitErr != nil {
		return f.InitErr
	}
	for _, ch := range model.Channels {
		f.States[ch] = false
	}
	f.Initialized = true
	return nil
}

func (f *Fake) Set(ch model.Channel, on bool) (bool, error) {
	prev := f.States[ch]
	if err := f.SetErr[ch]; err != nil {
		return prev, &model.ActuatorFault{Channel: ch, Err: err}
	}
	if prev != on {
		f.States[ch] = on
		f.Transitions = append(f.Transitions, Transition{Channel: ch, On: on})
	}
	return prev, nil
}

func (f *Fake) Close() error {
	for _, ch := range model.Channels {
		f.States[ch] = false
	}
	f.Closed = true
	f.CloseCount++
	return nil
}
