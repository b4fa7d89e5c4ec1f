package relay

import (
	"errors"
	"testing"

	"github.com/smart-garden/control-system/internal/model"
)

func TestFakeInitStartsAllOff(t *testing.T) {
	f := NewFake()
	if err := f.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	for _, ch := range model.Channels {
		if f.States[ch] {
			t.Errorf("channel %s should start OFF", ch)
		}
	}
}

func TestFakeSetReportsPreviousState(t *testing.T) {
	f := NewFake()
	f.Init()

	prev, err := f.Set(model.ChannelFan, true)
	if err != nil {
		t.Fatalf("Set: %v", err)
	}
	if prev {
		t.Error("previous state should be OFF")
	}

	prev, err = f.Set(model.ChannelFan, true)
	if err != nil {
		t.Fatalf("Set: %v", err)
	}
	if !prev {
		t.Error("previous state should be ON after the first write")
	}
}

// Applying the same desired state twice records exactly one transition.
func TestFakeIdempotence(t *testing.T) {
	f := NewFake()
	f.Init()

	f.Set(model.ChannelPump, true)
	f.Set(model.ChannelPump, true)

	if len(f.Transitions) != 1 {
		t.Fatalf("expected 1 transition, got %d", len(f.Transitions))
	}
	if f.Transitions[0] != (Transition{Channel: model.ChannelPump, On: true}) {
		t.Errorf("unexpected transition %+v", f.Transitions[0])
	}
}

func TestFakeSetError(t *testing.T) {
	f := NewFake()
	f.Init()
	f.SetErr[model.ChannelLight] = errors.New("write failed")

	_, err := f.Set(model.ChannelLight, true)
	var fault *model.ActuatorFault
	if !errors.As(err, &fault) {
		t.Fatalf("expected ActuatorFault, got %v", err)
	}
	if fault.Channel != model.ChannelLight {
		t.Errorf("fault channel = %s, want light", fault.Channel)
	}
	if f.States[model.ChannelLight] {
		t.Error("failed write must not flip the recorded state")
	}
}

func TestFakeCloseForcesOff(t *testing.T) {
	f := NewFake()
	f.Init()
	f.Set(model.ChannelLight, true)
	f.Set(model.ChannelFan, true)

	f.Close()
	for _, ch := range model.Channels {
		if f.States[ch] {
			t.Errorf("channel %s should be OFF after Close", ch)
		}
	}
	if !f.Closed {
		t.Error("Closed flag not set")
	}
}
