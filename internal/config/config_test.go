package config

import (
	"testing"

	"github.com/smart-garden/control-system/internal/relay"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LightPin != relay.DefaultLightPin {
		t.Errorf("LightPin = %d, want %d", cfg.LightPin, relay.DefaultLightPin)
	}
	if cfg.FanPin != relay.DefaultFanPin {
		t.Errorf("FanPin = %d, want %d", cfg.FanPin, relay.DefaultFanPin)
	}
	if cfg.PumpPin != relay.DefaultPumpPin {
		t.Errorf("PumpPin = %d, want %d", cfg.PumpPin, relay.DefaultPumpPin)
	}
	if cfg.WindowMinutes != 10 {
		t.Errorf("WindowMinutes = %d, want 10", cfg.WindowMinutes)
	}
}

func TestLoadOverridesFromEnv(t *testing.T) {
	t.Setenv("LIGHT_RELAY_PIN", "5")
	t.Setenv("TICK_SECONDS", "30")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LightPin != 5 {
		t.Errorf("LightPin = %d, want 5", cfg.LightPin)
	}
	if got := cfg.TickPeriod.Seconds(); got != 30 {
		t.Errorf("TickPeriod = %vs, want 30s", got)
	}
}

func TestLoadRejectsNonPositiveTick(t *testing.T) {
	t.Setenv("TICK_SECONDS", "0")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for TICK_SECONDS=0")
	}
}
