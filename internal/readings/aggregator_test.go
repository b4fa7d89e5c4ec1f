package readings

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/smart-garden/control-system/internal/model"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestBuildFlux(t *testing.T) {
	flux := buildFlux("sensor_readings", "sensor_readings", 10*time.Minute)

	for _, want := range []string{
		`from(bucket: "sensor_readings")`,
		"range(start: -10m)",
		`r._measurement == "sensor_readings"`,
		`group(columns: ["_field"])`,
		"mean()",
	} {
		if !strings.Contains(flux, want) {
			t.Errorf("flux query missing %q:\n%s", want, flux)
		}
	}
}

func TestBuildFluxClampsWindow(t *testing.T) {
	flux := buildFlux("b", "m", 10*time.Second)
	if !strings.Contains(flux, "range(start: -1m)") {
		t.Errorf("sub-minute window should clamp to 1m:\n%s", flux)
	}
}

func TestAssemble(t *testing.T) {
	avg := assemble(map[string]float64{"temperature": 72.5, "moisture": 41})

	if avg.Temperature == nil || *avg.Temperature != 72.5 {
		t.Errorf("Temperature = %v", avg.Temperature)
	}
	if avg.Moisture == nil || *avg.Moisture != 41 {
		t.Errorf("Moisture = %v", avg.Moisture)
	}
	if avg.Humidity != nil || avg.CO2 != nil {
		t.Error("channels with no samples must be absent")
	}
	if avg.Empty() {
		t.Error("average with present channels must not report empty")
	}
}

func TestAssembleEmptyWindow(t *testing.T) {
	if !assemble(map[string]float64{}).Empty() {
		t.Error("no samples at all must produce an all-absent average")
	}
}

func TestAverageHappyPath(t *testing.T) {
	fetch := func(ctx context.Context, flux string) (map[string]float64, error) {
		return map[string]float64{"temperature": 80, "humidity": 50, "co2": 900, "moisture": 20}, nil
	}
	a := newWithFetch("b", "m", fetch, discard())

	avg, err := a.Average(context.Background(), DefaultWindow)
	if err != nil {
		t.Fatalf("Average: %v", err)
	}
	if avg.Temperature == nil || *avg.Temperature != 80 {
		t.Errorf("Temperature = %v", avg.Temperature)
	}
}

func TestAverageStoreUnavailable(t *testing.T) {
	fetch := func(ctx context.Context, flux string) (map[string]float64, error) {
		return nil, errors.New("connection refused")
	}
	a := newWithFetch("b", "m", fetch, discard())

	avg, err := a.Average(context.Background(), DefaultWindow)
	if !errors.Is(err, model.ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
	if !avg.Empty() {
		t.Error("failed query must yield an all-absent average")
	}
}

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	calls := 0
	fetch := func(ctx context.Context, flux string) (map[string]float64, error) {
		calls++
		return nil, errors.New("connection refused")
	}
	a := newWithFetch("b", "m", fetch, discard())

	for i := 0; i < 5; i++ {
		if _, err := a.Average(context.Background(), DefaultWindow); !errors.Is(err, model.ErrStoreUnavailable) {
			t.Fatalf("call %d: expected ErrStoreUnavailable, got %v", i, err)
		}
	}
	// breaker trips after 3 consecutive failures; later calls short-circuit
	if calls != 3 {
		t.Errorf("expected 3 store calls before the breaker opened, got %d", calls)
	}
}

func TestToFloat(t *testing.T) {
	tests := []struct {
		in   interface{}
		want float64
		ok   bool
	}{
		{float64(1.5), 1.5, true},
		{int64(3), 3, true},
		{7, 7, true},
		{" 2.25 ", 2.25, true},
		{"nope", 0, false},
		{nil, 0, false},
	}
	for _, tc := range tests {
		got, ok := toFloat(tc.in)
		if got != tc.want || ok != tc.ok {
			t.Errorf("toFloat(%v) = (%v, %v), want (%v, %v)", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}
