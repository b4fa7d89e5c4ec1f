// Package engine contains the pure control predicates mapping windowed
// sensor averages, threshold settings and wall-clock time to the desired
// actuator states. The package holds no state and performs no I/O; time is
// always passed in so every predicate is testable from literals.
package engine

import (
	"fmt"
	"time"

	"github.com/smart-garden/control-system/internal/model"
)

// LightOn reports whether the grow light should be on at the given instant.
// The schedule is inclusive at both bounds and supports overnight windows:
// with on=20:00 off=06:00 the light runs from evening across midnight.
// Lexical comparison on zero-padded HH:MM matches chronological order
// within a day.
func LightOn(now time.Time, th model.Thresholds) bool {
	cur := now.Format("15:04")
	on, off := th.LightOnTime, th.LightOffTime
	if on <= off {
		return on <= cur && cur <= off
	}
	return cur >= on || cur <= off
}

// FanOn reports whether the ventilation fan should run, along with the
// sub-conditions that fired. Each channel is evaluated independently: an
// absent average never triggers, so total data loss resolves to OFF.
func FanOn(avg model.WindowAverage, th model.Thresholds) (bool, []string) {
	if avg.Empty() {
		return false, nil
	}

	var triggers []string
	if avg.Temperature != nil && *avg.Temperature > th.TempMax {
		triggers = append(triggers, fmt.Sprintf("temperature %.1f > %.1f", *avg.Temperature, th.TempMax))
	}
	if avg.Humidity != nil && *avg.Humidity > th.HumidityMax {
		triggers = append(triggers, fmt.Sprintf("humidity %.1f%% > %.1f%%", *avg.Humidity, th.HumidityMax))
	}
	if avg.CO2 != nil && *avg.CO2 > th.CO2Max {
		triggers = append(triggers, fmt.Sprintf("co2 %.0fppm > %.0fppm", *avg.CO2, th.CO2Max))
	}
	return len(triggers) > 0, triggers
}

// PumpOn reports whether the water pump should run. No moisture reading
// means no watering. The second conjunct is redundant whenever
// MoistureMin <= MoistureMax; it is kept because inverted thresholds must
// behave as the reference system did (effectively comparing against the
// smaller of the two).
func PumpOn(avg model.WindowAverage, th model.Thresholds) bool {
	if avg.Moisture == nil {
		return false
	}
	return *avg.Moisture < th.MoistureMin && *avg.Moisture < th.MoistureMax
}

// Decide composes the three predicates into one tick's desired state.
func Decide(avg model.WindowAverage, th model.Thresholds, now time.Time) model.Decision {
	fan, _ := FanOn(avg, th)
	return model.Decision{
		Light: LightOn(now, th),
		Fan:   fan,
		Pump:  PumpOn(avg, th),
	}
}
