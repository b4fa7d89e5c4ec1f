// Package readings computes windowed averages of the telemetry channels
// from the InfluxDB readings store. The store is append-only from the
// sensor writer's side; this package only queries.
package readings

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/sony/gobreaker"

	"github.com/smart-garden/control-system/internal/model"
)

// DefaultWindow is the averaging window used when no override is configured.
const DefaultWindow = 10 * time.Minute

// fetchFunc runs the Flux query and returns per-field means. Split out so
// the breaker and assembly logic are testable without an Influx server.
type fetchFunc func(ctx context.Context, flux string) (map[string]float64, error)

// Aggregator produces one WindowAverage per tick. Queries run behind a
// circuit breaker: once the store has failed repeatedly the breaker opens
// and Average fails fast with ErrStoreUnavailable instead of waiting on a
// dead connection every cycle.
type Aggregator struct {
	bucket      string
	measurement string
	fetch       fetchFunc
	breaker     *gobreaker.CircuitBreaker
	log         *slog.Logger
}

// New builds an aggregator over an InfluxDB client.
func New(client influxdb2.Client, org, bucket, measurement string, logger *slog.Logger) *Aggregator {
	queryAPI := client.QueryAPI(org)
	fetch := func(ctx context.Context, flux string) (map[string]float64, error) {
		res, err := queryAPI.Query(ctx, flux)
		if err != nil {
			return nil, err
		}
		defer res.Close()

		means := make(map[string]float64, 4)
		for res.Next() {
			field, _ := res.Record().ValueByKey("_field").(string)
			if field == "" {
				continue
			}
			if v, ok := toFloat(res.Record().Value()); ok {
				means[field] = v
			}
		}
		if res.Err() != nil {
			return nil, res.Err()
		}
		return means, nil
	}
	return newWithFetch(bucket, measurement, fetch, logger)
}

func newWithFetch(bucket, measurement string, fetch fetchFunc, logger *slog.Logger) *Aggregator {
	return &Aggregator{
		bucket:      bucket,
		measurement: measurement,
		fetch:       fetch,
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "readings-store",
			Timeout: 30 * time.Second,
			ReadyToTrip: func(c gobreaker.Counts) bool {
				return c.ConsecutiveFailures >= 3
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				logger.Warn("readings store breaker state change",
					"from", from.String(), "to", to.String())
			},
		}),
		log: logger,
	}
}

// Average returns the per-channel means over the trailing window. A channel
// with no samples inside the window is absent in the result; an unreachable
// store (or an open breaker) yields ErrStoreUnavailable and a zero-value
// average the caller can still feed to the OFF-biased predicates.
func (a *Aggregator) Average(ctx context.Context, window time.Duration) (model.WindowAverage, error) {
	out, err := a.breaker.Execute(func() (interface{}, error) {
		return a.fetch(ctx, buildFlux(a.bucket, a.measurement, window))
	})
	if err != nil {
		return model.WindowAverage{}, fmt.Errorf("%w: %v", model.ErrStoreUnavailable, err)
	}
	return assemble(out.(map[string]float64)), nil
}

// buildFlux renders the window-mean query. Each field is averaged
// independently so a row with partial data still contributes the channels
// it has.
func buildFlux(bucket, measurement string, window time.Duration) string {
	minutes := int(window.Minutes())
	if minutes < 1 {
		minutes = 1
	}
	return fmt.Sprintf(`
from(bucket: %q)
  |> range(start: -%dm)
  |> filter(fn: (r) => r._measurement == %q)
  |> filter(fn: (r) => r._field == "temperature" or r._field == "humidity" or r._field == "co2" or r._field == "moisture")
  |> group(columns: ["_field"])
  |> mean()
`, bucket, minutes, measurement)
}

func assemble(means map[string]float64) model.WindowAverage {
	var avg model.WindowAverage
	if v, ok := means["temperature"]; ok {
		avg.Temperature = &v
	}
	if v, ok := means["humidity"]; ok {
		avg.Humidity = &v
	}
	if v, ok := means["co2"]; ok {
		avg.CO2 = &v
	}
	if v, ok := means["moisture"]; ok {
		avg.Moisture = &v
	}
	return avg
}

func toFloat(v interface{}) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int64:
		return float64(t), true
	case int:
		return float64(t), true
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(t), 64); err == nil {
			return f, true
		}
	}
	return 0, false
}
