// Package settings resolves named control parameters from the shared
// system_settings table. The web dashboard owns writes; the controller only
// reads, once per tick, so edits take effect on the next cycle without any
// cache invalidation.
package settings

import (
	"database/sql"
	"log/slog"
	"strconv"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/smart-garden/control-system/internal/model"
)

// Documented defaults, substituted whenever a setting is absent, malformed
// or the store is unreachable.
const (
	DefaultMoistureMin  = 30.0
	DefaultMoistureMax  = 80.0
	DefaultTempMax      = 75.0 // °F
	DefaultHumidityMax  = 80.0 // %
	DefaultCO2Max       = 1500.0
	DefaultLightOnTime  = "06:00"
	DefaultLightOffTime = "20:00"
)

// lookup is the narrow store contract the provider needs. The SQLite Store
// satisfies it; tests substitute a fake.
type lookup interface {
	Lookup(category, key string) (string, error)
}

// Store reads the system_settings table of the dashboard database.
type Store struct {
	db *sql.DB
}

// Open opens the settings database read-only from this process's
// perspective. Opening succeeds even while the dashboard holds the file;
// SQLite serializes access per statement.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// Lookup returns the raw stored value for (category, key).
// sql.ErrNoRows means the setting was never created.
func (s *Store) Lookup(category, key string) (string, error) {
	var value string
	err := s.db.QueryRow(
		`SELECT value FROM system_settings WHERE setting_type = ? AND key = ?`,
		category, key,
	).Scan(&value)
	if err != nil {
		return "", err
	}
	return value, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Provider resolves typed settings with defaults. It performs no validation
// beyond type coercion: out-of-range values (negative thresholds, inverted
// min/max) are returned as-is and the decision predicates tolerate them.
type Provider struct {
	store lookup
	log   *slog.Logger
}

// NewProvider wraps a settings store. logger may not be nil.
func NewProvider(store lookup, logger *slog.Logger) *Provider {
	return &Provider{store: store, log: logger}
}

// Float returns the setting parsed as float64, or def when the row is
// absent, unreadable or not a number.
func (p *Provider) Float(category, key string, def float64) float64 {
	raw, err := p.store.Lookup(category, key)
	if err != nil {
		if err != sql.ErrNoRows {
			p.log.Debug("settings lookup failed, using default",
				"category", category, "key", key, "default", def, "error", err)
		}
		return def
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		p.log.Warn("malformed setting, using default",
			"category", category, "key", key, "value", raw, "default", def,
			"error", model.ErrMalformedSetting)
		return def
	}
	return f
}

// TimeOfDay returns the setting as a zero-padded "HH:MM" string, or def
// when absent or not a valid time of day.
func (p *Provider) TimeOfDay(category, key, def string) string {
	raw, err := p.store.Lookup(category, key)
	if err != nil {
		if err != sql.ErrNoRows {
			p.log.Debug("settings lookup failed, using default",
				"category", category, "key", key, "default", def, "error", err)
		}
		return def
	}
	if _, err := time.Parse("15:04", raw); err != nil {
		p.log.Warn("malformed time-of-day setting, using default",
			"category", category, "key", key, "value", raw, "default", def,
			"error", model.ErrMalformedSetting)
		return def
	}
	return raw
}

// Thresholds assembles the per-tick snapshot of all control parameters.
func (p *Provider) Thresholds() model.Thresholds {
	return model.Thresholds{
		MoistureMin:  p.Float("moisture", "min", DefaultMoistureMin),
		MoistureMax:  p.Float("moisture", "max", DefaultMoistureMax),
		TempMax:      p.Float("temperature", "max", DefaultTempMax),
		HumidityMax:  p.Float("humidity", "max", DefaultHumidityMax),
		CO2Max:       p.Float("co2", "max", DefaultCO2Max),
		LightOnTime:  p.TimeOfDay("light", "on_time", DefaultLightOnTime),
		LightOffTime: p.TimeOfDay("light", "off_time", DefaultLightOffTime),
	}
}
