// Package config resolves the controller's runtime configuration from the
// environment. Control thresholds are NOT configured here: those live in the
// settings store and are re-read every tick.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/smart-garden/control-system/internal/relay"
)

// Config holds the process-level wiring for one controller instance.
type Config struct {
	// MQTT broker for state-change events and alerts.
	BrokerHost string
	BrokerPort int
	BrokerUser string
	BrokerPass string
	ClientID   string
	StateTopic string
	AlertTopic string

	// InfluxDB readings store.
	InfluxURL    string
	InfluxToken  string
	InfluxOrg    string
	InfluxBucket string
	Measurement  string

	// SQLite settings store (the dashboard writes the same file).
	SettingsDBPath string

	// GPIO relay wiring (BCM numbering).
	GPIOChip string
	LightPin int
	FanPin   int
	PumpPin  int

	// Control cadence.
	TickPeriod    time.Duration
	WindowMinutes int

	// Health/metrics endpoint; empty disables the server.
	HTTPBind string

	// Log destination directory.
	LogDir string
}

// Load reads the environment and applies defaults. It only errors on values
// that make the process unable to run at all.
func Load() (*Config, error) {
	cfg := &Config{
		BrokerHost: env("MQTT_HOST", "localhost"),
		BrokerPort: envInt("MQTT_PORT", 1883),
		BrokerUser: env("MQTT_USER", ""),
		BrokerPass: env("MQTT_PASSWORD", ""),
		ClientID:   fmt.Sprintf("garden-controller-%s", env("HOSTNAME", "local")),
		StateTopic: env("STATE_TOPIC", "garden/events/state"),
		AlertTopic: env("ALERT_TOPIC", "garden/events/alerts"),

		InfluxURL:    env("INFLUX_URL", "http://localhost:8086"),
		InfluxToken:  env("INFLUX_TOKEN", ""),
		InfluxOrg:    env("INFLUX_ORG", "garden"),
		InfluxBucket: env("INFLUX_BUCKET", "sensor_readings"),
		Measurement:  env("INFLUX_MEASUREMENT", "sensor_readings"),

		SettingsDBPath: env("SETTINGS_DB_PATH", "/var/lib/smart-garden/app.db"),

		GPIOChip: env("GPIO_CHIP", "gpiochip0"),
		LightPin: envInt("LIGHT_RELAY_PIN", relay.DefaultLightPin),
		FanPin:   envInt("FAN_RELAY_PIN", relay.DefaultFanPin),
		PumpPin:  envInt("PUMP_RELAY_PIN", relay.DefaultPumpPin),

		TickPeriod:    time.Duration(envInt("TICK_SECONDS", 60)) * time.Second,
		WindowMinutes: envInt("WINDOW_MINUTES", 10),

		HTTPBind: env("HTTP_BIND", ":9090"),
		LogDir:   env("LOG_DIR", "./logs"),
	}

	if cfg.TickPeriod <= 0 {
		return nil, fmt.Errorf("TICK_SECONDS must be positive, got %v", cfg.TickPeriod)
	}
	if cfg.WindowMinutes <= 0 {
		return nil, fmt.Errorf("WINDOW_MINUTES must be positive, got %d", cfg.WindowMinutes)
	}
	return cfg, nil
}

func env(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}
