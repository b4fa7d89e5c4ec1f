// Command controller runs the smart-garden control loop: it samples windowed
// sensor averages from the readings store, re-reads thresholds from the
// settings store, and drives the light, fan and pump relays.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/smart-garden/control-system/internal/config"
	"github.com/smart-garden/control-system/internal/controller"
	"github.com/smart-garden/control-system/internal/health"
	"github.com/smart-garden/control-system/internal/logging"
	"github.com/smart-garden/control-system/internal/metrics"
	"github.com/smart-garden/control-system/internal/readings"
	"github.com/smart-garden/control-system/internal/relay"
	"github.com/smart-garden/control-system/internal/settings"
	"github.com/smart-garden/control-system/pkg/mqtt"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, logFile := logging.Init(cfg.LogDir)
	if logFile != nil {
		defer logFile.Close()
	}
	logger.Info("control system starting")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// settings store (shared with the dashboard, read-only here)
	store, err := settings.Open(cfg.SettingsDBPath)
	if err != nil {
		return fmt.Errorf("open settings store: %w", err)
	}
	defer store.Close()
	provider := settings.NewProvider(store, logger.With("component", "settings"))

	// readings store
	influx := influxdb2.NewClient(cfg.InfluxURL, cfg.InfluxToken)
	defer influx.Close()
	aggregator := readings.New(influx, cfg.InfluxOrg, cfg.InfluxBucket, cfg.Measurement,
		logger.With("component", "readings"))

	// event sink; control runs with or without it
	var publisher mqtt.Publisher
	client, err := mqtt.Connect(ctx, &mqtt.Config{
		Host:     cfg.BrokerHost,
		Port:     cfg.BrokerPort,
		User:     cfg.BrokerUser,
		Password: cfg.BrokerPass,
		ClientID: cfg.ClientID,
	})
	if err != nil {
		logger.Warn("event broker unavailable, running without event publishing", "error", err)
	} else {
		publisher = mqtt.NewPublisher(client)
	}

	registry := prometheus.NewRegistry()
	m := metrics.New(registry)

	driver := relay.NewGPIODriver(cfg.GPIOChip, relay.Pins{
		Light: cfg.LightPin,
		Fan:   cfg.FanPin,
		Pump:  cfg.PumpPin,
	})

	loop := controller.New(controller.Config{
		Aggregator: aggregator,
		Settings:   provider,
		Driver:     driver,
		Publisher:  publisher,
		Metrics:    m,
		Logger:     logger.With("component", "controller"),
		TickPeriod: cfg.TickPeriod,
		Window:     time.Duration(cfg.WindowMinutes) * time.Minute,
		StateTopic: cfg.StateTopic,
		AlertTopic: cfg.AlertTopic,
	})

	if cfg.HTTPBind != "" {
		probes := health.Probes{
			MQTTConnected: func() bool { return publisher != nil && publisher.Connected() },
			LastCycle:     loop.LastCycle,
		}
		srv := &http.Server{Addr: cfg.HTTPBind, Handler: health.NewMux(probes, registry)}
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("health server error", "error", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		logger.Info("health endpoint listening", "addr", cfg.HTTPBind)
	}

	if err := loop.Run(ctx); err != nil {
		return err
	}
	logger.Info("control system shutdown complete")
	return nil
}
