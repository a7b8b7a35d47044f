package main

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/nerrad567/tellhub/internal/api"
	"github.com/nerrad567/tellhub/internal/device"
	"github.com/nerrad567/tellhub/internal/infrastructure/config"
	"github.com/nerrad567/tellhub/internal/infrastructure/database"
	"github.com/nerrad567/tellhub/internal/infrastructure/influxdb"
	"github.com/nerrad567/tellhub/internal/infrastructure/logging"
	"github.com/nerrad567/tellhub/internal/infrastructure/mqtt"
	"github.com/nerrad567/tellhub/internal/notify"
	"github.com/nerrad567/tellhub/internal/process"
	"github.com/nerrad567/tellhub/internal/protocol"
	"github.com/nerrad567/tellhub/internal/schedule"
	"github.com/nerrad567/tellhub/internal/telemetry"
	"github.com/nerrad567/tellhub/migrations"
)

// run is the server lifecycle, separated from main for testability.
//
// Construction order: logger, database, command runner, device registry,
// schedule service, the two hubs, optional mirrors, warm-up, API server.
// Teardown runs in reverse through the deferred closes.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//   - configPath: Path to config.yaml
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context, configPath string) error {
	log := logging.Default()
	log.Info("starting tellhub",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log = logging.New(cfg.Logging, version)
	log.Info("configuration loaded", "path", configPath, "site", cfg.Site.ID)

	db, err := database.Open(cfg.Database)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	if err := db.Migrate(ctx, migrations.FS); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	log.Info("database ready", "path", db.Path())

	registry := newRegistry(cfg, log)

	scheduleSvc := schedule.NewService(schedule.NewSQLiteRepository(db.DB))
	scheduleSvc.SetLogger(log.Component("schedule"))

	deviceHub, scheduleHub := newHubs(registry, scheduleSvc, log)
	registry.SetNotifier(deviceHub)
	scheduleSvc.SetNotifier(scheduleHub)

	probes := map[string]api.HealthChecker{}
	if cfg.MQTT.Enabled {
		client, err := mqtt.Connect(cfg.MQTT)
		if err != nil {
			return fmt.Errorf("connecting to MQTT: %w", err)
		}
		client.SetLogger(log.Component("mqtt"))
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := client.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		mirror := telemetry.NewMQTTMirror(client)
		deviceHub.Subscribe(mirror)
		scheduleHub.Subscribe(mirror)
		probes["mqtt"] = client
		log.Info("MQTT mirror enabled",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"client_id", cfg.MQTT.Broker.ClientID,
		)
	} else {
		log.Info("MQTT disabled")
	}

	if cfg.InfluxDB.Enabled {
		client, err := influxdb.Connect(cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		client.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := client.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		deviceHub.Subscribe(telemetry.NewInfluxRecorder(client))
		probes["influxdb"] = client
		log.Info("InfluxDB recorder enabled", "url", cfg.InfluxDB.URL, "bucket", cfg.InfluxDB.Bucket)
	} else {
		log.Info("InfluxDB disabled")
	}

	if err := warmUp(ctx, registry, scheduleSvc, log); err != nil {
		return err
	}
	if len(probes) > 0 {
		// Publish the starting state so retained topics are current.
		deviceHub.Notify(ctx)
		scheduleHub.Notify(ctx)
	}

	srv, err := api.New(api.Deps{
		Config:      cfg.API,
		WS:          cfg.WebSocket,
		Session:     cfg.Session,
		Logger:      log,
		Devices:     registry,
		Schedule:    scheduleSvc,
		DeviceHub:   deviceHub,
		ScheduleHub: scheduleHub,
		DB:          db,
		Version:     version,
		Probes:      probes,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if err := srv.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	if err := srv.HealthCheck(ctx); err != nil {
		return fmt.Errorf("API server health check: %w", err)
	}
	log.Info("API server listening", "address", srv.Addr())

	log.Info("initialisation complete, waiting for shutdown signal")
	<-ctx.Done()
	log.Info("shutdown signal received, cleaning up")

	if err := srv.Close(); err != nil {
		log.Error("error closing API server", "error", err)
	}
	log.Info("tellhub stopped")
	return nil
}

// newRegistry builds the device registry on a shell runner.
func newRegistry(cfg *config.Config, log *logging.Logger) *device.Registry {
	runner := process.NewShellRunner(cfg.GetCommandTimeout())
	runner.SetLogger(log.Component("process"))

	registry := device.NewRegistry(runner, device.Config{
		TDTool:         cfg.Telldus.TDTool,
		ConfigFile:     cfg.Telldus.ConfigFile,
		RestartCommand: cfg.Telldus.RestartCommand,
		House:          cfg.Telldus.House,
	})
	registry.SetLogger(log.Component("device"))
	return registry
}

// newHubs creates the device and schedule hubs. The device hub re-lists
// devices on every notification so clients see what telldusd reports.
func newHubs(registry *device.Registry, svc *schedule.Service, log *logging.Logger) (*notify.Hub, *notify.Hub) {
	deviceHub := notify.NewHub("devices", func(ctx context.Context) (protocol.Message, error) {
		devices, err := registry.Refresh(ctx)
		if err != nil {
			return protocol.Message{}, err
		}
		return protocol.DeviceList("", devices)
	})
	deviceHub.SetLogger(log.Component("notify.devices"))

	scheduleHub := notify.NewHub("schedule", func(ctx context.Context) (protocol.Message, error) {
		snap, err := svc.GetSchedule(ctx)
		if err != nil {
			return protocol.Message{}, err
		}
		return protocol.Schedule("", snap.Events)
	})
	scheduleHub.SetLogger(log.Component("notify.schedule"))

	return deviceHub, scheduleHub
}

// warmUp lists devices and loads the schedule concurrently. A failing device
// listing is logged and tolerated so the server can come up before telldusd;
// a failing schedule read means the database is unusable.
func warmUp(ctx context.Context, registry *device.Registry, svc *schedule.Service, log *logging.Logger) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		devices, err := registry.Refresh(gctx)
		if err != nil {
			log.Warn("initial device listing failed", "error", err)
			return nil
		}
		log.Info("device registry initialised", "devices", len(devices))
		return nil
	})

	g.Go(func() error {
		snap, err := svc.GetSchedule(gctx)
		if err != nil {
			return fmt.Errorf("loading schedule: %w", err)
		}
		log.Info("schedule loaded", "events", len(snap.Events))
		return nil
	})

	return g.Wait()
}
