// Air Control Core - room air-quality controller
//
// This is the main entry point of the controller. It subscribes to room
// pollutant telemetry over MQTT, classifies air quality, decides window and
// ventilation targets from current weather, and drives the room actuators.
// Outside opening hours a periodic sweep closes windows left open.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	_ "github.com/nerrad567/aircontrol-core/migrations"

	"github.com/nerrad567/aircontrol-core/internal/actuator"
	"github.com/nerrad567/aircontrol-core/internal/advisory"
	"github.com/nerrad567/aircontrol-core/internal/api"
	"github.com/nerrad567/aircontrol-core/internal/history"
	"github.com/nerrad567/aircontrol-core/internal/infrastructure/config"
	"github.com/nerrad567/aircontrol-core/internal/infrastructure/database"
	"github.com/nerrad567/aircontrol-core/internal/infrastructure/influxdb"
	"github.com/nerrad567/aircontrol-core/internal/infrastructure/logging"
	"github.com/nerrad567/aircontrol-core/internal/infrastructure/mqtt"
	"github.com/nerrad567/aircontrol-core/internal/ingest"
	"github.com/nerrad567/aircontrol-core/internal/occupancy"
	"github.com/nerrad567/aircontrol-core/internal/registry"
	"github.com/nerrad567/aircontrol-core/internal/room"
	"github.com/nerrad567/aircontrol-core/internal/telemetry"
	"github.com/nerrad567/aircontrol-core/internal/weather"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

// historyPruneInterval is how often expired state-change rows are deleted.
const historyPruneInterval = time.Hour

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context) error {
	log := logging.Default()
	log.Info("starting Air Control Core",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Registry client and broker discovery
	var registryClient *registry.Client
	if cfg.Registry.Enabled {
		registryClient = registry.NewClient(cfg.Registry.URL, cfg.RegistryTimeout())
		if cfg.Registry.DiscoverBroker {
			cfg.MQTT = discoverBroker(ctx, registryClient, cfg.MQTT, log)
		}
	} else {
		log.Info("registry disabled, rooms will not be actuated")
	}

	// Open database
	db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database connected", "path", cfg.Database.Path)

	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	// Connect to MQTT broker
	mqttClient, err := mqtt.Connect(cfg.MQTT)
	if err != nil {
		return fmt.Errorf("connecting to MQTT: %w", err)
	}
	defer func() {
		log.Info("disconnecting from MQTT")
		if closeErr := mqttClient.Close(); closeErr != nil {
			log.Error("error closing MQTT", "error", closeErr)
		}
	}()
	log.Info("MQTT connected",
		"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
		"client_id", cfg.MQTT.Broker.ClientID,
	)
	mqttClient.SetLogger(log.Component("mqtt"))
	mqttClient.SetOnConnect(func() {
		log.Info("MQTT reconnected")
	})
	mqttClient.SetOnDisconnect(func(err error) {
		log.Warn("MQTT disconnected", "error", err)
	})

	// Connect to InfluxDB (optional)
	var influxClient *influxdb.Client
	if cfg.InfluxDB.Enabled {
		influxClient, err = influxdb.Connect(cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
	} else {
		log.Info("InfluxDB disabled")
	}

	if err := healthCheck(ctx, db, mqttClient, influxClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	topics := mqttClient.Topics()
	qos := mqttClient.QoS()
	store := room.NewStore()
	hub := api.NewHub(cfg.WebSocket, log.Component("websocket"))

	// State-change fan-out
	sinks := actuator.NewFanout(log.Component("sinks")).
		Add("mqtt", actuator.NewMQTTSink(mqttClient, topics)).
		Add("websocket", actuator.NewHubSink(hub))
	var historyRepo *history.Repository
	if cfg.History.Enabled {
		historyRepo = history.NewRepository(db.DB)
		sinks.Add("history", historyRepo)
	}
	if influxClient != nil {
		sinks.Add("influxdb", actuator.NewInfluxSink(influxClient))
	}

	dispatcher := actuator.NewDispatcher(store, actuator.NewHTTPTransport(cfg.ActuatorTimeout()), actuator.Options{
		Location: cfg.Location(),
		Timeout:  cfg.ActuatorTimeout(),
		Sink:     sinks,
		Logger:   log.Component("actuator"),
	})

	deps := ingest.Deps{
		Store:      store,
		Parser:     telemetry.NewParser(cfg.MQTT.TopicRoot),
		Dispatcher: dispatcher,
		Weather:    weather.NewHTTPProvider(cfg.Weather.URL, cfg.WeatherTimeout()),
	}
	if registryClient != nil {
		deps.Registry = registryClient
	}
	if cfg.Advisory.Enabled {
		deps.Advisory = advisory.NewEmitter(mqttClient, hub, topics, qos, log.Component("advisory"))
	}
	if influxClient != nil {
		deps.Readings = influxClient
	}
	pipeline := ingest.New(deps, ingest.Options{
		Workers:         cfg.Engine.Workers,
		QueueSize:       cfg.Engine.QueueSize,
		WeatherTimeout:  cfg.WeatherTimeout(),
		RegistryTimeout: cfg.RegistryTimeout(),
		Logger:          log.Component("ingest"),
	})
	pipeline.Start(ctx)

	if err := mqttClient.Subscribe(topics.AllPollutants(), qos, pipeline.Submit); err != nil {
		pipeline.Stop()
		return fmt.Errorf("subscribing to telemetry: %w", err)
	}
	log.Info("subscribed to telemetry", "topic", topics.AllPollutants())

	sweep := occupancy.New(store, dispatcher, occupancy.Options{
		Interval:            cfg.SweepInterval(),
		IncludeSlightlyOpen: cfg.Sweep.IncludeSlightlyOpen,
		Location:            cfg.Location(),
		Logger:              log.Component("occupancy"),
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return pipeline.Run(gctx) })
	g.Go(func() error { return sweep.Run(gctx) })
	g.Go(func() error {
		hub.Run(gctx)
		return nil
	})
	if historyRepo != nil && cfg.HistoryRetention() > 0 {
		g.Go(func() error {
			return history.RunPruner(gctx, historyRepo, cfg.HistoryRetention(), historyPruneInterval, log.Component("history"))
		})
	}

	if cfg.API.Enabled {
		checks := map[string]api.HealthChecker{
			"database": db,
			"mqtt":     mqttClient,
		}
		if influxClient != nil {
			checks["influxdb"] = influxClient
		}
		apiDeps := api.Deps{
			Config:  cfg.API,
			WS:      cfg.WebSocket,
			Logger:  log.Component("api"),
			Store:   store,
			Stats:   pipeline,
			Checks:  checks,
			Hub:     hub,
			Version: version,
		}
		if historyRepo != nil {
			apiDeps.History = historyRepo
		}
		server, err := api.New(apiDeps)
		if err != nil {
			return fmt.Errorf("creating API server: %w", err)
		}
		g.Go(func() error { return server.Run(gctx) })
	} else {
		log.Info("API disabled")
	}

	log.Info("initialisation complete, waiting for shutdown signal")

	if err := g.Wait(); err != nil {
		return err
	}

	// Deferred Close() calls run in reverse order: InfluxDB, MQTT, database.
	log.Info("Air Control Core stopped", "stats", pipeline.Stats())
	return nil
}

// getConfigPath returns the configuration file path.
// Uses AIRCONTROL_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("AIRCONTROL_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// discoverBroker replaces the configured broker address with the one the
// registry reports. The configured address is kept when the registry fails.
func discoverBroker(ctx context.Context, c *registry.Client, cfg config.MQTTConfig, log *logging.Logger) config.MQTTConfig {
	fallback := registry.Broker{Host: cfg.Broker.Host, Port: cfg.Broker.Port}
	b, err := registry.ResolveBroker(ctx, c, fallback)
	if err != nil {
		log.Warn("broker discovery failed, using configured broker",
			"broker", fmt.Sprintf("%s:%d", fallback.Host, fallback.Port),
			"error", err,
		)
		return cfg
	}
	cfg.Broker.Host = b.Host
	cfg.Broker.Port = b.Port
	log.Info("broker discovered", "broker", fmt.Sprintf("%s:%d", b.Host, b.Port))
	return cfg
}

// healthCheck verifies all infrastructure connections are healthy.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - db: Database connection to check
//   - mqttClient: MQTT client to check
//   - influxClient: InfluxDB client to check (may be nil if disabled)
//
// Returns:
//   - error: First health check failure, or nil if all healthy
func healthCheck(ctx context.Context, db *database.DB, mqttClient *mqtt.Client, influxClient *influxdb.Client) error {
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := mqttClient.HealthCheck(ctx); err != nil {
		return fmt.Errorf("mqtt: %w", err)
	}
	if influxClient != nil {
		if err := influxClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("influxdb: %w", err)
		}
	}
	return nil
}
