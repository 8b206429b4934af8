// Gray Logic Eufy Bridge
//
// This is the main entry point for the Eufy camera bridge. It connects the
// vendor cloud to the Gray Logic MQTT bus:
//   - Camera state is published retained on graylogic/state/eufy/{serial}
//   - Commands arrive on graylogic/command/eufy/{serial}
//   - An optional REST/WebSocket API exposes the same cameras
//
// Configuration is read from configs/config.yaml (override with
// GRAYLOGIC_EUFY_CONFIG) and GRAYLOGIC_EUFY_* environment variables.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	_ "github.com/nerrad567/gray-logic-eufy/migrations"

	"github.com/nerrad567/gray-logic-eufy/internal/api"
	"github.com/nerrad567/gray-logic-eufy/internal/audit"
	"github.com/nerrad567/gray-logic-eufy/internal/bridges/eufy"
	"github.com/nerrad567/gray-logic-eufy/internal/bridges/eufy/cloud"
	"github.com/nerrad567/gray-logic-eufy/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-eufy/internal/infrastructure/database"
	"github.com/nerrad567/gray-logic-eufy/internal/infrastructure/influxdb"
	"github.com/nerrad567/gray-logic-eufy/internal/infrastructure/logging"
	"github.com/nerrad567/gray-logic-eufy/internal/infrastructure/mqtt"
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
	log.Info("starting Gray Logic Eufy bridge",
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

	// Open database (audit trail)
	db, err := database.Open(ctx, database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
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

	auditRepo := audit.NewSQLiteRepository(db.DB)

	// Connect to MQTT broker with the bridge's offline health message as LWT
	will, err := healthWill(cfg.Bridge.ID)
	if err != nil {
		return fmt.Errorf("building MQTT last will: %w", err)
	}
	mqttClient, err := mqtt.Connect(cfg.MQTT, will)
	if err != nil {
		return fmt.Errorf("connecting to MQTT: %w", err)
	}
	defer func() {
		log.Info("disconnecting from MQTT")
		if closeErr := mqttClient.Close(); closeErr != nil {
			log.Error("error closing MQTT", "error", closeErr)
		}
	}()
	mqttClient.SetLogger(log.Component("mqtt"))
	log.Info("MQTT connected",
		"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
		"client_id", cfg.MQTT.Broker.ClientID,
	)

	// Connect to InfluxDB (optional)
	var influxClient *influxdb.Client
	if cfg.InfluxDB.Enabled {
		influxClient, err = influxdb.Connect(ctx, cfg.InfluxDB, influxdb.WithBridgeTag(cfg.Bridge.ID))
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)
	} else {
		log.Info("InfluxDB disabled")
	}

	cloudClient, err := cloud.New(cfg.Cloud, cloud.WithLogger(log.Component("cloud")))
	if err != nil {
		return fmt.Errorf("creating cloud client: %w", err)
	}

	registry := newRegistry()

	bridge, err := startBridge(ctx, cfg, bridgeDeps{
		mqtt:     mqttClient,
		cloud:    cloudClient,
		influx:   influxClient,
		audit:    auditRepo,
		registry: registry,
		log:      log,
	})
	if err != nil {
		return err
	}
	defer func() {
		log.Info("stopping Eufy bridge")
		bridge.Stop()
	}()

	mqttClient.SetOnConnect(func() {
		log.Info("MQTT reconnected")
		if pubErr := bridge.Health().PublishNow(); pubErr != nil {
			log.Warn("failed to republish health after reconnect", "error", pubErr)
		}
	})
	mqttClient.SetOnDisconnect(func(err error) {
		log.Warn("MQTT disconnected", "error", err)
	})

	// Start API server (optional)
	if cfg.API.Enabled {
		apiServer, apiErr := api.New(api.Deps{
			Config:   cfg.API,
			WS:       cfg.WebSocket,
			Security: cfg.Security,
			Logger:   log.Component("api"),
			Cameras:  bridge,
			Audit:    auditRepo,
			Registry: registry,
			Version:  version,
		})
		if apiErr != nil {
			return fmt.Errorf("creating API server: %w", apiErr)
		}
		if startErr := apiServer.Start(ctx); startErr != nil {
			return fmt.Errorf("starting API server: %w", startErr)
		}
		defer func() {
			if closeErr := apiServer.Close(); closeErr != nil {
				log.Error("error closing API server", "error", closeErr)
			}
		}()
	} else {
		log.Info("API server disabled")
	}

	if err := healthCheck(ctx, db, mqttClient, influxClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	log.Info("initialisation complete, waiting for shutdown signal")

	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Deferred calls run in reverse order:
	// API, bridge, InfluxDB, MQTT, database.

	log.Info("Gray Logic Eufy bridge stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses GRAYLOGIC_EUFY_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("GRAYLOGIC_EUFY_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// healthWill builds the Last Will registered with the broker: the bridge's
// offline health message, retained on the health topic.
func healthWill(bridgeID string) (mqtt.Will, error) {
	reporter := eufy.NewHealthReporter(eufy.HealthReporterConfig{BridgeID: bridgeID})
	return reporter.LWT()
}

// newRegistry creates the Prometheus registry shared by the bridge and the
// API's /metrics endpoint.
func newRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// bridgeDeps groups the connected infrastructure the bridge runs on.
type bridgeDeps struct {
	mqtt     *mqtt.Client
	cloud    *cloud.Client
	influx   *influxdb.Client
	audit    *audit.SQLiteRepository
	registry *prometheus.Registry
	log      *logging.Logger
}

// startBridge creates and starts the Eufy bridge.
//
// Parameters:
//   - ctx: Context for startup/cancellation
//   - cfg: Application configuration
//   - deps: Connected infrastructure
//
// Returns:
//   - *eufy.Bridge: Running bridge
//   - error: If the bridge fails to start
func startBridge(ctx context.Context, cfg *config.Config, deps bridgeDeps) (*eufy.Bridge, error) {
	opts := eufy.Options{
		BridgeID:       cfg.Bridge.ID,
		Version:        version,
		PollInterval:   cfg.GetPollInterval(),
		HealthInterval: cfg.GetHealthInterval(),
		CommandTimeout: cfg.GetCommandTimeout(),
		MQTTClient:     &mqttBridgeAdapter{client: deps.mqtt},
		Cloud:          deps.cloud,
		Metrics:        eufy.NewMetrics(deps.registry),
		Audit:          deps.audit,
		Logger:         deps.log.Component("eufy"),
	}
	// A nil *influxdb.Client must not become a non-nil interface.
	if deps.influx != nil {
		opts.Telemetry = deps.influx
	}

	bridge, err := eufy.NewBridge(opts)
	if err != nil {
		return nil, fmt.Errorf("creating Eufy bridge: %w", err)
	}

	if err := bridge.Start(ctx); err != nil {
		return nil, fmt.Errorf("starting Eufy bridge: %w", err)
	}
	deps.log.Info("Eufy bridge started",
		"bridge_id", cfg.Bridge.ID,
		"cameras", bridge.CameraCount(),
	)

	return bridge, nil
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

// mqttBridgeAdapter adapts the infrastructure MQTT client to the bridge's
// MQTTClient interface. The difference is the Subscribe handler signature:
// - Infrastructure mqtt: func(topic, payload []byte) error
// - Eufy bridge expects: func(topic, payload []byte)
type mqttBridgeAdapter struct {
	client *mqtt.Client
}

// Publish implements eufy.MQTTClient.
func (a *mqttBridgeAdapter) Publish(topic string, payload []byte, qos byte, retained bool) error {
	return a.client.Publish(topic, payload, qos, retained)
}

// Subscribe implements eufy.MQTTClient.
func (a *mqttBridgeAdapter) Subscribe(topic string, qos byte, handler func(topic string, payload []byte)) error {
	return a.client.Subscribe(topic, qos, func(t string, p []byte) error {
		handler(t, p)
		return nil
	})
}

// IsConnected implements eufy.MQTTClient.
func (a *mqttBridgeAdapter) IsConnected() bool {
	return a.client.IsConnected()
}
