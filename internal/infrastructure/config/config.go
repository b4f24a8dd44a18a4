package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for the air control core.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Site      SiteConfig      `yaml:"site"`
	Database  DatabaseConfig  `yaml:"database"`
	History   HistoryConfig   `yaml:"history"`
	MQTT      MQTTConfig      `yaml:"mqtt"`
	Registry  RegistryConfig  `yaml:"registry"`
	Weather   WeatherConfig   `yaml:"weather"`
	Actuator  ActuatorConfig  `yaml:"actuator"`
	Engine    EngineConfig    `yaml:"engine"`
	Sweep     SweepConfig     `yaml:"sweep"`
	Advisory  AdvisoryConfig  `yaml:"advisory"`
	API       APIConfig       `yaml:"api"`
	WebSocket WebSocketConfig `yaml:"websocket"`
	InfluxDB  InfluxDBConfig  `yaml:"influxdb"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// SiteConfig contains site-specific information.
type SiteConfig struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`

	// Timezone is the IANA zone used to evaluate room opening hours.
	Timezone string `yaml:"timezone"`
}

// DatabaseConfig contains SQLite database settings.
type DatabaseConfig struct {
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// HistoryConfig controls the actuator state-change audit trail.
type HistoryConfig struct {
	Enabled bool `yaml:"enabled"`

	// RetentionDays is how long state-change rows are kept. 0 keeps them forever.
	RetentionDays int `yaml:"retention_days"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`

	// TopicRoot is the first topic level of every telemetry, advisory and state topic.
	TopicRoot string `yaml:"topic_root"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
	MaxAttempts  int `yaml:"max_attempts"`
}

// RegistryConfig contains the room registry (catalog) service settings.
type RegistryConfig struct {
	Enabled bool   `yaml:"enabled"`
	URL     string `yaml:"url"`

	// Timeout is the per-request timeout in seconds.
	Timeout int `yaml:"timeout"`

	// DiscoverBroker asks the registry for the broker address at startup.
	// The configured mqtt.broker is kept when the registry cannot answer.
	DiscoverBroker bool `yaml:"discover_broker"`
}

// WeatherConfig contains weather provider settings.
type WeatherConfig struct {
	URL string `yaml:"url"`

	// Timeout is the per-request timeout in seconds.
	Timeout int `yaml:"timeout"`
}

// ActuatorConfig contains settings for outbound actuator commands.
type ActuatorConfig struct {
	// Timeout is the per-command timeout in seconds.
	Timeout int `yaml:"timeout"`
}

// EngineConfig sizes the telemetry worker pool.
type EngineConfig struct {
	Workers   int `yaml:"workers"`
	QueueSize int `yaml:"queue_size"`
}

// SweepConfig contains occupancy sweep settings.
type SweepConfig struct {
	// Interval is the sweep period in seconds.
	Interval int `yaml:"interval"`

	// IncludeSlightlyOpen also closes SlightlyOpen windows outside opening hours.
	IncludeSlightlyOpen bool `yaml:"include_slightly_open"`
}

// AdvisoryConfig contains advisory publisher settings.
type AdvisoryConfig struct {
	Enabled bool `yaml:"enabled"`
}

// APIConfig contains HTTP API server settings.
type APIConfig struct {
	Enabled  bool             `yaml:"enabled"`
	Host     string           `yaml:"host"`
	Port     int              `yaml:"port"`
	Timeouts APITimeoutConfig `yaml:"timeouts"`
	CORS     CORSConfig       `yaml:"cors"`
}

// APITimeoutConfig contains HTTP timeout settings.
type APITimeoutConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

// CORSConfig contains Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// WebSocketConfig contains WebSocket server settings.
type WebSocketConfig struct {
	Path           string `yaml:"path"`
	MaxMessageSize int    `yaml:"max_message_size"`
	PingInterval   int    `yaml:"ping_interval"`
	PongTimeout    int    `yaml:"pong_timeout"`
}

// InfluxDBConfig contains InfluxDB connection settings.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: AIRCONTROL_SECTION_KEY
// For example: AIRCONTROL_DATABASE_PATH, AIRCONTROL_REGISTRY_URL
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Site: SiteConfig{
			ID:       "site-001",
			Name:     "Air Control",
			Timezone: "UTC",
		},
		Database: DatabaseConfig{
			Path:        "./data/aircontrol.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		History: HistoryConfig{
			Enabled:       true,
			RetentionDays: 30,
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "aircontrol-core",
			},
			QoS: 1,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
				MaxAttempts:  0,
			},
			TopicRoot: "aircontrol",
		},
		Registry: RegistryConfig{
			Enabled:        true,
			URL:            "http://localhost:8081",
			Timeout:        5,
			DiscoverBroker: true,
		},
		Weather: WeatherConfig{
			URL:     "http://localhost:8082/weather",
			Timeout: 5,
		},
		Actuator: ActuatorConfig{
			Timeout: 5,
		},
		Engine: EngineConfig{
			Workers:   4,
			QueueSize: 256,
		},
		Sweep: SweepConfig{
			Interval: 60,
		},
		Advisory: AdvisoryConfig{
			Enabled: true,
		},
		API: APIConfig{
			Enabled: true,
			Host:    "0.0.0.0",
			Port:    8080,
			Timeouts: APITimeoutConfig{
				Read:  30,
				Write: 30,
				Idle:  60,
			},
		},
		WebSocket: WebSocketConfig{
			Path:           "/ws",
			MaxMessageSize: 8192,
			PingInterval:   30,
			PongTimeout:    10,
		},
		InfluxDB: InfluxDBConfig{
			BatchSize:     100,
			FlushInterval: 10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: AIRCONTROL_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	// Database
	if v := os.Getenv("AIRCONTROL_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}

	// MQTT
	if v := os.Getenv("AIRCONTROL_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("AIRCONTROL_MQTT_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.MQTT.Broker.Port = port
		}
	}
	if v := os.Getenv("AIRCONTROL_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("AIRCONTROL_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	// Collaborators
	if v := os.Getenv("AIRCONTROL_REGISTRY_URL"); v != "" {
		cfg.Registry.URL = v
	}
	if v := os.Getenv("AIRCONTROL_WEATHER_URL"); v != "" {
		cfg.Weather.URL = v
	}

	// Site
	if v := os.Getenv("AIRCONTROL_SITE_TIMEZONE"); v != "" {
		cfg.Site.Timezone = v
	}

	// API
	if v := os.Getenv("AIRCONTROL_API_HOST"); v != "" {
		cfg.API.Host = v
	}

	// InfluxDB
	if v := os.Getenv("AIRCONTROL_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}
}

// Validate checks the configuration for errors.
//
// Returns:
//   - error: Description of every validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	if c.Site.ID == "" {
		errs = append(errs, "site.id is required")
	}
	if _, err := time.LoadLocation(c.Site.Timezone); err != nil {
		errs = append(errs, fmt.Sprintf("site.timezone %q is not a valid IANA zone", c.Site.Timezone))
	}

	if c.Database.Path == "" {
		errs = append(errs, "database.path is required")
	}

	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}
	if c.MQTT.TopicRoot == "" || strings.ContainsAny(c.MQTT.TopicRoot, "+#/") {
		errs = append(errs, "mqtt.topic_root must be a single non-wildcard topic level")
	}

	if c.Registry.Enabled && c.Registry.URL == "" {
		errs = append(errs, "registry.url is required when registry is enabled")
	}
	if c.Weather.URL == "" {
		errs = append(errs, "weather.url is required")
	}

	if c.Engine.Workers < 1 {
		errs = append(errs, "engine.workers must be at least 1")
	}
	if c.Engine.QueueSize < 1 {
		errs = append(errs, "engine.queue_size must be at least 1")
	}
	if c.Sweep.Interval < 1 {
		errs = append(errs, "sweep.interval must be at least 1 second")
	}

	if c.API.Enabled && (c.API.Port < 1 || c.API.Port > 65535) {
		errs = append(errs, "api.port must be between 1 and 65535")
	}

	if c.InfluxDB.Enabled && c.InfluxDB.URL == "" {
		errs = append(errs, "influxdb.url is required when influxdb is enabled")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// Location returns the site timezone, falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Site.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// GetReadTimeout returns the API read timeout as a Duration.
func (t APITimeoutConfig) GetReadTimeout() time.Duration {
	return time.Duration(t.Read) * time.Second
}

// GetWriteTimeout returns the API write timeout as a Duration.
func (t APITimeoutConfig) GetWriteTimeout() time.Duration {
	return time.Duration(t.Write) * time.Second
}

// GetIdleTimeout returns the API idle timeout as a Duration.
func (t APITimeoutConfig) GetIdleTimeout() time.Duration {
	return time.Duration(t.Idle) * time.Second
}

// RegistryTimeout returns the registry request timeout as a Duration.
func (c *Config) RegistryTimeout() time.Duration {
	return time.Duration(c.Registry.Timeout) * time.Second
}

// WeatherTimeout returns the weather request timeout as a Duration.
func (c *Config) WeatherTimeout() time.Duration {
	return time.Duration(c.Weather.Timeout) * time.Second
}

// ActuatorTimeout returns the actuator command timeout as a Duration.
func (c *Config) ActuatorTimeout() time.Duration {
	return time.Duration(c.Actuator.Timeout) * time.Second
}

// SweepInterval returns the occupancy sweep period as a Duration.
func (c *Config) SweepInterval() time.Duration {
	return time.Duration(c.Sweep.Interval) * time.Second
}

// HistoryRetention returns the state-change retention window. Zero means unbounded.
func (c *Config) HistoryRetention() time.Duration {
	return time.Duration(c.History.RetentionDays) * 24 * time.Hour
}
