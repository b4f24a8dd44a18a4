package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return configPath
}

func TestLoad_ValidConfig(t *testing.T) {
	configPath := writeConfig(t, `
site:
  id: "test-site"
  timezone: "Europe/Rome"
database:
  path: "/tmp/test.db"
mqtt:
  broker:
    host: "broker.local"
    port: 1884
  qos: 1
  topic_root: "building"
registry:
  url: "http://catalog:9000"
weather:
  url: "http://weather:9001/current"
engine:
  workers: 8
sweep:
  interval: 30
  include_slightly_open: true
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Site.ID != "test-site" {
		t.Errorf("Site.ID = %q, want %q", cfg.Site.ID, "test-site")
	}
	if cfg.MQTT.Broker.Host != "broker.local" || cfg.MQTT.Broker.Port != 1884 {
		t.Errorf("MQTT.Broker = %+v, want broker.local:1884", cfg.MQTT.Broker)
	}
	if cfg.MQTT.TopicRoot != "building" {
		t.Errorf("MQTT.TopicRoot = %q, want %q", cfg.MQTT.TopicRoot, "building")
	}
	if cfg.Registry.URL != "http://catalog:9000" {
		t.Errorf("Registry.URL = %q", cfg.Registry.URL)
	}
	if cfg.Engine.Workers != 8 {
		t.Errorf("Engine.Workers = %d, want 8", cfg.Engine.Workers)
	}
	// Unset fields keep their defaults.
	if cfg.Engine.QueueSize != 256 {
		t.Errorf("Engine.QueueSize = %d, want default 256", cfg.Engine.QueueSize)
	}
	if cfg.SweepInterval() != 30*time.Second {
		t.Errorf("SweepInterval() = %v, want 30s", cfg.SweepInterval())
	}
	if !cfg.Sweep.IncludeSlightlyOpen {
		t.Error("Sweep.IncludeSlightlyOpen = false, want true")
	}
	if cfg.Location().String() != "Europe/Rome" {
		t.Errorf("Location() = %v, want Europe/Rome", cfg.Location())
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	configPath := writeConfig(t, "invalid: [yaml: content")

	_, err := Load(configPath)
	if err == nil {
		t.Error("Load() expected error for invalid YAML, got nil")
	}
}

func TestLoad_ValidationFailure(t *testing.T) {
	configPath := writeConfig(t, `
site:
  id: ""
`)

	_, err := Load(configPath)
	if err == nil {
		t.Error("Load() expected validation error for empty site.id, got nil")
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "defaults are valid", mutate: func(*Config) {}},
		{name: "missing site ID", mutate: func(c *Config) { c.Site.ID = "" }, wantErr: "site.id"},
		{name: "bad timezone", mutate: func(c *Config) { c.Site.Timezone = "Mars/Olympus" }, wantErr: "site.timezone"},
		{name: "missing database path", mutate: func(c *Config) { c.Database.Path = "" }, wantErr: "database.path"},
		{name: "invalid QoS", mutate: func(c *Config) { c.MQTT.QoS = 3 }, wantErr: "mqtt.qos"},
		{name: "wildcard topic root", mutate: func(c *Config) { c.MQTT.TopicRoot = "a/+" }, wantErr: "mqtt.topic_root"},
		{name: "registry enabled without url", mutate: func(c *Config) { c.Registry.URL = "" }, wantErr: "registry.url"},
		{name: "registry disabled without url", mutate: func(c *Config) { c.Registry.Enabled = false; c.Registry.URL = "" }},
		{name: "missing weather url", mutate: func(c *Config) { c.Weather.URL = "" }, wantErr: "weather.url"},
		{name: "no workers", mutate: func(c *Config) { c.Engine.Workers = 0 }, wantErr: "engine.workers"},
		{name: "no queue", mutate: func(c *Config) { c.Engine.QueueSize = 0 }, wantErr: "engine.queue_size"},
		{name: "zero sweep interval", mutate: func(c *Config) { c.Sweep.Interval = 0 }, wantErr: "sweep.interval"},
		{name: "invalid port", mutate: func(c *Config) { c.API.Port = 70000 }, wantErr: "api.port"},
		{name: "api disabled ignores port", mutate: func(c *Config) { c.API.Enabled = false; c.API.Port = 0 }},
		{name: "influx enabled without url", mutate: func(c *Config) { c.InfluxDB.Enabled = true }, wantErr: "influxdb.url"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_Validate_ReportsAllErrors(t *testing.T) {
	cfg := defaultConfig()
	cfg.Site.ID = ""
	cfg.Engine.Workers = 0

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() expected error")
	}
	for _, want := range []string{"site.id", "engine.workers"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("Validate() error %q missing %q", err, want)
		}
	}
}

func TestConfig_GetTimeouts(t *testing.T) {
	cfg := &Config{
		API: APIConfig{
			Timeouts: APITimeoutConfig{
				Read:  30,
				Write: 45,
				Idle:  60,
			},
		},
		Registry: RegistryConfig{Timeout: 2},
		Weather:  WeatherConfig{Timeout: 3},
		Actuator: ActuatorConfig{Timeout: 5},
		History:  HistoryConfig{RetentionDays: 2},
	}

	if got := cfg.API.Timeouts.GetReadTimeout().Seconds(); got != 30 {
		t.Errorf("GetReadTimeout() = %v, want 30", got)
	}
	if got := cfg.API.Timeouts.GetWriteTimeout().Seconds(); got != 45 {
		t.Errorf("GetWriteTimeout() = %v, want 45", got)
	}
	if got := cfg.API.Timeouts.GetIdleTimeout().Seconds(); got != 60 {
		t.Errorf("GetIdleTimeout() = %v, want 60", got)
	}
	if got := cfg.RegistryTimeout(); got != 2*time.Second {
		t.Errorf("RegistryTimeout() = %v, want 2s", got)
	}
	if got := cfg.WeatherTimeout(); got != 3*time.Second {
		t.Errorf("WeatherTimeout() = %v, want 3s", got)
	}
	if got := cfg.ActuatorTimeout(); got != 5*time.Second {
		t.Errorf("ActuatorTimeout() = %v, want 5s", got)
	}
	if got := cfg.HistoryRetention(); got != 48*time.Hour {
		t.Errorf("HistoryRetention() = %v, want 48h", got)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	cfg := defaultConfig()

	t.Setenv("AIRCONTROL_DATABASE_PATH", "/custom/path.db")
	t.Setenv("AIRCONTROL_MQTT_HOST", "mqtt.example.com")
	t.Setenv("AIRCONTROL_MQTT_PORT", "8883")
	t.Setenv("AIRCONTROL_MQTT_USERNAME", "testuser")
	t.Setenv("AIRCONTROL_MQTT_PASSWORD", "testpass")
	t.Setenv("AIRCONTROL_REGISTRY_URL", "http://registry.example.com")
	t.Setenv("AIRCONTROL_WEATHER_URL", "http://weather.example.com")
	t.Setenv("AIRCONTROL_SITE_TIMEZONE", "Europe/London")
	t.Setenv("AIRCONTROL_API_HOST", "192.168.1.1")
	t.Setenv("AIRCONTROL_INFLUXDB_TOKEN", "secret-token")

	applyEnvOverrides(cfg)

	checks := []struct {
		field string
		got   string
		want  string
	}{
		{"Database.Path", cfg.Database.Path, "/custom/path.db"},
		{"MQTT.Broker.Host", cfg.MQTT.Broker.Host, "mqtt.example.com"},
		{"MQTT.Auth.Username", cfg.MQTT.Auth.Username, "testuser"},
		{"MQTT.Auth.Password", cfg.MQTT.Auth.Password, "testpass"},
		{"Registry.URL", cfg.Registry.URL, "http://registry.example.com"},
		{"Weather.URL", cfg.Weather.URL, "http://weather.example.com"},
		{"Site.Timezone", cfg.Site.Timezone, "Europe/London"},
		{"API.Host", cfg.API.Host, "192.168.1.1"},
		{"InfluxDB.Token", cfg.InfluxDB.Token, "secret-token"},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %q, want %q", c.field, c.got, c.want)
		}
	}
	if cfg.MQTT.Broker.Port != 8883 {
		t.Errorf("MQTT.Broker.Port = %d, want 8883", cfg.MQTT.Broker.Port)
	}
}

func TestApplyEnvOverrides_InvalidPortIgnored(t *testing.T) {
	cfg := defaultConfig()
	t.Setenv("AIRCONTROL_MQTT_PORT", "not-a-port")

	applyEnvOverrides(cfg)

	if cfg.MQTT.Broker.Port != 1883 {
		t.Errorf("MQTT.Broker.Port = %d, want 1883", cfg.MQTT.Broker.Port)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.MQTT.Broker.Port != 1883 {
		t.Errorf("defaultConfig MQTT.Broker.Port = %d, want 1883", cfg.MQTT.Broker.Port)
	}
	if cfg.MQTT.TopicRoot != "aircontrol" {
		t.Errorf("defaultConfig MQTT.TopicRoot = %q, want aircontrol", cfg.MQTT.TopicRoot)
	}
	if cfg.ActuatorTimeout() != 5*time.Second {
		t.Errorf("defaultConfig ActuatorTimeout() = %v, want 5s", cfg.ActuatorTimeout())
	}
	if cfg.SweepInterval() != time.Minute {
		t.Errorf("defaultConfig SweepInterval() = %v, want 1m", cfg.SweepInterval())
	}
	if cfg.Sweep.IncludeSlightlyOpen {
		t.Error("defaultConfig should only sweep fully open windows")
	}
}

func TestLocation_FallsBackToUTC(t *testing.T) {
	cfg := &Config{Site: SiteConfig{Timezone: "Nowhere/Special"}}
	if cfg.Location() != time.UTC {
		t.Errorf("Location() = %v, want UTC", cfg.Location())
	}
}
