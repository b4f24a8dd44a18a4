package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nerrad567/aircontrol-core/internal/infrastructure/config"
	"github.com/nerrad567/aircontrol-core/internal/infrastructure/logging"
	"github.com/nerrad567/aircontrol-core/internal/registry"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "test-config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return configPath
}

// TestRun_InvalidConfig verifies run fails with invalid config path.
func TestRun_InvalidConfig(t *testing.T) {
	t.Setenv("AIRCONTROL_CONFIG", "/nonexistent/path/config.yaml")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := run(ctx)
	if err == nil {
		t.Fatal("run() should fail with invalid config path")
	}
	if !strings.Contains(err.Error(), "loading config") {
		t.Errorf("run() error = %v, want loading config failure", err)
	}
}

// TestRun_MissingDatabasePath verifies run fails validation with an empty database path.
func TestRun_MissingDatabasePath(t *testing.T) {
	t.Setenv("AIRCONTROL_CONFIG", writeConfig(t, `
site:
  id: test-site
database:
  path: ""
registry:
  enabled: false
logging:
  level: error
  format: text
  output: stdout
`))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := run(ctx)
	if err == nil {
		t.Fatal("run() should fail with empty database path")
	}
	if !strings.Contains(err.Error(), "database.path") {
		t.Errorf("run() error = %v, want database.path validation failure", err)
	}
}

// TestRun_BrokerUnreachable verifies startup aborts when MQTT cannot connect.
func TestRun_BrokerUnreachable(t *testing.T) {
	if testing.Short() {
		t.Skip("waits for the MQTT connect timeout")
	}

	dbPath := filepath.Join(t.TempDir(), "test.db")
	t.Setenv("AIRCONTROL_CONFIG", writeConfig(t, `
site:
  id: test-site
database:
  path: "`+dbPath+`"
  wal_mode: true
  busy_timeout: 5
mqtt:
  broker:
    host: "127.0.0.1"
    port: 1
    client_id: "test-unreachable"
registry:
  enabled: false
api:
  enabled: false
logging:
  level: error
  format: text
  output: stdout
`))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	err := run(ctx)
	if err == nil {
		t.Fatal("run() should fail without a broker")
	}
	if !strings.Contains(err.Error(), "connecting to MQTT") {
		t.Errorf("run() error = %v, want MQTT connection failure", err)
	}
}

// TestGetConfigPath_Default verifies default config path.
func TestGetConfigPath_Default(t *testing.T) {
	t.Setenv("AIRCONTROL_CONFIG", "")

	if path := getConfigPath(); path != defaultConfigPath {
		t.Errorf("getConfigPath() = %q, want %q", path, defaultConfigPath)
	}
}

// TestGetConfigPath_EnvOverride verifies environment variable override.
func TestGetConfigPath_EnvOverride(t *testing.T) {
	expected := "/custom/path/config.yaml"
	t.Setenv("AIRCONTROL_CONFIG", expected)

	if path := getConfigPath(); path != expected {
		t.Errorf("getConfigPath() = %q, want %q", path, expected)
	}
}

func TestDiscoverBroker(t *testing.T) {
	log := logging.New(config.LoggingConfig{Level: "error", Format: "text", Output: "stdout"}, "test")
	configured := config.MQTTConfig{Broker: config.MQTTBrokerConfig{Host: "localhost", Port: 1883, ClientID: "ctrl"}}

	tests := []struct {
		name     string
		handler  http.HandlerFunc
		wantHost string
		wantPort int
	}{
		{
			name: "registry answers",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(`{"ip":"10.0.0.5","port":1884}`)) //nolint:errcheck
			},
			wantHost: "10.0.0.5",
			wantPort: 1884,
		},
		{
			name: "registry fails",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
			wantHost: "localhost",
			wantPort: 1883,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			got := discoverBroker(context.Background(), registry.NewClient(srv.URL, time.Second), configured, log)
			if got.Broker.Host != tt.wantHost || got.Broker.Port != tt.wantPort {
				t.Errorf("broker = %s:%d, want %s:%d", got.Broker.Host, got.Broker.Port, tt.wantHost, tt.wantPort)
			}
			if got.Broker.ClientID != "ctrl" {
				t.Errorf("ClientID = %q, other settings must be kept", got.Broker.ClientID)
			}
		})
	}
}
