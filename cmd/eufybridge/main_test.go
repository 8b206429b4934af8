package main

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nerrad567/gray-logic-eufy/internal/bridges/eufy"
	"github.com/nerrad567/gray-logic-eufy/internal/infrastructure/mqtt"
)

// writeTestConfig writes a config file and points GRAYLOGIC_EUFY_CONFIG at it.
func writeTestConfig(t *testing.T, content string) {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "test-config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	t.Setenv("GRAYLOGIC_EUFY_CONFIG", configPath)
}

// TestRun_InvalidConfig verifies run fails with invalid config path.
func TestRun_InvalidConfig(t *testing.T) {
	t.Setenv("GRAYLOGIC_EUFY_CONFIG", "/nonexistent/path/config.yaml")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := run(ctx)
	if err == nil {
		t.Fatal("run() should fail with invalid config path")
	}
	if !strings.Contains(err.Error(), "loading config") {
		t.Errorf("error = %v, want loading config failure", err)
	}
}

// TestRun_MissingCloudCredentials verifies validation stops startup before
// anything is opened.
func TestRun_MissingCloudCredentials(t *testing.T) {
	t.Setenv("GRAYLOGIC_EUFY_CLOUD_EMAIL", "")
	t.Setenv("GRAYLOGIC_EUFY_CLOUD_PASSWORD", "")
	writeTestConfig(t, `
database:
  path: "`+filepath.Join(t.TempDir(), "test.db")+`"
api:
  enabled: false
`)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := run(ctx)
	if err == nil {
		t.Fatal("run() should fail without cloud credentials")
	}
	if !strings.Contains(err.Error(), "cloud.email") {
		t.Errorf("error = %v, want cloud.email validation failure", err)
	}
}

// TestRun_BrokerUnreachable verifies startup fails when MQTT cannot connect.
func TestRun_BrokerUnreachable(t *testing.T) {
	if testing.Short() {
		t.Skip("waits for the MQTT connect timeout")
	}
	writeTestConfig(t, `
cloud:
  email: "owner@example.com"
  password: "hunter22"

database:
  path: "`+filepath.Join(t.TempDir(), "test.db")+`"
  wal_mode: true
  busy_timeout: 5

mqtt:
  broker:
    host: "127.0.0.1"
    port: 19999
    client_id: "test-client"
  qos: 1
  reconnect:
    initial_delay: 1
    max_delay: 5

api:
  enabled: false

logging:
  level: error
  format: text
  output: stdout
`)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	err := run(ctx)
	if err == nil {
		t.Fatal("run() should fail when the broker is unreachable")
	}
	if !strings.Contains(err.Error(), "connecting to MQTT") {
		t.Errorf("error = %v, want MQTT connection failure", err)
	}
}

// TestGetConfigPath_Default verifies default config path.
func TestGetConfigPath_Default(t *testing.T) {
	t.Setenv("GRAYLOGIC_EUFY_CONFIG", "")

	if path := getConfigPath(); path != defaultConfigPath {
		t.Errorf("getConfigPath() = %q, want %q", path, defaultConfigPath)
	}
}

// TestGetConfigPath_EnvOverride verifies environment variable override.
func TestGetConfigPath_EnvOverride(t *testing.T) {
	expected := "/custom/path/config.yaml"
	t.Setenv("GRAYLOGIC_EUFY_CONFIG", expected)

	if path := getConfigPath(); path != expected {
		t.Errorf("getConfigPath() = %q, want %q", path, expected)
	}
}

// TestHealthWill verifies the Last Will is the offline health message.
func TestHealthWill(t *testing.T) {
	will, err := healthWill("eufy-test")
	if err != nil {
		t.Fatalf("healthWill() error = %v", err)
	}
	if will.Topic != (mqtt.Topics{}).Health() {
		t.Errorf("Topic = %q, want %q", will.Topic, mqtt.Topics{}.Health())
	}

	var msg eufy.HealthMessage
	if err := json.Unmarshal(will.Payload, &msg); err != nil {
		t.Fatalf("payload is not a health message: %v", err)
	}
	if msg.Bridge != "eufy-test" {
		t.Errorf("Bridge = %q, want eufy-test", msg.Bridge)
	}
	if msg.Status != eufy.HealthOffline {
		t.Errorf("Status = %q, want %q", msg.Status, eufy.HealthOffline)
	}
}

// TestNewRegistry verifies runtime collectors are registered.
func TestNewRegistry(t *testing.T) {
	families, err := newRegistry().Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}

	names := make(map[string]bool, len(families))
	for _, f := range families {
		names[f.GetName()] = true
	}
	if !names["go_goroutines"] {
		t.Error("go_goroutines not registered")
	}
}
