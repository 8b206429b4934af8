//go:build integration

package influxdb

import (
	"context"
	"testing"
	"time"

	"github.com/nerrad567/gray-logic-eufy/internal/infrastructure/config"
)

// Requires an InfluxDB 2.x on 127.0.0.1:8086 with the org, bucket and token below.
func testConfig() config.InfluxDBConfig {
	return config.InfluxDBConfig{
		Enabled:       true,
		URL:           "http://127.0.0.1:8086",
		Token:         "graylogic-dev-token",
		Org:           "graylogic",
		Bucket:        "eufy",
		BatchSize:     10,
		FlushInterval: 1,
	}
}

func TestWriteAndFlush(t *testing.T) {
	ctx := context.Background()
	c, err := Connect(ctx, testConfig())
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer c.Close()

	var writeErr error
	c.SetOnError(func(err error) { writeErr = err })

	c.WriteCameraState("T8400TEST", "indoor_cam", map[string]any{"status_led": true, "night_vision": 1}, time.Now())
	c.WriteCommand("T8400TEST", "status_led_on", true, 120*time.Millisecond)
	c.Flush()

	if err := c.HealthCheck(ctx); err != nil {
		t.Errorf("HealthCheck() = %v", err)
	}
	if writeErr != nil {
		t.Errorf("async write error: %v", writeErr)
	}
}
