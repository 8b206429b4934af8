package influxdb

import (
	"fmt"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// Measurement names.
const (
	MeasurementCameraParams   = "camera_params"
	MeasurementCameraCommands = "camera_commands"
)

// WriteCameraState records one snapshot of a camera's decoded parameters.
//
// Only scalar values become fields: booleans, integers and floats as-is,
// enum members and other fmt.Stringer values as their string form. Objects,
// nil and raw JSON values are left out. A snapshot with no scalar values is
// not written.
//
// Parameters:
//   - serial: Camera serial, used as the "serial" tag
//   - family: Parameter family, used as the "family" tag
//   - values: Decoded parameters keyed by attribute name
//   - at: Point timestamp
func (c *Client) WriteCameraState(serial, family string, values map[string]any, at time.Time) {
	if !c.IsConnected() {
		return
	}
	fields := scalarFields(values)
	if len(fields) == 0 {
		return
	}

	c.writeAPI.WritePoint(write.NewPoint(
		MeasurementCameraParams,
		map[string]string{"serial": serial, "family": family},
		fields,
		at,
	))
}

// WriteCommand records the outcome of one bridge command.
func (c *Client) WriteCommand(serial, command string, ok bool, latency time.Duration) {
	if !c.IsConnected() {
		return
	}

	c.writeAPI.WritePoint(write.NewPoint(
		MeasurementCameraCommands,
		map[string]string{"serial": serial, "command": command},
		map[string]any{
			"success":    ok,
			"latency_ms": latency.Milliseconds(),
		},
		time.Now(),
	))
}

// scalarFields filters values down to types InfluxDB stores as fields.
func scalarFields(values map[string]any) map[string]any {
	fields := make(map[string]any, len(values))
	for name, v := range values {
		switch tv := v.(type) {
		case bool, string, float64, float32:
			fields[name] = tv
		case int:
			fields[name] = int64(tv)
		case int32:
			fields[name] = int64(tv)
		case int64:
			fields[name] = tv
		case fmt.Stringer:
			fields[name] = tv.String()
		}
	}
	return fields
}
