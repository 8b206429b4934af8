// Package influxdb records camera telemetry in InfluxDB v2.
//
// It wraps the official influxdb-client-go v2 library. Two measurements are
// written:
//
//   - camera_params: one point per camera refresh, tagged by serial and
//     family, with every scalar parameter as a field
//   - camera_commands: one point per executed bridge command with its
//     outcome and latency
//
// # Usage
//
//	client, err := influxdb.Connect(ctx, cfg.InfluxDB, influxdb.WithBridgeTag(cfg.Bridge.ID))
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	client.WriteCameraState("T8400P1234", "indoor_cam", cam.Params(), time.Now())
//
// Writes are non-blocking and batched per batch_size and flush_interval.
// Failures surface through SetOnError. WithBridgeTag adds a bridge tag to
// every point so several bridges can share one bucket.
package influxdb
