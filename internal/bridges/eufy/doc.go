// Package eufy bridges the vendor cloud's cameras onto the Gray Logic MQTT bus.
//
// The bridge discovers every camera on the account, publishes a retained
// state message per camera after each poll and command, executes commands
// received on graylogic/command/eufy/{serial} and acknowledges them on
// graylogic/ack/eufy/{serial}. Health is reported on graylogic/health/eufy.
//
// Subpackages:
//   - params: per-family parameter schema and value codec
//   - camera: device facade over the cloud API
//   - cloud: HTTP client for the vendor cloud
//
// Command payloads:
//
//	{"id":"c-1","command":"status_led","parameters":{"on":false}}
//	{"id":"c-2","command":"snooze","parameters":{"seconds":1800}}
//	{"id":"c-3","command":"set_params","parameters":{"params":{"night_vision":"AUTO"}}}
//
// Each camera facade is used by one goroutine at a time; the bridge holds a
// per-camera lock around every facade call.
package eufy
