// Package camera provides the device facade for a single cloud-managed camera
// or doorbell.
//
// A Camera wraps the device record last reported by the cloud and the
// parameter schema resolved from its device type. Reads decode the record's
// raw parameters into semantic values; writes encode semantic assignments,
// upload them in one request and refresh the record.
//
// The facade does not own a connection. All network traffic goes through the
// API collaborator, which in production is *cloud.Client.
//
// Thread Safety: a Camera is not safe for concurrent use. Callers that share
// one across goroutines (the MQTT bridge, the REST API) must serialise access.
package camera
