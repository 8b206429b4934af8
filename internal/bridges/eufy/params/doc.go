// Package params maps vendor camera parameters between their numeric wire
// codes and semantic attribute names, and converts values to and from their
// wire representation.
//
// # Families
//
// The vendor scopes parameter codes to a device family: the same code can
// mean different things on an indoor camera and on a doorbell. A Schema
// holds the bindings for one family and is selected from the device type
// reported by the cloud:
//
//	schema := params.Resolve(record.DeviceType)
//	code, err := schema.Code(params.AttrStatusLED)
//
// Unknown device types resolve to the default schema. Resolution never fails;
// callers must only use attributes the resolved schema actually binds.
//
// # Value rules
//
// Each binding carries a Rule describing the value shape for its code:
//
//   - int: decimal text, optionally range checked
//   - switch: "1"/"0" with a per-code polarity (some codes use ON=0)
//   - text: passed through unchanged
//   - enum: an EnumValue whose ordinal (or member override) is sent
//   - object: a JSON object, optionally base64 wrapped, whose keys map to
//     named sub-fields
//   - json: arbitrary JSON, decoded with encoding/json defaults
//
// Decoding a batch isolates failures: one malformed parameter is reported in
// DecodeResult.Skipped and never prevents the rest of the batch decoding.
//
// # Thread Safety
//
// Schemas are immutable after package initialisation and safe for concurrent
// use.
package params
