package camera

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/nerrad567/gray-logic-eufy/internal/bridges/eufy/params"
)

// Cloud endpoints used by the facade, relative to the API base URL.
const (
	PathUploadParams = "app/upload_devs_params"
	PathDeviceList   = "app/get_devs_list"
	PathStartStream  = "web/equipment/start_stream"
	PathStopStream   = "web/equipment/stop_stream"
)

// streamProtocolRTSP selects RTSP when starting a stream.
const streamProtocolRTSP = 2

// API is the transport collaborator used by the facade.
// *cloud.Client satisfies it.
type API interface {
	// Request sends payload as JSON and returns the raw response body.
	Request(ctx context.Context, method, path string, payload any) (json.RawMessage, error)

	// UserID returns the account identifier of the authenticated session.
	UserID() string
}

// Logger interface for optional logging.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Warn(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

// Record is a device entry as reported by the cloud device list.
type Record struct {
	Serial          string                `json:"device_sn"`
	StationSerial   string                `json:"station_sn"`
	Name            string                `json:"device_name"`
	Model           string                `json:"device_model"`
	DeviceType      int                   `json:"device_type"`
	HardwareVersion string                `json:"main_hw_version"`
	SoftwareVersion string                `json:"main_sw_version"`
	MAC             string                `json:"wifi_mac"`
	CoverPath       string                `json:"cover_path"`
	Params          []params.RawParameter `json:"params"`
}

// envelope is the response wrapper shared by cloud endpoints.
type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"msg"`
	Data    json.RawMessage `json:"data"`
}

// Camera is the facade over one device.
type Camera struct {
	api    API
	schema *params.Schema
	record Record
	logger Logger
	now    func() time.Time
}

// Option configures a Camera.
type Option func(*Camera)

// WithLogger sets the logger used for decode diagnostics.
func WithLogger(l Logger) Option {
	return func(c *Camera) { c.logger = l }
}

// WithClock overrides the time source used for snooze timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Camera) { c.now = now }
}

// New creates a camera from its device record.
//
// The parameter schema is resolved once from record.DeviceType and kept for
// the lifetime of the camera.
//
// Parameters:
//   - api: Transport used for writes, refreshes and streams
//   - record: Device record from the cloud device list
//   - opts: Optional logger and clock
//
// Returns:
//   - *Camera: Ready to use; no request is made
func New(api API, record Record, opts ...Option) *Camera {
	c := &Camera{
		api:    api,
		schema: params.Resolve(record.DeviceType),
		record: record,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Serial returns the device serial number.
func (c *Camera) Serial() string { return c.record.Serial }

// StationSerial returns the serial number of the owning station.
func (c *Camera) StationSerial() string { return c.record.StationSerial }

// Name returns the user-assigned device name.
func (c *Camera) Name() string { return c.record.Name }

// Model returns the device model code.
func (c *Camera) Model() string { return c.record.Model }

// DeviceType returns the numeric device type.
func (c *Camera) DeviceType() int { return c.record.DeviceType }

// HardwareVersion returns the main hardware version.
func (c *Camera) HardwareVersion() string { return c.record.HardwareVersion }

// SoftwareVersion returns the main software version.
func (c *Camera) SoftwareVersion() string { return c.record.SoftwareVersion }

// MAC returns the Wi-Fi MAC address.
func (c *Camera) MAC() string { return c.record.MAC }

// LastImageURL returns the URL of the latest thumbnail.
func (c *Camera) LastImageURL() string { return c.record.CoverPath }

// Family returns the family of the resolved parameter schema.
func (c *Camera) Family() params.Family { return c.schema.Family() }

// Schema returns the resolved parameter schema.
func (c *Camera) Schema() *params.Schema { return c.schema }

// Record returns a copy of the current device record.
func (c *Camera) Record() Record {
	r := c.record
	r.Params = append([]params.RawParameter(nil), c.record.Params...)
	return r
}

// Params returns the decoded parameters keyed by semantic name. Parameters
// the schema does not bind, or whose value cannot be decoded, are omitted;
// use DecodedParams to inspect them.
func (c *Camera) Params() map[string]any {
	return c.DecodedParams().Values
}

// DecodedParams decodes the current raw parameters. Decode failures are
// logged at debug level and never abort the batch.
func (c *Camera) DecodedParams() params.DecodeResult {
	res := c.schema.DecodeAll(c.record.Params)
	if c.logger != nil {
		for _, skip := range res.Skipped {
			c.logger.Debug("unable to decode parameter",
				"serial", c.record.Serial,
				"code", skip.Code,
				"name", skip.Name,
				"value", skip.Raw,
				"error", skip.Err)
		}
	}
	return res
}

// uploadRequest is the body of an upload_devs_params call.
type uploadRequest struct {
	DeviceSerial  string                `json:"device_sn"`
	StationSerial string                `json:"station_sn"`
	Params        []params.RawParameter `json:"params"`
}

// streamRequest is the body of start_stream and stop_stream calls.
type streamRequest struct {
	DeviceSerial  string `json:"device_sn"`
	StationSerial string `json:"station_sn"`
	Proto         int    `json:"proto"`
}

// SetParams encodes and uploads assignments in a single request, then
// refreshes the device record.
//
// Encoding is all or nothing: if any assignment names an unknown attribute
// or carries an invalid value, no request is made.
//
// Parameters:
//   - ctx: Context for cancellation
//   - assignments: Semantic name/value pairs, uploaded in order
//
// Returns:
//   - error: Encoding error (params.ErrUnknownAttribute, params.ErrInvalidValue)
//     or the transport error exactly as the API returned it
func (c *Camera) SetParams(ctx context.Context, assignments ...params.Assignment) error {
	encoded, err := c.schema.EncodeAll(assignments)
	if err != nil {
		return err
	}

	req := uploadRequest{
		DeviceSerial:  c.record.Serial,
		StationSerial: c.record.StationSerial,
		Params:        encoded,
	}
	if _, err := c.api.Request(ctx, http.MethodPost, PathUploadParams, req); err != nil {
		return err
	}

	return c.Update(ctx)
}

// Update fetches the device list and replaces the record with this
// camera's current entry.
func (c *Camera) Update(ctx context.Context) error {
	body, err := c.api.Request(ctx, http.MethodPost, PathDeviceList, struct{}{})
	if err != nil {
		return err
	}

	records, err := ParseDeviceList(body)
	if err != nil {
		return err
	}
	for _, r := range records {
		if r.Serial == c.record.Serial {
			c.Sync(r)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrDeviceNotFound, c.record.Serial)
}

// Sync replaces the record with a fresher copy of the same device, as
// obtained from a device list poll. The schema is not re-resolved.
func (c *Camera) Sync(r Record) {
	if r.DeviceType != c.record.DeviceType && c.logger != nil {
		c.logger.Warn("device type changed, keeping resolved schema",
			"serial", c.record.Serial,
			"was", c.record.DeviceType,
			"now", r.DeviceType,
			"family", c.schema.Family())
	}
	c.record = r
}

// StartStream asks the cloud to start a live stream and returns its RTSP URL.
func (c *Camera) StartStream(ctx context.Context) (string, error) {
	body, err := c.api.Request(ctx, http.MethodPost, PathStartStream, c.streamRequest())
	if err != nil {
		return "", err
	}

	data, err := unwrap(body)
	if err != nil {
		return "", err
	}
	var out struct {
		URL string `json:"url"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return "", fmt.Errorf("%w: start_stream data: %w", ErrUnexpectedResponse, err)
	}
	if out.URL == "" {
		return "", fmt.Errorf("%w: start_stream returned no url", ErrUnexpectedResponse)
	}
	return out.URL, nil
}

// StopStream asks the cloud to stop the live stream.
func (c *Camera) StopStream(ctx context.Context) error {
	if _, err := c.api.Request(ctx, http.MethodPost, PathStopStream, c.streamRequest()); err != nil {
		return err
	}
	return nil
}

func (c *Camera) streamRequest() streamRequest {
	return streamRequest{
		DeviceSerial:  c.record.Serial,
		StationSerial: c.record.StationSerial,
		Proto:         streamProtocolRTSP,
	}
}

// ParseDeviceList extracts device records from a get_devs_list response.
func ParseDeviceList(body json.RawMessage) ([]Record, error) {
	data, err := unwrap(body)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 || string(data) == "null" {
		return nil, nil
	}
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: device list: %w", ErrUnexpectedResponse, err)
	}
	return records, nil
}

func unwrap(body json.RawMessage) (json.RawMessage, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnexpectedResponse, err)
	}
	return env.Data, nil
}
