package eufy

import (
	"strconv"
	"time"

	"github.com/nerrad567/gray-logic-eufy/internal/bridges/eufy/camera"
	"github.com/nerrad567/gray-logic-eufy/internal/bridges/eufy/params"
)

// Protocol is the protocol identifier carried in every message.
const Protocol = "eufy"

// Command names.
const (
	CmdStatusLED                  = "status_led"
	CmdPower                      = "power"
	CmdMotionDetection            = "motion_detection"
	CmdMotionDetectionMode        = "motion_detection_mode"
	CmdMotionDetectionSensitivity = "motion_detection_sensitivity"
	CmdSoundDetection             = "sound_detection"
	CmdSoundDetectionMode         = "sound_detection_mode"
	CmdSoundDetectionSensitivity  = "sound_detection_sensitivity"
	CmdSnooze                     = "snooze"
	CmdSnoozeOff                  = "snooze_off"
	CmdSetParams                  = "set_params"
	CmdStartStream                = "start_stream"
	CmdStopStream                 = "stop_stream"
	CmdRefresh                    = "refresh"
)

// Commands lists every command name the bridge accepts.
var Commands = []string{
	CmdStatusLED, CmdPower, CmdMotionDetection, CmdMotionDetectionMode,
	CmdMotionDetectionSensitivity, CmdSoundDetection, CmdSoundDetectionMode,
	CmdSoundDetectionSensitivity, CmdSnooze, CmdSnoozeOff, CmdSetParams,
	CmdStartStream, CmdStopStream, CmdRefresh,
}

// CommandMessage asks the bridge to act on one camera.
// Topic: graylogic/command/eufy/{serial}
type CommandMessage struct {
	// ID correlates the command with its acknowledgement.
	ID string `json:"id"`

	Timestamp time.Time `json:"timestamp"`

	// Serial is filled from the topic when absent.
	Serial string `json:"serial"`

	Command string `json:"command"`

	// Parameters holds command-specific values, e.g. {"on": true} or
	// {"seconds": 600}.
	Parameters map[string]any `json:"parameters,omitempty"`

	// Source is where the command came from ("mqtt", "api").
	Source string `json:"source,omitempty"`

	// UserID is the user who issued the command, if known.
	UserID string `json:"user_id,omitempty"`
}

// AckStatus is the outcome of a command.
type AckStatus string

const (
	AckAccepted AckStatus = "accepted"
	AckFailed   AckStatus = "failed"
)

// AckMessage acknowledges a command.
// Topic: graylogic/ack/eufy/{serial}
type AckMessage struct {
	CommandID string    `json:"command_id"`
	Timestamp time.Time `json:"timestamp"`
	Serial    string    `json:"serial"`
	Command   string    `json:"command"`
	Status    AckStatus `json:"status"`
	Protocol  string    `json:"protocol"`

	// Result carries command output, such as the stream URL.
	Result map[string]any `json:"result,omitempty"`

	Error *AckError `json:"error,omitempty"`
}

// AckError describes a failed command.
type AckError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error codes for command failures.
const (
	ErrCodeInvalidCommand    = "INVALID_COMMAND"
	ErrCodeInvalidParameters = "INVALID_PARAMETERS"
	ErrCodeNotConfigured     = "NOT_CONFIGURED"
	ErrCodeDeviceUnreachable = "DEVICE_UNREACHABLE"
	ErrCodeTimeout           = "TIMEOUT"
)

// StateMessage is a camera's full decoded state.
// Topic: graylogic/state/eufy/{serial}
// QoS: 1, Retained: Yes
type StateMessage struct {
	Serial    string    `json:"serial"`
	Timestamp time.Time `json:"timestamp"`
	Protocol  string    `json:"protocol"`

	Device DeviceInfo `json:"device"`

	// State maps attribute names to presented values: enum members by name,
	// objects as maps.
	State map[string]any `json:"state"`

	// Unmapped carries raw values of codes the family schema does not bind,
	// keyed by decimal code.
	Unmapped map[string]string `json:"unmapped,omitempty"`
}

// DeviceInfo is the static description of a camera.
type DeviceInfo struct {
	Name            string `json:"name"`
	Model           string `json:"model"`
	DeviceType      int    `json:"device_type"`
	Family          string `json:"family"`
	StationSerial   string `json:"station_serial,omitempty"`
	HardwareVersion string `json:"hardware_version,omitempty"`
	SoftwareVersion string `json:"software_version,omitempty"`
	MAC             string `json:"mac,omitempty"`
	LastImageURL    string `json:"last_image_url,omitempty"`
}

// HealthStatus is the operational status of the bridge.
type HealthStatus string

const (
	HealthHealthy  HealthStatus = "healthy"
	HealthDegraded HealthStatus = "degraded"
	HealthOffline  HealthStatus = "offline"
	HealthStarting HealthStatus = "starting"
	HealthStopping HealthStatus = "stopping"
)

// HealthMessage reports bridge status.
// Topic: graylogic/health/eufy
// QoS: 1, Retained: Yes
type HealthMessage struct {
	Bridge         string           `json:"bridge"`
	Timestamp      time.Time        `json:"timestamp"`
	Status         HealthStatus     `json:"status"`
	Version        string           `json:"version,omitempty"`
	UptimeSeconds  int64            `json:"uptime_seconds"`
	Cloud          *CloudStatus     `json:"cloud,omitempty"`
	Statistics     *BridgeStatistic `json:"statistics,omitempty"`
	DevicesManaged int              `json:"devices_managed"`
	Reason         string           `json:"reason,omitempty"`
}

// CloudStatus describes the last exchange with the vendor cloud.
type CloudStatus struct {
	Status     string     `json:"status"` // "reachable", "unreachable", "unknown"
	LastPollAt *time.Time `json:"last_poll_at,omitempty"`
	LastError  string     `json:"last_error,omitempty"`
}

// BridgeStatistic holds running counters.
type BridgeStatistic struct {
	CommandsAccepted uint64 `json:"commands_accepted"`
	CommandsFailed   uint64 `json:"commands_failed"`
	Polls            uint64 `json:"polls"`
	PollErrors       uint64 `json:"poll_errors"`
	DecodeSkips      uint64 `json:"decode_skips"`
}

// NewAckMessage creates a successful acknowledgement.
func NewAckMessage(cmd CommandMessage, result map[string]any) AckMessage {
	return AckMessage{
		CommandID: cmd.ID,
		Timestamp: time.Now().UTC(),
		Serial:    cmd.Serial,
		Command:   cmd.Command,
		Status:    AckAccepted,
		Protocol:  Protocol,
		Result:    result,
	}
}

// NewAckError creates a failed acknowledgement.
func NewAckError(cmd CommandMessage, code, message string) AckMessage {
	return AckMessage{
		CommandID: cmd.ID,
		Timestamp: time.Now().UTC(),
		Serial:    cmd.Serial,
		Command:   cmd.Command,
		Status:    AckFailed,
		Protocol:  Protocol,
		Error:     &AckError{Code: code, Message: message},
	}
}

// NewStateMessage snapshots a camera. The caller must hold the camera lock.
func NewStateMessage(cam *camera.Camera, res params.DecodeResult) StateMessage {
	state := make(map[string]any, len(res.Values))
	for name, v := range res.Values {
		state[name] = presentValue(v)
	}
	var unmapped map[string]string
	if len(res.Unmapped) > 0 {
		unmapped = make(map[string]string, len(res.Unmapped))
		for code, raw := range res.Unmapped {
			unmapped[strconv.Itoa(code)] = raw
		}
	}
	return StateMessage{
		Serial:    cam.Serial(),
		Timestamp: time.Now().UTC(),
		Protocol:  Protocol,
		Device: DeviceInfo{
			Name:            cam.Name(),
			Model:           cam.Model(),
			DeviceType:      cam.DeviceType(),
			Family:          string(cam.Family()),
			StationSerial:   cam.StationSerial(),
			HardwareVersion: cam.HardwareVersion(),
			SoftwareVersion: cam.SoftwareVersion(),
			MAC:             cam.MAC(),
			LastImageURL:    cam.LastImageURL(),
		},
		State:    state,
		Unmapped: unmapped,
	}
}

// NewLWTMessage is the health message the broker publishes if the bridge
// disappears.
func NewLWTMessage(bridgeID string) HealthMessage {
	return HealthMessage{
		Bridge:    bridgeID,
		Timestamp: time.Now().UTC(),
		Status:    HealthOffline,
		Reason:    "unexpected_disconnect",
	}
}

// presentValue converts decoded values into plain JSON-friendly values.
// Enum members become their names so they can be sent back in set_params.
func presentValue(v any) any {
	switch tv := v.(type) {
	case params.EnumValue:
		return tv.Name
	case params.Object:
		out := make(map[string]any, len(tv))
		for k, sv := range tv {
			out[k] = presentValue(sv)
		}
		return out
	default:
		return v
	}
}
