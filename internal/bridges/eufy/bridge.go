package eufy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/nerrad567/gray-logic-eufy/internal/audit"
	"github.com/nerrad567/gray-logic-eufy/internal/bridges/eufy/camera"
	"github.com/nerrad567/gray-logic-eufy/internal/bridges/eufy/params"
	"github.com/nerrad567/gray-logic-eufy/internal/infrastructure/mqtt"
)

const (
	defaultPollInterval   = 60 * time.Second
	defaultCommandTimeout = 15 * time.Second

	// commandTopicParts is graylogic/command/eufy/{serial}.
	commandTopicParts = 4

	cloudReachable   = "reachable"
	cloudUnreachable = "unreachable"
	cloudUnknown     = "unknown"
)

// Logger is the structured logger used by the bridge.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Warn(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

// MQTTClient is the interface for MQTT operations.
// This allows mocking in tests and flexibility in implementation.
type MQTTClient interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
	Subscribe(topic string, qos byte, handler func(topic string, payload []byte)) error
	IsConnected() bool
}

// CloudClient is the vendor cloud session shared by every camera.
type CloudClient interface {
	camera.API
	Devices(ctx context.Context) ([]camera.Record, error)
}

// TelemetryWriter records camera state and command outcomes as time series.
// Satisfied by *influxdb.Client.
type TelemetryWriter interface {
	WriteCameraState(serial, family string, values map[string]any, at time.Time)
	WriteCommand(serial, command string, ok bool, latency time.Duration)
}

// AuditRecorder stores executed commands. Satisfied by audit.Repository.
type AuditRecorder interface {
	Record(ctx context.Context, e *audit.Entry) error
}

// Options holds everything a bridge needs.
type Options struct {
	BridgeID string
	Version  string

	PollInterval   time.Duration
	HealthInterval time.Duration
	CommandTimeout time.Duration

	MQTTClient MQTTClient
	Cloud      CloudClient

	// Optional collaborators.
	Metrics   *Metrics
	Telemetry TelemetryWriter
	Audit     AuditRecorder
	Logger    Logger
}

// cameraEntry pairs a facade with the lock that serialises its use.
type cameraEntry struct {
	mu  sync.Mutex
	cam *camera.Camera
}

// Bridge connects the vendor cloud to the Gray Logic MQTT bus.
//
// Thread Safety: All methods are safe for concurrent use. Facade calls on
// one camera are serialised; different cameras proceed in parallel.
type Bridge struct {
	id             string
	pollInterval   time.Duration
	commandTimeout time.Duration

	broker    MQTTClient
	cloud     CloudClient
	metrics   *Metrics
	telemetry TelemetryWriter
	audit     AuditRecorder
	health    *HealthReporter
	topics    mqtt.Topics

	cameras map[string]*cameraEntry
	camMu   sync.RWMutex

	listeners  []func(StateMessage)
	listenerMu sync.RWMutex

	pollMu      sync.RWMutex
	lastPoll    time.Time
	lastPollErr error

	done      chan struct{}
	wg        sync.WaitGroup
	stopOnce  sync.Once
	ctx       context.Context
	ctxCancel context.CancelFunc

	logger   Logger
	loggerMu sync.RWMutex
}

// NewBridge creates a bridge. Call Start to begin operation.
func NewBridge(opts Options) (*Bridge, error) {
	if opts.MQTTClient == nil {
		return nil, fmt.Errorf("MQTT client is required")
	}
	if opts.Cloud == nil {
		return nil, fmt.Errorf("cloud client is required")
	}
	if opts.BridgeID == "" {
		opts.BridgeID = Protocol
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = defaultPollInterval
	}
	if opts.CommandTimeout <= 0 {
		opts.CommandTimeout = defaultCommandTimeout
	}
	if opts.Metrics == nil {
		opts.Metrics = NewMetrics(nil)
	}

	ctx, cancel := context.WithCancel(context.Background())
	b := &Bridge{
		id:             opts.BridgeID,
		pollInterval:   opts.PollInterval,
		commandTimeout: opts.CommandTimeout,
		broker:         opts.MQTTClient,
		cloud:          opts.Cloud,
		metrics:        opts.Metrics,
		telemetry:      opts.Telemetry,
		audit:          opts.Audit,
		cameras:        make(map[string]*cameraEntry),
		done:           make(chan struct{}),
		ctx:            ctx,
		ctxCancel:      cancel,
		logger:         opts.Logger,
	}

	b.health = NewHealthReporter(HealthReporterConfig{
		BridgeID:  opts.BridgeID,
		Version:   opts.Version,
		Interval:  opts.HealthInterval,
		Publisher: opts.MQTTClient,
		Source:    b,
	})
	if opts.Logger != nil {
		b.health.SetLogger(opts.Logger)
	}
	return b, nil
}

// Health returns the bridge's health reporter.
func (b *Bridge) Health() *HealthReporter {
	return b.health
}

// HealthStatus returns the health message for the present moment.
func (b *Bridge) HealthStatus() HealthMessage {
	return b.health.Current()
}

// Start discovers cameras, subscribes to commands and begins polling and
// health reporting. A failed initial discovery is logged and retried on the
// next poll; only a failed subscription aborts Start.
func (b *Bridge) Start(ctx context.Context) error {
	if err := b.health.PublishStarting(); err != nil {
		b.logError("failed to publish starting status", err)
	}

	if err := b.Discover(ctx); err != nil {
		b.logError("initial discovery failed", err)
	}

	topic := b.topics.CommandSubscribe()
	if err := b.broker.Subscribe(topic, 1, b.handleMQTTMessage); err != nil {
		return fmt.Errorf("subscribe to commands: %w", err)
	}
	b.logInfo("subscribed to commands", "topic", topic)

	b.health.Start(ctx)
	if err := b.health.PublishNow(); err != nil {
		b.logError("failed to publish health", err)
	}

	b.wg.Add(1)
	go b.pollLoop(ctx)

	b.logInfo("bridge started", "bridge_id", b.id, "cameras", b.CameraCount())
	return nil
}

// Stop shuts the bridge down, aborting in-flight commands.
func (b *Bridge) Stop() {
	b.stopOnce.Do(func() {
		close(b.done)
		b.ctxCancel()
		b.health.Stop()
		b.wg.Wait()
		b.logInfo("bridge stopped")
	})
}

func (b *Bridge) pollLoop(ctx context.Context) {
	defer b.wg.Done()

	ticker := time.NewTicker(b.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-b.done:
			return
		case <-ticker.C:
			if err := b.Discover(b.ctx); err != nil {
				b.logWarn("poll failed", "error", err)
			}
		}
	}
}

// Discover fetches the device list, adds new cameras, refreshes known ones,
// drops cameras no longer on the account and publishes every camera's state.
func (b *Bridge) Discover(ctx context.Context) error {
	records, err := b.cloud.Devices(ctx)
	b.recordPoll(err)
	if err != nil {
		return fmt.Errorf("listing devices: %w", err)
	}

	seen := make(map[string]bool, len(records))
	var entries []*cameraEntry
	for _, rec := range records {
		if rec.Serial == "" {
			continue
		}
		seen[rec.Serial] = true
		entries = append(entries, b.upsert(rec))
	}

	b.camMu.Lock()
	for serial := range b.cameras {
		if !seen[serial] {
			delete(b.cameras, serial)
			b.logInfo("camera removed", "serial", serial)
		}
	}
	count := len(b.cameras)
	b.camMu.Unlock()
	b.metrics.setCameras(count)

	for _, e := range entries {
		b.publishState(e)
	}
	return nil
}

// upsert returns the entry for rec.Serial, creating it or syncing its record.
func (b *Bridge) upsert(rec camera.Record) *cameraEntry {
	b.camMu.Lock()
	e, known := b.cameras[rec.Serial]
	if !known {
		e = &cameraEntry{cam: camera.New(b.cloud, rec, camera.WithLogger(b.getLogger()))}
		b.cameras[rec.Serial] = e
	}
	b.camMu.Unlock()

	if known {
		e.mu.Lock()
		e.cam.Sync(rec)
		e.mu.Unlock()
	} else {
		b.logInfo("camera discovered",
			"serial", rec.Serial,
			"name", rec.Name,
			"device_type", rec.DeviceType,
			"family", e.cam.Family())
	}
	return e
}

func (b *Bridge) recordPoll(err error) {
	b.pollMu.Lock()
	b.lastPoll = time.Now().UTC()
	b.lastPollErr = err
	b.pollMu.Unlock()
	b.metrics.pollDone(err == nil)
}

func (b *Bridge) lookup(serial string) *cameraEntry {
	b.camMu.RLock()
	defer b.camMu.RUnlock()
	return b.cameras[serial]
}

// ─── Commands ───────────────────────────────────────────────────────

// handleMQTTMessage parses a command from graylogic/command/eufy/{serial}.
func (b *Bridge) handleMQTTMessage(topic string, payload []byte) {
	parts := strings.Split(topic, "/")
	if len(parts) != commandTopicParts || parts[1] != "command" {
		b.logWarn("ignoring message on unexpected topic", "topic", topic)
		return
	}
	serial := parts[3]

	var cmd CommandMessage
	if err := json.Unmarshal(payload, &cmd); err != nil {
		b.publishAck(NewAckError(CommandMessage{Serial: serial}, ErrCodeInvalidCommand,
			fmt.Sprintf("malformed command: %v", err)))
		b.logWarn("failed to parse command", "topic", topic, "error", err)
		return
	}
	if cmd.Serial == "" {
		cmd.Serial = serial
	}
	if cmd.Serial != serial {
		b.publishAck(NewAckError(cmd, ErrCodeInvalidParameters,
			fmt.Sprintf("serial %q does not match topic %q", cmd.Serial, serial)))
		return
	}
	if cmd.Source == "" {
		cmd.Source = audit.SourceMQTT
	}

	b.Execute(b.ctx, cmd)
}

// Execute runs a command against its camera, publishes the acknowledgement
// and the camera's new state, and records the outcome. The returned ack is
// the one published.
func (b *Bridge) Execute(ctx context.Context, cmd CommandMessage) AckMessage {
	start := time.Now()
	b.logInfo("received command",
		"command_id", cmd.ID,
		"serial", cmd.Serial,
		"command", cmd.Command,
		"source", cmd.Source)

	var (
		result map[string]any
		err    error
	)
	e := b.lookup(cmd.Serial)
	if e == nil {
		err = fmt.Errorf("%w: %s", ErrCameraNotFound, cmd.Serial)
	} else {
		cmdCtx, cancel := context.WithTimeout(ctx, b.commandTimeout)
		e.mu.Lock()
		result, err = dispatch(cmdCtx, e.cam, cmd)
		e.mu.Unlock()
		cancel()
	}
	elapsed := time.Since(start)

	var ack AckMessage
	if err != nil {
		ack = NewAckError(cmd, errorCode(err), err.Error())
		b.logWarn("command failed", "command_id", cmd.ID, "serial", cmd.Serial, "command", cmd.Command, "error", err)
	} else {
		ack = NewAckMessage(cmd, result)
	}
	b.publishAck(ack)

	// A failed multi-step command may still have changed the camera.
	if e != nil {
		b.publishState(e)
	}

	b.metrics.commandDone(commandLabel(cmd.Command), err == nil)
	if b.telemetry != nil {
		b.telemetry.WriteCommand(cmd.Serial, cmd.Command, err == nil, elapsed)
	}
	b.recordAudit(cmd, ack, elapsed)
	return ack
}

// dispatch maps a command onto the camera facade.
func dispatch(ctx context.Context, cam *camera.Camera, cmd CommandMessage) (map[string]any, error) {
	p := cmd.Parameters

	switch cmd.Command {
	case CmdStatusLED:
		return nil, toggle(p, func() error { return cam.StatusLEDOn(ctx) }, func() error { return cam.StatusLEDOff(ctx) })

	case CmdPower:
		return nil, toggle(p, func() error { return cam.TurnOn(ctx) }, func() error { return cam.TurnOff(ctx) })

	case CmdMotionDetection:
		return nil, toggle(p, func() error { return cam.StartMotionDetection(ctx) }, func() error { return cam.StopMotionDetection(ctx) })

	case CmdSoundDetection:
		return nil, toggle(p, func() error { return cam.StartSoundDetection(ctx) }, func() error { return cam.StopSoundDetection(ctx) })

	case CmdMotionDetectionMode:
		mode, err := enumParam(cam, params.AttrMotionDetectionType, p, "mode")
		if err != nil {
			return nil, err
		}
		return nil, cam.SetMotionDetectionMode(ctx, mode)

	case CmdMotionDetectionSensitivity:
		level, ok := p["level"]
		if !ok {
			return nil, fmt.Errorf("%w: %q is required", ErrInvalidParameters, "level")
		}
		return nil, cam.SetMotionDetectionSensitivity(ctx, level)

	case CmdSoundDetectionMode:
		mode, err := enumParam(cam, params.AttrSoundDetectionType, p, "mode")
		if err != nil {
			return nil, err
		}
		return nil, cam.SetSoundDetectionMode(ctx, mode)

	case CmdSoundDetectionSensitivity:
		level, err := enumParam(cam, params.AttrSoundDetectionSensitivity, p, "level")
		if err != nil {
			return nil, err
		}
		return nil, cam.SetSoundDetectionSensitivity(ctx, level)

	case CmdSnooze:
		seconds, err := intParam(p, "seconds")
		if err != nil {
			return nil, err
		}
		return nil, cam.SnoozeFor(ctx, seconds)

	case CmdSnoozeOff:
		return nil, cam.SnoozeOff(ctx)

	case CmdSetParams:
		assignments, err := assignmentsParam(p)
		if err != nil {
			return nil, err
		}
		return nil, cam.SetParams(ctx, assignments...)

	case CmdStartStream:
		url, err := cam.StartStream(ctx)
		if err != nil {
			return nil, err
		}
		return map[string]any{"url": url}, nil

	case CmdStopStream:
		return nil, cam.StopStream(ctx)

	case CmdRefresh:
		return nil, cam.Update(ctx)

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCommand, cmd.Command)
	}
}

// errorCode maps a command error onto an ack error code.
func errorCode(err error) string {
	switch {
	case errors.Is(err, ErrUnknownCommand):
		return ErrCodeInvalidCommand
	case errors.Is(err, ErrCameraNotFound):
		return ErrCodeNotConfigured
	case errors.Is(err, ErrInvalidParameters),
		errors.Is(err, camera.ErrUnsupported),
		errors.Is(err, params.ErrInvalidValue),
		errors.Is(err, params.ErrUnknownAttribute):
		return ErrCodeInvalidParameters
	case errors.Is(err, context.DeadlineExceeded):
		return ErrCodeTimeout
	default:
		return ErrCodeDeviceUnreachable
	}
}

func (b *Bridge) publishAck(ack AckMessage) {
	payload, err := json.Marshal(ack)
	if err != nil {
		b.logError("failed to marshal ack", err)
		return
	}
	if err := b.broker.Publish(b.topics.Ack(ack.Serial), payload, 1, false); err != nil {
		b.logError("failed to publish ack", err)
	}
}

func (b *Bridge) recordAudit(cmd CommandMessage, ack AckMessage, elapsed time.Duration) {
	if b.audit == nil {
		return
	}
	entry := &audit.Entry{
		Command:    cmd.Command,
		Serial:     cmd.Serial,
		Source:     cmd.Source,
		Actor:      cmd.UserID,
		Result:     string(ack.Status),
		Params:     cmd.Parameters,
		DurationMS: elapsed.Milliseconds(),
	}
	if entry.Command == "" {
		entry.Command = "unknown"
	}
	if ack.Error != nil {
		entry.Error = ack.Error.Code + ": " + ack.Error.Message
	}

	// The command context may already be cancelled; the record should still land.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := b.audit.Record(ctx, entry); err != nil {
		b.logError("failed to record audit entry", err)
	}
}

// ─── State ──────────────────────────────────────────────────────────

// snapshot builds the state message of one camera under its lock.
func snapshot(e *cameraEntry) (StateMessage, params.DecodeResult) {
	e.mu.Lock()
	defer e.mu.Unlock()
	res := e.cam.DecodedParams()
	return NewStateMessage(e.cam, res), res
}

func (b *Bridge) publishState(e *cameraEntry) {
	msg, res := snapshot(e)
	b.metrics.skipped(msg.Device.Family, len(res.Skipped))

	payload, err := json.Marshal(msg)
	if err != nil {
		b.logError("failed to marshal state", err)
		return
	}
	if err := b.broker.Publish(b.topics.State(msg.Serial), payload, 1, true); err != nil {
		b.logError("failed to publish state", err)
	}
	if b.telemetry != nil {
		b.telemetry.WriteCameraState(msg.Serial, msg.Device.Family, res.Values, msg.Timestamp)
	}

	b.listenerMu.RLock()
	listeners := b.listeners
	b.listenerMu.RUnlock()
	for _, fn := range listeners {
		fn(msg)
	}
}

// OnState registers fn to receive every state message the bridge publishes.
// fn runs synchronously on the publishing goroutine and must not block.
func (b *Bridge) OnState(fn func(StateMessage)) {
	b.listenerMu.Lock()
	b.listeners = append(b.listeners, fn)
	b.listenerMu.Unlock()
}

// Cameras returns the current state of every camera, ordered by serial.
// No cloud request is made.
func (b *Bridge) Cameras() []StateMessage {
	b.camMu.RLock()
	entries := make([]*cameraEntry, 0, len(b.cameras))
	for _, e := range b.cameras {
		entries = append(entries, e)
	}
	b.camMu.RUnlock()

	out := make([]StateMessage, 0, len(entries))
	for _, e := range entries {
		msg, _ := snapshot(e)
		out = append(out, msg)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Serial < out[j].Serial })
	return out
}

// Camera returns the current state of one camera.
func (b *Bridge) Camera(serial string) (StateMessage, bool) {
	e := b.lookup(serial)
	if e == nil {
		return StateMessage{}, false
	}
	msg, _ := snapshot(e)
	return msg, true
}

// ─── HealthSource ───────────────────────────────────────────────────

// CameraCount returns the number of managed cameras.
func (b *Bridge) CameraCount() int {
	b.camMu.RLock()
	defer b.camMu.RUnlock()
	return len(b.cameras)
}

// CloudStatus reports the outcome of the last device list poll.
func (b *Bridge) CloudStatus() CloudStatus {
	b.pollMu.RLock()
	defer b.pollMu.RUnlock()

	if b.lastPoll.IsZero() {
		return CloudStatus{Status: cloudUnknown}
	}
	at := b.lastPoll
	cs := CloudStatus{Status: cloudReachable, LastPollAt: &at}
	if b.lastPollErr != nil {
		cs.Status = cloudUnreachable
		cs.LastError = b.lastPollErr.Error()
	}
	return cs
}

// Statistics returns the running counters.
func (b *Bridge) Statistics() BridgeStatistic {
	return b.metrics.Snapshot()
}

// ─── Logging ────────────────────────────────────────────────────────

// SetLogger sets the logger for the bridge and its health reporter.
// Cameras discovered afterwards use it too.
func (b *Bridge) SetLogger(logger Logger) {
	b.loggerMu.Lock()
	b.logger = logger
	b.loggerMu.Unlock()
	b.health.SetLogger(logger)
}

func (b *Bridge) getLogger() Logger {
	b.loggerMu.RLock()
	defer b.loggerMu.RUnlock()
	return b.logger
}

func (b *Bridge) logInfo(msg string, keysAndValues ...any) {
	if logger := b.getLogger(); logger != nil {
		logger.Info(msg, keysAndValues...)
	}
}

func (b *Bridge) logWarn(msg string, keysAndValues ...any) {
	if logger := b.getLogger(); logger != nil {
		logger.Warn(msg, keysAndValues...)
	}
}

func (b *Bridge) logError(msg string, err error) {
	if logger := b.getLogger(); logger != nil {
		logger.Error(msg, "error", err)
	}
}
