package eufy

import (
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "graylogic_eufy"

// Metrics holds the bridge's Prometheus collectors and the plain counters
// reported in health messages.
type Metrics struct {
	commands    *prometheus.CounterVec
	polls       *prometheus.CounterVec
	decodeSkips *prometheus.CounterVec
	cameras     prometheus.Gauge

	accepted   atomic.Uint64
	failed     atomic.Uint64
	pollsOK    atomic.Uint64
	pollErrors atomic.Uint64
	skips      atomic.Uint64
}

// NewMetrics creates the collectors and registers them with reg. A nil reg
// leaves them unregistered, which is convenient in tests.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "commands_total",
			Help:      "Commands executed, by command and result.",
		}, []string{"command", "result"}),
		polls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "polls_total",
			Help:      "Cloud device list polls, by result.",
		}, []string{"result"}),
		decodeSkips: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "decode_skips_total",
			Help:      "Parameters that could not be decoded, by family.",
		}, []string{"family"}),
		cameras: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "cameras",
			Help:      "Cameras currently managed by the bridge.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.commands, m.polls, m.decodeSkips, m.cameras)
	}
	return m
}

func (m *Metrics) commandDone(command string, ok bool) {
	result := string(AckAccepted)
	if ok {
		m.accepted.Add(1)
	} else {
		result = string(AckFailed)
		m.failed.Add(1)
	}
	m.commands.WithLabelValues(command, result).Inc()
}

func (m *Metrics) pollDone(ok bool) {
	if ok {
		m.pollsOK.Add(1)
		m.polls.WithLabelValues("ok").Inc()
		return
	}
	m.pollErrors.Add(1)
	m.polls.WithLabelValues("error").Inc()
}

func (m *Metrics) skipped(family string, n int) {
	if n <= 0 {
		return
	}
	m.skips.Add(uint64(n))
	m.decodeSkips.WithLabelValues(family).Add(float64(n))
}

func (m *Metrics) setCameras(n int) {
	m.cameras.Set(float64(n))
}

// Snapshot returns the plain counters.
func (m *Metrics) Snapshot() BridgeStatistic {
	return BridgeStatistic{
		CommandsAccepted: m.accepted.Load(),
		CommandsFailed:   m.failed.Load(),
		Polls:            m.pollsOK.Load() + m.pollErrors.Load(),
		PollErrors:       m.pollErrors.Load(),
		DecodeSkips:      m.skips.Load(),
	}
}
