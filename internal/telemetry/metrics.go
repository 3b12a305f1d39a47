package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics is the bridge's Prometheus collector set: opcode dispatch
// latency and counts, socket connection state, and shared-memory
// renegotiation events. One Metrics is created per worker process and
// registered against its own registry rather than the global default, so
// cmd/worker can expose it on a private diagnostics listener without
// colliding with anything else in the process.
type Metrics struct {
	Registry *prometheus.Registry

	OpcodeDuration *prometheus.HistogramVec
	OpcodeTotal    *prometheus.CounterVec
	SocketsOpen    prometheus.Gauge
	ShmRenegotiate prometheus.Counter
	ProcessBlocks  prometheus.Counter
	Underruns      prometheus.Counter
}

// NewMetrics builds a fresh Metrics and registers it on its own registry.
// component becomes part of every metric's namespace, e.g. "worker" gives
// "plugbridge_worker"; no "component" label is attached.
func NewMetrics(component string) *Metrics {
	reg := prometheus.NewRegistry()
	namespace := "plugbridge_" + component

	m := &Metrics{
		Registry: reg,
		OpcodeDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "opcode_duration_seconds",
				Help:      "Duration of a dispatched opcode round trip, from request send to response receipt.",
				Buckets:   prometheus.ExponentialBuckets(0.00005, 2, 16),
			},
			[]string{"opcode", "abi"},
		),
		OpcodeTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "opcode_total",
				Help:      "Total number of dispatched opcodes by result.",
			},
			[]string{"opcode", "abi", "result"},
		),
		SocketsOpen: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "sockets_open",
				Help:      "Number of sockets in the current socket set that are connected.",
			},
		),
		ShmRenegotiate: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "shm_renegotiations_total",
				Help:      "Total number of shared-memory audio buffer renegotiations.",
			},
		),
		ProcessBlocks: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "process_blocks_total",
				Help:      "Total number of audio blocks processed.",
			},
		),
		Underruns: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "underruns_total",
				Help:      "Total number of audio blocks where the worker response did not arrive before the host deadline.",
			},
		),
	}

	reg.MustRegister(
		m.OpcodeDuration,
		m.OpcodeTotal,
		m.SocketsOpen,
		m.ShmRenegotiate,
		m.ProcessBlocks,
		m.Underruns,
	)
	return m
}

// ObserveOpcode records one opcode round trip.
func (m *Metrics) ObserveOpcode(opcode, abi, result string, seconds float64) {
	m.OpcodeTotal.WithLabelValues(opcode, abi, result).Inc()
	m.OpcodeDuration.WithLabelValues(opcode, abi).Observe(seconds)
}
