package telemetry

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestObserveOpcodeIncrementsCounters(t *testing.T) {
	m := NewMetrics("worker")

	m.ObserveOpcode("effProcessEvents", "vst2", "ok", 0.0005)
	m.ObserveOpcode("effProcessEvents", "vst2", "ok", 0.0012)
	m.ObserveOpcode("effGetChunk", "vst2", "error", 0.0002)

	require.Equal(t, float64(2), testutil.ToFloat64(m.OpcodeTotal.WithLabelValues("effProcessEvents", "vst2", "ok")))
	require.Equal(t, float64(1), testutil.ToFloat64(m.OpcodeTotal.WithLabelValues("effGetChunk", "vst2", "error")))
}

func TestMetricsRegisterOnPrivateRegistry(t *testing.T) {
	m1 := NewMetrics("worker")
	m2 := NewMetrics("native")
	require.NotSame(t, m1.Registry, m2.Registry, "each component must get its own registry so registering twice never panics")
}
