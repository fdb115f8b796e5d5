package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/rotad/rota/types"
)

func TestNewNop(t *testing.T) {
	m := NewNop()

	require.NotNil(t, m)
	require.IsType(t, &NopMetrics{}, m)
}

func TestNopMetrics_AllMethodsAreSafe(t *testing.T) {
	var m types.MetricsCollector = NewNop()

	m.RecordAssignment("ok")
	m.RecordGuardContention()
	m.RecordResolution("completed")
	m.SetActiveAssignments(3)
	m.RecordImport(1, 2, 3)
	m.ObserveAllocationDuration(0.001)
}

func TestPrometheusCollector_RecordsCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewPrometheus(reg, "rotatest")

	m.RecordAssignment("ok")
	m.RecordAssignment("ok")
	m.RecordAssignment("capacity_exceeded")
	m.RecordGuardContention()
	m.RecordResolution("unassigned")
	m.SetActiveAssignments(5)
	m.RecordImport(2, 1, 3)
	m.ObserveAllocationDuration(0.002)

	require.Equal(t, float64(2),
		testutil.ToFloat64(m.assignments.WithLabelValues("ok")))
	require.Equal(t, float64(1),
		testutil.ToFloat64(m.assignments.WithLabelValues("capacity_exceeded")))
	require.Equal(t, float64(1), testutil.ToFloat64(m.guardContention))
	require.Equal(t, float64(1),
		testutil.ToFloat64(m.resolutions.WithLabelValues("unassigned")))
	require.Equal(t, float64(5), testutil.ToFloat64(m.activeAssignments))
	require.Equal(t, float64(3),
		testutil.ToFloat64(m.importedItems.WithLabelValues("preserved")))
}

func TestPrometheusCollector_SharedRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()

	// Two collectors against one registry must not panic on registration.
	a := NewPrometheus(reg, "rotatest")
	b := NewPrometheus(reg, "rotatest")

	a.RecordAssignment("ok")
	b.RecordAssignment("ok")
}

func TestPrometheusCollector_Defaults(t *testing.T) {
	m := NewPrometheus(prometheus.NewRegistry(), "")
	require.Equal(t, "rota", m.namespace)
}
