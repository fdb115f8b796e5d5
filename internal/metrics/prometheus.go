package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/rotad/rota/types"
)

// PrometheusCollector implements types.MetricsCollector backed by Prometheus.
type PrometheusCollector struct {
	reg       prometheus.Registerer
	namespace string
	once      sync.Once

	assignments        *prometheus.CounterVec
	guardContention    prometheus.Counter
	resolutions        *prometheus.CounterVec
	activeAssignments  prometheus.Gauge
	importedItems      *prometheus.CounterVec
	allocationDuration prometheus.Histogram
}

// Compile-time assertion that PrometheusCollector implements MetricsCollector.
var _ types.MetricsCollector = (*PrometheusCollector)(nil)

// NewPrometheus creates a new Prometheus-backed metrics collector.
//
// Parameters:
//   - reg: Prometheus registerer interface (uses prometheus.DefaultRegisterer if nil)
//   - namespace: Prometheus metrics namespace (defaults to "rota" if empty)
//
// Returns:
//   - *PrometheusCollector: A MetricsCollector implementation using Prometheus
func NewPrometheus(reg prometheus.Registerer, namespace string) *PrometheusCollector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if namespace == "" {
		namespace = "rota"
	}

	return &PrometheusCollector{reg: reg, namespace: namespace}
}

func (p *PrometheusCollector) ensureRegistered() {
	p.once.Do(func() {
		p.assignments = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "allocator",
			Name:      "assignments_total",
			Help:      "Total Assign calls by outcome (ok or error kind).",
		}, []string{"outcome"})

		p.guardContention = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "allocator",
			Name:      "guard_contention_total",
			Help:      "Total Assign calls rejected because the guard was held.",
		})

		p.resolutions = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "allocator",
			Name:      "resolutions_total",
			Help:      "Total assignments resolved, by terminal status.",
		}, []string{"status"})

		p.activeAssignments = prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: p.namespace,
			Subsystem: "allocator",
			Name:      "active_assignments",
			Help:      "Current number of Active assignments.",
		})

		p.importedItems = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "ingest",
			Name:      "imported_items_total",
			Help:      "Items processed by bulk import, by merge action.",
		}, []string{"action"})

		p.allocationDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "allocator",
			Name:      "allocation_duration_seconds",
			Help:      "Time spent inside the allocation critical section.",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		})

		collectors := []prometheus.Collector{
			p.assignments,
			p.guardContention,
			p.resolutions,
			p.activeAssignments,
			p.importedItems,
			p.allocationDuration,
		}
		for _, c := range collectors {
			// AlreadyRegisteredError is tolerated so multiple allocators can
			// share a registry in tests.
			if err := p.reg.Register(c); err != nil {
				if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
					panic(err)
				}
			}
		}
	})
}

// RecordAssignment increments the outcome counter for an Assign call.
func (p *PrometheusCollector) RecordAssignment(outcome string) {
	p.ensureRegistered()
	p.assignments.WithLabelValues(outcome).Inc()
}

// RecordGuardContention increments the guard contention counter.
func (p *PrometheusCollector) RecordGuardContention() {
	p.ensureRegistered()
	p.guardContention.Inc()
}

// RecordResolution increments the resolution counter for a terminal status.
func (p *PrometheusCollector) RecordResolution(status string) {
	p.ensureRegistered()
	p.resolutions.WithLabelValues(status).Inc()
}

// SetActiveAssignments sets the active-assignment gauge.
func (p *PrometheusCollector) SetActiveAssignments(count int) {
	p.ensureRegistered()
	p.activeAssignments.Set(float64(count))
}

// RecordImport adds the per-action counters for a bulk import.
func (p *PrometheusCollector) RecordImport(inserted, updated, preserved int) {
	p.ensureRegistered()
	p.importedItems.WithLabelValues("inserted").Add(float64(inserted))
	p.importedItems.WithLabelValues("updated").Add(float64(updated))
	p.importedItems.WithLabelValues("preserved").Add(float64(preserved))
}

// ObserveAllocationDuration records a critical-section duration.
func (p *PrometheusCollector) ObserveAllocationDuration(seconds float64) {
	p.ensureRegistered()
	p.allocationDuration.Observe(seconds)
}
