// Package metrics provides MetricsCollector implementations for the rota
// allocator.
package metrics

import "github.com/rotad/rota/types"

// NopMetrics implements a no-op metrics collector.
//
// All metrics are discarded. Useful for testing or when external metrics
// collection is used.
type NopMetrics struct{}

// Compile-time assertion that NopMetrics implements MetricsCollector.
var _ types.MetricsCollector = (*NopMetrics)(nil)

// NewNop creates a new no-op metrics collector.
//
// Returns:
//   - *NopMetrics: A new no-op metrics collector instance
//
// Example:
//
//	alloc, err := rota.New(nil, stores, rota.WithMetrics(metrics.NewNop()))
func NewNop() *NopMetrics {
	return &NopMetrics{}
}

// RecordAssignment discards the assignment outcome.
func (n *NopMetrics) RecordAssignment(_ /* outcome */ string) {
	// No-op
}

// RecordGuardContention discards the contention event.
func (n *NopMetrics) RecordGuardContention() {
	// No-op
}

// RecordResolution discards the resolution event.
func (n *NopMetrics) RecordResolution(_ /* status */ string) {
	// No-op
}

// SetActiveAssignments discards the gauge update.
func (n *NopMetrics) SetActiveAssignments(_ /* count */ int) {
	// No-op
}

// RecordImport discards the import counters.
func (n *NopMetrics) RecordImport(_, _, _ /* inserted, updated, preserved */ int) {
	// No-op
}

// ObserveAllocationDuration discards the duration observation.
func (n *NopMetrics) ObserveAllocationDuration(_ /* seconds */ float64) {
	// No-op
}
