package types

// MetricsCollector receives operational metrics from the allocator.
//
// Implementations must be safe for concurrent use. A no-op implementation is
// provided in internal/metrics; a Prometheus-backed implementation is
// available for production deployments.
type MetricsCollector interface {
	// RecordAssignment records the outcome of an Assign call. The outcome
	// label is "ok" on success or the error Kind string on refusal.
	RecordAssignment(outcome string)

	// RecordGuardContention increments the counter of Assign calls rejected
	// because another allocation held the guard.
	RecordGuardContention()

	// RecordResolution records an Active assignment leaving its initial
	// state. Status is "completed" or "unassigned".
	RecordResolution(status string)

	// SetActiveAssignments sets the current number of Active assignments.
	SetActiveAssignments(count int)

	// RecordImport records a bulk item import: how many items were
	// inserted, updated, and preserved (kept assignment-derived state).
	RecordImport(inserted, updated, preserved int)

	// ObserveAllocationDuration records the time spent inside the
	// allocation critical section, in seconds.
	ObserveAllocationDuration(seconds float64)
}
