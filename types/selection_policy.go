package types

// SelectionPolicy decides which candidate item an agent receives next.
//
// The allocator builds the candidate set (available items with no Active
// assignment) and delegates the ordering decision to the policy. Policies
// must be deterministic: the same candidate slice, in any input order, must
// always yield the same pick. No randomness.
//
// Implementations live in the policy package.
type SelectionPolicy interface {
	// Name returns a short identifier for logging and configuration
	// (e.g. "priority", "requeue").
	Name() string

	// Select returns the next item to assign from candidates.
	//
	// Parameters:
	//   - candidates: Non-empty set of assignable items (order not significant)
	//
	// Returns:
	//   - WorkItem: The chosen item
	//   - bool: false if candidates is empty
	Select(candidates []WorkItem) (WorkItem, bool)
}
