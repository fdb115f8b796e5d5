package policy

import (
	"slices"

	"github.com/rotad/rota/types"
)

// PriorityFirst selects strictly by priority class, then creation time.
type PriorityFirst struct{}

var _ types.SelectionPolicy = (*PriorityFirst)(nil)

// NewPriorityFirst creates a priority-ordered selection policy.
//
// The policy orders candidates by priority class (P1 before P2 before P3),
// then by creation time (oldest first), then by item ID. An item's
// unassignment history has no effect on its position.
//
// Returns:
//   - *PriorityFirst: Initialized policy
//
// Example:
//
//	alloc, err := rota.New(nil, stores, rota.WithPolicy(policy.NewPriorityFirst()))
func NewPriorityFirst() *PriorityFirst {
	return &PriorityFirst{}
}

// Name returns "priority".
func (p *PriorityFirst) Name() string { return "priority" }

// Select returns the highest-priority, oldest candidate.
//
// Parameters:
//   - candidates: Set of assignable items (order not significant)
//
// Returns:
//   - types.WorkItem: The chosen item
//   - bool: false if candidates is empty
func (p *PriorityFirst) Select(candidates []types.WorkItem) (types.WorkItem, bool) {
	if len(candidates) == 0 {
		return types.WorkItem{}, false
	}

	return slices.MinFunc(candidates, types.WorkItem.Compare), true
}
