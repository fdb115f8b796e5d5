package policy

import (
	"slices"

	"github.com/rotad/rota/types"
)

// RequeueFirst gives previously-unassigned items absolute precedence.
type RequeueFirst struct{}

var _ types.SelectionPolicy = (*RequeueFirst)(nil)

// NewRequeueFirst creates an unassignment-aware selection policy.
//
// Items that were previously unassigned and re-queued are offered before
// items that have never been assigned, regardless of priority class, ordered
// by their unassignment timestamp (oldest first). Candidates with no
// unassignment history fall back to priority/creation order.
//
// This is the allocator's default policy: an item taken away from one
// reviewer should reach the next reviewer before fresh work does.
//
// Returns:
//   - *RequeueFirst: Initialized policy
//
// Example:
//
//	alloc, err := rota.New(nil, stores, rota.WithPolicy(policy.NewRequeueFirst()))
func NewRequeueFirst() *RequeueFirst {
	return &RequeueFirst{}
}

// Name returns "requeue".
func (r *RequeueFirst) Name() string { return "requeue" }

// Select returns the oldest re-queued candidate, or the highest-priority
// oldest candidate when none were previously unassigned.
//
// Parameters:
//   - candidates: Set of assignable items (order not significant)
//
// Returns:
//   - types.WorkItem: The chosen item
//   - bool: false if candidates is empty
func (r *RequeueFirst) Select(candidates []types.WorkItem) (types.WorkItem, bool) {
	if len(candidates) == 0 {
		return types.WorkItem{}, false
	}

	return slices.MinFunc(candidates, compareRequeue), true
}

// compareRequeue orders re-queued items first (oldest unassignment wins),
// then falls back to priority/creation order.
func compareRequeue(a, b types.WorkItem) int {
	ar, br := a.Requeued(), b.Requeued()
	if ar != br {
		if ar {
			return -1
		}

		return 1
	}
	if ar && br && !a.LastUnassignedAt.Equal(b.LastUnassignedAt) {
		if a.LastUnassignedAt.Before(b.LastUnassignedAt) {
			return -1
		}

		return 1
	}

	return a.Compare(b)
}
