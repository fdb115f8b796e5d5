// Package policy provides selection policies for the rota allocator.
//
// A selection policy decides which candidate work item an agent receives
// next. Two policies are provided:
//
//   - PriorityFirst: strict priority-class order (P1 before P2 before P3),
//     oldest creation time within a class.
//   - RequeueFirst: previously-unassigned items take absolute precedence,
//     oldest unassignment first, before falling back to PriorityFirst order.
//     This is the default policy.
//
// Both policies are deterministic and break remaining ties by item ID, so
// repeated calls over the same candidate set always pick the same item
// regardless of input order.
package policy
