package types

import (
	"encoding/json"
	"time"
)

// PriorityClass orders work items by urgency. Lower values are more urgent:
// P1 outranks P2, P2 outranks P3. The zero value is invalid; unspecified
// priorities default to PriorityP3.
type PriorityClass int

// Priority classes, most urgent first.
const (
	PriorityP1 PriorityClass = iota + 1
	PriorityP2
	PriorityP3
)

// String returns the canonical label for the priority class ("P1".."P3").
func (p PriorityClass) String() string {
	switch p {
	case PriorityP1:
		return "P1"
	case PriorityP2:
		return "P2"
	case PriorityP3:
		return "P3"
	default:
		return "unknown"
	}
}

// Valid reports whether p is one of the defined priority classes.
func (p PriorityClass) Valid() bool {
	return p >= PriorityP1 && p <= PriorityP3
}

// MarshalJSON encodes the priority class as its label ("P1".."P3").
func (p PriorityClass) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

// UnmarshalJSON decodes a priority label; unrecognized labels default to P3.
func (p *PriorityClass) UnmarshalJSON(data []byte) error {
	var label string
	if err := json.Unmarshal(data, &label); err != nil {
		return err
	}
	*p = ParsePriorityClass(label)

	return nil
}

// ParsePriorityClass converts a label ("P1", "p2", ...) to a PriorityClass.
// Empty or unrecognized labels default to PriorityP3, matching the ingest
// rule that unclassified items sort last.
func ParsePriorityClass(s string) PriorityClass {
	switch s {
	case "P1", "p1", "1":
		return PriorityP1
	case "P2", "p2", "2":
		return PriorityP2
	default:
		return PriorityP3
	}
}

// WorkItem is a unit of reviewable work.
//
// Available is a cached derived flag: it must be true exactly when no Active
// assignment references the item and the item has not been retired. The
// assignment ledger is the source of truth; every status transition keeps
// this flag consistent.
type WorkItem struct {
	// ID is the stable external identifier, unique across the item store.
	ID string `json:"id"`

	// Priority is the item's priority class (P1 before P2 before P3).
	Priority PriorityClass `json:"priority"`

	// CreatedAt is when the item entered the queue. It is the tie-break
	// within a priority class and the sole ordering key for some policies.
	CreatedAt time.Time `json:"createdAt"`

	// Available reports whether the item is eligible for assignment.
	Available bool `json:"available"`

	// LastUnassignedAt is the most recent time an assignment for this item
	// was unassigned (zero if the item was never unassigned). Re-queue-aware
	// policies order previously-unassigned items by this timestamp.
	LastUnassignedAt time.Time `json:"lastUnassignedAt,omitzero"`
}

// Compare orders items by priority class, then by creation time (oldest
// first), then by ID for a stable total order.
//
// Returns:
//   - int: -1 if i sorts before j, 0 if equal, +1 if i sorts after j
func (i WorkItem) Compare(j WorkItem) int {
	if i.Priority != j.Priority {
		if i.Priority < j.Priority {
			return -1
		}

		return 1
	}
	if !i.CreatedAt.Equal(j.CreatedAt) {
		if i.CreatedAt.Before(j.CreatedAt) {
			return -1
		}

		return 1
	}

	switch {
	case i.ID < j.ID:
		return -1
	case i.ID > j.ID:
		return 1
	default:
		return 0
	}
}

// Requeued reports whether the item has been unassigned at least once and is
// therefore eligible for re-queue precedence.
func (i WorkItem) Requeued() bool {
	return !i.LastUnassignedAt.IsZero()
}
