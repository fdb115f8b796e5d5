package types

import (
	"encoding/json"
	"fmt"
	"time"
)

// Status is the lifecycle state of an Assignment.
//
// The state machine is:
//
//	Active (initial) ──> Completed (terminal)
//	                └──> Unassigned (terminal)
//
// There are no transitions out of a terminal state. A new Assignment may be
// created later for the same item once the item returns to available.
type Status int

// Assignment lifecycle states.
const (
	// StatusActive is the initial state: the agent currently holds the item.
	StatusActive Status = iota + 1

	// StatusCompleted is terminal: the agent finished the review.
	StatusCompleted

	// StatusUnassigned is terminal: the item was taken back before
	// completion and re-queued.
	StatusUnassigned
)

// String returns the lowercase label for the status.
func (s Status) String() string {
	switch s {
	case StatusActive:
		return "active"
	case StatusCompleted:
		return "completed"
	case StatusUnassigned:
		return "unassigned"
	default:
		return "unknown"
	}
}

// Terminal reports whether the status permits no further transitions.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusUnassigned
}

// MarshalJSON encodes the status as its lowercase label.
func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON decodes a lowercase status label.
func (s *Status) UnmarshalJSON(data []byte) error {
	var label string
	if err := json.Unmarshal(data, &label); err != nil {
		return err
	}
	switch label {
	case "active":
		*s = StatusActive
	case "completed":
		*s = StatusCompleted
	case "unassigned":
		*s = StatusUnassigned
	default:
		return fmt.Errorf("unknown status %q", label)
	}

	return nil
}

// Assignment binds one agent to one work item for one review cycle.
//
// Assignments are created only by the allocator, always in StatusActive.
// For a given item, at most one Assignment may be Active at any time.
type Assignment struct {
	// ID is a unique identifier for this assignment record.
	ID string `json:"id"`

	// AgentID references the assigned agent.
	AgentID string `json:"agentId"`

	// ItemID references the assigned work item.
	ItemID string `json:"itemId"`

	// Status is the lifecycle state (active, completed, unassigned).
	Status Status `json:"status"`

	// AssignedAt is when the allocator created the assignment.
	AssignedAt time.Time `json:"assignedAt"`

	// CompletedAt is set on the Active -> Completed transition.
	CompletedAt time.Time `json:"completedAt,omitzero"`

	// UnassignedAt is set on the Active -> Unassigned transition.
	UnassignedAt time.Time `json:"unassignedAt,omitzero"`

	// UnassignedBy records the agent's display name at the time of
	// unassignment, for reporting.
	UnassignedBy string `json:"unassignedBy,omitempty"`
}

// Active reports whether the assignment is still in its initial state.
func (a Assignment) Active() bool {
	return a.Status == StatusActive
}

// Resolution describes how an Active assignment leaves its initial state.
// It is applied atomically by the ledger: the update succeeds only while the
// record is still Active, which makes terminal states irreversible without a
// global lock.
type Resolution struct {
	// Status is the terminal state to transition to. Must be
	// StatusCompleted or StatusUnassigned.
	Status Status

	// At is the transition timestamp (CompletedAt or UnassignedAt).
	At time.Time

	// By is the unassigning agent's display name. Ignored for completions.
	By string
}
