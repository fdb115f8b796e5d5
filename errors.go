package rota

import "github.com/rotad/rota/types"

// Sentinel errors returned by the Allocator, re-exported from the types
// package so callers can match with errors.Is against the root package.
var (
	// ErrInvalidConfig is returned when the configuration is invalid.
	ErrInvalidConfig = types.ErrInvalidConfig

	// ErrInvalidArgument is returned when required input is missing or malformed.
	ErrInvalidArgument = types.ErrInvalidArgument

	// ErrAgentNotFound is returned when the referenced agent does not exist.
	ErrAgentNotFound = types.ErrAgentNotFound

	// ErrItemNotFound is returned when the referenced work item does not exist.
	ErrItemNotFound = types.ErrItemNotFound

	// ErrAssignmentNotFound is returned when no Active assignment matches.
	ErrAssignmentNotFound = types.ErrAssignmentNotFound

	// ErrCapacityExceeded is returned when the agent is at capacity.
	ErrCapacityExceeded = types.ErrCapacityExceeded

	// ErrNoAvailableWork is returned when no item is eligible for assignment.
	ErrNoAvailableWork = types.ErrNoAvailableWork

	// ErrAllocationInProgress is returned when another allocation holds the
	// guard. Transient: callers should retry.
	ErrAllocationInProgress = types.ErrAllocationInProgress

	// ErrAgentBusy is returned when removing an agent with Active assignments.
	ErrAgentBusy = types.ErrAgentBusy

	// ErrStorage wraps I/O faults from a store backend.
	ErrStorage = types.ErrStorage
)
