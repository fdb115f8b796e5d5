package types

import "errors"

// Sentinel errors for the rota library.
//
// These errors provide type-safe error checking using errors.Is() and
// errors.As(). All components should use these sentinel errors for known
// error conditions and wrap external errors with context using
// fmt.Errorf("%s: %w", msg, err).
//
// Every sentinel maps to a machine-readable Kind via KindOf, which transport
// layers use to pick status codes without string matching.

// Allocator errors - Public API errors returned by the Allocator component.
var (
	// ErrInvalidConfig is returned when the configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrInvalidArgument is returned when required input is missing or
	// malformed (user-correctable).
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrAgentNotFound is returned when the referenced agent does not exist.
	ErrAgentNotFound = errors.New("agent not found")

	// ErrItemNotFound is returned when the referenced work item does not exist.
	ErrItemNotFound = errors.New("work item not found")

	// ErrAssignmentNotFound is returned when no Active assignment matches
	// the request. Attempting to complete an already-terminal assignment
	// also yields this error: terminal states are invisible to mutation.
	ErrAssignmentNotFound = errors.New("no active assignment found")

	// ErrCapacityExceeded is returned when the agent already holds as many
	// Active assignments as its capacity allows. A business-rule refusal,
	// not a system fault.
	ErrCapacityExceeded = errors.New("agent capacity exceeded")

	// ErrNoAvailableWork is returned when no item is eligible for
	// assignment. A business-rule refusal, not a system fault.
	ErrNoAvailableWork = errors.New("no available work items")

	// ErrAllocationInProgress is returned when another allocation holds the
	// guard. Transient: callers should retry.
	ErrAllocationInProgress = errors.New("another allocation is in progress")

	// ErrAgentBusy is returned when removing an agent that still holds
	// Active assignments.
	ErrAgentBusy = errors.New("agent has active assignments")
)

// Store errors - returned by store implementations.
var (
	// ErrStorage wraps I/O faults from a store backend. Surfaced to the
	// caller, never retried automatically.
	ErrStorage = errors.New("storage failure")

	// ErrStaleRecord is returned by atomic per-record updates when the
	// record changed since it was read. Internal to store implementations;
	// surfaced as ErrAssignmentNotFound once the record is terminal.
	ErrStaleRecord = errors.New("record modified concurrently")
)

// Kind classifies an error for transport mapping.
type Kind int

// Error kinds, one per taxonomy entry.
const (
	KindUnknown Kind = iota
	KindInvalidArgument
	KindNotFound
	KindCapacityExceeded
	KindNoAvailableWork
	KindAllocationInProgress
	KindConflict
	KindStorage
)

// String returns the snake_case label for the kind, suitable for JSON error
// payloads and metrics labels.
func (k Kind) String() string {
	switch k {
	case KindInvalidArgument:
		return "invalid_argument"
	case KindNotFound:
		return "not_found"
	case KindCapacityExceeded:
		return "capacity_exceeded"
	case KindNoAvailableWork:
		return "no_available_work"
	case KindAllocationInProgress:
		return "allocation_in_progress"
	case KindConflict:
		return "conflict"
	case KindStorage:
		return "storage_failure"
	default:
		return "unknown"
	}
}

// KindOf maps err (possibly wrapped) to its Kind.
//
// Returns:
//   - Kind: The taxonomy entry, or KindUnknown for unrecognized errors
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindUnknown
	case errors.Is(err, ErrInvalidArgument):
		return KindInvalidArgument
	case errors.Is(err, ErrAgentNotFound),
		errors.Is(err, ErrItemNotFound),
		errors.Is(err, ErrAssignmentNotFound):
		return KindNotFound
	case errors.Is(err, ErrCapacityExceeded):
		return KindCapacityExceeded
	case errors.Is(err, ErrNoAvailableWork):
		return KindNoAvailableWork
	case errors.Is(err, ErrAllocationInProgress):
		return KindAllocationInProgress
	case errors.Is(err, ErrAgentBusy):
		return KindConflict
	case errors.Is(err, ErrStorage):
		return KindStorage
	default:
		return KindUnknown
	}
}

// Retryable reports whether the error is a transient condition the caller
// should retry. Only guard contention qualifies; business refusals and
// storage faults are not retryable by the client.
func Retryable(err error) bool {
	return errors.Is(err, ErrAllocationInProgress)
}
