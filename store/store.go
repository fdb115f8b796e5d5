package store

import (
	"context"

	"github.com/rotad/rota/types"
)

// ItemStore holds work items keyed by their stable external identifier.
//
// Implementations must be safe for concurrent use. The allocator serializes
// multi-record mutations itself; individual operations only need per-record
// atomicity.
type ItemStore interface {
	// GetItem returns the item with the given ID.
	//
	// Returns:
	//   - types.WorkItem: The stored item
	//   - error: types.ErrItemNotFound if absent, types.ErrStorage on I/O faults
	GetItem(ctx context.Context, id string) (types.WorkItem, error)

	// PutItem inserts or replaces an item.
	PutItem(ctx context.Context, item types.WorkItem) error

	// ListItems returns all items ordered by ID.
	ListItems(ctx context.Context) ([]types.WorkItem, error)
}

// AgentStore holds reviewer agents keyed by ID.
type AgentStore interface {
	// GetAgent returns the agent with the given ID.
	//
	// Returns:
	//   - types.Agent: The stored agent
	//   - error: types.ErrAgentNotFound if absent, types.ErrStorage on I/O faults
	GetAgent(ctx context.Context, id string) (types.Agent, error)

	// PutAgent inserts or replaces an agent.
	PutAgent(ctx context.Context, agent types.Agent) error

	// DeleteAgent removes an agent. Deleting an absent agent is not an error.
	DeleteAgent(ctx context.Context, id string) error

	// ListAgents returns all agents ordered by ID.
	ListAgents(ctx context.Context) ([]types.Agent, error)
}

// Ledger is the append-mostly record of assignments and the source of truth
// for assignment status.
//
// Resolve is the only mutation after Append and must be atomic per record:
// it succeeds only while the record is still Active. This property is what
// lets complete/unassign paths run without the allocator's global guard.
type Ledger interface {
	// Append stores a newly created assignment. The assignment ID must be
	// unique; Append never overwrites.
	Append(ctx context.Context, a types.Assignment) error

	// GetAssignment returns the assignment with the given ID.
	//
	// Returns:
	//   - types.Assignment: The stored record
	//   - error: types.ErrAssignmentNotFound if absent
	GetAssignment(ctx context.Context, id string) (types.Assignment, error)

	// ListAssignments returns every assignment record ordered by AssignedAt,
	// then ID.
	ListAssignments(ctx context.Context) ([]types.Assignment, error)

	// ListActive returns all assignments currently in StatusActive, ordered
	// by AssignedAt, then ID.
	ListActive(ctx context.Context) ([]types.Assignment, error)

	// Resolve transitions an Active assignment to the terminal state in res.
	//
	// The update is atomic: if the record is absent or already terminal,
	// Resolve returns types.ErrAssignmentNotFound and changes nothing.
	//
	// Returns:
	//   - types.Assignment: The record after the transition
	//   - error: types.ErrAssignmentNotFound, or types.ErrStorage
	Resolve(ctx context.Context, id string, res types.Resolution) (types.Assignment, error)
}

// Stores bundles the three repositories the allocator operates on.
type Stores struct {
	Items  ItemStore
	Agents AgentStore
	Ledger Ledger
}
