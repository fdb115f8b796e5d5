package store

import (
	"context"
	"fmt"
	"slices"

	"github.com/puzpuzpuz/xsync/v4"

	"github.com/rotad/rota/types"
)

// Memory implements all three repositories with in-process concurrent maps.
//
// Records are plain values, copied on read and write, so callers can never
// mutate stored state through a returned record. Resolve uses the map's
// atomic Compute to enforce the only-while-Active rule without a store-wide
// lock. Suitable for tests and single-node deployments without persistence.
type Memory struct {
	items       *xsync.Map[string, types.WorkItem]
	agents      *xsync.Map[string, types.Agent]
	assignments *xsync.Map[string, types.Assignment]
}

var (
	_ ItemStore  = (*Memory)(nil)
	_ AgentStore = (*Memory)(nil)
	_ Ledger     = (*Memory)(nil)
)

// NewMemory creates an empty in-memory store.
//
// Returns:
//   - *Memory: Store implementing ItemStore, AgentStore, and Ledger
//
// Example:
//
//	mem := store.NewMemory()
//	alloc, err := rota.New(nil, mem.Stores())
func NewMemory() *Memory {
	return &Memory{
		items:       xsync.NewMap[string, types.WorkItem](),
		agents:      xsync.NewMap[string, types.Agent](),
		assignments: xsync.NewMap[string, types.Assignment](),
	}
}

// Stores returns the store bundle backed by this instance.
func (m *Memory) Stores() Stores {
	return Stores{Items: m, Agents: m, Ledger: m}
}

// GetItem returns the item with the given ID.
func (m *Memory) GetItem(_ context.Context, id string) (types.WorkItem, error) {
	item, ok := m.items.Load(id)
	if !ok {
		return types.WorkItem{}, fmt.Errorf("item %q: %w", id, types.ErrItemNotFound)
	}

	return item, nil
}

// PutItem inserts or replaces an item.
func (m *Memory) PutItem(_ context.Context, item types.WorkItem) error {
	m.items.Store(item.ID, item)
	return nil
}

// ListItems returns all items ordered by ID.
func (m *Memory) ListItems(_ context.Context) ([]types.WorkItem, error) {
	items := make([]types.WorkItem, 0, m.items.Size())
	m.items.Range(func(_ string, item types.WorkItem) bool {
		items = append(items, item)
		return true
	})
	slices.SortFunc(items, func(a, b types.WorkItem) int {
		return compareStrings(a.ID, b.ID)
	})

	return items, nil
}

// GetAgent returns the agent with the given ID.
func (m *Memory) GetAgent(_ context.Context, id string) (types.Agent, error) {
	agent, ok := m.agents.Load(id)
	if !ok {
		return types.Agent{}, fmt.Errorf("agent %q: %w", id, types.ErrAgentNotFound)
	}

	return agent, nil
}

// PutAgent inserts or replaces an agent.
func (m *Memory) PutAgent(_ context.Context, agent types.Agent) error {
	m.agents.Store(agent.ID, agent)
	return nil
}

// DeleteAgent removes an agent. Removing an absent agent is a no-op.
func (m *Memory) DeleteAgent(_ context.Context, id string) error {
	m.agents.Delete(id)
	return nil
}

// ListAgents returns all agents ordered by ID.
func (m *Memory) ListAgents(_ context.Context) ([]types.Agent, error) {
	agents := make([]types.Agent, 0, m.agents.Size())
	m.agents.Range(func(_ string, agent types.Agent) bool {
		agents = append(agents, agent)
		return true
	})
	slices.SortFunc(agents, func(a, b types.Agent) int {
		return compareStrings(a.ID, b.ID)
	})

	return agents, nil
}

// Append stores a newly created assignment.
func (m *Memory) Append(_ context.Context, a types.Assignment) error {
	if _, loaded := m.assignments.LoadOrStore(a.ID, a); loaded {
		return fmt.Errorf("assignment %q already exists: %w", a.ID, types.ErrStorage)
	}

	return nil
}

// GetAssignment returns the assignment with the given ID.
func (m *Memory) GetAssignment(_ context.Context, id string) (types.Assignment, error) {
	a, ok := m.assignments.Load(id)
	if !ok {
		return types.Assignment{}, fmt.Errorf("assignment %q: %w", id, types.ErrAssignmentNotFound)
	}

	return a, nil
}

// ListAssignments returns every assignment ordered by AssignedAt, then ID.
func (m *Memory) ListAssignments(_ context.Context) ([]types.Assignment, error) {
	all := make([]types.Assignment, 0, m.assignments.Size())
	m.assignments.Range(func(_ string, a types.Assignment) bool {
		all = append(all, a)
		return true
	})
	sortAssignments(all)

	return all, nil
}

// ListActive returns all assignments currently in StatusActive.
func (m *Memory) ListActive(_ context.Context) ([]types.Assignment, error) {
	active := make([]types.Assignment, 0)
	m.assignments.Range(func(_ string, a types.Assignment) bool {
		if a.Active() {
			active = append(active, a)
		}
		return true
	})
	sortAssignments(active)

	return active, nil
}

// Resolve transitions an Active assignment to a terminal state atomically.
func (m *Memory) Resolve(_ context.Context, id string, res types.Resolution) (types.Assignment, error) {
	transitioned := false
	resolved, _ := m.assignments.Compute(id,
		func(old types.Assignment, loaded bool) (types.Assignment, xsync.ComputeOp) {
			if !loaded || !old.Active() {
				return old, xsync.CancelOp
			}

			updated := old
			updated.Status = res.Status
			switch res.Status {
			case types.StatusCompleted:
				updated.CompletedAt = res.At
			case types.StatusUnassigned:
				updated.UnassignedAt = res.At
				updated.UnassignedBy = res.By
			default:
				return old, xsync.CancelOp
			}
			transitioned = true

			return updated, xsync.UpdateOp
		})
	if !transitioned {
		return types.Assignment{}, fmt.Errorf("assignment %q: %w", id, types.ErrAssignmentNotFound)
	}

	return resolved, nil
}

func sortAssignments(list []types.Assignment) {
	slices.SortFunc(list, func(a, b types.Assignment) int {
		if !a.AssignedAt.Equal(b.AssignedAt) {
			if a.AssignedAt.Before(b.AssignedAt) {
				return -1
			}

			return 1
		}

		return compareStrings(a.ID, b.ID)
	})
}

func compareStrings(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
