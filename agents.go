package rota

import (
	"context"
	"fmt"

	"github.com/rotad/rota/types"
)

// UpsertAgent registers or updates a reviewer agent.
//
// A zero capacity takes Config.DefaultAgentCapacity; a negative capacity is
// rejected. An empty name defaults to the agent ID.
//
// Parameters:
//   - ctx: Context for store operations
//   - agent: The agent record
//
// Returns:
//   - types.Agent: The stored record after defaulting
//   - error: ErrInvalidArgument or a wrapped ErrStorage fault
func (a *Allocator) UpsertAgent(ctx context.Context, agent types.Agent) (types.Agent, error) {
	if agent.ID == "" {
		return types.Agent{}, fmt.Errorf("%w: agent id is required", ErrInvalidArgument)
	}
	if agent.Capacity < 0 {
		return types.Agent{}, fmt.Errorf("%w: capacity must be positive, got %d",
			ErrInvalidArgument, agent.Capacity)
	}
	if agent.Capacity == 0 {
		agent.Capacity = a.cfg.DefaultAgentCapacity
	}
	if agent.Name == "" {
		agent.Name = agent.ID
	}

	if err := a.stores.Agents.PutAgent(ctx, agent); err != nil {
		return types.Agent{}, err
	}
	a.logger.Info("agent upserted", "agent_id", agent.ID, "capacity", agent.Capacity)

	return agent, nil
}

// RemoveAgent deletes an agent from the roster.
//
// Removal is refused with ErrAgentBusy while the agent still holds Active
// assignments; unassign or complete them first.
//
// Returns:
//   - error: ErrInvalidArgument, ErrAgentNotFound, ErrAgentBusy, or a
//     wrapped ErrStorage fault
func (a *Allocator) RemoveAgent(ctx context.Context, agentID string) error {
	if agentID == "" {
		return fmt.Errorf("%w: agentId is required", ErrInvalidArgument)
	}
	if _, err := a.stores.Agents.GetAgent(ctx, agentID); err != nil {
		return err
	}

	active, err := a.stores.Ledger.ListActive(ctx)
	if err != nil {
		return err
	}
	for _, rec := range active {
		if rec.AgentID == agentID {
			return fmt.Errorf("agent %s: %w", agentID, ErrAgentBusy)
		}
	}

	if err := a.stores.Agents.DeleteAgent(ctx, agentID); err != nil {
		return err
	}
	a.logger.Info("agent removed", "agent_id", agentID)

	return nil
}

// Items returns a snapshot of every work item.
func (a *Allocator) Items(ctx context.Context) ([]types.WorkItem, error) {
	return a.stores.Items.ListItems(ctx)
}

// Agents returns a snapshot of every agent joined with its derived
// active-assignment count.
func (a *Allocator) Agents(ctx context.Context) ([]types.AgentSnapshot, error) {
	agents, err := a.stores.Agents.ListAgents(ctx)
	if err != nil {
		return nil, err
	}
	active, err := a.stores.Ledger.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int, len(agents))
	for _, rec := range active {
		counts[rec.AgentID]++
	}

	snapshots := make([]types.AgentSnapshot, 0, len(agents))
	for _, agent := range agents {
		snapshots = append(snapshots, types.AgentSnapshot{
			Agent:       agent,
			ActiveCount: counts[agent.ID],
		})
	}

	return snapshots, nil
}

// Assignments returns a snapshot of the full assignment ledger.
func (a *Allocator) Assignments(ctx context.Context) ([]types.Assignment, error) {
	return a.stores.Ledger.ListAssignments(ctx)
}
