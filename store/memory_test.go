package store

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rotad/rota/types"
)

func TestMemory_ItemCRUD(t *testing.T) {
	mem := NewMemory()
	ctx := t.Context()

	_, err := mem.GetItem(ctx, "missing")
	require.ErrorIs(t, err, types.ErrItemNotFound)

	item := types.WorkItem{
		ID:        "item-1",
		Priority:  types.PriorityP2,
		CreatedAt: time.Now().UTC(),
		Available: true,
	}
	require.NoError(t, mem.PutItem(ctx, item))

	got, err := mem.GetItem(ctx, "item-1")
	require.NoError(t, err)
	require.Equal(t, item, got)

	// Put replaces.
	item.Available = false
	require.NoError(t, mem.PutItem(ctx, item))
	got, err = mem.GetItem(ctx, "item-1")
	require.NoError(t, err)
	require.False(t, got.Available)
}

func TestMemory_ListItemsOrdered(t *testing.T) {
	mem := NewMemory()
	ctx := t.Context()

	for _, id := range []string{"c", "a", "b"} {
		require.NoError(t, mem.PutItem(ctx, types.WorkItem{ID: id}))
	}

	items, err := mem.ListItems(ctx)
	require.NoError(t, err)
	require.Len(t, items, 3)
	require.Equal(t, "a", items[0].ID)
	require.Equal(t, "b", items[1].ID)
	require.Equal(t, "c", items[2].ID)
}

func TestMemory_AgentCRUD(t *testing.T) {
	mem := NewMemory()
	ctx := t.Context()

	_, err := mem.GetAgent(ctx, "missing")
	require.ErrorIs(t, err, types.ErrAgentNotFound)

	agent := types.Agent{ID: "agent-1", Name: "Dana", Capacity: 3}
	require.NoError(t, mem.PutAgent(ctx, agent))

	got, err := mem.GetAgent(ctx, "agent-1")
	require.NoError(t, err)
	require.Equal(t, agent, got)

	require.NoError(t, mem.DeleteAgent(ctx, "agent-1"))
	_, err = mem.GetAgent(ctx, "agent-1")
	require.ErrorIs(t, err, types.ErrAgentNotFound)

	// Deleting an absent agent is a no-op.
	require.NoError(t, mem.DeleteAgent(ctx, "agent-1"))
}

func TestMemory_AppendRejectsDuplicateID(t *testing.T) {
	mem := NewMemory()
	ctx := t.Context()

	a := types.Assignment{ID: "as-1", AgentID: "agent-1", ItemID: "item-1", Status: types.StatusActive}
	require.NoError(t, mem.Append(ctx, a))
	require.ErrorIs(t, mem.Append(ctx, a), types.ErrStorage)
}

func TestMemory_ResolveCompletes(t *testing.T) {
	mem := NewMemory()
	ctx := t.Context()
	now := time.Now().UTC()

	require.NoError(t, mem.Append(ctx, types.Assignment{
		ID: "as-1", AgentID: "agent-1", ItemID: "item-1",
		Status: types.StatusActive, AssignedAt: now,
	}))

	resolved, err := mem.Resolve(ctx, "as-1", types.Resolution{
		Status: types.StatusCompleted,
		At:     now.Add(time.Minute),
	})
	require.NoError(t, err)
	require.Equal(t, types.StatusCompleted, resolved.Status)
	require.Equal(t, now.Add(time.Minute), resolved.CompletedAt)
	require.True(t, resolved.UnassignedAt.IsZero())
}

func TestMemory_ResolveUnassignRecordsActor(t *testing.T) {
	mem := NewMemory()
	ctx := t.Context()
	now := time.Now().UTC()

	require.NoError(t, mem.Append(ctx, types.Assignment{
		ID: "as-1", AgentID: "agent-1", ItemID: "item-1",
		Status: types.StatusActive, AssignedAt: now,
	}))

	resolved, err := mem.Resolve(ctx, "as-1", types.Resolution{
		Status: types.StatusUnassigned,
		At:     now.Add(time.Minute),
		By:     "Dana",
	})
	require.NoError(t, err)
	require.Equal(t, types.StatusUnassigned, resolved.Status)
	require.Equal(t, "Dana", resolved.UnassignedBy)
}

func TestMemory_ResolveTerminalIsIrreversible(t *testing.T) {
	mem := NewMemory()
	ctx := t.Context()

	require.NoError(t, mem.Append(ctx, types.Assignment{ID: "as-1", Status: types.StatusActive}))

	_, err := mem.Resolve(ctx, "as-1", types.Resolution{Status: types.StatusCompleted, At: time.Now()})
	require.NoError(t, err)

	// A second resolution of any kind must fail and change nothing.
	_, err = mem.Resolve(ctx, "as-1", types.Resolution{Status: types.StatusUnassigned, At: time.Now()})
	require.ErrorIs(t, err, types.ErrAssignmentNotFound)

	got, err := mem.GetAssignment(ctx, "as-1")
	require.NoError(t, err)
	require.Equal(t, types.StatusCompleted, got.Status)
}

func TestMemory_ResolveMissing(t *testing.T) {
	mem := NewMemory()

	_, err := mem.Resolve(t.Context(), "nope", types.Resolution{Status: types.StatusCompleted, At: time.Now()})
	require.ErrorIs(t, err, types.ErrAssignmentNotFound)
}

func TestMemory_ResolveConcurrentSingleWinner(t *testing.T) {
	mem := NewMemory()
	ctx := t.Context()

	require.NoError(t, mem.Append(ctx, types.Assignment{ID: "as-1", Status: types.StatusActive}))

	const racers = 16

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for range racers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := mem.Resolve(ctx, "as-1", types.Resolution{Status: types.StatusCompleted, At: time.Now()})
			if err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	require.Equal(t, 1, wins, "exactly one concurrent Resolve must win")
}

func TestMemory_ListActiveFiltersTerminal(t *testing.T) {
	mem := NewMemory()
	ctx := t.Context()
	base := time.Now().UTC()

	require.NoError(t, mem.Append(ctx, types.Assignment{ID: "as-1", Status: types.StatusActive, AssignedAt: base}))
	require.NoError(t, mem.Append(ctx, types.Assignment{ID: "as-2", Status: types.StatusActive, AssignedAt: base.Add(time.Second)}))

	_, err := mem.Resolve(ctx, "as-1", types.Resolution{Status: types.StatusCompleted, At: base.Add(time.Minute)})
	require.NoError(t, err)

	active, err := mem.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	require.Equal(t, "as-2", active[0].ID)

	all, err := mem.ListAssignments(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, "as-1", all[0].ID, "ordered by AssignedAt")
}
