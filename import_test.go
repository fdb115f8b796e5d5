package rota

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rotad/rota/types"
)

// sliceSource is an ImportSource over a fixed slice.
type sliceSource struct {
	items []types.WorkItem
	err   error
}

func (s *sliceSource) ReadItems(context.Context) ([]types.WorkItem, error) {
	return s.items, s.err
}

func TestImportItems_InsertsNewItems(t *testing.T) {
	alloc, mem := newTestAllocator(t, nil)
	ctx := t.Context()

	stats, err := alloc.ImportItems(ctx, &sliceSource{items: []types.WorkItem{
		{ID: "n1", Priority: types.PriorityP1, Available: true},
		{ID: "n2", Available: true},
	}})
	require.NoError(t, err)
	require.Equal(t, ImportStats{Inserted: 2}, stats)

	items, err := mem.ListItems(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)

	// Zero CreatedAt is stamped with the import time; missing priority
	// defaults to the lowest class.
	require.Equal(t, testBase, items[0].CreatedAt)
	require.Equal(t, types.PriorityP3, items[1].Priority)
}

func TestImportItems_PreservesActiveItems(t *testing.T) {
	alloc, mem := newTestAllocator(t, nil)
	ctx := t.Context()

	seedAgent(t, mem, "A", 1)
	seedItem(t, mem, "X", types.PriorityP2, 0)

	_, err := alloc.Assign(ctx, "A")
	require.NoError(t, err)

	// The source claims X is available again; the merge must not believe it
	// while an Active assignment exists.
	stats, err := alloc.ImportItems(ctx, &sliceSource{items: []types.WorkItem{
		{ID: "X", Priority: types.PriorityP1, Available: true},
	}})
	require.NoError(t, err)
	require.Equal(t, ImportStats{Preserved: 1}, stats)

	item, err := mem.GetItem(ctx, "X")
	require.NoError(t, err)
	require.False(t, item.Available, "active item must stay unavailable")
	require.Equal(t, types.PriorityP1, item.Priority, "metadata still refreshes")
	require.Equal(t, testBase, item.CreatedAt, "original enqueue time kept")
}

func TestImportItems_UpdatesIdleItems(t *testing.T) {
	alloc, mem := newTestAllocator(t, nil)
	ctx := t.Context()

	seedItem(t, mem, "X", types.PriorityP3, 0)

	stats, err := alloc.ImportItems(ctx, &sliceSource{items: []types.WorkItem{
		{ID: "X", Priority: types.PriorityP1, Available: false},
	}})
	require.NoError(t, err)
	require.Equal(t, ImportStats{Updated: 1}, stats)

	item, err := mem.GetItem(ctx, "X")
	require.NoError(t, err)
	require.False(t, item.Available, "idle items take availability from the source")
	require.Equal(t, types.PriorityP1, item.Priority)
}

func TestImportItems_KeepsRequeueHistory(t *testing.T) {
	alloc, mem := newTestAllocator(t, nil)
	ctx := t.Context()

	seedAgent(t, mem, "A", 1)
	seedItem(t, mem, "X", types.PriorityP2, 0)

	_, err := alloc.Assign(ctx, "A")
	require.NoError(t, err)
	_, err = alloc.UnassignItem(ctx, "X")
	require.NoError(t, err)

	_, err = alloc.ImportItems(ctx, &sliceSource{items: []types.WorkItem{
		{ID: "X", Priority: types.PriorityP2, Available: true},
	}})
	require.NoError(t, err)

	item, err := mem.GetItem(ctx, "X")
	require.NoError(t, err)
	require.True(t, item.Requeued(), "import must not erase re-queue precedence")
}

func TestImportItems_SkipsUnkeyedRows(t *testing.T) {
	alloc, mem := newTestAllocator(t, nil)

	stats, err := alloc.ImportItems(t.Context(), &sliceSource{items: []types.WorkItem{
		{ID: "", Available: true},
		{ID: "ok", Available: true},
	}})
	require.NoError(t, err)
	require.Equal(t, ImportStats{Inserted: 1}, stats)

	items, err := mem.ListItems(t.Context())
	require.NoError(t, err)
	require.Len(t, items, 1)
}

func TestImportItems_SourceErrors(t *testing.T) {
	alloc, _ := newTestAllocator(t, nil)

	_, err := alloc.ImportItems(t.Context(), &sliceSource{err: errors.New("malformed row 7")})
	require.Error(t, err)
	require.Contains(t, err.Error(), "malformed row 7")

	_, err = alloc.ImportItems(t.Context(), nil)
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestUpsertAgent_Defaults(t *testing.T) {
	alloc, _ := newTestAllocator(t, nil)

	agent, err := alloc.UpsertAgent(t.Context(), types.Agent{ID: "A"})
	require.NoError(t, err)
	require.Equal(t, 3, agent.Capacity, "zero capacity takes the configured default")
	require.Equal(t, "A", agent.Name)

	_, err = alloc.UpsertAgent(t.Context(), types.Agent{ID: ""})
	require.ErrorIs(t, err, ErrInvalidArgument)

	_, err = alloc.UpsertAgent(t.Context(), types.Agent{ID: "B", Capacity: -2})
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestRemoveAgent_RefusedWhileBusy(t *testing.T) {
	alloc, mem := newTestAllocator(t, nil)
	ctx := t.Context()

	seedAgent(t, mem, "A", 1)
	seedItem(t, mem, "X", types.PriorityP2, 0)

	_, err := alloc.Assign(ctx, "A")
	require.NoError(t, err)

	require.ErrorIs(t, alloc.RemoveAgent(ctx, "A"), ErrAgentBusy)

	_, err = alloc.CompleteAll(ctx, "A")
	require.NoError(t, err)
	require.NoError(t, alloc.RemoveAgent(ctx, "A"))

	require.ErrorIs(t, alloc.RemoveAgent(ctx, "A"), ErrAgentNotFound)
}

func TestAgents_SnapshotJoinsActiveCounts(t *testing.T) {
	alloc, mem := newTestAllocator(t, nil)
	ctx := t.Context()

	seedAgent(t, mem, "A", 2)
	seedAgent(t, mem, "B", 2)
	for i, id := range []string{"i1", "i2", "i3"} {
		seedItem(t, mem, id, types.PriorityP2, time.Duration(i)*time.Second)
	}
	_, err := alloc.Assign(ctx, "A")
	require.NoError(t, err)
	_, err = alloc.Assign(ctx, "A")
	require.NoError(t, err)
	_, err = alloc.Assign(ctx, "B")
	require.NoError(t, err)

	snapshots, err := alloc.Agents(ctx)
	require.NoError(t, err)
	require.Len(t, snapshots, 2)
	require.Equal(t, 2, snapshots[0].ActiveCount)
	require.Equal(t, 1, snapshots[1].ActiveCount)
}
