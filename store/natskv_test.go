package store_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rotad/rota/store"
	rotatest "github.com/rotad/rota/testing"
	"github.com/rotad/rota/types"
)

func newKVStore(t *testing.T) *store.NATSKV {
	t.Helper()

	_, nc := rotatest.StartEmbeddedNATS(t)
	js := rotatest.NewJetStream(t, nc)

	kv, err := store.NewNATSKV(t.Context(), js, store.NATSKVConfig{
		ItemsBucket:  "test-items",
		AgentsBucket: "test-agents",
		LedgerBucket: "test-ledger",
	})
	require.NoError(t, err)

	return kv
}

func TestNATSKV_OpenExistingBuckets(t *testing.T) {
	_, nc := rotatest.StartEmbeddedNATS(t)
	js := rotatest.NewJetStream(t, nc)

	cfg := store.NATSKVConfig{}
	_, err := store.NewNATSKV(t.Context(), js, cfg)
	require.NoError(t, err)

	// Second open against the same buckets must succeed (bucket-exists path).
	_, err = store.NewNATSKV(t.Context(), js, cfg)
	require.NoError(t, err)
}

func TestNATSKV_ItemRoundTrip(t *testing.T) {
	kv := newKVStore(t)
	ctx := t.Context()

	_, err := kv.GetItem(ctx, "missing")
	require.ErrorIs(t, err, types.ErrItemNotFound)

	item := types.WorkItem{
		ID:        "item-1",
		Priority:  types.PriorityP1,
		CreatedAt: time.Now().UTC().Truncate(time.Millisecond),
		Available: true,
	}
	require.NoError(t, kv.PutItem(ctx, item))

	got, err := kv.GetItem(ctx, "item-1")
	require.NoError(t, err)
	require.True(t, got.CreatedAt.Equal(item.CreatedAt))
	require.Equal(t, item.Priority, got.Priority)
	require.True(t, got.Available)
}

func TestNATSKV_ListEmptyBuckets(t *testing.T) {
	kv := newKVStore(t)
	ctx := t.Context()

	items, err := kv.ListItems(ctx)
	require.NoError(t, err)
	require.Empty(t, items)

	agents, err := kv.ListAgents(ctx)
	require.NoError(t, err)
	require.Empty(t, agents)

	all, err := kv.ListAssignments(ctx)
	require.NoError(t, err)
	require.Empty(t, all)
}

func TestNATSKV_AgentRoundTrip(t *testing.T) {
	kv := newKVStore(t)
	ctx := t.Context()

	agent := types.Agent{ID: "agent-1", Name: "Dana", Capacity: 2}
	require.NoError(t, kv.PutAgent(ctx, agent))

	got, err := kv.GetAgent(ctx, "agent-1")
	require.NoError(t, err)
	require.Equal(t, agent, got)

	agents, err := kv.ListAgents(ctx)
	require.NoError(t, err)
	require.Len(t, agents, 1)

	require.NoError(t, kv.DeleteAgent(ctx, "agent-1"))
	_, err = kv.GetAgent(ctx, "agent-1")
	require.ErrorIs(t, err, types.ErrAgentNotFound)
	require.NoError(t, kv.DeleteAgent(ctx, "agent-1"))
}

func TestNATSKV_AppendRejectsDuplicateID(t *testing.T) {
	kv := newKVStore(t)
	ctx := t.Context()

	a := types.Assignment{ID: "as-1", Status: types.StatusActive, AssignedAt: time.Now().UTC()}
	require.NoError(t, kv.Append(ctx, a))
	require.ErrorIs(t, kv.Append(ctx, a), types.ErrStorage)
}

func TestNATSKV_ResolveLifecycle(t *testing.T) {
	kv := newKVStore(t)
	ctx := t.Context()
	now := time.Now().UTC().Truncate(time.Millisecond)

	require.NoError(t, kv.Append(ctx, types.Assignment{
		ID: "as-1", AgentID: "agent-1", ItemID: "item-1",
		Status: types.StatusActive, AssignedAt: now,
	}))

	resolved, err := kv.Resolve(ctx, "as-1", types.Resolution{
		Status: types.StatusUnassigned,
		At:     now.Add(time.Minute),
		By:     "Dana",
	})
	require.NoError(t, err)
	require.Equal(t, types.StatusUnassigned, resolved.Status)
	require.Equal(t, "Dana", resolved.UnassignedBy)

	// Terminal records cannot be resolved again.
	_, err = kv.Resolve(ctx, "as-1", types.Resolution{Status: types.StatusCompleted, At: now})
	require.ErrorIs(t, err, types.ErrAssignmentNotFound)

	active, err := kv.ListActive(ctx)
	require.NoError(t, err)
	require.Empty(t, active)
}

func TestNATSKV_ResolveConcurrentSingleWinner(t *testing.T) {
	kv := newKVStore(t)
	ctx := t.Context()

	require.NoError(t, kv.Append(ctx, types.Assignment{
		ID: "as-1", Status: types.StatusActive, AssignedAt: time.Now().UTC(),
	}))

	const racers = 8

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for range racers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := kv.Resolve(ctx, "as-1", types.Resolution{Status: types.StatusCompleted, At: time.Now().UTC()})
			if err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	require.Equal(t, 1, wins, "revision CAS must admit exactly one resolver")
}
