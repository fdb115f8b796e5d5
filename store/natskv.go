package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/rotad/rota/types"
)

// NATSKVConfig configures the JetStream KeyValue bucket names backing a
// NATSKV store.
type NATSKVConfig struct {
	// ItemsBucket is the bucket name for work items. Default: "rota-items".
	ItemsBucket string `yaml:"itemsBucket"`

	// AgentsBucket is the bucket name for agents. Default: "rota-agents".
	AgentsBucket string `yaml:"agentsBucket"`

	// LedgerBucket is the bucket name for assignment records.
	// Default: "rota-ledger".
	LedgerBucket string `yaml:"ledgerBucket"`

	// Replicas is the JetStream replica count for each bucket. Default: 1.
	Replicas int `yaml:"replicas"`
}

func (c *NATSKVConfig) applyDefaults() {
	if c.ItemsBucket == "" {
		c.ItemsBucket = "rota-items"
	}
	if c.AgentsBucket == "" {
		c.AgentsBucket = "rota-agents"
	}
	if c.LedgerBucket == "" {
		c.LedgerBucket = "rota-ledger"
	}
	if c.Replicas <= 0 {
		c.Replicas = 1
	}
}

// NATSKV implements all three repositories on NATS JetStream KeyValue
// buckets, one bucket per record type, JSON-encoded values.
//
// Resolve relies on KV revision compare-and-swap for its only-while-Active
// guarantee, so complete/unassign paths stay safe without a process lock
// even with multiple rota processes sharing the buckets.
type NATSKV struct {
	items  jetstream.KeyValue
	agents jetstream.KeyValue
	ledger jetstream.KeyValue
}

var (
	_ ItemStore  = (*NATSKV)(nil)
	_ AgentStore = (*NATSKV)(nil)
	_ Ledger     = (*NATSKV)(nil)
)

// resolveMaxAttempts bounds the revision-CAS retry loop in Resolve.
const resolveMaxAttempts = 5

// NewNATSKV creates or opens the three KV buckets and returns the store.
//
// Bucket creation handles the concurrent-create race: if another process
// created the bucket first, the existing bucket is opened instead, with a
// short exponential backoff on transient failures.
//
// Parameters:
//   - ctx: Context for bucket creation
//   - js: JetStream context (from jetstream.New)
//   - cfg: Bucket configuration (zero value uses defaults)
//
// Returns:
//   - *NATSKV: Store implementing ItemStore, AgentStore, and Ledger
//   - error: Bucket creation/open failure
//
// Example:
//
//	js, _ := jetstream.New(nc)
//	kv, err := store.NewNATSKV(ctx, js, store.NATSKVConfig{})
//	if err != nil { /* handle */ }
//	alloc, err := rota.New(nil, kv.Stores())
func NewNATSKV(ctx context.Context, js jetstream.JetStream, cfg NATSKVConfig) (*NATSKV, error) {
	cfg.applyDefaults()

	s := &NATSKV{}
	buckets := []struct {
		name string
		dest *jetstream.KeyValue
	}{
		{cfg.ItemsBucket, &s.items},
		{cfg.AgentsBucket, &s.agents},
		{cfg.LedgerBucket, &s.ledger},
	}
	for _, b := range buckets {
		kv, err := ensureBucket(ctx, js, jetstream.KeyValueConfig{
			Bucket:   b.name,
			Replicas: cfg.Replicas,
		})
		if err != nil {
			return nil, err
		}
		*b.dest = kv
	}

	return s, nil
}

// ensureBucket creates or opens a KV bucket, retrying transient failures
// with exponential backoff.
func ensureBucket(ctx context.Context, js jetstream.JetStream, config jetstream.KeyValueConfig) (jetstream.KeyValue, error) {
	const maxRetries = 3

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		kv, err := js.CreateKeyValue(ctx, config)
		if err == nil {
			return kv, nil
		}

		if errors.Is(err, jetstream.ErrBucketExists) {
			kv, err = js.KeyValue(ctx, config.Bucket)
			if err == nil {
				return kv, nil
			}
			lastErr = fmt.Errorf("bucket exists but failed to open: %w", err)
		} else {
			lastErr = err
		}

		if ctx.Err() != nil {
			return nil, fmt.Errorf("context cancelled during KV bucket creation: %w", ctx.Err())
		}

		if attempt < maxRetries-1 {
			backoff := time.Duration(1<<uint(attempt)) * 10 * time.Millisecond
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}
	}

	return nil, fmt.Errorf("failed to create/open KV bucket %s after %d attempts: %w",
		config.Bucket, maxRetries, lastErr)
}

// Stores returns the store bundle backed by this instance.
func (s *NATSKV) Stores() Stores {
	return Stores{Items: s, Agents: s, Ledger: s}
}

// GetItem returns the item with the given ID.
func (s *NATSKV) GetItem(ctx context.Context, id string) (types.WorkItem, error) {
	var item types.WorkItem
	if err := getJSON(ctx, s.items, id, &item); err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return types.WorkItem{}, fmt.Errorf("item %q: %w", id, types.ErrItemNotFound)
		}

		return types.WorkItem{}, fmt.Errorf("get item %q: %w: %w", id, types.ErrStorage, err)
	}

	return item, nil
}

// PutItem inserts or replaces an item.
func (s *NATSKV) PutItem(ctx context.Context, item types.WorkItem) error {
	if err := putJSON(ctx, s.items, item.ID, item); err != nil {
		return fmt.Errorf("put item %q: %w: %w", item.ID, types.ErrStorage, err)
	}

	return nil
}

// ListItems returns all items ordered by ID.
func (s *NATSKV) ListItems(ctx context.Context) ([]types.WorkItem, error) {
	items, err := listJSON[types.WorkItem](ctx, s.items)
	if err != nil {
		return nil, fmt.Errorf("list items: %w: %w", types.ErrStorage, err)
	}
	slices.SortFunc(items, func(a, b types.WorkItem) int {
		return compareStrings(a.ID, b.ID)
	})

	return items, nil
}

// GetAgent returns the agent with the given ID.
func (s *NATSKV) GetAgent(ctx context.Context, id string) (types.Agent, error) {
	var agent types.Agent
	if err := getJSON(ctx, s.agents, id, &agent); err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return types.Agent{}, fmt.Errorf("agent %q: %w", id, types.ErrAgentNotFound)
		}

		return types.Agent{}, fmt.Errorf("get agent %q: %w: %w", id, types.ErrStorage, err)
	}

	return agent, nil
}

// PutAgent inserts or replaces an agent.
func (s *NATSKV) PutAgent(ctx context.Context, agent types.Agent) error {
	if err := putJSON(ctx, s.agents, agent.ID, agent); err != nil {
		return fmt.Errorf("put agent %q: %w: %w", agent.ID, types.ErrStorage, err)
	}

	return nil
}

// DeleteAgent removes an agent. Removing an absent agent is a no-op.
func (s *NATSKV) DeleteAgent(ctx context.Context, id string) error {
	err := s.agents.Delete(ctx, id)
	if err != nil && !errors.Is(err, jetstream.ErrKeyNotFound) {
		return fmt.Errorf("delete agent %q: %w: %w", id, types.ErrStorage, err)
	}

	return nil
}

// ListAgents returns all agents ordered by ID.
func (s *NATSKV) ListAgents(ctx context.Context) ([]types.Agent, error) {
	agents, err := listJSON[types.Agent](ctx, s.agents)
	if err != nil {
		return nil, fmt.Errorf("list agents: %w: %w", types.ErrStorage, err)
	}
	slices.SortFunc(agents, func(a, b types.Agent) int {
		return compareStrings(a.ID, b.ID)
	})

	return agents, nil
}

// Append stores a newly created assignment. Create fails if the key exists,
// so an ID collision can never overwrite history.
func (s *NATSKV) Append(ctx context.Context, a types.Assignment) error {
	data, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("marshal assignment %q: %w: %w", a.ID, types.ErrStorage, err)
	}
	if _, err := s.ledger.Create(ctx, a.ID, data); err != nil {
		return fmt.Errorf("append assignment %q: %w: %w", a.ID, types.ErrStorage, err)
	}

	return nil
}

// GetAssignment returns the assignment with the given ID.
func (s *NATSKV) GetAssignment(ctx context.Context, id string) (types.Assignment, error) {
	var a types.Assignment
	if err := getJSON(ctx, s.ledger, id, &a); err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return types.Assignment{}, fmt.Errorf("assignment %q: %w", id, types.ErrAssignmentNotFound)
		}

		return types.Assignment{}, fmt.Errorf("get assignment %q: %w: %w", id, types.ErrStorage, err)
	}

	return a, nil
}

// ListAssignments returns every assignment ordered by AssignedAt, then ID.
func (s *NATSKV) ListAssignments(ctx context.Context) ([]types.Assignment, error) {
	all, err := listJSON[types.Assignment](ctx, s.ledger)
	if err != nil {
		return nil, fmt.Errorf("list assignments: %w: %w", types.ErrStorage, err)
	}
	sortAssignments(all)

	return all, nil
}

// ListActive returns all assignments currently in StatusActive.
func (s *NATSKV) ListActive(ctx context.Context) ([]types.Assignment, error) {
	all, err := s.ListAssignments(ctx)
	if err != nil {
		return nil, err
	}

	return slices.DeleteFunc(all, func(a types.Assignment) bool {
		return !a.Active()
	}), nil
}

// Resolve transitions an Active assignment to a terminal state using KV
// revision compare-and-swap. Concurrent resolvers race on the revision: the
// loser re-reads, finds the record terminal, and reports not found.
func (s *NATSKV) Resolve(ctx context.Context, id string, res types.Resolution) (types.Assignment, error) {
	for attempt := 0; attempt < resolveMaxAttempts; attempt++ {
		entry, err := s.ledger.Get(ctx, id)
		if err != nil {
			if errors.Is(err, jetstream.ErrKeyNotFound) {
				return types.Assignment{}, fmt.Errorf("assignment %q: %w", id, types.ErrAssignmentNotFound)
			}

			return types.Assignment{}, fmt.Errorf("resolve assignment %q: %w: %w", id, types.ErrStorage, err)
		}

		var a types.Assignment
		if err := json.Unmarshal(entry.Value(), &a); err != nil {
			return types.Assignment{}, fmt.Errorf("decode assignment %q: %w: %w", id, types.ErrStorage, err)
		}
		if !a.Active() {
			return types.Assignment{}, fmt.Errorf("assignment %q: %w", id, types.ErrAssignmentNotFound)
		}

		a.Status = res.Status
		switch res.Status {
		case types.StatusCompleted:
			a.CompletedAt = res.At
		case types.StatusUnassigned:
			a.UnassignedAt = res.At
			a.UnassignedBy = res.By
		default:
			return types.Assignment{}, fmt.Errorf("resolve assignment %q to %s: %w", id, res.Status, types.ErrInvalidArgument)
		}

		data, err := json.Marshal(a)
		if err != nil {
			return types.Assignment{}, fmt.Errorf("encode assignment %q: %w: %w", id, types.ErrStorage, err)
		}

		if _, err := s.ledger.Update(ctx, id, data, entry.Revision()); err == nil {
			return a, nil
		}
		// Revision moved under us; re-read and re-check Active.
	}

	return types.Assignment{}, fmt.Errorf("resolve assignment %q: %w: %w", id, types.ErrStorage, types.ErrStaleRecord)
}

func getJSON(ctx context.Context, kv jetstream.KeyValue, key string, dest any) error {
	entry, err := kv.Get(ctx, key)
	if err != nil {
		return err
	}

	return json.Unmarshal(entry.Value(), dest)
}

func putJSON(ctx context.Context, kv jetstream.KeyValue, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	_, err = kv.Put(ctx, key, data)

	return err
}

// listJSON decodes every live key in the bucket. An empty bucket is not an
// error: the NATS "no keys found" condition maps to an empty slice.
func listJSON[T any](ctx context.Context, kv jetstream.KeyValue) ([]T, error) {
	keys, err := kv.Keys(ctx)
	if err != nil {
		if errors.Is(err, jetstream.ErrNoKeysFound) {
			return []T{}, nil
		}

		return nil, fmt.Errorf("list KV keys: %w", err)
	}

	out := make([]T, 0, len(keys))
	for _, key := range keys {
		entry, err := kv.Get(ctx, key)
		if err != nil {
			if errors.Is(err, jetstream.ErrKeyNotFound) {
				continue // deleted between Keys and Get
			}

			return nil, fmt.Errorf("get KV key %q: %w", key, err)
		}

		var value T
		if err := json.Unmarshal(entry.Value(), &value); err != nil {
			return nil, fmt.Errorf("decode KV key %q: %w", key, err)
		}
		out = append(out, value)
	}

	return out, nil
}
