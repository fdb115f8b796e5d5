package rota

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/rotad/rota/internal/guard"
	"github.com/rotad/rota/internal/logger"
	"github.com/rotad/rota/internal/metrics"
	"github.com/rotad/rota/policy"
	"github.com/rotad/rota/store"
	"github.com/rotad/rota/types"
)

// Allocator is the single decision point that hands queued work items to
// reviewer agents.
//
// All multi-record mutations (Assign, ImportItems) run inside a process-wide
// non-blocking guard: a second concurrent caller receives
// ErrAllocationInProgress immediately instead of queuing. Completion and
// unassignment paths rely on the ledger's atomic Resolve instead, so they
// never contend with allocations.
//
// The assignment ledger is the source of truth for status; the allocator
// keeps each item's cached Available flag consistent on every transition.
type Allocator struct {
	cfg     Config
	stores  store.Stores
	policy  types.SelectionPolicy
	guard   *guard.Guard
	logger  types.Logger
	metrics types.MetricsCollector
	now     func() time.Time
	newID   func() string
}

// ImportStats summarizes one bulk import merge.
type ImportStats struct {
	// Inserted counts items that did not exist before the import.
	Inserted int `json:"inserted"`

	// Updated counts existing items refreshed from the source.
	Updated int `json:"updated"`

	// Preserved counts items with an Active assignment whose
	// assignment-derived state was kept instead of being overwritten.
	Preserved int `json:"preserved"`
}

// New creates an Allocator over the given repositories.
//
// Parameters:
//   - cfg: Configuration (nil uses DefaultConfig)
//   - stores: Item, agent, and ledger repositories (all three required)
//   - opts: Optional dependencies (policy, logger, metrics, clock)
//
// Returns:
//   - *Allocator: Ready-to-use allocator
//   - error: ErrInvalidConfig on bad configuration or missing stores
//
// Example:
//
//	mem := store.NewMemory()
//	alloc, err := rota.New(nil, mem.Stores(),
//	    rota.WithLogger(logging.NewSlogDefault()),
//	    rota.WithMetrics(metrics.NewPrometheus(nil, "rota")),
//	)
func New(cfg *Config, stores store.Stores, opts ...Option) (*Allocator, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if stores.Items == nil || stores.Agents == nil || stores.Ledger == nil {
		return nil, fmt.Errorf("%w: item, agent, and ledger stores are required", ErrInvalidConfig)
	}

	options := &allocatorOptions{}
	for _, opt := range opts {
		opt(options)
	}

	if options.policy == nil {
		switch cfg.Policy {
		case PolicyPriority:
			options.policy = policy.NewPriorityFirst()
		default:
			options.policy = policy.NewRequeueFirst()
		}
	}
	if options.logger == nil {
		options.logger = logger.NewNop()
	}
	if options.metrics == nil {
		options.metrics = metrics.NewNop()
	}
	if options.clock == nil {
		options.clock = time.Now
	}
	if options.newID == nil {
		options.newID = uuid.NewString
	}

	return &Allocator{
		cfg:     *cfg,
		stores:  stores,
		policy:  options.policy,
		guard:   guard.New(),
		logger:  options.logger,
		metrics: options.metrics,
		now:     options.clock,
		newID:   options.newID,
	}, nil
}

// Assign picks the next work item for the agent and creates an Active
// assignment for it.
//
// Preconditions are checked in order, each a distinct failure:
//  1. Missing agentID: ErrInvalidArgument
//  2. Unknown agent: ErrAgentNotFound
//  3. Agent at capacity: ErrCapacityExceeded
//  4. No eligible item: ErrNoAvailableWork
//
// The candidate set is the available items minus items already referenced by
// an Active assignment, which defends against a stale Available flag. The
// configured selection policy picks the head of the ordered candidates; ties
// break deterministically, never randomly.
//
// The whole read-pick-mutate sequence runs inside the allocation guard. A
// concurrent Assign or ImportItems call receives ErrAllocationInProgress
// without blocking; callers should retry.
//
// Parameters:
//   - ctx: Context for store operations
//   - agentID: The agent requesting work
//
// Returns:
//   - types.Assignment: The created Active assignment
//   - error: One of the precondition errors, ErrAllocationInProgress, or
//     a wrapped ErrStorage fault
func (a *Allocator) Assign(ctx context.Context, agentID string) (types.Assignment, error) {
	if agentID == "" {
		return types.Assignment{}, a.refuse(fmt.Errorf("%w: agentId is required", ErrInvalidArgument))
	}

	if !a.guard.TryAcquire() {
		a.metrics.RecordGuardContention()
		a.metrics.RecordAssignment(types.KindAllocationInProgress.String())

		return types.Assignment{}, fmt.Errorf("assign %s: %w", agentID, ErrAllocationInProgress)
	}
	defer a.guard.Release()

	start := a.now()
	assignment, err := a.assignLocked(ctx, agentID)
	a.metrics.ObserveAllocationDuration(a.now().Sub(start).Seconds())
	if err != nil {
		return types.Assignment{}, a.refuse(err)
	}

	a.metrics.RecordAssignment("ok")
	a.logger.Info("assignment created",
		"assignment_id", assignment.ID,
		"agent_id", assignment.AgentID,
		"item_id", assignment.ItemID,
		"policy", a.policy.Name(),
	)

	return assignment, nil
}

// assignLocked performs the allocation critical section. Caller holds the guard.
func (a *Allocator) assignLocked(ctx context.Context, agentID string) (types.Assignment, error) {
	agent, err := a.stores.Agents.GetAgent(ctx, agentID)
	if err != nil {
		return types.Assignment{}, err
	}

	active, err := a.stores.Ledger.ListActive(ctx)
	if err != nil {
		return types.Assignment{}, err
	}

	activeCount := 0
	activeItems := make(map[string]struct{}, len(active))
	for _, rec := range active {
		activeItems[rec.ItemID] = struct{}{}
		if rec.AgentID == agentID {
			activeCount++
		}
	}
	if activeCount >= agent.Capacity {
		return types.Assignment{}, fmt.Errorf("agent %s at %d/%d: %w",
			agentID, activeCount, agent.Capacity, ErrCapacityExceeded)
	}

	items, err := a.stores.Items.ListItems(ctx)
	if err != nil {
		return types.Assignment{}, err
	}

	candidates := make([]types.WorkItem, 0, len(items))
	for _, item := range items {
		if !item.Available {
			continue
		}
		if _, taken := activeItems[item.ID]; taken {
			// Stale Available flag: an Active record exists, skip.
			continue
		}
		candidates = append(candidates, item)
	}

	picked, ok := a.policy.Select(candidates)
	if !ok {
		return types.Assignment{}, fmt.Errorf("agent %s: %w", agentID, ErrNoAvailableWork)
	}

	now := a.now()
	flipped := picked
	flipped.Available = false
	if err := a.stores.Items.PutItem(ctx, flipped); err != nil {
		return types.Assignment{}, err
	}

	assignment := types.Assignment{
		ID:         a.newID(),
		AgentID:    agent.ID,
		ItemID:     picked.ID,
		Status:     types.StatusActive,
		AssignedAt: now,
	}
	if err := a.stores.Ledger.Append(ctx, assignment); err != nil {
		// Compensating rollback: never leave the item unavailable with no
		// Active record behind it.
		if rbErr := a.stores.Items.PutItem(ctx, picked); rbErr != nil {
			a.logger.Error("rollback of item flip failed",
				"item_id", picked.ID, "error", rbErr)
		}

		return types.Assignment{}, err
	}

	a.metrics.SetActiveAssignments(len(active) + 1)

	return assignment, nil
}

// Complete transitions the unique Active assignment for (agent, item) to
// Completed.
//
// The item stays out of the available pool: completion permanently retires
// it. Only unassignment (or a later import marking it available) re-queues
// an item.
//
// Parameters:
//   - ctx: Context for store operations
//   - agentID: The completing agent
//   - itemID: The completed item
//
// Returns:
//   - types.Assignment: The completed record
//   - error: ErrInvalidArgument, ErrAssignmentNotFound (also for
//     already-terminal records), or a wrapped ErrStorage fault
func (a *Allocator) Complete(ctx context.Context, agentID, itemID string) (types.Assignment, error) {
	if agentID == "" || itemID == "" {
		return types.Assignment{}, fmt.Errorf("%w: agentId and itemId are required", ErrInvalidArgument)
	}

	rec, err := a.findActive(ctx, agentID, itemID)
	if err != nil {
		return types.Assignment{}, err
	}

	resolved, err := a.stores.Ledger.Resolve(ctx, rec.ID, types.Resolution{
		Status: types.StatusCompleted,
		At:     a.now(),
	})
	if err != nil {
		return types.Assignment{}, err
	}

	a.metrics.RecordResolution(types.StatusCompleted.String())
	a.refreshActiveGauge(ctx)
	a.logger.Info("assignment completed",
		"assignment_id", resolved.ID, "agent_id", agentID, "item_id", itemID)

	return resolved, nil
}

// CompleteAll completes every Active assignment held by the agent.
//
// A race with another resolver on an individual record is skipped, not an
// error. No Active assignments is a no-op returning zero.
//
// Returns:
//   - int: Number of assignments completed
//   - error: ErrInvalidArgument or a wrapped ErrStorage fault
func (a *Allocator) CompleteAll(ctx context.Context, agentID string) (int, error) {
	if agentID == "" {
		return 0, fmt.Errorf("%w: agentId is required", ErrInvalidArgument)
	}

	active, err := a.stores.Ledger.ListActive(ctx)
	if err != nil {
		return 0, err
	}

	completed := 0
	for _, rec := range active {
		if rec.AgentID != agentID {
			continue
		}
		if _, err := a.stores.Ledger.Resolve(ctx, rec.ID, types.Resolution{
			Status: types.StatusCompleted,
			At:     a.now(),
		}); err != nil {
			// Lost the race to another resolver; nothing to undo.
			continue
		}
		completed++
		a.metrics.RecordResolution(types.StatusCompleted.String())
	}

	a.refreshActiveGauge(ctx)
	if completed > 0 {
		a.logger.Info("completed all assignments", "agent_id", agentID, "count", completed)
	}

	return completed, nil
}

// UnassignItem takes back the Active assignment for the item, if any, and
// re-queues the item with re-queue precedence.
//
// Returns:
//   - int: Number of assignments unassigned (0 or 1)
//   - error: ErrInvalidArgument or a wrapped ErrStorage fault
func (a *Allocator) UnassignItem(ctx context.Context, itemID string) (int, error) {
	if itemID == "" {
		return 0, fmt.Errorf("%w: itemId is required", ErrInvalidArgument)
	}

	return a.unassignMatching(ctx, func(rec types.Assignment) bool {
		return rec.ItemID == itemID
	})
}

// UnassignAgent takes back every Active assignment held by the agent.
//
// Returns:
//   - int: Number of assignments unassigned
//   - error: ErrInvalidArgument or a wrapped ErrStorage fault
func (a *Allocator) UnassignAgent(ctx context.Context, agentID string) (int, error) {
	if agentID == "" {
		return 0, fmt.Errorf("%w: agentId is required", ErrInvalidArgument)
	}

	return a.unassignMatching(ctx, func(rec types.Assignment) bool {
		return rec.AgentID == agentID
	})
}

// UnassignAll takes back every Active assignment in the ledger.
//
// Returns:
//   - int: Number of assignments unassigned
//   - error: A wrapped ErrStorage fault
func (a *Allocator) UnassignAll(ctx context.Context) (int, error) {
	return a.unassignMatching(ctx, func(types.Assignment) bool { return true })
}

// unassignMatching resolves every Active assignment accepted by match to
// Unassigned, recording the holding agent's name and re-queueing the items.
func (a *Allocator) unassignMatching(ctx context.Context, match func(types.Assignment) bool) (int, error) {
	active, err := a.stores.Ledger.ListActive(ctx)
	if err != nil {
		return 0, err
	}

	unassigned := 0
	for _, rec := range active {
		if !match(rec) {
			continue
		}

		// Audit field wants the display name as of the call, not the ID.
		actor := rec.AgentID
		if agent, err := a.stores.Agents.GetAgent(ctx, rec.AgentID); err == nil {
			actor = agent.Name
		}

		now := a.now()
		resolved, err := a.stores.Ledger.Resolve(ctx, rec.ID, types.Resolution{
			Status: types.StatusUnassigned,
			At:     now,
			By:     actor,
		})
		if err != nil {
			continue // already terminal
		}
		if err := a.requeueItem(ctx, resolved.ItemID, now); err != nil {
			return unassigned, err
		}
		unassigned++
		a.metrics.RecordResolution(types.StatusUnassigned.String())
	}

	a.refreshActiveGauge(ctx)
	if unassigned > 0 {
		a.logger.Info("unassigned assignments", "count", unassigned)
	}

	return unassigned, nil
}

// requeueItem returns an item to the available pool and stamps the re-queue
// timestamp consumed by RequeueFirst.
//
// A missing item is tolerated: the ledger record is already terminal and the
// flag has nothing to be consistent with.
func (a *Allocator) requeueItem(ctx context.Context, itemID string, unassignedAt time.Time) error {
	item, err := a.stores.Items.GetItem(ctx, itemID)
	if err != nil {
		if types.KindOf(err) == types.KindNotFound {
			a.logger.Warn("resolved assignment references missing item", "item_id", itemID)
			return nil
		}

		return err
	}

	item.Available = true
	item.LastUnassignedAt = unassignedAt

	return a.stores.Items.PutItem(ctx, item)
}

// findActive returns the unique Active assignment for (agent, item).
func (a *Allocator) findActive(ctx context.Context, agentID, itemID string) (types.Assignment, error) {
	active, err := a.stores.Ledger.ListActive(ctx)
	if err != nil {
		return types.Assignment{}, err
	}
	for _, rec := range active {
		if rec.AgentID == agentID && rec.ItemID == itemID {
			return rec, nil
		}
	}

	return types.Assignment{}, fmt.Errorf("agent %s item %s: %w", agentID, itemID, ErrAssignmentNotFound)
}

// refuse records a failed Assign outcome and passes the error through.
func (a *Allocator) refuse(err error) error {
	a.metrics.RecordAssignment(types.KindOf(err).String())

	return err
}

// refreshActiveGauge best-effort updates the active-assignment gauge.
func (a *Allocator) refreshActiveGauge(ctx context.Context) {
	if active, err := a.stores.Ledger.ListActive(ctx); err == nil {
		a.metrics.SetActiveAssignments(len(active))
	}
}
