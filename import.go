package rota

import (
	"context"
	"fmt"

	"github.com/rotad/rota/types"
)

// ImportItems merges items from a bulk source into the item store.
//
// The merge preserves assignment-derived state: an incoming item that still
// has an Active assignment keeps Available=false and its re-queue history no
// matter what the source says. Items without an Active assignment are
// inserted or refreshed, with Available taken from the source (sources
// default to true) and a zero CreatedAt stamped with the import time.
//
// The merge mutates the item store wholesale, so it runs under the same
// guard as Assign; a concurrent allocation yields ErrAllocationInProgress.
//
// Parameters:
//   - ctx: Context for source reads and store writes
//   - src: Bulk item source (CSV, spreadsheet, database)
//
// Returns:
//   - ImportStats: Counts of inserted, updated, and preserved items
//   - error: ErrInvalidArgument, ErrAllocationInProgress, source read
//     failures, or a wrapped ErrStorage fault
func (a *Allocator) ImportItems(ctx context.Context, src types.ImportSource) (ImportStats, error) {
	if src == nil {
		return ImportStats{}, fmt.Errorf("%w: import source is required", ErrInvalidArgument)
	}

	incoming, err := src.ReadItems(ctx)
	if err != nil {
		return ImportStats{}, fmt.Errorf("read import source: %w", err)
	}

	if !a.guard.TryAcquire() {
		a.metrics.RecordGuardContention()

		return ImportStats{}, fmt.Errorf("import items: %w", ErrAllocationInProgress)
	}
	defer a.guard.Release()

	active, err := a.stores.Ledger.ListActive(ctx)
	if err != nil {
		return ImportStats{}, err
	}
	activeItems := make(map[string]struct{}, len(active))
	for _, rec := range active {
		activeItems[rec.ItemID] = struct{}{}
	}

	var stats ImportStats
	now := a.now()
	for _, item := range incoming {
		if item.ID == "" {
			continue // unkeyed rows are unusable
		}
		if item.CreatedAt.IsZero() {
			item.CreatedAt = now
		}
		if !item.Priority.Valid() {
			item.Priority = types.PriorityP3
		}

		stored, err := a.stores.Items.GetItem(ctx, item.ID)
		exists := err == nil
		if err != nil && types.KindOf(err) != types.KindNotFound {
			return stats, err
		}

		if exists {
			// Keep the original enqueue time and re-queue history.
			item.CreatedAt = stored.CreatedAt
			item.LastUnassignedAt = stored.LastUnassignedAt
		}

		if _, taken := activeItems[item.ID]; taken {
			// The item is mid-review: the source must not resurrect it.
			item.Available = false
			stats.Preserved++
		} else if exists {
			stats.Updated++
		} else {
			stats.Inserted++
		}

		if err := a.stores.Items.PutItem(ctx, item); err != nil {
			return stats, err
		}
	}

	a.metrics.RecordImport(stats.Inserted, stats.Updated, stats.Preserved)
	a.logger.Info("imported items",
		"inserted", stats.Inserted,
		"updated", stats.Updated,
		"preserved", stats.Preserved,
	)

	return stats, nil
}
