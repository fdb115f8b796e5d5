// Package rota assigns queued review work items to human reviewer agents.
//
// The central component is the Allocator: a single "pick the next item for
// this agent" decision made under a capacity constraint and a process-wide
// non-blocking guard, so that two concurrent requests can never double-assign
// an item or push an agent over capacity. Around it sit three repositories
// (work items, agents, and the assignment ledger, which is the source of
// truth for assignment status), pluggable selection policies, bulk CSV
// ingestion with an availability-preserving merge, and CSV report export.
//
// Basic usage:
//
//	mem := store.NewMemory()
//	alloc, err := rota.New(nil, mem.Stores())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	assignment, err := alloc.Assign(ctx, "agent-1")
//	switch {
//	case err == nil:
//	    // work assigned
//	case errors.Is(err, rota.ErrAllocationInProgress):
//	    // transient: retry
//	case errors.Is(err, rota.ErrNoAvailableWork):
//	    // queue drained
//	}
//
// Persistence is pluggable: store.NewMemory for in-process state,
// store.NewNATSKV for NATS JetStream KeyValue buckets.
package rota
