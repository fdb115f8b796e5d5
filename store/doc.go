// Package store defines the repository interfaces the allocator depends on
// (ItemStore, AgentStore, Ledger) and provides two backings: an in-process
// Memory store for tests and single-node use, and a NATSKV store persisting
// records in NATS JetStream KeyValue buckets.
//
// The Ledger's Resolve operation is the load-bearing contract: it must
// transition a record out of Active atomically, failing once the record is
// terminal. Memory enforces this with an atomic map Compute; NATSKV with KV
// revision compare-and-swap.
package store
