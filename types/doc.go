// Package types defines the core domain model and interfaces for rota.
//
// It contains the WorkItem, Agent, and Assignment records, the assignment
// status state machine, the sentinel error taxonomy, and the Logger,
// MetricsCollector, and SelectionPolicy interfaces implemented elsewhere.
//
// The package is dependency-free so that every other package (including
// internal ones) can import it without cycles; the root rota package
// re-exports the commonly used names via type aliases.
package types
