package rota

import "github.com/rotad/rota/types"

// Re-export types from the types package.
//
// This file provides a stable public API for the library's core types and
// interfaces. It uses type aliases to re-export definitions from the `types`
// subpackage, which contains the actual implementations.
//
// This pattern solves the "import cycle" problem by allowing internal
// packages to depend on `types` without depending on the root `rota`
// package, while still providing a convenient `rota.WorkItem`,
// `rota.Logger`, etc. for users.
type (
	WorkItem      = types.WorkItem
	Agent         = types.Agent
	AgentSnapshot = types.AgentSnapshot
	Assignment    = types.Assignment
	Status        = types.Status
	PriorityClass = types.PriorityClass
)

// Re-export interfaces from the types package for convenience.
type (
	SelectionPolicy  = types.SelectionPolicy
	ImportSource     = types.ImportSource
	MetricsCollector = types.MetricsCollector
	Logger           = types.Logger
)

// Re-export Status constants from the types package.
const (
	StatusActive     = types.StatusActive
	StatusCompleted  = types.StatusCompleted
	StatusUnassigned = types.StatusUnassigned
)

// Re-export PriorityClass constants from the types package.
const (
	PriorityP1 = types.PriorityP1
	PriorityP2 = types.PriorityP2
	PriorityP3 = types.PriorityP3
)
