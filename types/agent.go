package types

// Agent is a human reviewer with a concurrent-capacity limit.
//
// ActiveCount is never stored on the agent record: it is derived from the
// assignment ledger (the count of Active assignments referencing the agent)
// so that the ledger remains the single source of truth.
type Agent struct {
	// ID is the stable external identifier, unique across the agent store.
	ID string `json:"id"`

	// Name is the display name recorded on unassignment audit fields.
	Name string `json:"name"`

	// Capacity is the maximum number of concurrent Active assignments.
	// Must be positive.
	Capacity int `json:"capacity"`
}

// AgentSnapshot is an agent together with its derived active-assignment
// count, as returned by read-only snapshot endpoints.
type AgentSnapshot struct {
	Agent

	// ActiveCount is the number of Active assignments referencing the agent.
	// Invariant: ActiveCount <= Capacity at all times.
	ActiveCount int `json:"activeCount"`
}
