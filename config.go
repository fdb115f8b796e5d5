package rota

import (
	"fmt"

	"github.com/rotad/rota/types"
)

// Policy names accepted by Config.Policy.
const (
	// PolicyRequeue selects previously-unassigned items first (default).
	PolicyRequeue = "requeue"

	// PolicyPriority selects strictly by priority class and age.
	PolicyPriority = "priority"
)

// Config is the configuration for the Allocator.
type Config struct {
	// Policy names the selection policy: "requeue" or "priority".
	// Ignored when a policy is injected with WithPolicy. Default: "requeue".
	Policy string `yaml:"policy"`

	// DefaultAgentCapacity is applied to agents registered without an
	// explicit capacity. Must be positive. Default: 3.
	DefaultAgentCapacity int `yaml:"defaultAgentCapacity"`
}

// DefaultConfig returns a Config populated with defaults.
//
// Returns:
//   - *Config: requeue policy, default agent capacity 3
func DefaultConfig() *Config {
	return &Config{
		Policy:               PolicyRequeue,
		DefaultAgentCapacity: 3,
	}
}

// Validate checks the configuration and fills in defaults for zero values.
//
// Returns:
//   - error: types.ErrInvalidConfig (wrapped) describing the first problem found
func (c *Config) Validate() error {
	if c.Policy == "" {
		c.Policy = PolicyRequeue
	}
	if c.Policy != PolicyRequeue && c.Policy != PolicyPriority {
		return fmt.Errorf("%w: unknown policy %q", types.ErrInvalidConfig, c.Policy)
	}

	if c.DefaultAgentCapacity == 0 {
		c.DefaultAgentCapacity = 3
	}
	if c.DefaultAgentCapacity < 0 {
		return fmt.Errorf("%w: defaultAgentCapacity must be positive, got %d",
			types.ErrInvalidConfig, c.DefaultAgentCapacity)
	}

	return nil
}
