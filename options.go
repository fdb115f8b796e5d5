package rota

import (
	"time"

	"github.com/rotad/rota/types"
)

// Option configures an Allocator with optional dependencies.
type Option func(*allocatorOptions)

// allocatorOptions holds optional Allocator configuration.
type allocatorOptions struct {
	policy  types.SelectionPolicy
	logger  types.Logger
	metrics types.MetricsCollector
	clock   func() time.Time
	newID   func() string
}

// WithPolicy sets a custom selection policy, overriding Config.Policy.
//
// Parameters:
//   - p: SelectionPolicy implementation
//
// Returns:
//   - Option: Functional option for New
//
// Example:
//
//	alloc, err := rota.New(cfg, stores, rota.WithPolicy(policy.NewPriorityFirst()))
func WithPolicy(p types.SelectionPolicy) Option {
	return func(o *allocatorOptions) {
		o.policy = p
	}
}

// WithLogger sets a logger.
//
// Parameters:
//   - logger: Logger implementation
//
// Returns:
//   - Option: Functional option for New
//
// Example:
//
//	logger := logging.NewSlog(slog.Default())
//	alloc, err := rota.New(cfg, stores, rota.WithLogger(logger))
func WithLogger(logger types.Logger) Option {
	return func(o *allocatorOptions) {
		o.logger = logger
	}
}

// WithMetrics sets a metrics collector.
//
// Parameters:
//   - metrics: MetricsCollector implementation
//
// Returns:
//   - Option: Functional option for New
//
// Example:
//
//	collector := metrics.NewPrometheus(nil, "rota")
//	alloc, err := rota.New(cfg, stores, rota.WithMetrics(collector))
func WithMetrics(metrics types.MetricsCollector) Option {
	return func(o *allocatorOptions) {
		o.metrics = metrics
	}
}

// WithClock sets the time source used for assignment timestamps.
//
// Intended for tests that need deterministic AssignedAt/CompletedAt values.
//
// Parameters:
//   - clock: Function returning the current time
//
// Returns:
//   - Option: Functional option for New
func WithClock(clock func() time.Time) Option {
	return func(o *allocatorOptions) {
		o.clock = clock
	}
}

// WithIDGenerator sets the generator for assignment IDs.
//
// The default generator produces random UUIDs. Tests may inject a
// deterministic sequence.
//
// Parameters:
//   - newID: Function returning a unique identifier per call
//
// Returns:
//   - Option: Functional option for New
func WithIDGenerator(newID func() string) Option {
	return func(o *allocatorOptions) {
		o.newID = newID
	}
}
