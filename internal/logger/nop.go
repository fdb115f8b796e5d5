// Package logger provides the nop and testing.T Logger implementations used
// by the allocator when the caller wires nothing else.
package logger

import "github.com/rotad/rota/types"

// NopLogger discards every message. It is the allocator's default logger, so
// embedding rota as a library stays silent unless WithLogger is given.
type NopLogger struct{}

// Compile-time assertion that NopLogger implements Logger.
var _ types.Logger = (*NopLogger)(nil)

// NewNop creates a logger that discards all messages.
//
// Returns:
//   - *NopLogger: Logger that performs no operations
//
// Example:
//
//	alloc, err := rota.New(nil, stores, rota.WithLogger(logger.NewNop()))
func NewNop() *NopLogger {
	return &NopLogger{}
}

// Debug discards the message.
func (n *NopLogger) Debug(_ string, _ ...any) {}

// Info discards the message.
func (n *NopLogger) Info(_ string, _ ...any) {}

// Warn discards the message.
func (n *NopLogger) Warn(_ string, _ ...any) {}

// Error discards the message.
func (n *NopLogger) Error(_ string, _ ...any) {}

// Fatal discards the message and, unlike production loggers, does not exit
// the process.
func (n *NopLogger) Fatal(_ string, _ ...any) {}
