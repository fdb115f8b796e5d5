// Package testing provides test utilities for the rota library.
//
// This package offers helpers for setting up test environments, particularly
// embedded NATS servers for testing the JetStream-backed store. It follows
// Go's convention of providing testing utilities in a dedicated package
// (similar to net/http/httptest).
//
// Key utilities:
//   - StartEmbeddedNATS: Single NATS server with JetStream
//   - NewJetStream: JetStream context for a test connection
//   - NewTestLogger: types.Logger writing to testing.T
//
// Example usage:
//
//	import (
//	    "testing"
//	    rotatest "github.com/rotad/rota/testing"
//	)
//
//	func TestMyComponent(t *testing.T) {
//	    _, nc := rotatest.StartEmbeddedNATS(t)
//	    // Use nc for your tests
//	}
package testing
