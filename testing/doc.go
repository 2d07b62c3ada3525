// Package testing provides test utilities for the ocelli library.
//
// This package offers helpers for setting up test environments, particularly
// embedded NATS servers for integration testing of membership sources. It
// follows Go's convention of providing testing utilities in a dedicated
// package (similar to net/http/httptest).
//
// Key utilities:
//   - StartEmbeddedNATS: Single NATS server with JetStream
//   - CreateMembershipStream: JetStream stream for membership event replay
//   - NewTestLogger: Logger that writes through testing.T
//
// Example usage:
//
//	import (
//	    "testing"
//	    ocellitest "github.com/pstout/ocelli/testing"
//	)
//
//	func TestMyComponent(t *testing.T) {
//	    _, nc := ocellitest.StartEmbeddedNATS(t)
//	    // Use nc for your tests
//	}
package testing
