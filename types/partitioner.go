package types

import "context"

// Partitioner resolves the set of partition keys a host belongs to.
//
// A host may belong to zero, one or many partitions simultaneously (for
// example multi-dimensional sharding). Resolution runs on its own
// goroutine per event, so completions of concurrent resolutions interleave
// arbitrarily relative to event arrival order.
type Partitioner[C comparable, K comparable] interface {
	// Resolve returns the finite set of partition keys for host.
	//
	// Implementations should:
	//   - Return an empty slice for hosts no partition cares about
	//   - Handle context cancellation gracefully
	//   - Return errors for transient failures (the router contains them
	//     per event; they are never retried)
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeout
	//   - host: The host to resolve
	//
	// Returns:
	//   - []K: Partition keys (may be empty, duplicates are ignored)
	//   - error: Resolution error (nil on success)
	Resolve(ctx context.Context, host C) ([]K, error)
}
