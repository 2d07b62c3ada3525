package types

import "context"

// ManagedBalancer is the opaque per-partition balancer handle produced by a
// Factory.
//
// The handle is shared with callers of PartitionedBalancer.Get, but its
// internal lifetime is managed by the factory that produced it, not by the
// registry. The registry only calls Close on handles that lost an
// optimistic creation race and were never published.
type ManagedBalancer[C comparable] interface {
	// Choose selects one healthy host from the partition's current pool.
	Choose(ctx context.Context) (C, error)

	// Hosts returns a snapshot of the partition's active hosts.
	Hosts() []C

	// Close releases the balancer's internal resources. The registry never
	// cascades Close to retained partitions; callers needing full teardown
	// must track and close handles themselves.
	Close() error
}

// Factory builds one managed balancer per partition key.
//
// The registry guarantees at most one retained invocation per key: under a
// creation race the factory may run more than once, but every losing
// result is closed and discarded before the winning handle becomes
// observable.
type Factory[C comparable, K comparable] interface {
	// Create builds a balancer for key, consuming feed as its private
	// membership stream.
	Create(key K, feed EventStream[C]) (ManagedBalancer[C], error)
}

// FactoryFunc is a function adapter for Factory.
type FactoryFunc[C comparable, K comparable] func(key K, feed EventStream[C]) (ManagedBalancer[C], error)

// Create implements the Factory interface.
func (f FactoryFunc[C, K]) Create(key K, feed EventStream[C]) (ManagedBalancer[C], error) {
	return f(key, feed)
}
