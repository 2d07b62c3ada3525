package types

// MetricsCollector defines methods for recording operational metrics.
//
// Implementations should be non-blocking and handle failures gracefully.
// All methods are called from internal goroutines and must be thread-safe.
//
// This interface composes smaller, domain-focused interfaces for better
// modularity.
type MetricsCollector interface {
	RouterMetrics
	RegistryMetrics
	BalancerMetrics
}

// RouterMetrics defines metrics for event routing.
type RouterMetrics interface {
	// RecordEventReceived records one membership event received from the
	// source, by kind ("added" or "removed").
	RecordEventReceived(kind string)

	// RecordEventDelivered records one event delivered into a partition
	// feed. One source event may produce zero or more deliveries.
	RecordEventDelivered()

	// RecordResolveFailure records a partitioner failure for one event.
	RecordResolveFailure()

	// RecordDeliveryDropped records an event that could not be published
	// into a partition feed (publish timeout or shutdown).
	RecordDeliveryDropped()
}

// RegistryMetrics defines metrics for the partition registry.
type RegistryMetrics interface {
	// RecordPartitionCreated records a partition retained by the registry.
	RecordPartitionCreated()

	// RecordCandidateDiscarded records a fully constructed candidate that
	// lost an insert-if-absent race and was discarded.
	RecordCandidateDiscarded()

	// RecordFactoryFailure records a sub-balancer factory error.
	RecordFactoryFailure()

	// RecordPartitionCount sets the current partition count (gauge).
	RecordPartitionCount(count int)
}

// BalancerMetrics defines metrics for the default managed sub-balancer.
type BalancerMetrics interface {
	// RecordHostChange records host pool changes within one partition.
	RecordHostChange(added, removed int)

	// RecordQuarantine records a host entering quarantine after a failure.
	RecordQuarantine()

	// RecordSelection records a host selection attempt.
	RecordSelection(success bool)
}
