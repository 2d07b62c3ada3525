package ocelli

import "errors"

// Sentinel errors returned by the PartitionedBalancer.
var (
	// ErrInvalidConfig is returned when the configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrSourceRequired is returned when the membership source is nil.
	ErrSourceRequired = errors.New("membership source is required")

	// ErrPartitionerRequired is returned when the partitioner is nil.
	ErrPartitionerRequired = errors.New("partitioner is required")

	// ErrMetricsConnectorRequired is returned when the metrics connector is nil.
	ErrMetricsConnectorRequired = errors.New("metrics connector is required")

	// ErrAlreadyStarted is returned when Start is called on a running balancer.
	ErrAlreadyStarted = errors.New("balancer already started")

	// ErrNotStarted is returned when Stop is called on a balancer that is
	// not running.
	ErrNotStarted = errors.New("balancer not started")

	// ErrStopped is returned when Start is called on a stopped balancer;
	// Stopped is terminal.
	ErrStopped = errors.New("balancer is stopped")
)
