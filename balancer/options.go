package balancer

import "github.com/pstout/ocelli/types"

// Option configures a Managed balancer with optional dependencies.
type Option[C comparable] func(*options[C])

// options holds optional Managed balancer configuration.
type options[C comparable] struct {
	weighting        types.WeightingStrategy[C]
	selection        types.SelectionStrategy[C]
	failureDetector  types.FailureDetector[C]
	connector        types.Connector[C]
	quarantineDelay  types.QuarantineDelayFunc
	hostCount        types.ConnectedHostCountFunc
	metricsConnector types.MetricsConnector[C]
	logger           types.Logger
	metrics          types.MetricsCollector
}

// WithWeighting sets the weighting strategy (default: equal weight).
func WithWeighting[C comparable](w types.WeightingStrategy[C]) Option[C] {
	return func(o *options[C]) {
		o.weighting = w
	}
}

// WithSelection sets the selection strategy (default: round-robin).
func WithSelection[C comparable](s types.SelectionStrategy[C]) Option[C] {
	return func(o *options[C]) {
		o.selection = s
	}
}

// WithFailureDetector sets the failure detector (default: never fails).
func WithFailureDetector[C comparable](d types.FailureDetector[C]) Option[C] {
	return func(o *options[C]) {
		o.failureDetector = d
	}
}

// WithConnector sets the host connector (default: immediate no-op).
func WithConnector[C comparable](c types.Connector[C]) Option[C] {
	return func(o *options[C]) {
		o.connector = c
	}
}

// WithQuarantineDelay sets the quarantine delay strategy
// (default: fixed 10s delay).
func WithQuarantineDelay[C comparable](fn types.QuarantineDelayFunc) Option[C] {
	return func(o *options[C]) {
		o.quarantineDelay = fn
	}
}

// WithConnectedHostCount caps how many active hosts selection considers
// (default: identity, all hosts).
func WithConnectedHostCount[C comparable](fn types.ConnectedHostCountFunc) Option[C] {
	return func(o *options[C]) {
		o.hostCount = fn
	}
}

// WithMetricsConnector sets the per-host load sample source.
func WithMetricsConnector[C comparable](mc types.MetricsConnector[C]) Option[C] {
	return func(o *options[C]) {
		o.metricsConnector = mc
	}
}

// WithLogger sets a logger (default: no-op).
func WithLogger[C comparable](logger types.Logger) Option[C] {
	return func(o *options[C]) {
		o.logger = logger
	}
}

// WithMetrics sets a metrics collector (default: no-op).
func WithMetrics[C comparable](m types.MetricsCollector) Option[C] {
	return func(o *options[C]) {
		o.metrics = m
	}
}
