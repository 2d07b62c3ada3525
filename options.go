package ocelli

import "github.com/pstout/ocelli/types"

// Option configures a PartitionedBalancer with optional dependencies.
type Option[C comparable, K comparable] func(*balancerOptions[C, K])

// balancerOptions holds optional PartitionedBalancer configuration.
type balancerOptions[C comparable, K comparable] struct {
	factory         types.Factory[C, K]
	weighting       types.WeightingStrategy[C]
	selection       types.SelectionStrategy[C]
	failureDetector types.FailureDetector[C]
	connector       types.Connector[C]
	quarantineDelay types.QuarantineDelayFunc
	hostCount       types.ConnectedHostCountFunc
	logger          types.Logger
	metrics         types.MetricsCollector
}

// WithFactory sets a custom sub-balancer factory.
//
// When no factory is supplied, the registry builds the default managed
// balancer (package balancer) from the configured strategies.
//
// Parameters:
//   - factory: Factory implementation
//
// Returns:
//   - Option: Functional option for New
//
// Example:
//
//	factory := ocelli.FactoryFunc[Host, string](func(key string, feed ocelli.EventStream[Host]) (ocelli.ManagedBalancer[Host], error) {
//	    return myBalancer(key, feed), nil
//	})
//	lb, err := ocelli.New(&cfg, src, part, mc, ocelli.WithFactory[Host, string](factory))
func WithFactory[C comparable, K comparable](factory types.Factory[C, K]) Option[C, K] {
	return func(o *balancerOptions[C, K]) {
		o.factory = factory
	}
}

// WithWeightingStrategy sets the weighting strategy used by the default
// factory (default: equal weight).
func WithWeightingStrategy[C comparable, K comparable](w types.WeightingStrategy[C]) Option[C, K] {
	return func(o *balancerOptions[C, K]) {
		o.weighting = w
	}
}

// WithSelectionStrategy sets the selection strategy used by the default
// factory (default: round-robin).
func WithSelectionStrategy[C comparable, K comparable](s types.SelectionStrategy[C]) Option[C, K] {
	return func(o *balancerOptions[C, K]) {
		o.selection = s
	}
}

// WithFailureDetector sets the failure detector used by the default
// factory (default: never fails).
func WithFailureDetector[C comparable, K comparable](d types.FailureDetector[C]) Option[C, K] {
	return func(o *balancerOptions[C, K]) {
		o.failureDetector = d
	}
}

// WithConnector sets the host connector used by the default factory
// (default: immediate no-op).
func WithConnector[C comparable, K comparable](c types.Connector[C]) Option[C, K] {
	return func(o *balancerOptions[C, K]) {
		o.connector = c
	}
}

// WithQuarantineDelay sets the quarantine delay strategy used by the
// default factory (default: fixed Config.QuarantineDelay).
func WithQuarantineDelay[C comparable, K comparable](fn types.QuarantineDelayFunc) Option[C, K] {
	return func(o *balancerOptions[C, K]) {
		o.quarantineDelay = fn
	}
}

// WithConnectedHostCount sets the connected-host-count strategy used by
// the default factory (default: identity).
func WithConnectedHostCount[C comparable, K comparable](fn types.ConnectedHostCountFunc) Option[C, K] {
	return func(o *balancerOptions[C, K]) {
		o.hostCount = fn
	}
}

// WithLogger sets a logger (default: no-op).
//
// Example:
//
//	logger := zap.NewExample().Sugar()
//	lb, err := ocelli.New(&cfg, src, part, mc, ocelli.WithLogger[Host, string](logger))
func WithLogger[C comparable, K comparable](logger types.Logger) Option[C, K] {
	return func(o *balancerOptions[C, K]) {
		o.logger = logger
	}
}

// WithMetrics sets a metrics collector (default: no-op).
//
// Example:
//
//	collector := metrics.NewPrometheus(nil, "myapp")
//	lb, err := ocelli.New(&cfg, src, part, mc, ocelli.WithMetrics[Host, string](collector))
func WithMetrics[C comparable, K comparable](m types.MetricsCollector) Option[C, K] {
	return func(o *balancerOptions[C, K]) {
		o.metrics = m
	}
}
