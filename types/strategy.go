package types

import (
	"context"
	"time"
)

// HostLoad pairs a host with its most recent load sample.
//
// Load is the latest value observed on the host's metrics stream, or 0 if
// no sample has arrived yet. Weighting strategies consume HostLoad slices.
type HostLoad[C comparable] struct {
	Host C
	Load float64
}

// HostsAndWeights is the weighted candidate set handed to a selection
// strategy. Hosts and Weights have equal length; Weights[i] belongs to
// Hosts[i].
type HostsAndWeights[C comparable] struct {
	Hosts   []C
	Weights []int64
}

// WeightingStrategy computes relative weights for a partition's active
// hosts.
//
// Implementations must return one weight per input host, in input order.
// Weights are relative; a weight of 0 excludes the host from selection.
type WeightingStrategy[C comparable] interface {
	// Weigh returns one weight per host.
	Weigh(hosts []HostLoad[C]) []int64
}

// SelectionStrategy picks one host from a weighted candidate set.
//
// Implementations may keep internal state (round-robin cursors) and must
// be safe for concurrent use.
type SelectionStrategy[C comparable] interface {
	// Select returns one host from hw, or an error when hw is empty or
	// all weights are zero.
	Select(hw HostsAndWeights[C]) (C, error)
}

// FailureDetector watches a host for liveness failures.
type FailureDetector[C comparable] interface {
	// Watch returns a channel that receives one value per detected failure
	// of host. A nil channel means the host is never reported as failed,
	// which is the default behavior.
	Watch(ctx context.Context, host C) <-chan error
}

// Connector establishes whatever transport-level state a host needs before
// it can serve traffic. The default connector is immediate (a no-op).
type Connector[C comparable] interface {
	// Connect prepares host for use. Returning an error keeps the host out
	// of the active pool.
	Connect(ctx context.Context, host C) error
}

// ConnectorFunc is a function adapter for Connector.
type ConnectorFunc[C comparable] func(ctx context.Context, host C) error

// Connect implements the Connector interface.
func (f ConnectorFunc[C]) Connect(ctx context.Context, host C) error { return f(ctx, host) }

// QuarantineDelayFunc computes how long a host stays quarantined after its
// attempt-th consecutive failure (attempt starts at 1).
type QuarantineDelayFunc func(attempt int) time.Duration

// FixedDelay returns a QuarantineDelayFunc that always waits d.
func FixedDelay(d time.Duration) QuarantineDelayFunc {
	return func(_ /* attempt */ int) time.Duration { return d }
}

// ConnectedHostCountFunc caps how many of a partition's active hosts are
// considered during selection. The identity function (consider all hosts)
// is the default.
type ConnectedHostCountFunc func(active int) int

// MetricsConnector opens a per-host stream of load samples.
//
// The default sub-balancer keeps the latest sample per host and exposes it
// to weighting strategies through HostLoad. Returning a nil channel is
// valid and means no samples for that host.
type MetricsConnector[C comparable] func(ctx context.Context, host C) (<-chan float64, error)

// NopMetricsConnector returns a MetricsConnector that produces no samples.
func NopMetricsConnector[C comparable]() MetricsConnector[C] {
	return func(_ /* ctx */ context.Context, _ /* host */ C) (<-chan float64, error) {
		return nil, nil
	}
}
