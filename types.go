package ocelli

import "github.com/pstout/ocelli/types"

// Re-export types from the types subpackage.
//
// This file provides a stable public API for the library's core types and
// interfaces via type aliases. Internal and sibling packages depend on the
// types subpackage directly, which avoids import cycles while keeping
// ocelli.Event, ocelli.Logger, etc. available to users.
type (
	EventKind        = types.EventKind
	State            = types.State
	Subscription     = types.Subscription
	Logger           = types.Logger
	MetricsCollector = types.MetricsCollector
)

// Re-export the generic core types.
type (
	Event[C comparable]            = types.Event[C]
	EventStream[C comparable]      = types.EventStream[C]
	MembershipSource[C comparable] = types.MembershipSource[C]
	ManagedBalancer[C comparable]  = types.ManagedBalancer[C]

	Partitioner[C comparable, K comparable] = types.Partitioner[C, K]
	Factory[C comparable, K comparable]     = types.Factory[C, K]
	FactoryFunc[C comparable, K comparable] = types.FactoryFunc[C, K]
)

// Re-export the strategy contracts consumed by the default sub-balancer.
type (
	WeightingStrategy[C comparable] = types.WeightingStrategy[C]
	SelectionStrategy[C comparable] = types.SelectionStrategy[C]
	FailureDetector[C comparable]   = types.FailureDetector[C]
	Connector[C comparable]         = types.Connector[C]
	ConnectorFunc[C comparable]     = types.ConnectorFunc[C]
	MetricsConnector[C comparable]  = types.MetricsConnector[C]
	HostLoad[C comparable]          = types.HostLoad[C]
	HostsAndWeights[C comparable]   = types.HostsAndWeights[C]

	QuarantineDelayFunc    = types.QuarantineDelayFunc
	ConnectedHostCountFunc = types.ConnectedHostCountFunc
)

// Re-export event kind constants.
const (
	HostAdded   = types.HostAdded
	HostRemoved = types.HostRemoved
)

// Re-export lifecycle state constants.
const (
	StateCreated = types.StateCreated
	StateRunning = types.StateRunning
	StateStopped = types.StateStopped
)
