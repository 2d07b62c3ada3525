package types

// State represents the lifecycle state of a partitioned balancer.
//
// Transitions are explicit and one-way:
//
//	Created --Start()--> Running --Stop()--> Stopped
//
// Stopped is terminal; a stopped balancer cannot be restarted.
type State int32

const (
	// StateCreated is the initial state before Start.
	StateCreated State = iota

	// StateRunning means the router is consuming the membership source.
	StateRunning

	// StateStopped means the subscription has been cancelled. Partitions
	// created while running persist but receive no further events.
	StateStopped
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateCreated:
		return "Created"
	case StateRunning:
		return "Running"
	case StateStopped:
		return "Stopped"
	default:
		return "Unknown"
	}
}
