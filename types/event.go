package types

import "fmt"

// EventKind identifies the type of a membership event.
type EventKind int

const (
	// HostAdded indicates a host joined the candidate population.
	HostAdded EventKind = iota

	// HostRemoved indicates a host left the candidate population.
	HostRemoved
)

// String returns a human-readable name for the event kind.
func (k EventKind) String() string {
	switch k {
	case HostAdded:
		return "added"
	case HostRemoved:
		return "removed"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

// Event is an immutable membership change notification for a single host.
//
// Events are produced by a MembershipSource and fanned out by the router
// into each resolved partition's private feed. They are never mutated
// after creation; the router delivers value copies.
type Event[C comparable] struct {
	// Host is the backend host the event refers to.
	Host C `json:"host"`

	// Kind indicates whether the host joined or left.
	Kind EventKind `json:"kind"`
}
