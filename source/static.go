package source

import (
	"errors"
	"sync"

	"github.com/pstout/ocelli/types"
)

// Static implements a membership source over an in-memory host list.
//
// Each new subscriber first receives a HostAdded replay of the current
// hosts, then live events produced by Add and Remove. Dispatch is
// serialized by an internal mutex, so a subscriber sees the replay and
// subsequent live events without duplicates or gaps.
type Static[C comparable] struct {
	mu       sync.Mutex
	hosts    []C
	nextID   uint64
	handlers map[uint64]func(types.Event[C])
}

var _ types.MembershipSource[string] = (*Static[string])(nil)

// NewStatic creates a static membership source seeded with hosts.
//
// Parameters:
//   - hosts: Initial host population (may be empty)
//
// Returns:
//   - *Static[C]: Initialized source
//
// Example:
//
//	src := source.NewStatic("10.0.0.1:6379", "10.0.0.2:6379")
//	lb, err := ocelli.New(&cfg, src, byRegion, metricsConn)
func NewStatic[C comparable](hosts ...C) *Static[C] {
	s := &Static[C]{
		handlers: make(map[uint64]func(types.Event[C])),
	}
	s.hosts = append(s.hosts, hosts...)

	return s
}

// Subscribe registers a handler, replaying HostAdded for current hosts.
//
// The handler is invoked with the dispatch mutex held; it must not call
// back into the source.
func (s *Static[C]) Subscribe(handler func(types.Event[C])) (types.Subscription, error) {
	if handler == nil {
		return nil, errors.New("handler is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	id := s.nextID
	s.handlers[id] = handler

	for _, h := range s.hosts {
		handler(types.Event[C]{Host: h, Kind: types.HostAdded})
	}

	return &staticSubscription[C]{source: s, id: id}, nil
}

// Add inserts a host and emits HostAdded to all subscribers.
//
// Adding a host that is already present is a no-op.
func (s *Static[C]) Add(host C) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, h := range s.hosts {
		if h == host {
			return
		}
	}
	s.hosts = append(s.hosts, host)
	s.dispatch(types.Event[C]{Host: host, Kind: types.HostAdded})
}

// Remove deletes a host and emits HostRemoved to all subscribers.
//
// Removing an unknown host is a no-op.
func (s *Static[C]) Remove(host C) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, h := range s.hosts {
		if h == host {
			s.hosts = append(s.hosts[:i], s.hosts[i+1:]...)
			s.dispatch(types.Event[C]{Host: host, Kind: types.HostRemoved})

			return
		}
	}
}

// Hosts returns a snapshot of the current host list.
func (s *Static[C]) Hosts() []C {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]C, len(s.hosts))
	copy(out, s.hosts)

	return out
}

// dispatch delivers ev to every registered handler. Caller holds mu.
func (s *Static[C]) dispatch(ev types.Event[C]) {
	for _, handler := range s.handlers {
		handler(ev)
	}
}

// staticSubscription cancels delivery to one handler.
type staticSubscription[C comparable] struct {
	source *Static[C]
	id     uint64
}

// Cancel removes the handler. Safe to call multiple times.
func (sub *staticSubscription[C]) Cancel() error {
	sub.source.mu.Lock()
	defer sub.source.mu.Unlock()

	delete(sub.source.handlers, sub.id)

	return nil
}
