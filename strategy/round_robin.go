package strategy

import (
	"sync/atomic"

	"github.com/pstout/ocelli/types"
)

// RoundRobin implements simple round-robin host selection.
//
// Weights are ignored except that zero-weight hosts are skipped. This is
// the default selection strategy.
type RoundRobin[C comparable] struct {
	next atomic.Uint64
}

var _ types.SelectionStrategy[string] = (*RoundRobin[string])(nil)

// NewRoundRobin creates a new round-robin selection strategy.
//
// The strategy cycles through the candidate hosts in order, providing
// predictable, evenly spread selection.
//
// Returns:
//   - *RoundRobin[C]: Initialized round-robin strategy
func NewRoundRobin[C comparable]() *RoundRobin[C] {
	return &RoundRobin[C]{}
}

// Select returns the next host in rotation.
//
// Parameters:
//   - hw: Weighted candidate set
//
// Returns:
//   - C: Selected host
//   - error: ErrNoHosts when no selectable host exists
func (rr *RoundRobin[C]) Select(hw types.HostsAndWeights[C]) (C, error) {
	var zero C
	n := len(hw.Hosts)
	if n == 0 {
		return zero, ErrNoHosts
	}

	start := rr.next.Add(1) - 1
	for i := range n {
		idx := int((start + uint64(i)) % uint64(n)) //nolint:gosec // n > 0, bounded modulo
		if len(hw.Weights) == n && hw.Weights[idx] == 0 {
			continue
		}

		return hw.Hosts[idx], nil
	}

	return zero, ErrNoHosts
}
