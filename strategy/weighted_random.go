package strategy

import (
	rand "math/rand/v2"
	"sync"

	"github.com/pstout/ocelli/types"
)

// WeightedRandom selects hosts with probability proportional to weight.
type WeightedRandom[C comparable] struct {
	mu  sync.Mutex
	rng *rand.Rand
}

var _ types.SelectionStrategy[string] = (*WeightedRandom[string])(nil)

// NewWeightedRandom creates a weight-proportional random selection strategy.
//
// Parameters:
//   - seed: Deterministic RNG seed; 0 uses the package-level PRNG, which
//     keeps production selection inexpensive and avoids hidden time-based
//     variability
//
// Returns:
//   - *WeightedRandom[C]: Initialized strategy
func NewWeightedRandom[C comparable](seed int64) *WeightedRandom[C] {
	wr := &WeightedRandom[C]{}
	if seed != 0 {
		s1 := uint64(seed) //nolint:gosec // non-crypto selection RNG
		wr.rng = rand.New(rand.NewPCG(s1, s1^0x9e3779b97f4a7c15))
	}

	return wr
}

// Select picks one host; hosts with higher weight are picked more often.
//
// Hosts with zero weight are never selected. When every weight is zero or
// missing, selection falls back to uniform choice over all hosts.
//
// Parameters:
//   - hw: Weighted candidate set
//
// Returns:
//   - C: Selected host
//   - error: ErrNoHosts when the candidate set is empty
func (wr *WeightedRandom[C]) Select(hw types.HostsAndWeights[C]) (C, error) {
	var zero C
	n := len(hw.Hosts)
	if n == 0 {
		return zero, ErrNoHosts
	}

	var total int64
	if len(hw.Weights) == n {
		for _, w := range hw.Weights {
			if w > 0 {
				total += w
			}
		}
	}

	if total == 0 {
		return hw.Hosts[wr.intN(n)], nil
	}

	target := wr.int64N(total)
	for i, w := range hw.Weights {
		if w <= 0 {
			continue
		}
		if target < w {
			return hw.Hosts[i], nil
		}
		target -= w
	}

	// Unreachable with consistent weights; keep the last positive host as a guard.
	return hw.Hosts[n-1], nil
}

func (wr *WeightedRandom[C]) intN(n int) int {
	if wr.rng == nil {
		return rand.IntN(n) //nolint:gosec // non-crypto selection RNG
	}

	wr.mu.Lock()
	defer wr.mu.Unlock()

	return wr.rng.IntN(n)
}

func (wr *WeightedRandom[C]) int64N(n int64) int64 {
	if wr.rng == nil {
		return rand.Int64N(n) //nolint:gosec // non-crypto selection RNG
	}

	wr.mu.Lock()
	defer wr.mu.Unlock()

	return wr.rng.Int64N(n)
}
