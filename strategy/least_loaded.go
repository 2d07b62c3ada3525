package strategy

import "github.com/pstout/ocelli/types"

// LeastLoaded weights hosts inversely to their latest load sample.
//
// Load samples come from the partition's metrics connector. A host without
// a sample yet (load 0) receives the maximum weight, so fresh hosts start
// receiving traffic immediately.
type LeastLoaded[C comparable] struct {
	// maxWeight is the weight of an unloaded host.
	maxWeight int64
}

var _ types.WeightingStrategy[string] = (*LeastLoaded[string])(nil)

// NewLeastLoaded creates a load-inverse weighting strategy.
//
// Returns:
//   - *LeastLoaded[C]: Initialized strategy
func NewLeastLoaded[C comparable]() *LeastLoaded[C] {
	return &LeastLoaded[C]{maxWeight: DefaultWeight}
}

// Weigh maps each host's load onto [1, DefaultWeight].
//
// The most loaded host gets weight 1; a host at zero load gets
// DefaultWeight; loads in between scale linearly against the maximum
// observed load in this call.
func (ll *LeastLoaded[C]) Weigh(hosts []types.HostLoad[C]) []int64 {
	weights := make([]int64, len(hosts))

	var maxLoad float64
	for _, h := range hosts {
		if h.Load > maxLoad {
			maxLoad = h.Load
		}
	}

	for i, h := range hosts {
		if maxLoad <= 0 || h.Load <= 0 {
			weights[i] = ll.maxWeight
			continue
		}

		w := int64(float64(ll.maxWeight) * (1 - h.Load/maxLoad))
		if w < 1 {
			w = 1
		}
		weights[i] = w
	}

	return weights
}
