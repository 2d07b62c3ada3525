package strategy

import "github.com/pstout/ocelli/types"

// DefaultWeight is the weight assigned to every host by EqualWeight.
const DefaultWeight = 100

// EqualWeight assigns the same weight to every host.
//
// This is the default weighting strategy; load samples are ignored.
type EqualWeight[C comparable] struct{}

var _ types.WeightingStrategy[string] = (*EqualWeight[string])(nil)

// NewEqualWeight creates an equal-weight weighting strategy.
//
// Returns:
//   - *EqualWeight[C]: Initialized strategy
func NewEqualWeight[C comparable]() *EqualWeight[C] {
	return &EqualWeight[C]{}
}

// Weigh returns DefaultWeight for every host.
func (ew *EqualWeight[C]) Weigh(hosts []types.HostLoad[C]) []int64 {
	weights := make([]int64, len(hosts))
	for i := range weights {
		weights[i] = DefaultWeight
	}

	return weights
}
