package partitioner

import (
	"context"

	"github.com/pstout/ocelli/types"
)

// Func adapts a plain resolver function to the Partitioner interface.
//
// Example:
//
//	byRegion := partitioner.Func[Host, string](func(_ context.Context, h Host) ([]string, error) {
//	    return []string{h.Region}, nil
//	})
type Func[C comparable, K comparable] func(ctx context.Context, host C) ([]K, error)

var _ types.Partitioner[string, string] = (Func[string, string])(nil)

// Resolve implements the Partitioner interface.
func (f Func[C, K]) Resolve(ctx context.Context, host C) ([]K, error) {
	return f(ctx, host)
}

// Fixed returns a partitioner that resolves every host to the same keys.
//
// Useful for tests and for routing the whole population into a single
// partition.
//
// Parameters:
//   - keys: Keys every host resolves to (may be empty)
//
// Returns:
//   - Func[C, K]: The constant resolver
func Fixed[C comparable, K comparable](keys ...K) Func[C, K] {
	return func(_ /* ctx */ context.Context, _ /* host */ C) ([]K, error) {
		out := make([]K, len(keys))
		copy(out, keys)

		return out, nil
	}
}
