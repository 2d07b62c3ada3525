package partitioner

import (
	"context"
	"fmt"

	"github.com/pstout/ocelli/types"
	"github.com/zeebo/xxh3"
)

// XXHashShards resolves each host to exactly one of a fixed number of
// shard keys by hashing a host attribute with xxh3.
//
// The mapping is stable: the same attribute value always lands on the same
// shard key, across processes and restarts.
type XXHashShards[C comparable] struct {
	shards uint64
	keyFn  func(C) string
}

var _ types.Partitioner[string, string] = (*XXHashShards[string])(nil)

// NewXXHashShards creates an xxh3-based shard partitioner.
//
// Parameters:
//   - shards: Number of shard keys (values < 1 fall back to 1)
//   - keyFn: Extracts the attribute to hash from a host (host ID, address)
//
// Returns:
//   - *XXHashShards[C]: Initialized shard partitioner
//
// Example:
//
//	p := partitioner.NewXXHashShards(16, func(h Host) string { return h.ID })
//	// h with ID "db-3" always resolves to the same "shard-NN" key
func NewXXHashShards[C comparable](shards int, keyFn func(C) string) *XXHashShards[C] {
	if shards < 1 {
		shards = 1
	}

	return &XXHashShards[C]{shards: uint64(shards), keyFn: keyFn}
}

// Resolve returns the single shard key for host.
func (p *XXHashShards[C]) Resolve(_ /* ctx */ context.Context, host C) ([]string, error) {
	h := xxh3.HashString(p.keyFn(host))

	return []string{fmt.Sprintf("shard-%02d", h%p.shards)}, nil
}
