// Package partitioner provides partition key resolvers.
//
// A resolver maps one host onto the finite set of partition keys it
// belongs to. Func adapts a plain function; XXHashShards derives a stable
// shard key from a host attribute.
package partitioner
