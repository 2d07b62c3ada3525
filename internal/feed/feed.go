// Package feed implements the private per-partition event channel.
package feed

import (
	"context"
	"errors"
	"sync"

	"github.com/pstout/ocelli/types"
)

// ErrClosed is returned by Publish after the feed has been closed.
var ErrClosed = errors.New("feed is closed")

// Feed is a bounded, channel-backed event stream private to one partition.
//
// The write side tolerates concurrent publishers: multiple router
// goroutines resolving different events to the same key may publish at the
// same time. The read side is consumed by exactly one managed balancer.
//
// The underlying channel is never closed; Close only signals Done, so a
// concurrent Publish can never panic on a closed channel.
type Feed[C comparable] struct {
	ch   chan types.Event[C]
	done chan struct{}
	once sync.Once
}

// Compile-time assertion that Feed implements the read-side contract.
var _ types.EventStream[string] = (*Feed[string])(nil)

// New creates a feed with the given buffer size.
//
// Parameters:
//   - size: Channel buffer size; values < 1 fall back to 1
//
// Returns:
//   - *Feed[C]: Initialized feed
func New[C comparable](size int) *Feed[C] {
	if size < 1 {
		size = 1
	}

	return &Feed[C]{
		ch:   make(chan types.Event[C], size),
		done: make(chan struct{}),
	}
}

// Publish delivers one event into the feed.
//
// Blocks while the buffer is full, providing backpressure to the router.
//
// Parameters:
//   - ctx: Context bounding the delivery attempt
//   - ev: Event to deliver (copied by value)
//
// Returns:
//   - error: nil on delivery, ErrClosed after Close, ctx.Err() on cancellation
func (f *Feed[C]) Publish(ctx context.Context, ev types.Event[C]) error {
	select {
	case <-f.done:
		return ErrClosed
	default:
	}

	select {
	case f.ch <- ev:
		return nil
	case <-f.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Events returns the read side of the feed.
func (f *Feed[C]) Events() <-chan types.Event[C] {
	return f.ch
}

// Done is closed when the feed is discarded.
func (f *Feed[C]) Done() <-chan struct{} {
	return f.done
}

// Close marks the feed as discarded. Safe to call multiple times.
//
// Events already buffered remain readable; new publishes fail with
// ErrClosed.
func (f *Feed[C]) Close() {
	f.once.Do(func() {
		close(f.done)
	})
}
