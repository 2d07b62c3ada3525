package types

// EventStream is the read side of a partition's private event feed.
//
// The registry hands one EventStream to the factory for each partition it
// retains. The stream carries only the events whose hosts resolved to that
// partition's key, in the order the router completed resolution for them.
type EventStream[C comparable] interface {
	// Events returns the channel carrying the partition's membership events.
	// The channel is never closed; consumers should select on Done as well.
	Events() <-chan Event[C]

	// Done is closed when the feed is discarded and will receive no further
	// events. Only feeds belonging to losing creation candidates are ever
	// discarded by the registry itself.
	Done() <-chan struct{}
}
