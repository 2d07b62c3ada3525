package types

// Subscription represents an active membership subscription.
type Subscription interface {
	// Cancel stops event delivery to the subscription's handler.
	// It is safe to call multiple times.
	Cancel() error
}

// MembershipSource is a push-based, cancellable stream of host membership
// changes.
//
// Implementations can deliver events from multiple goroutines concurrently;
// subscribers must tolerate arbitrary interleaving. See the source package
// for Static, NATS and JetStream implementations.
type MembershipSource[C comparable] interface {
	// Subscribe registers a handler for membership events and returns a
	// handle that cancels delivery.
	//
	// Parameters:
	//   - handler: Callback invoked once per event; must be non-nil
	//
	// Returns:
	//   - Subscription: Cancellation handle
	//   - error: Subscription setup failure
	Subscribe(handler func(Event[C])) (Subscription, error)
}
