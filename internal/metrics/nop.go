// Package metrics provides MetricsCollector implementations.
package metrics

import "github.com/pstout/ocelli/types"

// NopMetrics implements a no-op metrics collector.
//
// All metrics are discarded. Useful for testing or when external
// metrics collection is used.
type NopMetrics struct{}

// Compile-time assertion that NopMetrics implements MetricsCollector.
var _ types.MetricsCollector = (*NopMetrics)(nil)

// NewNop creates a new no-op metrics collector.
//
// Returns:
//   - *NopMetrics: A new no-op metrics collector instance
func NewNop() *NopMetrics {
	return &NopMetrics{}
}

// RouterMetrics implementation

// RecordEventReceived discards the received event metric.
func (n *NopMetrics) RecordEventReceived(_ /* kind */ string) {
	// No-op
}

// RecordEventDelivered discards the delivered event metric.
func (n *NopMetrics) RecordEventDelivered() {
	// No-op
}

// RecordResolveFailure discards the resolve failure metric.
func (n *NopMetrics) RecordResolveFailure() {
	// No-op
}

// RecordDeliveryDropped discards the dropped delivery metric.
func (n *NopMetrics) RecordDeliveryDropped() {
	// No-op
}

// RegistryMetrics implementation

// RecordPartitionCreated discards the partition created metric.
func (n *NopMetrics) RecordPartitionCreated() {
	// No-op
}

// RecordCandidateDiscarded discards the candidate discarded metric.
func (n *NopMetrics) RecordCandidateDiscarded() {
	// No-op
}

// RecordFactoryFailure discards the factory failure metric.
func (n *NopMetrics) RecordFactoryFailure() {
	// No-op
}

// RecordPartitionCount discards the partition count metric.
func (n *NopMetrics) RecordPartitionCount(_ /* count */ int) {
	// No-op
}

// BalancerMetrics implementation

// RecordHostChange discards the host change metric.
func (n *NopMetrics) RecordHostChange(_ /* added */, _ /* removed */ int) {
	// No-op
}

// RecordQuarantine discards the quarantine metric.
func (n *NopMetrics) RecordQuarantine() {
	// No-op
}

// RecordSelection discards the selection metric.
func (n *NopMetrics) RecordSelection(_ /* success */ bool) {
	// No-op
}
