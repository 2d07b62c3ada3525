package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/pstout/ocelli/types"
)

// PrometheusCollector implements types.MetricsCollector backed by Prometheus.
//
// Metrics are registered lazily on first use so that constructing a
// collector never panics on duplicate registration in tests that share a
// registry.
type PrometheusCollector struct {
	reg       prometheus.Registerer
	namespace string
	once      sync.Once

	// Router metrics
	eventsReceived  *prometheus.CounterVec
	eventsDelivered prometheus.Counter
	resolveFailures prometheus.Counter
	deliveryDropped prometheus.Counter

	// Registry metrics
	partitionsCreated   prometheus.Counter
	candidatesDiscarded prometheus.Counter
	factoryFailures     prometheus.Counter
	partitionCount      prometheus.Gauge

	// Balancer metrics
	hostChanges *prometheus.CounterVec
	quarantines prometheus.Counter
	selections  *prometheus.CounterVec
}

// Compile-time assertion that PrometheusCollector implements MetricsCollector.
var _ types.MetricsCollector = (*PrometheusCollector)(nil)

// NewPrometheus creates a new Prometheus-backed metrics collector.
//
// Parameters:
//   - reg: Prometheus registerer interface (uses prometheus.DefaultRegisterer if nil)
//   - namespace: Prometheus metrics namespace (defaults to "ocelli" if empty)
//
// Returns:
//   - *PrometheusCollector: A MetricsCollector implementation using Prometheus
func NewPrometheus(reg prometheus.Registerer, namespace string) *PrometheusCollector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if namespace == "" {
		namespace = "ocelli"
	}

	return &PrometheusCollector{reg: reg, namespace: namespace}
}

func (p *PrometheusCollector) ensureRegistered() {
	p.once.Do(func() {
		p.eventsReceived = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "router",
			Name:      "events_received_total",
			Help:      "Total membership events received from the source by kind.",
		}, []string{"kind"})

		p.eventsDelivered = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "router",
			Name:      "events_delivered_total",
			Help:      "Total events delivered into partition feeds.",
		})

		p.resolveFailures = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "router",
			Name:      "resolve_failures_total",
			Help:      "Total partitioner resolution failures.",
		})

		p.deliveryDropped = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "router",
			Name:      "deliveries_dropped_total",
			Help:      "Total events dropped before reaching a partition feed.",
		})

		p.partitionsCreated = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "registry",
			Name:      "partitions_created_total",
			Help:      "Total partitions retained by the registry.",
		})

		p.candidatesDiscarded = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "registry",
			Name:      "candidates_discarded_total",
			Help:      "Total creation candidates discarded after losing an insert race.",
		})

		p.factoryFailures = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "registry",
			Name:      "factory_failures_total",
			Help:      "Total sub-balancer factory failures.",
		})

		p.partitionCount = prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: p.namespace,
			Subsystem: "registry",
			Name:      "partitions_current",
			Help:      "Current number of partitions in the registry.",
		})

		p.hostChanges = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "balancer",
			Name:      "host_changes_total",
			Help:      "Total host pool changes by kind (add/remove).",
		}, []string{"kind"})

		p.quarantines = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "balancer",
			Name:      "quarantines_total",
			Help:      "Total host quarantine events.",
		})

		p.selections = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "balancer",
			Name:      "selections_total",
			Help:      "Total host selection attempts by result (success/failure).",
		}, []string{"result"})

		p.reg.MustRegister(p.eventsReceived)
		p.reg.MustRegister(p.eventsDelivered)
		p.reg.MustRegister(p.resolveFailures)
		p.reg.MustRegister(p.deliveryDropped)
		p.reg.MustRegister(p.partitionsCreated)
		p.reg.MustRegister(p.candidatesDiscarded)
		p.reg.MustRegister(p.factoryFailures)
		p.reg.MustRegister(p.partitionCount)
		p.reg.MustRegister(p.hostChanges)
		p.reg.MustRegister(p.quarantines)
		p.reg.MustRegister(p.selections)
	})
}

// RouterMetrics implementation

// RecordEventReceived increments the received event counter for the kind.
func (p *PrometheusCollector) RecordEventReceived(kind string) {
	p.ensureRegistered()
	p.eventsReceived.WithLabelValues(kind).Inc()
}

// RecordEventDelivered increments the delivered event counter.
func (p *PrometheusCollector) RecordEventDelivered() {
	p.ensureRegistered()
	p.eventsDelivered.Inc()
}

// RecordResolveFailure increments the resolve failure counter.
func (p *PrometheusCollector) RecordResolveFailure() {
	p.ensureRegistered()
	p.resolveFailures.Inc()
}

// RecordDeliveryDropped increments the dropped delivery counter.
func (p *PrometheusCollector) RecordDeliveryDropped() {
	p.ensureRegistered()
	p.deliveryDropped.Inc()
}

// RegistryMetrics implementation

// RecordPartitionCreated increments the partition created counter.
func (p *PrometheusCollector) RecordPartitionCreated() {
	p.ensureRegistered()
	p.partitionsCreated.Inc()
}

// RecordCandidateDiscarded increments the discarded candidate counter.
func (p *PrometheusCollector) RecordCandidateDiscarded() {
	p.ensureRegistered()
	p.candidatesDiscarded.Inc()
}

// RecordFactoryFailure increments the factory failure counter.
func (p *PrometheusCollector) RecordFactoryFailure() {
	p.ensureRegistered()
	p.factoryFailures.Inc()
}

// RecordPartitionCount sets the current partition count gauge.
func (p *PrometheusCollector) RecordPartitionCount(count int) {
	p.ensureRegistered()
	p.partitionCount.Set(float64(count))
}

// BalancerMetrics implementation

// RecordHostChange adds host pool change counts by kind.
func (p *PrometheusCollector) RecordHostChange(added, removed int) {
	p.ensureRegistered()
	if added > 0 {
		p.hostChanges.WithLabelValues("add").Add(float64(added))
	}
	if removed > 0 {
		p.hostChanges.WithLabelValues("remove").Add(float64(removed))
	}
}

// RecordQuarantine increments the quarantine counter.
func (p *PrometheusCollector) RecordQuarantine() {
	p.ensureRegistered()
	p.quarantines.Inc()
}

// RecordSelection increments the selection counter by result.
func (p *PrometheusCollector) RecordSelection(success bool) {
	p.ensureRegistered()
	result := "success"
	if !success {
		result = "failure"
	}
	p.selections.WithLabelValues(result).Inc()
}
