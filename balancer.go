package ocelli

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/pstout/ocelli/balancer"
	"github.com/pstout/ocelli/internal/feed"
	"github.com/pstout/ocelli/internal/logger"
	"github.com/pstout/ocelli/internal/metrics"
	"github.com/pstout/ocelli/types"
	"github.com/puzpuzpuz/xsync/v4"
)

// PartitionedBalancer shards a population of backend hosts into
// independently managed sub-balancers, one per partition key.
//
// It is the composition of three pieces:
//   - Partition registry: concurrent key-to-partition map with atomic
//     insert-if-absent creation (Get, ListKeys)
//   - Event router: fans membership events out to the partitions their
//     host resolves to
//   - Lifecycle controller: Start/Stop of the membership subscription
//
// Thread Safety:
//   - All public methods are safe for concurrent use
//   - Partition creation is lock-free on the common path; racing creators
//     for a brand-new key may each construct a candidate, but exactly one
//     handle per key is ever observable
//
// Lifecycle:
//   - Create with New()
//   - Call Start() to begin routing membership events
//   - Call Stop() to cancel the subscription; partitions persist
type PartitionedBalancer[C comparable, K comparable] struct {
	cfg         Config
	source      types.MembershipSource[C]
	partitioner types.Partitioner[C, K]
	metricsConn types.MetricsConnector[C]

	// Optional dependencies
	factory types.Factory[C, K]
	logger  types.Logger
	metrics types.MetricsCollector

	// Registry: the only shared mutable structure in the core.
	// Entries are never removed; a key once observed occupies memory for
	// the registry's lifetime.
	partitions *xsync.Map[K, *partition[C]]

	// Lifecycle management
	state  atomic.Int32 // State
	mu     sync.Mutex
	sub    types.Subscription
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// partition pairs a private event feed with the balancer consuming it.
type partition[C comparable] struct {
	feed     *feed.Feed[C]
	balancer types.ManagedBalancer[C]
}

// New creates a PartitionedBalancer with the provided configuration.
//
// Required arguments mirror the reference builder: the membership source,
// the partitioner, and the metrics connector must be non-nil. All
// strategies are optional and default to the reference behaviors (equal
// weighting, round-robin selection, never-failing detector, immediate
// connector, fixed quarantine delay, identity host count).
//
// When no WithFactory option is given, the configured strategies are wired
// into the default managed-balancer factory explicitly.
//
// Parameters:
//   - cfg: Runtime configuration
//   - src: Membership source to route from
//   - part: Resolver from host to partition keys
//   - metricsConn: Per-host load sample source (use
//     types.NopMetricsConnector for none)
//   - opts: Optional strategies and dependencies
//
// Returns:
//   - *PartitionedBalancer[C, K]: Initialized balancer in StateCreated
//   - error: Validation error if configuration or arguments are invalid
func New[C comparable, K comparable](
	cfg *Config,
	src types.MembershipSource[C],
	part types.Partitioner[C, K],
	metricsConn types.MetricsConnector[C],
	opts ...Option[C, K],
) (*PartitionedBalancer[C, K], error) {
	if cfg == nil {
		return nil, ErrInvalidConfig
	}
	if src == nil {
		return nil, ErrSourceRequired
	}
	if part == nil {
		return nil, ErrPartitionerRequired
	}
	if metricsConn == nil {
		return nil, ErrMetricsConnectorRequired
	}

	// Fill in missing configuration values with defaults
	SetDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	// Apply options
	options := &balancerOptions[C, K]{}
	for _, opt := range opts {
		opt(options)
	}

	// Provide safe defaults for optional dependencies to avoid nil checks everywhere
	metricsCollector := options.metrics
	if metricsCollector == nil {
		metricsCollector = metrics.NewNop()
	}

	loggerInstance := options.logger
	if loggerInstance == nil {
		loggerInstance = logger.NewNop()
	}

	b := &PartitionedBalancer[C, K]{
		cfg:         *cfg,
		source:      src,
		partitioner: part,
		metricsConn: metricsConn,
		logger:      loggerInstance,
		metrics:     metricsCollector,
		partitions:  xsync.NewMap[K, *partition[C]](),
	}

	b.factory = options.factory
	if b.factory == nil {
		b.factory = b.defaultFactory(options)
	}

	b.state.Store(int32(StateCreated))

	return b, nil
}

// defaultFactory wires the configured strategies into the default managed
// balancer.
func (b *PartitionedBalancer[C, K]) defaultFactory(options *balancerOptions[C, K]) types.Factory[C, K] {
	quarantine := options.quarantineDelay
	if quarantine == nil {
		quarantine = types.FixedDelay(b.cfg.QuarantineDelay)
	}

	return types.FactoryFunc[C, K](func(key K, stream types.EventStream[C]) (types.ManagedBalancer[C], error) {
		name := fmt.Sprintf("%s_%v", b.cfg.Name, key)

		m := balancer.New(name, stream,
			balancer.WithWeighting[C](options.weighting),
			balancer.WithSelection[C](options.selection),
			balancer.WithFailureDetector[C](options.failureDetector),
			balancer.WithConnector[C](options.connector),
			balancer.WithQuarantineDelay[C](quarantine),
			balancer.WithConnectedHostCount[C](options.hostCount),
			balancer.WithMetricsConnector[C](b.metricsConn),
			balancer.WithLogger[C](b.logger),
			balancer.WithMetrics[C](b.metrics),
		)

		return m, nil
	})
}

// Start begins consuming the membership source.
//
// Transitions Created -> Running. A second Start returns
// ErrAlreadyStarted; starting a stopped balancer returns ErrStopped.
//
// Returns:
//   - error: Lifecycle or subscription error
func (b *PartitionedBalancer[C, K]) Start() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.State() {
	case StateRunning:
		return ErrAlreadyStarted
	case StateStopped:
		return ErrStopped
	case StateCreated:
		// Proceed
	}

	b.ctx, b.cancel = context.WithCancel(context.Background())

	sub, err := b.source.Subscribe(b.route)
	if err != nil {
		b.cancel()

		return fmt.Errorf("failed to subscribe to membership source: %w", err)
	}
	b.sub = sub
	b.state.Store(int32(StateRunning))

	b.logger.Info("partitioned balancer started", "name", b.cfg.Name)

	return nil
}

// Stop cancels the membership subscription and waits for in-flight
// routing to drain.
//
// Stop does NOT cascade to already-created partitions: their feeds stay
// open and their balancer handles keep running independently. Callers
// needing full teardown must track and close handles obtained via Get.
//
// Parameters:
//   - ctx: Context bounding the drain wait (Config.ShutdownTimeout is the
//     recommended bound)
//
// Returns:
//   - error: ErrNotStarted if not running, ctx.Err() on drain timeout
func (b *PartitionedBalancer[C, K]) Stop(ctx context.Context) error {
	b.mu.Lock()

	if b.State() != StateRunning {
		b.mu.Unlock()

		return ErrNotStarted
	}

	b.state.Store(int32(StateStopped))
	b.cancel()
	sub := b.sub
	b.mu.Unlock()

	var shutdownErr error
	if err := sub.Cancel(); err != nil {
		b.logger.Error("failed to cancel membership subscription", "error", err)
		shutdownErr = fmt.Errorf("subscription cancel failed: %w", err)
	}

	// Wait for in-flight routing goroutines with timeout
	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		b.logger.Info("partitioned balancer stopped", "name", b.cfg.Name)

		return shutdownErr
	case <-ctx.Done():
		b.logger.Error("shutdown timeout exceeded, some routing goroutines may still be running")
		if shutdownErr == nil {
			return ctx.Err()
		}

		return fmt.Errorf("shutdown timeout: %w; additional error: %w", ctx.Err(), shutdownErr)
	}
}

// State returns the current lifecycle state.
func (b *PartitionedBalancer[C, K]) State() State {
	return State(b.state.Load())
}

// Name returns the balancer's display name.
func (b *PartitionedBalancer[C, K]) Name() string {
	return b.cfg.Name
}

// Get returns the balancer handle for key, creating the partition if it
// does not exist yet.
//
// Safe under unbounded concurrent invocation with the same or different
// keys: all callers for the same key observe the same handle.
//
// Parameters:
//   - key: Partition key
//
// Returns:
//   - types.ManagedBalancer[C]: The partition's balancer handle
//   - error: Factory error if the partition had to be created and the
//     factory failed (the creation is not retried by the registry)
func (b *PartitionedBalancer[C, K]) Get(key K) (types.ManagedBalancer[C], error) {
	p, err := b.getOrCreate(key)
	if err != nil {
		return nil, err
	}

	return p.balancer, nil
}

// ListKeys returns a point-in-time snapshot of the known partition keys.
//
// Keys inserted after the snapshot was taken are not guaranteed to
// appear, and no ordering among keys is guaranteed.
//
// Returns:
//   - []K: Snapshot of partition keys
func (b *PartitionedBalancer[C, K]) ListKeys() []K {
	keys := make([]K, 0, b.partitions.Size())
	b.partitions.Range(func(key K, _ /* value */ *partition[C]) bool {
		keys = append(keys, key)

		return true
	})

	return keys
}

// getOrCreate returns the partition for key, constructing it optimistically
// when absent.
//
// Concurrent first-time callers may each construct a full candidate (feed
// plus factory invocation); LoadOrStore retains exactly one and the losing
// candidate is closed before anyone can observe it.
func (b *PartitionedBalancer[C, K]) getOrCreate(key K) (*partition[C], error) {
	if p, ok := b.partitions.Load(key); ok {
		return p, nil
	}

	fd := feed.New[C](b.cfg.FeedBufferSize)
	handle, err := b.factory.Create(key, fd)
	if err != nil {
		fd.Close()
		b.metrics.RecordFactoryFailure()

		return nil, fmt.Errorf("failed to create balancer for key %v: %w", key, err)
	}

	candidate := &partition[C]{feed: fd, balancer: handle}
	actual, loaded := b.partitions.LoadOrStore(key, candidate)
	if loaded {
		// Lost the insert race: discard the candidate without affecting
		// observable state.
		fd.Close()
		if cerr := handle.Close(); cerr != nil {
			b.logger.Warn("failed to close losing candidate", "key", key, "error", cerr)
		}
		b.metrics.RecordCandidateDiscarded()

		return actual, nil
	}

	b.metrics.RecordPartitionCreated()
	b.metrics.RecordPartitionCount(b.partitions.Size())
	b.logger.Info("created partition", "name", b.cfg.Name, "key", key)

	return candidate, nil
}

// route receives one membership event from the source and dispatches it on
// a dedicated goroutine.
//
// Resolution latency therefore never blocks the source, and completions of
// concurrent resolutions may interleave arbitrarily; intra-partition
// ordering is resolution-completion order, not arrival order.
func (b *PartitionedBalancer[C, K]) route(ev types.Event[C]) {
	select {
	case <-b.ctx.Done():
		return
	default:
	}

	b.metrics.RecordEventReceived(ev.Kind.String())

	b.wg.Add(1)

	// Stop may have cancelled between the check above and the Add. Re-check
	// so that Stop's drain never misses a dispatch it should have waited
	// for.
	select {
	case <-b.ctx.Done():
		b.wg.Done()

		return
	default:
	}

	go func() {
		defer b.wg.Done()
		defer func() {
			// A panicking resolver or factory must not take down routing
			// for other partitions.
			if r := recover(); r != nil {
				b.logger.Error("panic while routing membership event",
					"name", b.cfg.Name,
					"host", ev.Host,
					"panic", r,
				)
			}
		}()

		b.dispatch(ev)
	}()
}

// dispatch resolves one event's partition keys and delivers the event into
// each resolved partition's feed.
//
// Failures are contained at the per-event/per-key boundary: a resolver or
// factory fault for one key never stops routing for other keys or events.
func (b *PartitionedBalancer[C, K]) dispatch(ev types.Event[C]) {
	resolveCtx, cancel := context.WithTimeout(b.ctx, b.cfg.ResolveTimeout)
	keys, err := b.partitioner.Resolve(resolveCtx, ev.Host)
	cancel()
	if err != nil {
		b.metrics.RecordResolveFailure()
		b.logger.Warn("failed to resolve partition keys",
			"name", b.cfg.Name,
			"host", ev.Host,
			"error", err,
		)

		return
	}

	// Dedupe so delivery stays exactly-once per (event, key) even for a
	// resolver that repeats keys.
	seen := make(map[K]struct{}, len(keys))
	for _, key := range keys {
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		p, err := b.getOrCreate(key)
		if err != nil {
			b.logger.Error("failed to create partition",
				"name", b.cfg.Name,
				"key", key,
				"error", err,
			)

			continue
		}

		publishCtx, cancel := context.WithTimeout(b.ctx, b.cfg.PublishTimeout)
		err = p.feed.Publish(publishCtx, ev)
		cancel()
		if err != nil {
			b.metrics.RecordDeliveryDropped()
			b.logger.Warn("failed to deliver membership event",
				"name", b.cfg.Name,
				"key", key,
				"host", ev.Host,
				"error", err,
			)

			continue
		}

		b.metrics.RecordEventDelivered()
	}
}
