package balancer

import (
	"context"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pstout/ocelli/internal/logger"
	"github.com/pstout/ocelli/internal/metrics"
	"github.com/pstout/ocelli/strategy"
	"github.com/pstout/ocelli/types"
)

// Managed is a per-partition balancer over a dynamic host pool.
//
// Thread Safety:
//   - All public methods are safe for concurrent use
//   - The feed is consumed by a single internal goroutine
//
// Lifecycle:
//   - Create with New(); the run loop starts immediately
//   - Call Choose() to select among healthy hosts
//   - Call Close() to stop the run loop and all host watches
type Managed[C comparable] struct {
	name string
	feed types.EventStream[C]

	weighting        types.WeightingStrategy[C]
	selection        types.SelectionStrategy[C]
	failureDetector  types.FailureDetector[C]
	connector        types.Connector[C]
	quarantineDelay  types.QuarantineDelayFunc
	hostCount        types.ConnectedHostCountFunc
	metricsConnector types.MetricsConnector[C]

	logger  types.Logger
	metrics types.MetricsCollector

	mu     sync.RWMutex
	order  []C                  // active hosts in arrival order
	states map[C]*hostState     // active and quarantined hosts

	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// hostState tracks one known host.
type hostState struct {
	cancel      context.CancelFunc
	loadBits    atomic.Uint64 // math.Float64bits of the latest sample
	attempts    int           // consecutive failures
	quarantined bool
}

func (hs *hostState) load() float64 {
	return math.Float64frombits(hs.loadBits.Load())
}

// Compile-time assertion that Managed implements ManagedBalancer.
var _ types.ManagedBalancer[string] = (*Managed[string])(nil)

// New creates a managed balancer consuming feed and starts its run loop.
//
// Missing options fall back to the reference defaults: equal weighting,
// round-robin selection, never-failing detector, immediate connector,
// fixed 10s quarantine delay and identity host count.
//
// Parameters:
//   - name: Display name used in log fields
//   - feed: Private membership event stream for this partition
//   - opts: Optional strategies and dependencies
//
// Returns:
//   - *Managed[C]: Running balancer
func New[C comparable](name string, feed types.EventStream[C], opts ...Option[C]) *Managed[C] {
	o := &options[C]{}
	for _, opt := range opts {
		opt(o)
	}

	if o.weighting == nil {
		o.weighting = strategy.NewEqualWeight[C]()
	}
	if o.selection == nil {
		o.selection = strategy.NewRoundRobin[C]()
	}
	if o.quarantineDelay == nil {
		o.quarantineDelay = types.FixedDelay(10 * time.Second)
	}
	if o.hostCount == nil {
		o.hostCount = func(active int) int { return active }
	}
	if o.logger == nil {
		o.logger = logger.NewNop()
	}
	if o.metrics == nil {
		o.metrics = metrics.NewNop()
	}

	ctx, cancel := context.WithCancel(context.Background())

	m := &Managed[C]{
		name:             name,
		feed:             feed,
		weighting:        o.weighting,
		selection:        o.selection,
		failureDetector:  o.failureDetector,
		connector:        o.connector,
		quarantineDelay:  o.quarantineDelay,
		hostCount:        o.hostCount,
		metricsConnector: o.metricsConnector,
		logger:           o.logger,
		metrics:          o.metrics,
		states:           make(map[C]*hostState),
		ctx:              ctx,
		cancel:           cancel,
	}

	m.wg.Add(1)
	go m.run()

	return m
}

// run consumes the partition feed until the balancer is closed or the feed
// is discarded.
func (m *Managed[C]) run() {
	defer m.wg.Done()

	for {
		select {
		case <-m.ctx.Done():
			return
		case <-m.feed.Done():
			return
		case ev := <-m.feed.Events():
			switch ev.Kind {
			case types.HostAdded:
				m.addHost(ev.Host)
			case types.HostRemoved:
				m.removeHost(ev.Host)
			}
		}
	}
}

// addHost connects and activates a host, then starts its watches.
func (m *Managed[C]) addHost(host C) {
	m.mu.Lock()
	if _, known := m.states[host]; known {
		m.mu.Unlock()

		return
	}
	m.mu.Unlock()

	// Connect outside the lock; connectors may be slow.
	if m.connector != nil {
		if err := m.connector.Connect(m.ctx, host); err != nil {
			m.logger.Warn("host connect failed",
				"balancer", m.name,
				"host", host,
				"error", err,
			)

			return
		}
	}

	hostCtx, hostCancel := context.WithCancel(m.ctx)
	hs := &hostState{cancel: hostCancel}

	m.mu.Lock()
	if _, known := m.states[host]; known {
		// Lost a duplicate-add race while connecting.
		m.mu.Unlock()
		hostCancel()

		return
	}
	m.states[host] = hs
	m.order = append(m.order, host)
	m.mu.Unlock()

	m.metrics.RecordHostChange(1, 0)
	m.logger.Debug("host added", "balancer", m.name, "host", host)

	m.watchHost(hostCtx, host, hs)
}

// removeHost drops a host from the pool, active or quarantined.
func (m *Managed[C]) removeHost(host C) {
	m.mu.Lock()
	hs, known := m.states[host]
	if !known {
		m.mu.Unlock()

		return
	}
	delete(m.states, host)
	m.dropFromOrder(host)
	m.mu.Unlock()

	hs.cancel()
	m.metrics.RecordHostChange(0, 1)
	m.logger.Debug("host removed", "balancer", m.name, "host", host)
}

// dropFromOrder removes host from the active order slice. Caller holds mu.
func (m *Managed[C]) dropFromOrder(host C) {
	for i, h := range m.order {
		if h == host {
			m.order = append(m.order[:i], m.order[i+1:]...)

			return
		}
	}
}

// watchHost starts the failure watch and load sample loop for a host.
func (m *Managed[C]) watchHost(ctx context.Context, host C, hs *hostState) {
	if m.failureDetector != nil {
		failures := m.failureDetector.Watch(ctx, host)
		if failures != nil {
			m.wg.Add(1)
			go func() {
				defer m.wg.Done()
				for {
					select {
					case <-ctx.Done():
						return
					case _, ok := <-failures:
						if !ok {
							return
						}
						m.quarantine(host)
					}
				}
			}()
		}
	}

	if m.metricsConnector != nil {
		samples, err := m.metricsConnector(ctx, host)
		if err != nil {
			m.logger.Warn("metrics connect failed",
				"balancer", m.name,
				"host", host,
				"error", err,
			)

			return
		}
		if samples != nil {
			m.wg.Add(1)
			go func() {
				defer m.wg.Done()
				for {
					select {
					case <-ctx.Done():
						return
					case sample, ok := <-samples:
						if !ok {
							return
						}
						hs.loadBits.Store(math.Float64bits(sample))
					}
				}
			}()
		}
	}
}

// quarantine pulls a failed host out of the active pool and schedules its
// reinstatement after the configured delay.
func (m *Managed[C]) quarantine(host C) {
	m.mu.Lock()
	hs, known := m.states[host]
	if !known || hs.quarantined {
		m.mu.Unlock()

		return
	}
	hs.quarantined = true
	hs.attempts++
	attempts := hs.attempts
	m.dropFromOrder(host)
	m.mu.Unlock()

	delay := m.quarantineDelay(attempts)
	m.metrics.RecordQuarantine()
	m.logger.Info("host quarantined",
		"balancer", m.name,
		"host", host,
		"attempt", attempts,
		"delay", delay,
	)

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()

		timer := time.NewTimer(delay)
		defer timer.Stop()

		select {
		case <-m.ctx.Done():
			return
		case <-timer.C:
			m.reinstate(host)
		}
	}()
}

// reinstate returns a quarantined host to the active pool, unless it was
// removed while quarantined.
func (m *Managed[C]) reinstate(host C) {
	m.mu.Lock()
	defer m.mu.Unlock()

	hs, known := m.states[host]
	if !known || !hs.quarantined {
		return
	}
	hs.quarantined = false
	m.order = append(m.order, host)

	m.logger.Info("host reinstated", "balancer", m.name, "host", host)
}

// Choose selects one healthy host from the active pool.
//
// The weighting strategy computes weights from the hosts' latest load
// samples, the connected-host-count strategy caps the candidate set, and
// the selection strategy picks the winner.
//
// Parameters:
//   - ctx: Context (reserved for future selection strategies; current
//     strategies do not block)
//
// Returns:
//   - C: Selected host
//   - error: strategy.ErrNoHosts when the active pool is empty
func (m *Managed[C]) Choose(_ /* ctx */ context.Context) (C, error) {
	m.mu.RLock()
	loads := make([]types.HostLoad[C], len(m.order))
	for i, h := range m.order {
		loads[i] = types.HostLoad[C]{Host: h, Load: m.states[h].load()}
	}
	m.mu.RUnlock()

	hosts := make([]C, len(loads))
	for i, l := range loads {
		hosts[i] = l.Host
	}
	weights := m.weighting.Weigh(loads)

	if limit := m.hostCount(len(hosts)); limit >= 0 && limit < len(hosts) {
		hosts = hosts[:limit]
		weights = weights[:limit]
	}

	host, err := m.selection.Select(types.HostsAndWeights[C]{Hosts: hosts, Weights: weights})
	m.metrics.RecordSelection(err == nil)

	return host, err
}

// Hosts returns a snapshot of the active host pool.
func (m *Managed[C]) Hosts() []C {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]C, len(m.order))
	copy(out, m.order)

	return out
}

// Name returns the balancer's display name.
func (m *Managed[C]) Name() string {
	return m.name
}

// Close stops the run loop and all host watches. Safe to call multiple
// times.
//
// Returns:
//   - error: Always nil
func (m *Managed[C]) Close() error {
	m.closeOnce.Do(func() {
		m.cancel()
		m.wg.Wait()
	})

	return nil
}
