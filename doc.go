// Package ocelli provides a partitioned load balancer: a dynamically
// growing set of independent sub-balancers, one per partition key, fed by
// a single stream of host membership changes.
//
// A caller shards a population of backend hosts (by region, shard id, or
// any derived attribute) into independently managed pools without
// pre-declaring the set of partitions. Partitions are created lazily,
// exactly once per key, the first time an event or a Get call needs them.
//
// # Quick Start
//
//	cfg := ocelli.DefaultConfig()
//	cfg.Name = "redis"
//
//	src := source.NewStatic(hosts...)
//	byRegion := partitioner.Func[Host, string](func(_ context.Context, h Host) ([]string, error) {
//	    return []string{h.Region}, nil
//	})
//
//	lb, err := ocelli.New[Host, string](&cfg, src, byRegion, types.NopMetricsConnector[Host]())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := lb.Start(); err != nil {
//	    log.Fatal(err)
//	}
//	defer lb.Stop(context.Background())
//
//	east, _ := lb.Get("us-east")
//	host, err := east.Choose(ctx)
//
// # Architecture
//
// Three cooperating pieces form the core:
//
//   - Partition registry: a concurrent key-to-partition map with atomic
//     insert-if-absent creation. Concurrent first-time callers may each
//     construct a candidate, but only one is retained; losers are closed
//     and discarded.
//   - Event router: consumes the membership source, resolves each event's
//     host to its partition keys, and delivers a copy of the event into
//     each resolved partition's private feed. Resolution runs per event
//     on its own goroutine; failures are contained per event and never
//     stop routing for other partitions.
//   - Lifecycle controller: Start subscribes the router to the source,
//     Stop cancels only that subscription. Partitions created while
//     running persist and their balancers keep working; they just stop
//     receiving membership updates.
//
// See the source, strategy, partitioner and balancer packages for the
// pluggable collaborators.
package ocelli
