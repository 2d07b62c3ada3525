package ocelli

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pstout/ocelli/internal/logger"
	"github.com/pstout/ocelli/partitioner"
	"github.com/pstout/ocelli/source"
	"github.com/pstout/ocelli/types"
	"github.com/stretchr/testify/require"
)

// waitFor polls until cond is satisfied or the timeout elapses.
func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()

	deadline := time.After(timeout)
	ticker := time.NewTicker(5 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-deadline:
			t.Fatal("condition not satisfied within timeout")
		case <-ticker.C:
			if cond() {
				return
			}
		}
	}
}

// captureBalancer drains its partition feed and records delivered events.
type captureBalancer struct {
	key    string
	mu     sync.Mutex
	events []types.Event[string]
	done   chan struct{}
	once   sync.Once
}

func newCaptureBalancer(key string, stream types.EventStream[string]) *captureBalancer {
	c := &captureBalancer{key: key, done: make(chan struct{})}
	go func() {
		for {
			select {
			case <-c.done:
				return
			case <-stream.Done():
				return
			case ev := <-stream.Events():
				c.mu.Lock()
				c.events = append(c.events, ev)
				c.mu.Unlock()
			}
		}
	}()

	return c
}

func (c *captureBalancer) Choose(_ context.Context) (string, error) { return c.key, nil }
func (c *captureBalancer) Hosts() []string                          { return nil }

func (c *captureBalancer) Close() error {
	c.once.Do(func() { close(c.done) })

	return nil
}

func (c *captureBalancer) snapshot() []types.Event[string] {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]types.Event[string], len(c.events))
	copy(out, c.events)

	return out
}

// captureFactory builds captureBalancers and tracks creations per key.
type captureFactory struct {
	mu       sync.Mutex
	creates  map[string]int
	handles  map[string]*captureBalancer
	failKeys map[string]bool
}

func newCaptureFactory() *captureFactory {
	return &captureFactory{
		creates:  make(map[string]int),
		handles:  make(map[string]*captureBalancer),
		failKeys: make(map[string]bool),
	}
}

func (f *captureFactory) Create(key string, stream types.EventStream[string]) (types.ManagedBalancer[string], error) {
	f.mu.Lock()
	f.creates[key]++
	fail := f.failKeys[key]
	f.mu.Unlock()

	if fail {
		return nil, errors.New("factory refused key")
	}

	c := newCaptureBalancer(key, stream)

	f.mu.Lock()
	f.handles[key] = c
	f.mu.Unlock()

	return c, nil
}

func (f *captureFactory) handle(key string) *captureBalancer {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.handles[key]
}

func (f *captureFactory) created(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.creates[key]
}

func newTestBalancer(t *testing.T, src types.MembershipSource[string], part types.Partitioner[string, string], opts ...Option[string, string]) *PartitionedBalancer[string, string] {
	t.Helper()

	cfg := TestConfig()
	cfg.Name = "test"

	base := []Option[string, string]{WithLogger[string, string](logger.NewTest(t))}

	b, err := New(&cfg, src, part, types.NopMetricsConnector[string](), append(base, opts...)...)
	require.NoError(t, err)

	return b
}

func TestNew(t *testing.T) {
	cfg := TestConfig()
	src := source.NewStatic[string]()
	part := partitioner.Fixed[string]("p1")
	mc := types.NopMetricsConnector[string]()

	t.Run("rejects nil config", func(t *testing.T) {
		_, err := New[string, string](nil, src, part, mc)
		require.ErrorIs(t, err, ErrInvalidConfig)
	})

	t.Run("rejects nil source", func(t *testing.T) {
		_, err := New[string, string](&cfg, nil, part, mc)
		require.ErrorIs(t, err, ErrSourceRequired)
	})

	t.Run("rejects nil partitioner", func(t *testing.T) {
		_, err := New[string, string](&cfg, src, nil, mc)
		require.ErrorIs(t, err, ErrPartitionerRequired)
	})

	t.Run("rejects nil metrics connector", func(t *testing.T) {
		_, err := New[string, string](&cfg, src, part, nil)
		require.ErrorIs(t, err, ErrMetricsConnectorRequired)
	})

	t.Run("rejects invalid configuration", func(t *testing.T) {
		bad := TestConfig()
		bad.FeedBufferSize = -1

		_, err := New[string, string](&bad, src, part, mc)
		require.Error(t, err)
	})

	t.Run("applies defaults to a zero config", func(t *testing.T) {
		zero := Config{}

		b, err := New[string, string](&zero, src, part, mc)
		require.NoError(t, err)
		require.Equal(t, "<unnamed>", b.Name())
		require.Equal(t, StateCreated, b.State())
	})
}

func TestPartitionedBalancer_Lifecycle(t *testing.T) {
	t.Run("transitions through Created, Running and Stopped", func(t *testing.T) {
		b := newTestBalancer(t, source.NewStatic[string](), partitioner.Fixed[string]("p1"))
		require.Equal(t, StateCreated, b.State())

		require.NoError(t, b.Start())
		require.Equal(t, StateRunning, b.State())

		require.NoError(t, b.Stop(context.Background()))
		require.Equal(t, StateStopped, b.State())
	})

	t.Run("second Start returns ErrAlreadyStarted", func(t *testing.T) {
		b := newTestBalancer(t, source.NewStatic[string](), partitioner.Fixed[string]("p1"))

		require.NoError(t, b.Start())
		defer func() { require.NoError(t, b.Stop(context.Background())) }()

		require.ErrorIs(t, b.Start(), ErrAlreadyStarted)
	})

	t.Run("Stop before Start returns ErrNotStarted", func(t *testing.T) {
		b := newTestBalancer(t, source.NewStatic[string](), partitioner.Fixed[string]("p1"))

		require.ErrorIs(t, b.Stop(context.Background()), ErrNotStarted)
	})

	t.Run("Stopped is terminal", func(t *testing.T) {
		b := newTestBalancer(t, source.NewStatic[string](), partitioner.Fixed[string]("p1"))

		require.NoError(t, b.Start())
		require.NoError(t, b.Stop(context.Background()))

		require.ErrorIs(t, b.Start(), ErrStopped)
		require.ErrorIs(t, b.Stop(context.Background()), ErrNotStarted)
	})

	t.Run("subscription failure surfaces from Start", func(t *testing.T) {
		failing := &failingSource{err: errors.New("transport down")}
		b := newTestBalancer(t, failing, partitioner.Fixed[string]("p1"))

		err := b.Start()
		require.Error(t, err)
		require.Equal(t, StateCreated, b.State())
	})
}

// failingSource always fails Subscribe.
type failingSource struct {
	err error
}

func (s *failingSource) Subscribe(_ func(types.Event[string])) (types.Subscription, error) {
	return nil, s.err
}

func TestPartitionedBalancer_Get(t *testing.T) {
	t.Run("creates the partition lazily", func(t *testing.T) {
		factory := newCaptureFactory()
		b := newTestBalancer(t, source.NewStatic[string](), partitioner.Fixed[string]("p1"),
			WithFactory[string, string](factory),
		)

		require.Empty(t, b.ListKeys())

		h, err := b.Get("alpha")
		require.NoError(t, err)
		require.NotNil(t, h)
		require.Equal(t, 1, factory.created("alpha"))
		require.Equal(t, []string{"alpha"}, b.ListKeys())
	})

	t.Run("returns the identical handle for repeated gets", func(t *testing.T) {
		factory := newCaptureFactory()
		b := newTestBalancer(t, source.NewStatic[string](), partitioner.Fixed[string]("p1"),
			WithFactory[string, string](factory),
		)

		first, err := b.Get("alpha")
		require.NoError(t, err)
		second, err := b.Get("alpha")
		require.NoError(t, err)

		require.Same(t, first.(*captureBalancer), second.(*captureBalancer))
		require.Equal(t, 1, factory.created("alpha"))
	})

	t.Run("concurrent gets for one key observe one handle", func(t *testing.T) {
		factory := newCaptureFactory()
		b := newTestBalancer(t, source.NewStatic[string](), partitioner.Fixed[string]("p1"),
			WithFactory[string, string](factory),
		)

		const workers = 32
		handles := make([]types.ManagedBalancer[string], workers)
		errs := make([]error, workers)

		var wg sync.WaitGroup
		for i := range workers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				handles[i], errs[i] = b.Get("alpha")
			}()
		}
		wg.Wait()

		for _, err := range errs {
			require.NoError(t, err)
		}
		for i := 1; i < workers; i++ {
			require.Same(t, handles[0].(*captureBalancer), handles[i].(*captureBalancer))
		}
		require.Equal(t, []string{"alpha"}, b.ListKeys())
	})

	t.Run("factory failure surfaces and is not cached", func(t *testing.T) {
		factory := newCaptureFactory()
		factory.failKeys["bad"] = true
		b := newTestBalancer(t, source.NewStatic[string](), partitioner.Fixed[string]("p1"),
			WithFactory[string, string](factory),
		)

		_, err := b.Get("bad")
		require.Error(t, err)
		require.Empty(t, b.ListKeys())

		// A later attempt retries the factory
		factory.mu.Lock()
		factory.failKeys["bad"] = false
		factory.mu.Unlock()

		h, err := b.Get("bad")
		require.NoError(t, err)
		require.NotNil(t, h)
		require.Equal(t, 2, factory.created("bad"))
	})

	t.Run("default factory builds a working balancer", func(t *testing.T) {
		src := source.NewStatic("h1", "h2")
		b := newTestBalancer(t, src, partitioner.Fixed[string]("p1"))

		require.NoError(t, b.Start())
		defer func() { require.NoError(t, b.Stop(context.Background())) }()

		h, err := b.Get("p1")
		require.NoError(t, err)

		waitFor(t, 2*time.Second, func() bool { return len(h.Hosts()) == 2 })

		chosen, err := h.Choose(context.Background())
		require.NoError(t, err)
		require.Contains(t, []string{"h1", "h2"}, chosen)
	})
}

func TestPartitionedBalancer_Routing(t *testing.T) {
	t.Run("fans events out to every resolved partition", func(t *testing.T) {
		factory := newCaptureFactory()
		src := source.NewStatic[string]()
		// Every host belongs to both partitions
		b := newTestBalancer(t, src, partitioner.Fixed[string]("p1", "p2"),
			WithFactory[string, string](factory),
		)

		require.NoError(t, b.Start())
		defer func() { require.NoError(t, b.Stop(context.Background())) }()

		src.Add("h1")

		waitFor(t, 2*time.Second, func() bool {
			p1, p2 := factory.handle("p1"), factory.handle("p2")

			return p1 != nil && p2 != nil && len(p1.snapshot()) == 1 && len(p2.snapshot()) == 1
		})

		for _, key := range []string{"p1", "p2"} {
			got := factory.handle(key).snapshot()
			require.Equal(t, "h1", got[0].Host)
			require.Equal(t, HostAdded, got[0].Kind)
		}
	})

	t.Run("routes hosts only to their own partitions", func(t *testing.T) {
		factory := newCaptureFactory()
		src := source.NewStatic[string]()
		byPrefix := partitioner.Func[string, string](func(_ context.Context, host string) ([]string, error) {
			return []string{host[:1]}, nil
		})
		b := newTestBalancer(t, src, byPrefix, WithFactory[string, string](factory))

		require.NoError(t, b.Start())
		defer func() { require.NoError(t, b.Stop(context.Background())) }()

		src.Add("a1")
		src.Add("b1")
		src.Add("a2")

		waitFor(t, 2*time.Second, func() bool {
			pa, pb := factory.handle("a"), factory.handle("b")

			return pa != nil && pb != nil && len(pa.snapshot()) == 2 && len(pb.snapshot()) == 1
		})

		require.Equal(t, "b1", factory.handle("b").snapshot()[0].Host)
	})

	t.Run("delivers once per key when the resolver repeats keys", func(t *testing.T) {
		factory := newCaptureFactory()
		src := source.NewStatic[string]()
		b := newTestBalancer(t, src, partitioner.Fixed[string]("p1", "p1", "p1"),
			WithFactory[string, string](factory),
		)

		require.NoError(t, b.Start())
		defer func() { require.NoError(t, b.Stop(context.Background())) }()

		src.Add("h1")

		waitFor(t, 2*time.Second, func() bool {
			p := factory.handle("p1")

			return p != nil && len(p.snapshot()) == 1
		})

		// No second delivery shows up
		time.Sleep(50 * time.Millisecond)
		require.Len(t, factory.handle("p1").snapshot(), 1)
	})

	t.Run("zero resolved keys is a no-op", func(t *testing.T) {
		factory := newCaptureFactory()
		src := source.NewStatic[string]()
		b := newTestBalancer(t, src, partitioner.Fixed[string, string](),
			WithFactory[string, string](factory),
		)

		require.NoError(t, b.Start())
		src.Add("h1")

		time.Sleep(50 * time.Millisecond)
		require.NoError(t, b.Stop(context.Background()))
		require.Empty(t, b.ListKeys())
	})

	t.Run("resolve failure for one host does not stop routing for others", func(t *testing.T) {
		factory := newCaptureFactory()
		src := source.NewStatic[string]()
		flaky := partitioner.Func[string, string](func(_ context.Context, host string) ([]string, error) {
			if host == "poison" {
				return nil, errors.New("unresolvable")
			}

			return []string{"p1"}, nil
		})
		b := newTestBalancer(t, src, flaky, WithFactory[string, string](factory))

		require.NoError(t, b.Start())
		defer func() { require.NoError(t, b.Stop(context.Background())) }()

		src.Add("poison")
		src.Add("h1")
		src.Add("h2")

		waitFor(t, 2*time.Second, func() bool {
			p := factory.handle("p1")

			return p != nil && len(p.snapshot()) == 2
		})
	})

	t.Run("panicking resolver is contained", func(t *testing.T) {
		factory := newCaptureFactory()
		src := source.NewStatic[string]()
		panicky := partitioner.Func[string, string](func(_ context.Context, host string) ([]string, error) {
			if host == "boom" {
				panic("resolver bug")
			}

			return []string{"p1"}, nil
		})
		b := newTestBalancer(t, src, panicky, WithFactory[string, string](factory))

		require.NoError(t, b.Start())
		defer func() { require.NoError(t, b.Stop(context.Background())) }()

		src.Add("boom")
		src.Add("h1")

		waitFor(t, 2*time.Second, func() bool {
			p := factory.handle("p1")

			return p != nil && len(p.snapshot()) == 1
		})
		require.Equal(t, "h1", factory.handle("p1").snapshot()[0].Host)
	})

	t.Run("factory failure for one key does not stop delivery to others", func(t *testing.T) {
		factory := newCaptureFactory()
		factory.failKeys["bad"] = true
		src := source.NewStatic[string]()
		b := newTestBalancer(t, src, partitioner.Fixed[string]("bad", "good"),
			WithFactory[string, string](factory),
		)

		require.NoError(t, b.Start())
		defer func() { require.NoError(t, b.Stop(context.Background())) }()

		src.Add("h1")

		waitFor(t, 2*time.Second, func() bool {
			p := factory.handle("good")

			return p != nil && len(p.snapshot()) == 1
		})
		require.Equal(t, []string{"good"}, b.ListKeys())
	})

	t.Run("removal events reach the affected partition", func(t *testing.T) {
		factory := newCaptureFactory()
		src := source.NewStatic("h1")
		b := newTestBalancer(t, src, partitioner.Fixed[string]("p1"),
			WithFactory[string, string](factory),
		)

		require.NoError(t, b.Start())
		defer func() { require.NoError(t, b.Stop(context.Background())) }()

		waitFor(t, 2*time.Second, func() bool {
			p := factory.handle("p1")

			return p != nil && len(p.snapshot()) == 1
		})

		src.Remove("h1")

		waitFor(t, 2*time.Second, func() bool { return len(factory.handle("p1").snapshot()) == 2 })

		got := factory.handle("p1").snapshot()
		require.Equal(t, HostRemoved, got[1].Kind)
	})

	t.Run("dispatches racing Stop are drained before it returns", func(t *testing.T) {
		factory := newCaptureFactory()
		src := source.NewStatic[string]()
		slow := partitioner.Func[string, string](func(ctx context.Context, _ string) ([]string, error) {
			select {
			case <-time.After(5 * time.Millisecond):
			case <-ctx.Done():
				return nil, ctx.Err()
			}

			return []string{"p1"}, nil
		})
		b := newTestBalancer(t, src, slow, WithFactory[string, string](factory))

		require.NoError(t, b.Start())

		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 50 {
				src.Add(fmt.Sprintf("h%d", i))
			}
		}()

		time.Sleep(2 * time.Millisecond)
		require.NoError(t, b.Stop(context.Background()))
		wg.Wait()

		// Every publish has either completed or been refused by the time
		// Stop returns, so the delivered count settles once the capture
		// drain catches up with the feed buffer.
		time.Sleep(50 * time.Millisecond)
		settled := 0
		if p := factory.handle("p1"); p != nil {
			settled = len(p.snapshot())
		}

		time.Sleep(50 * time.Millisecond)
		after := 0
		if p := factory.handle("p1"); p != nil {
			after = len(p.snapshot())
		}
		require.Equal(t, settled, after)
	})

	t.Run("no delivery after Stop", func(t *testing.T) {
		factory := newCaptureFactory()
		src := source.NewStatic[string]()
		b := newTestBalancer(t, src, partitioner.Fixed[string]("p1"),
			WithFactory[string, string](factory),
		)

		require.NoError(t, b.Start())
		src.Add("h1")
		waitFor(t, 2*time.Second, func() bool {
			p := factory.handle("p1")

			return p != nil && len(p.snapshot()) == 1
		})

		require.NoError(t, b.Stop(context.Background()))

		src.Add("h2")
		time.Sleep(50 * time.Millisecond)
		require.Len(t, factory.handle("p1").snapshot(), 1)
	})
}

func TestPartitionedBalancer_ListKeys(t *testing.T) {
	t.Run("snapshot contains all keys created before the call", func(t *testing.T) {
		factory := newCaptureFactory()
		b := newTestBalancer(t, source.NewStatic[string](), partitioner.Fixed[string]("p1"),
			WithFactory[string, string](factory),
		)

		for i := range 10 {
			_, err := b.Get(fmt.Sprintf("key-%d", i))
			require.NoError(t, err)
		}

		keys := b.ListKeys()
		require.Len(t, keys, 10)
		require.ElementsMatch(t, []string{
			"key-0", "key-1", "key-2", "key-3", "key-4",
			"key-5", "key-6", "key-7", "key-8", "key-9",
		}, keys)
	})

	t.Run("is safe against concurrent creation", func(t *testing.T) {
		factory := newCaptureFactory()
		b := newTestBalancer(t, source.NewStatic[string](), partitioner.Fixed[string]("p1"),
			WithFactory[string, string](factory),
		)

		var stop atomic.Bool
		var creatorErr error
		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; !stop.Load(); i++ {
				if _, err := b.Get(fmt.Sprintf("key-%d", i)); err != nil {
					creatorErr = err

					return
				}
			}
		}()

		for range 100 {
			_ = b.ListKeys()
		}

		stop.Store(true)
		wg.Wait()
		require.NoError(t, creatorErr)
	})
}
