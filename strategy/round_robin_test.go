package strategy

import (
	"sync"
	"testing"

	"github.com/pstout/ocelli/types"
	"github.com/stretchr/testify/require"
)

func TestRoundRobin_Select(t *testing.T) {
	t.Run("cycles through hosts in order", func(t *testing.T) {
		rr := NewRoundRobin[string]()
		hw := types.HostsAndWeights[string]{
			Hosts:   []string{"a", "b", "c"},
			Weights: []int64{100, 100, 100},
		}

		got := make([]string, 6)
		for i := range got {
			host, err := rr.Select(hw)
			require.NoError(t, err)
			got[i] = host
		}

		require.Equal(t, []string{"a", "b", "c", "a", "b", "c"}, got)
	})

	t.Run("skips zero-weight hosts", func(t *testing.T) {
		rr := NewRoundRobin[string]()
		hw := types.HostsAndWeights[string]{
			Hosts:   []string{"a", "b", "c"},
			Weights: []int64{100, 0, 100},
		}

		seen := make(map[string]int)
		for range 10 {
			host, err := rr.Select(hw)
			require.NoError(t, err)
			seen[host]++
		}

		require.Zero(t, seen["b"])
		require.Positive(t, seen["a"])
		require.Positive(t, seen["c"])
	})

	t.Run("returns ErrNoHosts for empty candidate set", func(t *testing.T) {
		rr := NewRoundRobin[string]()

		_, err := rr.Select(types.HostsAndWeights[string]{})
		require.ErrorIs(t, err, ErrNoHosts)
	})

	t.Run("returns ErrNoHosts when all weights are zero", func(t *testing.T) {
		rr := NewRoundRobin[string]()
		hw := types.HostsAndWeights[string]{
			Hosts:   []string{"a", "b"},
			Weights: []int64{0, 0},
		}

		_, err := rr.Select(hw)
		require.ErrorIs(t, err, ErrNoHosts)
	})

	t.Run("selects without weights", func(t *testing.T) {
		rr := NewRoundRobin[string]()
		hw := types.HostsAndWeights[string]{Hosts: []string{"a", "b"}}

		host, err := rr.Select(hw)
		require.NoError(t, err)
		require.Contains(t, []string{"a", "b"}, host)
	})

	t.Run("is safe for concurrent use", func(t *testing.T) {
		rr := NewRoundRobin[int]()
		hw := types.HostsAndWeights[int]{
			Hosts:   []int{1, 2, 3, 4},
			Weights: []int64{1, 1, 1, 1},
		}

		const workers = 8
		errs := make([]error, workers)

		var wg sync.WaitGroup
		for i := range workers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for range 100 {
					if _, err := rr.Select(hw); err != nil {
						errs[i] = err

						return
					}
				}
			}()
		}
		wg.Wait()

		for _, err := range errs {
			require.NoError(t, err)
		}
	})
}
