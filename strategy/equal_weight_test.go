package strategy

import (
	"testing"

	"github.com/pstout/ocelli/types"
	"github.com/stretchr/testify/require"
)

func TestEqualWeight_Weigh(t *testing.T) {
	t.Run("assigns DefaultWeight regardless of load", func(t *testing.T) {
		ew := NewEqualWeight[string]()
		hosts := []types.HostLoad[string]{
			{Host: "a", Load: 0},
			{Host: "b", Load: 12.5},
			{Host: "c", Load: 9000},
		}

		weights := ew.Weigh(hosts)

		require.Equal(t, []int64{DefaultWeight, DefaultWeight, DefaultWeight}, weights)
	})

	t.Run("returns empty weights for empty input", func(t *testing.T) {
		ew := NewEqualWeight[string]()

		require.Empty(t, ew.Weigh(nil))
	})
}
