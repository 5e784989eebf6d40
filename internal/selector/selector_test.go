package selector_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/edgard/complimentbot/internal/gateway"
	"github.com/edgard/complimentbot/internal/selector"
)

func TestPickCompliment(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		pool []string
	}{
		{name: "single entry", pool: []string{"You are great"}},
		{name: "several entries", pool: []string{"a", "b", "c", "d"}},
		{name: "duplicate entries", pool: []string{"same", "same", "other"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			for range 100 {
				got, err := selector.PickCompliment(tc.pool)
				require.NoError(t, err)
				require.Contains(t, tc.pool, got)
			}
		})
	}
}

func TestPickCompliment_EmptyPool(t *testing.T) {
	t.Parallel()

	_, err := selector.PickCompliment(nil)
	require.ErrorIs(t, err, selector.ErrEmptyPool)

	_, err = selector.PickCompliment([]string{})
	require.ErrorIs(t, err, selector.ErrEmptyPool)
}

func TestPickMember_EmptyPool(t *testing.T) {
	t.Parallel()

	_, err := selector.PickMember([]gateway.Member{})
	require.ErrorIs(t, err, selector.ErrEmptyPool)
}

func TestPickMember_UsesSource(t *testing.T) {
	t.Parallel()

	members := []gateway.Member{{ID: "1"}, {ID: "2"}, {ID: "3"}}
	s := selector.NewWithSource(func(n int) int { return n - 1 })

	got, err := s.PickMember(members)
	require.NoError(t, err)
	require.Equal(t, "3", got.ID)
}

func TestPickCompliment_RoughlyUniform(t *testing.T) {
	t.Parallel()

	pool := []string{"a", "b", "c", "d", "e"}
	const trials = 50000
	counts := make(map[string]int, len(pool))

	for range trials {
		got, err := selector.PickCompliment(pool)
		require.NoError(t, err)
		counts[got]++
	}

	expected := trials / len(pool)
	for _, entry := range pool {
		// 10% tolerance is far outside the expected deviation for 50k trials.
		require.InDelta(t, expected, counts[entry], float64(expected)/10, "entry %q", entry)
	}
}
