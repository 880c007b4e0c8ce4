package raffle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedistribute(t *testing.T) {
	t.Run("depleted mass is split equally among active prizes", func(t *testing.T) {
		pool := NewPrizePool(
			Prize{Name: "A", Probability: 50, Quantity: 0},
			Prize{Name: "B", Probability: 30, Quantity: 5},
			Prize{Name: "C", Probability: 20, Quantity: 5},
		)

		Redistribute(pool)

		prizes := pool.All()
		assert.Equal(t, 0.0, prizes[0].Probability)
		assert.InDelta(t, 55.0, prizes[1].Probability, 1e-9)
		assert.InDelta(t, 45.0, prizes[2].Probability, 1e-9)
	})

	t.Run("lone survivor absorbs the full mass", func(t *testing.T) {
		pool := NewPrizePool(
			Prize{Name: "A", Probability: 50, Quantity: 2},
			Prize{Name: "B", Probability: 50, Quantity: 0},
		)

		Redistribute(pool)

		prizes := pool.All()
		assert.Equal(t, 100.0, prizes[0].Probability)
		assert.Equal(t, 0.0, prizes[1].Probability)
	})

	t.Run("no-op when nothing is depleted", func(t *testing.T) {
		pool := NewPrizePool(
			Prize{Name: "A", Probability: 60, Quantity: 1},
			Prize{Name: "B", Probability: 40, Quantity: 3},
		)

		Redistribute(pool)

		prizes := pool.All()
		assert.Equal(t, 60.0, prizes[0].Probability)
		assert.Equal(t, 40.0, prizes[1].Probability)
	})

	t.Run("pool left untouched when nothing is active", func(t *testing.T) {
		pool := NewPrizePool(
			Prize{Name: "A", Probability: 70, Quantity: 0},
			Prize{Name: "B", Probability: 30, Quantity: 0},
		)

		Redistribute(pool)

		prizes := pool.All()
		assert.Equal(t, 70.0, prizes[0].Probability)
		assert.Equal(t, 30.0, prizes[1].Probability)
	})

	t.Run("active probability mass is conserved", func(t *testing.T) {
		pools := [][]Prize{
			{
				{Name: "A", Probability: 12.5, Quantity: 0},
				{Name: "B", Probability: 37.5, Quantity: 2},
				{Name: "C", Probability: 25, Quantity: 0},
				{Name: "D", Probability: 25, Quantity: 9},
			},
			{
				{Name: "A", Probability: 33.33, Quantity: 1},
				{Name: "B", Probability: 33.33, Quantity: 0},
				{Name: "C", Probability: 33.34, Quantity: 4},
			},
			{
				{Name: "only", Probability: 100, Quantity: 1},
			},
		}

		for _, prizes := range pools {
			pool := NewPrizePool(prizes...)
			var before float64
			for _, p := range pool.All() {
				before += p.Probability
			}

			Redistribute(pool)

			var after float64
			for _, p := range pool.All() {
				after += p.Probability
			}
			assert.InDelta(t, before, after, 1e-9)
		}
	})

	t.Run("nil pool is ignored", func(t *testing.T) {
		assert.NotPanics(t, func() { Redistribute(nil) })
	})
}

func TestNormalizeTo100(t *testing.T) {
	t.Run("rescales active prizes to exactly 100", func(t *testing.T) {
		pool := NewPrizePool(
			Prize{Name: "A", Probability: 20, Quantity: 1},
			Prize{Name: "B", Probability: 20, Quantity: 1},
			Prize{Name: "C", Probability: 20, Quantity: 1},
		)

		NormalizeTo100(pool)

		var total float64
		for _, p := range pool.All() {
			total += p.Probability
		}
		assert.Equal(t, 100.0, total)
	})

	t.Run("rounding residual goes to the first active prize", func(t *testing.T) {
		pool := NewPrizePool(
			Prize{Name: "A", Probability: 1, Quantity: 1},
			Prize{Name: "B", Probability: 1, Quantity: 1},
			Prize{Name: "C", Probability: 1, Quantity: 1},
		)

		NormalizeTo100(pool)

		prizes := pool.All()
		assert.Equal(t, 33.34, prizes[0].Probability)
		assert.Equal(t, 33.33, prizes[1].Probability)
		assert.Equal(t, 33.33, prizes[2].Probability)
	})

	t.Run("inactive prizes are zeroed", func(t *testing.T) {
		pool := NewPrizePool(
			Prize{Name: "A", Probability: 40, Quantity: 1},
			Prize{Name: "B", Probability: 40, Quantity: 0},
		)

		NormalizeTo100(pool)

		prizes := pool.All()
		assert.Equal(t, 100.0, prizes[0].Probability)
		assert.Equal(t, 0.0, prizes[1].Probability)
	})

	t.Run("three-way near-equal split sums to exactly 100", func(t *testing.T) {
		pool := NewPrizePool(
			Prize{Name: "A", Probability: 33.333, Quantity: 1},
			Prize{Name: "B", Probability: 33.333, Quantity: 1},
			Prize{Name: "C", Probability: 33.334, Quantity: 1},
		)

		NormalizeTo100(pool)

		var total float64
		for _, p := range pool.All() {
			total += p.Probability
		}
		assert.Equal(t, 100.0, total)
	})

	t.Run("idempotent", func(t *testing.T) {
		pool := NewPrizePool(
			Prize{Name: "A", Probability: 7, Quantity: 3},
			Prize{Name: "B", Probability: 11, Quantity: 2},
			Prize{Name: "C", Probability: 5, Quantity: 1},
		)

		NormalizeTo100(pool)
		first := pool.All()
		NormalizeTo100(pool)
		second := pool.All()

		require.Len(t, second, len(first))
		for i := range first {
			assert.Equal(t, first[i].Probability, second[i].Probability)
		}
	})

	t.Run("zero active total is left unchanged", func(t *testing.T) {
		pool := NewPrizePool(
			Prize{Name: "A", Probability: 0, Quantity: 2},
			Prize{Name: "B", Probability: 50, Quantity: 0},
		)

		NormalizeTo100(pool)

		prizes := pool.All()
		assert.Equal(t, 0.0, prizes[0].Probability)
		assert.Equal(t, 50.0, prizes[1].Probability)
	})
}
