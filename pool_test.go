package raffle

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrizePoolAdd(t *testing.T) {
	pool := NewPrizePool()

	stored := pool.Add(Prize{Name: "A", Probability: 100, Quantity: 1})
	assert.NotEmpty(t, stored.ID)
	assert.Equal(t, DisplayName, stored.DisplayMode)

	withID := pool.Add(Prize{ID: "fixed", Name: "B", Probability: 0, Quantity: 1})
	assert.Equal(t, "fixed", withID.ID)

	assert.Equal(t, 2, pool.Len())
}

func TestPrizePoolGet(t *testing.T) {
	pool := NewPrizePool(Prize{Name: "A", Probability: 100, Quantity: 1})
	id := pool.All()[0].ID

	got, ok := pool.Get(id)
	require.True(t, ok)
	assert.Equal(t, "A", got.Name)

	_, ok = pool.Get("missing")
	assert.False(t, ok)
}

func TestPrizePoolRemoveWhere(t *testing.T) {
	pool := NewPrizePool(
		Prize{Name: "A", Probability: 40, Quantity: 1},
		Prize{Name: "B", Probability: 30, Quantity: 1},
		Prize{Name: "C", Probability: 30, Quantity: 1},
	)

	removed := pool.RemoveWhere(func(p Prize) bool { return p.Name == "B" })
	assert.Equal(t, 1, removed)

	names := make([]string, 0, pool.Len())
	for _, p := range pool.All() {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"A", "C"}, names)

	assert.Equal(t, 0, pool.RemoveWhere(func(Prize) bool { return false }))
}

func TestPrizePoolUpdateFields(t *testing.T) {
	t.Run("applies only the set fields", func(t *testing.T) {
		pool := NewPrizePool(Prize{Name: "A", Probability: 50, Quantity: 2})
		id := pool.All()[0].ID

		prob := 75.0
		require.NoError(t, pool.UpdateFields(id, PrizeUpdate{Probability: &prob}))

		got, _ := pool.Get(id)
		assert.Equal(t, "A", got.Name)
		assert.Equal(t, 75.0, got.Probability)
		assert.Equal(t, 2, got.Quantity)
	})

	t.Run("invalid update does not commit", func(t *testing.T) {
		pool := NewPrizePool(Prize{Name: "A", Probability: 50, Quantity: 2})
		id := pool.All()[0].ID

		bad := -5.0
		err := pool.UpdateFields(id, PrizeUpdate{Probability: &bad})
		assert.ErrorIs(t, err, ErrInvalidProbability)

		got, _ := pool.Get(id)
		assert.Equal(t, 50.0, got.Probability)
	})

	t.Run("unknown ID", func(t *testing.T) {
		pool := NewPrizePool()
		err := pool.UpdateFields("missing", PrizeUpdate{})
		assert.ErrorIs(t, err, ErrPrizeNotFound)
	})
}

func TestPrizePoolReplace(t *testing.T) {
	pool := NewPrizePool(Prize{Name: "old", Probability: 100, Quantity: 1})
	pool.Replace([]Prize{
		{Name: "new1", Probability: 60, Quantity: 1},
		{Name: "new2", Probability: 40, Quantity: 1},
	})

	prizes := pool.All()
	require.Len(t, prizes, 2)
	assert.Equal(t, "new1", prizes[0].Name)
	assert.NotEmpty(t, prizes[0].ID)
}

func TestPrizePoolAggregates(t *testing.T) {
	pool := NewPrizePool(
		Prize{Name: "A", Probability: 50, Quantity: 1},
		Prize{Name: "B", Probability: 30, Quantity: 0},
		Prize{Name: "C", Probability: 20, Quantity: 3},
	)

	assert.Equal(t, 2, pool.ActiveCount())
	assert.InDelta(t, 70.0, pool.TotalActiveProbability(), 1e-9)
}

func TestPrizeValidate(t *testing.T) {
	tests := []struct {
		name  string
		prize Prize
		want  error
	}{
		{"valid", Prize{Name: "A", Probability: 50, Quantity: 1}, nil},
		{"empty name", Prize{Probability: 50, Quantity: 1}, ErrInvalidPrizeName},
		{"negative probability", Prize{Name: "A", Probability: -1, Quantity: 1}, ErrInvalidProbability},
		{"probability above 100", Prize{Name: "A", Probability: 100.5, Quantity: 1}, ErrInvalidProbability},
		{"negative quantity", Prize{Name: "A", Probability: 50, Quantity: -1}, ErrNegativeQuantity},
		{"zero quantity is allowed", Prize{Name: "A", Probability: 50, Quantity: 0}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.prize.Validate()
			if tt.want == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.want)
			}
		})
	}
}

func TestValidatePrizePool(t *testing.T) {
	t.Run("accepts active sum of 100 within tolerance", func(t *testing.T) {
		prizes := []Prize{
			{Name: "A", Probability: 33.33, Quantity: 1},
			{Name: "B", Probability: 33.33, Quantity: 1},
			{Name: "C", Probability: 33.34, Quantity: 1},
		}
		assert.NoError(t, ValidatePrizePool(prizes))
	})

	t.Run("ignores depleted prizes in the sum", func(t *testing.T) {
		prizes := []Prize{
			{Name: "A", Probability: 100, Quantity: 1},
			{Name: "B", Probability: 55, Quantity: 0},
		}
		assert.NoError(t, ValidatePrizePool(prizes))
	})

	t.Run("rejects mismatched sum", func(t *testing.T) {
		prizes := []Prize{
			{Name: "A", Probability: 60, Quantity: 1},
			{Name: "B", Probability: 30, Quantity: 1},
		}
		assert.ErrorIs(t, ValidatePrizePool(prizes), ErrProbabilityMismatch)
	})

	t.Run("rejects empty pool", func(t *testing.T) {
		assert.ErrorIs(t, ValidatePrizePool(nil), ErrEmptyPrizePool)
	})

	t.Run("rejects malformed prize before checking the sum", func(t *testing.T) {
		prizes := []Prize{{Name: "", Probability: 100, Quantity: 1}}
		assert.ErrorIs(t, ValidatePrizePool(prizes), ErrInvalidPrizeName)
	})
}

func TestPrizeDisplayLabel(t *testing.T) {
	p := Prize{Name: "Sticker"}
	assert.Equal(t, "Sticker", p.DisplayLabel())

	p.DisplayText = "✨ Sticker"
	assert.Equal(t, "✨ Sticker", p.DisplayLabel())
}

func TestNewPrizeID(t *testing.T) {
	a, b := NewPrizeID(), NewPrizeID()
	assert.NotEqual(t, a, b)
	assert.False(t, strings.ContainsAny(a, " \t"))
}
