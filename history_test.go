package raffle

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func drawResult(actor, prize string, prob float64) *DrawResult {
	return &DrawResult{
		Prize:             Prize{Name: prize},
		Actor:             actor,
		ProbabilityAtDraw: prob,
		DrawnAt:           time.Now(),
	}
}

func TestHistoryLedgerAppend(t *testing.T) {
	t.Run("brackets each batch with separators, newest draw first", func(t *testing.T) {
		ledger := NewHistoryLedger()
		ledger.Append([]*DrawResult{
			drawResult("alice", "first", 50),
			drawResult("alice", "second", 50),
		})

		entries := ledger.Entries()
		require.Len(t, entries, 4)
		assert.True(t, entries[0].Separator)
		assert.Equal(t, "second", entries[1].PrizeName)
		assert.Equal(t, "first", entries[2].PrizeName)
		assert.True(t, entries[3].Separator)
	})

	t.Run("new batches land at the top", func(t *testing.T) {
		ledger := NewHistoryLedger()
		ledger.Append([]*DrawResult{drawResult("alice", "old", 50)})
		ledger.Append([]*DrawResult{drawResult("bob", "new", 50)})

		entries := ledger.Entries()
		require.Len(t, entries, 6)
		assert.Equal(t, "new", entries[1].PrizeName)
		assert.Equal(t, "old", entries[4].PrizeName)
	})

	t.Run("empty batch is ignored", func(t *testing.T) {
		ledger := NewHistoryLedger()
		ledger.Append(nil)
		assert.Equal(t, 0, ledger.Len())
	})

	t.Run("cap counts separators and drops the oldest entries", func(t *testing.T) {
		ledger := NewHistoryLedgerWithCap(5)
		ledger.Append([]*DrawResult{
			drawResult("alice", "a", 25),
			drawResult("alice", "b", 25),
			drawResult("alice", "c", 25),
			drawResult("alice", "d", 25),
		})

		// A batch of four plus two separators exceeds the cap of five.
		assert.Equal(t, 5, ledger.Len())
		entries := ledger.Entries()
		assert.True(t, entries[0].Separator)
		assert.Equal(t, "d", entries[1].PrizeName)
		// The trailing separator fell off.
		assert.Equal(t, "a", entries[4].PrizeName)
	})

	t.Run("cap below one falls back to the default", func(t *testing.T) {
		ledger := NewHistoryLedgerWithCap(0)
		assert.Equal(t, DefaultHistoryCap, ledger.Cap())
	})
}

func TestHistoryLedgerQuery(t *testing.T) {
	newLedger := func() *HistoryLedger {
		l := NewHistoryLedger()
		l.Append([]*DrawResult{
			drawResult("Alice", "Grand Prize", 5),
			drawResult("bob", "Sticker", 70),
		})
		return l
	}

	collect := func(l *HistoryLedger, filter string) []HistoryEntry {
		var out []HistoryEntry
		for e := range l.Query(filter) {
			out = append(out, e)
		}
		return out
	}

	t.Run("empty filter yields everything including separators", func(t *testing.T) {
		got := collect(newLedger(), "")
		assert.Len(t, got, 4)
	})

	t.Run("filter matches actor case-insensitively and skips separators", func(t *testing.T) {
		got := collect(newLedger(), "ALICE")
		require.Len(t, got, 1)
		assert.Equal(t, "Alice", got[0].Actor)
	})

	t.Run("filter matches the display label", func(t *testing.T) {
		got := collect(newLedger(), "grand")
		require.Len(t, got, 1)
		assert.Equal(t, "Grand Prize", got[0].PrizeName)
	})

	t.Run("sequence is restartable", func(t *testing.T) {
		ledger := newLedger()
		seq := ledger.Query("")

		first := 0
		for range seq {
			first++
		}
		second := 0
		for range seq {
			second++
		}
		assert.Equal(t, first, second)
	})

	t.Run("early break stops iteration", func(t *testing.T) {
		ledger := newLedger()
		n := 0
		for range ledger.Query("") {
			n++
			break
		}
		assert.Equal(t, 1, n)
	})

	t.Run("snapshot is unaffected by later appends", func(t *testing.T) {
		ledger := newLedger()
		seq := ledger.Query("")
		ledger.Append([]*DrawResult{drawResult("carol", "Gift Card", 25)})

		n := 0
		for range seq {
			n++
		}
		assert.Equal(t, 4, n)
	})
}

func TestHistoryLedgerReplaceAndClear(t *testing.T) {
	ledger := NewHistoryLedgerWithCap(3)
	ledger.Replace([]HistoryEntry{
		{Separator: true},
		{PrizeName: "a", Actor: "alice"},
		{PrizeName: "b", Actor: "bob"},
		{Separator: true},
	})
	assert.Equal(t, 3, ledger.Len())

	ledger.Clear()
	assert.Equal(t, 0, ledger.Len())
}

func TestHistoryLedgerSizeBytes(t *testing.T) {
	ledger := NewHistoryLedger()
	empty := ledger.SizeBytes()
	// Key plus the serialized empty array, two bytes per code unit.
	assert.Equal(t, (len(HistoryKey)+len("null"))*2, empty)

	ledger.Append([]*DrawResult{drawResult("alice", "Grand Prize 🏆", 5)})
	assert.Greater(t, ledger.SizeBytes(), empty)
}

func TestHistoryEntryDisplayLabel(t *testing.T) {
	e := HistoryEntry{PrizeName: "Sticker"}
	assert.Equal(t, "Sticker", e.DisplayLabel())

	e.DisplayText = "Shiny Sticker"
	assert.Equal(t, "Shiny Sticker", e.DisplayLabel())

	e.DisplayText = "   "
	assert.Equal(t, "Sticker", e.DisplayLabel())
}
