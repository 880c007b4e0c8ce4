package raffle

import (
	"encoding/json"
	"iter"
	"slices"
	"strings"
	"time"
)

// HistoryEntry is one row of the draw ledger. Separator entries bracket each
// batch so a rendered list can delimit multi-draw groups; they carry no other
// data.
type HistoryEntry struct {
	Separator   bool      `json:"separator,omitempty"`
	PrizeName   string    `json:"prize_name,omitempty"`
	DisplayText string    `json:"display_text,omitempty"`
	Actor       string    `json:"actor,omitempty"`
	Probability float64   `json:"probability,omitempty"`
	Style       Style     `json:"style,omitempty"`
	DrawnAt     time.Time `json:"drawn_at,omitempty"`
}

// DisplayLabel returns the user-facing prize label of the entry.
func (h *HistoryEntry) DisplayLabel() string {
	if strings.TrimSpace(h.DisplayText) != "" {
		return h.DisplayText
	}
	return h.PrizeName
}

// HistoryLedger is the append-only, size-capped log of past draws, stored
// newest-first. Entries are only ever created by draws and removed by the cap
// or an explicit clear.
type HistoryLedger struct {
	entries []HistoryEntry
	cap     int
}

// NewHistoryLedger creates a ledger with the default cap.
func NewHistoryLedger() *HistoryLedger {
	return NewHistoryLedgerWithCap(DefaultHistoryCap)
}

// NewHistoryLedgerWithCap creates a ledger with a custom cap. A cap below 1
// falls back to the default.
func NewHistoryLedgerWithCap(cap int) *HistoryLedger {
	if cap < 1 {
		cap = DefaultHistoryCap
	}
	return &HistoryLedger{cap: cap}
}

// Append prepends one batch of results bracketed by separator sentinels, most
// recent draw first, then truncates the ledger to its cap. The cap counts
// every stored element, sentinels included, so it bounds total list length
// rather than the number of draws.
func (l *HistoryLedger) Append(batch []*DrawResult) {
	if len(batch) == 0 {
		return
	}

	block := make([]HistoryEntry, 0, len(batch)+2)
	block = append(block, HistoryEntry{Separator: true})
	for i := len(batch) - 1; i >= 0; i-- {
		r := batch[i]
		block = append(block, HistoryEntry{
			PrizeName:   r.Prize.Name,
			DisplayText: r.Prize.DisplayText,
			Actor:       r.Actor,
			Probability: r.ProbabilityAtDraw,
			Style:       r.Prize.Style,
			DrawnAt:     r.DrawnAt,
		})
	}
	block = append(block, HistoryEntry{Separator: true})

	l.entries = append(block, l.entries...)
	if len(l.entries) > l.cap {
		l.entries = l.entries[:l.cap]
	}
}

// Query returns a finite, restartable sequence over the ledger. An empty
// filter yields every entry including separators; a non-empty filter skips
// separators and matches the actor or display label case-insensitively.
// The sequence iterates a snapshot, so it is unaffected by later appends.
func (l *HistoryLedger) Query(filter string) iter.Seq[HistoryEntry] {
	snapshot := slices.Clone(l.entries)
	q := strings.ToLower(strings.TrimSpace(filter))
	return func(yield func(HistoryEntry) bool) {
		for _, e := range snapshot {
			if q != "" {
				if e.Separator {
					continue
				}
				if !strings.Contains(strings.ToLower(e.Actor), q) &&
					!strings.Contains(strings.ToLower(e.DisplayLabel()), q) {
					continue
				}
			}
			if !yield(e) {
				return
			}
		}
	}
}

// Entries returns a snapshot copy of the ledger, newest first.
func (l *HistoryLedger) Entries() []HistoryEntry {
	return slices.Clone(l.entries)
}

// Replace swaps the ledger contents, truncating to the cap. Used by the load
// path.
func (l *HistoryLedger) Replace(entries []HistoryEntry) {
	l.entries = slices.Clone(entries)
	if len(l.entries) > l.cap {
		l.entries = l.entries[:l.cap]
	}
}

// Clear empties the ledger.
func (l *HistoryLedger) Clear() {
	l.entries = nil
}

// Len returns the number of stored elements, sentinels included.
func (l *HistoryLedger) Len() int { return len(l.entries) }

// Cap returns the ledger's maximum length.
func (l *HistoryLedger) Cap() int { return l.cap }

// SizeBytes estimates the persisted footprint of the ledger: two bytes per
// UTF-16 code unit of the storage key and the serialized entries. Advisory
// only; surfaced to the user as storage usage.
func (l *HistoryLedger) SizeBytes() int {
	data, err := json.Marshal(l.entries)
	if err != nil {
		return 0
	}
	return (utf16Units(HistoryKey) + utf16Units(string(data))) * 2
}
